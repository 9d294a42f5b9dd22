// Package models defines the core data structures shared between the
// admin client and the development server.
package models

import "encoding/json"

// Role levels as stored in the backend's users table.
const (
	// RoleSuperAdmin is the only role allowed to manage user approvals.
	RoleSuperAdmin = 1
	// RoleAdmin is a regular approved staff account.
	RoleAdmin = 2
)

// User represents an authenticated staff identity.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`
	// Name is the display name chosen at registration.
	Name string `json:"name"`
	// Email is the login address.
	Email string `json:"email"`
	// Role is the privilege level (RoleSuperAdmin or RoleAdmin).
	Role int `json:"role"`
	// IsApproved reports whether a super admin has approved the account.
	IsApproved bool `json:"is_approved"`
	// CreatedAt is the server-side creation timestamp, if provided.
	CreatedAt string `json:"created_at,omitempty"`
}

// RoleLabel returns the human-readable role name.
func (u *User) RoleLabel() string {
	if u.Role == RoleSuperAdmin {
		return "Super Admin"
	}
	return "Admin"
}

// Record is one row of any content resource: a generic mapping from
// field name to value. The backend is the source of truth; the client
// never holds an authoritative copy.
type Record map[string]any

// ID extracts the record identifier, tolerating the numeric types a
// JSON decode can produce. Returns 0 when the record has no id.
func (r Record) ID() int64 {
	switch v := r["id"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}

// String returns the named field stringified, or "" when absent.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Bool reports whether the named field holds a truthy flag. The
// backend serializes flags as booleans, but older rows carry 0/1.
func (r Record) Bool(field string) bool {
	switch v := r[field].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// DashboardStats holds the aggregate counts shown on the dashboard,
// as returned by GET /stats/capaian.
type DashboardStats struct {
	TotalDesa       int `json:"totalDesa"`
	TotalBerita     int `json:"totalBerita"`
	TotalUser       int `json:"totalUser"`
	TotalTestimoni  int `json:"totalTestimoni"`
	TotalGaleri     int `json:"totalGaleri"`
	TotalMitra      int `json:"totalMitra"`
	TotalMonografi  int `json:"totalMonografi"`
	TotalInfografis int `json:"totalInfografis"`
}
