package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// Resource failures surfaced to the HTTP layer.
var (
	// ErrUnknownResource means the collection name is not served.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrNotFound means the record does not exist.
	ErrNotFound = errors.New("record not found")
)

// RuleError is a domain-rule rejection whose message is shown to the
// operator verbatim.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string { return e.Message }

// contentResources are the collections stored as generic records.
// Users are handled separately because they live in the accounts table.
var contentResources = map[string]bool{
	"capaian":       true,
	"beritaartikel": true,
	"monografi":     true,
	"infografis":    true,
	"galeri":        true,
	"buku":          true,
	"jurnal":        true,
	"mitra":         true,
	"testimoni":     true,
	"contacts":      true,
}

// toggleFields maps resource/action pairs to the boolean field the
// toggle endpoint flips.
var toggleFields = map[string]map[string]string{
	"monografi":  {"featured": "is_featured"},
	"infografis": {"home": "is_approved_home"},
	"testimoni":  {"tampil": "is_tampil"},
}

// maxHomeInfografis caps how many infografis may be flagged for the
// public landing page at once.
const maxHomeInfografis = 4

// RecordRepository defines the persistence operations for generic
// content records.
type RecordRepository interface {
	List(ctx context.Context, resource string) ([]models.Record, error)
	Insert(ctx context.Context, resource string, data models.Record) (models.Record, error)
	Update(ctx context.Context, resource string, id int64, data models.Record) (models.Record, error)
	Delete(ctx context.Context, resource string, id int64) error
	Flag(ctx context.Context, resource string, id int64, field string) (bool, error)
	SetFlag(ctx context.Context, resource string, id int64, field string, value bool) error
	CountFlagged(ctx context.Context, resource, field string) (int, error)
	Count(ctx context.Context, resource string) (int, error)
}

// UserAdminRepository defines the account-management operations the
// users resource needs.
type UserAdminRepository interface {
	ListUsers(ctx context.Context) ([]models.Record, error)
	ToggleApproval(ctx context.Context, id int64) (bool, error)
	DeleteUser(ctx context.Context, id int64) error
	CountUsers(ctx context.Context) (int, error)
}

// ResourceService serves the generic resource collections and the
// users resource.
type ResourceService struct {
	records RecordRepository
	users   UserAdminRepository
}

// NewResourceService constructs a ResourceService from its
// repositories.
func NewResourceService(records RecordRepository, users UserAdminRepository) *ResourceService {
	return &ResourceService{records: records, users: users}
}

// List returns all records of a resource, newest first.
func (s *ResourceService) List(ctx context.Context, resource string) ([]models.Record, error) {
	if resource == "users" {
		return s.users.ListUsers(ctx)
	}
	if !contentResources[resource] {
		return nil, ErrUnknownResource
	}
	return s.records.List(ctx, resource)
}

// Create inserts a new record and returns it with its assigned id.
func (s *ResourceService) Create(ctx context.Context, resource string, data models.Record) (models.Record, error) {
	if !contentResources[resource] {
		return nil, ErrUnknownResource
	}
	return s.records.Insert(ctx, resource, data)
}

// Update merges the given fields into an existing record.
func (s *ResourceService) Update(ctx context.Context, resource string, id int64, data models.Record) (models.Record, error) {
	if !contentResources[resource] {
		return nil, ErrUnknownResource
	}
	rec, err := s.records.Update(ctx, resource, id, data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// Delete removes a record.
func (s *ResourceService) Delete(ctx context.Context, resource string, id int64) error {
	if resource == "users" {
		err := s.users.DeleteUser(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !contentResources[resource] {
		return ErrUnknownResource
	}
	err := s.records.Delete(ctx, resource, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Toggle flips the boolean the resource/action pair maps to and
// returns a human-readable outcome message. Flagging an infografis for
// the landing page is capped at maxHomeInfografis.
func (s *ResourceService) Toggle(ctx context.Context, resource string, id int64, action string) (string, error) {
	if resource == "users" && action == "approve" {
		approved, err := s.users.ToggleApproval(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", err
		}
		if approved {
			return "User disetujui.", nil
		}
		return "Persetujuan user dicabut.", nil
	}

	fields, ok := toggleFields[resource]
	if !ok {
		return "", ErrUnknownResource
	}
	field, ok := fields[action]
	if !ok {
		return "", ErrUnknownResource
	}

	current, err := s.records.Flag(ctx, resource, id, field)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	next := !current
	if next && resource == "infografis" && action == "home" {
		flagged, err := s.records.CountFlagged(ctx, resource, field)
		if err != nil {
			return "", err
		}
		if flagged >= maxHomeInfografis {
			return "", &RuleError{Message: fmt.Sprintf("Maksimal %d infografis dapat tampil di beranda.", maxHomeInfografis)}
		}
	}
	if err := s.records.SetFlag(ctx, resource, id, field, next); err != nil {
		return "", err
	}
	if next {
		return "Status diaktifkan.", nil
	}
	return "Status dinonaktifkan.", nil
}

// Stats aggregates the counters shown on the dashboard overview.
func (s *ResourceService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	counts := []struct {
		resource string
		dst      *int
	}{
		{"capaian", &stats.TotalDesa},
		{"beritaartikel", &stats.TotalBerita},
		{"testimoni", &stats.TotalTestimoni},
		{"galeri", &stats.TotalGaleri},
		{"mitra", &stats.TotalMitra},
		{"monografi", &stats.TotalMonografi},
		{"infografis", &stats.TotalInfografis},
	}
	for _, c := range counts {
		n, err := s.records.Count(ctx, c.resource)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	n, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalUser = n
	return stats, nil
}
