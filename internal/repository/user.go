// Package repository implements Postgres persistence for the dev
// server.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// UserRepository persists admin accounts.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a UserRepository on an open connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UserByEmail returns the account and password hash for an email. A
// nil user with a nil error means the email is unknown.
func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*models.User, string, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, role, is_approved, created_at, password_hash
		 FROM users WHERE email = $1`, email)

	var user models.User
	var hash string
	var createdAt time.Time
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.IsApproved, &createdAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	user.CreatedAt = createdAt.Format(time.RFC3339)
	return &user, hash, nil
}

// EmailExists reports whether an account uses the given email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// CreateUser inserts a new account and returns it.
func (r *UserRepository) CreateUser(ctx context.Context, name, email, passwordHash string, role int, approved bool) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, is_approved)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`, name, email, passwordHash, role, approved)

	user := models.User{Name: name, Email: email, Role: role, IsApproved: approved}
	var createdAt time.Time
	if err := row.Scan(&user.ID, &createdAt); err != nil {
		return nil, err
	}
	user.CreatedAt = createdAt.Format(time.RFC3339)
	return &user, nil
}

// HasSuperAdmin reports whether any super admin account exists.
func (r *UserRepository) HasSuperAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE role = $1)`, models.RoleSuperAdmin).Scan(&exists)
	return exists, err
}

// ListUsers returns all accounts as records for the users resource.
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, role, is_approved, created_at
		 FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var user models.User
		var createdAt time.Time
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.IsApproved, &createdAt); err != nil {
			return nil, err
		}
		records = append(records, models.Record{
			"id":          user.ID,
			"name":        user.Name,
			"email":       user.Email,
			"role":        user.Role,
			"is_approved": user.IsApproved,
			"created_at":  createdAt.Format(time.RFC3339),
		})
	}
	return records, rows.Err()
}

// ToggleApproval flips an account's approval flag and returns the new
// value.
func (r *UserRepository) ToggleApproval(ctx context.Context, id int64) (bool, error) {
	var approved bool
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET is_approved = NOT is_approved WHERE id = $1
		 RETURNING is_approved`, id).Scan(&approved)
	return approved, err
}

// DeleteUser removes an account; its tokens go with it.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountUsers returns the number of accounts.
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
