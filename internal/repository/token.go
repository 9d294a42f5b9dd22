package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// TokenRepository persists issued bearer tokens.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository constructs a TokenRepository on an open
// connection.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// SaveToken records an issued token for a user.
func (r *TokenRepository) SaveToken(ctx context.Context, token string, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (token, user_id) VALUES ($1, $2)`, token, userID)
	return err
}

// UserForToken resolves a token to its user. A nil user with a nil
// error means the token is unknown.
func (r *TokenRepository) UserForToken(ctx context.Context, token string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.name, u.email, u.role, u.is_approved, u.created_at
		 FROM tokens t JOIN users u ON u.id = t.user_id
		 WHERE t.token = $1`, token)

	var user models.User
	var createdAt time.Time
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.IsApproved, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.CreatedAt = createdAt.Format(time.RFC3339)
	return &user, nil
}

// DeleteToken revokes a token. Revoking an unknown token is not an
// error.
func (r *TokenRepository) DeleteToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	return err
}
