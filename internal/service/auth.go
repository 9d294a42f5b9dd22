// Package service provides the dev server's business logic,
// delegating persistence to repositories.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// Authentication failures surfaced to the HTTP layer.
var (
	// ErrInvalidCredentials means the email is unknown or the
	// password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotApproved means the account exists but has not been
	// approved by a super admin yet.
	ErrNotApproved = errors.New("account not approved")
	// ErrEmailTaken means the registration email is already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidToken means the bearer token is unknown or revoked.
	ErrInvalidToken = errors.New("invalid token")
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// UserByEmail returns the user and password hash for an email,
	// or a nil user when the email is unknown.
	UserByEmail(ctx context.Context, email string) (*models.User, string, error)
	// EmailExists reports whether an account uses the given email.
	EmailExists(ctx context.Context, email string) (bool, error)
	// CreateUser inserts a new account and returns it.
	CreateUser(ctx context.Context, name, email, passwordHash string, role int, approved bool) (*models.User, error)
	// HasSuperAdmin reports whether any super admin exists.
	HasSuperAdmin(ctx context.Context) (bool, error)
}

// TokenRepository defines the bearer-token persistence operations.
type TokenRepository interface {
	// SaveToken records an issued token for a user.
	SaveToken(ctx context.Context, token string, userID int64) error
	// UserForToken resolves a token to its user, or nil when the
	// token is unknown.
	UserForToken(ctx context.Context, token string) (*models.User, error)
	// DeleteToken revokes a token.
	DeleteToken(ctx context.Context, token string) error
}

// AuthService implements login, registration and token lifecycle.
type AuthService struct {
	users  UserRepository
	tokens TokenRepository
}

// NewAuthService constructs an AuthService from its repositories.
func NewAuthService(users UserRepository, tokens TokenRepository) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login validates credentials and issues a bearer token. Unapproved
// accounts are rejected even with a correct password.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, hash, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsApproved {
		return "", nil, ErrNotApproved
	}

	token := uuid.NewString()
	if err := s.tokens.SaveToken(ctx, token, user.ID); err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Register creates an unapproved admin account. No token is issued:
// the account waits for super-admin approval.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.users.CreateUser(ctx, name, email, string(hash), models.RoleAdmin, false)
}

// Logout revokes the given token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.DeleteToken(ctx, token)
}

// UserForToken resolves a bearer token to its user; unknown tokens
// yield ErrInvalidToken.
func (s *AuthService) UserForToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.tokens.UserForToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// EnsureSuperAdmin seeds the initial super admin when none exists.
// A blank email disables seeding.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, name, email, password string) error {
	if email == "" {
		return nil
	}
	exists, err := s.users.HasSuperAdmin(ctx)
	if err != nil || exists {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.users.CreateUser(ctx, name, email, string(hash), models.RoleSuperAdmin, true)
	return err
}
