package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// fakeUserRepo implements UserRepository in memory.
type fakeUserRepo struct {
	users  map[string]*models.User
	hashes map[string]string
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}, hashes: map[string]string{}, nextID: 1}
}

func (f *fakeUserRepo) UserByEmail(ctx context.Context, email string) (*models.User, string, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, "", nil
	}
	return u, f.hashes[email], nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, name, email, passwordHash string, role int, approved bool) (*models.User, error) {
	u := &models.User{ID: f.nextID, Name: name, Email: email, Role: role, IsApproved: approved}
	f.nextID++
	f.users[email] = u
	f.hashes[email] = passwordHash
	return u, nil
}

func (f *fakeUserRepo) HasSuperAdmin(ctx context.Context) (bool, error) {
	for _, u := range f.users {
		if u.Role == models.RoleSuperAdmin {
			return true, nil
		}
	}
	return false, nil
}

// fakeTokenRepo implements TokenRepository in memory.
type fakeTokenRepo struct {
	tokens map[string]*models.User
	byID   map[int64]*models.User
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*models.User{}, byID: map[int64]*models.User{}}
}

func (f *fakeTokenRepo) SaveToken(ctx context.Context, token string, userID int64) error {
	f.tokens[token] = f.byID[userID]
	return nil
}

func (f *fakeTokenRepo) UserForToken(ctx context.Context, token string) (*models.User, error) {
	return f.tokens[token], nil
}

func (f *fakeTokenRepo) DeleteToken(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, tokens *fakeTokenRepo, email, password string, role int, approved bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u, err := repo.CreateUser(context.Background(), "Test", email, string(hash), role, approved)
	if err != nil {
		t.Fatal(err)
	}
	tokens.byID[u.ID] = u
	return u
}

func TestAuthService_Login(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	seedUser(t, users, tokens, "ayu@desa.id", "rahasia", models.RoleSuperAdmin, true)
	seedUser(t, users, tokens, "budi@desa.id", "rahasia", models.RoleAdmin, false)

	svc := NewAuthService(users, tokens)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "unknown email", email: "nobody@desa.id", password: "pw", wantErr: ErrInvalidCredentials},
		{name: "wrong password", email: "ayu@desa.id", password: "salah", wantErr: ErrInvalidCredentials},
		{name: "not approved", email: "budi@desa.id", password: "rahasia", wantErr: ErrNotApproved},
		{name: "success", email: "ayu@desa.id", password: "rahasia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, user, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if token == "" {
				t.Error("expected a token")
			}
			if user == nil || user.Email != tt.email {
				t.Errorf("unexpected user: %+v", user)
			}
			resolved, err := svc.UserForToken(ctx, token)
			if err != nil || resolved == nil || resolved.Email != tt.email {
				t.Errorf("token does not resolve back to user: %v %+v", err, resolved)
			}
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	seedUser(t, users, tokens, "ada@desa.id", "pw", models.RoleAdmin, true)

	svc := NewAuthService(users, tokens)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ada", "ada@desa.id", "pw"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	user, err := svc.Register(ctx, "Citra", "citra@desa.id", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if user.IsApproved {
		t.Error("new registrations must not be approved")
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role %d, got %d", models.RoleAdmin, user.Role)
	}

	// Unapproved accounts cannot log in yet.
	if _, _, err := svc.Login(ctx, "citra@desa.id", "pw"); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	seedUser(t, users, tokens, "ayu@desa.id", "pw", models.RoleSuperAdmin, true)

	svc := NewAuthService(users, tokens)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "ayu@desa.id", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UserForToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestAuthService_EnsureSuperAdmin(t *testing.T) {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	svc := NewAuthService(users, tokens)
	ctx := context.Background()

	if err := svc.EnsureSuperAdmin(ctx, "Super Admin", "", "pw"); err != nil {
		t.Fatal(err)
	}
	if exists, _ := users.HasSuperAdmin(ctx); exists {
		t.Fatal("blank email must not seed an account")
	}

	if err := svc.EnsureSuperAdmin(ctx, "Super Admin", "root@desa.id", "pw"); err != nil {
		t.Fatal(err)
	}
	if exists, _ := users.HasSuperAdmin(ctx); !exists {
		t.Fatal("expected seeded super admin")
	}

	// Seeding again is a no-op.
	if err := svc.EnsureSuperAdmin(ctx, "Super Admin", "other@desa.id", "pw"); err != nil {
		t.Fatal(err)
	}
	if _, ok := users.users["other@desa.id"]; ok {
		t.Error("second seed must not create another account")
	}
}
