package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ddp-ipb/ddp-admin/internal/models"
)

func TestUserRepository_UserByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, name, email, role, is_approved, created_at, password_hash").
		WithArgs("ayu@desa.id").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "email", "role", "is_approved", "created_at", "password_hash"}).
			AddRow(int64(1), "Ayu", "ayu@desa.id", models.RoleSuperAdmin, true, created, "hash"))
	mock.ExpectQuery("SELECT id, name, email, role, is_approved, created_at, password_hash").
		WithArgs("nobody@desa.id").
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepository(db)
	ctx := context.Background()

	user, hash, err := repo.UserByEmail(ctx, "ayu@desa.id")
	if err != nil {
		t.Fatal(err)
	}
	if user == nil || user.ID != 1 || user.Role != models.RoleSuperAdmin || !user.IsApproved {
		t.Errorf("unexpected user: %+v", user)
	}
	if hash != "hash" {
		t.Errorf("expected password hash, got %q", hash)
	}

	user, _, err = repo.UserByEmail(ctx, "nobody@desa.id")
	if err != nil {
		t.Fatal(err)
	}
	if user != nil {
		t.Errorf("unknown email must yield a nil user, got %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Budi", "budi@desa.id", "hash", models.RoleAdmin, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(4), created))

	repo := NewUserRepository(db)
	user, err := repo.CreateUser(context.Background(), "Budi", "budi@desa.id", "hash", models.RoleAdmin, false)
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != 4 || user.IsApproved {
		t.Errorf("unexpected user: %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserRepository_ToggleApproval(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("UPDATE users SET is_approved").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"is_approved"}).AddRow(true))

	repo := NewUserRepository(db)
	approved, err := repo.ToggleApproval(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if !approved {
		t.Error("expected approval to flip to true")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserRepository_DeleteUser_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM users").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepository(db)
	if err := repo.DeleteUser(context.Background(), 9); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserRepository_ListUsers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, name, email, role, is_approved, created_at").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "email", "role", "is_approved", "created_at"}).
			AddRow(int64(1), "Ayu", "ayu@desa.id", models.RoleSuperAdmin, true, created).
			AddRow(int64(2), "Budi", "budi@desa.id", models.RoleAdmin, false, created))

	repo := NewUserRepository(db)
	records, err := repo.ListUsers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID() != 1 || !records[0].Bool("is_approved") {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].Bool("is_approved") {
		t.Error("second account must be unapproved")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestTokenRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO tokens").
		WithArgs("tok-1", int64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT u.id, u.name, u.email, u.role, u.is_approved, u.created_at").
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "email", "role", "is_approved", "created_at"}).
			AddRow(int64(1), "Ayu", "ayu@desa.id", models.RoleSuperAdmin, true, created))
	mock.ExpectQuery("SELECT u.id, u.name, u.email, u.role, u.is_approved, u.created_at").
		WithArgs("tok-unknown").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("DELETE FROM tokens").
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewTokenRepository(db)
	ctx := context.Background()

	if err := repo.SaveToken(ctx, "tok-1", 1); err != nil {
		t.Fatal(err)
	}

	user, err := repo.UserForToken(ctx, "tok-1")
	if err != nil {
		t.Fatal(err)
	}
	if user == nil || user.Email != "ayu@desa.id" {
		t.Errorf("unexpected user: %+v", user)
	}

	user, err = repo.UserForToken(ctx, "tok-unknown")
	if err != nil {
		t.Fatal(err)
	}
	if user != nil {
		t.Errorf("unknown token must yield a nil user, got %+v", user)
	}

	if err := repo.DeleteToken(ctx, "tok-1"); err != nil {
		t.Fatal(err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
