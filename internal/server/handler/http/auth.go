package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ddp-ipb/ddp-admin/internal/middleware"
	"github.com/ddp-ipb/ddp-admin/internal/models"
	"github.com/ddp-ipb/ddp-admin/internal/service"
)

// AuthService is the slice of the service layer the auth endpoints use.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler serves login, registration and logout.
type AuthHandler struct {
	auth AuthService
	log  *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and issues a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, h.log, http.StatusBadRequest, "Permintaan tidak valid.")
		return
	}

	token, user, err := h.auth.Login(r.Context(), creds.Email, creds.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, h.log, http.StatusUnauthorized, "Email atau Password salah.")
		return
	case errors.Is(err, service.ErrNotApproved):
		writeMessage(w, h.log, http.StatusForbidden, "Akun Anda belum disetujui Super Admin.")
		return
	case err != nil:
		h.log.Error("login", zap.Error(err))
		writeMessage(w, h.log, http.StatusInternalServerError, "Terjadi kesalahan pada server.")
		return
	}

	writeJSON(w, h.log, http.StatusOK, map[string]any{
		"access_token": token,
		"user":         user,
	})
}

// Register creates an unapproved account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, h.log, http.StatusBadRequest, "Permintaan tidak valid.")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		writeMessage(w, h.log, http.StatusUnprocessableEntity, "Email dan password wajib diisi.")
		return
	}

	_, err := h.auth.Register(r.Context(), creds.Name, creds.Email, creds.Password)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		writeMessage(w, h.log, http.StatusUnprocessableEntity, "Email sudah terdaftar.")
		return
	case err != nil:
		h.log.Error("register", zap.Error(err))
		writeMessage(w, h.log, http.StatusInternalServerError, "Terjadi kesalahan pada server.")
		return
	}

	writeMessage(w, h.log, http.StatusCreated, "Registrasi berhasil. Menunggu persetujuan Super Admin.")
}

// Logout revokes the caller's bearer token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), token); err != nil {
		h.log.Error("logout", zap.Error(err))
		writeMessage(w, h.log, http.StatusInternalServerError, "Terjadi kesalahan pada server.")
		return
	}
	writeMessage(w, h.log, http.StatusOK, "Berhasil keluar.")
}
