package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ddp-ipb/ddp-admin/internal/client/api"
	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// Fallback texts when the server's rejection carries no message.
const (
	loginFallback    = "Email atau Password salah."
	registerFallback = "Registrasi gagal. Pastikan email belum terdaftar."
)

// Auth is the slice of the session store the auth screens drive.
type Auth interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, name, email, password string) (string, error)
}

// LoginView prompts for credentials and establishes the session.
type LoginView struct {
	Session Auth
	In      *bufio.Scanner
	Out     io.Writer
	// OnSuccess navigates to the dashboard after a successful login.
	OnSuccess func()
}

// Render runs one sign-in attempt. A rejection shows the server's
// message (or the fixed fallback) and leaves the session untouched.
func (v *LoginView) Render(ctx context.Context) error {
	fmt.Fprintln(v.Out, "== Sign In ==")
	fmt.Fprint(v.Out, "Email: ")
	email := strings.TrimSpace(readLine(v.In))
	fmt.Fprint(v.Out, "Password: ")
	password := readLine(v.In)

	user, err := v.Session.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintln(v.Out, rejection(err, loginFallback))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintf(v.Out, "Selamat datang, %s (%s).\n", user.Name, user.RoleLabel())
	if v.OnSuccess != nil {
		v.OnSuccess()
	}
	return nil
}

// RegisterView prompts for a new account. Registration never signs the
// user in: the account waits for super-admin approval.
type RegisterView struct {
	Session Auth
	In      *bufio.Scanner
	Out     io.Writer
}

// Render runs one registration attempt.
func (v *RegisterView) Render(ctx context.Context) error {
	fmt.Fprintln(v.Out, "== Register ==")
	fmt.Fprint(v.Out, "Nama lengkap: ")
	name := strings.TrimSpace(readLine(v.In))
	fmt.Fprint(v.Out, "Email: ")
	email := strings.TrimSpace(readLine(v.In))
	fmt.Fprint(v.Out, "Password: ")
	password := readLine(v.In)

	msg, err := v.Session.Register(ctx, name, email, password)
	if err != nil {
		fmt.Fprintln(v.Out, rejection(err, registerFallback))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg == "" {
		msg = "Pendaftaran terkirim. Menunggu persetujuan Super Admin."
	}
	fmt.Fprintln(v.Out, msg)
	return nil
}

// rejection picks the server's message when present, otherwise the
// fixed fallback.
func rejection(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
