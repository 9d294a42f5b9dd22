// Package view implements the console views mounted by the router:
// the dashboard, the generic resource modules, user management and the
// auth screens. Every module follows the same contract: mount fetches
// the list, a submitted form saves then re-fetches, row actions remove
// or toggle then re-fetch. Mutations never patch local state.
package view

import (
	"bufio"
	"context"
	"io"

	"github.com/ddp-ipb/ddp-admin/internal/client/api"
	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// API is the slice of the HTTP client the views drive.
type API interface {
	List(ctx context.Context, resource string) (*api.ListResult, error)
	Save(ctx context.Context, resource string, record models.Record) (models.Record, error)
	Remove(ctx context.Context, resource string, id int64) error
	Toggle(ctx context.Context, resource string, id int64, action string) (string, error)
	Stats(ctx context.Context) (*models.DashboardStats, error)
	ImageURL(path string) string
}

// Editor is implemented by views that accept form submissions.
type Editor interface {
	Add(ctx context.Context) error
	Edit(ctx context.Context, id int64) error
}

// Remover is implemented by views with a delete row action.
type Remover interface {
	Remove(ctx context.Context, id int64) error
}

// Toggler is implemented by views exposing boolean flag actions.
type Toggler interface {
	Toggle(ctx context.Context, id int64, action string) error
	Actions() []string
}

// FieldKind selects how a form field is prompted and encoded.
type FieldKind int

const (
	// Text is a free-form string field.
	Text FieldKind = iota
	// Number must parse as a number.
	Number
	// Date is an ISO date string.
	Date
	// Image is a single file upload.
	Image
	// ImageList is a repeated file upload.
	ImageList
)

// Field describes one form input of a resource module.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
}

// Column maps a table header to a record field.
type Column struct {
	Header string
	Field  string
}

// Static renders fixed lines; used for the not-found and
// access-denied notices.
type Static struct {
	Out   io.Writer
	Lines []string
}

// Render prints the notice.
func (s *Static) Render(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, line := range s.Lines {
		if _, err := io.WriteString(s.Out, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// NewNotFound builds the fallback view for unrecognized fragments.
func NewNotFound(out io.Writer) *Static {
	return &Static{Out: out, Lines: []string{
		"404 - Halaman Tidak Ditemukan",
		"Ketik 'open /' untuk kembali ke dashboard.",
	}}
}

// NewAccessDenied builds the in-place notice for blocked views.
func NewAccessDenied(out io.Writer) *Static {
	return &Static{Out: out, Lines: []string{
		"Akses Ditolak",
		"Anda tidak memiliki izin untuk mengakses Manajemen User.",
	}}
}

// readLine scans one input line, trimmed by the scanner's split.
func readLine(in *bufio.Scanner) string {
	if !in.Scan() {
		return ""
	}
	return in.Text()
}
