package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ddp-ipb/ddp-admin/internal/client/api"
)

// UserManagement is the approval workflow view, reachable only by
// super admins.
type UserManagement struct {
	API API
	Out io.Writer
}

// Render lists registered accounts with their approval status.
func (v *UserManagement) Render(ctx context.Context) error {
	result, err := v.API.List(ctx, "users")
	if err != nil {
		return fmt.Errorf("memuat users: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Fprintln(v.Out, "== Manajemen User ==")
	w := tabwriter.NewWriter(v.Out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNama\tEmail\tRole\tStatus")
	for _, rec := range result.Records {
		role := "Admin"
		if rec.String("role") == "1" {
			role = "Super Admin"
		}
		status := "menunggu"
		if rec.Bool("is_approved") {
			status = "disetujui"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			rec.ID(), rec.String("name"), rec.String("email"), role, status)
	}
	return w.Flush()
}

// Toggle flips an account's approval through the dedicated endpoint
// and re-fetches the list.
func (v *UserManagement) Toggle(ctx context.Context, id int64, action string) error {
	if action != "approve" {
		return fmt.Errorf("aksi %q tidak dikenal", action)
	}
	msg, err := v.API.Toggle(ctx, "users", id, action)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			fmt.Fprintln(v.Out, apiErr.Message)
			return nil
		}
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg != "" {
		fmt.Fprintln(v.Out, msg)
	}
	return v.Render(ctx)
}

// Actions lists the view's toggle actions.
func (v *UserManagement) Actions() []string { return []string{"approve"} }

// Remove deletes an account and re-fetches the list.
func (v *UserManagement) Remove(ctx context.Context, id int64) error {
	if err := v.API.Remove(ctx, "users", id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintln(v.Out, "User dihapus.")
	return v.Render(ctx)
}
