package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ddp-ipb/ddp-admin/internal/client/api"
	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// ResourceModule is the generic content module: one per backend
// resource, all sharing the list/form/toggle/delete contract.
type ResourceModule struct {
	API      API
	In       *bufio.Scanner
	Out      io.Writer
	Resource string
	Title    string
	Columns  []Column
	Fields   []Field
	// ToggleList names the flag actions this resource exposes, e.g.
	// "featured" for monografi. Empty means no toggles.
	ToggleList []string
}

// Render fetches the collection and prints it. The fetch is abandoned
// when the view is torn down before the response lands.
func (m *ResourceModule) Render(ctx context.Context) error {
	result, err := m.API.List(ctx, m.Resource)
	if err != nil {
		return fmt.Errorf("memuat %s: %w", m.Resource, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Fprintf(m.Out, "== %s ==\n", m.Title)
	w := tabwriter.NewWriter(m.Out, 2, 4, 2, ' ', 0)
	fmt.Fprint(w, "ID")
	for _, c := range m.Columns {
		fmt.Fprintf(w, "\t%s", c.Header)
	}
	fmt.Fprintln(w)
	for _, rec := range result.Records {
		fmt.Fprintf(w, "%d", rec.ID())
		for _, c := range m.Columns {
			fmt.Fprintf(w, "\t%s", m.cell(rec, c.Field))
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if result.LastPage > 1 {
		fmt.Fprintf(m.Out, "halaman %d dari %d\n", result.CurrentPage, result.LastPage)
	}
	return nil
}

// cell renders one table cell; image fields show their display URL.
func (m *ResourceModule) cell(rec models.Record, field string) string {
	if field == api.ImageField {
		return m.API.ImageURL(rec.String(field))
	}
	return rec.String(field)
}

// Add prompts the form and submits a create, then re-fetches the list.
func (m *ResourceModule) Add(ctx context.Context) error {
	if len(m.Fields) == 0 {
		return errors.New("modul ini tidak menerima input")
	}
	record, err := promptRecord(m.In, m.Out, m.Fields)
	if err != nil {
		return err
	}
	return m.submit(ctx, record)
}

// Edit prompts the form and submits an update for the given id, then
// re-fetches the list. Fields left empty are omitted so the server
// keeps their stored values.
func (m *ResourceModule) Edit(ctx context.Context, id int64) error {
	if len(m.Fields) == 0 {
		return errors.New("modul ini tidak menerima input")
	}
	record, err := promptRecord(m.In, m.Out, m.Fields)
	if err != nil {
		return err
	}
	record["id"] = id
	return m.submit(ctx, record)
}

func (m *ResourceModule) submit(ctx context.Context, record models.Record) error {
	if _, err := m.API.Save(ctx, m.Resource, record); err != nil {
		return m.surface(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintln(m.Out, "Sinkronisasi berhasil.")
	return m.Render(ctx)
}

// Remove deletes a row and re-fetches the list.
func (m *ResourceModule) Remove(ctx context.Context, id int64) error {
	if err := m.API.Remove(ctx, m.Resource, id); err != nil {
		return m.surface(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintln(m.Out, "Data dihapus.")
	return m.Render(ctx)
}

// Toggle flips a flag through the dedicated endpoint. The server's
// confirmation doubles as the signal to re-fetch; a rejection (for
// example the home-visibility cap) is shown verbatim and leaves the
// list untouched until the re-fetch proves the flag unchanged.
func (m *ResourceModule) Toggle(ctx context.Context, id int64, action string) error {
	msg, err := m.API.Toggle(ctx, m.Resource, id, action)
	if err != nil {
		return m.surface(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg != "" {
		fmt.Fprintln(m.Out, msg)
	}
	return m.Render(ctx)
}

// Actions lists the resource's toggle actions.
func (m *ResourceModule) Actions() []string {
	return m.ToggleList
}

// surface prints a server-provided message to the user and swallows
// the error; transport failures propagate for the caller to report.
func (m *ResourceModule) surface(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		fmt.Fprintln(m.Out, apiErr.Message)
		return nil
	}
	return err
}
