package view

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

// Dashboard shows the platform's aggregate counts.
type Dashboard struct {
	API API
	Out io.Writer
}

// Render fetches and prints the stats grid.
func (d *Dashboard) Render(ctx context.Context) error {
	stats, err := d.API.Stats(ctx)
	if err != nil {
		return fmt.Errorf("memuat statistik: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Fprintln(d.Out, "== Overview Sistem ==")
	w := tabwriter.NewWriter(d.Out, 2, 4, 2, ' ', 0)
	rows := []struct {
		label string
		value int
	}{
		{"Capaian Desa", stats.TotalDesa},
		{"Warta & Berita", stats.TotalBerita},
		{"Suara Tokoh", stats.TotalTestimoni},
		{"Arsip Galeri", stats.TotalGaleri},
		{"Monografi", stats.TotalMonografi},
		{"Visual Data", stats.TotalInfografis},
		{"Jejaring Mitra", stats.TotalMitra},
		{"Admin Sistem", stats.TotalUser},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%d\n", row.label, row.value)
	}
	return w.Flush()
}
