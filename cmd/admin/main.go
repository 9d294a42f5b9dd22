// Package main runs the interactive admin console for the DDP
// backend: an authenticated shell over the same REST surface the web
// dashboard consumes.
package main

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ddp-ipb/ddp-admin/internal/client/api"
	"github.com/ddp-ipb/ddp-admin/internal/client/router"
	"github.com/ddp-ipb/ddp-admin/internal/client/session"
	"github.com/ddp-ipb/ddp-admin/internal/client/view"
	"github.com/ddp-ipb/ddp-admin/internal/config"
	"github.com/ddp-ipb/ddp-admin/internal/logger"
)

var (
	version   string
	buildDate string
)

// modules declares every content module once: path, backend resource,
// table layout, form fields and toggle actions.
var modules = []struct {
	path    string
	res     string
	title   string
	columns []view.Column
	fields  []view.Field
	toggles []string
}{
	{
		path: "/capaian", res: "capaian", title: "Capaian Desa",
		columns: []view.Column{
			{Header: "Desa", Field: "desa"},
			{Header: "Dusun", Field: "dusun"},
			{Header: "Kelurahan", Field: "kelurahan"},
			{Header: "KK", Field: "kk"},
			{Header: "Jiwa", Field: "jiwa"},
		},
		fields: []view.Field{
			{Name: "desa", Label: "Desa", Kind: view.Text, Required: true},
			{Name: "dusun", Label: "Dusun", Kind: view.Text},
			{Name: "rw", Label: "RW", Kind: view.Text},
			{Name: "kelurahan", Label: "Kelurahan", Kind: view.Text},
			{Name: "bangunan", Label: "Jumlah bangunan", Kind: view.Number},
			{Name: "kk", Label: "Jumlah KK", Kind: view.Number},
			{Name: "jiwa", Label: "Jumlah jiwa", Kind: view.Number},
			{Name: "laki", Label: "Laki-laki", Kind: view.Number},
			{Name: "perempuan", Label: "Perempuan", Kind: view.Number},
		},
	},
	{
		path: "/artikel", res: "beritaartikel", title: "Warta & Berita",
		columns: []view.Column{
			{Header: "Judul", Field: "judul_artikel"},
			{Header: "Penulis", Field: "penulis"},
			{Header: "Tanggal", Field: "tanggal"},
		},
		fields: []view.Field{
			{Name: "judul_artikel", Label: "Judul artikel", Kind: view.Text, Required: true},
			{Name: "kategori_id", Label: "Kategori", Kind: view.Number},
			{Name: "tanggal", Label: "Tanggal (YYYY-MM-DD)", Kind: view.Date},
			{Name: "penulis", Label: "Penulis", Kind: view.Text},
			{Name: "readmore", Label: "Tautan readmore", Kind: view.Text},
			{Name: "isi_artikel", Label: "Isi artikel", Kind: view.Text},
			{Name: "gambar", Label: "Gambar", Kind: view.Image},
		},
	},
	{
		path: "/monografi", res: "monografi", title: "Monografi",
		columns: []view.Column{
			{Header: "Desa", Field: "desa"},
			{Header: "Kecamatan", Field: "kecamatan"},
			{Header: "Tahun", Field: "tahun"},
		},
		fields: []view.Field{
			{Name: "desa", Label: "Desa", Kind: view.Text, Required: true},
			{Name: "kecamatan", Label: "Kecamatan", Kind: view.Text},
			{Name: "kota", Label: "Kota", Kind: view.Text},
			{Name: "provinsi", Label: "Provinsi", Kind: view.Text},
			{Name: "tahun", Label: "Tahun", Kind: view.Number},
			{Name: "ringkasan", Label: "Ringkasan", Kind: view.Text},
			{Name: "link", Label: "Tautan", Kind: view.Text},
			{Name: "gambar", Label: "Gambar", Kind: view.Image},
		},
		toggles: []string{"featured"},
	},
	{
		path: "/infografis", res: "infografis", title: "Visual Data",
		columns: []view.Column{
			{Header: "Judul", Field: "judul"},
			{Header: "Keterangan", Field: "keterangan"},
		},
		fields: []view.Field{
			{Name: "judul", Label: "Judul", Kind: view.Text, Required: true},
			{Name: "keterangan", Label: "Keterangan", Kind: view.Text},
			{Name: "link", Label: "Tautan", Kind: view.Text},
			{Name: "gambar", Label: "Gambar", Kind: view.ImageList},
		},
		toggles: []string{"home"},
	},
	{
		path: "/buku", res: "buku", title: "Katalog Buku",
		columns: []view.Column{
			{Header: "Judul", Field: "judul"},
			{Header: "Penulis", Field: "penulis"},
		},
		fields: []view.Field{
			{Name: "judul", Label: "Judul", Kind: view.Text, Required: true},
			{Name: "penulis", Label: "Penulis", Kind: view.Text},
			{Name: "readmore", Label: "Tautan readmore", Kind: view.Text},
			{Name: "ringkasan", Label: "Ringkasan", Kind: view.Text},
			{Name: "link", Label: "Tautan", Kind: view.Text},
			{Name: "gambar", Label: "Sampul", Kind: view.Image},
		},
	},
	{
		path: "/jurnal", res: "jurnal", title: "Jurnal",
		columns: []view.Column{
			{Header: "Judul", Field: "judul"},
			{Header: "Penulis", Field: "penulis"},
		},
		fields: []view.Field{
			{Name: "judul", Label: "Judul", Kind: view.Text, Required: true},
			{Name: "penulis", Label: "Penulis", Kind: view.Text},
			{Name: "readmore", Label: "Tautan readmore", Kind: view.Text},
			{Name: "ringkasan", Label: "Ringkasan", Kind: view.Text},
			{Name: "link", Label: "Tautan", Kind: view.Text},
			{Name: "gambar", Label: "Sampul", Kind: view.Image},
		},
	},
	{
		path: "/mitra", res: "mitra", title: "Jejaring Mitra",
		columns: []view.Column{
			{Header: "Nama", Field: "nama"},
			{Header: "Jabatan", Field: "jabatan"},
		},
		fields: []view.Field{
			{Name: "nama", Label: "Nama", Kind: view.Text, Required: true},
			{Name: "jabatan", Label: "Jabatan", Kind: view.Text},
			{Name: "isi", Label: "Deskripsi", Kind: view.Text},
			{Name: "gambar", Label: "Logo", Kind: view.Image},
		},
	},
	{
		path: "/testimoni", res: "testimoni", title: "Suara Tokoh",
		columns: []view.Column{
			{Header: "Nama", Field: "nama"},
			{Header: "Jabatan", Field: "jabatan"},
		},
		fields: []view.Field{
			{Name: "nama", Label: "Nama", Kind: view.Text, Required: true},
			{Name: "jabatan", Label: "Jabatan", Kind: view.Text},
			{Name: "isi", Label: "Isi testimoni", Kind: view.Text},
			{Name: "gambar", Label: "Foto", Kind: view.Image},
		},
		toggles: []string{"tampil"},
	},
	{
		path: "/galeri", res: "galeri", title: "Arsip Galeri",
		columns: []view.Column{
			{Header: "Judul", Field: "judul"},
			{Header: "Gambar", Field: "gambar"},
		},
		fields: []view.Field{
			{Name: "judul", Label: "Judul", Kind: view.Text, Required: true},
			{Name: "gambar", Label: "Gambar", Kind: view.Image},
		},
	},
	{
		path: "/contacts", res: "contacts", title: "Pesan Masuk",
		columns: []view.Column{
			{Header: "Nama", Field: "nama"},
			{Header: "Email", Field: "email"},
			{Header: "Pesan", Field: "pesan"},
		},
		// Read-only: submissions come from the public site.
	},
}

// repl runs the interactive shell loop, dispatching commands to the
// mounted view.
func repl(ctx context.Context, r *router.Router, store *session.Store, in *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprintf(out, "ddp%s> ", r.Fragment())
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			printHelp(out)
		case "open":
			if len(args) < 2 {
				fmt.Fprintln(out, "Usage: open <path>")
				continue
			}
			report(out, r.Navigate(ctx, args[1]))
		case "ls":
			report(out, r.Navigate(ctx, r.Fragment()))
		case "add":
			if v, ok := r.CurrentView().(view.Editor); ok {
				report(out, v.Add(ctx))
			} else {
				fmt.Fprintln(out, "Modul ini tidak menerima input.")
			}
		case "edit":
			id, ok := parseID(out, args, "edit <id>")
			if !ok {
				continue
			}
			if v, okV := r.CurrentView().(view.Editor); okV {
				report(out, v.Edit(ctx, id))
			} else {
				fmt.Fprintln(out, "Modul ini tidak menerima input.")
			}
		case "rm":
			id, ok := parseID(out, args, "rm <id>")
			if !ok {
				continue
			}
			if v, okV := r.CurrentView().(view.Remover); okV {
				report(out, v.Remove(ctx, id))
			} else {
				fmt.Fprintln(out, "Modul ini tidak mendukung hapus.")
			}
		case "toggle":
			if len(args) < 3 {
				fmt.Fprintln(out, "Usage: toggle <id> <action>")
				continue
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Fprintln(out, "Usage: toggle <id> <action>")
				continue
			}
			if v, ok := r.CurrentView().(view.Toggler); ok {
				report(out, v.Toggle(ctx, id, args[2]))
			} else {
				fmt.Fprintln(out, "Modul ini tidak memiliki aksi toggle.")
			}
		case "login":
			report(out, r.Navigate(ctx, router.PathLogin))
		case "register":
			report(out, r.Navigate(ctx, router.PathRegister))
		case "logout":
			report(out, store.Logout(ctx))
			report(out, r.Navigate(ctx, router.PathLogin))
		case "exit":
			fmt.Fprintln(out, "Sampai jumpa.")
			return
		default:
			fmt.Fprintln(out, "Perintah tidak dikenal. Ketik 'help'.")
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Available commands:")
	fmt.Fprintln(out, "  open <path>          buka halaman (mis. open /monografi)")
	fmt.Fprintln(out, "  ls                   muat ulang halaman saat ini")
	fmt.Fprintln(out, "  add                  tambah data pada modul saat ini")
	fmt.Fprintln(out, "  edit <id>            ubah data")
	fmt.Fprintln(out, "  rm <id>              hapus data")
	fmt.Fprintln(out, "  toggle <id> <aksi>   ubah status tampil (featured/home/tampil/approve)")
	fmt.Fprintln(out, "  login | register | logout | help | exit")
}

func parseID(out io.Writer, args []string, usage string) (int64, bool) {
	if len(args) < 2 {
		fmt.Fprintln(out, "Usage: "+usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Fprintln(out, "Usage: "+usage)
		return 0, false
	}
	return id, true
}

// report prints command failures without killing the shell. A
// cancelled render is an abandoned view, not an error worth showing.
func report(out io.Writer, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	fmt.Fprintln(out, "Error:", err)
}

func main() {
	options, err := config.Parse()
	if err != nil {
		log.Fatal(err)
	}
	if options.APIBaseURL == "" {
		log.Fatal("API base URL is required: set -u or DDP_API_URL")
	}

	fmt.Printf("DDP Admin Console\nVersion: %s\nBuild Date: %s\n",
		cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))

	zl := logger.New()
	defer func() { _ = zl.Log.Sync() }()
	if err := zl.Init(options.LogLevel); err != nil {
		log.Fatal(err)
	}

	sessionPath := options.SessionFile
	if sessionPath == "" {
		sessionPath, err = session.DefaultPath()
		if err != nil {
			log.Fatal(err)
		}
	}

	store := session.NewStore(sessionPath, zl.Log)
	client, err := api.New(api.Config{
		BaseURL:      options.APIBaseURL,
		StorageURL:   options.StorageURL(),
		SpoofUpdates: options.SpoofUpdates,
	}, store, zl.Log)
	if err != nil {
		log.Fatal(err)
	}
	store.Bind(client)

	// The session must be restored before any view is routed.
	if err := store.Restore(); err != nil {
		log.Fatal(err)
	}

	out := os.Stdout
	in := bufio.NewScanner(os.Stdin)
	r := router.New(store)

	client.OnUnauthorized(func() {
		store.Expire()
		r.SetFragment(router.PathLogin)
		fmt.Fprintln(out, "Sesi berakhir. Silakan masuk kembali.")
	})

	ctx := context.Background()

	r.Handle(router.PathDashboard, &view.Dashboard{API: client, Out: out})
	for _, m := range modules {
		r.Handle(m.path, &view.ResourceModule{
			API: client, In: in, Out: out,
			Resource: m.res, Title: m.title,
			Columns: m.columns, Fields: m.fields, ToggleList: m.toggles,
		})
	}
	r.Handle(router.PathUsers, &view.UserManagement{API: client, Out: out})
	r.Handle(router.PathLogin, &view.LoginView{
		Session: store, In: in, Out: out,
		OnSuccess: func() { report(out, r.Navigate(ctx, router.PathDashboard)) },
	})
	r.Handle(router.PathRegister, &view.RegisterView{Session: store, In: in, Out: out})
	r.NotFound(view.NewNotFound(out))
	r.AccessDenied(view.NewAccessDenied(out))

	report(out, r.Navigate(ctx, router.PathDashboard))
	repl(ctx, r, store, in, out)
}
