package view

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddp-ipb/ddp-admin/internal/client/api"
	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// fakeAPI implements API over an in-memory record set.
type fakeAPI struct {
	records   map[string][]models.Record
	saveErr   error
	toggleMsg string
	toggleErr error
	stats     *models.DashboardStats

	listCalls int
	saved     []models.Record
	removed   []int64
}

func (f *fakeAPI) List(ctx context.Context, resource string) (*api.ListResult, error) {
	f.listCalls++
	return &api.ListResult{Records: f.records[resource], CurrentPage: 1, LastPage: 1}, nil
}

func (f *fakeAPI) Save(ctx context.Context, resource string, record models.Record) (models.Record, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, record)
	return record, nil
}

func (f *fakeAPI) Remove(ctx context.Context, resource string, id int64) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeAPI) Toggle(ctx context.Context, resource string, id int64, action string) (string, error) {
	return f.toggleMsg, f.toggleErr
}

func (f *fakeAPI) Stats(ctx context.Context) (*models.DashboardStats, error) {
	return f.stats, nil
}

func (f *fakeAPI) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return "http://storage.test/" + path
}

func scanner(input string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(input))
}

func newModule(api *fakeAPI, in *bufio.Scanner, out *bytes.Buffer) *ResourceModule {
	return &ResourceModule{
		API: api, In: in, Out: out,
		Resource: "monografi", Title: "Monografi",
		Columns: []Column{{Header: "Desa", Field: "desa"}},
		Fields: []Field{
			{Name: "desa", Label: "Desa", Kind: Text, Required: true},
			{Name: "tahun", Label: "Tahun", Kind: Number},
		},
		ToggleList: []string{"featured"},
	}
}

func TestResourceModule_Render(t *testing.T) {
	out := &bytes.Buffer{}
	f := &fakeAPI{records: map[string][]models.Record{
		"monografi": {{"id": int64(1), "desa": "Sukamaju"}},
	}}
	m := newModule(f, scanner(""), out)

	require.NoError(t, m.Render(context.Background()))
	assert.Contains(t, out.String(), "== Monografi ==")
	assert.Contains(t, out.String(), "Sukamaju")
	assert.Equal(t, 1, f.listCalls)
}

func TestResourceModule_Render_AbandonedOnCancel(t *testing.T) {
	out := &bytes.Buffer{}
	f := &fakeAPI{records: map[string][]models.Record{
		"monografi": {{"id": int64(1), "desa": "Sukamaju"}},
	}}
	m := newModule(f, scanner(""), out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Render(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, out.String(), "Sukamaju", "a torn-down view must not print late results")
}

func TestResourceModule_AddRefetches(t *testing.T) {
	out := &bytes.Buffer{}
	f := &fakeAPI{records: map[string][]models.Record{"monografi": nil}}
	m := newModule(f, scanner("Sukamaju\n2024\n"), out)

	require.NoError(t, m.Add(context.Background()))
	require.Len(t, f.saved, 1)
	assert.Equal(t, "Sukamaju", f.saved[0].String("desa"))
	assert.Contains(t, out.String(), "Sinkronisasi berhasil.")
	assert.Equal(t, 1, f.listCalls, "a successful save re-fetches the list")
}

func TestResourceModule_EditCarriesID(t *testing.T) {
	out := &bytes.Buffer{}
	f := &fakeAPI{records: map[string][]models.Record{"monografi": nil}}
	m := newModule(f, scanner("Sukamaju\n\n"), out)

	require.NoError(t, m.Edit(context.Background(), 7))
	require.Len(t, f.saved, 1)
	assert.Equal(t, int64(7), f.saved[0].ID())
	_, hasTahun := f.saved[0]["tahun"]
	assert.False(t, hasTahun, "empty answers are omitted so stored values survive")
}

func TestResourceModule_ToggleRejectionShownVerbatim(t *testing.T) {
	out := &bytes.Buffer{}
	f := &fakeAPI{
		records:   map[string][]models.Record{"monografi": nil},
		toggleErr: &api.Error{StatusCode: 422, Message: "Maksimal 4 infografis dapat tampil di beranda."},
	}
	m := newModule(f, scanner(""), out)

	require.NoError(t, m.Toggle(context.Background(), 3, "featured"))
	assert.Contains(t, out.String(), "Maksimal 4 infografis dapat tampil di beranda.")
	assert.Zero(t, f.listCalls, "a rejected toggle does not re-fetch")
}

func TestResourceModule_ToggleSuccessRefetches(t *testing.T) {
	out := &bytes.Buffer{}
	f := &fakeAPI{
		records:   map[string][]models.Record{"monografi": nil},
		toggleMsg: "Status diaktifkan.",
	}
	m := newModule(f, scanner(""), out)

	require.NoError(t, m.Toggle(context.Background(), 3, "featured"))
	assert.Contains(t, out.String(), "Status diaktifkan.")
	assert.Equal(t, 1, f.listCalls)
}

func TestResourceModule_Remove(t *testing.T) {
	out := &bytes.Buffer{}
	f := &fakeAPI{records: map[string][]models.Record{"monografi": nil}}
	m := newModule(f, scanner(""), out)

	require.NoError(t, m.Remove(context.Background(), 5))
	assert.Equal(t, []int64{5}, f.removed)
	assert.Contains(t, out.String(), "Data dihapus.")
	assert.Equal(t, 1, f.listCalls)
}

func TestDashboard_Render(t *testing.T) {
	out := &bytes.Buffer{}
	d := &Dashboard{API: &fakeAPI{stats: &models.DashboardStats{TotalDesa: 12, TotalUser: 3}}, Out: out}

	require.NoError(t, d.Render(context.Background()))
	assert.Contains(t, out.String(), "== Overview Sistem ==")
	assert.Contains(t, out.String(), "Capaian Desa")
	assert.Contains(t, out.String(), "12")
}

func TestPromptRecord_RequiredField(t *testing.T) {
	out := &bytes.Buffer{}
	_, err := promptRecord(scanner("\n"), out, []Field{
		{Name: "desa", Label: "Desa", Kind: Text, Required: true},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Desa wajib diisi")
}

func TestPromptRecord_NumberValidation(t *testing.T) {
	out := &bytes.Buffer{}
	_, err := promptRecord(scanner("bukan angka\n"), out, []Field{
		{Name: "tahun", Label: "Tahun", Kind: Number},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "harus berupa angka")
}

func TestLoginView_RejectionFallback(t *testing.T) {
	out := &bytes.Buffer{}
	v := &LoginView{
		Session: &fakeAuth{loginErr: &api.Error{StatusCode: 401}},
		In:      scanner("a@b.c\nwrong\n"),
		Out:     out,
	}
	require.NoError(t, v.Render(context.Background()))
	assert.Contains(t, out.String(), "Email atau Password salah.")
}

func TestLoginView_SuccessNavigates(t *testing.T) {
	out := &bytes.Buffer{}
	navigated := false
	v := &LoginView{
		Session:   &fakeAuth{user: &models.User{Name: "Ayu", Role: models.RoleSuperAdmin}},
		In:        scanner("a@b.c\npw\n"),
		Out:       out,
		OnSuccess: func() { navigated = true },
	}
	require.NoError(t, v.Render(context.Background()))
	assert.Contains(t, out.String(), "Selamat datang, Ayu")
	assert.True(t, navigated)
}

func TestRegisterView_ServerMessage(t *testing.T) {
	out := &bytes.Buffer{}
	v := &RegisterView{
		Session: &fakeAuth{registerMsg: "Registrasi berhasil. Menunggu persetujuan Super Admin."},
		In:      scanner("Ayu\na@b.c\npw\n"),
		Out:     out,
	}
	require.NoError(t, v.Render(context.Background()))
	assert.Contains(t, out.String(), "Menunggu persetujuan Super Admin.")
}

// fakeAuth implements Auth for the login/register views.
type fakeAuth struct {
	user        *models.User
	loginErr    error
	registerMsg string
	registerErr error
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*models.User, error) {
	return f.user, f.loginErr
}

func (f *fakeAuth) Register(ctx context.Context, name, email, password string) (string, error) {
	return f.registerMsg, f.registerErr
}
