// Package api implements the HTTP client for the DDP backend. It is
// the single choke point for all network I/O: every request goes out
// with the JSON accept header and, when a session token is present,
// a bearer Authorization header. Authorization failures fire a
// registered hook uniformly for every request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// ImageField is the record field carrying file uploads. The backend
// expects it under this name; slices are submitted as repeated
// "gambar[]" parts.
const ImageField = "gambar"

// ErrNoBaseURL is returned by New when the API base address is not
// configured.
var ErrNoBaseURL = errors.New("api: base URL is not configured")

// TokenSource supplies the current bearer token, or "" when the
// session is unauthenticated.
type TokenSource interface {
	Token() string
}

// File is a file-typed field value for multipart submissions.
type File struct {
	// Name is the filename reported to the server.
	Name string
	// Content is the raw file payload.
	Content []byte
}

// Error is a response-level failure carrying the server's explanatory
// message, which call sites surface to the user verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// Config holds the client's construction parameters.
type Config struct {
	// BaseURL is the backend base address, e.g. "http://localhost:8000/api".
	BaseURL string
	// StorageURL is the base address for stored images.
	StorageURL string
	// SpoofUpdates sends updates as POST with an embedded
	// _method=PUT field instead of a true PUT. The transport owns
	// the wire-level verb; callers only express create-vs-update
	// intent through the presence of an id.
	SpoofUpdates bool
	// HTTPClient overrides the underlying transport when set.
	HTTPClient *http.Client
}

// Client talks to the DDP REST backend.
type Client struct {
	base           string
	storage        string
	spoof          bool
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
	log            *zap.Logger
}

// New constructs a Client. It fails when no base URL is configured.
func New(cfg Config, tokens TokenSource, log *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base:    strings.TrimSuffix(cfg.BaseURL, "/"),
		storage: strings.TrimSuffix(cfg.StorageURL, "/"),
		spoof:   cfg.SpoofUpdates,
		http:    httpClient,
		tokens:  tokens,
		log:     log,
	}, nil
}

// OnUnauthorized registers the hook fired whenever any request comes
// back with a 401. The hook runs before the error is returned to the
// call site.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// ImageURL joins the storage base with a stored relative path. Returns
// "" for an empty path.
func (c *Client) ImageURL(path string) string {
	if path == "" || c.storage == "" {
		return ""
	}
	return c.storage + "/" + strings.TrimPrefix(path, "/")
}

// do decorates and executes a request. Any response other than 2xx is
// converted into an *Error carrying the server's message; a 401
// additionally fires the unauthorized hook.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if t := c.tokens.Token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	c.log.Debug("api request", zap.String("method", req.Method), zap.String("url", req.URL.String()))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{StatusCode: resp.StatusCode, Message: decodeMessage(resp.Body)}
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, apiErr
	}
	return resp, nil
}

// decodeMessage extracts the "message" field from an error body.
func decodeMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	return payload.Message
}

// ListResult is a decoded resource collection. Plain-array responses
// report a single page.
type ListResult struct {
	Records     []models.Record
	CurrentPage int
	LastPage    int
}

// List fetches a resource collection. The backend answers either with
// a bare array or with a paginated envelope; both shapes are handled.
func (c *Client) List(ctx context.Context, resource string) (*ListResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+resource, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	if err := json.Unmarshal(raw, &records); err == nil {
		return &ListResult{Records: records, CurrentPage: 1, LastPage: 1}, nil
	}

	var envelope struct {
		Data        []models.Record `json:"data"`
		CurrentPage int             `json:"current_page"`
		LastPage    int             `json:"last_page"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", resource, err)
	}
	return &ListResult{Records: envelope.Data, CurrentPage: envelope.CurrentPage, LastPage: envelope.LastPage}, nil
}

// Save submits a record as multipart form data. A record carrying an
// id is an update addressed to /{resource}/{id}; without one it is a
// plain create against the collection. File fields are never dropped;
// nil fields are omitted instead of being sent as literal text.
func (c *Client) Save(ctx context.Context, resource string, record models.Record) (models.Record, error) {
	id := record.ID()
	update := id != 0

	body, contentType, err := encodeForm(record, update && c.spoof)
	if err != nil {
		return nil, err
	}

	url := c.base + "/" + resource
	method := http.MethodPost
	if update {
		url += "/" + strconv.FormatInt(id, 10)
		if !c.spoof {
			method = http.MethodPut
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var saved models.Record
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		if errors.Is(err, io.EOF) {
			return models.Record{}, nil
		}
		return nil, fmt.Errorf("decode saved %s: %w", resource, err)
	}
	return saved, nil
}

// Remove deletes one record.
func (c *Client) Remove(ctx context.Context, resource string, id int64) error {
	url := c.base + "/" + resource + "/" + strconv.FormatInt(id, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Toggle flips a boolean flag through the resource's dedicated
// per-action endpoint and returns the server's confirmation message.
// Business-rule rejections come back as an *Error whose Message is the
// server's explanation, to be shown verbatim.
func (c *Client) Toggle(ctx context.Context, resource string, id int64, action string) (string, error) {
	url := fmt.Sprintf("%s/%s/%d/toggle-%s", c.base, resource, id, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("decode toggle ack: %w", err)
	}
	return payload.Message, nil
}

// Stats fetches the dashboard aggregate counts.
func (c *Client) Stats(ctx context.Context) (*models.DashboardStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/stats/capaian", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var stats models.DashboardStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &stats, nil
}

// Login submits credentials and returns the issued token with the
// authenticated identity.
func (c *Client) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var payload struct {
		AccessToken string       `json:"access_token"`
		User        *models.User `json:"user"`
	}
	if err := c.postJSON(ctx, "/login", map[string]string{"email": email, "password": password}, &payload); err != nil {
		return "", nil, err
	}
	if payload.AccessToken == "" || payload.User == nil {
		return "", nil, errors.New("login response missing token or user")
	}
	return payload.AccessToken, payload.User, nil
}

// Register submits a new-account request. No session is established;
// the account waits for super-admin approval. Returns the server's
// confirmation message.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	var payload struct {
		Message string `json:"message"`
	}
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.postJSON(ctx, "/register", body, &payload); err != nil {
		return "", err
	}
	return payload.Message, nil
}

// Logout asks the server to invalidate the current token.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/logout", nil, nil)
}

// postJSON sends a JSON body and decodes the JSON response into out
// when out is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// encodeForm builds the multipart body for Save. The image field is
// special-cased: a slice contributes one repeated "gambar[]" part per
// file-typed element, in input order, skipping anything that is not a
// file; a scalar file is appended directly. Every other non-nil field
// is stringified. Field order is deterministic (sorted by name) except
// for image slices, which keep their input order.
func encodeForm(record models.Record, spoof bool) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := record[k]
		if v == nil {
			continue
		}
		if k == ImageField {
			if err := encodeImageField(w, v); err != nil {
				return nil, "", err
			}
			continue
		}
		if f, ok := asFile(v); ok {
			if err := appendFile(w, k, f); err != nil {
				return nil, "", err
			}
			continue
		}
		if err := w.WriteField(k, stringify(v)); err != nil {
			return nil, "", err
		}
	}

	if spoof {
		if err := w.WriteField("_method", "PUT"); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func encodeImageField(w *multipart.Writer, v any) error {
	switch vv := v.(type) {
	case []*File:
		for _, f := range vv {
			if err := appendFile(w, ImageField+"[]", f); err != nil {
				return err
			}
		}
	case []any:
		for _, elem := range vv {
			f, ok := asFile(elem)
			if !ok {
				continue
			}
			if err := appendFile(w, ImageField+"[]", f); err != nil {
				return err
			}
		}
	default:
		if f, ok := asFile(v); ok {
			return appendFile(w, ImageField, f)
		}
		return w.WriteField(ImageField, stringify(v))
	}
	return nil
}

func asFile(v any) (*File, bool) {
	switch f := v.(type) {
	case *File:
		return f, true
	case File:
		return &f, true
	default:
		return nil, false
	}
}

func appendFile(w *multipart.Writer, field string, f *File) error {
	part, err := w.CreateFormFile(field, f.Name)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Content)
	return err
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
