// Package session holds the authenticated identity and bearer token
// for the running client, persisted across restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// State is the session lifecycle phase.
type State int

const (
	// StateLoading means the persisted session has not been restored
	// yet; no view may be routed.
	StateLoading State = iota
	// StateUnauthenticated means no valid token is held.
	StateUnauthenticated
	// StateAuthenticated means a token and identity are present.
	StateAuthenticated
)

// API is the slice of the HTTP client the session store drives.
type API interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Register(ctx context.Context, name, email, password string) (string, error)
	Logout(ctx context.Context) error
}

// persisted is the on-disk session shape.
type persisted struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Store is the process-wide session singleton. The token is present if
// and only if the session is authenticated; a rejected token forces
// the store back to the unauthenticated state.
type Store struct {
	mu    sync.Mutex
	path  string
	state State
	token string
	user  *models.User
	api   API
	log   *zap.Logger
}

// NewStore creates a Store in the loading state. Call Restore before
// routing any view, and Bind once the HTTP client exists.
func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, state: StateLoading, log: log}
}

// DefaultPath returns the session file location under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ddp-admin", "session.json"), nil
}

// Bind attaches the HTTP client used for login, register and logout.
// The store and the client reference each other (the client reads the
// token, the store drives auth calls), so binding happens after both
// exist.
func (s *Store) Bind(api API) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.api = api
}

// Restore synchronously loads a previously persisted identity. A
// missing or unreadable file leaves the store unauthenticated.
func (s *Store) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateUnauthenticated
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil {
		s.log.Warn("discarding corrupt session file", zap.Error(err))
		return nil
	}
	if p.Token == "" || p.User == nil {
		return nil
	}
	s.token = p.Token
	s.user = p.User
	s.state = StateAuthenticated
	return nil
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the current identity, or nil.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// State returns the lifecycle phase.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated reports whether a session is active.
func (s *Store) Authenticated() bool {
	return s.State() == StateAuthenticated
}

// Role returns the current identity's role level, or 0 when
// unauthenticated.
func (s *Store) Role() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return 0
	}
	return s.user.Role
}

// Login submits credentials. On success the token and identity are
// stored and persisted; on failure the existing session state is left
// untouched and the server's rejection is returned.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	api := s.boundAPI()
	if api == nil {
		return nil, errors.New("session: no API bound")
	}
	token, user, err := api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.state = StateAuthenticated
	err = s.persistLocked()
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("failed to persist session", zap.Error(err))
	}
	return user, nil
}

// Register submits a new-account request. No session is established;
// the account needs super-admin approval before it can log in.
func (s *Store) Register(ctx context.Context, name, email, password string) (string, error) {
	api := s.boundAPI()
	if api == nil {
		return "", errors.New("session: no API bound")
	}
	return api.Register(ctx, name, email, password)
}

// Logout invalidates the token server-side on a best-effort basis,
// then unconditionally clears the local session.
func (s *Store) Logout(ctx context.Context) error {
	api := s.boundAPI()
	if api != nil {
		if err := api.Logout(ctx); err != nil {
			s.log.Debug("server-side logout failed", zap.Error(err))
		}
	}
	s.Expire()
	return nil
}

// Expire drops the session: token and identity are cleared in memory
// and on disk and the state returns to unauthenticated. Used for both
// explicit logout and forced expiry on a rejected token.
func (s *Store) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.state = StateUnauthenticated
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove session file", zap.Error(err))
	}
}

func (s *Store) boundAPI() API {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.api
}

func (s *Store) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(persisted{Token: s.token, User: s.user})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
