// Package router maps location fragments to views and gates the
// restricted ones by role.
package router

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ddp-ipb/ddp-admin/internal/models"
)

// Paths with dedicated handling during resolution.
const (
	PathDashboard = "/"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathUsers     = "/users"
)

// View is anything the router can mount. Render must respect its
// context: navigation away cancels it, and a view torn down mid-request
// must drop the late result instead of updating state.
type View interface {
	Render(ctx context.Context) error
}

// Session is the slice of the session store the router consults.
type Session interface {
	Authenticated() bool
	Role() int
}

// CanAccess reports whether a role may open a path. Exactly one view,
// user management, is restricted to super admins; every other
// authenticated view is open to any approved role.
func CanAccess(path string, role int) bool {
	if path == PathUsers {
		return role == models.RoleSuperAdmin
	}
	return true
}

// Router resolves fragments to registered views.
type Router struct {
	mu       sync.Mutex
	session  Session
	views    map[string]View
	notFound View
	denied   View
	fragment string
	current  View
	cancel   context.CancelFunc
}

// New creates an empty Router bound to a session.
func New(s Session) *Router {
	return &Router{session: s, views: make(map[string]View), fragment: PathDashboard}
}

// Handle registers a view for a path. The dashboard is the view
// registered at "/".
func (r *Router) Handle(path string, v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[path] = v
}

// NotFound registers the fallback for unrecognized fragments.
func (r *Router) NotFound(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound = v
}

// AccessDenied registers the in-place notice rendered when the role
// gate blocks a view. It replaces the blocked view only, so the
// surrounding layout stays visible; there is no redirect.
func (r *Router) AccessDenied(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.denied = v
}

// Resolve normalizes a fragment and picks the view for it.
// Unauthenticated sessions always land on the login view, except that
// the register fragment keeps the registration view reachable.
func (r *Router) Resolve(fragment string) (string, View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := strings.TrimPrefix(fragment, "#")
	if path == "" {
		path = PathDashboard
	}

	if !r.session.Authenticated() {
		if path == PathRegister {
			return PathRegister, r.views[PathRegister]
		}
		return PathLogin, r.views[PathLogin]
	}

	if !CanAccess(path, r.session.Role()) {
		return path, r.denied
	}

	v, ok := r.views[path]
	if !ok {
		return path, r.notFound
	}
	return path, v
}

// Navigate resolves the fragment, cancels the previous view's context
// and renders the new view. Responses arriving for the torn-down view
// see a cancelled context and are abandoned.
func (r *Router) Navigate(ctx context.Context, fragment string) error {
	path, v := r.Resolve(fragment)

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	viewCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.fragment = path
	r.current = v
	r.mu.Unlock()

	if v == nil {
		return errors.New("router: no view registered for " + path)
	}
	return v.Render(viewCtx)
}

// SetFragment forces the navigation state without rendering. The
// unauthorized interceptor uses it to point the client at the login
// view while a failed request is still unwinding.
func (r *Router) SetFragment(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.fragment = path
	r.current = nil
}

// Fragment returns the current navigation state.
func (r *Router) Fragment() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fragment
}

// CurrentView returns the mounted view, or nil right after a forced
// fragment change.
func (r *Router) CurrentView() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
