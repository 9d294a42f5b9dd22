package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ddp-ipb/ddp-admin/internal/middleware"
)

// NewRouter wires the REST surface the admin client consumes. Login
// and registration are public; everything else sits behind bearer
// authentication.
func NewRouter(auth *AuthHandler, resources *ResourceHandler, validator middleware.TokenValidator, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogging(log))

	r.Post("/login", auth.Login)
	r.Post("/register", auth.Register)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(validator))

		r.Post("/logout", auth.Logout)
		r.Get("/stats/capaian", resources.Stats)

		r.Get("/{resource}", resources.List)
		r.Post("/{resource}", resources.Create)
		r.Put("/{resource}/{id}", resources.Update)
		r.Post("/{resource}/{id}", resources.Update)
		r.Delete("/{resource}/{id}", resources.Delete)
		r.Post("/{resource}/{id}/toggle-{action}", resources.Toggle)
	})

	return r
}
