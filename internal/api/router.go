package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/site"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// contentRoot is used to resolve the assets directory.
func NewRouter(svc *docservice.Service, builder *site.Builder, authEnabled bool, token string, sseHandler http.Handler, contentRoot string) chi.Router {
	h := NewHandler(svc, builder)
	ah := NewAssetHandler(contentRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents (read-side; sources are authored out of band).
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/*", h.GetDocument)

	// Search and taxonomy.
	r.Get("/search", h.Search)
	r.Get("/tags", h.Tags)
	r.Get("/categories", h.Categories)

	// Full site rebuild.
	r.Post("/build", h.Build)

	// Asset upload (auth-protected).
	r.Post("/assets", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
