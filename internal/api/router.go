package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tagtree/internal/treeservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *treeservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Tree.
	r.Get("/tree", h.Tree)
	r.Get("/nodes/{id}", h.Node)
	r.Post("/nodes/{id}/expand", h.ExpandNode)
	r.Post("/nodes/{id}/collapse", h.CollapseNode)
	r.Post("/open", h.Open)
	r.Post("/save", h.Save)
	r.Put("/root-label", h.SetRootLabel)

	// Selection and intents.
	r.Get("/selection", h.GetSelection)
	r.Put("/selection", h.SetSelection)
	r.Post("/selection/rename", h.Rename)
	r.Post("/selection/edit", h.Edit)
	r.Post("/selection/create", h.Create)
	r.Post("/selection/{intent}", h.ApplyIntent)
	r.Get("/capabilities", h.Capabilities)

	// Search.
	r.Post("/search", h.StartSearch)
	r.Post("/search/next", h.ContinueSearch)
	r.Delete("/search", h.CancelSearch)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
