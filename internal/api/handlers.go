package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tagtree/internal/apperr"
	"github.com/starford/tagtree/internal/treeservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *treeservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *treeservice.Service) *Handler {
	return &Handler{svc: svc}
}

type validatable interface {
	Validate() error
}

// decode reads a JSON body into v and validates it. It writes the 400
// response itself and reports false on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if vv, ok := v.(validatable); ok {
		if err := vv.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return false
		}
	}
	return true
}

// nodeID parses the {id} URL parameter.
func nodeID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid node id"))
		return 0, false
	}
	return id, true
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func writeApplied(w http.ResponseWriter, op string, applied bool, err error) {
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, AppliedResponse{Applied: applied})
}

// Tree handles GET /api/tree.
//
//	@Summary		Snapshot of the display tree
//	@Tags			tree
//	@Produce		json
//	@Success		200	{object}	TreeResponse
//	@Security		BearerAuth
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	tv, err := h.svc.Tree(r.Context())
	if err != nil {
		writeError(w, "tree", err)
		return
	}
	writeJSON(w, http.StatusOK, tv)
}

// Node handles GET /api/nodes/{id}.
//
//	@Summary		Describe one data node
//	@Tags			tree
//	@Produce		json
//	@Param			id	path		int	true	"Node id"
//	@Success		200	{object}	NodeResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{id} [get]
func (h *Handler) Node(w http.ResponseWriter, r *http.Request) {
	id, ok := nodeID(w, r)
	if !ok {
		return
	}
	nd, err := h.svc.Node(r.Context(), id)
	if err != nil {
		writeError(w, "read node", err)
		return
	}
	writeJSON(w, http.StatusOK, nd)
}

// ExpandNode handles POST /api/nodes/{id}/expand.
func (h *Handler) ExpandNode(w http.ResponseWriter, r *http.Request) {
	id, ok := nodeID(w, r)
	if !ok {
		return
	}
	applied, err := h.svc.Expand(r.Context(), id)
	writeApplied(w, "expand", applied, err)
}

// CollapseNode handles POST /api/nodes/{id}/collapse.
func (h *Handler) CollapseNode(w http.ResponseWriter, r *http.Request) {
	id, ok := nodeID(w, r)
	if !ok {
		return
	}
	applied, err := h.svc.Collapse(r.Context(), id)
	writeApplied(w, "collapse", applied, err)
}

// GetSelection handles GET /api/selection.
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := h.svc.Selection(r.Context())
	if err != nil {
		writeError(w, "get selection", err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// SetSelection handles PUT /api/selection.
//
//	@Summary		Replace the selection
//	@Tags			selection
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SelectRequest	true	"Node ids, primary first"
//	@Success		200		{object}	SelectionResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/selection [put]
func (h *Handler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !decode(w, r, &req) {
		return
	}
	sel, err := h.svc.Select(r.Context(), req.IDs)
	if err != nil {
		writeError(w, "set selection", err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// ApplyIntent handles POST /api/selection/{intent}.
//
//	@Summary		Run an intent on the selection
//	@Tags			selection
//	@Produce		json
//	@Param			intent	path		string	true	"Intent"	Enums(delete, cut, copy, paste, move-up, move-down, refresh, expand, collapse)
//	@Param			confirm	query		bool	false	"Answer to the refresh confirmation"
//	@Success		200		{object}	AppliedResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/selection/{intent} [post]
func (h *Handler) ApplyIntent(w http.ResponseWriter, r *http.Request) {
	intent := chi.URLParam(r, "intent")
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	applied, err := h.svc.Apply(r.Context(), intent, confirm)
	writeApplied(w, intent, applied, err)
}

// Rename handles POST /api/selection/rename.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decode(w, r, &req) {
		return
	}
	applied, err := h.svc.Rename(r.Context(), req.Name)
	writeApplied(w, "rename", applied, err)
}

// Edit handles POST /api/selection/edit.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if !decode(w, r, &req) {
		return
	}
	applied, err := h.svc.Edit(r.Context(), req.Value)
	writeApplied(w, "edit", applied, err)
}

// Create handles POST /api/selection/create.
//
//	@Summary		Create a tag under the primary selected node
//	@Tags			selection
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateRequest	true	"Tag to create"
//	@Success		200		{object}	AppliedResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/selection/create [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !decode(w, r, &req) {
		return
	}
	applied, err := h.svc.Create(r.Context(), req.Kind, req.Name, req.Value)
	writeApplied(w, "create", applied, err)
}

// Capabilities handles GET /api/capabilities.
func (h *Handler) Capabilities(w http.ResponseWriter, r *http.Request) {
	caps, err := h.svc.Capabilities(r.Context())
	if err != nil {
		writeError(w, "capabilities", err)
		return
	}
	writeJSON(w, http.StatusOK, caps)
}

// Save handles POST /api/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Save(r.Context()); err != nil {
		slog.Error("save failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, AppliedResponse{Applied: true})
}

// Open handles POST /api/open.
//
//	@Summary		Replace the opened paths
//	@Tags			tree
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OpenRequest	true	"Paths to open"
//	@Success		200		{object}	OpenResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/open [post]
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if !decode(w, r, &req) {
		return
	}
	opened, err := h.svc.Open(r.Context(), req.Paths, req.Discard)
	if errors.Is(err, apperr.ErrConflict) {
		writeError(w, "open", err)
		return
	}
	resp := OpenResponse{Opened: opened}
	if resp.Opened == nil {
		resp.Opened = []string{}
	}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetRootLabel handles PUT /api/root-label.
func (h *Handler) SetRootLabel(w http.ResponseWriter, r *http.Request) {
	var req RootLabelRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.SetRootLabel(r.Context(), req.Label); err != nil {
		writeError(w, "set root label", err)
		return
	}
	writeJSON(w, http.StatusOK, AppliedResponse{Applied: true})
}

// StartSearch handles POST /api/search.
func (h *Handler) StartSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decode(w, r, &req) {
		return
	}
	applied, err := h.svc.Search(r.Context(), req.Name, req.Value)
	writeApplied(w, "search", applied, err)
}

// ContinueSearch handles POST /api/search/next.
func (h *Handler) ContinueSearch(w http.ResponseWriter, r *http.Request) {
	applied, err := h.svc.ContinueSearch(r.Context())
	writeApplied(w, "continue search", applied, err)
}

// CancelSearch handles DELETE /api/search.
func (h *Handler) CancelSearch(w http.ResponseWriter, r *http.Request) {
	applied, err := h.svc.CancelSearch(r.Context())
	writeApplied(w, "cancel search", applied, err)
}
