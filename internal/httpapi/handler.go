// Package httpapi serves read-only JSON views of the group store.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/linkage/internal/record"
	"github.com/roach88/linkage/internal/store"
)

// Reader is the store surface the API needs.
// Implemented by store.Store and store.Memory.
type Reader interface {
	ListGroupIDs(ctx context.Context) ([]string, error)
	LoadGroup(ctx context.Context, id string) ([]record.Record, error)
	LoadProfile(ctx context.Context, id string) (store.Profile, error)
	FindAnchors(ctx context.Context, entityID string) ([]string, error)
}

// Handler wires group endpoints to a Reader.
type Handler struct {
	reader Reader
	logger *slog.Logger
}

// New constructs a group handler.
func New(reader Reader, logger *slog.Logger) *Handler {
	return &Handler{reader: reader, logger: logger}
}

// Register mounts group endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/groups", h.HandleListGroups)
	r.Get("/groups/{id}", h.HandleGetGroup)
	r.Get("/groups/{id}/profile", h.HandleGetProfile)
	r.Get("/entities/{id}/groups", h.HandleEntityGroups)
}

// HandleListGroups handles GET /groups.
func (h *Handler) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ids, err := h.reader.ListGroupIDs(ctx)
	if err != nil {
		h.fail(w, r, "list groups failed", err)
		return
	}

	resp := GroupListResponse{Groups: make([]GroupSummary, 0, len(ids))}
	for _, id := range ids {
		members, err := h.reader.LoadGroup(ctx, id)
		if err != nil {
			h.fail(w, r, "load group failed", err)
			return
		}
		resp.Groups = append(resp.Groups, GroupSummary{ID: id, Members: len(members)})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetGroup handles GET /groups/{id}.
func (h *Handler) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	members, err := h.reader.LoadGroup(r.Context(), id)
	if err != nil {
		h.fail(w, r, "load group failed", err)
		return
	}
	writeJSON(w, http.StatusOK, FromMembers(id, members))
}

// HandleGetProfile handles GET /groups/{id}/profile.
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.reader.LoadProfile(r.Context(), id)
	if err != nil {
		h.fail(w, r, "load profile failed", err)
		return
	}
	writeJSON(w, http.StatusOK, FromProfile(id, p))
}

// HandleEntityGroups handles GET /entities/{id}/groups.
func (h *Handler) HandleEntityGroups(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")

	ids, err := h.reader.FindAnchors(r.Context(), entityID)
	if err != nil {
		h.fail(w, r, "find anchors failed", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, EntityGroupsResponse{EntityID: entityID, Groups: ids})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	h.logger.ErrorContext(r.Context(), msg,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "")
}
