package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dream_weaver/internal/apperr"
	"dream_weaver/internal/discovery"
)

// FollowToggler is the write side of the follow store.
type FollowToggler interface {
	Toggle(ctx context.Context, id string) bool
}

type FollowHandler struct {
	follows    FollowToggler
	discoverer *discovery.Discoverer
	current    func() discovery.KeywordSet
	observe    func(following bool)
	tr         Translator
	logger     *zap.Logger
}

func NewFollowHandler(
	follows FollowToggler,
	discoverer *discovery.Discoverer,
	current func() discovery.KeywordSet,
	observe func(following bool),
	tr Translator,
	logger *zap.Logger,
) *FollowHandler {
	return &FollowHandler{
		follows:    follows,
		discoverer: discoverer,
		current:    current,
		observe:    observe,
		tr:         tr,
		logger:     logger,
	}
}

// HandleConnections lists every followed directory user.
func (h *FollowHandler) HandleConnections(w http.ResponseWriter, r *http.Request) {
	op := "handlers.FollowHandler.HandleConnections"

	connections := h.discoverer.Connections(h.current())
	resp := map[string]any{"data": connections}
	if len(connections) == 0 {
		resp["message"] = h.tr.T("connections_none")
	}
	writeJSON(w, h.logger, op, http.StatusOK, resp)
}

func (h *FollowHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	op := "handlers.FollowHandler.HandleToggle"

	userID := chi.URLParam(r, "userID")
	if _, ok := h.discoverer.Profile(userID, discovery.KeywordSet{}); !ok {
		respondAppError(w, h.logger, h.tr, op, apperr.NotFound("directory user not found"))
		return
	}

	following := h.follows.Toggle(r.Context(), userID)
	if h.observe != nil {
		h.observe(following)
	}

	writeJSON(w, h.logger, op, http.StatusOK, map[string]any{
		"userId":      userID,
		"isFollowing": following,
	})
}

func (h *FollowHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	op := "handlers.FollowHandler.HandleProfile"

	profile, ok := h.discoverer.Profile(chi.URLParam(r, "userID"), h.current())
	if !ok {
		respondAppError(w, h.logger, h.tr, op, apperr.NotFound("directory user not found"))
		return
	}

	writeJSON(w, h.logger, op, http.StatusOK, profile)
}
