package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dream_weaver/internal/apperr"
	"dream_weaver/internal/discovery"
	"dream_weaver/internal/location"
	"dream_weaver/internal/models"
)

type DiscoveryHandler struct {
	sessions   *discovery.SessionManager
	discoverer *discovery.Discoverer
	provider   location.Provider
	current    func() discovery.KeywordSet
	tr         Translator
	logger     *zap.Logger
}

func NewDiscoveryHandler(
	sessions *discovery.SessionManager,
	discoverer *discovery.Discoverer,
	provider location.Provider,
	current func() discovery.KeywordSet,
	tr Translator,
	logger *zap.Logger,
) *DiscoveryHandler {
	return &DiscoveryHandler{
		sessions:   sessions,
		discoverer: discoverer,
		provider:   provider,
		current:    current,
		tr:         tr,
		logger:     logger,
	}
}

type openSessionRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type sessionResponse struct {
	ID         string                `json:"id"`
	State      discovery.State       `json:"state"`
	Location   *models.Location      `json:"location,omitempty"`
	Failure    location.Kind         `json:"failure,omitempty"`
	Message    string                `json:"message,omitempty"`
	Retry      bool                  `json:"retry"`
	Candidates []discovery.Candidate `json:"candidates"`
}

// HandleOpen starts a session. Coordinates in the body, typically from the client's own
// geolocation, take precedence over the server's provider.
func (h *DiscoveryHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	op := "handlers.DiscoveryHandler.HandleOpen"

	var req openSessionRequest
	if err := decodeBody(r, &req, true); err != nil {
		badRequest(w, h.logger, h.tr, op, err)
		return
	}

	provider := h.provider
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		if err := validateCoordinates(*req.Latitude, *req.Longitude); err != nil {
			respondAppError(w, h.logger, h.tr, op, err)
			return
		}
		provider = location.NewFixedProvider(*req.Latitude, *req.Longitude)
	case req.Latitude != nil || req.Longitude != nil:
		respondAppError(w, h.logger, h.tr, op, apperr.Validation("latitude and longitude must be given together"))
		return
	}

	session, _ := h.sessions.Open(r.Context(), provider)
	writeJSON(w, h.logger, op, http.StatusCreated, h.view(session, ""))
}

func (h *DiscoveryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	op := "handlers.DiscoveryHandler.HandleGet"

	session, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, h.logger, h.tr, op, err)
		return
	}

	writeJSON(w, h.logger, op, http.StatusOK, h.view(session, r.URL.Query().Get("q")))
}

func (h *DiscoveryHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	op := "handlers.DiscoveryHandler.HandleRetry"

	session, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, h.logger, h.tr, op, err)
		return
	}

	if _, err := session.Retry(r.Context()); err != nil {
		respondAppError(w, h.logger, h.tr, op, err)
		return
	}

	writeJSON(w, h.logger, op, http.StatusOK, h.view(session, ""))
}

func (h *DiscoveryHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.sessions.Close(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *DiscoveryHandler) view(session *discovery.Session, query string) sessionResponse {
	status := session.Status()
	resp := sessionResponse{
		ID:         session.ID,
		State:      status.State,
		Location:   status.Location,
		Candidates: []discovery.Candidate{},
	}

	switch status.State {
	case discovery.StateLocationFailed:
		resp.Failure = status.Failure
		resp.Message = h.tr.T(status.Failure.MessageKey())
		resp.Retry = true
	case discovery.StateLocationResolved:
		candidates, err := session.Candidates(h.discoverer, query, h.current())
		if errors.Is(err, discovery.ErrNoLocation) {
			// closed between the status read and here
			resp.State = discovery.StateIdle
			resp.Location = nil
			break
		}
		resp.Candidates = candidates
		if len(candidates) == 0 {
			resp.Message = h.tr.T("discovery_noNearbyUsers")
		}
	}
	return resp
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return apperr.Validation(fmt.Sprintf("coordinates out of range: %v,%v", lat, lon))
	}
	return nil
}
