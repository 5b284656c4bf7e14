package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dream_weaver/internal/models"
	"dream_weaver/internal/storage"
)

type JournalHandler struct {
	storage *storage.JournalStorage
	tr      Translator
	logger  *zap.Logger
}

func NewJournalHandler(s *storage.JournalStorage, tr Translator, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{storage: s, tr: tr, logger: logger}
}

func (jh *JournalHandler) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	op := "handlers.JournalHandler.HandleCreateEntry"

	var in models.EntryInput
	if err := decodeBody(r, &in, false); err != nil {
		badRequest(w, jh.logger, jh.tr, op, err)
		return
	}

	entry, err := jh.storage.Create(r.Context(), in)
	if err != nil {
		respondAppError(w, jh.logger, jh.tr, op, err)
		return
	}

	writeJSON(w, jh.logger, op, http.StatusCreated, entry)
}

func (jh *JournalHandler) HandleGetEntries(w http.ResponseWriter, r *http.Request) {
	op := "handlers.JournalHandler.HandleGetEntries"

	writeJSON(w, jh.logger, op, http.StatusOK, map[string]any{
		"data": jh.storage.List(),
	})
}

func (jh *JournalHandler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	op := "handlers.JournalHandler.HandleGetEntry"

	entry, err := jh.storage.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, jh.logger, jh.tr, op, err)
		return
	}

	writeJSON(w, jh.logger, op, http.StatusOK, entry)
}

func (jh *JournalHandler) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	op := "handlers.JournalHandler.HandleUpdateEntry"

	var in models.EntryInput
	if err := decodeBody(r, &in, false); err != nil {
		badRequest(w, jh.logger, jh.tr, op, err)
		return
	}

	entry, err := jh.storage.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondAppError(w, jh.logger, jh.tr, op, err)
		return
	}

	writeJSON(w, jh.logger, op, http.StatusOK, entry)
}

func (jh *JournalHandler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	op := "handlers.JournalHandler.HandleDeleteEntry"

	if err := jh.storage.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondAppError(w, jh.logger, jh.tr, op, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
