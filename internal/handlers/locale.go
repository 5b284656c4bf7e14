package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"dream_weaver/internal/locale"
)

type LocaleHandler struct {
	bundle *locale.Bundle
	logger *zap.Logger
}

func NewLocaleHandler(bundle *locale.Bundle, logger *zap.Logger) *LocaleHandler {
	return &LocaleHandler{bundle: bundle, logger: logger}
}

func (h *LocaleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	op := "handlers.LocaleHandler.HandleGet"

	writeJSON(w, h.logger, op, http.StatusOK, map[string]any{
		"locale":    h.bundle.Locale(),
		"supported": h.bundle.Supported(),
	})
}

func (h *LocaleHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	op := "handlers.LocaleHandler.HandleSet"

	var req struct {
		Locale string `json:"locale"`
	}
	if err := decodeBody(r, &req, false); err != nil {
		badRequest(w, h.logger, h.bundle, op, err)
		return
	}

	if err := h.bundle.SetLocale(r.Context(), req.Locale); err != nil {
		respondAppError(w, h.logger, h.bundle, op, err)
		return
	}

	h.HandleGet(w, r)
}

func (h *LocaleHandler) HandleRandomPrompt(w http.ResponseWriter, r *http.Request) {
	op := "handlers.LocaleHandler.HandleRandomPrompt"

	writeJSON(w, h.logger, op, http.StatusOK, h.bundle.RandomPrompt())
}
