package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dream_weaver/internal/ai"
	"dream_weaver/internal/storage"
	"dream_weaver/internal/usecases"
)

// Assistant is the AI tool surface the handlers call.
type Assistant interface {
	Interpret(ctx context.Context, text, image string) (string, error)
	ContinueStory(ctx context.Context, text string) (ai.StorySpark, error)
	Visualize(ctx context.Context, keywords string) (string, error)
}

type AIHandler struct {
	journal   *storage.JournalStorage
	assistant Assistant
	tr        Translator
	logger    *zap.Logger
}

func NewAIHandler(journal *storage.JournalStorage, assistant Assistant, tr Translator, logger *zap.Logger) *AIHandler {
	return &AIHandler{journal: journal, assistant: assistant, tr: tr, logger: logger}
}

func (h *AIHandler) HandleInterpret(w http.ResponseWriter, r *http.Request) {
	op := "handlers.AIHandler.HandleInterpret"

	entry, err := h.journal.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, h.logger, h.tr, op, err)
		return
	}

	interpretation, err := h.assistant.Interpret(r.Context(), entry.Body, entry.Image)
	if err != nil {
		h.respondAIError(w, op, err)
		return
	}

	writeJSON(w, h.logger, op, http.StatusOK, map[string]string{
		"tool":   ai.ToolInterpreter,
		"result": interpretation,
	})
}

func (h *AIHandler) HandleStorySpark(w http.ResponseWriter, r *http.Request) {
	op := "handlers.AIHandler.HandleStorySpark"

	entry, err := h.journal.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, h.logger, h.tr, op, err)
		return
	}

	spark, err := h.assistant.ContinueStory(r.Context(), entry.Body)
	if err != nil {
		h.respondAIError(w, op, err)
		return
	}

	writeJSON(w, h.logger, op, http.StatusOK, map[string]any{
		"tool":        ai.ToolStorySpark,
		"result":      spark.Text,
		"suggestions": spark.Suggestions,
	})
}

func (h *AIHandler) HandleVisualize(w http.ResponseWriter, r *http.Request) {
	op := "handlers.AIHandler.HandleVisualize"

	entry, err := h.journal.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, h.logger, h.tr, op, err)
		return
	}

	imageURL, err := h.assistant.Visualize(r.Context(), usecases.VisualizerKeywords(entry))
	if err != nil {
		h.respondAIError(w, op, err)
		return
	}

	writeJSON(w, h.logger, op, http.StatusOK, map[string]string{
		"tool":     ai.ToolVisualizer,
		"imageUrl": imageURL,
	})
}

func (h *AIHandler) respondAIError(w http.ResponseWriter, op string, err error) {
	var aiErr *ai.Error
	if !errors.As(err, &aiErr) {
		respondAppError(w, h.logger, h.tr, op, err)
		return
	}

	status := http.StatusBadGateway
	switch aiErr.Reason {
	case ai.ReasonProvideTextOrImage:
		status = http.StatusBadRequest
	case ai.ReasonNoAPIKey:
		status = http.StatusServiceUnavailable
	case ai.ReasonPaidAPIKeyRequired:
		status = http.StatusPaymentRequired
	}

	writeError(w, h.logger, op, status, string(aiErr.Reason), h.tr.T(aiErr.Reason.MessageKey()), "")
}
