package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"dream_weaver/internal/apperr"
)

// Translator resolves a message key in the active locale.
type Translator interface {
	T(key string) string
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, op string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.String("op", op), zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, op string, status int, code, message, details string) {
	writeJSON(w, logger, op, status, errorResponse{Error: code, Message: message, Details: details})
}

// respondAppError maps an apperr type onto a status code and a localized message.
func respondAppError(w http.ResponseWriter, logger *zap.Logger, tr Translator, op string, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		writeError(w, logger, op, http.StatusInternalServerError, string(apperr.TypeInternal), tr.T("error_internal"), "")
		return
	}

	status, key := http.StatusInternalServerError, "error_internal"
	switch appErr.Type {
	case apperr.TypeValidation:
		status, key = http.StatusBadRequest, "error_validation"
	case apperr.TypeNotFound:
		status, key = http.StatusNotFound, "error_notFound"
	case apperr.TypeConflict:
		status, key = http.StatusConflict, "error_conflict"
	}

	details := appErr.Message
	if status == http.StatusInternalServerError {
		logger.Error("internal error", zap.String("op", op), zap.Error(err))
		details = ""
	}
	writeError(w, logger, op, status, string(appErr.Type), tr.T(key), details)
}

// decodeBody decodes a JSON request body. An empty body is allowed when optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func badRequest(w http.ResponseWriter, logger *zap.Logger, tr Translator, op string, err error) {
	logger.Debug("bad request body", zap.String("op", op), zap.Error(err))
	writeError(w, logger, op, http.StatusBadRequest, "BAD_REQUEST", tr.T("error_badRequest"), err.Error())
}
