package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/chat"
	"github.com/spigell/outfit-advisor/internal/outfit"
	"github.com/spigell/outfit-advisor/internal/recommend"
	"github.com/spigell/outfit-advisor/internal/store"
	"github.com/spigell/outfit-advisor/internal/supabase"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
	Success bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, data any, log *zap.Logger) {
	writeEnvelope(w, status, Envelope{Success: status < 400, Data: data}, log)
}

func writeError(w http.ResponseWriter, status int, message string, log *zap.Logger) {
	writeEnvelope(w, status, Envelope{Error: message}, log)
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope, log *zap.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(env); err != nil && log != nil {
		log.Error("failed to encode response", zap.Error(err))
	}
}

// handleError maps an error to its status code. Unknown errors are logged
// and reported without details.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *ValidationError
		apiErr        *supabase.APIError
	)

	switch {
	case errors.As(err, &validationErr):
		writeEnvelope(w, http.StatusBadRequest, Envelope{Error: "validation failed", Details: validationErr.Fields}, s.logger)
	case errors.Is(err, ErrBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error(), s.logger)
	case errors.Is(err, recommend.ErrInvalidRequest), errors.Is(err, store.ErrInvalidDataURL):
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
	case errors.Is(err, supabase.ErrNoSession):
		writeError(w, http.StatusUnauthorized, "authentication required", s.logger)
	case errors.Is(err, recommend.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error(), s.logger)
	case errors.Is(err, supabase.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", s.logger)
	case errors.Is(err, recommend.ErrImageUnreachable):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), s.logger)
	case errors.Is(err, chat.ErrNoResponse), errors.Is(err, outfit.ErrBadReply):
		s.requestLogger(r).Warn("model request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "the model did not return a usable answer", s.logger)
	case errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden):
		writeError(w, apiErr.Status, apiErr.Message, s.logger)
	case errors.As(err, &apiErr):
		s.requestLogger(r).Error("backend request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "backend request failed", s.logger)
	default:
		s.requestLogger(r).Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error", s.logger)
	}
}
