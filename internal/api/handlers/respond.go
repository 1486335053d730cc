package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/service"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent, so the client only sees a truncated body.
		logger.Debug("write response failed", zap.Int("status", status), zap.Error(err))
	}
}

func writeMessage(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	writeJSON(w, logger, status, models.MessageResponse{Message: message})
}

// writeError maps service errors onto HTTP statuses. Anything unrecognised is
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, logger, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrUserExists):
		writeMessage(w, logger, http.StatusBadRequest, service.ErrUserExists.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, logger, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeMessage(w, logger, http.StatusUnauthorized, service.ErrUnauthorized.Error())
	case errors.Is(err, service.ErrTaskNotFound):
		writeMessage(w, logger, http.StatusNotFound, service.ErrTaskNotFound.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		writeMessage(w, logger, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return &service.ValidationError{Field: "body", Message: "Error trying to read the body: " + err.Error()}
	}
	if len(body) == 0 && allowEmpty {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &service.ValidationError{Field: "body", Message: fmt.Sprintf("Invalid JSON: %v", err)}
	}
	return nil
}
