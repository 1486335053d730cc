package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TWRT/taskboard/internal/service"
)

// brokenWriter accepts headers but fails every body write, like a client that
// hung up mid-response.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestWriteJSON_LogsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := brokenWriter{httptest.NewRecorder()}

	writeJSON(w, zap.New(core), http.StatusOK, map[string]string{"title": "Buy milk"})

	assert.Equal(t, http.StatusOK, w.Code)
	entries := logs.FilterMessage("write response failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])
}

func TestWriteJSON_SilentOnSuccess(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := httptest.NewRecorder()

	writeMessage(rec, zap.New(core), http.StatusCreated, "ok")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"ok"}`, rec.Body.String())
	assert.Zero(t, logs.Len())
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{&service.ValidationError{Field: "title", Message: "Title is required"}, http.StatusBadRequest, "Title is required"},
		{service.ErrUserExists, http.StatusBadRequest, "User already exists"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{service.ErrUnauthorized, http.StatusUnauthorized, "Not authorized"},
		{service.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{errors.New("disk full"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, zap.NewNop(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, `{"message":"`+tt.msg+`"}`, rec.Body.String())
		})
	}
}
