package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed call by what the caller should do about it.
type Kind string

const (
	// KindNetwork covers transport failures and timeouts; the call may be retried.
	KindNetwork Kind = "network"
	// KindUnauthenticated means the session is missing or expired.
	KindUnauthenticated Kind = "unauthenticated"
	// KindValidation carries a message meant for the offending form field.
	KindValidation Kind = "validation"
	// KindNotFound means the task vanished or is not owned by the session user.
	KindNotFound Kind = "not_found"
	KindServer   Kind = "server"
)

// APIError is returned by every failed Client call. Message holds only the
// server's own "message" field and is empty when the server sent none; Err
// keeps the transport or status detail for logs.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, detail)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthenticated
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindServer
	}
}

// KindOf returns the Kind of err, or "" when err is not an *APIError.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
