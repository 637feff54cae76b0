package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrProtocol     = errors.New("malformed server response")
)

const (
	MessageSessionExpired = "Your session has expired. Please log in again."
	MessageNoConnection   = "Could not connect to the server. Please check your internet connection."
)

// Error is a non-2xx API response. It unwraps to ErrUnauthorized or
// ErrUnavailable when the status means one of those.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Detail)
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return nil
	}
}

// Message returns the human-readable text stored in the session snapshot.
// The server's detail wins when there is one.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return MessageSessionExpired
	case errors.Is(err, ErrUnavailable):
		return MessageNoConnection
	default:
		return err.Error()
	}
}
