package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Unwrap(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusBadGateway, ErrUnavailable},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusGatewayTimeout, ErrUnavailable},
	}
	for _, tt := range tests {
		require.ErrorIs(t, &Error{Status: tt.status}, tt.want, "status %d", tt.status)
	}

	plain := &Error{Status: http.StatusConflict, Detail: "exists"}
	assert.False(t, errors.Is(plain, ErrUnauthorized))
	assert.False(t, errors.Is(plain, ErrUnavailable))
	assert.Equal(t, "request failed with status 409: exists", plain.Error())
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"detail wins", &Error{Status: http.StatusUnauthorized, Detail: "Incorrect email or password"}, "Incorrect email or password"},
		{"rejection without detail", &Error{Status: http.StatusUnauthorized}, MessageSessionExpired},
		{"wrapped rejection", fmt.Errorf("profile: %w", ErrUnauthorized), MessageSessionExpired},
		{"network", fmt.Errorf("%w: dial tcp: refused", ErrUnavailable), MessageNoConnection},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}
