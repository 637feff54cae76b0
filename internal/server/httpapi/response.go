package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	wire "github.com/emergqr/emergqr/internal/client/models"
	"github.com/emergqr/emergqr/internal/common"
	"github.com/emergqr/emergqr/internal/server/models"
	"github.com/emergqr/emergqr/internal/server/services"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type emergencyResponse struct {
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeServiceError maps domain errors onto status codes and {detail}
// bodies. Anything unrecognised is logged and reported as a 500.
func (h *handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, wire.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, validationDetail(err))
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
	case errors.Is(err, services.ErrWrongPassword):
		writeError(w, http.StatusBadRequest, "Incorrect current password")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func validationDetail(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, "validation error: "); ok {
		msg = rest
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func toProfile(c *models.Client) *wire.Profile {
	created := c.CreatedAt
	p := &wire.Profile{
		ID:            c.ID,
		UUID:          c.UUID,
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		Username:      c.Username,
		AvatarURL:     c.AvatarURL,
		FullAvatarURL: c.AvatarURL,
		IsActive:      c.IsActive,
		IsAdmin:       c.IsAdmin,
	}
	if !created.IsZero() {
		p.CreatedAt = &created
	}
	return p
}

func toAuthResponse(res *services.AuthResult) *wire.AuthResponse {
	return &wire.AuthResponse{AccessToken: res.AccessToken, Client: toProfile(res.Client)}
}
