// Package models defines the client-side records exchanged with the EmergQR API.
package models

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ErrValidation is returned for malformed credentials before any network call.
var ErrValidation = errors.New("validation error")

// Profile is the authenticated client record. An identity restored offline
// carries only UUID.
type Profile struct {
	ID            int64      `json:"id,omitempty"`
	UUID          string     `json:"uuid"`
	Name          string     `json:"name,omitempty"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Username      string     `json:"username,omitempty"`
	AvatarURL     string     `json:"avatar_url,omitempty"`
	FullAvatarURL string     `json:"full_avatar_url,omitempty"`
	IsActive      bool       `json:"is_active,omitempty"`
	IsAdmin       bool       `json:"is_admin,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// DisplayName picks the most readable label available.
func (p *Profile) DisplayName() string {
	switch {
	case p == nil:
		return ""
	case p.Name != "":
		return p.Name
	case p.Username != "":
		return p.Username
	case p.Email != "":
		return p.Email
	default:
		return p.UUID
	}
}

// Credentials are passed to sign-in and never stored.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	email := strings.TrimSpace(c.Email)
	if email == "" || c.Password == "" {
		return fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, email)
	}
	return nil
}

// RegisterPayload is sent to POST /auth/register.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterPayload) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return Credentials{Email: r.Email, Password: r.Password}.Validate()
}

// ChangePasswordRequest is sent to POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" || r.NewPassword == "" {
		return fmt.Errorf("%w: current and new password are required", ErrValidation)
	}
	if r.CurrentPassword == r.NewPassword {
		return fmt.Errorf("%w: new password must differ from the current one", ErrValidation)
	}
	return nil
}

// AuthResponse is returned by every /auth endpoint that issues a token.
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	Client      *Profile `json:"client"`
}

// QRCode is the emergency QR payload of the current client.
type QRCode struct {
	Token string `json:"qr_token"`
	URL   string `json:"url"`
}
