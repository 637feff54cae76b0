package api

import (
	"context"

	"github.com/emergqr/emergqr/internal/client/models"
)

type Client interface {
	SetToken(token string)
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Register(ctx context.Context, payload models.RegisterPayload) (*models.AuthResponse, error)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
	Profile(ctx context.Context) (*models.Profile, error)
	UploadAvatar(ctx context.Context, filename string, data []byte) (*models.Profile, error)
	QR(ctx context.Context) (*models.QRCode, error)
	RegenerateQR(ctx context.Context) (*models.QRCode, error)
	Ping(ctx context.Context) error
}
