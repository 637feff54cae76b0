package clients

import (
	"context"

	"github.com/emergqr/emergqr/internal/server/models"
)

// Repository persists client accounts. Lookups that match nothing return
// common.ErrorNotFound; a duplicate email returns common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, c *models.Client) (*models.Client, error)
	GetByEmail(ctx context.Context, email string) (*models.Client, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Client, error)
	GetByQRToken(ctx context.Context, token string) (*models.Client, error)
	UpdatePassword(ctx context.Context, uuid, hash string) error
	UpdateAvatar(ctx context.Context, uuid, url string) error
	UpdateQRToken(ctx context.Context, uuid, token string) error
}
