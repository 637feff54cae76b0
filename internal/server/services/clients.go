// Package services contains the server-side business logic. ClientService
// covers registration, login, password changes, profile and avatar updates,
// and the emergency QR token.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/emergqr/emergqr/internal/common"
	"github.com/emergqr/emergqr/internal/dbx"
	"github.com/emergqr/emergqr/internal/server/auth"
	"github.com/emergqr/emergqr/internal/server/config"
	"github.com/emergqr/emergqr/internal/server/models"
	"github.com/emergqr/emergqr/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrWrongPassword is returned by ChangePassword when the current password
// does not match.
var ErrWrongPassword = errors.New("incorrect current password")

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72

	qrTokenBytes = 16
)

// AuthResult is returned by Register, Login and ChangePassword.
type AuthResult struct {
	AccessToken string
	Client      *models.Client
}

// AvatarStore persists avatar images and returns their public URL.
type AvatarStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type ClientService struct {
	db                  *sql.DB
	repomanager         repomanager.RepositoryManager
	avatars             AvatarStore
	jwtSecret           []byte
	accessTokenValidity time.Duration
	publicBaseURL       string
	bcryptCost          int
}

func NewClientService(db *sql.DB, m repomanager.RepositoryManager, avatars AvatarStore, cfg *config.Config) *ClientService {
	return &ClientService{
		db:                  db,
		repomanager:         m,
		avatars:             avatars,
		jwtSecret:           []byte(cfg.SecretKey),
		accessTokenValidity: cfg.AccessTokenValidityDuration,
		publicBaseURL:       strings.TrimRight(cfg.PublicBaseURL, "/"),
		bcryptCost:          bcrypt.DefaultCost,
	}
}

// Register creates an account and signs it in. A taken email yields
// common.ErrorAlreadyExists.
func (s *ClientService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	qrToken, err := newQRToken()
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		UUID:         uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		QRToken:      qrToken,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Clients(tx)
		if _, err := repo.GetByEmail(ctx, email); err == nil {
			return common.ErrorAlreadyExists
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		client, err = repo.Create(ctx, client)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating client: %w", err)
	}

	return s.issue(client)
}

// Login checks the credentials and returns a fresh access token. Unknown
// emails, wrong passwords and inactive accounts all yield
// common.ErrorUnauthorized.
func (s *ClientService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	client, err := s.repomanager.Clients(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading client: %w", err)
	}
	if !client.IsActive {
		return nil, common.ErrorUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}
	return s.issue(client)
}

// ChangePassword replaces the password of clientUUID after verifying the
// current one and signs the client in again with a fresh token.
func (s *ClientService) ChangePassword(ctx context.Context, clientUUID, current, next string) (*AuthResult, error) {
	if current == next {
		return nil, fmt.Errorf("%w: new password must differ from the current one", common.ErrorValidation)
	}
	if err := checkPassword(next); err != nil {
		return nil, err
	}

	var client *models.Client
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Clients(tx)

		c, err := repo.GetByUUID(ctx, clientUUID)
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(current)) != nil {
			return ErrWrongPassword
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if err := repo.UpdatePassword(ctx, clientUUID, string(hash)); err != nil {
			return err
		}
		c.PasswordHash = string(hash)
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issue(client)
}

// Profile returns the account of clientUUID.
func (s *ClientService) Profile(ctx context.Context, clientUUID string) (*models.Client, error) {
	return s.repomanager.Clients(s.db).GetByUUID(ctx, clientUUID)
}

// UploadAvatar stores data as the avatar of clientUUID and returns the
// updated account.
func (s *ClientService) UploadAvatar(ctx context.Context, clientUUID, filename, contentType string, data []byte) (*models.Client, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", common.ErrorValidation)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: avatar must be an image, got %s", common.ErrorValidation, contentType)
	}

	key := fmt.Sprintf("clients/%s/%s%s", clientUUID, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	url, err := s.avatars.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("error storing avatar: %w", err)
	}

	repo := s.repomanager.Clients(s.db)
	if err := repo.UpdateAvatar(ctx, clientUUID, url); err != nil {
		return nil, err
	}
	return repo.GetByUUID(ctx, clientUUID)
}

// QR returns the current emergency QR token of clientUUID and the public URL
// it resolves to.
func (s *ClientService) QR(ctx context.Context, clientUUID string) (token, url string, err error) {
	client, err := s.repomanager.Clients(s.db).GetByUUID(ctx, clientUUID)
	if err != nil {
		return "", "", err
	}
	return client.QRToken, s.emergencyURL(client.QRToken), nil
}

// RegenerateQR replaces the QR token of clientUUID, invalidating every
// previously printed code.
func (s *ClientService) RegenerateQR(ctx context.Context, clientUUID string) (token, url string, err error) {
	token, err = newQRToken()
	if err != nil {
		return "", "", err
	}
	if err := s.repomanager.Clients(s.db).UpdateQRToken(ctx, clientUUID, token); err != nil {
		return "", "", err
	}
	return token, s.emergencyURL(token), nil
}

// Emergency resolves a scanned QR token to the public emergency view.
func (s *ClientService) Emergency(ctx context.Context, qrToken string) (*models.EmergencyView, error) {
	client, err := s.repomanager.Clients(s.db).GetByQRToken(ctx, qrToken)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, common.ErrorNotFound
	}
	view := client.Emergency()
	return &view, nil
}

// Authenticate returns the client UUID carried by an access token.
func (s *ClientService) Authenticate(token string) (string, error) {
	return auth.ClientUUIDFromToken(token, s.jwtSecret)
}

func (s *ClientService) issue(client *models.Client) (*AuthResult, error) {
	token, err := auth.GenerateToken(client.UUID, s.jwtSecret, s.accessTokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{AccessToken: token, Client: client}, nil
}

func (s *ClientService) emergencyURL(token string) string {
	return s.publicBaseURL + "/emergency/" + token
}

// newQRToken returns an unguessable token; it is the only secret in a
// printed emergency code.
func newQRToken() (string, error) {
	token, err := common.MakeRandHexString(qrTokenBytes)
	if err != nil {
		return "", fmt.Errorf("generate qr token: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(p string) error {
	switch {
	case len(p) < minPasswordLen:
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLen)
	case len(p) > maxPasswordLen:
		return fmt.Errorf("%w: password must be at most %d bytes", common.ErrorValidation, maxPasswordLen)
	}
	return nil
}
