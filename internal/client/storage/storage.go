// Package storage persists the client's credentials in durable device
// storage: the bearer token, the cached user UUID used for offline
// identity, and the emergency QR payload shown while offline.
//
// Every failure of the underlying database is reported as ErrStorage and is
// never retried here.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emergqr/emergqr/internal/client/repositories/metadata"
	"github.com/emergqr/emergqr/internal/dbx"
)

// Storage keys. They match the keys used by earlier releases of the app so
// an existing database keeps working.
const (
	KeyAuthToken = "auth_token"
	KeyUserUUID  = "user_uuid"
	KeyOfflineQR = "offline_qr_data"
)

var ErrStorage = errors.New("storage unavailable")

// Value is a single persisted string.
type Value interface {
	Save(ctx context.Context, value string) error
	// Get returns "" when nothing is stored.
	Get(ctx context.Context) (string, error)
	// Remove is idempotent.
	Remove(ctx context.Context) error
}

// Item is a Value stored under a fixed metadata key.
type Item struct {
	repo metadata.Repository
	key  string
}

func NewItem(repo metadata.Repository, key string) *Item {
	return &Item{repo: repo, key: key}
}

func (i *Item) Save(ctx context.Context, value string) error {
	if err := i.repo.Set(ctx, i.key, []byte(value)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (i *Item) Get(ctx context.Context) (string, error) {
	v, err := i.repo.Get(ctx, i.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return string(v), nil
}

func (i *Item) Remove(ctx context.Context) error {
	if err := i.repo.Delete(ctx, i.key); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// Vault groups the persisted session values of one device.
type Vault struct {
	db   *sql.DB
	repo metadata.Repository
}

func NewVault(db *sql.DB) *Vault {
	return &Vault{db: db, repo: metadata.NewSQLiteRepository(db)}
}

// Tokens is the Token Store.
func (v *Vault) Tokens() Value { return NewItem(v.repo, KeyAuthToken) }

// UserUUID is the cached identifier written alongside the token.
func (v *Vault) UserUUID() Value { return NewItem(v.repo, KeyUserUUID) }

// OfflineQR is the last emergency QR payload fetched while online.
func (v *Vault) OfflineQR() Value { return NewItem(v.repo, KeyOfflineQR) }

// SaveLogin writes the token and the user UUID in one transaction, so a
// failed login never leaves one of them behind.
func (v *Vault) SaveLogin(ctx context.Context, token, userUUID string) error {
	err := dbx.WithTx(ctx, v.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyAuthToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUserUUID, []byte(userUUID))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// Keys lists what is currently persisted. The CLI status command shows it.
func (v *Vault) Keys(ctx context.Context) ([]string, error) {
	keys, err := v.repo.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return keys, nil
}
