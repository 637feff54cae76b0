// Package clients implements the Postgres-backed client account repository.
package clients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emergqr/emergqr/internal/common"
	"github.com/emergqr/emergqr/internal/dbx"
	"github.com/emergqr/emergqr/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const selectColumns = `SELECT id, uuid, email, password_hash, name, phone, username, avatar_url, qr_token, is_active, is_admin, created_at
		 FROM clients`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Client) (*models.Client, error) {
	query :=
		`INSERT INTO clients (uuid, email, password_hash, name, qr_token)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, is_active, created_at`

	err := r.db.QueryRowContext(ctx, query,
		c.UUID, c.Email, c.PasswordHash, c.Name, c.QRToken).Scan(&c.ID, &c.IsActive, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	return r.getOne(ctx, selectColumns+` WHERE email = $1`, email)
}

func (r *PostgresRepository) GetByUUID(ctx context.Context, uuid string) (*models.Client, error) {
	return r.getOne(ctx, selectColumns+` WHERE uuid = $1`, uuid)
}

func (r *PostgresRepository) GetByQRToken(ctx context.Context, token string) (*models.Client, error) {
	return r.getOne(ctx, selectColumns+` WHERE qr_token = $1`, token)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, uuid, hash string) error {
	return r.updateOne(ctx, `UPDATE clients SET password_hash = $2 WHERE uuid = $1`, uuid, hash)
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, uuid, url string) error {
	return r.updateOne(ctx, `UPDATE clients SET avatar_url = $2 WHERE uuid = $1`, uuid, url)
}

func (r *PostgresRepository) UpdateQRToken(ctx context.Context, uuid, token string) error {
	return r.updateOne(ctx, `UPDATE clients SET qr_token = $2 WHERE uuid = $1`, uuid, token)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.Client, error) {
	c := &models.Client{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.UUID, &c.Email, &c.PasswordHash, &c.Name, &c.Phone, &c.Username,
		&c.AvatarURL, &c.QRToken, &c.IsActive, &c.IsAdmin, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
