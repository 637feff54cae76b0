// Package qr fetches the emergency QR payload, keeps the last one for
// offline use and renders it for a terminal.
package qr

import (
	"context"
	"errors"
	"fmt"

	"github.com/emergqr/emergqr/internal/client/models"
	"github.com/emergqr/emergqr/internal/client/storage"
	"github.com/emergqr/emergqr/internal/logging"
	"github.com/skip2/go-qrcode"
)

var ErrNoCachedQR = errors.New("no emergency QR saved for offline use")

type Source interface {
	QR(ctx context.Context) (*models.QRCode, error)
	RegenerateQR(ctx context.Context) (*models.QRCode, error)
}

type Service struct {
	source Source
	cache  storage.Value
	logger logging.Logger
}

func NewService(source Source, cache storage.Value, logger logging.Logger) *Service {
	return &Service{source: source, cache: cache, logger: logger}
}

// Current fetches the QR payload and refreshes the offline copy.
func (s *Service) Current(ctx context.Context) (string, error) {
	q, err := s.source.QR(ctx)
	if err != nil {
		return "", err
	}
	s.remember(ctx, q.URL)
	return q.URL, nil
}

// Regenerate invalidates the old payload on the server. The offline copy is
// replaced as well, since the old one no longer resolves.
func (s *Service) Regenerate(ctx context.Context) (string, error) {
	q, err := s.source.RegenerateQR(ctx)
	if err != nil {
		return "", err
	}
	s.remember(ctx, q.URL)
	return q.URL, nil
}

func (s *Service) Cached(ctx context.Context) (string, error) {
	v, err := s.cache.Get(ctx)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", ErrNoCachedQR
	}
	return v, nil
}

func (s *Service) remember(ctx context.Context, payload string) {
	if err := s.cache.Save(ctx, payload); err != nil {
		s.logger.Warn(ctx, "failed to cache emergency QR for offline use", "error", err)
	}
}

// Render draws payload as block characters, two QR rows per text line.
func Render(payload string) (string, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return code.ToSmallString(false), nil
}
