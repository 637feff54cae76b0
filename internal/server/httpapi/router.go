// Package httpapi exposes the EmergQR REST API: authentication, the client's
// own profile, avatar upload, QR management and the public emergency view.
package httpapi

import (
	"context"
	"net/http"

	"github.com/emergqr/emergqr/internal/logging"
	"github.com/emergqr/emergqr/internal/server/models"
	"github.com/emergqr/emergqr/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service is the business logic the handlers delegate to.
type Service interface {
	Register(ctx context.Context, email, password, name string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	ChangePassword(ctx context.Context, clientUUID, current, next string) (*services.AuthResult, error)
	Profile(ctx context.Context, clientUUID string) (*models.Client, error)
	UploadAvatar(ctx context.Context, clientUUID, filename, contentType string, data []byte) (*models.Client, error)
	QR(ctx context.Context, clientUUID string) (token, url string, err error)
	RegenerateQR(ctx context.Context, clientUUID string) (token, url string, err error)
	Emergency(ctx context.Context, qrToken string) (*models.EmergencyView, error)
	Authenticate(token string) (string, error)
}

type handler struct {
	svc    Service
	logger logging.Logger
}

// NewRouter wires every endpoint. Request metrics are registered on reg and
// served from /metrics.
func NewRouter(svc Service, logger logging.Logger, reg *prometheus.Registry) *mux.Router {
	h := &handler{svc: svc, logger: logger}
	m := newMetrics(reg)

	r := mux.NewRouter()
	r.Use(h.withLogging, m.middleware)

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	r.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	r.Handle("/auth/change-password", h.requireAuth(h.changePassword)).Methods(http.MethodPost)

	r.Handle("/clients/me/profile", h.requireAuth(h.profile)).Methods(http.MethodGet)
	r.Handle("/clients/me/avatar", h.requireAuth(h.uploadAvatar)).Methods(http.MethodPost)

	r.Handle("/qr/me", h.requireAuth(h.qr)).Methods(http.MethodGet)
	r.Handle("/qr/me/regenerate", h.requireAuth(h.regenerateQR)).Methods(http.MethodPost)

	r.HandleFunc("/emergency/{qr_token}", h.emergency).Methods(http.MethodGet)

	return r
}
