package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/emergqr/emergqr/internal/client/api"
	"github.com/emergqr/emergqr/internal/client/models"
	"github.com/emergqr/emergqr/internal/client/storage"
	"github.com/emergqr/emergqr/internal/logging"
)

var ErrNotAuthenticated = errors.New("not signed in")

// AuthAPI is the part of api.Client the session drives.
type AuthAPI interface {
	SetToken(token string)
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Register(ctx context.Context, payload models.RegisterPayload) (*models.AuthResponse, error)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
	Profile(ctx context.Context) (*models.Profile, error)
}

// Vault is the durable side of the session. *storage.Vault implements it.
type Vault interface {
	Tokens() storage.Value
	UserUUID() storage.Value
	OfflineQR() storage.Value
	SaveLogin(ctx context.Context, token, userUUID string) error
}

type Network interface {
	IsOnline() bool
}

type Session struct {
	api     AuthAPI
	vault   Vault
	network Network
	logger  logging.Logger

	mu     sync.RWMutex
	snap   Snapshot
	subs   map[int]chan Snapshot
	nextID int
}

func New(a AuthAPI, v Vault, n Network, logger logging.Logger) *Session {
	return &Session{
		api:     a,
		vault:   v,
		network: n,
		logger:  logger,
		subs:    make(map[int]chan Snapshot),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Subscribe returns a channel that always holds the latest snapshot not yet
// read. The current snapshot is delivered immediately.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Snapshot, 1)
	ch <- s.snap.clone()
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) SignIn(ctx context.Context, creds models.Credentials) error {
	if err := creds.Validate(); err != nil {
		return s.fail(ctx, "sign in", err)
	}
	return s.authenticate(ctx, "sign in", func(ctx context.Context) (*models.AuthResponse, error) {
		return s.api.Login(ctx, creds)
	})
}

func (s *Session) SignUp(ctx context.Context, payload models.RegisterPayload) error {
	if err := payload.Validate(); err != nil {
		return s.fail(ctx, "sign up", err)
	}
	return s.authenticate(ctx, "sign up", func(ctx context.Context) (*models.AuthResponse, error) {
		return s.api.Register(ctx, payload)
	})
}

func (s *Session) authenticate(ctx context.Context, op string, call func(context.Context) (*models.AuthResponse, error)) error {
	s.update(ctx, func(sn *Snapshot) {
		sn.IsLoading = true
		sn.Error = ""
	})

	resp, err := call(ctx)
	if err != nil {
		return s.fail(ctx, op, err)
	}
	if resp == nil || resp.AccessToken == "" || resp.Client == nil || resp.Client.UUID == "" {
		return s.fail(ctx, op, fmt.Errorf("%w: authentication response is missing user UUID", api.ErrProtocol))
	}

	if err := s.vault.SaveLogin(ctx, resp.AccessToken, resp.Client.UUID); err != nil {
		return s.fail(ctx, op, err)
	}

	s.api.SetToken(resp.AccessToken)
	user := *resp.Client
	s.replace(ctx, Snapshot{User: &user, Token: resp.AccessToken})
	s.logger.Info(ctx, op+" succeeded", "uuid", user.UUID)
	return nil
}

// fail resets to the initial state carrying only the error message.
func (s *Session) fail(ctx context.Context, op string, err error) error {
	s.logger.Info(ctx, op+" failed", "error", err)
	s.api.SetToken("")
	s.replace(ctx, Snapshot{Error: api.Message(err)})
	return err
}

// ChangePassword leaves user and token untouched whatever the outcome.
func (s *Session) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	if !s.Snapshot().IsAuthenticated {
		s.setError(ctx, ErrNotAuthenticated)
		return ErrNotAuthenticated
	}
	if err := req.Validate(); err != nil {
		s.setError(ctx, err)
		return err
	}

	s.update(ctx, func(sn *Snapshot) { sn.Error = "" })

	if err := s.api.ChangePassword(ctx, req); err != nil {
		s.logger.Info(ctx, "change password failed", "error", err)
		s.setError(ctx, err)
		return err
	}

	s.update(ctx, func(sn *Snapshot) { sn.IsLoading = false })
	s.logger.Info(ctx, "password changed")
	return nil
}

func (s *Session) setError(ctx context.Context, err error) {
	s.update(ctx, func(sn *Snapshot) {
		sn.IsLoading = false
		sn.Error = api.Message(err)
	})
}

// SignOut clears everything persisted for the session and resets the state.
// Storage failures are logged, never returned.
func (s *Session) SignOut(ctx context.Context) {
	persisted := []struct {
		key   string
		value storage.Value
	}{
		{storage.KeyAuthToken, s.vault.Tokens()},
		{storage.KeyUserUUID, s.vault.UserUUID()},
		{storage.KeyOfflineQR, s.vault.OfflineQR()},
	}
	for _, p := range persisted {
		if err := p.value.Remove(ctx); err != nil {
			s.logger.Warn(ctx, "sign out: failed to remove persisted value", "key", p.key, "error", err)
		}
	}

	s.api.SetToken("")
	s.replace(ctx, Snapshot{})
	s.logger.Info(ctx, "signed out")
}

// SetUser swaps the in-memory profile, e.g. after an avatar upload. The new
// record comes from the server, so it is no longer an offline identity.
func (s *Session) SetUser(ctx context.Context, user *models.Profile) {
	var u *models.Profile
	if user != nil {
		c := *user
		u = &c
	}
	s.update(ctx, func(sn *Snapshot) {
		sn.User = u
		sn.OfflineIdentity = false
	})
}

// CheckAuthStatus restores the session from persisted credentials.
func (s *Session) CheckAuthStatus(ctx context.Context) error {
	s.update(ctx, func(sn *Snapshot) {
		sn.IsLoading = true
		sn.Error = ""
	})

	token, err := s.vault.Tokens().Get(ctx)
	if err != nil {
		return s.fail(ctx, "restore", err)
	}
	if token == "" {
		s.logger.Info(ctx, "restore: no persisted token")
		s.replace(ctx, Snapshot{})
		return nil
	}

	s.api.SetToken(token)

	profile, err := s.api.Profile(ctx)
	if err == nil && (profile == nil || profile.UUID == "") {
		err = fmt.Errorf("%w: user profile is missing UUID", api.ErrProtocol)
	}
	if err == nil {
		if err := s.vault.UserUUID().Save(ctx, profile.UUID); err != nil {
			s.logger.Warn(ctx, "restore: failed to cache user uuid", "error", err)
		}
		user := *profile
		s.replace(ctx, Snapshot{User: &user, Token: token})
		s.logger.Info(ctx, "restore: session restored", "uuid", user.UUID)
		return nil
	}

	// Unreachable server while the monitor says online is still a network
	// failure, so credentials survive it.
	if !s.network.IsOnline() || errors.Is(err, api.ErrUnavailable) {
		return s.restoreOffline(ctx, token, err)
	}

	s.logger.Info(ctx, "restore: profile fetch failed while online, purging credentials", "error", err)
	for _, v := range []storage.Value{s.vault.Tokens(), s.vault.UserUUID()} {
		if rmErr := v.Remove(ctx); rmErr != nil {
			s.logger.Warn(ctx, "restore: failed to purge credentials", "error", rmErr)
		}
	}
	s.api.SetToken("")
	s.replace(ctx, Snapshot{})
	return nil
}

func (s *Session) restoreOffline(ctx context.Context, token string, cause error) error {
	uuid, err := s.vault.UserUUID().Get(ctx)
	if err != nil {
		return s.fail(ctx, "restore", err)
	}
	if uuid == "" {
		s.logger.Info(ctx, "restore: offline without cached uuid", "error", cause)
		s.api.SetToken("")
		s.replace(ctx, Snapshot{})
		return nil
	}

	s.logger.Info(ctx, "restore: offline, using cached identity", "uuid", uuid, "error", cause)
	s.replace(ctx, Snapshot{User: &models.Profile{UUID: uuid}, Token: token, OfflineIdentity: true})
	return nil
}

func (s *Session) replace(ctx context.Context, next Snapshot) {
	s.update(ctx, func(sn *Snapshot) { *sn = next })
}

func (s *Session) update(ctx context.Context, fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snap.State()
	fn(&s.snap)
	s.snap.normalize()

	if next := s.snap.State(); next != prev {
		s.logger.Info(ctx, "session state changed", "from", prev.String(), "to", next.String())
	}
	for _, ch := range s.subs {
		offer(ch, s.snap.clone())
	}
}

func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
