package session

import (
	"context"
	"sync"

	"github.com/emergqr/emergqr/internal/client/models"
	"github.com/emergqr/emergqr/internal/client/storage"
)

type fakeAPI struct {
	mu sync.Mutex

	token     string
	setTokens []string

	loginResp  *models.AuthResponse
	loginErr   error
	loginCalls int
	lastLogin  models.Credentials

	registerResp *models.AuthResponse
	registerErr  error
	lastRegister models.RegisterPayload

	changeErr   error
	changeCalls int
	lastChange  models.ChangePasswordRequest

	profile      *models.Profile
	profileErr   error
	profileToken string
	onProfile    func()
}

func (f *fakeAPI) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	f.setTokens = append(f.setTokens, token)
}

func (f *fakeAPI) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAPI) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	f.loginCalls++
	f.lastLogin = creds
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) Register(ctx context.Context, payload models.RegisterPayload) (*models.AuthResponse, error) {
	f.lastRegister = payload
	return f.registerResp, f.registerErr
}

func (f *fakeAPI) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	f.changeCalls++
	f.lastChange = req
	return f.changeErr
}

func (f *fakeAPI) Profile(ctx context.Context) (*models.Profile, error) {
	f.profileToken = f.currentToken()
	if f.onProfile != nil {
		f.onProfile()
	}
	return f.profile, f.profileErr
}

type fakeNetwork struct {
	online bool
	calls  int
}

func (n *fakeNetwork) IsOnline() bool {
	n.calls++
	return n.online
}

// fakeVault is used where storage failures have to be injected.
type fakeVault struct {
	values    map[string]string
	getErr    error
	removeErr error
	saveErr   error
}

func newFakeVault() *fakeVault {
	return &fakeVault{values: map[string]string{}}
}

type fakeValue struct {
	v   *fakeVault
	key string
}

func (f fakeValue) Save(ctx context.Context, value string) error {
	if f.v.saveErr != nil {
		return f.v.saveErr
	}
	f.v.values[f.key] = value
	return nil
}

func (f fakeValue) Get(ctx context.Context) (string, error) {
	if f.v.getErr != nil {
		return "", f.v.getErr
	}
	return f.v.values[f.key], nil
}

func (f fakeValue) Remove(ctx context.Context) error {
	if f.v.removeErr != nil {
		return f.v.removeErr
	}
	delete(f.v.values, f.key)
	return nil
}

func (v *fakeVault) Tokens() storage.Value    { return fakeValue{v, storage.KeyAuthToken} }
func (v *fakeVault) UserUUID() storage.Value  { return fakeValue{v, storage.KeyUserUUID} }
func (v *fakeVault) OfflineQR() storage.Value { return fakeValue{v, storage.KeyOfflineQR} }

func (v *fakeVault) SaveLogin(ctx context.Context, token, userUUID string) error {
	if v.saveErr != nil {
		return v.saveErr
	}
	v.values[storage.KeyAuthToken] = token
	v.values[storage.KeyUserUUID] = userUUID
	return nil
}
