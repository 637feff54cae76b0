package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/emergqr/emergqr/internal/client/gate"
	"github.com/emergqr/emergqr/internal/client/models"
	"github.com/emergqr/emergqr/internal/client/netstatus"
	"github.com/emergqr/emergqr/internal/client/session"
	"github.com/emergqr/emergqr/internal/logging"
)

type fakeSession struct {
	snap session.Snapshot

	signIn      models.Credentials
	signInErr   error
	signUp      models.RegisterPayload
	signUpErr   error
	change      models.ChangePasswordRequest
	changeErr   error
	changeCalls int
	signOuts    int
	setUser     *models.Profile
}

func (f *fakeSession) Snapshot() session.Snapshot { return f.snap }

func (f *fakeSession) SignIn(_ context.Context, creds models.Credentials) error {
	f.signIn = creds
	if f.signInErr != nil {
		f.snap = session.Snapshot{Error: f.signInErr.Error()}
		return f.signInErr
	}
	f.snap = session.Snapshot{User: &models.Profile{UUID: "u1", Email: creds.Email}, Token: "t1", IsAuthenticated: true}
	return nil
}

func (f *fakeSession) SignUp(_ context.Context, payload models.RegisterPayload) error {
	f.signUp = payload
	if f.signUpErr != nil {
		return f.signUpErr
	}
	f.snap = session.Snapshot{User: &models.Profile{UUID: "u2", Name: payload.Name}, Token: "t2", IsAuthenticated: true}
	return nil
}

func (f *fakeSession) ChangePassword(_ context.Context, req models.ChangePasswordRequest) error {
	f.changeCalls++
	f.change = req
	return f.changeErr
}

func (f *fakeSession) SignOut(context.Context) {
	f.signOuts++
	f.snap = session.Snapshot{}
}

func (f *fakeSession) SetUser(_ context.Context, u *models.Profile) {
	f.setUser = u
	f.snap.User = u
}

type fakeProfiles struct {
	profile    *models.Profile
	err        error
	uploadName string
	uploadData []byte
}

func (f *fakeProfiles) Profile(context.Context) (*models.Profile, error) { return f.profile, f.err }

func (f *fakeProfiles) UploadAvatar(_ context.Context, name string, data []byte) (*models.Profile, error) {
	f.uploadName, f.uploadData = name, data
	return f.profile, f.err
}

type fakeQR struct {
	current, regenerated, cached string
	err                          error
	calls                        []string
}

func (f *fakeQR) Current(context.Context) (string, error) {
	f.calls = append(f.calls, "current")
	return f.current, f.err
}

func (f *fakeQR) Regenerate(context.Context) (string, error) {
	f.calls = append(f.calls, "regenerate")
	return f.regenerated, f.err
}

func (f *fakeQR) Cached(context.Context) (string, error) {
	f.calls = append(f.calls, "cached")
	return f.cached, f.err
}

type fakeTree struct{ t gate.Tree }

func (f *fakeTree) Current() gate.Tree { return f.t }

type fakeNet struct{ st netstatus.Status }

func (f *fakeNet) Status() netstatus.Status { return f.st }

type fakeStored struct {
	keys []string
	err  error
}

func (f *fakeStored) Keys(context.Context) ([]string, error) { return f.keys, f.err }

type testApp struct {
	*App
	sess     *fakeSession
	profiles *fakeProfiles
	qrs      *fakeQR
	trees    *fakeTree
	net      *fakeNet
	stored   *fakeStored
	buf      *bytes.Buffer
}

func newTestApp(t *testing.T, tree gate.Tree, input string) *testApp {
	t.Helper()
	ta := &testApp{
		sess:     &fakeSession{},
		profiles: &fakeProfiles{},
		qrs:      &fakeQR{},
		trees:    &fakeTree{t: tree},
		net:      &fakeNet{},
		stored:   &fakeStored{},
		buf:      &bytes.Buffer{},
	}
	ta.App = &App{
		logger:   logging.NewNop(),
		session:  ta.sess,
		profiles: ta.profiles,
		qr:       ta.qrs,
		gate:     ta.trees,
		network:  ta.net,
		stored:   ta.stored,
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      ta.buf,
	}
	return ta
}
