package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emergqr/emergqr/internal/client/api"
	"github.com/emergqr/emergqr/internal/client/gate"
	"github.com/emergqr/emergqr/internal/client/models"
	"github.com/emergqr/emergqr/internal/client/netstatus"
	"github.com/emergqr/emergqr/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt(t *testing.T) {
	a := newTestApp(t, gate.TreeAuth, "")
	assert.Equal(t, "(offline)", a.prompt())

	a.net.st = netstatus.Status{Connected: true, InternetReachable: netstatus.Reachable(true)}
	a.sess.snap = session.Snapshot{User: &models.Profile{UUID: "u1", Name: "Alice"}, Token: "t1", IsAuthenticated: true}
	assert.Equal(t, "(Alice, online)", a.prompt())
}

func TestStatus(t *testing.T) {
	a := newTestApp(t, gate.TreeOffline, "")
	a.sess.snap = session.Snapshot{User: &models.Profile{UUID: "u1"}, Token: "t1", IsAuthenticated: true, OfflineIdentity: true}
	a.net.st = netstatus.Status{Connected: true}

	require.NoError(t, a.Status(context.Background()))
	out := a.buf.String()
	assert.Contains(t, out, "authenticated-offline")
	assert.Contains(t, out, "reachable=unknown")
	assert.Contains(t, out, "offline")
}

func TestStatus_SparseServerProfile(t *testing.T) {
	a := newTestApp(t, gate.TreeApp, "")
	a.sess.snap = session.Snapshot{User: &models.Profile{UUID: "u1"}, Token: "t1", IsAuthenticated: true}
	a.net.st = netstatus.Status{Connected: true, InternetReachable: netstatus.Reachable(true)}

	require.NoError(t, a.Status(context.Background()))
	out := a.buf.String()
	assert.Contains(t, out, "authenticated")
	assert.NotContains(t, out, "authenticated-offline")
}

func TestStatus_ListsStoredKeys(t *testing.T) {
	a := newTestApp(t, gate.TreeApp, "")
	a.stored.keys = []string{"auth_token", "user_uuid"}

	require.NoError(t, a.Status(context.Background()))
	assert.Contains(t, a.buf.String(), "auth_token, user_uuid")

	a.buf.Reset()
	a.stored.err = errors.New("database is locked")
	require.NoError(t, a.Status(context.Background()))
	assert.Contains(t, a.buf.String(), "unavailable")
}

func TestWaitRestored(t *testing.T) {
	trees := make(chan gate.Tree, 3)
	trees <- gate.TreeSplash
	trees <- gate.TreeSplash
	trees <- gate.TreeOffline
	require.NoError(t, waitRestored(context.Background(), trees))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, waitRestored(ctx, make(chan gate.Tree)), context.Canceled)
}

type syncBuffer struct {
	ch chan string
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.ch <- string(p)
	return len(p), nil
}

func TestWatchConnectivity_BannerOnChangesOnly(t *testing.T) {
	updates := make(chan bool)
	w := &syncBuffer{ch: make(chan string, 10)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watchConnectivity(ctx, updates, w)

	updates <- true
	updates <- true
	updates <- false
	select {
	case msg := <-w.ch:
		assert.Contains(t, msg, api.MessageNoConnection)
	case <-time.After(time.Second):
		t.Fatal("no offline banner")
	}

	updates <- true
	select {
	case msg := <-w.ch:
		assert.Contains(t, msg, "Back online")
	case <-time.After(time.Second):
		t.Fatal("no online banner")
	}
	assert.Len(t, w.ch, 0)
}

func TestClose_WithoutDatabase(t *testing.T) {
	a := &App{out: &bytes.Buffer{}}
	require.NoError(t, a.Close())
}
