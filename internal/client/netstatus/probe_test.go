package netstatus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/emergqr/emergqr/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	mu    sync.Mutex
	calls int
	errs  []error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	if len(f.errs) > 1 {
		f.errs = f.errs[1:]
	}
	return err
}

func (f *fakePinger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func newProbe(t *testing.T, p Pinger, up bool) *ProbeProvider {
	t.Helper()
	pp, err := NewProbeProvider(p, 5*time.Millisecond, time.Second, logging.NewNop())
	require.NoError(t, err)
	pp.interfacesUp = func() bool { return up }
	return pp
}

func TestProbe(t *testing.T) {
	ctx := context.Background()
	unavailable := errors.New("server unavailable")

	tests := []struct {
		name string
		up   bool
		err  error
		want Status
	}{
		{"healthy", true, nil, online},
		{"no interface", false, nil, Status{Connected: false, InternetReachable: Reachable(false)}},
		{"refused", true, fmt.Errorf("%w: connection refused", unavailable), unreachable},
		{"deadline", true, fmt.Errorf("%w: %w", unavailable, context.DeadlineExceeded), unknown},
		{"net timeout", true, fmt.Errorf("%w: %w", unavailable, timeoutErr{}), unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newProbe(t, &fakePinger{errs: []error{tt.err}}, tt.up).Probe(ctx)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestProbe_NoInterfaceSkipsPing(t *testing.T) {
	p := &fakePinger{}
	newProbe(t, p, false).Probe(context.Background())
	assert.Equal(t, 0, p.count())
}

func TestWatch_EmitsOnlyChanges(t *testing.T) {
	p := &fakePinger{errs: []error{nil, nil, nil, errors.New("refused")}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := newProbe(t, p, true).Watch(ctx)

	first := <-ch
	assert.True(t, first.Equal(online))

	second := <-ch
	assert.True(t, second.Equal(unreachable))
	assert.GreaterOrEqual(t, p.count(), 4)

	require.Eventually(t, func() bool { return p.count() >= 6 }, time.Second, time.Millisecond)
	select {
	case st := <-ch:
		t.Fatalf("unexpected emission %s", st)
	default:
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := newProbe(t, &fakePinger{}, true).Watch(ctx)
	<-ch
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestNewProbeProvider_RejectsNonPositiveSettings(t *testing.T) {
	tests := []struct {
		name              string
		interval, timeout time.Duration
	}{
		{"zero interval", 0, time.Second},
		{"zero timeout", time.Second, 0},
		{"negative interval", -time.Second, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp, err := NewProbeProvider(&fakePinger{}, tt.interval, tt.timeout, logging.NewNop())
			require.ErrorIs(t, err, ErrInvalidProbeSettings)
			assert.Nil(t, pp)
		})
	}
}

func TestWatch_SubSecondInterval(t *testing.T) {
	p := &fakePinger{}
	pp, err := NewProbeProvider(p, 500*time.Millisecond, 800*time.Millisecond, logging.NewNop())
	require.NoError(t, err)
	pp.interfacesUp = func() bool { return true }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	select {
	case st := <-pp.Watch(ctx):
		assert.True(t, online.Equal(st))
	case <-time.After(2 * time.Second):
		t.Fatal("no status emitted")
	}
}
