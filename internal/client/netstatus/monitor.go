package netstatus

import (
	"context"
	"sync"

	"github.com/emergqr/emergqr/internal/logging"
)

type Monitor struct {
	provider Provider
	logger   logging.Logger

	mu     sync.RWMutex
	status Status
	subs   map[int]chan bool
	nextID int

	ready     chan struct{}
	readyOnce sync.Once
}

func NewMonitor(p Provider, logger logging.Logger) *Monitor {
	return &Monitor{
		provider: p,
		logger:   logger,
		subs:     make(map[int]chan bool),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the first reading from the provider has been applied.
// Until then IsOnline reports false because nothing is known yet.
func (m *Monitor) Ready() <-chan struct{} {
	return m.ready
}

// Run subscribes to the provider and applies its updates until ctx ends or
// the provider closes its stream.
func (m *Monitor) Run(ctx context.Context) {
	updates := m.provider.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			m.apply(ctx, st)
		}
	}
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online()
}

func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Subscribe returns a channel holding at most one pending value, the latest
// online flag. The current value is delivered immediately.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan bool, 1)
	ch <- m.status.Online()
	m.subs[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Monitor) apply(ctx context.Context, st Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	was := m.status.Online()
	m.status = st
	now := st.Online()
	m.readyOnce.Do(func() { close(m.ready) })

	if was == now {
		m.logger.Debug(ctx, "connectivity status", "status", st.String(), "online", now)
		return
	}

	m.logger.Info(ctx, "connectivity changed", "status", st.String(), "online", now)
	for _, ch := range m.subs {
		offer(ch, now)
	}
}

// offer replaces whatever value is pending in ch.
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
