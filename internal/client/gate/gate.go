// Package gate decides which UI tree the companion shows: the auth flow,
// the full app, or the single-screen offline flow.
package gate

import (
	"context"
	"sync"

	"github.com/emergqr/emergqr/internal/client/session"
	"github.com/emergqr/emergqr/internal/logging"
)

type Tree int

const (
	// TreeSplash is shown until restoration has finished and while an
	// authentication call is in flight.
	TreeSplash Tree = iota
	TreeAuth
	TreeApp
	TreeOffline
)

func (t Tree) String() string {
	switch t {
	case TreeSplash:
		return "splash"
	case TreeAuth:
		return "auth"
	case TreeApp:
		return "app"
	case TreeOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Select is the navigation decision. It has no side effects.
func Select(snap session.Snapshot, online bool) Tree {
	switch {
	case snap.IsLoading:
		return TreeSplash
	case snap.IsAuthenticated && online:
		return TreeApp
	case snap.IsAuthenticated:
		return TreeOffline
	default:
		return TreeAuth
	}
}

type Session interface {
	CheckAuthStatus(ctx context.Context) error
	Subscribe() (<-chan session.Snapshot, func())
}

type Network interface {
	Subscribe() (<-chan bool, func())
}

type Gate struct {
	session Session
	network Network
	logger  logging.Logger

	mu      sync.RWMutex
	current Tree
	subs    map[int]chan Tree
	nextID  int
}

func New(s Session, n Network, logger logging.Logger) *Gate {
	return &Gate{
		session: s,
		network: n,
		logger:  logger,
		current: TreeSplash,
		subs:    make(map[int]chan Tree),
	}
}

func (g *Gate) Current() Tree {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Subscribe delivers the latest selected tree, at most one pending value.
func (g *Gate) Subscribe() (<-chan Tree, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextID
	g.nextID++
	ch := make(chan Tree, 1)
	ch <- g.current
	g.subs[id] = ch

	return ch, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.subs, id)
	}
}

// Run restores the session once and then recomputes the tree on every
// session or connectivity change until ctx ends.
func (g *Gate) Run(ctx context.Context) {
	snapshots, unsubscribeSession := g.session.Subscribe()
	defer unsubscribeSession()
	statuses, unsubscribeNetwork := g.network.Subscribe()
	defer unsubscribeNetwork()

	restored := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(restored)
		if err := g.session.CheckAuthStatus(ctx); err != nil {
			g.logger.Error(ctx, "session restoration failed", "error", err)
		}
	}()
	defer wg.Wait()

	var (
		snap   session.Snapshot
		online bool
		ready  bool
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-restored:
			ready = true
			restored = nil
		case snap = <-snapshots:
		case online = <-statuses:
		}

		if ready {
			g.publish(ctx, Select(snap, online))
		}
	}
}

func (g *Gate) publish(ctx context.Context, t Tree) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if t == g.current {
		return
	}
	g.logger.Info(ctx, "navigation tree selected", "from", g.current.String(), "to", t.String())
	g.current = t
	for _, ch := range g.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- t:
		default:
		}
	}
}
