package netstatus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/emergqr/emergqr/internal/logging"
)

// Pinger is anything that can hit the API health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeProvider derives Status from the local interfaces and a periodic
// health check against the API.
type ProbeProvider struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger

	interfacesUp func() bool
}

// ErrInvalidProbeSettings is returned for a non-positive interval or timeout.
var ErrInvalidProbeSettings = errors.New("probe interval and timeout must be positive")

func NewProbeProvider(pinger Pinger, interval, timeout time.Duration, logger logging.Logger) (*ProbeProvider, error) {
	if interval <= 0 || timeout <= 0 {
		return nil, fmt.Errorf("%w: interval %s, timeout %s", ErrInvalidProbeSettings, interval, timeout)
	}
	return &ProbeProvider{
		pinger:       pinger,
		interval:     interval,
		timeout:      timeout,
		logger:       logger,
		interfacesUp: anyInterfaceUp,
	}, nil
}

// Probe takes one reading. A health check that runs out of time leaves
// reachability unknown; any other failure is a definite false.
func (p *ProbeProvider) Probe(ctx context.Context) Status {
	if !p.interfacesUp() {
		return Status{Connected: false, InternetReachable: Reachable(false)}
	}

	pctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.pinger.Ping(pctx)
	switch {
	case err == nil:
		return Status{Connected: true, InternetReachable: Reachable(true)}
	case isTimeout(err):
		return Status{Connected: true}
	default:
		p.logger.Debug(ctx, "health check failed", "error", err)
		return Status{Connected: true, InternetReachable: Reachable(false)}
	}
}

func (p *ProbeProvider) Watch(ctx context.Context) <-chan Status {
	out := make(chan Status)

	go func() {
		defer close(out)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		var (
			last  Status
			first = true
		)
		for {
			st := p.Probe(ctx)
			if ctx.Err() != nil {
				return
			}
			if first || !st.Equal(last) {
				select {
				case out <- st:
				case <-ctx.Done():
					return
				}
				last, first = st, false
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func anyInterfaceUp() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp != 0 && ifc.Flags&net.FlagLoopback == 0 {
			return true
		}
	}
	return false
}
