package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/emergqr/emergqr/internal/client/api"
	"github.com/emergqr/emergqr/internal/client/config"
	"github.com/emergqr/emergqr/internal/client/gate"
	"github.com/emergqr/emergqr/internal/client/models"
	"github.com/emergqr/emergqr/internal/client/netstatus"
	"github.com/emergqr/emergqr/internal/client/qr"
	"github.com/emergqr/emergqr/internal/client/session"
	"github.com/emergqr/emergqr/internal/client/storage"
	"github.com/emergqr/emergqr/internal/logging"
)

// sessionIface is the part of *session.Session the commands use.
type sessionIface interface {
	Snapshot() session.Snapshot
	SignIn(ctx context.Context, creds models.Credentials) error
	SignUp(ctx context.Context, payload models.RegisterPayload) error
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
	SignOut(ctx context.Context)
	SetUser(ctx context.Context, user *models.Profile)
}

type profileIface interface {
	Profile(ctx context.Context) (*models.Profile, error)
	UploadAvatar(ctx context.Context, filename string, data []byte) (*models.Profile, error)
}

type qrIface interface {
	Current(ctx context.Context) (string, error)
	Regenerate(ctx context.Context) (string, error)
	Cached(ctx context.Context) (string, error)
}

type treeSource interface {
	Current() gate.Tree
}

type statusSource interface {
	Status() netstatus.Status
}

// keyLister reports which values are persisted locally.
type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	session  sessionIface
	profiles profileIface
	qr       qrIface
	gate     treeSource
	network  statusSource
	stored   keyLister
	reader   *bufio.Reader
	out      io.Writer

	db      *sql.DB
	monitor *netstatus.Monitor
	navGate *gate.Gate
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	vault := storage.NewVault(db)
	apiClient := api.NewHTTPClient(c.APIBaseURL, c.RequestTimeout)

	probe, err := netstatus.NewProbeProvider(apiClient, c.ProbeInterval, c.ProbeTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	monitor := netstatus.NewMonitor(probe, logger)
	sess := session.New(apiClient, vault, monitor, logger)
	navGate := gate.New(sess, monitor, logger)

	return &App{
		config:   c,
		logger:   logger,
		session:  sess,
		profiles: apiClient,
		qr:       qr.NewService(apiClient, vault.OfflineQR(), logger),
		gate:     navGate,
		network:  monitor,
		stored:   vault,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		db:       db,
		monitor:  monitor,
		navGate:  navGate,
	}, nil
}

// Run starts the connectivity monitor, waits for its first reading, restores
// the session and then serves the REPL until the user exits or ctx ends.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.monitor.Run(ctx)
	}()

	select {
	case <-a.monitor.Ready():
	case <-time.After(a.config.ProbeTimeout + time.Second):
		a.logger.Warn(ctx, "no connectivity reading yet, starting as offline")
	case <-ctx.Done():
		return ctx.Err()
	}

	trees, unsubscribe := a.navGate.Subscribe()
	defer unsubscribe()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.navGate.Run(ctx)
	}()

	if err := waitRestored(ctx, trees); err != nil {
		return err
	}

	connectivity, unsubscribeNet := a.monitor.Subscribe()
	defer unsubscribeNet()

	wg.Add(1)
	go func() {
		defer wg.Done()
		watchConnectivity(ctx, connectivity, a.out)
	}()

	fmt.Fprintln(a.out, "Welcome to EmergQR (type 'help' for commands)")
	runREPL(ctx, a, a.prompt, a.reader)
	return nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func waitRestored(ctx context.Context, trees <-chan gate.Tree) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-trees:
			if t != gate.TreeSplash {
				return nil
			}
		}
	}
}

// watchConnectivity prints a banner on every change after the first value.
func watchConnectivity(ctx context.Context, updates <-chan bool, w io.Writer) {
	var (
		last  bool
		first = true
	)
	for {
		select {
		case <-ctx.Done():
			return
		case online := <-updates:
			if first {
				last, first = online, false
				continue
			}
			if online == last {
				continue
			}
			last = online
			if online {
				fmt.Fprintln(w, "\n*** Back online ***")
			} else {
				fmt.Fprintln(w, "\n*** "+api.MessageNoConnection+" ***")
			}
		}
	}
}

func (a *App) tree() gate.Tree {
	return a.gate.Current()
}

func (a *App) prompt() string {
	snap := a.session.Snapshot()
	mode := "offline"
	if a.network.Status().Online() {
		mode = "online"
	}
	if snap.IsAuthenticated {
		return fmt.Sprintf("(%s, %s)", snap.User.DisplayName(), mode)
	}
	return fmt.Sprintf("(%s)", mode)
}
