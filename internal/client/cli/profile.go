package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/emergqr/emergqr/internal/client/gate"
	"github.com/emergqr/emergqr/internal/client/models"
	"github.com/emergqr/emergqr/internal/client/qr"
)

const maxAvatarSize = 5 << 20

var (
	errUsageAvatar = errors.New("usage: avatar <path>")
	errUsageQR     = errors.New("usage: qr [regenerate]")
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// renderQR is a test seam for qr.Render.
var renderQR = qr.Render

// Profile refreshes the profile from the server and prints it.
func (a *App) Profile(ctx context.Context) error {
	p, err := a.profiles.Profile(ctx)
	if err != nil {
		return err
	}
	a.session.SetUser(ctx, p)
	a.printProfile(p)
	return nil
}

func (a *App) printProfile(p *models.Profile) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(tw, "%s\t%s\n", k, v)
		}
	}
	row("UUID", p.UUID)
	row("Name", p.Name)
	row("Email", p.Email)
	row("Phone", p.Phone)
	row("Username", p.Username)
	if p.FullAvatarURL != "" {
		row("Avatar", p.FullAvatarURL)
	} else {
		row("Avatar", p.AvatarURL)
	}
	if p.CreatedAt != nil {
		row("Member since", p.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

// QR shows the emergency QR code. Online it is fetched (or regenerated) and
// saved for offline use; offline the saved copy is shown.
func (a *App) QR(ctx context.Context, args []string) error {
	var (
		payload string
		err     error
	)
	switch {
	case a.tree() == gate.TreeOffline:
		if len(args) > 0 {
			return fmt.Errorf("%w (regenerating needs a connection)", errUsageQR)
		}
		payload, err = a.qr.Cached(ctx)
	case len(args) == 0:
		payload, err = a.qr.Current(ctx)
	case len(args) == 1 && args[0] == "regenerate":
		payload, err = a.qr.Regenerate(ctx)
		if err == nil {
			fmt.Fprintln(a.out, "A new QR code was generated; previously shared codes no longer work.")
		}
	default:
		return errUsageQR
	}
	if err != nil {
		return err
	}

	art, err := renderQR(payload)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, art)
	fmt.Fprintln(a.out, payload)
	return nil
}

// Avatar uploads the image at args[0] and updates the in-memory profile.
func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsageAvatar
	}
	data, err := readFile(args[0])
	if err != nil {
		return fmt.Errorf("read avatar: %w", err)
	}
	if len(data) == 0 || len(data) > maxAvatarSize {
		return fmt.Errorf("avatar must be between 1 byte and %d MiB", maxAvatarSize>>20)
	}

	p, err := a.profiles.UploadAvatar(ctx, args[0], data)
	if err != nil {
		return err
	}
	a.session.SetUser(ctx, p)
	fmt.Fprintln(a.out, "Avatar updated")
	return nil
}

// Status prints session and connectivity details.
func (a *App) Status(ctx context.Context) error {
	snap := a.session.Snapshot()
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Session\t%s\n", snap.State())
	if snap.User != nil {
		fmt.Fprintf(tw, "User\t%s\n", snap.User.DisplayName())
	}
	fmt.Fprintf(tw, "Connectivity\t%s\n", a.network.Status())
	fmt.Fprintf(tw, "Screen\t%s\n", a.tree())
	if a.stored != nil {
		keys, err := a.stored.Keys(ctx)
		if err != nil {
			a.logger.Warn(ctx, "status: failed to list stored keys", "error", err)
			fmt.Fprintf(tw, "Stored\tunavailable\n")
		} else {
			fmt.Fprintf(tw, "Stored\t%s\n", strings.Join(keys, ", "))
		}
	}
	if snap.Error != "" {
		fmt.Fprintf(tw, "Last error\t%s\n", snap.Error)
	}
	return tw.Flush()
}
