package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emergqr/emergqr/internal/client/api"
	"github.com/emergqr/emergqr/internal/client/gate"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	tree() gate.Tree
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Profile(ctx context.Context) error
	QR(ctx context.Context, args []string) error
	Avatar(ctx context.Context, args []string) error
	ChangePassword(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
}

var commands = map[gate.Tree][]string{
	gate.TreeAuth:    {"register", "login"},
	gate.TreeApp:     {"profile", "qr", "qr regenerate", "avatar <path>", "passwd", "logout", "status"},
	gate.TreeOffline: {"qr", "logout", "status"},
}

func available(t gate.Tree, cmd string) bool {
	for _, c := range commands[t] {
		if name, _, _ := strings.Cut(c, " "); name == cmd {
			return true
		}
	}
	return false
}

// runREPL reads one command per line and dispatches it to a. The set of
// accepted commands follows the current navigation tree. The loop exits on
// EOF or when the user types "exit" or "quit".
//
// Handler errors are printed and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("emergqr %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: " + helpText(a.tree()))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		t := a.tree()
		if !available(t, cmd) {
			if _, known := commandTrees(cmd); known {
				printlnFn(fmt.Sprintf("Command %q is not available in %s mode", cmd, t))
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		var cmdErr error
		switch cmd {
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "profile":
			cmdErr = a.Profile(ctx)
		case "qr":
			cmdErr = a.QR(ctx, args)
		case "avatar":
			cmdErr = a.Avatar(ctx, args)
		case "passwd":
			cmdErr = a.ChangePassword(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		}
		if cmdErr != nil {
			printlnFn("Error:", api.Message(cmdErr))
		}
	}
}

func commandTrees(cmd string) ([]gate.Tree, bool) {
	var trees []gate.Tree
	for _, t := range []gate.Tree{gate.TreeAuth, gate.TreeApp, gate.TreeOffline} {
		if available(t, cmd) {
			trees = append(trees, t)
		}
	}
	return trees, len(trees) > 0
}

func helpText(t gate.Tree) string {
	all := make([]string, 0, len(commands[t])+2)
	all = append(all, commands[t]...)
	all = append(all, "help", "exit")
	return strings.Join(all, ", ")
}
