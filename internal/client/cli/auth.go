package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/emergqr/emergqr/internal/client/models"
	"github.com/emergqr/emergqr/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordMismatch = errors.New("passwords do not match")

// Register prompts for name, email and password and signs the new account in.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)
	if string(password) != string(confirm) {
		return errPasswordMismatch
	}

	payload := models.RegisterPayload{Name: name, Email: email, Password: string(password)}
	if err := a.session.SignUp(ctx, payload); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", a.session.Snapshot().User.DisplayName())
	return nil
}

// Login prompts for credentials and signs in. On failure the session is
// back in its initial state and the error is returned.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.SignIn(ctx, models.Credentials{Email: email, Password: string(password)}); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s\n", a.session.Snapshot().User.DisplayName())
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword("Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	confirm, err := getPassword("Repeat new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)
	if string(next) != string(confirm) {
		return errPasswordMismatch
	}

	req := models.ChangePasswordRequest{CurrentPassword: string(current), NewPassword: string(next)}
	if err := a.session.ChangePassword(ctx, req); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Password changed")
	return nil
}

// Logout never fails; leftover storage errors are only logged by the session.
func (a *App) Logout(ctx context.Context) error {
	a.session.SignOut(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}
