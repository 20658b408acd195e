package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/credentials"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/gate"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
)

// errPasswordMismatch is returned by Register when the confirmation differs.
var errPasswordMismatch = errors.New("passwords do not match")

// Login prompts for email and password and authenticates. On success the
// client moves to the dashboard. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	if _, err := a.nav.Navigate(ctx, gate.LoginView); err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Name)
	_, err = a.nav.Navigate(ctx, gate.DashboardView)
	return err
}

// Register prompts for name, email and a confirmed password and creates an
// account. It does not log in; the client moves to the login view.
func (a *App) Register(ctx context.Context) error {
	if _, err := a.nav.Navigate(ctx, gate.RegisterView); err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		return errPasswordMismatch
	}

	msg, err := a.auth.Register(ctx, name, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, msg)
	_, err = a.nav.Navigate(ctx, gate.LoginView)
	return err
}

// Logout forgets the session and moves to the login view. Logging out
// twice is harmless.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	_, err := a.nav.Navigate(ctx, gate.LoginView)
	return err
}

// Status prints the session, the current view and what is known about the
// stored credential without contacting the server.
func (a *App) Status(ctx context.Context) error {
	st := a.session.Current()

	fmt.Fprintf(a.out, "Session: %s\n", st.Phase())
	if st.User != nil {
		fmt.Fprintf(a.out, "User:    %s <%s>\n", st.User.Name, st.User.Email)
	}
	fmt.Fprintf(a.out, "View:    %s\n", a.nav.Current())

	if a.store.Degraded() {
		fmt.Fprintln(a.out, "Profile: unavailable (in-memory only)")
	}

	cred, ok := a.store.Load(ctx)
	if !ok {
		fmt.Fprintln(a.out, "Token:   none")
		return nil
	}

	if at, ok := a.store.SavedAt(ctx); ok {
		fmt.Fprintf(a.out, "Saved:   %s\n", at.Local().Format(time.DateTime))
	}

	d, err := credentials.Describe(cred)
	if err != nil {
		fmt.Fprintln(a.out, "Token:   opaque")
		return nil
	}
	if d.ExpiresAt.IsZero() {
		fmt.Fprintln(a.out, "Token:   no expiry")
		return nil
	}
	state := "valid until"
	if d.Expired(time.Now()) {
		state = "expired at"
	}
	fmt.Fprintf(a.out, "Token:   %s %s\n", state, d.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

// WhoAmI asks the server for the current profile.
func (a *App) WhoAmI(ctx context.Context) error {
	if !a.enter(ctx, gate.ProfileView) {
		return nil
	}
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> id=%s\n", u.Name, u.Email, u.ID)
	if u.CreatedAt != "" {
		fmt.Fprintf(a.out, "Member since %s\n", u.CreatedAt)
	}
	return nil
}
