// Package auth establishes an authenticated catalog account. It
// reconciles the cached token, interactive sign-in, and the
// second-factor challenge into a single entry point.
package auth

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mydehq/plextitler/internal/catalog"
	"github.com/mydehq/plextitler/internal/creds"
)

// Environment defaults consulted when no flag values were given.
const (
	envUsername = "PLEX_USERNAME"
	envPassword = "PLEX_PASSWORD"
)

// Service is the subset of the catalog account API the flow needs.
// Rejections are reported as *catalog.AuthError; anything else is
// treated as fatal.
type Service interface {
	AccountFromToken(ctx context.Context, token string) (catalog.Account, error)
	SignIn(ctx context.Context, username, password, code string) (catalog.Account, error)
}

// Prompter collects credentials interactively. Implementations return
// ui.ErrCancelled when the user aborts input.
type Prompter interface {
	Credentials(defaultUsername string) (username, password string, err error)
	VerificationCode() (string, error)
}

// Flow resolves an authenticated account. Every collaborator is
// injected, so tests can substitute an in-memory store and fake
// service; the credential store is an explicit handle, never a hidden
// global.
type Flow struct {
	Store   *creds.Store
	Service Service
	Prompt  Prompter
	Log     *log.Logger

	// Username and Password are caller-supplied values that take
	// precedence over environment defaults and interactive prompting.
	Username string
	Password string
}

// Login walks TryCache → Prompt → Challenge2FA → Authenticated. On any
// successful path the resulting token is persisted before the account
// is returned; a failure to persist is a warning, not an error.
func (f *Flow) Login(ctx context.Context) (catalog.Account, error) {
	if token, ok := f.Store.Load(); ok {
		f.Log.Info("Using cached credentials...")
		account, err := f.Service.AccountFromToken(ctx, token)
		if err == nil {
			f.persist(account)
			return account, nil
		}
		if !catalog.IsAuthRejected(err) {
			return nil, err
		}
		f.Log.Info("Cached credentials expired, re-authenticating...")
		if cerr := f.Store.Clear(); cerr != nil {
			f.Log.Warn("Could not remove cached credentials", "error", cerr)
		}
	}

	username, password := f.Username, f.Password
	if username == "" {
		username = os.Getenv(envUsername)
	}
	if password == "" {
		password = os.Getenv(envPassword)
	}
	if username == "" || password == "" {
		var err error
		username, password, err = f.Prompt.Credentials(username)
		if err != nil {
			return nil, err
		}
	}

	f.Log.Info("Authenticating with Plex.tv...", "username", username)

	account, err := f.Service.SignIn(ctx, username, password, "")
	if err != nil {
		rej, ok := catalog.AsAuthError(err)
		if !ok || !rej.NeedsVerificationCode() {
			return nil, err
		}
		code, perr := f.Prompt.VerificationCode()
		if perr != nil {
			return nil, perr
		}
		account, err = f.Service.SignIn(ctx, username, password, code)
		if err != nil {
			return nil, err
		}
	}

	f.persist(account)
	f.Log.Info("Credentials cached for future use.")
	return account, nil
}

func (f *Flow) persist(account catalog.Account) {
	if err := f.Store.Save(account.Token()); err != nil {
		f.Log.Warn("Could not save credentials", "error", err)
	}
}
