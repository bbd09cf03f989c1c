// Package app wires the sync engine together: credential lifecycle, the
// session store, the gateway, and the durable preference store.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/interchat/interchat/internal/client"
	"github.com/interchat/interchat/internal/config"
	"github.com/interchat/interchat/internal/credential"
	"github.com/interchat/interchat/internal/prefs"
	"github.com/interchat/interchat/internal/session"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// QuickAction is a suggested intent the UI can offer instead of typed text.
// Picking one goes through the same send pipeline as typing the prompt.
type QuickAction struct {
	Key    string
	Label  string
	Prompt string
}

// QuickActions are the fixed suggestions, account balance first.
var QuickActions = []QuickAction{
	{Key: "balance", Label: "Hesap Bakiyesi", Prompt: "Hesap bakiyemi görmek istiyorum."},
	{Key: "transactions", Label: "Hesap Hareketleri", Prompt: "Son hesap hareketlerimi görmek istiyorum."},
	{Key: "exchange", Label: "Döviz Kurları", Prompt: "Güncel döviz kurlarını görmek istiyorum."},
	{Key: "atm", Label: "ATM ve Şubeler", Prompt: "En yakın ATM ve şubeleri görmek istiyorum."},
}

// App holds the pieces that outlive any single session: configuration, the
// preference store, the gateway, and (while authenticated) the session store.
type App struct {
	cfg    *config.Config
	prefs  *prefs.Store
	client *client.Client

	mu    sync.Mutex
	cred  credential.Credential
	store *session.Store
}

// New builds the app from configuration. If a still-valid credential survived
// the last run, the app starts authenticated; bootstrapping against the
// remote store is a separate step so construction never blocks on the
// network.
func New(cfg *config.Config) (*App, error) {
	gw, err := client.New(cfg.ServerURL, cfg.HomeCurrency)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		prefs:  prefs.Load(cfg.PrefsFile()),
		client: gw,
	}

	if cred, ok := a.prefs.Credential(); ok {
		if cred.Valid(time.Now()) {
			a.adopt(cred)
		} else {
			slog.Info("stored credential expired, starting unauthenticated")
			if err := a.prefs.ClearCredential(); err != nil {
				slog.Warn("failed to clear expired credential", "error", err)
			}
		}
	}

	return a, nil
}

// adopt installs a credential and a fresh session store for it.
func (a *App) adopt(cred credential.Credential) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cred = cred
	a.client.SetToken(cred.Token)
	a.store = session.NewStore(a.client, cred.CustomerNo)
}

// Authenticated reports whether a usable credential is loaded.
func (a *App) Authenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store != nil && a.cred.Valid(time.Now())
}

// Store returns the session store, or nil before login.
func (a *App) Store() *session.Store {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store
}

// Credential returns the current credential.
func (a *App) Credential() credential.Credential {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cred
}

// Login authenticates against the remote store, persists the credential, and
// bootstraps the session index: one fresh provisional session, then the
// durable list from the server.
func (a *App) Login(ctx context.Context, customerNo, password string) error {
	outcome := a.client.Login(ctx, customerNo, password)
	if !outcome.Ok {
		if outcome.Message != "" {
			return fmt.Errorf("login failed: %s", outcome.Message)
		}
		return errors.New("login failed")
	}

	cred, err := credential.FromToken(outcome.Token)
	if err != nil {
		return fmt.Errorf("login returned an unusable token: %w", err)
	}

	if err := a.prefs.SetCredential(cred); err != nil {
		slog.Warn("failed to persist credential", "error", err)
	}

	a.adopt(cred)
	a.Bootstrap(ctx)
	return nil
}

// Bootstrap seeds the session index after login or after a credential was
// restored from disk. A failed index refresh leaves the fresh provisional
// session in place.
func (a *App) Bootstrap(ctx context.Context) {
	store := a.Store()
	if store == nil {
		return
	}
	store.Create()
	if !store.LoadIndex(ctx) {
		slog.Warn("initial session index refresh failed, starting with local state only")
	}
}

// Logout discards all local state. The remote notification is best-effort;
// remote data stays intact for the next login.
func (a *App) Logout(ctx context.Context) {
	a.client.Logout(ctx)

	a.mu.Lock()
	store := a.store
	a.store = nil
	a.cred = credential.Credential{}
	a.mu.Unlock()

	a.client.SetToken("")
	if store != nil {
		store.Logout()
		store.Shutdown()
	}
	if err := a.prefs.ClearCredential(); err != nil {
		slog.Warn("failed to clear credential", "error", err)
	}
}

// SendQuickAction sends the prompt behind a suggested action through the
// normal send pipeline.
func (a *App) SendQuickAction(ctx context.Context, key string) error {
	store := a.Store()
	if store == nil {
		return ErrNotAuthenticated
	}
	for _, qa := range QuickActions {
		if qa.Key == key {
			_, err := store.Send(ctx, qa.Prompt)
			return err
		}
	}
	return fmt.Errorf("unknown quick action: %q", key)
}

// DarkTheme returns the persisted display preference.
func (a *App) DarkTheme() bool {
	return a.prefs.DarkTheme()
}

// SetDarkTheme persists the display preference.
func (a *App) SetDarkTheme(dark bool) {
	if err := a.prefs.SetDarkTheme(dark); err != nil {
		slog.Warn("failed to persist theme preference", "error", err)
	}
}

// Shutdown releases app resources.
func (a *App) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store != nil {
		a.store.Shutdown()
	}
}
