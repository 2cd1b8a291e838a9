package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/semmy-space/bazaar/internal/api"
	"github.com/semmy-space/bazaar/internal/config"
	"github.com/semmy-space/bazaar/internal/output"
	"github.com/semmy-space/bazaar/internal/secrets"
	"github.com/semmy-space/bazaar/internal/session"
)

// loginCommand is where unauthorized protected commands send the user.
const loginCommand = "bazaar auth login"

// ServiceProvider lazily creates and caches the credential store, session
// and API client for one command run.
type ServiceProvider struct {
	cfg     config.Config // effective config: flag overrides applied, never saved
	globals *Globals
	log     zerolog.Logger

	storeOnce sync.Once
	store     secrets.Store
	backend   string
	storeErr  error

	sessionOnce sync.Once
	session     *session.Session
	guard       *session.Guard
	sessionErr  error

	clientOnce sync.Once
	client     api.Service
	clientErr  error
}

// NewServiceProvider creates a ServiceProvider. Global flags take precedence
// over the config file for this run only.
func NewServiceProvider(cfg *config.Config, globals *Globals, logger zerolog.Logger) *ServiceProvider {
	return &ServiceProvider{cfg: effective(cfg, globals), globals: globals, log: logger}
}

func effective(cfg *config.Config, globals *Globals) config.Config {
	eff := *cfg
	if globals.BaseURL != "" {
		eff.BaseURL = globals.BaseURL
	}
	if globals.Store != "" {
		eff.Store = globals.Store
	}
	return eff
}

// reload replaces the effective config. It has no effect on services that
// were already created.
func (sp *ServiceProvider) reload(cfg *config.Config) {
	sp.cfg = effective(cfg, sp.globals)
}

// Store returns the secrets store and the backend that was resolved.
func (sp *ServiceProvider) Store() (secrets.Store, string, error) {
	sp.storeOnce.Do(func() {
		if sp.store != nil {
			return
		}
		backend := sp.cfg.Store
		if backend == "" {
			backend = secrets.BackendAuto
		}

		store, resolved, err := secrets.NewStore(secrets.Options{
			Backend:  backend,
			DataDir:  config.DataDir(),
			Password: sp.globals.StorePassword,
			Logger:   sp.log,
		})
		if err != nil {
			sp.storeErr = output.NewCLIError(output.ExitConfigError, fmt.Sprintf("Failed to initialize credential store: %v", err)).
				WithHint("Try: bazaar config set store file")
			return
		}
		sp.store, sp.backend = store, resolved
		sp.log.Debug().Str("backend", resolved).Msg("credential store ready")
	})
	return sp.store, sp.backend, sp.storeErr
}

// Session returns the process-wide session and its guard.
func (sp *ServiceProvider) Session() (*session.Session, *session.Guard, error) {
	sp.sessionOnce.Do(func() {
		store, _, err := sp.Store()
		if err != nil {
			sp.sessionErr = err
			return
		}

		sp.session = session.New(session.NewCredentialStore(store, sp.log), sp.log)
		sp.session.Subscribe(func(ev session.Event) {
			sp.log.Debug().Bool("active", ev.Active).Msg("session changed")
		})
		sp.guard = session.NewGuard(sp.session, loginCommand)
	})
	return sp.session, sp.guard, sp.sessionErr
}

// API returns the backend client. It reads the session's token on every
// request, so it sees logins and logouts made later in the same run.
func (sp *ServiceProvider) API() (api.Service, error) {
	sp.clientOnce.Do(func() {
		if sp.client != nil {
			return
		}
		sess, _, err := sp.Session()
		if err != nil {
			sp.clientErr = err
			return
		}

		client, err := api.NewClient(&sp.cfg, sess, sp.log, api.WithUserAgent("bazaar/"+Version))
		if err != nil {
			sp.clientErr = output.NewCLIError(output.ExitConfigError, err.Error()).
				WithHint("Run: bazaar config set base_url http://HOST:PORT/api")
			return
		}
		sp.client = client
	})
	return sp.client, sp.clientErr
}

// protected runs fn behind the session guard. Without a session it returns
// the login redirect. A backend 401 ends the session. Output must go through
// m.Apply so nothing is printed once the command has been interrupted.
func (sp *ServiceProvider) protected(ctx context.Context, what string, fn func(ctx context.Context, m *session.Mount, svc api.Service) error) error {
	_, guard, err := sp.Session()
	if err != nil {
		return err
	}

	m := guard.Mount()
	stop := context.AfterFunc(ctx, m.Unmount)
	defer stop()
	defer m.Unmount()

	if m.Resolve() != session.StateAuthorized {
		return output.NewCLIError(output.ExitAuth, "Not logged in").WithHint("Run: " + m.RedirectTo())
	}

	svc, err := sp.API()
	if err != nil {
		return err
	}

	if err := fn(ctx, m, svc); err != nil {
		if guard.Revoke(err) {
			sp.log.Info().Msg("backend rejected the stored credential; session ended")
			return output.NewCLIError(output.ExitAuth, what+": session expired or was revoked").WithHint("Run: " + m.RedirectTo())
		}
		return output.FromError(what, err)
	}
	return nil
}

// public runs fn without requiring a session. The credential is still sent
// when present, and a 401 still ends the session.
func (sp *ServiceProvider) public(ctx context.Context, what string, fn func(ctx context.Context, svc api.Service) error) error {
	svc, err := sp.API()
	if err != nil {
		return err
	}

	if err := fn(ctx, svc); err != nil {
		if _, guard, gerr := sp.Session(); gerr == nil && guard.Revoke(err) {
			return output.NewCLIError(output.ExitAuth, what+": stored session was rejected and has been cleared").WithHint("Run: " + loginCommand)
		}
		return output.FromError(what, err)
	}
	return nil
}
