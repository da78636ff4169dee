package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-compare/internal/apierr"
	"github.com/kozaktomas/face-compare/internal/compare"
	"github.com/kozaktomas/face-compare/internal/config"
	"github.com/kozaktomas/face-compare/internal/constants"
	"github.com/kozaktomas/face-compare/internal/logging"
	"github.com/kozaktomas/face-compare/internal/session"
	"github.com/kozaktomas/face-compare/internal/transport"
	"github.com/kozaktomas/face-compare/internal/watch"
)

// app bundles the clients a command needs.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	transport *transport.Client
	compare   *compare.Client
	identity  *session.Identity
	store     session.Store
	sessionID string // explicit --session-id
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	flags := cmd.Flags()

	if flags.Changed("api-url") {
		cfg.API.URL = mustGetString(cmd, "api-url")
	}
	if flags.Changed("timeout") {
		cfg.API.Timeout = mustGetDuration(cmd, "timeout")
	}
	if flags.Changed("locale") {
		cfg.API.Locale = mustGetString(cmd, "locale")
	}
	if flags.Changed("session-store") {
		cfg.Session.Store = mustGetString(cmd, "session-store")
	}
	if flags.Changed("session-path") {
		cfg.Session.Path = mustGetString(cmd, "session-path")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = mustGetString(cmd, "log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = mustGetString(cmd, "log-format")
	}
	return cfg
}

// newApp builds the transport, comparison client and session identity from
// configuration. The caller must Close the app.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg := loadConfig(cmd)
	logger := logging.InitLogger(cfg.Log.Level, cfg.Log.Format)

	tc, err := transport.New(transport.Options{
		BaseURL:    cfg.API.URL,
		Timeout:    cfg.API.Timeout,
		UserAgent:  constants.AppName + "/" + Version,
		Normalizer: apierr.NewNormalizer(cfg.MessagesFor(cfg.API.Locale)),
		Logger:     logger,
		CaptureDir: captureDir,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		transport: tc,
		compare:   compare.New(tc),
		sessionID: mustGetString(cmd, "session-id"),
	}
	if a.sessionID != "" {
		return a, nil
	}

	store, err := session.NewStore(cfg.Session.Store,
		session.WithNamespace(tc.Origin()),
		session.WithPath(cfg.Session.ResolvedPath()),
		session.WithRedisURL(cfg.Session.RedisURL),
	)
	if err != nil {
		return nil, fmt.Errorf("could not open %s session store: %w", cfg.Session.Store, err)
	}
	a.store = store
	a.identity = session.NewIdentity(store)
	return a, nil
}

// Close releases the session store.
func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close session store", "error", err)
	}
}

// session returns the token used for every call of this run.
func (a *app) session(ctx context.Context) (string, error) {
	if a.sessionID != "" {
		return a.sessionID, nil
	}
	token, err := a.identity.GetOrCreate(ctx)
	if err != nil {
		return "", fmt.Errorf("could not load session identity: %w", err)
	}
	return token, nil
}

// watcher returns a poll loop configured from the poll settings.
func (a *app) watcher(onUpdate func(*compare.Job)) *watch.Watcher {
	return watch.New(a.compare, watch.Options{
		Interval:    a.cfg.Poll.Interval,
		MaxInterval: a.cfg.Poll.MaxInterval,
		MaxErrors:   a.cfg.Poll.MaxErrors,
		OnUpdate:    onUpdate,
		Normalizer:  a.transport.Normalizer(),
		Logger:      a.logger,
	})
}
