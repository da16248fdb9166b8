package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NationalMuseumofDenmark/cip-go/cip"
	"github.com/NationalMuseumofDenmark/cip-go/internal/config"
	"github.com/NationalMuseumofDenmark/cip-go/internal/prefs"
	"github.com/NationalMuseumofDenmark/cip-go/internal/state"
	"github.com/NationalMuseumofDenmark/cip-go/internal/ui"
)

// Options configure the cip application.
type Options struct {
	ConfigPath string
	PrefsPath  string    // empty uses default ~/.config/cip/prefs.toml
	PollEvery  int       // seconds; zero uses default
	Args       []string  // subcommand and its arguments; empty means browse
	Out        io.Writer // one-shot command output; nil means stdout
}

const sessionCloseTimeout = 5 * time.Second

// Run loads the configuration, connects to the CIP server and runs the
// requested command until it finishes or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	command, args := "browse", []string(nil)
	if len(opts.Args) > 0 {
		command, args = opts.Args[0], opts.Args[1:]
	}

	closeLog, err := setupLogging(cfg, command == "browse")
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := newClient(cfg)
	if err != nil {
		return fmt.Errorf("init cip client: %w", err)
	}

	if cfg.OpenSession {
		if _, err := client.Session().Open(ctx, sessionOptions(cfg), true); err != nil {
			return fmt.Errorf("open session: %w", err)
		}
		defer closeSession(ctx, client)
	}

	if command == "browse" {
		return browse(ctx, client, cfg, opts)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return runCommand(ctx, client, cfg, command, args, out)
}

func newClient(cfg config.Config) (*cip.Client, error) {
	return cip.NewClient(cfg.Server,
		cip.WithTimeout(cfg.Timeout),
		cip.WithDAMCredentials(cip.DAMCredentials{
			ServerAddress: cfg.ServerAddress,
			User:          cfg.User,
			Password:      cfg.Password,
		}),
		cip.WithLogger(logrus.WithFields(logrus.Fields{"source": "cip", "server": cfg.Server})),
	)
}

func sessionOptions(cfg config.Config) cip.OpenOptions {
	return cip.OpenOptions{
		ServerAddress: cfg.ServerAddress,
		User:          cfg.User,
		Password:      cfg.Password,
		CatalogName:   cfg.Catalog,
		Locale:        cfg.Locale,
	}
}

// closeSession ends the session even when ctx is already cancelled.
func closeSession(ctx context.Context, client *cip.Client) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionCloseTimeout)
	defer cancel()
	if _, err := client.Session().Close(ctx); err != nil {
		logrus.WithError(err).Warn("close session")
	}
}

// setupLogging applies the configured level. The browser owns the terminal,
// so its log output goes to a file in the temp dir, or nowhere.
func setupLogging(cfg config.Config, tui bool) (func(), error) {
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if !tui {
		return func() {}, nil
	}
	if !cfg.Debug {
		logrus.SetOutput(io.Discard)
		return func() {}, nil
	}

	path := filepath.Join(os.TempDir(), "cip-debug.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	logrus.SetOutput(f)
	return func() {
		logrus.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

func browse(ctx context.Context, client *cip.Client, cfg config.Config, opts Options) error {
	userPrefs, _ := prefs.Load(opts.PrefsPath)

	store := &state.Store{}

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Start background keepalive
	StartPoller(ctx, store, client.System(), interval)

	// Do initial refresh to populate store before UI starts
	_ = refresh(ctx, store, client.System())

	return ui.Run(ui.Options{
		Context:  ctx,
		Searcher: client.Metadata(),
		Store:    store,
		Target: ui.Target{
			Server:  client.Server(),
			Catalog: cfg.Catalog,
			View:    cfg.View,
			Table:   cfg.Table,
			Locale:  cfg.Locale,
		},
		PollTick:  time.Second,
		ThemeName: userPrefs.Theme,
		LastQuery: userPrefs.LastQuery,
		PrefsPath: opts.PrefsPath,
	})
}
