// Package cli implements the kanban command-line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/kanban-api/internal/client"
	"github.com/phrazzld/kanban-api/internal/client/snapshot"
	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/spf13/cobra"
)

// Session is everything a command needs once configuration is resolved.
type Session struct {
	Cache *client.Cache
	Users func(ctx context.Context) ([]domain.PublicUser, error)
	Close func() error
}

// Opener builds a Session from the resolved client configuration.
type Opener func(ctx context.Context, cfg *config.ClientConfig, log *slog.Logger) (*Session, error)

// Option customizes Execute.
type Option func(*app)

// WithOutput redirects standard output and standard error.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *app) {
		a.out = out
		a.errOut = errOut
	}
}

// WithOpener replaces the default HTTP and snapshot wiring.
func WithOpener(open Opener) Option {
	return func(a *app) {
		a.open = open
	}
}

type app struct {
	out    io.Writer
	errOut io.Writer
	open   Opener

	configFile   string
	server       string
	snapshotPath string
	redisAddr    string
	format       string

	session *Session
}

// Execute runs the kanban command line with args (without the program name).
func Execute(ctx context.Context, args []string, opts ...Option) error {
	a := &app{
		out:    os.Stdout,
		errOut: os.Stderr,
		open:   openSession,
	}
	for _, opt := range opts {
		opt(a)
	}
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "kanban",
		Short: "Kanban board client",
		Long: `kanban works with the task board served by the kanban API.

Changes are applied locally first and kept in a local snapshot, so the
board stays usable while the server is unreachable. Run "kanban sync" to
send queued changes.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "path to a client config file")
	flags.StringVar(&a.server, "server", "", "API base URL, e.g. http://localhost:8080/api")
	flags.StringVar(&a.snapshotPath, "snapshot", "", "SQLite file holding the local snapshot")
	flags.StringVar(&a.redisAddr, "redis-addr", "", "keep the local snapshot in Redis at this address")
	flags.StringVarP(&a.format, "format", "o", formatText, "output format: text, json or yaml")

	root.AddCommand(
		a.boardCommand(),
		a.listCommand(),
		a.addCommand(),
		a.moveCommand(),
		a.moveToCommand(),
		a.deleteCommand(),
		a.syncCommand(),
		a.exportCommand(),
		a.usersCommand(),
	)
	return root
}

// setup resolves configuration and opens the session before any subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if !validFormat(a.format) {
		return fmt.Errorf("unknown format %q: expected text, json or yaml", a.format)
	}

	cfg, err := config.LoadClient(a.configFile)
	if err != nil {
		return err
	}
	a.applyFlags(cfg)

	log := logger.New(a.errOut, cfg.LogLevel)
	session, err := a.open(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	a.session = session
	return nil
}

// applyFlags lets command-line flags override the loaded configuration.
func (a *app) applyFlags(cfg *config.ClientConfig) {
	if a.server != "" {
		cfg.BaseURL = a.server
	}
	if a.snapshotPath != "" {
		cfg.SnapshotBackend = config.SnapshotBackendSQLite
		cfg.SnapshotPath = a.snapshotPath
	}
	if a.redisAddr != "" {
		cfg.SnapshotBackend = config.SnapshotBackendRedis
		cfg.RedisAddr = a.redisAddr
	}
}

func (a *app) close() {
	if a.session == nil || a.session.Close == nil {
		return
	}
	if err := a.session.Close(); err != nil {
		fmt.Fprintln(a.errOut, "warning: closing local store:", err)
	}
}

// load refreshes the cache. Failures are reported as warnings because the
// cache still holds the local snapshot.
func (a *app) load(ctx context.Context) {
	err := a.session.Cache.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, client.ErrOffline):
		fmt.Fprintln(a.errOut, "warning: server unavailable, using local snapshot")
	default:
		fmt.Fprintln(a.errOut, "warning:", err)
	}
}

func openSession(ctx context.Context, cfg *config.ClientConfig, log *slog.Logger) (*Session, error) {
	store, err := snapshot.Open(ctx, *cfg)
	if err != nil {
		return nil, err
	}

	api := client.NewHTTPClient(cfg.BaseURL, cfg.Timeout, log)
	cache := client.NewCache(api, store,
		client.WithLogger(log),
		client.WithSnapshotKey(cfg.SnapshotKey),
		client.WithOutboxKey(outboxKey(cfg.SnapshotKey)),
		client.WithSampleTasks(),
	)

	return &Session{
		Cache: cache,
		Users: api.ListUsers,
		Close: store.Close,
	}, nil
}

// outboxKey keeps the outbox next to a custom snapshot key.
func outboxKey(snapshotKey string) string {
	if snapshotKey == "" || snapshotKey == client.DefaultSnapshotKey {
		return client.DefaultOutboxKey
	}
	return snapshotKey + "-outbox"
}
