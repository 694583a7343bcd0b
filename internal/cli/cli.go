// Package cli wires configuration, logging and the persistence backend
// into the tally command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sadopc/tally/internal/config"
	"github.com/sadopc/tally/internal/mysql"
	"github.com/sadopc/tally/internal/store"
	"github.com/sadopc/tally/internal/tracker"
)

// app carries what every command needs once flags and config are resolved.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	log    *slog.Logger
	closer io.Closer

	// opts seeds tracker.New; tests pin the clock through it.
	opts tracker.Options
}

// New returns the root command. Run without a subcommand it opens the
// terminal UI.
func New() *cobra.Command {
	return newCommand(&app{v: config.New()})
}

func newCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tally",
		Short:         "Freelance time tracking in the terminal.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, cmd == cmd.Root())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.closer != nil {
				a.closer.Close()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return a.runUI(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("user", "", "user whose entries to work with")
	flags.String("backend", "", "persistence backend: sqlite or mysql")
	flags.String("db", "", "SQLite database path")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	_ = a.v.BindPFlag("user", flags.Lookup("user"))
	_ = a.v.BindPFlag("backend", flags.Lookup("backend"))
	_ = a.v.BindPFlag("db_path", flags.Lookup("db"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))

	addCommands(cmd, a)
	return cmd
}

func addCommands(topLevel *cobra.Command, a *app) {
	addStart(topLevel, a)
	addStop(topLevel, a)
	addStatus(topLevel, a)
	addAdd(topLevel, a)
	addList(topLevel, a)
	addSummary(topLevel, a)
	addReport(topLevel, a)
	addInvoice(topLevel, a)
	addProject(topLevel, a)
	addExport(topLevel, a)
}

func (a *app) setup(cmd *cobra.Command, ui bool) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// The UI owns the terminal, so its logs go to a file.
	var w io.Writer = cmd.ErrOrStderr()
	if ui && cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.closer = f
		w = f
	}
	a.log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return nil
}

// gateway opens the configured backend.
func (a *app) gateway(ctx context.Context) (store.Gateway, func(), error) {
	switch a.cfg.Backend {
	case config.BackendMySQL:
		c, err := mysql.NewClient(ctx, a.cfg.MySQLDSN, a.log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mysql: %w", err)
		}
		if err := c.Migrate(ctx); err != nil {
			c.Close()
			return nil, nil, fmt.Errorf("migrate mysql: %w", err)
		}
		return c, func() { c.Close() }, nil
	default:
		s, err := store.New(a.cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return s, func() { s.Close() }, nil
	}
}

// open loads the user's tracker. The returned func flushes pending writes
// and closes the backend; it reports writes that could not be saved.
func (a *app) open(ctx context.Context) (*tracker.Tracker, func() error, error) {
	gw, closeGW, err := a.gateway(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts := a.opts
	opts.Logger = a.log
	tr := tracker.New(ctx, tracker.Session{UserID: a.cfg.User}, gw, opts)
	return tr, func() error {
		tr.Close()
		closeGW()
		if f := tr.Failures(); len(f) > 0 {
			return fmt.Errorf("%d change(s) could not be saved: %w", len(f), f[len(f)-1].Err)
		}
		return nil
	}, nil
}

// withTracker runs fn against an open tracker and flushes it afterwards.
func (a *app) withTracker(cmd *cobra.Command, fn func(tr *tracker.Tracker) error) error {
	cmd.SilenceUsage = true
	tr, done, err := a.open(cmd.Context())
	if err != nil {
		return err
	}
	runErr := fn(tr)
	if err := done(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
