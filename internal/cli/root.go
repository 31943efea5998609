package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pdxmph/tasks/internal/config"
	"github.com/pdxmph/tasks/internal/format"
	"github.com/pdxmph/tasks/internal/storage"
	"github.com/pdxmph/tasks/internal/tasks"
	"github.com/spf13/cobra"
)

// app carries the global flags and lazily opened resources shared by commands
type app struct {
	configPath string
	file       string
	backend    string
	verbose    bool

	logger *slog.Logger
}

// NewRootCmd builds the full command tree
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "tasks",
		Short: "A small task list manager",
		Long: `tasks keeps a simple to-do list in a local file.

Tasks are stored in tasks.json in the current directory unless the
configuration (~/.config/tasks/config.toml) or --file says otherwise.`,
		Example: `  tasks add "Buy groceries"
  tasks list pending
  tasks complete 1
  tasks delete 2
  tasks edit 3 "Buy organic groceries"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.config/tasks/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&a.file, "file", "f", "", "Task file, overrides the configured storage path")
	rootCmd.PersistentFlags().StringVar(&a.backend, "backend", "", "Storage backend ("+strings.Join(storage.List(), "|")+")")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &tasks.ValidationError{Message: err.Error()}
	})

	rootCmd.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newCompleteCmd(a),
		newUncompleteCmd(a),
		newDeleteCmd(a),
		newEditCmd(a),
		newStatsCmd(a),
		newTUICmd(a),
		newConfigCmd(a),
	)

	return rootCmd
}

// Execute runs the command line and reports any failure on stderr
func Execute(version string) error {
	rootCmd := NewRootCmd(version)
	if err := rootCmd.Execute(); err != nil {
		ReportError(os.Stderr, err)
		return err
	}
	return nil
}

// ReportError prints err classified by kind
func ReportError(w io.Writer, err error) {
	f := format.New(w)

	var msg string
	switch {
	case tasks.IsValidation(err):
		msg = err.Error()
	case tasks.IsStorage(err):
		msg = "Storage error: " + err.Error()
	case strings.HasPrefix(err.Error(), "unknown command"):
		msg = `Unknown command. Use "help" for available commands.`
	default:
		msg = "Unexpected error: " + err.Error()
	}

	fmt.Fprintln(w, f.Error(msg))
}

// loadConfig reads the config file and applies flag overrides
func (a *app) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFrom(config.ExpandPath(a.configPath))
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if a.backend != "" {
		cfg.Storage.Backend = a.backend
	}
	if a.file != "" {
		cfg.Storage.Path = a.file
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, &tasks.ValidationError{Message: err.Error()}
	}

	a.logger = newLogger(cfg.Log.Level, os.Stderr)
	slog.SetDefault(a.logger)
	return cfg, nil
}

// openStore opens the configured backend and loads the task store.
// The returned close function releases the backend.
func (a *app) openStore() (*tasks.Store, func(), error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	backend, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, nil, &tasks.StorageError{Op: "open", Path: cfg.Storage.Path, Err: err}
	}
	a.logger.Debug("storage opened", slog.String("backend", backend.Name()), slog.String("path", cfg.Storage.Path))

	store, err := tasks.NewStore(backend, tasks.WithLogger(a.logger))
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := backend.Close(); err != nil {
			a.logger.Warn("closing storage", slog.Any("err", err))
		}
	}
	return store, closeFn, nil
}

func newLogger(level string, w io.Writer) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// requireArgs rejects commands called with fewer than n arguments
func requireArgs(n int, message string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return &tasks.ValidationError{Message: message}
		}
		return nil
	}
}

// maxArgs rejects commands called with more than n arguments
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return &tasks.ValidationError{Message: fmt.Sprintf("Too many arguments for %q", cmd.Name())}
		}
		return nil
	}
}

// isNotExist reports whether err means a file is missing
func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
