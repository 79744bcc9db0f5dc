package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SscSPs/mbg_dapur_ledger/internal/buildinfo"
	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/platform/config"
	"github.com/SscSPs/mbg_dapur_ledger/internal/platform/storage"
)

// app holds what every subcommand shares.
type app struct {
	logger        *slog.Logger
	loadConfig    func() (*config.Config, error)
	storageDriver string
}

func (a *app) config() (*config.Config, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if a.storageDriver != "" {
		cfg.StorageDriver = strings.ToLower(a.storageDriver)
	}
	return cfg, nil
}

// openServices wires the service container over the configured storage.
func (a *app) openServices(ctx context.Context) (*portssvc.ServiceContainer, *config.Config, func(), error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, nil, err
	}
	repos, closeRepos, err := storage.Open(ctx, cfg, storage.Options{}, a.logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening storage: %w", err)
	}
	return services.NewServiceContainer(cfg, repos, nil), cfg, closeRepos, nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(logger *slog.Logger) *cobra.Command {
	return newRootCommand(&app{logger: logger, loadConfig: config.LoadConfig})
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "dapurctl",
		Short:   "Operator tooling for the dapur ledger",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.storageDriver, "storage", "", "override STORAGE_DRIVER (postgres or memory)")

	rootCmd.AddCommand(newMigrateCommand(a))
	rootCmd.AddCommand(newTrialBalanceCommand(a))
	rootCmd.AddCommand(newReconcileCommand(a))

	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)
	if err := NewRootCommand(logger).Execute(); err != nil {
		return 1
	}
	return 0
}
