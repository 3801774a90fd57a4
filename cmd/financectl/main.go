package main

import (
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/sjperalta/fintera-ops/internal/config"
	"github.com/sjperalta/fintera-ops/internal/database"
	"github.com/sjperalta/fintera-ops/internal/jobs"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/internal/services"
	"github.com/sjperalta/fintera-ops/pkg/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "financectl",
		Short:         "Operations CLI for the fintera finance core",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(tickCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the wired finance core for one CLI invocation
type app struct {
	cfg    *config.Config
	svcs   *services.Services
	worker *jobs.Worker
}

// openApp connects to the store and builds the services. A non-zero today pins the
// service clock so a run can be replayed for a past date.
func openApp(today time.Time) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Setup(cfg.Environment)

	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	deps := services.DefaultDependencies(cfg)
	if !today.IsZero() {
		pinned := time.Date(today.Year(), today.Month(), today.Day(), 12, 0, 0, 0, cfg.Location)
		deps.Clock = services.NewFixedClock(func() time.Time { return pinned }, cfg.Location)
	}

	worker := jobs.NewWorker(1)
	svcs := services.NewServices(repository.NewRepositories(db), worker, cfg, deps)
	return &app{cfg: cfg, svcs: svcs, worker: worker}, nil
}

// Close waits for background work such as queued emails
func (a *app) Close() {
	a.worker.Shutdown()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the finance tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Setup(cfg.Environment)
			db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}
