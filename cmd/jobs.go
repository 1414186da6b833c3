package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/checkout-payments/internal/jobs"
	"github.com/frahmantamala/checkout-payments/pkg/logger"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	jobsCmd = &cobra.Command{
		Use:   "jobs",
		Short: "Run one of the scheduled reconciliation sweeps",
	}

	confirmAgeMinutes int

	confirmJobCmd = &cobra.Command{
		Use:   "confirm-payments",
		Short: "Settle created orders whose shoppers paid but never returned",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(func(ctx context.Context, stack *serviceStack) jobs.Status {
				age := confirmAgeMinutes
				if age <= 0 {
					age = stackConfigConfirmAge
				}
				return stack.ConfirmSweep.Run(ctx, age)
			})
		},
	}

	completionJobCmd = &cobra.Command{
		Use:   "complete-preauth",
		Short: "Capture shipped pre-auth orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(func(ctx context.Context, stack *serviceStack) jobs.Status {
				return stack.CompletionSweep.Run(ctx)
			})
		},
	}

	refundJobCmd = &cobra.Command{
		Use:   "refund-cancelled",
		Short: "Return money for cancelled orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(func(ctx context.Context, stack *serviceStack) jobs.Status {
				return stack.RefundSweep.Run(ctx)
			})
		},
	}

	// set by runSweep after config load so the flag default can come
	// from configuration
	stackConfigConfirmAge int
)

func init() {
	confirmJobCmd.Flags().IntVar(&confirmAgeMinutes, "age-minutes", 0,
		"minimum order age in minutes before confirmation (0 uses config)")

	jobsCmd.AddCommand(confirmJobCmd)
	jobsCmd.AddCommand(completionJobCmd)
	jobsCmd.AddCommand(refundJobCmd)
}

func runSweep(run func(ctx context.Context, stack *serviceStack) jobs.Status) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Observability.Logging.Format == "json" {
		logger.Init("production")
	} else {
		logger.Init("development")
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to initialize gorm: %w", err)
	}

	stackConfigConfirmAge = cfg.Jobs.ConfirmAgeMinutes
	stack := buildServiceStack(cfg, gormDB, lg)

	status := run(context.Background(), stack)
	slog.Info("sweep finished", "code", status.Code, "message", status.Message)

	if status.Code == jobs.StatusError {
		return fmt.Errorf("sweep failed: %s", status.Message)
	}
	return nil
}
