package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjperalta/fintera-ops/internal/services"
)

var tickAliases = map[string]string{
	"recurring": services.JobRecurringObligations,
	"invoices":  services.JobInvoiceLifecycle,
	"payroll":   services.JobPayrollScheduling,
}

// resolveTicks maps a CLI target to job names. "all" runs every tick in order.
func resolveTicks(target string) ([]string, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "all" {
		return services.JobNames, nil
	}
	if name, ok := tickAliases[target]; ok {
		return []string{name}, nil
	}
	for _, name := range services.JobNames {
		if name == target {
			return []string{name}, nil
		}
	}
	return nil, fmt.Errorf("unknown tick %q, expected recurring, invoices, payroll or all", target)
}

func tickCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "tick [recurring|invoices|payroll|all]",
		Short: "Run finance ticks once and exit",
		Long: `Runs the scheduled finance ticks synchronously:
  recurring  materialize due recurring obligations
  invoices   mark overdue invoices and send reminders
  payroll    generate payrolls for tenants on their schedule`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := resolveTicks(args[0])
			if err != nil {
				return err
			}
			today, err := parseDateFlag(date)
			if err != nil {
				return err
			}

			a, err := openApp(today)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			var errs []error
			for _, name := range names {
				if err := a.svcs.Job.Run(ctx, name); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s failed: %v\n", name, err)
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s done\n", name)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Run as if today were this date (YYYY-MM-DD)")
	return cmd
}

func generateCmd() *cobra.Command {
	var tenantID uint
	var period string
	cmd := &cobra.Command{
		Use:   "generate-payroll",
		Short: "Generate one tenant's payrolls for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tenantID == 0 {
				return errors.New("--tenant is required")
			}
			a, err := openApp(time.Time{})
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.svcs.Payroll.Generate(cmd.Context(), services.SystemActor(tenantID), period)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "period %s: %d payrolls created\n", period, len(created))
			return nil
		},
	}
	cmd.Flags().UintVar(&tenantID, "tenant", 0, "Tenant ID")
	cmd.Flags().StringVar(&period, "period", "", "Payroll period (YYYY-MM)")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}
