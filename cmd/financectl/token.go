package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjperalta/fintera-ops/internal/config"
	"github.com/sjperalta/fintera-ops/internal/middleware"
	"github.com/sjperalta/fintera-ops/internal/models"
)

func tokenCmd() *cobra.Command {
	var (
		tenantID uint
		userID   uint
		email    string
		role     string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tenantID == 0 {
				return errors.New("--tenant is required")
			}
			switch role {
			case models.RoleAdmin, models.RoleEmployee, models.RoleClient:
			default:
				return fmt.Errorf("invalid --role %q", role)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := middleware.GenerateToken(cfg.JWTSecret, tenantID, userID, email, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().UintVar(&tenantID, "tenant", 0, "Tenant ID")
	cmd.Flags().UintVar(&userID, "user", 0, "User ID")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&role, "role", models.RoleAdmin, "admin, employee or client")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
