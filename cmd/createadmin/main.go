package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/audit"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/database"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/logging"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "createadmin",
		Short: "Create an admin user, or promote an existing one and reset their password",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.Setup(cfg.LogLevel)

			if err := database.Connect(cfg); err != nil {
				return err
			}
			defer database.Close(database.DB)
			if err := database.Migrate(database.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			if email == "" {
				email = cfg.AdminEmail
			}
			if password == "" {
				password = cfg.AdminPassword
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
			auth := services.NewAuthService(database.DB, cfg, tokens, audit.NewSlogSink(logger))

			user, err := auth.ProvisionAdmin(ctx, email, password, name)
			if err != nil {
				return err
			}

			slog.Info("admin ready", "id", user.ID, "email", user.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s) ready\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email (default $ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "admin password, min 6 characters (default $ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	return cmd
}
