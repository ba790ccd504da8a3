// Package main runs the OWASP demo server and its helper commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"vulnDemo/internal/config"
	"vulnDemo/internal/db"
	"vulnDemo/internal/httpserver"
	"vulnDemo/internal/logging"
	"vulnDemo/repository"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var dbPath string

	rootCmd := &cobra.Command{
		Use:          "vulndemo",
		Short:        "Deliberately vulnerable OWASP training server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			logging.Init(logging.ParseLevel(cfg.Log.Level), cmd.ErrOrStderr(), cfg.Log.Format)
			a.cfg = cfg
			a.logger = logging.GetLogger()
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", db.DefaultPath, "SQLite database file (overrides DB_PATH)")

	rootCmd.AddCommand(newServeCmd(a), newInitDBCmd(a), newSeedCmd(a), newPayloadCmd())
	return rootCmd
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Create the schema if needed and serve the demo routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("addr") {
				cfg.HTTP.Address = addr
			}
			if cmd.Flags().Changed("debug") {
				cfg.HTTP.Debug = debugMode
			}
			a.logger.Info("configuration loaded", "config", cfg.String())

			if err := ensureSchema(cfg.Database.Path); err != nil {
				return err
			}

			users := repository.NewUserRepository(cfg.Database.Path, a.logger)
			h := httpserver.NewHandler(users, afero.NewOsFs(), cfg.Shell.Path, a.logger)
			router := httpserver.NewRouter(h, cfg.HTTP.Debug, a.logger)

			bound, shutdown, err := httpserver.Start(cfg, router, a.logger)
			if err != nil {
				return fmt.Errorf("start http: %w", err)
			}
			a.logger.Info("http server listening", "address", bound, "debug", cfg.HTTP.Debug)

			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
			<-sigc

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				a.logger.Error("shutdown error", "error", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "0.0.0.0:5000", "listen address (overrides HTTP_ADDRESS)")
	cmd.Flags().BoolVar(&debugMode, "debug", true, "return error details and stack traces to clients (overrides DEBUG)")
	return cmd
}

func newInitDBCmd(a *app) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the users table if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.cfg.Database.Path
			if reset {
				d, err := db.Open(path)
				if err != nil {
					return fmt.Errorf("open db: %w", err)
				}
				err = db.RollbackLast(d)
				_ = d.Close()
				if err != nil {
					return fmt.Errorf("rollback: %w", err)
				}
			}
			if err := ensureSchema(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "schema ready in %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop the users table before recreating it")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a plaintext user row for exercises",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ensureSchema(a.cfg.Database.Path); err != nil {
				return err
			}
			users := repository.NewUserRepository(a.cfg.Database.Path, a.logger)
			u, err := users.Create(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", u.ID, u.Username)
			return err
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "username to insert")
	cmd.Flags().StringVar(&password, "password", "admin123", "password to insert, stored as-is")
	return cmd
}

// ensureSchema opens path, applies the schema and closes it again.
func ensureSchema(path string) error {
	d, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = d.Close() }()
	if err := db.EnsureSchema(d); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
