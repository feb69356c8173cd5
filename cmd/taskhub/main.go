// Package main is the taskhub server and admin CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	database "github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/auth"
	"github.com/taskhub-dev/taskhub/internal/config"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/realtime"
	"github.com/taskhub-dev/taskhub/internal/router"
	"github.com/taskhub-dev/taskhub/internal/scheduler"
	"github.com/taskhub-dev/taskhub/internal/services"
	"github.com/taskhub-dev/taskhub/internal/storage"
	"gorm.io/gorm"
)

const (
	Version = "0.1.0"
	appName = "taskhub"

	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Project tracking backend",
		Long:          `TaskHub serves the project, sprint and issue tracking API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (TOML)")

	serveCommand := serveCmd(&configPath)
	cmd.RunE = serveCommand.RunE

	cmd.AddCommand(
		serveCommand,
		migrateCmd(&configPath),
		createAdminCmd(&configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

// setup loads configuration, installs the logger and opens the database.
func setup(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	slog.SetDefault(cfg.NewLogger())

	gdb, err := database.Connect(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	return cfg, gdb, nil
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gdb, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer database.Close(gdb)

			if err := database.Migrate(gdb); err != nil {
				return err
			}

			return serve(cmd.Context(), cfg, gdb)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, gdb *gorm.DB) error {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	hub := realtime.NewHub(cfg.AllowedOrigins)
	files := storage.NewLocalStore(cfg.UploadDir)

	svc := services.New(gdb, tokens, files, hub)

	sched := scheduler.NewScheduler()
	defer sched.Stop()

	if cfg.ReminderInterval > 0 {
		window := cfg.ReminderWindow
		sched.AddJob("due-reminders", cfg.ReminderInterval, func(ctx context.Context) error {
			_, err := svc.Issues.RemindDueSoon(ctx, window)
			return err
		})
	}

	engine := router.NewRouter(router.Options{
		DB:             gdb,
		Services:       svc,
		Tokens:         tokens,
		Hub:            hub,
		Scheduler:      sched,
		Logger:         slog.Default(),
		AllowedOrigins: cfg.AllowedOrigins,
		UploadDir:      cfg.UploadDir,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", server.Addr, "db_driver", cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gdb, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer database.Close(gdb)

			return database.Migrate(gdb)
		},
	}
}

func createAdminCmd(configPath *string) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gdb, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer database.Close(gdb)

			if err := database.Migrate(gdb); err != nil {
				return err
			}

			users := services.NewUserService(gdb, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), time.Now)

			role := models.RoleAdmin
			user, err := users.Create(cmd.Context(), services.UserInput{
				Name:     &name,
				Email:    &email,
				Password: &password,
				Role:     &role,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created admin %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Administrator", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Login password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
