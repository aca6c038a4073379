// Command bunadmin-demo serves the admin over a small blog schema
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	admin "github.com/goliatone/go-bunadmin"
	"github.com/goliatone/go-bunadmin/backend"
	"github.com/goliatone/go-bunadmin/internal/config"
	"github.com/goliatone/go-bunadmin/internal/database"
	"github.com/goliatone/go-bunadmin/internal/logging"
	"github.com/goliatone/go-bunadmin/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	var envFiles []string

	rootCmd := &cobra.Command{
		Use:   "bunadmin-demo",
		Short: "Admin interface demo over bun and fiber",
	}
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load instead of .env")

	load := func() (config.Config, error) {
		return config.Load(config.WithEnvFiles(envFiles...))
	}

	rootCmd.AddCommand(newServeCommand(load), newCreateUserCommand(load))
	return rootCmd.Execute()
}

type loader func() (config.Config, error)

func newServeCommand(load loader) *cobra.Command {
	var seedData bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, seedData)
		},
	}
	cmd.Flags().BoolVar(&seedData, "seed", false, "insert sample rows into an empty database")
	return cmd
}

func newCreateUserCommand(load loader) *cobra.Command {
	var username, password, role string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account allowed to log into the admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			db, err := database.Open(cmd.Context(), cfg.DatabaseDSN, 0)
			if err != nil {
				return err
			}
			defer db.Close()

			users := backend.NewUsers(db)
			if err := users.CreateTable(cmd.Context()); err != nil {
				return err
			}

			user, err := users.Create(cmd.Context(), username, password, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&role, "role", backend.RoleAdmin, "account role")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, seedData bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	zl, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer zl.Sync()
	provider := logging.NewProvider(zl)

	db, err := database.Open(ctx, cfg.DatabaseDSN, 0)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := createSchema(ctx, db); err != nil {
		return err
	}
	if seedData {
		if err := seed(ctx, db); err != nil {
			return err
		}
	}

	users := backend.NewUsers(db)
	if err := users.CreateTable(ctx); err != nil {
		return err
	}

	sessions, err := sessionStorage(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer sessions.Close()

	secret := cfg.SecretKey
	if secret == "" {
		zl.Warn("ADMIN_SECRET_KEY is not set, using an insecure development key")
		secret = "insecure-development-key"
	}

	auth := backend.NewSessionBackend(
		users,
		backend.NewTokenService([]byte(secret), cfg.TokenTTL, "bunadmin-demo"),
		backend.WithLogger(provider.GetLogger("backend")),
		backend.WithDebug(cfg.Debug),
	)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	a, err := admin.New(app, db,
		admin.WithTitle(cfg.AdminTitle),
		admin.WithSecretKey(cfg.SecretKey),
		admin.WithAuthenticationBackend(auth),
		admin.WithSessionStorage(sessions),
		admin.WithSessionExpiration(cfg.TokenTTL),
		admin.WithTemplatesFS(demoTemplates()),
		admin.WithTemplatesDir(cfg.TemplatesDir),
		admin.WithLoggerProvider(provider),
		admin.WithDebug(cfg.Debug),
	)
	if err != nil {
		return err
	}

	if err := registerViews(a); err != nil {
		return err
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(a.Config().BaseURL+"/", fiber.StatusFound)
	})

	errCh := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", cfg.RunAddr), zap.String("admin", a.Config().BaseURL))
		errCh <- app.Listen(cfg.RunAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownGrace); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func sessionStorage(ctx context.Context, cfg config.Config, db *bun.DB) (fiber.Storage, error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return storage.NewRedis(client, "bunadmin:sess"), nil
	}

	store := storage.NewBun(db)
	if err := store.CreateTable(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
