// This is the main entry point of the Todo API.
// It loads configuration, opens the database pool, runs migrations, wires services
// and handlers onto the chi router and serves HTTP until it receives SIGINT or SIGTERM.
//
// @title Todo API
// @version 1.0
// @description Multi-tenant task management API secured by bearer tokens.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/user/todoapi-go/auth"
	"github.com/user/todoapi-go/config"
	"github.com/user/todoapi-go/db"
	"github.com/user/todoapi-go/logger"
	"github.com/user/todoapi-go/metrics"
	"github.com/user/todoapi-go/tasks"
	"github.com/user/todoapi-go/users"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// In production the variables are set directly; .env is a development convenience.
	if err := godotenv.Load(); err != nil {
		logrus.Debugf(".env file not loaded: %v", err)
	}

	app := &cli.App{
		Name:           "todoapi",
		Usage:          "multi-tenant task management API",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run migrations and start the HTTP server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "skip-migrations",
						Usage:   "start without applying pending migrations",
						EnvVars: []string{"SKIP_MIGRATIONS"},
					},
				},
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply or roll back database migrations",
				Subcommands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "apply all pending migrations",
						Action: migrate(db.MigrateUp),
					},
					{
						Name:   "down",
						Usage:  "roll back all migrations",
						Action: migrate(db.MigrateDown),
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("todoapi exited with an error")
	}
}

// loadConfig reads the environment and configures logging. Every command starts here.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Setup(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, nil
}

func migrate(direction db.MigrationDirection) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return db.RunMigrations(db.DSN(cfg.DB), cfg.MigrationsPath, direction)
	}
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !c.Bool("skip-migrations") {
		if err := db.RunMigrations(db.DSN(cfg.DB), cfg.MigrationsPath, db.MigrateUp); err != nil {
			return err
		}
	}

	pool, err := db.NewPool(c.Context, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)
	m.RegisterPool(pool)

	// Manual dependency injection: repositories, then services, then handlers.
	roleService := users.NewRoleService(users.NewRoleRepository(pool))
	userService := users.NewUserService(users.NewRepository(pool), roleService)
	taskService := tasks.NewTaskService(tasks.NewRepository(pool))

	tokenService := auth.NewTokenService(*cfg.Auth)
	authService := auth.NewAuthService(userService, tokenService)
	routes := auth.NewRouteTable(*cfg.Security, auth.DefaultRoleRules)

	app := &application{
		cfg:           cfg,
		pool:          pool,
		metrics:       m,
		authenticator: auth.NewAuthenticator(tokenService, userService, routes, m),
		authHandlers:  auth.NewHandlers(authService),
		userHandlers:  users.NewUserHandlers(userService),
		taskHandlers:  tasks.NewTaskHandlers(taskService),
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("server shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logrus.Info("server stopped gracefully")
	return nil
}
