package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/strata-cms/strata/pkg/strata"
	"github.com/strata-cms/strata/pkg/strata/api"
	"github.com/strata-cms/strata/pkg/strata/config"
)

// ServerEnv carries the process-level settings that stay outside the
// engine configuration.
type ServerEnv struct {
	LogFormat       string        `env:"STRATA_LOG_FORMAT" env-default:"text"`
	LogLevel        string        `env:"STRATA_LOG_LEVEL" env-default:"info"`
	ShutdownTimeout time.Duration `env:"STRATA_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func main() {
	var env ServerEnv
	if err := cleanenv.ReadEnv(&env); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read environment: %v\n", err)
		os.Exit(1)
	}
	setupLogger(env)

	cfg, err := config.Load(config.WithEnv("STRATA_"))
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	runtime, err := cfg.BuildRuntime()
	if err != nil {
		slog.Error("failed to build engine", "error", err)
		os.Exit(1)
	}
	defer runtime.Close()

	handlerOpts := []api.HandlerOption{api.WithPrefix(cfg.APIPrefix)}
	if cfg.EnableCORS {
		handlerOpts = append(handlerOpts, api.WithPreflight(strata.CORSOptions{
			AllowedOrigins: cfg.CORSOrigins,
		}))
	}
	if runtime.Pool != nil {
		pool := runtime.Pool
		handlerOpts = append(handlerOpts, api.WithReadyCheck(func(ctx context.Context) error {
			return pool.Ping(ctx)
		}))
	}
	handler := api.NewHandler(runtime.Engine, handlerOpts...)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Hot reload of schema files runs alongside the server.
	if runtime.FileRegistry != nil && cfg.WatchSchemas {
		go func() {
			if err := runtime.FileRegistry.Watch(rootCtx); err != nil {
				slog.Error("schema watcher stopped", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: handler.Routes(),
	}

	go func() {
		slog.Info("content server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"registry", cfg.RegistryKind,
			"store", cfg.StoreKind,
			"auth", cfg.AuthMode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-rootCtx.Done()
	stop()
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), env.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited")
}

func setupLogger(env ServerEnv) {
	var level slog.Level
	switch strings.ToLower(env.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(env.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
