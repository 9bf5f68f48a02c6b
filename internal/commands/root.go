// Package commands builds the fintone CLI. Every subcommand shares the
// same bootstrap: load .env, validate configuration, build the logger,
// then assemble the assistant from the configured backend and optional
// integrations.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fintone/internal/amqp"
	"fintone/internal/backend"
	"fintone/internal/config"
	"fintone/internal/log"
	"fintone/internal/narrate"
	"fintone/internal/services"
	"fintone/internal/transcribe"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "fintone",
		Short:   "Natural language money tracking assistant",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.SetOut(os.Stdout)

	rootCmd.AddCommand(
		newServeCommand(),
		newWorkerCommand(),
		newRecordCommand(),
		newAskCommand(),
		newRecordsCommand(),
		newReplCommand(),
	)

	return rootCmd
}

// bootstrap loads the environment file, configuration and logger shared by
// every subcommand. The .env file is optional in production.
func bootstrap() (*config.Config, *log.Logger, error) {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg)
	log.SetDefault(logger)
	return cfg, logger, nil
}

// newLogger builds the process logger. Logs go to stderr so command output
// on stdout stays parseable.
func newLogger(cfg *config.Config) *log.Logger {
	var level slog.Level
	switch cfg.LogLevel {
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
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return log.New(log.Config{
		Level:     level,
		Component: log.ComponentApp,
		Handler:   handler,
	})
}

// app bundles everything a subcommand needs once bootstrap succeeded.
type app struct {
	cfg       *config.Config
	logger    *log.Logger
	assistant *services.Assistant

	cleanups []func() error
}

// buildApp assembles the assistant: the configured ledger backend, plus the
// AMQP publisher, LLM narrator and transcriber when their endpoints are set.
func buildApp(ctx context.Context) (*app, error) {
	cfg, logger, err := bootstrap()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	result, err := backend.NewFactory(logger).Create(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if result.Cleanup != nil {
		a.cleanups = append(a.cleanups, result.Cleanup)
	}

	var opts []services.Option

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		a.cleanups = append(a.cleanups, client.Close)
		opts = append(opts, services.WithPublisher(client))
	}

	if cfg.LLMEndpoint != "" {
		narrator := narrate.NewLLM(narrate.LLMConfig{
			Endpoint:    cfg.LLMEndpoint,
			Model:       cfg.LLMModel,
			APIKey:      cfg.LLMAPIKey,
			Temperature: cfg.LLMTemperature,
			Timeout:     cfg.LLMTimeout,
		}, logger)
		opts = append(opts, services.WithNarrator(narrator))
	}

	if cfg.TranscribeEndpoint != "" {
		transcriber := transcribe.NewClient(transcribe.Config{
			Endpoint: cfg.TranscribeEndpoint,
			APIKey:   cfg.TranscribeAPIKey,
			Timeout:  cfg.TranscribeTimeout,
		}, logger)
		opts = append(opts, services.WithTranscriber(transcriber))
	}

	a.assistant = services.New(result.Store, logger, opts...)
	return a, nil
}

// close releases backend and broker resources in reverse order.
func (a *app) close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			a.logger.Warn("cleanup failed", log.FieldError, err.Error())
		}
	}
}
