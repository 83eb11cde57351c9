// Command ariad runs the Aria chat daemon: a WebSocket chat server backed by
// a tiered SQLite memory store and a pluggable generation backend.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/emberworks/aria/config"
	"github.com/emberworks/aria/emotion"
	"github.com/emberworks/aria/engine"
	"github.com/emberworks/aria/extract"
	"github.com/emberworks/aria/llm"
	"github.com/emberworks/aria/llm/anthropic"
	"github.com/emberworks/aria/llm/ollama"
	"github.com/emberworks/aria/llm/openai"
	arialogger "github.com/emberworks/aria/logger"
	"github.com/emberworks/aria/memory"
	"github.com/emberworks/aria/migrations"
	"github.com/emberworks/aria/runtime"
	"github.com/emberworks/aria/server"

	_ "github.com/mattn/go-sqlite3"
)

const probeMaxElapsed = 2 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", config.DefaultPath(), "Path to YAML config file")
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
		dbPath     = flag.String("db", "", "Path to SQLite database file (overrides config)")
		logFile    = flag.String("logfile", "", "Path to log file. If not set, logs to stdout/stderr")
		pretty     = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
		skipProbe  = flag.Bool("skip-probe", false, "Skip the generation backend reachability probe")
	)
	flag.Parse()

	if *logFile != "" && *pretty {
		return fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}

	logger, err := arialogger.InitWithOptions(*logFile, *pretty)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("db", cfg.DBPath).
		Str("provider", cfg.Generation.Provider).
		Msg("ariad starting")

	// ---------------------------
	// 1. Open SQLite + memory store
	// ---------------------------

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // No remedy for db close errors

	if err := migrations.Run(db, cfg.MigrationsPath, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store := memory.NewStore(db, memory.Config{
		RecentCap:       cfg.Memory.RecentCap,
		TrimProbability: cfg.Memory.TrimProbability,
		RetentionDays:   cfg.Memory.RetentionDays,
	}, nil, logger)

	// ---------------------------
	// 2. Generation backend
	// ---------------------------

	generator, model, err := buildGenerator(cfg)
	if err != nil {
		return fmt.Errorf("failed to create generation backend: %w", err)
	}

	if !*skipProbe {
		if err := probeBackend(generator, logger); err != nil {
			return fmt.Errorf("generation backend unreachable: %w", err)
		}
	}

	// ---------------------------
	// 3. Engine
	// ---------------------------

	eng := engine.New(engine.Params{
		Store:           store,
		Buffer:          memory.NewBuffer(store, cfg.Memory.SummaryThreshold, logger),
		Assembler:       memory.NewAssembler(store, cfg.Memory.ContextBudget),
		Extractor:       extract.NewExtractor(store, logger),
		Emotions:        emotion.NewEngine(nil),
		Generator:       generator,
		Persona:         cfg.Persona,
		Generation:      cfg.Generation,
		MaxSystemPrompt: cfg.Memory.MaxSystemPrompt,
		Logger:          logger,
	})

	// ---------------------------
	// 4. Background retention sweeps
	// ---------------------------

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()

	scheduler, err := runtime.NewScheduler(store, "", logger)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	go scheduler.Start(schedulerCtx)

	// ---------------------------
	// 5. HTTP server
	// ---------------------------

	srv := server.New(server.Config{
		Addr:   cfg.Server.Addr,
		Model:  model,
		Logger: logger,
	}, eng)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancelScheduler()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Server shutdown failed")
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info().Msg("ariad shutdown complete")
	return nil
}

// buildGenerator resolves the configured provider and constructs its client.
// It returns the client and the model name for the health endpoint.
func buildGenerator(cfg *config.Config) (llm.Generator, string, error) {
	registry := llm.NewRegistry(&llm.ProviderConfig{
		AnthropicAPIKey: cfg.Anthropic.APIKey,
		AnthropicModel:  cfg.Anthropic.Model,
		OllamaHost:      cfg.Ollama.Host,
		OllamaModel:     cfg.Ollama.Model,
		OpenAIAPIKey:    cfg.OpenAI.APIKey,
		OpenAIBaseURL:   cfg.OpenAI.BaseURL,
		OpenAIModel:     cfg.OpenAI.Model,
		OpenAIOrg:       cfg.OpenAI.Organization,
	})

	key, err := registry.Resolve(cfg.Generation.Provider)
	if err != nil {
		return nil, "", err
	}

	switch key.Provider {
	case llm.ProviderOllama:
		client, err := ollama.NewClient(key.Host, key.Model)
		return client, key.Model, err
	case llm.ProviderOpenAI:
		client, err := openai.NewClient(key.APIKey, key.BaseURL, key.Model, key.Organization)
		return client, key.Model, err
	case llm.ProviderAnthropic:
		client, err := anthropic.NewClient(key.APIKey, key.Model)
		return client, key.Model, err
	default:
		return nil, "", fmt.Errorf("unknown provider: %s", key.Provider)
	}
}

// probeBackend pings the generation backend with exponential backoff so a
// slow-starting local model server doesn't fail the daemon.
func probeBackend(gen llm.Generator, logger zerolog.Logger) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.MaxInterval = 15 * time.Second
	eb.MaxElapsedTime = probeMaxElapsed

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := gen.Ping(ctx); err != nil {
			logger.Warn().Int("attempt", attempt).Err(err).Msg("Generation backend not ready, retrying")
			return err
		}
		logger.Info().Msg("Generation backend reachable")
		return nil
	}, eb)
}
