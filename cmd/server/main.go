/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave adjudication server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env, server config (YAML + env), flags
  2. Build the zap logger
  3. Initialize SQLite store (optionally seed the demo organisation)
  4. Load adjudication rules into a ConfigStore, start the cron reloader
  5. Wire optional integrations: Anthropic rewriter, Kafka, Slack
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Server config file (default: server.yaml)
  -rules   Adjudication rules file (overrides rules_path)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  PORT, DB_PATH, LOG_LEVEL, APP_ENV, RULES_PATH, RELOAD_SCHEDULE,
  ANTHROPIC_API_KEY, LLM_MODEL, KAFKA_BROKERS, KAFKA_TOPIC,
  SLACK_BOT_TOKEN, SLACK_CHANNEL, ALLOWED_ORIGINS, SEED_DEMO

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the config reloader
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close Kafka writer and database connection

SEE ALSO:
  - api/server.go: Router configuration
  - api/reloader.go: Scheduled rules reload
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/llm"
	"github.com/warp/leave-engine/notify"
	"github.com/warp/leave-engine/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "server.yaml", "Server config file")
	rulesPath := flag.String("rules", "", "Adjudication rules file")
	port := flag.Int("port", 0, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	flag.Parse()

	cfg, err := LoadServerConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *rulesPath != "" {
		cfg.RulesPath = *rulesPath
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg ServerConfig, logger *zap.Logger) error {
	// Initialize store
	repo, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer repo.Close()

	if cfg.SeedDemo {
		if err := api.SeedDemo(context.Background(), repo); err != nil {
			logger.Warn("failed to seed demo data", zap.Error(err))
		}
	}

	// Adjudication rules
	rules := leave.DefaultConfig()
	if cfg.RulesPath != "" {
		if rules, err = factory.LoadFile(cfg.RulesPath); err != nil {
			return err
		}
	}
	configs := leave.NewConfigStore(rules)

	evaluator := leave.NewEvaluator(configs, logger.Named("leave"))
	handler := api.NewHandler(repo, evaluator, logger.Named("api"))

	if cfg.LLMConfigured() {
		evaluator.Extractor.Rewriter = llm.New(cfg.AnthropicAPIKey, cfg.LLMModel, logger.Named("llm"))
		handler.LLMEnabled = true
		logger.Info("reason rewriting enabled", zap.String("model", cfg.LLMModel))
	}

	var notifiers notify.Multi
	if cfg.KafkaConfigured() {
		writer := notify.NewKafkaWriter(cfg.KafkaBrokers...)
		defer writer.Close()
		notifiers = append(notifiers, notify.NewKafka(writer, cfg.KafkaTopic))
		logger.Info("kafka notifications enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}
	if cfg.SlackConfigured() {
		notifiers = append(notifiers, notify.NewSlack(slack.New(cfg.SlackBotToken), cfg.SlackChannel))
		logger.Info("slack escalations enabled", zap.String("channel", cfg.SlackChannel))
	}
	if len(notifiers) > 0 {
		handler.Notifier = notifiers
	}

	if cfg.RulesPath != "" {
		reloader := api.NewConfigReloader(cfg.RulesPath, configs, logger.Named("reloader"))
		reloader.Schedule = cfg.ReloadSchedule
		if _, err := reloader.Reload(); err != nil {
			logger.Warn("initial rules reload failed", zap.Error(err))
		}
		if err := reloader.Start(); err != nil {
			return err
		}
		defer reloader.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler, cfg.AllowedOrigins...),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port), zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newLogger builds a production (JSON) logger when APP_ENV is production,
// a development (console) logger otherwise.
func newLogger(cfg ServerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Env == "production" {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
