package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "leave.db", cfg.DBPath)
	assert.Equal(t, "@every 30s", cfg.ReloadSchedule)
	assert.False(t, cfg.LLMConfigured())
	assert.False(t, cfg.KafkaConfigured())
}

func TestLoadServerConfig_EnvOverridesYAML(t *testing.T) {
	// GIVEN: A file and env vars for the same keys
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
db_path: ./data/leave.db
slack_bot_token: xoxb-file
slack_channel: C-HR
kafka_brokers: [kafka-1:9092]
`), 0o644))
	t.Setenv("PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "kafka-a:9092, kafka-b:9092")

	// WHEN: Loading
	cfg, err := LoadServerConfig(path)

	// THEN: Env wins, file fills the rest
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "./data/leave.db", cfg.DBPath)
	assert.Equal(t, []string{"kafka-a:9092", "kafka-b:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.SlackConfigured())
}

func TestLoadServerConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [not a number"), 0o644))

	_, err := LoadServerConfig(path)

	assert.Error(t, err)
}

func TestNewLogger_Levels(t *testing.T) {
	logger, err := newLogger(ServerConfig{Env: "production", LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = newLogger(ServerConfig{Env: "development", LogLevel: "loud"})
	assert.Error(t, err)
}
