package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds process settings. Adjudication rules live in a separate
// file (RulesPath) so they can be reloaded without a restart.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`
	Env      string `yaml:"env"`

	RulesPath      string   `yaml:"rules_path"`
	ReloadSchedule string   `yaml:"reload_schedule"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SeedDemo       bool     `yaml:"seed_demo"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	LLMModel        string `yaml:"llm_model"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	SlackBotToken string `yaml:"slack_bot_token"`
	SlackChannel  string `yaml:"slack_channel"`
}

// LoadServerConfig reads path (if it exists), applies env overrides and fills
// defaults. A missing file is not an error.
func LoadServerConfig(path string) (ServerConfig, error) {
	var cfg ServerConfig

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return ServerConfig{}, fmt.Errorf("error parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return ServerConfig{}, fmt.Errorf("error reading %s: %w", path, err)
	}

	// Env vars override YAML values
	envOverrideInt(&cfg.Port, "PORT")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.Env, "APP_ENV")
	envOverride(&cfg.RulesPath, "RULES_PATH")
	envOverride(&cfg.ReloadSchedule, "RELOAD_SCHEDULE")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.KafkaTopic, "KAFKA_TOPIC")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannel, "SLACK_CHANNEL")
	envOverrideList(&cfg.KafkaBrokers, "KAFKA_BROKERS")
	envOverrideList(&cfg.AllowedOrigins, "ALLOWED_ORIGINS")
	if v := os.Getenv("SEED_DEMO"); v != "" {
		cfg.SeedDemo, _ = strconv.ParseBool(v)
	}

	// Defaults
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "leave.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ReloadSchedule == "" {
		cfg.ReloadSchedule = "@every 30s"
	}
	return cfg, nil
}

func (c ServerConfig) LLMConfigured() bool   { return c.AnthropicAPIKey != "" }
func (c ServerConfig) KafkaConfigured() bool { return len(c.KafkaBrokers) > 0 }
func (c ServerConfig) SlackConfigured() bool { return c.SlackBotToken != "" && c.SlackChannel != "" }

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envOverrideList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	*dst = nil
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*dst = append(*dst, item)
		}
	}
}
