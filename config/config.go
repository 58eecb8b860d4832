// Package config loads relay configuration from defaults, an optional YAML
// file and AGENTRELAY_* environment variables, in that order of precedence.
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("agentrelay.yaml").
//	    Load()
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentrelay/logging"
)

// Config is the complete relay configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" env:"SERVER"`
	Session    SessionConfig    `yaml:"session" env:"SESSION"`
	Model      ModelConfig      `yaml:"model" env:"MODEL"`
	Artifacts  ArtifactConfig   `yaml:"artifacts" env:"ARTIFACTS"`
	Perception PerceptionConfig `yaml:"perception" env:"PERCEPTION"`
	Log        LogConfig        `yaml:"log" env:"LOG"`
	Metrics    MetricsConfig    `yaml:"metrics" env:"METRICS"`
}

// ServerConfig configures the websocket transport.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	Path            string        `yaml:"path" env:"PATH"`
	ReadLimit       int64         `yaml:"read_limit" env:"READ_LIMIT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	OriginPatterns  []string      `yaml:"origin_patterns" env:"ORIGIN_PATTERNS"`
}

// SessionConfig configures new sessions.
type SessionConfig struct {
	EntryAgent      string        `yaml:"entry_agent" env:"ENTRY_AGENT"`
	MaxModelCalls   int           `yaml:"max_model_calls" env:"MAX_MODEL_CALLS"`
	MergeWindow     int           `yaml:"merge_window" env:"MERGE_WINDOW"`
	MaxHistoryItems int           `yaml:"max_history_items" env:"MAX_HISTORY_ITEMS"`
	TurnTimeout     time.Duration `yaml:"turn_timeout" env:"TURN_TIMEOUT"`
}

// ModelConfig selects the reply service.
type ModelConfig struct {
	// Provider is one of gemini, openai, anthropic or mock.
	Provider string `yaml:"provider" env:"PROVIDER"`
	// Name defaults to the adapter default of the provider.
	Name        string  `yaml:"name" env:"NAME"`
	APIKey      string  `yaml:"api_key" env:"API_KEY"`
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
	MaxTokens   int     `yaml:"max_tokens" env:"MAX_TOKENS"`
}

// ArtifactConfig selects where attached images are kept.
type ArtifactConfig struct {
	// Backend is memory or redis.
	Backend       string        `yaml:"backend" env:"BACKEND"`
	MaxSize       int           `yaml:"max_size" env:"MAX_SIZE"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
	TTL           time.Duration `yaml:"ttl" env:"TTL"`
}

// PerceptionConfig configures the object detection service. An empty
// endpoint disables the detect_objects tool.
type PerceptionConfig struct {
	Endpoint  string        `yaml:"endpoint" env:"ENDPOINT"`
	Timeout   time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RateLimit float64       `yaml:"rate_limit" env:"RATE_LIMIT"`
	Burst     int           `yaml:"burst" env:"BURST"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	// Format is json or text for slog, or zap.
	Format    string `yaml:"format" env:"FORMAT"`
	AddSource bool   `yaml:"add_source" env:"ADD_SOURCE"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
	Path      string `yaml:"path" env:"PATH"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Path:            "/ws",
			ReadLimit:       8 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			EntryAgent:      "Greeting",
			MaxModelCalls:   8,
			MergeWindow:     6,
			MaxHistoryItems: 20,
			TurnTimeout:     60 * time.Second,
		},
		Model: ModelConfig{
			Provider:    "gemini",
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		Artifacts: ArtifactConfig{
			Backend: "memory",
			MaxSize: 8 << 20,
			TTL:     time.Hour,
		},
		Perception: PerceptionConfig{
			Timeout:   10 * time.Second,
			RateLimit: 2,
			Burst:     1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "agentrelay",
			Path:      "/metrics",
		},
	}
}

var (
	validProviders = []string{"gemini", "openai", "anthropic", "mock"}
	validBackends  = []string{"memory", "redis"}
	validFormats   = []string{"json", "text", "zap"}
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		errs = append(errs, "server.path must start with /")
	}
	if c.Session.EntryAgent == "" {
		errs = append(errs, "session.entry_agent is required")
	}
	if c.Session.MergeWindow <= 0 {
		errs = append(errs, "session.merge_window must be positive")
	}
	if c.Session.MaxModelCalls < 0 {
		errs = append(errs, "session.max_model_calls must not be negative")
	}
	if !oneOf(c.Model.Provider, validProviders) {
		errs = append(errs, fmt.Sprintf("model.provider must be one of %s", strings.Join(validProviders, ", ")))
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		errs = append(errs, "model.temperature must be between 0 and 2")
	}
	if !oneOf(c.Artifacts.Backend, validBackends) {
		errs = append(errs, fmt.Sprintf("artifacts.backend must be one of %s", strings.Join(validBackends, ", ")))
	}
	if c.Artifacts.Backend == "redis" && c.Artifacts.RedisAddr == "" {
		errs = append(errs, "artifacts.redis_addr is required for the redis backend")
	}
	if c.Perception.RateLimit < 0 {
		errs = append(errs, "perception.rate_limit must not be negative")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err.Error())
	}
	if !oneOf(c.Log.Format, validFormats) {
		errs = append(errs, fmt.Sprintf("log.format must be one of %s", strings.Join(validFormats, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
