package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for verifidia-engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables always override YAML values. Secrets
// (passwords, API keys) must only come from environment variables.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	AI         AIConfig         `yaml:"ai"`
	Generation GenerationConfig `yaml:"generation"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"verifidia"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"verifidia_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// RedisConfig holds optional Redis configuration for the recent-articles
// cache. An empty host disables Redis.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// ModelConfig describes one capability endpoint. Empty fields fall back to
// the shared defaults in AIConfig.
type ModelConfig struct {
	Provider string `yaml:"provider" env-default:""`
	Endpoint string `yaml:"endpoint" env-default:""`
	Model    string `yaml:"model" env-default:""`
}

// AIConfig holds the LLM endpoints for the capability providers. Each agent
// role can override the shared defaults to run on a different model.
type AIConfig struct {
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML

	Researcher ModelConfig `yaml:"researcher"`
	Writer     ModelConfig `yaml:"writer"`
	Citations  ModelConfig `yaml:"citations"`
	Reviewer   ModelConfig `yaml:"reviewer"`
}

// GenerationConfig holds timing knobs for the generation coordinator.
type GenerationConfig struct {
	// WaitTimeoutSeconds bounds how long a request waits for a peer that
	// holds the generation lock.
	WaitTimeoutSeconds int `yaml:"wait_timeout_seconds" env:"GENERATION_WAIT_TIMEOUT_SECONDS" env-default:"120"`
	// PollIntervalSeconds is the cadence of cache re-checks while waiting.
	PollIntervalSeconds int `yaml:"poll_interval_seconds" env:"GENERATION_POLL_INTERVAL_SECONDS" env-default:"2"`
	// FeedbackBatchSize caps how many pending feedback rows one review run
	// processes.
	FeedbackBatchSize int `yaml:"feedback_batch_size" env:"FEEDBACK_BATCH_SIZE" env-default:"50"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	return LoadFrom("config.yaml", version)
}

// LoadFrom reads configuration from the given YAML path. Split out from Load
// so tests can point at a fixture file.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Resolve merges a role-specific model config with the shared defaults.
func (c *AIConfig) Resolve(role ModelConfig) (provider, endpoint, model string) {
	provider = c.Provider
	if role.Provider != "" {
		provider = role.Provider
	}
	endpoint = c.Endpoint
	if role.Endpoint != "" {
		endpoint = role.Endpoint
	}
	model = c.Model
	if role.Model != "" {
		model = role.Model
	}
	return provider, endpoint, model
}
