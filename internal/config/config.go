// Package config loads the worker's runtime configuration from a YAML
// file, .env files, and environment variables, in that order of
// increasing precedence (.env entries never override variables already
// set in the environment).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ingesterrors "github.com/coderisk/ingestworker/internal/errors"
)

// Config holds every setting the worker process needs to run.
type Config struct {
	Queue      QueueConfig      `yaml:"queue"`
	Neo4j      Neo4jConfig      `yaml:"neo4j"`
	StatusAPI  StatusAPIConfig  `yaml:"status_api"`
	Clone      CloneConfig      `yaml:"clone"`
	Retry      RetryConfig      `yaml:"retry"`
}

// QueueConfig points at the Redis job queue.
type QueueConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Key      string `yaml:"key"`
}

// Neo4jConfig holds the graph database connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// StatusAPIConfig points at the job-status REST collaborator.
type StatusAPIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// CloneConfig tunes the git clone step.
type CloneConfig struct {
	GitTokenEnv string `yaml:"git_token_env"`
}

// RetryConfig holds initial-connect retry settings. retry.Connect uses its
// own fixed policy (retry.MaxAttempts, retry.Backoff) and does not read them.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

// Default returns the worker's default configuration.
func Default() *Config {
	return &Config{
		Queue: QueueConfig{
			Addr: "localhost:6379",
			Key:  "ingestworker:jobs",
		},
		Neo4j: Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
		},
		StatusAPI: StatusAPIConfig{
			BaseURL: "http://localhost:8080",
		},
		Retry: RetryConfig{
			MaxAttempts: 4,
			BaseDelay:   1 * time.Second,
		},
	}
}

// Load loads configuration from an optional YAML file, then applies the
// unprefixed environment variable overrides QUEUE_ADDR, QUEUE_PASSWORD,
// QUEUE_KEY, NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD, STATUS_API_BASE_URL
// and GIT_TOKEN_ENV (highest precedence). .env files are loaded first so
// Load(os.Getenv(...)) sees them.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("queue", cfg.Queue)
	v.SetDefault("neo4j", cfg.Neo4j)
	v.SetDefault("status_api", cfg.StatusAPI)
	v.SetDefault("clone", cfg.Clone)
	v.SetDefault("retry", cfg.Retry)

	v.SetEnvPrefix("INGESTWORKER")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, ingesterrors.Wrap(err, ingesterrors.ErrorTypeOptionalAnalyzer, ingesterrors.SeverityCritical,
				"failed to read config file "+path)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if _, err := os.Stat("config.yaml"); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QUEUE_ADDR"); v != "" {
		cfg.Queue.Addr = v
	}
	if v := os.Getenv("QUEUE_PASSWORD"); v != "" {
		cfg.Queue.Password = v
	}
	if v := os.Getenv("QUEUE_KEY"); v != "" {
		cfg.Queue.Key = v
	}
	if v := os.Getenv("NEO4J_URI"); v != "" {
		cfg.Neo4j.URI = v
	}
	if v := os.Getenv("NEO4J_USERNAME"); v != "" {
		cfg.Neo4j.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Neo4j.Password = v
	}
	if v := os.Getenv("STATUS_API_BASE_URL"); v != "" {
		cfg.StatusAPI.BaseURL = v
	}
	if v := os.Getenv("GIT_TOKEN_ENV"); v != "" {
		cfg.Clone.GitTokenEnv = v
	}
}

// GitToken resolves the git token to use for a clone from the environment
// variable named by Clone.GitTokenEnv, falling back to GIT_TOKEN.
func (c *Config) GitToken() string {
	if c.Clone.GitTokenEnv != "" {
		if v := os.Getenv(c.Clone.GitTokenEnv); v != "" {
			return v
		}
	}
	return os.Getenv("GIT_TOKEN")
}

// Validate checks that required connection settings are present.
func (c *Config) Validate() error {
	if c.Queue.Addr == "" {
		return ingesterrors.New(ingesterrors.ErrorTypeOptionalAnalyzer, ingesterrors.SeverityCritical, "queue.addr is required")
	}
	if c.Neo4j.URI == "" {
		return ingesterrors.New(ingesterrors.ErrorTypeOptionalAnalyzer, ingesterrors.SeverityCritical, "neo4j.uri is required")
	}
	if c.StatusAPI.BaseURL == "" {
		return ingesterrors.New(ingesterrors.ErrorTypeOptionalAnalyzer, ingesterrors.SeverityCritical, "status_api.base_url is required")
	}
	return nil
}
