// Package config resolves runtime settings from defaults, an optional YAML
// file, a .env file and environment variables. Command-line flags are
// bound on top by the CLI, giving the precedence flags > env > file >
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names the orchestrator's backend client.
const (
	ProviderMock   = "mock"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Snapshot backend names.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Config is the resolved runtime configuration.
type Config struct {
	Provider string `yaml:"provider"`
	DataDir  string `yaml:"data_dir"`
	Listen   string `yaml:"listen"`
	Verbose  bool   `yaml:"verbose"`

	Gemini   GeminiConfig   `yaml:"gemini"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type SnapshotConfig struct {
	Backend string `yaml:"backend"`
	// Path is the snapshot file (file backend) or database file (sqlite),
	// relative to DataDir unless absolute.
	Path        string `yaml:"path"`
	PostgresDSN string `yaml:"postgres_dsn"`

	S3Endpoint  string `yaml:"s3_endpoint"`
	S3Region    string `yaml:"s3_region"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Key       string `yaml:"s3_key"`
	S3UseSSL    bool   `yaml:"s3_use_ssl"`
}

func defaults() Config {
	return Config{
		Provider: ProviderMock,
		DataDir:  ".questgen",
		Listen:   ":8080",
		Gemini:   GeminiConfig{Model: "gemini-2.0-flash"},
		OpenAI:   OpenAIConfig{Model: "gpt-4o-mini"},
		Snapshot: SnapshotConfig{
			Backend:  BackendFile,
			Path:     "snapshot.json",
			S3Region: "us-east-1",
			S3Bucket: "questgen-snapshots",
			S3UseSSL: true,
		},
	}
}

// Load resolves the configuration. file may be empty; a named but missing
// file is an error, while the default lookup (questgen.yaml in the working
// directory) is optional.
func Load(file string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	explicit := file != ""
	if file == "" {
		file = "questgen.yaml"
	}
	if data, err := os.ReadFile(file); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", file, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", file, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes and checks the enumerated fields. Called by Load and
// again by the CLI after flag overrides.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderMock, ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q (want %s, %s or %s)",
			c.Provider, ProviderMock, ProviderGemini, ProviderOpenAI)
	}
	c.Snapshot.Backend = strings.ToLower(strings.TrimSpace(c.Snapshot.Backend))
	switch c.Snapshot.Backend {
	case BackendFile, BackendSQLite, BackendPostgres, BackendS3:
	default:
		return fmt.Errorf("unknown snapshot backend %q (want %s, %s, %s or %s)",
			c.Snapshot.Backend, BackendFile, BackendSQLite, BackendPostgres, BackendS3)
	}
	return nil
}

// SnapshotPath resolves the file/sqlite location against the data dir.
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.Snapshot.Path) {
		return c.Snapshot.Path
	}
	return filepath.Join(c.DataDir, c.Snapshot.Path)
}

func applyEnv(cfg *Config) {
	setString(&cfg.Provider, "QUESTGEN_PROVIDER")
	setString(&cfg.DataDir, "QUESTGEN_DATA_DIR")
	setString(&cfg.Listen, "QUESTGEN_LISTEN")
	setBool(&cfg.Verbose, "QUESTGEN_VERBOSE")

	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "QUESTGEN_GEMINI_MODEL")
	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "QUESTGEN_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "QUESTGEN_OPENAI_BASE_URL")

	setString(&cfg.Snapshot.Backend, "QUESTGEN_SNAPSHOT_BACKEND")
	setString(&cfg.Snapshot.Path, "QUESTGEN_SNAPSHOT_PATH")
	setString(&cfg.Snapshot.PostgresDSN, "QUESTGEN_POSTGRES_DSN")
	setString(&cfg.Snapshot.S3Endpoint, "QUESTGEN_S3_ENDPOINT")
	setString(&cfg.Snapshot.S3Region, "QUESTGEN_S3_REGION")
	setString(&cfg.Snapshot.S3AccessKey, "QUESTGEN_S3_ACCESS_KEY")
	setString(&cfg.Snapshot.S3SecretKey, "QUESTGEN_S3_SECRET_KEY")
	setString(&cfg.Snapshot.S3Bucket, "QUESTGEN_S3_BUCKET")
	setString(&cfg.Snapshot.S3Key, "QUESTGEN_S3_KEY")
	setBool(&cfg.Snapshot.S3UseSSL, "QUESTGEN_S3_USE_SSL")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		*dst = v
	}
}
