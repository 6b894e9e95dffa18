// Package config assembles the server configuration from defaults, an optional
// YAML file and the process environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendCosmosDB = "cosmosdb"
)

// LLM providers.
const (
	ProviderGoogleAI  = "googleai"
	ProviderOpenAI    = "openai"
	ProviderAzure     = "azure"
	ProviderAnthropic = "anthropic"
)

const (
	DefaultAddr                 = ":8000"
	DefaultDataDir              = "data"
	DefaultTranslationEndpoint  = "https://dhruva-api.bhashini.gov.in/services/inference/pipeline"
	DefaultTranslationServiceID = "ai4bharat/indictrans-v2-all-gpu--t4"
)

type Config struct {
	Addr        string            `yaml:"addr"`
	DataDir     string            `yaml:"data_dir"`
	LogLevel    string            `yaml:"log_level"`
	Storage     StorageConfig     `yaml:"storage"`
	LLM         LLMConfig         `yaml:"llm"`
	Translation TranslationConfig `yaml:"translation"`
}

type StorageConfig struct {
	Backend    string       `yaml:"backend"`
	SQLitePath string       `yaml:"sqlite_path"`
	Cosmos     CosmosConfig `yaml:"cosmos"`
}

type CosmosConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Database  string `yaml:"database"`
	Container string `yaml:"container"`
	Emulator  bool   `yaml:"emulator"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

type TranslationConfig struct {
	Endpoint  string `yaml:"endpoint"`
	ServiceID string `yaml:"service_id"`
	APIKey    string `yaml:"api_key"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Addr:     DefaultAddr,
		DataDir:  DefaultDataDir,
		LogLevel: "info",
		Storage: StorageConfig{
			Backend: BackendFile,
		},
		LLM: LLMConfig{
			Provider: ProviderGoogleAI,
		},
		Translation: TranslationConfig{
			Endpoint:  DefaultTranslationEndpoint,
			ServiceID: DefaultTranslationServiceID,
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty) on top of the
// defaults and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config yaml: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	setString(&c.Addr, "NYAYVED_ADDR")
	setString(&c.DataDir, "NYAYVED_DATA_DIR")
	setString(&c.LogLevel, "LOG_LEVEL")

	setString(&c.Storage.Backend, "NYAYVED_STORAGE")
	setString(&c.Storage.SQLitePath, "NYAYVED_SQLITE_PATH")
	setString(&c.Storage.Cosmos.Endpoint, "COSMOSDB_ENDPOINT_URL")
	setString(&c.Storage.Cosmos.Database, "COSMOSDB_DATABASE_NAME")
	setString(&c.Storage.Cosmos.Container, "COSMOSDB_CONTAINER_NAME")
	if v := os.Getenv("COSMOSDB_EMULATOR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Storage.Cosmos.Emulator = b
		}
	}

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	switch c.LLM.Provider {
	case ProviderGoogleAI:
		setString(&c.LLM.APIKey, "GOOGLE_API_KEY")
	case ProviderOpenAI:
		setString(&c.LLM.APIKey, "OPENAI_API_KEY")
		setString(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	case ProviderAzure:
		setString(&c.LLM.APIKey, "AZURE_OPENAI_KEY")
		setString(&c.LLM.BaseURL, "AZURE_OPENAI_ENDPOINT")
		setString(&c.LLM.Model, "AZURE_OPENAI_MODEL_NAME")
	case ProviderAnthropic:
		setString(&c.LLM.APIKey, "ANTHROPIC_API_KEY")
	}
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.Model, "LLM_MODEL")

	setString(&c.Translation.Endpoint, "BHASHINI_ENDPOINT")
	setString(&c.Translation.ServiceID, "BHASHINI_SERVICE_ID")
	setString(&c.Translation.APIKey, "BHASHINI_API_KEY")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// SQLitePath returns the database file used by the sqlite backend.
func (c *Config) SQLitePath() string {
	if c.Storage.SQLitePath != "" {
		return c.Storage.SQLitePath
	}
	return filepath.Join(c.DataDir, "nyayved.db")
}

// Level maps LogLevel onto a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks the settings every command needs: where state lives.
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	case BackendCosmosDB:
		if c.Storage.Cosmos.Endpoint == "" {
			errs = append(errs, errors.New("COSMOSDB_ENDPOINT_URL is not set"))
		}
		if c.Storage.Cosmos.Database == "" {
			errs = append(errs, errors.New("COSMOSDB_DATABASE_NAME is not set"))
		}
		if c.Storage.Cosmos.Container == "" {
			errs = append(errs, errors.New("COSMOSDB_CONTAINER_NAME is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	return errors.Join(errs...)
}

// Validate checks that the selected provider can be constructed.
func (l LLMConfig) Validate() error {
	switch l.Provider {
	case ProviderGoogleAI, ProviderOpenAI, ProviderAnthropic:
	case ProviderAzure:
		if l.BaseURL == "" {
			return errors.New("AZURE_OPENAI_ENDPOINT environment variable is not set")
		}
		if l.Model == "" {
			return errors.New("AZURE_OPENAI_MODEL_NAME environment variable is not set")
		}
	default:
		return fmt.Errorf("unknown llm provider %q", l.Provider)
	}

	if l.APIKey == "" {
		return fmt.Errorf("no API key configured for llm provider %q", l.Provider)
	}
	return nil
}
