package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "NYAYVED_ADDR", "NYAYVED_DATA_DIR", "LOG_LEVEL", "NYAYVED_STORAGE", "NYAYVED_SQLITE_PATH",
		"COSMOSDB_ENDPOINT_URL", "COSMOSDB_DATABASE_NAME", "COSMOSDB_CONTAINER_NAME", "COSMOSDB_EMULATOR",
		"LLM_PROVIDER", "LLM_API_KEY", "LLM_MODEL", "GOOGLE_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"AZURE_OPENAI_KEY", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_MODEL_NAME", "ANTHROPIC_API_KEY",
		"BHASHINI_ENDPOINT", "BHASHINI_SERVICE_ID", "BHASHINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	t.Run("Defaults without file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, DefaultAddr, cfg.Addr)
		assert.Equal(t, DefaultDataDir, cfg.DataDir)
		assert.Equal(t, BackendFile, cfg.Storage.Backend)
		assert.Equal(t, ProviderGoogleAI, cfg.LLM.Provider)
		assert.Equal(t, DefaultTranslationEndpoint, cfg.Translation.Endpoint)
		assert.Equal(t, DefaultTranslationServiceID, cfg.Translation.ServiceID)
		assert.Equal(t, filepath.Join(DefaultDataDir, "nyayved.db"), cfg.SQLitePath())
	})

	t.Run("YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nyayved.yaml")
		content := `
addr: ":9000"
data_dir: /var/lib/nyayved
storage:
  backend: sqlite
  sqlite_path: /tmp/chats.db
llm:
  provider: openai
  model: gpt-4o-mini
  api_key: from-file
translation:
  api_key: bhashini-from-file
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":9000", cfg.Addr)
		assert.Equal(t, "/var/lib/nyayved", cfg.DataDir)
		assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
		assert.Equal(t, "/tmp/chats.db", cfg.SQLitePath())
		assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
		assert.Equal(t, "from-file", cfg.LLM.APIKey)
		assert.Equal(t, "bhashini-from-file", cfg.Translation.APIKey)
		// untouched keys keep their defaults
		assert.Equal(t, DefaultTranslationServiceID, cfg.Translation.ServiceID)
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nyayved.yaml")
		require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: googleai\n  api_key: from-file\n"), 0o600))

		t.Setenv("PORT", "8181")
		t.Setenv("GOOGLE_API_KEY", "from-env")
		t.Setenv("BHASHINI_API_KEY", "secret")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":8181", cfg.Addr)
		assert.Equal(t, "from-env", cfg.LLM.APIKey)
		assert.Equal(t, "secret", cfg.Translation.APIKey)
		assert.Equal(t, slog.LevelDebug, cfg.Level())
	})

	t.Run("Azure settings use the azure variables", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "Azure")
		t.Setenv("AZURE_OPENAI_KEY", "az-key")
		t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
		t.Setenv("AZURE_OPENAI_MODEL_NAME", "gpt-4o")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, ProviderAzure, cfg.LLM.Provider)
		assert.Equal(t, "az-key", cfg.LLM.APIKey)
		assert.Equal(t, "https://example.openai.azure.com", cfg.LLM.BaseURL)
		assert.Equal(t, "gpt-4o", cfg.LLM.Model)
		assert.NoError(t, cfg.LLM.Validate())
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestValidate(t *testing.T) {

	t.Run("Defaults are valid storage", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("Unknown backend", func(t *testing.T) {
		cfg := Default()
		cfg.Storage.Backend = "redis"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown storage backend")
	})

	t.Run("Cosmos requires its settings", func(t *testing.T) {
		cfg := Default()
		cfg.Storage.Backend = BackendCosmosDB
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "COSMOSDB_ENDPOINT_URL")
		assert.Contains(t, err.Error(), "COSMOSDB_DATABASE_NAME")
		assert.Contains(t, err.Error(), "COSMOSDB_CONTAINER_NAME")
	})

	t.Run("LLM key is required", func(t *testing.T) {
		err := LLMConfig{Provider: ProviderGoogleAI}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no API key")

		assert.NoError(t, LLMConfig{Provider: ProviderGoogleAI, APIKey: "k"}.Validate())
	})

	t.Run("Unknown provider", func(t *testing.T) {
		err := LLMConfig{Provider: "bard", APIKey: "k"}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown llm provider")
	})
}
