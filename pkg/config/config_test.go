package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  base_url: "http://localhost:11434"
  model: "llama3"
  embedding_model: "mxbai-embed-large"
  max_tokens: 1000
  temperature: 0.5
  timeout: 45s
  embed_rate_limit: 4

index:
  type: pgvector
  dimension: 1024
  pgvector:
    url: "postgres://localhost:5432/test"
    table_name: "test_docs"

processor:
  chunk_size: 500
  chunk_overlap: 100

retrieval:
  top_k: 4

chat:
  system_prompt: "Answer from the documents."
  sentinel: "/bye"
  history_max_turns: 10
  history_max_tokens: 3000

ingest:
  dedup: false

log:
  level: debug

ui:
  progress: false
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	t.Setenv("DATABASE_URL", "")
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("DOCCHAT_LOG_LEVEL", "")

	// Test loading config
	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	// Verify loaded values
	assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	assert.Equal(t, "llama3", config.LLM.Model)
	assert.Equal(t, "mxbai-embed-large", config.LLM.EmbeddingModel)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, *config.LLM.Temperature)
	assert.Equal(t, 45*time.Second, config.LLM.Timeout)
	assert.Equal(t, 4.0, config.LLM.EmbedRateLimit)
	assert.Equal(t, "pgvector", config.Index.Type)
	assert.Equal(t, 1024, config.Index.Dimension)
	assert.Equal(t, "postgres://localhost:5432/test", config.Index.PgVector.URL)
	assert.Equal(t, "test_docs", config.Index.PgVector.TableName)
	assert.Equal(t, 500, config.Processor.ChunkSize)
	assert.Equal(t, 100, config.Processor.ChunkOverlap)
	assert.Equal(t, 4, config.Retrieval.TopK)
	assert.Equal(t, "/bye", config.Chat.Sentinel)
	assert.Equal(t, 10, config.Chat.HistoryMaxTurns)
	assert.Equal(t, 3000, config.Chat.HistoryMaxTokens)
	assert.False(t, Enabled(config.Ingest.Dedup))
	assert.False(t, Enabled(config.UI.Progress))
	assert.True(t, Enabled(config.UI.Color))
	assert.Equal(t, "debug", config.Log.Level)
	assert.Empty(t, config.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("DOCCHAT_LOG_LEVEL", "")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	assert.Equal(t, "mistral", config.LLM.Model)
	assert.Equal(t, "nomic-embed-text", config.LLM.EmbeddingModel)
	assert.Equal(t, "memory", config.Index.Type)
	assert.Equal(t, 0, config.Index.Dimension)
	assert.Equal(t, 0.7, *config.LLM.Temperature)
	assert.Equal(t, 2000, config.Processor.ChunkSize)
	assert.Equal(t, 0, config.Processor.ChunkOverlap)
	assert.Equal(t, 2, config.Retrieval.TopK)
	assert.Equal(t, "$$$", config.Chat.Sentinel)
	assert.Equal(t, 40, config.Chat.HistoryMaxTurns)
	assert.True(t, Enabled(config.Ingest.Dedup))
	assert.Equal(t, "info", config.Log.Level)
	assert.Empty(t, config.Validate())
}

func TestLoadConfig_ZeroValuesKept(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configData := `
llm:
  embedding_model: mxbai-embed-large
  temperature: 0
index:
  type: chromem
  dimension: 0
`
	require.NoError(t, os.WriteFile(configPath, []byte(configData), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	// the index is sized by the first embedding
	assert.Equal(t, 0, config.Index.Dimension)
	require.NotNil(t, config.LLM.Temperature)
	assert.Equal(t, 0.0, *config.LLM.Temperature)
	assert.Empty(t, config.Validate())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("llm: [unclosed"), 0644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "error parsing config file")
}

func validConfig() Config {
	var c Config
	applyDefaults(&c)
	return c
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(c *Config)
		errorMessages []string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name: "invalid llm",
			mutate: func(c *Config) {
				c.LLM.BaseURL = "invalid-url"
				c.LLM.MaxTokens = 50000
				c.LLM.Temperature = float64Ptr(3.0)
			},
			errorMessages: []string{
				"llm.base_url: invalid Ollama base URL",
				"llm.max_tokens: max_tokens must be between 1 and 32768",
				"llm.temperature: temperature must be between 0 and 2",
			},
		},
		{
			name: "negative dimension",
			mutate: func(c *Config) {
				c.Index.Dimension = -1
			},
			errorMessages: []string{"index.dimension: dimension cannot be negative"},
		},
		{
			name: "pgvector without url",
			mutate: func(c *Config) {
				c.Index.Type = "pgvector"
			},
			errorMessages: []string{"index.pgvector.url: database URL is required"},
		},
		{
			name: "qdrant without host",
			mutate: func(c *Config) {
				c.Index.Type = "qdrant"
			},
			errorMessages: []string{"index.qdrant.host: host is required"},
		},
		{
			name: "unknown index and log level",
			mutate: func(c *Config) {
				c.Index.Type = "faiss"
				c.Log.Level = "chatty"
			},
			errorMessages: []string{"index.type: must be one of", "log.level: must be one of"},
		},
		{
			name: "chunking and chat",
			mutate: func(c *Config) {
				c.Processor.ChunkOverlap = c.Processor.ChunkSize
				c.Retrieval.TopK = -1
				c.Chat.HistoryMaxTurns = 1
			},
			errorMessages: []string{
				"processor.chunk_overlap: chunk_overlap must be non-negative and less than chunk_size",
				"retrieval.top_k: top_k must be positive",
				"chat.history_max_turns: history_max_turns must be at least 2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)

			errors := config.Validate()
			assert.Len(t, errors, len(tt.errorMessages))
			for i, msg := range tt.errorMessages {
				if i < len(errors) {
					assert.Contains(t, errors[i].Error(), msg)
				}
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://env-ollama:11434")
	t.Setenv("DATABASE_URL", "postgres://env-db:5432/test")
	t.Setenv("QDRANT_HOST", "qdrant.local")
	t.Setenv("QDRANT_API_KEY", "secret")
	t.Setenv("DOCCHAT_LOG_LEVEL", "trace")

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "http://env-ollama:11434", config.LLM.BaseURL)
	assert.Equal(t, "postgres://env-db:5432/test", config.Index.PgVector.URL)
	assert.Equal(t, "qdrant.local", config.Index.Qdrant.Host)
	assert.Equal(t, "secret", config.Index.Qdrant.APIKey)
	assert.Equal(t, "trace", config.Log.Level)
}
