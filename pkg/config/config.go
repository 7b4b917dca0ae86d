package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		BaseURL        string        `yaml:"base_url"`
		Model          string        `yaml:"model"`
		EmbeddingModel string        `yaml:"embedding_model"`
		MaxTokens      int           `yaml:"max_tokens"`
		Temperature    *float64      `yaml:"temperature"`
		Timeout        time.Duration `yaml:"timeout"`
		EmbedRateLimit float64       `yaml:"embed_rate_limit"`
	} `yaml:"llm"`

	Index struct {
		Type       string `yaml:"type"`
		Dimension  int    `yaml:"dimension"` // 0 sizes the index from the first embedding
		Collection string `yaml:"collection"`
		PgVector   struct {
			URL       string `yaml:"url"`
			TableName string `yaml:"table_name"`
		} `yaml:"pgvector"`
		Chromem struct {
			PersistPath string `yaml:"persist_path"`
			Compress    bool   `yaml:"compress"`
		} `yaml:"chromem"`
		Qdrant struct {
			Host   string `yaml:"host"`
			Port   int    `yaml:"port"`
			APIKey string `yaml:"api_key"`
			UseTLS bool   `yaml:"use_tls"`
		} `yaml:"qdrant"`
	} `yaml:"index"`

	Processor struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
	} `yaml:"processor"`

	Retrieval struct {
		TopK int `yaml:"top_k"`
	} `yaml:"retrieval"`

	Chat struct {
		SystemPrompt     string `yaml:"system_prompt"`
		Sentinel         string `yaml:"sentinel"`
		HistoryMaxTurns  int    `yaml:"history_max_turns"`
		HistoryMaxTokens int    `yaml:"history_max_tokens"`
	} `yaml:"chat"`

	Ingest struct {
		Dedup *bool `yaml:"dedup"`
	} `yaml:"ingest"`

	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`

	UI struct {
		Progress *bool `yaml:"progress"`
		Color    *bool `yaml:"color"`
	} `yaml:"ui"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"docchat.yaml",
			"config.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/docchat/config.yaml"),
			"/etc/docchat/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Model == "" {
		config.LLM.Model = "mistral"
	}
	if config.LLM.EmbeddingModel == "" {
		config.LLM.EmbeddingModel = "nomic-embed-text"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.Temperature == nil {
		config.LLM.Temperature = float64Ptr(0.7)
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}

	if config.Index.Type == "" {
		config.Index.Type = "memory"
	}
	if config.Index.Collection == "" {
		config.Index.Collection = "docchat"
	}
	if config.Index.PgVector.TableName == "" {
		config.Index.PgVector.TableName = "documents"
	}
	if config.Index.Qdrant.Port == 0 {
		config.Index.Qdrant.Port = 6334
	}

	if config.Processor.ChunkSize == 0 {
		config.Processor.ChunkSize = 2000
	}

	if config.Retrieval.TopK == 0 {
		config.Retrieval.TopK = 2
	}

	if config.Chat.Sentinel == "" {
		config.Chat.Sentinel = "$$$"
	}
	if config.Chat.HistoryMaxTurns == 0 {
		config.Chat.HistoryMaxTurns = 40
	}

	if config.Ingest.Dedup == nil {
		config.Ingest.Dedup = boolPtr(true)
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}

	if config.UI.Progress == nil {
		config.UI.Progress = boolPtr(true)
	}
	if config.UI.Color == nil {
		config.UI.Color = boolPtr(true)
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Index.PgVector.URL = dbURL
	}
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		config.Index.Qdrant.Host = host
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		config.Index.Qdrant.APIKey = key
	}
	if level := os.Getenv("DOCCHAT_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func float64Ptr(f float64) *float64 {
	return &f
}

// Enabled reports the value of an optional flag, true when unset.
func Enabled(b *bool) bool {
	return b == nil || *b
}
