package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	indexTypes = []string{"memory", "chromem", "pgvector", "qdrant"}
	logLevels  = []string{"trace", "debug", "info", "warn", "error", "off"}
)

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	if c.LLM.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "Ollama base URL is required",
		})
	} else if u, err := url.Parse(c.LLM.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid Ollama base URL",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 32768 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 32768",
		})
	}

	if c.LLM.Temperature != nil && (*c.LLM.Temperature < 0 || *c.LLM.Temperature > 2) {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.LLM.Timeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "llm.timeout",
			Message: "timeout cannot be negative",
		})
	}

	if c.LLM.EmbedRateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "llm.embed_rate_limit",
			Message: "embed_rate_limit cannot be negative",
		})
	}

	// Validate Index config
	if !contains(indexTypes, c.Index.Type) {
		errors = append(errors, ValidationError{
			Field:   "index.type",
			Message: fmt.Sprintf("must be one of %s", strings.Join(indexTypes, ", ")),
		})
	}

	if c.Index.Dimension < 0 {
		errors = append(errors, ValidationError{
			Field:   "index.dimension",
			Message: "dimension cannot be negative",
		})
	}

	if c.Index.Type == "pgvector" {
		if c.Index.PgVector.URL == "" {
			errors = append(errors, ValidationError{
				Field:   "index.pgvector.url",
				Message: "database URL is required for the pgvector index",
			})
		} else if _, err := url.Parse(c.Index.PgVector.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "index.pgvector.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Index.Type == "qdrant" && c.Index.Qdrant.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "index.qdrant.host",
			Message: "host is required for the qdrant index",
		})
	}

	// Validate Processor config
	if c.Processor.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Processor.ChunkOverlap < 0 || c.Processor.ChunkOverlap >= c.Processor.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	if c.Retrieval.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.top_k",
			Message: "top_k must be positive",
		})
	}

	// Validate Chat config
	if c.Chat.Sentinel == "" {
		errors = append(errors, ValidationError{
			Field:   "chat.sentinel",
			Message: "sentinel is required",
		})
	}

	if c.Chat.HistoryMaxTurns < 2 {
		errors = append(errors, ValidationError{
			Field:   "chat.history_max_turns",
			Message: "history_max_turns must be at least 2",
		})
	}

	if c.Chat.HistoryMaxTokens < 0 {
		errors = append(errors, ValidationError{
			Field:   "chat.history_max_tokens",
			Message: "history_max_tokens cannot be negative",
		})
	}

	if !contains(logLevels, strings.ToLower(c.Log.Level)) {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("must be one of %s", strings.Join(logLevels, ", ")),
		})
	}

	return errors
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
