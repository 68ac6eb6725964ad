package engine

import (
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMTimeout         time.Duration

	NotionAPIKey     string
	NotionDatabaseID string
	NotionTimeout    time.Duration

	TranscriptLang string
	FetchTimeout   time.Duration
	ChunkSize      int

	RedisURL  string
	CacheTTL  time.Duration
	HistoryDB string // "" or "off" = history disabled
}

// HistoryEnabled reports whether uploads should be recorded in SQLite.
func (c Config) HistoryEnabled() bool {
	return c.HistoryDB != "" && c.HistoryDB != "off"
}
