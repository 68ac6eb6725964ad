// Command go_yt2notion turns a YouTube transcript into Korean Notion pages.
//
// Reads a YouTube URL (first argument, or one line from stdin), fetches the
// English transcript, has an LLM translate and format it, and uploads the
// result to a Notion database as "Translation of <id> - Part N" pages.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"

	"github.com/anatolykoptev/go_yt2notion/internal/engine"
	"github.com/anatolykoptev/go_yt2notion/internal/engine/notion"
	"github.com/anatolykoptev/go_yt2notion/internal/engine/sources"
	"github.com/anatolykoptev/go_yt2notion/internal/runner"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	initLogger(env.Str("LOG_LEVEL", "info"))

	cfg := loadConfig()
	slog.Debug("starting go_yt2notion", slog.String("version", version), slog.String("model", cfg.LLMModel))

	rawURL, err := readURL(os.Args[1:], os.Stdin, os.Stdout)
	if err != nil {
		slog.Error("read url failed", slog.Any("error", err))
		return
	}

	ctx := context.Background()
	r, cleanup := buildRunner(ctx, cfg)
	defer cleanup()

	report, err := r.Run(ctx, rawURL)
	if err != nil {
		slog.Error("run failed", slog.Any("error", err))
		return
	}
	slog.Info("done",
		slog.String("id", report.VideoID),
		slog.Int("parts", len(report.Parts)),
		slog.Int("failed", report.Failed()),
	)
}

func initLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

func loadConfig() engine.Config {
	return engine.Config{
		LLMAPIKey:          env.Str("OPENAI_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://api.openai.com/v1"),
		LLMModel:           env.Str("LLM_MODEL", "gpt-3.5-turbo"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.5),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 2048),
		LLMTimeout:         env.Duration("LLM_TIMEOUT", 5*time.Minute),
		NotionAPIKey:       env.Str("NOTION_API_KEY", ""),
		NotionDatabaseID:   env.Str("NOTION_DATABASE_ID", ""),
		NotionTimeout:      env.Duration("NOTION_TIMEOUT", 60*time.Second),
		TranscriptLang:     env.Str("TRANSCRIPT_LANG", "en"),
		FetchTimeout:       env.Duration("FETCH_TIMEOUT", 15*time.Second),
		ChunkSize:          env.Int("CHUNK_SIZE", engine.DefaultChunkSize),
		RedisURL:           env.Str("REDIS_URL", ""),
		CacheTTL:           env.Duration("CACHE_TTL", engine.DefaultCacheTTL),
		HistoryDB:          env.Str("HISTORY_DB", engine.DefaultHistoryPath()),
	}
}

// buildRunner creates every client once and hands them to the runner.
func buildRunner(ctx context.Context, cfg engine.Config) (*runner.Runner, func()) {
	m := &engine.Metrics{}

	httpClient := &http.Client{
		Timeout: cfg.FetchTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     60 * time.Second,
		},
	}
	llmClient := engine.NewLLMClient(cfg)
	notionClient := notion.NewClient(cfg)

	deps := runner.Deps{
		Transcripts: sources.NewYouTube(httpClient, m),
		Translator:  engine.NewTranslator(llmClient, cfg.LLMModel, m),
		Uploader:    notion.NewUploader(notionClient.Page, notionClient.Block, cfg.NotionDatabaseID, m),
		Metrics:     m,
	}

	var closers []func() error
	if cache := engine.NewCache(ctx, cfg.RedisURL, cfg.CacheTTL, m); cache != nil {
		deps.Cache = cache
		closers = append(closers, cache.Close)
	}
	if cfg.HistoryEnabled() {
		h, err := engine.OpenHistory(cfg.HistoryDB)
		if err != nil {
			slog.Warn("history disabled", slog.Any("error", err))
		} else {
			deps.History = h
			closers = append(closers, h.Close)
		}
	}

	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Debug("close failed", slog.Any("error", err))
			}
		}
	}
	return runner.New(deps, cfg.TranscriptLang, cfg.ChunkSize), cleanup
}

// readURL takes the URL from the first argument, or prompts for one line on in.
func readURL(args []string, in io.Reader, out io.Writer) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	fmt.Fprint(out, "Enter YouTube URL: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
