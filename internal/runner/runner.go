// Package runner wires the transcript, translation and upload steps into one run.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_yt2notion/internal/engine"
	"github.com/anatolykoptev/go_yt2notion/internal/engine/notion"
	"github.com/anatolykoptev/go_yt2notion/internal/engine/sources"
)

// TranscriptSource returns the captions of a video.
type TranscriptSource interface {
	Transcript(ctx context.Context, videoID, lang string) ([]engine.Fragment, error)
}

// Translator formats a transcript into Korean markdown.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
	Model() string
}

// Uploader creates one page per chunk of text.
type Uploader interface {
	Upload(ctx context.Context, title, text string, chunkSize int) []notion.PartResult
}

// TranslationCache is optional; *engine.Cache satisfies it and is nil-safe.
type TranslationCache interface {
	GetTranslation(ctx context.Context, model, videoID string) (string, bool)
	SetTranslation(ctx context.Context, model, videoID, text string)
}

// History is optional; *engine.History satisfies it.
type History interface {
	Record(ctx context.Context, u engine.Upload) (int64, error)
	List(ctx context.Context, videoID string, limit int) ([]engine.Upload, error)
}

// Deps are the collaborators of a Runner. Cache and History may be nil.
type Deps struct {
	Transcripts TranscriptSource
	Translator  Translator
	Uploader    Uploader
	Cache       TranslationCache
	History     History
	Metrics     *engine.Metrics
}

// Runner executes the URL → transcript → translation → Notion pipeline.
type Runner struct {
	deps      Deps
	lang      string
	chunkSize int
}

// New creates a Runner. Empty lang means "en"; chunkSize <= 0 means engine.DefaultChunkSize.
func New(d Deps, lang string, chunkSize int) *Runner {
	if d.Metrics == nil {
		d.Metrics = &engine.Metrics{}
	}
	if lang == "" {
		lang = "en"
	}
	if chunkSize <= 0 {
		chunkSize = engine.DefaultChunkSize
	}
	return &Runner{deps: d, lang: lang, chunkSize: chunkSize}
}

// Report summarises one run.
type Report struct {
	VideoID  string              `json:"video_id"`
	Title    string              `json:"title"`
	Cached   bool                `json:"cached"`
	Previous int                 `json:"previous"` // parts created by earlier runs
	Parts    []notion.PartResult `json:"parts"`
}

// Failed returns how many parts could not be uploaded.
func (r *Report) Failed() int {
	n := 0
	for _, p := range r.Parts {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// Run processes one YouTube URL. It returns an error only when the run stops
// before uploading; per-part upload failures are reported in Report.Parts.
func (r *Runner) Run(ctx context.Context, rawURL string) (*Report, error) {
	start := time.Now()
	defer func() {
		slog.Info("run finished",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("metrics", r.deps.Metrics.Format()),
		)
	}()

	videoID, err := sources.ParseVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	report := &Report{VideoID: videoID, Title: "Translation of " + videoID}
	slog.Info("processing video", slog.String("id", videoID))

	report.Previous = r.previousUploads(ctx, videoID)

	text, cached, err := r.translation(ctx, videoID)
	if err != nil {
		return report, err
	}
	report.Cached = cached

	report.Parts = r.deps.Uploader.Upload(ctx, report.Title, text, r.chunkSize)
	r.recordParts(ctx, videoID, report.Parts)
	return report, nil
}

// translation returns the formatted text for videoID, from the cache when possible.
func (r *Runner) translation(ctx context.Context, videoID string) (string, bool, error) {
	model := r.deps.Translator.Model()
	if r.deps.Cache != nil {
		if text, ok := r.deps.Cache.GetTranslation(ctx, model, videoID); ok {
			slog.Info("translation loaded from cache", slog.String("id", videoID))
			return text, true, nil
		}
	}

	frags, err := r.deps.Transcripts.Transcript(ctx, videoID, r.lang)
	if err != nil {
		return "", false, fmt.Errorf("fetch transcript: %w", err)
	}
	transcript := engine.JoinFragments(frags)
	slog.Info("transcript fetched",
		slog.Int("fragments", len(frags)),
		slog.Int("chars", len([]rune(transcript))),
	)

	text, err := r.deps.Translator.Translate(ctx, transcript)
	if err != nil {
		// A failed call counts as an absent result.
		slog.Error("translation failed", slog.Any("error", err))
		return "", false, fmt.Errorf("translate %s: %w: %w", videoID, engine.ErrEmptyResult, err)
	}
	if text == "" {
		return "", false, fmt.Errorf("translate %s: %w", videoID, engine.ErrEmptyResult)
	}

	if r.deps.Cache != nil {
		r.deps.Cache.SetTranslation(ctx, model, videoID, text)
	}
	return text, false, nil
}

// previousUploads logs and returns how many parts of videoID were created before.
func (r *Runner) previousUploads(ctx context.Context, videoID string) int {
	if r.deps.History == nil {
		return 0
	}
	uploads, err := r.deps.History.List(ctx, videoID, 0)
	if err != nil {
		slog.Warn("history lookup failed", slog.Any("error", err))
		return 0
	}
	n, latest := 0, ""
	for _, u := range uploads {
		if u.Status != engine.UploadCreated {
			continue
		}
		if n == 0 {
			latest = u.PageURL
		}
		n++
	}
	if n > 0 {
		slog.Info("video was uploaded before",
			slog.String("id", videoID),
			slog.Int("parts", n),
			slog.String("latest", latest),
		)
	}
	return n
}

func (r *Runner) recordParts(ctx context.Context, videoID string, parts []notion.PartResult) {
	if r.deps.History == nil {
		return
	}
	for _, p := range parts {
		u := engine.Upload{VideoID: videoID, Title: p.Title, Part: p.Part, Status: engine.UploadCreated}
		if p.Page != nil {
			u.PageID, u.PageURL = p.Page.ID, p.Page.URL
		}
		if p.Err != nil {
			u.Status = engine.UploadFailed
			u.Error = p.Err.Error()
		}
		if _, err := r.deps.History.Record(ctx, u); err != nil {
			slog.Warn("history record failed", slog.Int("part", p.Part), slog.Any("error", err))
		}
	}
}
