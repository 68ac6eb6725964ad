package sources

// YouTube implementation is split across three files by responsibility:
//   youtube.go             URL parsing and the YouTube client
//   youtube_innertube.go   Innertube payloads, response shapes and the WEB POST helper
//   youtube_transcript.go  transcript fetching (page scrape, engagement panel, ANDROID player)

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_yt2notion/internal/engine"
)

const defaultYouTubeBase = "https://www.youtube.com"

// ParseVideoID extracts the video id from a YouTube URL.
// "v=" takes precedence: the id runs up to the next "&". Otherwise the id is
// everything after "youtu.be/". The id's shape is not validated.
func ParseVideoID(rawURL string) (string, error) {
	if _, after, ok := strings.Cut(rawURL, "v="); ok {
		id, _, _ := strings.Cut(after, "&")
		return id, nil
	}
	if _, after, ok := strings.Cut(rawURL, "youtu.be/"); ok {
		return after, nil
	}
	return "", fmt.Errorf("%w: not a YouTube URL: %q", engine.ErrInvalidInput, rawURL)
}

// YouTube fetches transcripts through the public web and Innertube endpoints.
type YouTube struct {
	client  *http.Client
	baseURL string
	metrics *engine.Metrics
}

// YouTubeOption configures a YouTube client.
type YouTubeOption func(*YouTube)

// WithBaseURL points the client at a different host (tests, mirrors).
func WithBaseURL(u string) YouTubeOption {
	return func(y *YouTube) {
		y.baseURL = strings.TrimRight(u, "/")
	}
}

// NewYouTube creates a transcript client. m may be nil.
func NewYouTube(client *http.Client, m *engine.Metrics, opts ...YouTubeOption) *YouTube {
	if client == nil {
		client = http.DefaultClient
	}
	if m == nil {
		m = &engine.Metrics{}
	}
	y := &YouTube{client: client, baseURL: defaultYouTubeBase, metrics: m}
	for _, opt := range opts {
		opt(y)
	}
	return y
}
