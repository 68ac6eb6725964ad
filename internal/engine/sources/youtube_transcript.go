package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/anatolykoptev/go_yt2notion/internal/engine"
)

// YouTube transcript fetching.
// Primary:  watch page ytInitialPlayerResponse → captionTracks → timedtext XML
// Fallback: /next → engagement panel → /get_transcript  (works from datacenter IPs)
// Fallback: ANDROID Innertube /player → captionTracks

// ErrNoTrack is returned when no caption track matches the requested language.
var ErrNoTrack = errors.New("no caption track for language")

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// Transcript fetches the captions of videoID in lang as ordered fragments.
func (y *YouTube) Transcript(ctx context.Context, videoID, lang string) ([]engine.Fragment, error) {
	y.metrics.TranscriptRequests.Add(1)
	frags, err := y.transcript(ctx, videoID, lang)
	if err != nil {
		y.metrics.TranscriptErrors.Add(1)
		slog.Error("transcript fetch failed",
			slog.String("id", videoID),
			slog.String("lang", lang),
			slog.Any("error", err),
		)
		return nil, engine.Remote("transcript", err)
	}
	return frags, nil
}

func (y *YouTube) transcript(ctx context.Context, videoID, lang string) ([]engine.Fragment, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, errors.New("empty video id")
	}

	frags, err := y.fetchViaPageScrape(ctx, videoID, lang)
	if err == nil {
		return frags, nil
	}
	// A missing language is a property of the video, not of the access path.
	if errors.Is(err, ErrNoTrack) {
		return nil, err
	}
	slog.Warn("youtube: page scrape failed, trying engagement panel",
		slog.String("id", videoID), slog.Any("err", err))

	frags, panelErr := y.fetchViaEngagementPanel(ctx, videoID, lang)
	if panelErr == nil {
		return frags, nil
	}
	slog.Warn("youtube: engagement panel failed, trying player",
		slog.String("id", videoID), slog.Any("err", panelErr))

	frags, err = y.fetchViaPlayer(ctx, videoID, lang)
	if err != nil && errors.Is(panelErr, ErrNoTrack) && !errors.Is(err, ErrNoTrack) {
		// The panel saw another language; that outranks a transport error.
		return nil, fmt.Errorf("%w (player: %v)", panelErr, err)
	}
	return frags, err
}

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value in the /next JSON response is URL-encoded.
		// /get_transcript expects the decoded (raw base64) form.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", errors.New("getTranscriptEndpoint not found in engagement panels")
}

// parseTranscriptSegments converts a /get_transcript response into fragments.
func parseTranscriptSegments(resp getTranscriptResponse) []engine.Fragment {
	var frags []engine.Fragment
	for _, panel := range resp.panels() {
		for _, seg := range panel.Body.List.InitialSegments {
			r := seg.Renderer
			if r == nil {
				continue
			}
			var sb strings.Builder
			for _, run := range r.Snippet.Runs {
				sb.WriteString(run.Text)
			}
			text := strings.TrimSpace(sb.String())
			if text == "" {
				continue
			}
			start := parseMillis(r.StartMs)
			f := engine.Fragment{Text: text, Start: start}
			if end := parseMillis(r.EndMs); end > start {
				f.Duration = end - start
			}
			frags = append(frags, f)
		}
	}
	return frags
}

// panelLanguage checks that the language selected in the transcript panel is lang.
// Menu titles are rendered in hl=lang, so they start with lang's own name.
// A panel that reports no selection cannot be trusted and is rejected.
func panelLanguage(resp getTranscriptResponse, lang string) error {
	name := languageName(lang)
	for _, panel := range resp.panels() {
		for _, item := range panel.Footer.Renderer.LanguageMenu.SubMenu.Items {
			if !item.Selected {
				continue
			}
			if name != "" && strings.HasPrefix(strings.ToLower(item.Title), strings.ToLower(name)) {
				return nil
			}
			return fmt.Errorf("%w %q: panel serves %q", ErrNoTrack, lang, item.Title)
		}
	}
	return errors.New("transcript panel does not report its language")
}

// languageName returns the self-name of lang's base language ("en" → "English").
func languageName(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return display.Self.Name(base)
}

func parseMillis(s string) time.Duration {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// fetchViaEngagementPanel fetches a transcript via:
//  1. POST /next → get engagementPanels containing transcript continuation token
//  2. POST /get_transcript with the token → JSON segments
//
// The panel serves the default track; hl only nudges which one that is,
// so the selected language is checked before the segments are used.
func (y *YouTube) fetchViaEngagementPanel(ctx context.Context, videoID, lang string) ([]engine.Fragment, error) {
	visitorData := newVisitorData()

	nextData, err := y.postWeb(ctx, ytNextPath, map[string]any{
		"videoId": videoID,
		"context": webContext(visitorData, lang),
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	transcriptData, err := y.postWeb(ctx, ytGetTranscriptPath, map[string]any{
		"params":  token,
		"context": webContext(visitorData, lang),
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp getTranscriptResponse
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	if err := panelLanguage(transcriptResp, lang); err != nil {
		return nil, err
	}

	frags := parseTranscriptSegments(transcriptResp)
	if len(frags) == 0 {
		return nil, errors.New("empty transcript segments")
	}
	return frags, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrack selects the caption track for lang.
// Order: manual exact match, auto-generated exact match, regional variant (en → en-GB).
// Tracks that require a PoToken are skipped.
func pickTrack(tracks []captionTrack, lang string) (captionTrack, error) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, errors.New("all caption tracks require PoToken")
	}
	for _, t := range usable {
		if t.LanguageCode == lang && t.Kind != "asr" {
			return t, nil
		}
	}
	for _, t := range usable {
		if t.LanguageCode == lang {
			return t, nil
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, lang+"-") {
			return t, nil
		}
	}
	return captionTrack{}, fmt.Errorf("%w %q", ErrNoTrack, lang)
}

// parseTimedText decodes caption XML into fragments.
func parseTimedText(body []byte) ([]engine.Fragment, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	var frags []engine.Fragment
	for _, line := range tt.Lines {
		if text := engine.CleanHTML(line.Text); text != "" {
			frags = append(frags, engine.Fragment{
				Text:     text,
				Start:    time.Duration(line.Start * float64(time.Second)),
				Duration: time.Duration(line.Dur * float64(time.Second)),
			})
		}
	}
	for _, p := range tt.Paras {
		if text := engine.CleanHTML(p.Inner); text != "" {
			frags = append(frags, engine.Fragment{
				Text:     text,
				Start:    time.Duration(p.T) * time.Millisecond,
				Duration: time.Duration(p.D) * time.Millisecond,
			})
		}
	}
	return frags, nil
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func (y *YouTube) fetchTimedText(ctx context.Context, baseURL string) ([]engine.Fragment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.UserAgentBot)
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}
	frags, err := parseTimedText(body)
	if err != nil {
		return nil, err
	}
	if len(frags) == 0 {
		return nil, errors.New("empty timedtext")
	}
	return frags, nil
}

// fetchViaPlayer uses the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func (y *YouTube) fetchViaPlayer(ctx context.Context, videoID, lang string) ([]engine.Fragment, error) {
	reqBody, err := json.Marshal(playerRequest{
		VideoID: videoID,
		Context: ytContext{
			Client: ytClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                lang,
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.baseURL+ytPlayerPath+"?prettyPrint=false", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", ytAndroidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("android innertube: HTTP %d", resp.StatusCode)
	}

	var playerResp playerInfo
	if err := json.NewDecoder(resp.Body).Decode(&playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	tracks, err := captionTracks(playerResp)
	if err != nil {
		return nil, err
	}
	track, err := pickTrack(tracks, lang)
	if err != nil {
		return nil, err
	}
	return y.fetchTimedText(ctx, track.BaseURL)
}

// captionTracks returns the tracks of a player response or explains their absence.
func captionTracks(playerResp playerInfo) ([]captionTrack, error) {
	if playerResp.Captions == nil {
		if playerResp.Playability != nil && playerResp.Playability.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", playerResp.Playability.Reason)
		}
		return nil, errors.New("no captions in player response")
	}
	tracks := playerResp.Captions.Tracklist.CaptionTracks
	if len(tracks) == 0 {
		return nil, errors.New("no caption tracks")
	}
	return tracks, nil
}

// fetchViaPageScrape scrapes the YouTube watch page HTML and extracts
// the caption track XML URL from ytInitialPlayerResponse. Works from any IP.
func (y *YouTube) fetchViaPageScrape(ctx context.Context, videoID, lang string) ([]engine.Fragment, error) {
	watchURL := y.baseURL + "/watch?v=" + url.QueryEscape(videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range stealth.ChromeHeaders() {
		// Leave accept-encoding to net/http so gzip is decoded transparently.
		if strings.EqualFold(k, "accept-encoding") {
			continue
		}
		req.Header.Set(k, v)
	}
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}

	idx := bytes.Index(body, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var playerResp playerInfo
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	tracks, err := captionTracks(playerResp)
	if err != nil {
		return nil, err
	}
	track, err := pickTrack(tracks, lang)
	if err != nil {
		return nil, err
	}
	return y.fetchTimedText(ctx, track.BaseURL)
}

// extractJSON returns the leading balanced JSON object in b, or nil.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
