package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"

	stealth "github.com/anatolykoptev/go-stealth"
)

const (
	ytPlayerPath        = "/youtubei/v1/player"
	ytNextPath          = "/youtubei/v1/next"
	ytGetTranscriptPath = "/youtubei/v1/get_transcript"
	ytWebVersion        = "2.20250222.10.00"
	ytAndroidVersion    = "20.10.38"
	ytAndroidUA         = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

// ytClient identifies the calling app in an Innertube request context.
type ytClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	VisitorData       string `json:"visitorData,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type ytContext struct {
	Client ytClient `json:"client"`
}

// playerRequest is the ANDROID /player payload.
type playerRequest struct {
	VideoID        string    `json:"videoId"`
	Context        ytContext `json:"context"`
	RacyCheckOk    bool      `json:"racyCheckOk"`
	ContentCheckOk bool      `json:"contentCheckOk"`
}

// playerInfo is the part of ytInitialPlayerResponse and /player we read.
type playerInfo struct {
	Captions *struct {
		Tracklist struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	Playability *struct {
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// timedText covers both caption formats: legacy <transcript><text start dur>
// in seconds and srv3 <timedtext><body><p t d> in milliseconds.
type timedText struct {
	Lines []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Text  string  `xml:",chardata"`
	} `xml:"text"`
	Paras []struct {
		T     int64  `xml:"t,attr"`
		D     int64  `xml:"d,attr"`
		Inner string `xml:",innerxml"`
	} `xml:"body>p"`
}

type transcriptSegment struct {
	Renderer *struct {
		StartMs string `json:"startMs"`
		EndMs   string `json:"endMs"`
		Snippet struct {
			Runs []struct {
				Text string `json:"text"`
			} `json:"runs"`
		} `json:"snippet"`
	} `json:"transcriptSegmentRenderer"`
}

// languageMenuItem is one entry of the transcript panel's language picker.
// Titles are display names in the request's hl, e.g. "English (auto-generated)".
type languageMenuItem struct {
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
}

// transcriptPanel is the searchable transcript panel inside /get_transcript.
type transcriptPanel struct {
	Body struct {
		List struct {
			InitialSegments []transcriptSegment `json:"initialSegments"`
		} `json:"transcriptSegmentListRenderer"`
	} `json:"body"`
	Footer struct {
		Renderer struct {
			LanguageMenu struct {
				SubMenu struct {
					Items []languageMenuItem `json:"subMenuItems"`
				} `json:"sortFilterSubMenuRenderer"`
			} `json:"languageMenu"`
		} `json:"transcriptFooterRenderer"`
	} `json:"footer"`
}

type getTranscriptResponse struct {
	Actions []struct {
		Update *struct {
			Content struct {
				Transcript struct {
					Content struct {
						Panel transcriptPanel `json:"transcriptSearchPanelRenderer"`
					} `json:"content"`
				} `json:"transcriptRenderer"`
			} `json:"content"`
		} `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

// panels returns every transcript panel carried by the response.
func (r getTranscriptResponse) panels() []transcriptPanel {
	var out []transcriptPanel
	for _, a := range r.Actions {
		if a.Update != nil {
			out = append(out, a.Update.Content.Transcript.Content.Panel)
		}
	}
	return out
}

// newVisitorData returns a random 11-char visitor id.
func newVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))] //nolint:gosec // non-cryptographic use
	}
	return string(b)
}

// webContext is the WEB client context sent to /next and /get_transcript.
func webContext(visitorData, lang string) map[string]any {
	return map[string]any{
		"client": ytClient{
			ClientName:    "WEB",
			ClientVersion: ytWebVersion,
			VisitorData:   visitorData,
			Hl:            lang,
			Gl:            "US",
		},
		"user":    map[string]bool{"enableSafetyMode": false},
		"request": map[string]bool{"useSsl": true},
	}
}

// postWeb POSTs payload to an Innertube endpoint as the WEB client.
func (y *YouTube) postWeb(ctx context.Context, path string, payload any, visitorData string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.baseURL+path+"?prettyPrint=false", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", stealth.RandomUserAgent())
	req.Header.Set("X-Youtube-Client-Name", "1")
	req.Header.Set("X-Youtube-Client-Version", ytWebVersion)
	req.Header.Set("X-Goog-Visitor-Id", visitorData)
	req.Header.Set("Origin", defaultYouTubeBase)
	req.Header.Set("Referer", defaultYouTubeBase+"/")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("innertube %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("innertube %s: HTTP %d: %s", path, resp.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 3*1024*1024))
}
