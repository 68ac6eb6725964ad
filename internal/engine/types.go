package engine

import (
	"strings"
	"time"
)

// Fragment is one timed caption unit of a transcript.
// Zero Start/Duration means the source did not report timing.
type Fragment struct {
	Text     string        `json:"text"`
	Start    time.Duration `json:"start"`
	Duration time.Duration `json:"duration,omitempty"`
}

// JoinFragments concatenates fragment texts with a single space.
func JoinFragments(frags []Fragment) string {
	parts := make([]string, len(frags))
	for i, f := range frags {
		parts[i] = f.Text
	}
	return strings.Join(parts, " ")
}

// UploadStatus is the outcome of a single page upload.
type UploadStatus string

const (
	UploadCreated UploadStatus = "created"
	UploadFailed  UploadStatus = "failed"
)

// Upload is one row of the upload history.
type Upload struct {
	ID        int64        `json:"id"`
	VideoID   string       `json:"video_id"`
	Title     string       `json:"title"`
	Part      int          `json:"part"`
	PageID    string       `json:"page_id,omitempty"`
	PageURL   string       `json:"page_url,omitempty"`
	Status    UploadStatus `json:"status"`
	Error     string       `json:"error,omitempty"`
	CreatedAt string       `json:"created_at"`
}
