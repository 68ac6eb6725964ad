package engine

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/strutil"
)

// DefaultChunkSize is the per-page content limit, in runes.
const DefaultChunkSize = 2000

// User-Agent string for non-browser requests (timedtext XML).
const UserAgentBot = "go_yt2notion/1.0"

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanHTML strips HTML tags, decodes entities and trims whitespace.
// Caption XML is double-escaped, so entities are decoded after stripping tags.
func CleanHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(htmlTagRe.ReplaceAllString(s, "")))
}

// Chunk splits s into consecutive slices of at most max runes.
// Boundaries are purely positional: a chunk may end mid-word.
// An empty s yields no chunks; max <= 0 means DefaultChunkSize.
func Chunk(s string, max int) []string {
	if s == "" {
		return nil
	}
	if max <= 0 {
		max = DefaultChunkSize
	}
	chunks := make([]string, 0, utf8.RuneCountInString(s)/max+1)
	start, n := 0, 0
	for i := range s {
		if n == max {
			chunks = append(chunks, s[start:i])
			start, n = i, 0
		}
		n++
	}
	return append(chunks, s[start:])
}

// Preview shortens s for log output.
func Preview(s string, limit int) string {
	return strutil.TruncateWith(strings.ReplaceAll(s, "\n", " "), limit, "...")
}
