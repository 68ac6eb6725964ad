package notion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jomei/notionapi"

	"github.com/anatolykoptev/go_yt2notion/internal/engine"
)

// MaxChildrenPerRequest is Notion's limit on blocks in a single create or append call.
const MaxChildrenPerRequest = 100

// emptyContent replaces an empty upload body.
const emptyContent = "No content available"

// PageCreator is the page half of the Notion API (notionapi.PageService).
type PageCreator interface {
	Create(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
}

// BlockAppender is the block-children half of the Notion API (notionapi.BlockService).
type BlockAppender interface {
	AppendChildren(ctx context.Context, id notionapi.BlockID, req *notionapi.AppendBlockChildrenRequest) (*notionapi.AppendBlockChildrenResponse, error)
}

// Page identifies a created Notion page.
type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PartResult is the outcome of uploading one chunk.
type PartResult struct {
	Part   int    `json:"part"`
	Title  string `json:"title"`
	Blocks int    `json:"blocks"`
	Page   *Page  `json:"page,omitempty"`
	Err    error  `json:"-"`
}

// Uploader creates pages in one Notion database.
type Uploader struct {
	pages      PageCreator
	blocks     BlockAppender
	databaseID notionapi.DatabaseID
	metrics    *engine.Metrics
}

// NewClient builds the Notion API client from config.
func NewClient(c engine.Config) *notionapi.Client {
	return notionapi.NewClient(notionapi.Token(c.NotionAPIKey),
		notionapi.WithHTTPClient(&http.Client{Timeout: c.NotionTimeout}),
	)
}

// NewUploader creates an uploader for databaseID; pass client.Page and client.Block.
// m may be nil.
func NewUploader(pages PageCreator, blocks BlockAppender, databaseID string, m *engine.Metrics) *Uploader {
	if m == nil {
		m = &engine.Metrics{}
	}
	return &Uploader{
		pages:      pages,
		blocks:     blocks,
		databaseID: notionapi.DatabaseID(databaseID),
		metrics:    m,
	}
}

// CreatePage creates one page titled title containing blocks.
// Blocks past the first MaxChildrenPerRequest are appended in follow-up calls.
func (u *Uploader) CreatePage(ctx context.Context, title string, blocks []Block) (*Page, error) {
	children := ToNotion(blocks)
	first := children
	if len(first) > MaxChildrenPerRequest {
		first = first[:MaxChildrenPerRequest]
	}

	created, err := u.pages.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: u.databaseID,
		},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Title: []notionapi.RichText{{Text: &notionapi.Text{Content: title}}},
			},
		},
		Children: first,
	})
	if err != nil {
		return nil, engine.Remote("notion", fmt.Errorf("create page: %w", err))
	}
	page := &Page{ID: string(created.ID), URL: created.URL}

	for start := len(first); start < len(children); start += MaxChildrenPerRequest {
		end := min(start+MaxChildrenPerRequest, len(children))
		_, err := u.blocks.AppendChildren(ctx, notionapi.BlockID(created.ID), &notionapi.AppendBlockChildrenRequest{
			Children: children[start:end],
		})
		if err != nil {
			return page, engine.Remote("notion", fmt.Errorf("append blocks %d-%d: %w", start, end, err))
		}
	}
	return page, nil
}

// Upload chunks text and creates one page per chunk titled "{title} - Part {n}".
// A failed part is logged and recorded; later parts are still attempted.
func (u *Uploader) Upload(ctx context.Context, title, text string, chunkSize int) []PartResult {
	if text == "" {
		text = emptyContent
	}
	chunks := engine.Chunk(text, chunkSize)
	results := make([]PartResult, 0, len(chunks))

	for i, chunk := range chunks {
		start := time.Now()
		blocks := ParseBlocks(chunk)
		res := PartResult{
			Part:   i + 1,
			Title:  fmt.Sprintf("%s - Part %d", title, i+1),
			Blocks: len(blocks),
		}
		res.Page, res.Err = u.CreatePage(ctx, res.Title, blocks)
		if res.Err != nil {
			u.metrics.PagesFailed.Add(1)
			slog.Error("notion upload failed",
				slog.String("title", res.Title),
				slog.Int("blocks", res.Blocks),
				slog.Any("error", res.Err),
			)
		} else {
			u.metrics.PagesCreated.Add(1)
			slog.Info("notion page created",
				slog.String("title", res.Title),
				slog.String("url", res.Page.URL),
				slog.Int("blocks", res.Blocks),
				slog.Duration("elapsed", time.Since(start)),
			)
		}
		results = append(results, res)
	}
	return results
}
