package notion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_yt2notion/internal/engine"
)

type fakePages struct {
	reqs   []*notionapi.PageCreateRequest
	failOn map[int]error // 1-based call number
}

func (f *fakePages) Create(_ context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	f.reqs = append(f.reqs, req)
	n := len(f.reqs)
	if err := f.failOn[n]; err != nil {
		return nil, err
	}
	id := fmt.Sprintf("page-%d", n)
	return &notionapi.Page{ID: notionapi.ObjectID(id), URL: "https://www.notion.so/" + id}, nil
}

type appendCall struct {
	id       notionapi.BlockID
	children int
}

type fakeBlocks struct {
	calls []appendCall
	err   error
}

func (f *fakeBlocks) AppendChildren(_ context.Context, id notionapi.BlockID, req *notionapi.AppendBlockChildrenRequest) (*notionapi.AppendBlockChildrenResponse, error) {
	f.calls = append(f.calls, appendCall{id: id, children: len(req.Children)})
	if f.err != nil {
		return nil, f.err
	}
	return &notionapi.AppendBlockChildrenResponse{}, nil
}

func titleOf(t *testing.T, req *notionapi.PageCreateRequest) string {
	t.Helper()
	prop, ok := req.Properties["title"].(notionapi.TitleProperty)
	require.True(t, ok, "title property missing")
	require.Len(t, prop.Title, 1)
	return prop.Title[0].Text.Content
}

func TestUploadSinglePart(t *testing.T) {
	pages := &fakePages{}
	m := &engine.Metrics{}
	u := NewUploader(pages, &fakeBlocks{}, "db-123", m)

	results := u.Upload(context.Background(), "Translation of ABC123", "# Title\n- point one", 2000)

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "Translation of ABC123 - Part 1", results[0].Title)
	assert.Equal(t, 2, results[0].Blocks)
	assert.Equal(t, "page-1", results[0].Page.ID)

	require.Len(t, pages.reqs, 1)
	req := pages.reqs[0]
	assert.Equal(t, notionapi.ParentTypeDatabaseID, req.Parent.Type)
	assert.Equal(t, notionapi.DatabaseID("db-123"), req.Parent.DatabaseID)
	assert.Equal(t, "Translation of ABC123 - Part 1", titleOf(t, req))
	require.Len(t, req.Children, 2)
	assert.Equal(t, notionapi.BlockType("heading_1"), req.Children[0].GetType())
	assert.Equal(t, notionapi.BlockType("bulleted_list_item"), req.Children[1].GetType())
	assert.EqualValues(t, 1, m.PagesCreated.Load())
}

func TestUploadPartsAreIsolated(t *testing.T) {
	pages := &fakePages{failOn: map[int]error{2: errors.New("validation_error")}}
	m := &engine.Metrics{}
	u := NewUploader(pages, &fakeBlocks{}, "db", m)

	text := strings.Repeat("a", 25) // chunk size 10 → 3 parts
	results := u.Upload(context.Background(), "T", text, 10)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.True(t, engine.IsRemote(results[1].Err))
	assert.Nil(t, results[1].Page)
	assert.NoError(t, results[2].Err, "a failed part must not stop later parts")

	require.Len(t, pages.reqs, 3)
	for i, req := range pages.reqs {
		assert.Equal(t, fmt.Sprintf("T - Part %d", i+1), titleOf(t, req))
	}
	assert.EqualValues(t, 2, m.PagesCreated.Load())
	assert.EqualValues(t, 1, m.PagesFailed.Load())
}

func TestUploadEmptyText(t *testing.T) {
	pages := &fakePages{}
	u := NewUploader(pages, &fakeBlocks{}, "db", nil)

	results := u.Upload(context.Background(), "T", "", 2000)
	require.Len(t, results, 1)
	require.Len(t, pages.reqs, 1)
	require.Len(t, pages.reqs[0].Children, 1)
	p, ok := pages.reqs[0].Children[0].(*notionapi.ParagraphBlock)
	require.True(t, ok)
	assert.Equal(t, emptyContent, p.Paragraph.RichText[0].Text.Content)
}

func TestCreatePageAppendsOverflow(t *testing.T) {
	pages := &fakePages{}
	blocks := &fakeBlocks{}
	u := NewUploader(pages, blocks, "db", nil)

	in := make([]Block, 250)
	for i := range in {
		in[i] = Block{Kind: KindBulletItem, Text: fmt.Sprint(i)}
	}
	page, err := u.CreatePage(context.Background(), "Long", in)
	require.NoError(t, err)
	assert.Equal(t, "page-1", page.ID)

	require.Len(t, pages.reqs, 1)
	assert.Len(t, pages.reqs[0].Children, MaxChildrenPerRequest)
	assert.Equal(t, []appendCall{
		{id: "page-1", children: 100},
		{id: "page-1", children: 50},
	}, blocks.calls)
}

func TestCreatePageAppendFailure(t *testing.T) {
	pages := &fakePages{}
	blocks := &fakeBlocks{err: errors.New("conflict")}
	u := NewUploader(pages, blocks, "db", nil)

	in := make([]Block, 101)
	for i := range in {
		in[i] = Block{Kind: KindParagraph, Text: "x"}
	}
	page, err := u.CreatePage(context.Background(), "T", in)
	require.Error(t, err)
	require.NotNil(t, page, "page exists even when appending fails")
	assert.Len(t, blocks.calls, 1, "no retry")
}

func TestCreatePageNoOverflow(t *testing.T) {
	blocks := &fakeBlocks{}
	u := NewUploader(&fakePages{}, blocks, "db", nil)
	_, err := u.CreatePage(context.Background(), "T", make([]Block, MaxChildrenPerRequest))
	require.NoError(t, err)
	assert.Empty(t, blocks.calls)
}
