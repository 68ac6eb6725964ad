package notion

import (
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlocks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Block
	}{
		{"heading 1", "# Title", []Block{{KindHeading1, "Title"}}},
		{"heading 2", "## Section", []Block{{KindHeading2, "Section"}}},
		{"heading 3", "### Sub", []Block{{KindHeading3, "Sub"}}},
		{"bullet", "- point", []Block{{KindBulletItem, "point"}}},
		{"numbered one", "1. First", []Block{{KindNumberedItem, "First"}}},
		{"numbered two stays paragraph", "2. Second", []Block{{KindParagraph, "2. Second"}}},
		{"ten stays paragraph", "10. Tenth", []Block{{KindParagraph, "10. Tenth"}}},
		{"paragraph", "just text", []Block{{KindParagraph, "just text"}}},
		{"empty line", "", nil},
		{"whitespace line", "  \t ", nil},
		{"hash without space", "#tag", []Block{{KindParagraph, "#tag"}}},
		{"four hashes", "#### deep", []Block{{KindParagraph, "#### deep"}}},
		{"empty heading payload", "# ", []Block{{KindHeading1, ""}}},
		{"indented bullet is paragraph", "  - nested", []Block{{KindParagraph, "  - nested"}}},
		{"star bullet is paragraph", "* item", []Block{{KindParagraph, "* item"}}},
		{"carriage return kept", "text\r", []Block{{KindParagraph, "text\r"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBlocks(tt.in))
		})
	}
}

func TestParseBlocksMultiline(t *testing.T) {
	in := "# 제목\n\n## 개요\n- 하나\n- 둘\n1. 첫째\n2. 둘째\n본문입니다.\n   \n### 끝"
	want := []Block{
		{KindHeading1, "제목"},
		{KindHeading2, "개요"},
		{KindBulletItem, "하나"},
		{KindBulletItem, "둘"},
		{KindNumberedItem, "첫째"},
		{KindParagraph, "2. 둘째"},
		{KindParagraph, "본문입니다."},
		{KindHeading3, "끝"},
	}
	assert.Equal(t, want, ParseBlocks(in))
}

func TestParseBlocksTitleAndBullet(t *testing.T) {
	got := ParseBlocks("# Title\n- point one")
	assert.Equal(t, []Block{{KindHeading1, "Title"}, {KindBulletItem, "point one"}}, got)
}

func TestBlockNotion(t *testing.T) {
	text := func(rt []notionapi.RichText) string {
		require.Len(t, rt, 1)
		require.NotNil(t, rt[0].Text)
		return rt[0].Text.Content
	}

	h1, ok := Block{KindHeading1, "Title"}.Notion().(*notionapi.Heading1Block)
	require.True(t, ok)
	assert.Equal(t, notionapi.BlockType("heading_1"), h1.Type)
	assert.Equal(t, notionapi.ObjectTypeBlock, h1.Object)
	assert.Equal(t, "Title", text(h1.Heading1.RichText))

	h2, ok := Block{KindHeading2, "A"}.Notion().(*notionapi.Heading2Block)
	require.True(t, ok)
	assert.Equal(t, "A", text(h2.Heading2.RichText))

	h3, ok := Block{KindHeading3, "B"}.Notion().(*notionapi.Heading3Block)
	require.True(t, ok)
	assert.Equal(t, "B", text(h3.Heading3.RichText))

	bl, ok := Block{KindBulletItem, "point"}.Notion().(*notionapi.BulletedListItemBlock)
	require.True(t, ok)
	assert.Equal(t, notionapi.BlockType("bulleted_list_item"), bl.Type)
	assert.Equal(t, "point", text(bl.BulletedListItem.RichText))

	nl, ok := Block{KindNumberedItem, "First"}.Notion().(*notionapi.NumberedListItemBlock)
	require.True(t, ok)
	assert.Equal(t, "First", text(nl.NumberedListItem.RichText))

	p, ok := Block{KindParagraph, "body"}.Notion().(*notionapi.ParagraphBlock)
	require.True(t, ok)
	assert.Equal(t, notionapi.BlockTypeParagraph, p.Type)
	assert.Equal(t, "body", text(p.Paragraph.RichText))

	unknown, ok := Block{Kind: "to_do", Text: "x"}.Notion().(*notionapi.ParagraphBlock)
	require.True(t, ok, "unknown kinds fall back to paragraph")
	assert.Equal(t, notionapi.BlockTypeParagraph, unknown.Type)
}

func TestToNotion(t *testing.T) {
	out := ToNotion([]Block{{KindHeading1, "a"}, {KindParagraph, "b"}})
	require.Len(t, out, 2)
	assert.Equal(t, notionapi.BlockType("heading_1"), out[0].GetType())
	assert.Equal(t, notionapi.BlockTypeParagraph, out[1].GetType())
	assert.Empty(t, ToNotion(nil))
}
