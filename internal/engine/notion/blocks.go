// Package notion converts formatted text into Notion blocks and uploads pages.
package notion

import (
	"strings"

	"github.com/jomei/notionapi"
)

// BlockKind names a block type; values match Notion's wire names.
type BlockKind string

const (
	KindHeading1     BlockKind = "heading_1"
	KindHeading2     BlockKind = "heading_2"
	KindHeading3     BlockKind = "heading_3"
	KindBulletItem   BlockKind = "bulleted_list_item"
	KindNumberedItem BlockKind = "numbered_list_item"
	KindParagraph    BlockKind = "paragraph"
)

// Block is one unit of page content: a kind and its plain-text payload.
type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
}

// linePrefixes is checked in order; the first match wins.
// Only the literal "1. " is a numbered item: "2. " and up stay paragraphs.
var linePrefixes = []struct {
	prefix string
	kind   BlockKind
}{
	{"# ", KindHeading1},
	{"## ", KindHeading2},
	{"### ", KindHeading3},
	{"- ", KindBulletItem},
	{"1. ", KindNumberedItem},
}

// ParseBlocks maps each "\n"-separated line to at most one block.
// Blank lines are dropped; consecutive list lines are not grouped.
func ParseBlocks(markdown string) []Block {
	var blocks []Block
	for _, line := range strings.Split(markdown, "\n") {
		if b, ok := parseLine(line); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func parseLine(line string) (Block, bool) {
	for _, p := range linePrefixes {
		if rest, ok := strings.CutPrefix(line, p.prefix); ok {
			return Block{Kind: p.kind, Text: rest}, true
		}
	}
	if strings.TrimSpace(line) == "" {
		return Block{}, false
	}
	return Block{Kind: KindParagraph, Text: line}, true
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}}
}

// Notion returns the notionapi representation of b.
// Unknown kinds are sent as paragraphs.
func (b Block) Notion() notionapi.Block {
	basic := notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   notionapi.BlockType(b.Kind),
	}
	rt := richText(b.Text)
	switch b.Kind {
	case KindHeading1:
		return &notionapi.Heading1Block{BasicBlock: basic, Heading1: notionapi.Heading{RichText: rt}}
	case KindHeading2:
		return &notionapi.Heading2Block{BasicBlock: basic, Heading2: notionapi.Heading{RichText: rt}}
	case KindHeading3:
		return &notionapi.Heading3Block{BasicBlock: basic, Heading3: notionapi.Heading{RichText: rt}}
	case KindBulletItem:
		return &notionapi.BulletedListItemBlock{BasicBlock: basic, BulletedListItem: notionapi.ListItem{RichText: rt}}
	case KindNumberedItem:
		return &notionapi.NumberedListItemBlock{BasicBlock: basic, NumberedListItem: notionapi.ListItem{RichText: rt}}
	default:
		basic.Type = notionapi.BlockTypeParagraph
		return &notionapi.ParagraphBlock{BasicBlock: basic, Paragraph: notionapi.Paragraph{RichText: rt}}
	}
}

// ToNotion converts blocks in order.
func ToNotion(blocks []Block) []notionapi.Block {
	out := make([]notionapi.Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Notion()
	}
	return out
}
