// Package pandoc holds Document Tree produced by pandoc JSON writer and the
// code to ingest it.
package pandoc

import "strings"

// Document is the root of the tree: metadata and ordered top level blocks.
type Document struct {
	APIVersion []int
	Meta       Meta
	Blocks     []Block
}

// Meta contains the metadata fields conversion cares about.
type Meta struct {
	Title    string
	Subtitle string
	Author   string
	Date     string
	TOC      bool
}

// Attr mirrors pandoc attribute triple.
type Attr struct {
	ID      string
	Classes []string
	KV      map[string]string
}

// HasClass reports whether class is present.
func (a Attr) HasClass(class string) bool {
	for _, c := range a.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Value returns attribute value or empty string.
func (a Attr) Value(key string) string {
	if a.KV == nil {
		return ""
	}
	return a.KV[key]
}

// BlockKind distinguishes block level nodes. Values match pandoc tags.
type BlockKind string

const (
	BlockPara           BlockKind = "Para"
	BlockPlain          BlockKind = "Plain"
	BlockHeader         BlockKind = "Header"
	BlockCode           BlockKind = "CodeBlock"
	BlockBulletList     BlockKind = "BulletList"
	BlockOrderedList    BlockKind = "OrderedList"
	BlockQuote          BlockKind = "BlockQuote"
	BlockTable          BlockKind = "Table"
	BlockHorizontalRule BlockKind = "HorizontalRule"
	BlockDiv            BlockKind = "Div"
	BlockFigure         BlockKind = "Figure"
	BlockDefinitionList BlockKind = "DefinitionList"
	BlockLineBlock      BlockKind = "LineBlock"
	BlockRaw            BlockKind = "RawBlock"
	// BlockUnknown keeps the place of a kind we do not understand.
	BlockUnknown BlockKind = "Unknown"
)

// Block stores a single block node. Only fields relevant to Kind are set.
type Block struct {
	Kind    BlockKind
	Attr    Attr
	Inlines []Inline // Para, Plain, Header
	Level   int      // Header
	Text    string   // CodeBlock, RawBlock
	Format  string   // RawBlock
	Blocks  []Block  // BlockQuote, Div, Figure
	// Items holds list items, each is a sequence of blocks.
	Items       [][]Block
	ListStart   int
	Definitions []Definition
	Lines       [][]Inline // LineBlock
	Table       *Table
	Wrapper     Wrapper // Div, Figure
	// Tag is the original pandoc tag for BlockUnknown.
	Tag string
}

// Definition is one term of a definition list.
type Definition struct {
	Term        []Inline
	Definitions [][]Block
}

// WrapperKind is decided once at ingestion by looking at Div attributes.
type WrapperKind string

const (
	WrapperPlain    WrapperKind = "plain"
	WrapperCallout  WrapperKind = "callout"
	WrapperFigure   WrapperKind = "figure"
	WrapperCodeCell WrapperKind = "code-cell"
)

// Wrapper describes semantic subtype of a transparent container.
type Wrapper struct {
	Kind WrapperKind
	// Callout: note, tip, warning, caution, important
	Callout string
	// Figure: caption blocks
	Caption []Block
	// CodeCell: output stream this wrapper carries (stdout, stderr) or empty
	// for the cell itself and display outputs.
	Stream string
}

// Table is normalized pandoc table: row groups are already flattened.
type Table struct {
	Caption []Block
	// Columns is the number of column specs, zero when absent.
	Columns  int
	HeadRows []Row
	BodyRows []Row
	FootRows []Row
}

// Rows returns all rows in rendering order: head, body, foot.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, len(t.HeadRows)+len(t.BodyRows)+len(t.FootRows))
	rows = append(rows, t.HeadRows...)
	rows = append(rows, t.BodyRows...)
	rows = append(rows, t.FootRows...)
	return rows
}

type Row struct {
	Cells []Cell
}

type Cell struct {
	RowSpan int
	ColSpan int
	Blocks  []Block
}

// InlineKind distinguishes inline nodes. Values match pandoc tags.
type InlineKind string

const (
	InlineStr         InlineKind = "Str"
	InlineSpace       InlineKind = "Space"
	InlineSoftBreak   InlineKind = "SoftBreak"
	InlineLineBreak   InlineKind = "LineBreak"
	InlineStrong      InlineKind = "Strong"
	InlineEmph        InlineKind = "Emph"
	InlineUnderline   InlineKind = "Underline"
	InlineStrikeout   InlineKind = "Strikeout"
	InlineSuperscript InlineKind = "Superscript"
	InlineSubscript   InlineKind = "Subscript"
	InlineSmallCaps   InlineKind = "SmallCaps"
	InlineCode        InlineKind = "Code"
	InlineLink        InlineKind = "Link"
	InlineImage       InlineKind = "Image"
	InlineNote        InlineKind = "Note"
	InlineMath        InlineKind = "Math"
	InlineQuoted      InlineKind = "Quoted"
	InlineCite        InlineKind = "Cite"
	InlineSpan        InlineKind = "Span"
	InlineRaw         InlineKind = "RawInline"
	InlineUnknown     InlineKind = "Unknown"
)

// Inline stores a single inline node. Only fields relevant to Kind are set.
type Inline struct {
	Kind     InlineKind
	Text     string // Str, Code, Math, RawInline
	Format   string // RawInline
	Attr     Attr   // Code, Link, Image, Span
	Children []Inline
	Target   string // Link, Image
	Title    string // Link, Image
	Note     []Block
	Display  bool // Math
	Double   bool // Quoted
	Tag      string
}

// PlainText flattens inlines into text the way it would be read.
func PlainText(inlines []Inline) string {
	var buf strings.Builder
	writePlainText(&buf, inlines)
	return buf.String()
}

func writePlainText(buf *strings.Builder, inlines []Inline) {
	for i := range inlines {
		in := &inlines[i]
		switch in.Kind {
		case InlineStr, InlineCode, InlineMath:
			buf.WriteString(in.Text)
		case InlineSpace, InlineSoftBreak:
			buf.WriteByte(' ')
		case InlineLineBreak:
			buf.WriteByte('\n')
		case InlineQuoted:
			open, closing := QuoteGlyphs(in.Double)
			buf.WriteString(open)
			writePlainText(buf, in.Children)
			buf.WriteString(closing)
		case InlineNote, InlineRaw, InlineUnknown:
		default:
			writePlainText(buf, in.Children)
		}
	}
}

// BlocksPlainText flattens paragraph-like blocks separated by spaces.
func BlocksPlainText(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for i := range blocks {
		switch blocks[i].Kind {
		case BlockPara, BlockPlain, BlockHeader:
			if s := PlainText(blocks[i].Inlines); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

// QuoteGlyphs returns opening and closing quotation marks.
func QuoteGlyphs(double bool) (string, string) {
	if double {
		return "“", "”"
	}
	return "‘", "’"
}
