package pandoc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// ErrNotPandoc is returned when input is not pandoc JSON document.
var ErrNotPandoc = errors.New("not a pandoc JSON document")

// every pandoc-types release so far is 1.x
const supportedAPIMajor = 1

// Parse builds Document Tree from pandoc JSON AST (pandoc -t json). Unknown
// node kinds are kept as placeholders and reported at debug level.
func Parse(data []byte, log *zap.Logger) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON: %w", ErrNotPandoc)
	}
	root := gjson.ParseBytes(data)

	blocks := root.Get("blocks")
	if !root.IsObject() || !blocks.IsArray() {
		// pre 1.18 pandoc produced top level array, we do not support it
		return nil, fmt.Errorf("no blocks array: %w", ErrNotPandoc)
	}

	version := root.Get("pandoc-api-version")
	if !version.IsArray() || len(version.Array()) == 0 {
		return nil, fmt.Errorf("no pandoc-api-version: %w", ErrNotPandoc)
	}

	p := &parser{log: log, unknown: make(map[string]int)}

	doc := &Document{}
	for _, v := range version.Array() {
		doc.APIVersion = append(doc.APIVersion, int(v.Int()))
	}
	if doc.APIVersion[0] != supportedAPIMajor {
		return nil, fmt.Errorf("unsupported pandoc API version %v: %w", doc.APIVersion, ErrNotPandoc)
	}
	doc.Meta = p.meta(root.Get("meta"))
	doc.Blocks = p.blocks(blocks)

	for tag, count := range p.unknown {
		log.Debug("Unsupported node kind will be skipped", zap.String("kind", tag), zap.Int("count", count))
	}
	return doc, nil
}

type parser struct {
	log     *zap.Logger
	unknown map[string]int
}

func (p *parser) meta(v gjson.Result) Meta {
	m := Meta{
		Title:    p.metaText(v.Get("title")),
		Subtitle: p.metaText(v.Get("subtitle")),
		Author:   p.metaText(v.Get("author")),
		Date:     p.metaText(v.Get("date")),
	}
	for _, key := range []string{"toc", "table-of-contents"} {
		if p.metaBool(v.Get(key)) {
			m.TOC = true
		}
	}
	return m
}

func (p *parser) metaText(v gjson.Result) string {
	if !v.Exists() {
		return ""
	}
	c := v.Get("c")
	switch v.Get("t").String() {
	case "MetaString":
		return norm.NFC.String(c.String())
	case "MetaInlines":
		return PlainText(p.inlines(c))
	case "MetaBlocks":
		return BlocksPlainText(p.blocks(c))
	case "MetaList":
		parts := make([]string, 0, len(c.Array()))
		for _, item := range c.Array() {
			if s := p.metaText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case "MetaMap":
		return p.metaText(c.Get("name"))
	case "MetaBool":
		return strconv.FormatBool(c.Bool())
	}
	return ""
}

func (p *parser) metaBool(v gjson.Result) bool {
	switch v.Get("t").String() {
	case "MetaBool":
		return v.Get("c").Bool()
	case "MetaString", "MetaInlines":
		b, _ := strconv.ParseBool(p.metaText(v))
		return b
	}
	return false
}

func parseAttr(v gjson.Result) Attr {
	a := Attr{ID: v.Get("0").String()}
	for _, c := range v.Get("1").Array() {
		a.Classes = append(a.Classes, c.String())
	}
	if kv := v.Get("2").Array(); len(kv) > 0 {
		a.KV = make(map[string]string, len(kv))
		for _, pair := range kv {
			a.KV[pair.Get("0").String()] = pair.Get("1").String()
		}
	}
	return a
}

func (p *parser) blocks(v gjson.Result) []Block {
	arr := v.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]Block, 0, len(arr))
	for _, item := range arr {
		out = append(out, p.block(item))
	}
	return out
}

func (p *parser) block(v gjson.Result) Block {
	tag := v.Get("t").String()
	c := v.Get("c")

	b := Block{Kind: BlockKind(tag)}
	switch b.Kind {
	case BlockPara, BlockPlain:
		b.Inlines = p.inlines(c)
	case BlockHeader:
		b.Level = int(c.Get("0").Int())
		b.Attr = parseAttr(c.Get("1"))
		b.Inlines = p.inlines(c.Get("2"))
	case BlockCode:
		b.Attr = parseAttr(c.Get("0"))
		b.Text = c.Get("1").String()
	case BlockRaw:
		b.Format = c.Get("0").String()
		b.Text = c.Get("1").String()
	case BlockBulletList:
		b.Items = p.items(c)
	case BlockOrderedList:
		b.ListStart = int(c.Get("0.0").Int())
		if b.ListStart < 1 {
			b.ListStart = 1
		}
		b.Items = p.items(c.Get("1"))
	case BlockQuote:
		b.Blocks = p.blocks(c)
	case BlockHorizontalRule:
	case BlockDiv:
		b.Attr = parseAttr(c.Get("0"))
		b.Blocks = p.blocks(c.Get("1"))
		b.Wrapper = classifyDiv(b.Attr)
	case BlockFigure:
		b.Attr = parseAttr(c.Get("0"))
		b.Blocks = p.blocks(c.Get("2"))
		b.Wrapper = Wrapper{Kind: WrapperFigure, Caption: p.blocks(c.Get("1.1"))}
	case BlockDefinitionList:
		for _, item := range c.Array() {
			b.Definitions = append(b.Definitions, Definition{
				Term:        p.inlines(item.Get("0")),
				Definitions: p.items(item.Get("1")),
			})
		}
	case BlockLineBlock:
		for _, line := range c.Array() {
			b.Lines = append(b.Lines, p.inlines(line))
		}
	case BlockTable:
		b.Attr = parseAttr(c.Get("0"))
		b.Table = p.table(c)
	default:
		p.unknown[tag]++
		b = Block{Kind: BlockUnknown, Tag: tag}
	}
	return b
}

func (p *parser) items(v gjson.Result) [][]Block {
	arr := v.Array()
	out := make([][]Block, 0, len(arr))
	for _, item := range arr {
		out = append(out, p.blocks(item))
	}
	return out
}

func (p *parser) table(c gjson.Result) *Table {
	parts := c.Array()
	if len(parts) == 5 {
		return p.legacyTable(parts)
	}
	if len(parts) < 6 {
		return &Table{}
	}

	t := &Table{
		Caption: p.blocks(parts[1].Get("1")),
		Columns: len(parts[2].Array()),
	}
	t.HeadRows = p.rows(parts[3].Get("1"))
	for _, body := range parts[4].Array() {
		// intermediate head rows go first, then body rows
		t.BodyRows = append(t.BodyRows, p.rows(body.Get("2"))...)
		t.BodyRows = append(t.BodyRows, p.rows(body.Get("3"))...)
	}
	t.FootRows = p.rows(parts[5].Get("1"))
	return t
}

func (p *parser) rows(v gjson.Result) []Row {
	var out []Row
	for _, row := range v.Array() {
		r := Row{}
		for _, cell := range row.Get("1").Array() {
			r.Cells = append(r.Cells, Cell{
				RowSpan: max(int(cell.Get("2").Int()), 1),
				ColSpan: max(int(cell.Get("3").Int()), 1),
				Blocks:  p.blocks(cell.Get("4")),
			})
		}
		out = append(out, r)
	}
	return out
}

// legacyTable handles pandoc < 2.10 layout: caption, aligns, widths,
// header cells, rows.
func (p *parser) legacyTable(parts []gjson.Result) *Table {
	t := &Table{Columns: len(parts[1].Array())}
	if caption := p.inlines(parts[0]); len(caption) > 0 {
		t.Caption = []Block{{Kind: BlockPlain, Inlines: caption}}
	}

	row := func(v gjson.Result) Row {
		r := Row{}
		for _, cell := range v.Array() {
			r.Cells = append(r.Cells, Cell{RowSpan: 1, ColSpan: 1, Blocks: p.blocks(cell)})
		}
		return r
	}

	head := row(parts[3])
	hasHead := false
	for _, cell := range head.Cells {
		if len(cell.Blocks) > 0 {
			hasHead = true
			break
		}
	}
	if hasHead {
		t.HeadRows = []Row{head}
	}
	for _, v := range parts[4].Array() {
		t.BodyRows = append(t.BodyRows, row(v))
	}
	return t
}

func (p *parser) inlines(v gjson.Result) []Inline {
	arr := v.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]Inline, 0, len(arr))
	for _, item := range arr {
		out = append(out, p.inline(item))
	}
	return out
}

func (p *parser) inline(v gjson.Result) Inline {
	tag := v.Get("t").String()
	c := v.Get("c")

	in := Inline{Kind: InlineKind(tag)}
	switch in.Kind {
	case InlineStr:
		in.Text = norm.NFC.String(c.String())
	case InlineSpace, InlineSoftBreak, InlineLineBreak:
	case InlineStrong, InlineEmph, InlineUnderline, InlineStrikeout,
		InlineSuperscript, InlineSubscript, InlineSmallCaps:
		in.Children = p.inlines(c)
	case InlineCode:
		in.Attr = parseAttr(c.Get("0"))
		in.Text = c.Get("1").String()
	case InlineLink, InlineImage:
		in.Attr = parseAttr(c.Get("0"))
		in.Children = p.inlines(c.Get("1"))
		in.Target = c.Get("2.0").String()
		in.Title = c.Get("2.1").String()
	case InlineNote:
		in.Note = p.blocks(c)
	case InlineMath:
		in.Display = c.Get("0.t").String() == "DisplayMath"
		in.Text = c.Get("1").String()
	case InlineQuoted:
		in.Double = c.Get("0.t").String() == "DoubleQuote"
		in.Children = p.inlines(c.Get("1"))
	case InlineCite:
		in.Children = p.inlines(c.Get("1"))
	case InlineSpan:
		in.Attr = parseAttr(c.Get("0"))
		in.Children = p.inlines(c.Get("1"))
	case InlineRaw:
		in.Format = c.Get("0").String()
		in.Text = c.Get("1").String()
	default:
		p.unknown[tag]++
		in = Inline{Kind: InlineUnknown, Tag: tag}
	}
	return in
}
