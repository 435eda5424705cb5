package pandoc

import (
	"strings"

	"pandoc2hwpx/utils/debug"
)

// String returns indented dump of the whole tree for debug reports.
func (d *Document) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Document api=%v", d.APIVersion)
	tw.Line(1, "Meta toc=%t", d.Meta.TOC)
	tw.Text(2, "title", d.Meta.Title)
	tw.Text(2, "subtitle", d.Meta.Subtitle)
	tw.Text(2, "author", d.Meta.Author)
	tw.Text(2, "date", d.Meta.Date)
	dumpBlocks(tw, 1, d.Blocks)
	return tw.String()
}

func dumpAttr(tw *debug.TreeWriter, depth int, a Attr) {
	if a.ID != "" {
		tw.Text(depth, "id", a.ID)
	}
	if len(a.Classes) > 0 {
		tw.Line(depth, "classes: %s", strings.Join(a.Classes, " "))
	}
	tw.Map(depth, "kv", a.KV)
}

func dumpBlocks(tw *debug.TreeWriter, depth int, blocks []Block) {
	for i := range blocks {
		dumpBlock(tw, depth, &blocks[i])
	}
}

func dumpBlock(tw *debug.TreeWriter, depth int, b *Block) {
	switch b.Kind {
	case BlockHeader:
		tw.Line(depth, "%s level=%d", b.Kind, b.Level)
	case BlockOrderedList:
		tw.Line(depth, "%s start=%d items=%d", b.Kind, b.ListStart, len(b.Items))
	case BlockDiv, BlockFigure:
		tw.Line(depth, "%s wrapper=%s%s", b.Kind, b.Wrapper.Kind, wrapperDetail(b.Wrapper))
	case BlockUnknown:
		tw.Line(depth, "%s tag=%s", b.Kind, b.Tag)
	default:
		tw.Line(depth, "%s", b.Kind)
	}
	dumpAttr(tw, depth+1, b.Attr)
	tw.Text(depth+1, "text", b.Text)
	dumpInlines(tw, depth+1, b.Inlines)
	dumpBlocks(tw, depth+1, b.Blocks)
	for i, item := range b.Items {
		tw.Line(depth+1, "item %d", i)
		dumpBlocks(tw, depth+2, item)
	}
	for _, def := range b.Definitions {
		tw.Line(depth+1, "term")
		dumpInlines(tw, depth+2, def.Term)
		for _, d := range def.Definitions {
			tw.Line(depth+2, "definition")
			dumpBlocks(tw, depth+3, d)
		}
	}
	for _, line := range b.Lines {
		tw.Line(depth+1, "line")
		dumpInlines(tw, depth+2, line)
	}
	if len(b.Wrapper.Caption) > 0 {
		tw.Line(depth+1, "caption")
		dumpBlocks(tw, depth+2, b.Wrapper.Caption)
	}
	if b.Table != nil {
		dumpTable(tw, depth+1, b.Table)
	}
}

func wrapperDetail(w Wrapper) string {
	switch {
	case w.Callout != "":
		return " callout=" + w.Callout
	case w.Stream != "":
		return " stream=" + w.Stream
	}
	return ""
}

func dumpTable(tw *debug.TreeWriter, depth int, t *Table) {
	tw.Line(depth, "columns=%d head=%d body=%d foot=%d", t.Columns, len(t.HeadRows), len(t.BodyRows), len(t.FootRows))
	if len(t.Caption) > 0 {
		tw.Line(depth, "caption")
		dumpBlocks(tw, depth+1, t.Caption)
	}
	for r, row := range t.Rows() {
		tw.Line(depth, "row %d", r)
		for _, cell := range row.Cells {
			tw.Line(depth+1, "cell span=%dx%d", cell.RowSpan, cell.ColSpan)
			dumpBlocks(tw, depth+2, cell.Blocks)
		}
	}
}

func dumpInlines(tw *debug.TreeWriter, depth int, inlines []Inline) {
	for i := range inlines {
		in := &inlines[i]
		switch in.Kind {
		case InlineStr, InlineCode, InlineRaw:
			tw.Line(depth, "%s %q", in.Kind, in.Text)
		case InlineSpace, InlineSoftBreak, InlineLineBreak:
			tw.Line(depth, "%s", in.Kind)
		case InlineMath:
			tw.Line(depth, "%s display=%t %q", in.Kind, in.Display, in.Text)
		case InlineLink, InlineImage:
			tw.Line(depth, "%s %q", in.Kind, in.Target)
			dumpAttr(tw, depth+1, in.Attr)
			dumpInlines(tw, depth+1, in.Children)
		case InlineNote:
			tw.Line(depth, "%s", in.Kind)
			dumpBlocks(tw, depth+1, in.Note)
		case InlineUnknown:
			tw.Line(depth, "%s tag=%s", in.Kind, in.Tag)
		default:
			tw.Line(depth, "%s", in.Kind)
			dumpInlines(tw, depth+1, in.Children)
		}
	}
}
