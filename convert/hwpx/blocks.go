package hwpx

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pandoc2hwpx/pandoc"
)

// blockContext is nesting state passed down the block tree by value.
type blockContext struct {
	indent    int
	listDepth int
	width     int
}

func (ctx blockContext) nested() blockContext {
	ctx.indent++
	return ctx
}

func (ctx blockContext) list() blockContext {
	ctx.indent++
	ctx.listDepth++
	return ctx
}

var bulletGlyphs = []string{"•", "◦", "▪", "‣"}

// Hangul syllable ordinals used by Korean documents for list numbering.
var hangulOrdinals = []rune("가나다라마바사아자차카타파하")

func hangulOrdinal(n int) string {
	if n >= 1 && n <= len(hangulOrdinals) {
		return string(hangulOrdinals[n-1])
	}
	return strconv.Itoa(n)
}

// orderedMarker returns list item prefix for nesting depth (zero based).
func orderedMarker(depth, n int) string {
	switch depth % 4 {
	case 1:
		return hangulOrdinal(n) + ". "
	case 2:
		return "(" + strconv.Itoa(n) + ") "
	case 3:
		return "(" + hangulOrdinal(n) + ") "
	default:
		return strconv.Itoa(n) + ". "
	}
}

func bulletMarker(depth int) string {
	return bulletGlyphs[depth%len(bulletGlyphs)] + " "
}

func (c *conversion) blocks(blocks []pandoc.Block, ctx blockContext) []*paragraph {
	var out []*paragraph
	for i := range blocks {
		out = append(out, c.block(&blocks[i], ctx)...)
	}
	return out
}

func (c *conversion) block(b *pandoc.Block, ctx blockContext) []*paragraph {
	switch b.Kind {
	case pandoc.BlockPara, pandoc.BlockPlain:
		return []*paragraph{c.para(b.Inlines, ctx)}
	case pandoc.BlockHeader:
		return []*paragraph{c.header(b, ctx)}
	case pandoc.BlockCode:
		return c.codeBlock(b.Text, ctx)
	case pandoc.BlockBulletList:
		if c.lists != nil {
			return c.nativeList(b, numberingBullet, ctx)
		}
		var out []*paragraph
		for _, item := range b.Items {
			out = append(out, c.listItem(item, bulletMarker(ctx.listDepth), ctx)...)
		}
		return out
	case pandoc.BlockOrderedList:
		if c.lists != nil {
			return c.nativeList(b, numberingOrdered, ctx)
		}
		var out []*paragraph
		for i, item := range b.Items {
			out = append(out, c.listItem(item, orderedMarker(ctx.listDepth, b.ListStart+i), ctx)...)
		}
		return out
	case pandoc.BlockQuote:
		return c.blocks(b.Blocks, ctx.nested())
	case pandoc.BlockDefinitionList:
		var out []*paragraph
		for _, d := range b.Definitions {
			out = append(out, c.textParagraph(pandoc.PlainText(d.Term), charPrNormal, ctx))
			for _, def := range d.Definitions {
				out = append(out, c.blocks(def, ctx.nested())...)
			}
		}
		return out
	case pandoc.BlockLineBlock:
		out := make([]*paragraph, 0, len(b.Lines))
		for _, line := range b.Lines {
			out = append(out, c.textParagraph(pandoc.PlainText(line), charPrNormal, ctx))
		}
		return out
	case pandoc.BlockHorizontalRule:
		return []*paragraph{c.textParagraph(strings.Repeat(ruleGlyph, ruleLength), charPrNormal, ctx)}
	case pandoc.BlockTable:
		return c.table(b.Table, ctx)
	case pandoc.BlockDiv, pandoc.BlockFigure:
		return c.wrapper(b, ctx)
	case pandoc.BlockRaw:
		return nil
	default:
		c.log.Debug("Skipping unsupported block", zap.String("kind", string(b.Kind)), zap.String("tag", b.Tag))
		return nil
	}
}

// para handles Para and Plain. Sole display math or sole image get their
// own object paragraphs.
func (c *conversion) para(inlines []pandoc.Inline, ctx blockContext) *paragraph {
	if len(inlines) == 1 {
		switch in := &inlines[0]; {
		case in.Kind == pandoc.InlineMath && in.Display:
			return c.equationParagraph(in.Text, ctx)
		case in.Kind == pandoc.InlineImage:
			p := c.newParagraph(charPrNormal, blockContext{width: ctx.width})
			p.runs = []run{c.picture(in, charPrNormal)}
			return p
		}
	}

	p := c.newParagraph(charPrNormal, ctx)
	p.runs, p.text = c.inlines(inlines, charPrNormal, ctx)
	return p
}

func (c *conversion) equationParagraph(latex string, ctx blockContext) *paragraph {
	p := c.newParagraph(charPrNormal, blockContext{width: ctx.width})
	p.runs = []run{{kind: runObject, charPr: charPrNormal, elem: newEquation(latex)}}
	p.height = equationHeight
	p.fixed = computeLineSegments("", lineMetrics{
		charHeight: equationHeight,
		spacingPct: equationSpacing,
		horzSize:   ctx.width,
	})
	return p
}

func (c *conversion) header(b *pandoc.Block, ctx blockContext) *paragraph {
	hs := c.heading(b.Level)
	p := c.newParagraph(hs.CharPr, blockContext{width: ctx.width})
	p.paraPr, p.style = hs.ParaPr, hs.Style
	p.runs, p.text = c.inlines(b.Inlines, hs.CharPr, ctx)
	return p
}

func (c *conversion) codeBlock(text string, ctx blockContext) []*paragraph {
	lines := strings.Split(text, "\n")
	out := make([]*paragraph, 0, len(lines))
	for _, line := range lines {
		out = append(out, c.textParagraph(line, c.styles.intern(charPrCode, 0), ctx))
	}
	return out
}

func (c *conversion) listItem(item []pandoc.Block, marker string, ctx blockContext) []*paragraph {
	out := c.blocks(item, ctx.list())
	if len(out) == 0 {
		// empty item still shows its marker
		p := c.newParagraph(charPrNormal, ctx.list())
		p.prefix(marker)
		return []*paragraph{p}
	}
	out[0].prefix(marker)
	return out
}

// nativeList renders list paragraphs referencing header numbering, markers
// and indentation come from paragraph properties. Blocks other than text
// keep their usual rendering.
func (c *conversion) nativeList(b *pandoc.Block, kind numberingKind, ctx blockContext) []*paragraph {
	level := ctx.listDepth
	paraPr := c.lists.paraPr(c.lists.add(kind, b.ListStart, level), level)
	inner := ctx
	inner.listDepth++

	var out []*paragraph
	for _, item := range b.Items {
		if len(item) == 0 {
			out = append(out, c.listParagraph(nil, paraPr, ctx))
			continue
		}
		for i := range item {
			switch blk := &item[i]; blk.Kind {
			case pandoc.BlockPara, pandoc.BlockPlain:
				out = append(out, c.listParagraph(blk.Inlines, paraPr, ctx))
			default:
				out = append(out, c.block(blk, inner)...)
			}
		}
	}
	return out
}

func (c *conversion) listParagraph(inlines []pandoc.Inline, paraPr int, ctx blockContext) *paragraph {
	var p *paragraph
	if len(inlines) == 0 {
		p = c.textParagraph("", charPrNormal, blockContext{width: ctx.width})
	} else {
		p = c.para(inlines, blockContext{width: ctx.width})
	}
	p.paraPr, p.style = paraPr, c.normal.Style
	return p
}

func (c *conversion) wrapper(b *pandoc.Block, ctx blockContext) []*paragraph {
	switch b.Wrapper.Kind {
	case pandoc.WrapperFigure:
		out := c.blocks(b.Blocks, ctx)
		if caption := pandoc.BlocksPlainText(b.Wrapper.Caption); caption != "" {
			out = append(out, c.textParagraph(caption, charPrNormal, ctx))
		}
		return out
	case pandoc.WrapperCodeCell:
		if b.Wrapper.Stream == "stderr" && !c.cfg.Stderr.Render() {
			c.log.Debug("Skipping code cell stderr output", zap.String("id", b.Attr.ID))
			return nil
		}
		return c.blocks(b.Blocks, ctx)
	default:
		return c.blocks(b.Blocks, ctx)
	}
}
