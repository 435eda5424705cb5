package hwpx

import (
	"time"

	"go.uber.org/zap"

	"pandoc2hwpx/config"
	"pandoc2hwpx/pandoc"
)

// conversion holds all mutable state of a single document conversion.
type conversion struct {
	cfg config.DocumentConfig
	log *zap.Logger
	now func() time.Time

	styles     *styleCache
	headings   map[int]headingStyle
	images     *imageRegistry
	sizes      sizePolicy
	borderFill int

	// reference templates keep their own normal style, lists is nil when
	// markers are rendered as text
	reference bool
	normal    headingStyle
	lists     *numberings

	paraID int64
	instID int
}

func newConversion(cfg config.DocumentConfig, tmpl *templateInfo, inputDir string, now func() time.Time, log *zap.Logger) *conversion {
	if now == nil {
		now = time.Now
	}
	headings := make(map[int]headingStyle, len(defaultHeadingStyles))
	for level, hs := range defaultHeadingStyles {
		headings[level] = hs
	}
	for level, hs := range tmpl.outlineStyles {
		headings[level] = hs
	}
	var lists *numberings
	if !tmpl.builtin && tmpl.normalParaPr {
		lists = newNumberings(tmpl)
	}
	return &conversion{
		cfg:        cfg,
		log:        log,
		now:        now,
		styles:     newStyleCache(tmpl.maxCharPr),
		headings:   headings,
		images:     newImageRegistry(inputDir, log),
		sizes:      sizePolicy{pageWidth: cfg.Layout.PageTextWidth, defaultSize: cfg.Images.DefaultSize},
		borderFill: tmpl.maxBorderFill + 1,
		reference:  !tmpl.builtin,
		normal:     tmpl.normal,
		lists:      lists,
		paraID:     firstParagraphID,
		instID:     1,
	}
}

func (c *conversion) nextParaID() int64 {
	id := c.paraID
	c.paraID++
	return id
}

func (c *conversion) nextInstID() int {
	id := c.instID
	c.instID++
	return id
}

func (c *conversion) heading(level int) headingStyle {
	if hs, ok := c.headings[level]; ok {
		return hs
	}
	return headingStyle{}
}

// newParagraph starts a body paragraph in the given character style.
func (c *conversion) newParagraph(charPr int, ctx blockContext) *paragraph {
	return &paragraph{
		id:       c.nextParaID(),
		indent:   indentString(ctx.indent),
		indentPr: charPr,
		height:   c.styles.charHeight(charPr, c.cfg.Layout.CharHeight),
		width:    ctx.width,
	}
}

// displayParagraph is a title block line. Built-in skeleton has fixed styles
// for them, reference templates get bold variant of their normal style.
func (c *conversion) displayParagraph(text string, fixed int, ctx blockContext) *paragraph {
	if !c.reference {
		return c.textParagraph(text, fixed, ctx)
	}
	p := c.textParagraph(text, c.styles.intern(c.normal.CharPr, FormatBold), ctx)
	p.paraPr, p.style = c.normal.ParaPr, c.normal.Style
	return p
}

// textParagraph is a single run paragraph, empty text still produces a run.
func (c *conversion) textParagraph(text string, charPr int, ctx blockContext) *paragraph {
	p := c.newParagraph(charPr, ctx)
	p.runs = []run{{kind: runText, charPr: charPr, text: text}}
	p.text = text
	return p
}

// Compose builds body paragraphs for the whole document: title block,
// optional table of contents and body blocks.
func (c *conversion) Compose(doc *pandoc.Document) []*paragraph {
	ctx := c.bodyContext()

	var out []*paragraph
	out = append(out, c.titleBlock(doc.Meta, ctx)...)
	if doc.Meta.TOC || c.cfg.TOC.Enable {
		out = append(out, c.tocBlock(doc.Blocks, ctx)...)
	}
	out = append(out, c.blocks(doc.Blocks, ctx)...)
	if len(out) == 0 {
		out = append(out, c.textParagraph("", charPrNormal, ctx))
	}
	return out
}

func (c *conversion) bodyContext() blockContext {
	return blockContext{width: c.cfg.Layout.PageTextWidth}
}
