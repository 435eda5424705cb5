package hwpx

import (
	"strings"

	"github.com/beevik/etree"

	"pandoc2hwpx/pandoc"
)

// titleBlock renders document metadata followed by a blank separator.
func (c *conversion) titleBlock(m pandoc.Meta, ctx blockContext) []*paragraph {
	var out []*paragraph
	if m.Title != "" {
		out = append(out, c.displayParagraph(m.Title, charPrTitle, ctx))
	}
	if m.Subtitle != "" {
		out = append(out, c.displayParagraph(m.Subtitle, charPrSubtitle, ctx))
	}
	var byline []string
	for _, s := range []string{m.Author, m.Date} {
		if s != "" {
			byline = append(byline, s)
		}
	}
	if len(byline) > 0 {
		out = append(out, c.textParagraph(strings.Join(byline, " | "), charPrNormal, ctx))
	}
	if len(out) > 0 {
		out = append(out, c.textParagraph("", charPrNormal, ctx))
	}
	return out
}

type tocEntry struct {
	level int
	text  string
}

// collectHeadings finds headers recursively, looking into wrappers only.
func collectHeadings(blocks []pandoc.Block) []tocEntry {
	var out []tocEntry
	for i := range blocks {
		switch b := &blocks[i]; b.Kind {
		case pandoc.BlockHeader:
			out = append(out, tocEntry{level: b.Level, text: pandoc.PlainText(b.Inlines)})
		case pandoc.BlockDiv:
			out = append(out, collectHeadings(b.Blocks)...)
		}
	}
	return out
}

// tocBlock renders static table of contents. Top level entries are bold,
// deeper ones are indented relative to the shallowest heading.
func (c *conversion) tocBlock(blocks []pandoc.Block, ctx blockContext) []*paragraph {
	entries := collectHeadings(blocks)
	if len(entries) == 0 {
		return nil
	}

	out := []*paragraph{
		c.displayParagraph(c.cfg.TOC.Title, charPrSubtitle, ctx),
		c.textParagraph("", charPrNormal, ctx),
	}

	top := entries[0].level
	for _, e := range entries[1:] {
		top = min(top, e.level)
	}
	for _, e := range entries {
		rel := e.level - top
		style := charPrNormal
		if rel == 0 {
			style = c.styles.intern(charPrNormal, FormatBold)
		}
		out = append(out, c.textParagraph(strings.Repeat(indentUnit, rel)+e.text, style, ctx))
	}

	return append(out,
		c.textParagraph("", charPrNormal, ctx),
		c.textParagraph(strings.Repeat(ruleGlyph, ruleLength), charPrNormal, ctx),
		c.textParagraph("", charPrNormal, ctx),
	)
}

// buildSection replaces body of the template section keeping its root and
// first paragraph, which carries page setup.
func buildSection(tmpl *etree.Document, body []*paragraph, spacingPct int) (*etree.Document, error) {
	doc := tmpl.Copy()
	sec := doc.Root()
	if sec == nil || sec.Tag != "sec" {
		return nil, ErrTemplateMissing
	}

	var first *etree.Element
	for _, child := range sec.ChildElements() {
		if first == nil && child.Tag == "p" {
			first = child
			continue
		}
		sec.RemoveChild(child)
	}
	if first == nil {
		return nil, ErrTemplateMissing
	}

	for _, p := range body {
		sec.AddChild(p.element(spacingPct))
	}
	return doc, nil
}
