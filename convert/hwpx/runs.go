package hwpx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"pandoc2hwpx/pandoc"
)

var inlineFormats = map[pandoc.InlineKind]Format{
	pandoc.InlineStrong:      FormatBold,
	pandoc.InlineEmph:        FormatItalic,
	pandoc.InlineUnderline:   FormatUnderline,
	pandoc.InlineStrikeout:   FormatStrikeout,
	pandoc.InlineSuperscript: FormatSuperscript,
	pandoc.InlineSubscript:   FormatSubscript,
}

// inlineBuilder turns inline nodes into runs and flattened text.
type inlineBuilder struct {
	c    *conversion
	base int
	ctx  blockContext

	runs []run
	text strings.Builder
}

func (c *conversion) inlines(inlines []pandoc.Inline, base int, ctx blockContext) ([]run, string) {
	b := &inlineBuilder{c: c, base: base, ctx: ctx}
	b.walk(inlines, 0)
	return b.runs, b.text.String()
}

func (b *inlineBuilder) addText(formats Format, s string) {
	b.runs = appendText(b.runs, b.c.styles.intern(b.base, formats), s)
	b.text.WriteString(s)
}

func (b *inlineBuilder) walk(inlines []pandoc.Inline, active Format) {
	for i := range inlines {
		in := &inlines[i]
		switch in.Kind {
		case pandoc.InlineStr:
			b.addText(active, in.Text)
		case pandoc.InlineSpace, pandoc.InlineSoftBreak:
			b.addText(active, " ")
		case pandoc.InlineLineBreak:
			b.runs = append(b.runs, run{kind: runLineBreak, charPr: b.c.styles.intern(b.base, active)})
			b.text.WriteString("\n")
		case pandoc.InlineStrong, pandoc.InlineEmph, pandoc.InlineUnderline,
			pandoc.InlineStrikeout, pandoc.InlineSuperscript, pandoc.InlineSubscript:
			b.walk(in.Children, active.With(inlineFormats[in.Kind]))
		case pandoc.InlineSmallCaps, pandoc.InlineSpan, pandoc.InlineCite:
			b.walk(in.Children, active)
		case pandoc.InlineCode:
			b.runs = appendText(b.runs, b.c.styles.intern(charPrCode, active), in.Text)
			b.text.WriteString(in.Text)
		case pandoc.InlineQuoted:
			open, closing := pandoc.QuoteGlyphs(in.Double)
			b.addText(active, open)
			b.walk(in.Children, active)
			b.addText(active, closing)
		case pandoc.InlineLink:
			b.link(in, active)
		case pandoc.InlineImage:
			b.runs = append(b.runs, b.c.picture(in, b.c.styles.intern(b.base, active)))
			b.text.WriteString(imageToken)
		case pandoc.InlineNote:
			b.runs = append(b.runs, run{kind: runControl, charPr: charPrNormal, elem: b.c.footnote(in.Note)})
		case pandoc.InlineMath:
			b.runs = append(b.runs, run{kind: runObject, charPr: b.c.styles.intern(b.base, active), elem: newEquation(in.Text)})
			b.text.WriteString(in.Text)
		case pandoc.InlineRaw:
		default:
			b.c.log.Debug("Skipping unsupported inline", zap.String("kind", string(in.Kind)), zap.String("tag", in.Tag))
		}
	}
}

func (b *inlineBuilder) link(in *pandoc.Inline, active Format) {
	id := b.c.nextInstID()
	b.runs = append(b.runs, run{kind: runControl, charPr: charPrNormal, elem: newFieldBegin(id, in.Target)})
	b.walk(in.Children, active.With(FormatUnderline|FormatColorBlue))
	b.runs = append(b.runs, run{kind: runControl, charPr: charPrNormal, elem: newFieldEnd(id)})
}

func (c *conversion) picture(in *pandoc.Inline, charPr int) run {
	a := c.images.register(in.Target)
	w, h := c.sizes.resolveImageSize(in.Attr.Value("width"), in.Attr.Value("height"), a.Size)
	return run{kind: runObject, charPr: charPr, elem: newPicture(a, c.nextInstID(), c.nextInstID(), w, h)}
}

func (c *conversion) footnote(blocks []pandoc.Block) *etree.Element {
	id := c.nextInstID()

	fn := etree.NewElement("hp:footNote")
	setAttrs(fn, "number", "0", "instId", strconv.Itoa(id))
	setAttrs(fn.CreateElement("hp:autoNum"), "num", "0", "numType", "FOOTNOTE")

	sub := newSubList(fn, id, "TOP")
	for _, p := range c.blocks(blocks, c.bodyContext()) {
		sub.AddChild(p.element(c.cfg.Layout.LineSpacing))
	}
	return fn
}

func newSubList(parent *etree.Element, id int, vertAlign string) *etree.Element {
	return setAttrs(parent.CreateElement("hp:subList"),
		"id", strconv.Itoa(id),
		"textDirection", "HORIZONTAL",
		"lineWrap", "BREAK",
		"vertAlign", vertAlign,
		"linkListIDRef", "0",
		"linkListNextIDRef", "0",
		"textWidth", "0",
		"textHeight", "0",
		"hasTextRef", "0",
		"hasNumRef", "0")
}

var commandEscaper = strings.NewReplacer(":", `\:`, "?", `\?`)

func newFieldBegin(id int, url string) *etree.Element {
	ids := strconv.Itoa(id)
	fb := etree.NewElement("hp:fieldBegin")
	setAttrs(fb,
		"id", ids,
		"type", "HYPERLINK",
		"name", "",
		"editable", "0",
		"dirty", "1",
		"zorder", "-1",
		"fieldid", ids,
		"metaTag", "")

	params := setAttrs(fb.CreateElement("hp:parameters"), "cnt", "6", "name", "")
	setAttrs(params.CreateElement("hp:integerParam"), "name", "Prop").SetText("0")
	for _, p := range [][2]string{
		{"Command", commandEscaper.Replace(url) + ";1;5;-1;"},
		{"Path", url},
		{"Category", "HWPHYPERLINK_TYPE_URL"},
		{"TargetType", "HWPHYPERLINK_TARGET_HYPERLINK"},
		{"DocOpenType", "HWPHYPERLINK_JUMP_DONTCARE"},
	} {
		setAttrs(params.CreateElement("hp:stringParam"), "name", p[0]).SetText(p[1])
	}
	return fb
}

func newFieldEnd(id int) *etree.Element {
	ids := strconv.Itoa(id)
	return setAttrs(etree.NewElement("hp:fieldEnd"), "beginIDRef", ids, "fieldid", ids)
}
