package hwpx

import (
	"slices"
	"strconv"

	"github.com/beevik/etree"

	"pandoc2hwpx/config"
)

// Language slots of font faces and per language attributes, in document order.
var fontLangs = []struct {
	lang, attr string
}{
	{"HANGUL", "hangul"},
	{"LATIN", "latin"},
	{"HANJA", "hanja"},
	{"JAPANESE", "japanese"},
	{"OTHER", "other"},
	{"SYMBOL", "symbol"},
	{"USER", "user"},
}

func primaryFont(f config.FontsConfig, lang string) string {
	switch lang {
	case "HANGUL":
		return f.Hangul
	case "LATIN":
		return f.Latin
	case "HANJA":
		return f.Hanja
	case "JAPANESE":
		return f.Japanese
	case "SYMBOL":
		return f.Symbol
	case "USER":
		return f.User
	default:
		return f.Other
	}
}

// children of hh:charPr in schema order
var charPrChildOrder = []string{
	"fontRef", "ratio", "spacing", "relSz", "offset",
	"italic", "bold", "underline", "strikeout", "outline", "shadow",
	"emboss", "engrave", "supscript", "subscript",
}

// fontRefs maps font attribute name (hangul, latin...) to font id.
type fontRefs map[string]int

func uniformFontRefs(id int) fontRefs {
	refs := make(fontRefs, len(fontLangs))
	for _, l := range fontLangs {
		refs[l.attr] = id
	}
	return refs
}

// updateHeader merges fonts, fixed and interned character properties, table
// border fill and heading spacing into header document.
func (c *conversion) updateHeader(header *etree.Document, builtin bool) *etree.Document {
	doc := header.Copy()
	root := doc.Root()

	if builtin {
		replaceFontFaces(root, c.cfg.Fonts)
	}
	codeRefs := ensureCodeFont(root, c.cfg.Fonts.Code)

	chars := refListChild(root, "charProperties")
	normal := uniformFontRefs(0)
	for _, fixed := range []struct {
		id, height int
		bold       bool
		refs       fontRefs
	}{
		{charPrTitle, charHeights[charPrTitle], true, normal},
		{charPrSubtitle, charHeights[charPrSubtitle], true, normal},
		{charPrH3, charHeights[charPrH3], false, normal},
		{charPrCode, c.cfg.Layout.CharHeight, false, codeRefs},
	} {
		if findByID(chars, "hh:charPr", fixed.id) == nil {
			chars.AddChild(newCharPr(fixed.id, fixed.height, fixed.bold, fixed.refs))
		}
	}

	for _, e := range c.styles.Entries() {
		var cp *etree.Element
		if base := findByID(chars, "hh:charPr", e.Base); base != nil {
			cp = base.Copy()
			cp.CreateAttr("id", strconv.Itoa(e.ID))
		} else {
			cp = newCharPr(e.ID, c.cfg.Layout.CharHeight, false, normal)
		}
		applyFormats(cp, e.Formats)
		chars.AddChild(cp)
	}
	recount(chars, "charPr")

	if c.lists != nil {
		c.lists.apply(root)
	}

	fills := refListChild(root, "borderFills")
	fills.AddChild(newTableBorderFill(c.borderFill))
	recount(fills, "borderFill")

	for level, value := range headingSpacing {
		id := c.heading(level).ParaPr
		pp := root.FindElement("//hh:paraProperties/hh:paraPr[@id='" + strconv.Itoa(id) + "']")
		if pp == nil || id == 0 {
			continue
		}
		for _, prev := range pp.FindElements(".//hc:prev") {
			if prev.SelectAttrValue("value", "0") == "0" {
				prev.CreateAttr("value", strconv.Itoa(value))
			}
		}
	}
	return doc
}

// refListChild finds or creates a list under hh:refList.
func refListChild(root *etree.Element, name string) *etree.Element {
	if e := root.FindElement("//hh:" + name); e != nil {
		return e
	}
	parent := root.FindElement("//hh:refList")
	if parent == nil {
		parent = root.CreateElement("hh:refList")
	}
	return parent.CreateElement("hh:" + name)
}

func findByID(parent *etree.Element, tag string, id int) *etree.Element {
	if parent == nil {
		return nil
	}
	want := strconv.Itoa(id)
	for _, e := range parent.SelectElements(tag) {
		if e.SelectAttrValue("id", "") == want {
			return e
		}
	}
	return nil
}

func recount(parent *etree.Element, child string) {
	parent.CreateAttr("itemCnt", strconv.Itoa(len(parent.SelectElements("hh:"+child))))
}

// maxID returns the largest numeric id among children, -1 when there are none.
func maxID(parent *etree.Element, tag string) int {
	maxID := -1
	if parent == nil {
		return maxID
	}
	for _, e := range parent.SelectElements(tag) {
		if id, err := strconv.Atoi(e.SelectAttrValue("id", "")); err == nil {
			maxID = max(maxID, id)
		}
	}
	return maxID
}

func replaceFontFaces(root *etree.Element, fonts config.FontsConfig) {
	for _, face := range root.FindElements("//hh:fontfaces/hh:fontface") {
		lang := face.SelectAttrValue("lang", "")
		for _, child := range face.ChildElements() {
			face.RemoveChild(child)
		}
		primary := primaryFont(fonts, lang)
		face.CreateAttr("fontCnt", "3")
		face.AddChild(newFont(0, primary))
		face.AddChild(newFont(1, primary))
		face.AddChild(newFont(2, fonts.Code))
	}
}

// ensureCodeFont makes sure every font face lists code font and returns its
// ids per language.
func ensureCodeFont(root *etree.Element, code string) fontRefs {
	refs := uniformFontRefs(0)
	for _, face := range root.FindElements("//hh:fontfaces/hh:fontface") {
		attr := ""
		for _, l := range fontLangs {
			if l.lang == face.SelectAttrValue("lang", "") {
				attr = l.attr
			}
		}
		if attr == "" {
			continue
		}
		found := -1
		for _, f := range face.SelectElements("hh:font") {
			if f.SelectAttrValue("face", "") == code {
				found, _ = strconv.Atoi(f.SelectAttrValue("id", "0"))
				break
			}
		}
		if found < 0 {
			found = maxID(face, "hh:font") + 1
			face.AddChild(newFont(found, code))
			face.CreateAttr("fontCnt", strconv.Itoa(len(face.SelectElements("hh:font"))))
		}
		refs[attr] = found
	}
	return refs
}

func newFont(id int, face string) *etree.Element {
	f := etree.NewElement("hh:font")
	setAttrs(f, "id", strconv.Itoa(id), "face", face, "type", "TTF", "isEmbedded", "0")
	setAttrs(f.CreateElement("hh:typeInfo"),
		"familyType", "FCAT_GOTHIC",
		"weight", "6",
		"proportion", "4",
		"contrast", "0",
		"strokeVariation", "1",
		"armStyle", "1",
		"letterform", "1",
		"midline", "1",
		"xHeight", "1")
	return f
}

func langAttrs(value func(attr string) string) []string {
	kv := make([]string, 0, 2*len(fontLangs))
	for _, l := range fontLangs {
		kv = append(kv, l.attr, value(l.attr))
	}
	return kv
}

func constant(v string) func(string) string {
	return func(string) string { return v }
}

func newCharPr(id, height int, bold bool, refs fontRefs) *etree.Element {
	cp := etree.NewElement("hh:charPr")
	setAttrs(cp,
		"id", strconv.Itoa(id),
		"height", strconv.Itoa(height),
		"textColor", "#000000",
		"shadeColor", "none",
		"useFontSpace", "0",
		"useKerning", "0",
		"symMark", "NONE",
		"borderFillIDRef", "2")
	setAttrs(cp.CreateElement("hh:fontRef"), langAttrs(func(attr string) string { return strconv.Itoa(refs[attr]) })...)
	setAttrs(cp.CreateElement("hh:ratio"), langAttrs(constant("100"))...)
	setAttrs(cp.CreateElement("hh:spacing"), langAttrs(constant("0"))...)
	setAttrs(cp.CreateElement("hh:relSz"), langAttrs(constant("100"))...)
	setAttrs(cp.CreateElement("hh:offset"), langAttrs(constant("0"))...)
	if bold {
		cp.CreateElement("hh:bold")
	}
	setAttrs(cp.CreateElement("hh:underline"), "type", "NONE", "shape", "SOLID", "color", "#000000")
	setAttrs(cp.CreateElement("hh:strikeout"), "shape", "NONE", "color", "#000000")
	setAttrs(cp.CreateElement("hh:outline"), "type", "NONE")
	setAttrs(cp.CreateElement("hh:shadow"), "type", "NONE", "color", "#C0C0C0", "offsetX", "10", "offsetY", "10")
	return cp
}

// childOf returns existing child or inserts a new one at its schema position.
func childOf(cp *etree.Element, name string) *etree.Element {
	if e := cp.SelectElement("hh:" + name); e != nil {
		return e
	}
	rank := slices.Index(charPrChildOrder, name)
	e := etree.NewElement("hh:" + name)
	for _, child := range cp.ChildElements() {
		if r := slices.Index(charPrChildOrder, child.Tag); r > rank {
			cp.InsertChildAt(child.Index(), e)
			return e
		}
	}
	cp.AddChild(e)
	return e
}

func applyFormats(cp *etree.Element, f Format) {
	color := "#000000"
	if f.Has(FormatColorBlue) {
		color = "#0000FF"
		cp.CreateAttr("textColor", color)
	}
	if f.Has(FormatBold) {
		childOf(cp, "bold")
	}
	if f.Has(FormatItalic) {
		childOf(cp, "italic")
	}
	if f.Has(FormatUnderline) {
		setAttrs(childOf(cp, "underline"), "type", "BOTTOM", "shape", "SOLID", "color", color)
	}
	if f.Has(FormatStrikeout) {
		setAttrs(childOf(cp, "strikeout"), "shape", "SOLID", "color", "#000000")
	}
	switch {
	case f.Has(FormatSuperscript):
		childOf(cp, "supscript")
	case f.Has(FormatSubscript):
		childOf(cp, "subscript")
	}
}

func newTableBorderFill(id int) *etree.Element {
	bf := etree.NewElement("hh:borderFill")
	setAttrs(bf,
		"id", strconv.Itoa(id),
		"threeD", "0",
		"shadow", "0",
		"centerLine", "NONE",
		"breakCellSeparateLine", "0")
	setAttrs(bf.CreateElement("hh:slash"), "type", "NONE", "Crooked", "0", "isCounter", "0")
	setAttrs(bf.CreateElement("hh:backSlash"), "type", "NONE", "Crooked", "0", "isCounter", "0")
	for _, side := range []string{"hh:leftBorder", "hh:rightBorder", "hh:topBorder", "hh:bottomBorder"} {
		setAttrs(bf.CreateElement(side), "type", "SOLID", "width", "0.12 mm", "color", "#000000")
	}
	setAttrs(bf.CreateElement("hh:diagonal"), "type", "NONE", "width", "0.12 mm", "color", "#000000")
	return bf
}
