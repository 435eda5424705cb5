package hwpx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

type runKind int

const (
	runText runKind = iota
	runLineBreak
	// control is wrapped into hp:ctrl (fields, footnotes)
	runControl
	// object is placed into the run directly (pictures, equations, tables)
	runObject
)

type run struct {
	kind   runKind
	charPr int
	text   string
	elem   *etree.Element
	// tables are followed by an empty text element
	trailingText bool
}

// paragraph is an hp:p being assembled. Indent is rendered as a separate
// leading run in the base style.
type paragraph struct {
	id       int64
	paraPr   int
	style    int
	indent   string
	indentPr int
	runs     []run

	// flattened text for line segmentation, excluding indent
	text   string
	height int
	width  int

	// fixed replaces computed line segments, bare suppresses them
	fixed []lineSegment
	bare  bool
}

// prefix inserts list marker into the first text run, adding one when
// paragraph has none.
func (p *paragraph) prefix(marker string) {
	for i := range p.runs {
		if p.runs[i].kind == runText {
			p.runs[i].text = marker + p.runs[i].text
			p.text = marker + p.text
			return
		}
	}
	p.runs = append([]run{{kind: runText, charPr: p.indentPr, text: marker}}, p.runs...)
	p.text = marker + p.text
}

func (p *paragraph) segments(spacingPct int) []lineSegment {
	if p.fixed != nil {
		return p.fixed
	}
	return computeLineSegments(p.indent+p.text, lineMetrics{
		charHeight: p.height,
		spacingPct: spacingPct,
		horzSize:   p.width,
	})
}

func (p *paragraph) element(spacingPct int) *etree.Element {
	e := etree.NewElement("hp:p")
	setAttrs(e,
		"id", strconv.FormatInt(p.id, 10),
		"paraPrIDRef", strconv.Itoa(p.paraPr),
		"styleIDRef", strconv.Itoa(p.style),
		"pageBreak", "0",
		"columnBreak", "0",
		"merged", "0")

	if p.indent != "" {
		r := e.CreateElement("hp:run")
		r.CreateAttr("charPrIDRef", strconv.Itoa(p.indentPr))
		r.CreateElement("hp:t").SetText(p.indent)
	}
	for _, r := range p.runs {
		e.AddChild(r.element())
	}
	if !p.bare {
		e.AddChild(lineSegmentsElement(p.segments(spacingPct)))
	}
	return e
}

func (r run) element() *etree.Element {
	e := etree.NewElement("hp:run")
	e.CreateAttr("charPrIDRef", strconv.Itoa(r.charPr))
	switch r.kind {
	case runText:
		e.CreateElement("hp:t").SetText(r.text)
	case runLineBreak:
		e.CreateElement("hp:t").CreateElement("hp:lineBreak")
	case runControl:
		e.CreateElement("hp:ctrl").AddChild(r.elem)
	case runObject:
		e.AddChild(r.elem)
		if r.trailingText {
			e.CreateElement("hp:t")
		}
	}
	return e
}

// appendText adds text merging it into previous run of the same style.
func appendText(runs []run, charPr int, text string) []run {
	if text == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].kind == runText && runs[n-1].charPr == charPr {
		runs[n-1].text += text
		return runs
	}
	return append(runs, run{kind: runText, charPr: charPr, text: text})
}

func indentString(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(indentUnit, level)
}
