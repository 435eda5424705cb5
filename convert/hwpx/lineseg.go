package hwpx

import (
	"strconv"

	"github.com/beevik/etree"
)

// cjkThreshold separates full width code points from narrow ones.
const cjkThreshold = 0x2000

// lineSegment is layout metadata of one visual line of a paragraph.
type lineSegment struct {
	TextPos    int
	VertPos    int
	VertSize   int
	TextHeight int
	Baseline   int
	Spacing    int
	HorzPos    int
	HorzSize   int
	Flags      int
}

// lineMetrics are inputs of line segmentation.
type lineMetrics struct {
	charHeight int
	spacingPct int
	horzSize   int
}

// computeLineSegments splits text into visual lines using a simple width
// model: code points above cjkThreshold take full char height, others half.
// Text positions are rune offsets.
func computeLineSegments(text string, m lineMetrics) []lineSegment {
	h := m.charHeight
	spacing := h * (m.spacingPct - 100) / 100
	baseline := h * 85 / 100

	runes := []rune(text)
	starts := []int{0}
	width := 0
	for i, r := range runes {
		if r > cjkThreshold {
			width += h
		} else {
			width += h / 2
		}
		if width > m.horzSize && i+1 < len(runes) {
			starts = append(starts, i+1)
			width = 0
		}
	}

	segs := make([]lineSegment, 0, len(starts))
	for idx, pos := range starts {
		flags := segMiddle
		switch {
		case len(starts) == 1:
			flags = segSingle
		case idx == 0:
			flags = segFirst
		case idx == len(starts)-1:
			flags = segLast
		}
		segs = append(segs, lineSegment{
			TextPos:    pos,
			VertPos:    idx * (h + spacing),
			VertSize:   h,
			TextHeight: h,
			Baseline:   baseline,
			Spacing:    spacing,
			HorzSize:   m.horzSize,
			Flags:      flags,
		})
	}
	return segs
}

func lineSegmentsElement(segs []lineSegment) *etree.Element {
	arr := etree.NewElement("hp:linesegarray")
	for _, s := range segs {
		e := arr.CreateElement("hp:lineseg")
		e.CreateAttr("textpos", strconv.Itoa(s.TextPos))
		e.CreateAttr("vertpos", strconv.Itoa(s.VertPos))
		e.CreateAttr("vertsize", strconv.Itoa(s.VertSize))
		e.CreateAttr("textheight", strconv.Itoa(s.TextHeight))
		e.CreateAttr("baseline", strconv.Itoa(s.Baseline))
		e.CreateAttr("spacing", strconv.Itoa(s.Spacing))
		e.CreateAttr("horzpos", strconv.Itoa(s.HorzPos))
		e.CreateAttr("horzsize", strconv.Itoa(s.HorzSize))
		e.CreateAttr("flags", strconv.Itoa(s.Flags))
	}
	return arr
}
