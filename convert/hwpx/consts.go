// Package hwpx assembles HWPX packages (Hancom word processor documents)
// from parsed Pandoc document trees.
package hwpx

import "errors"

// XML namespaces of the OWPML parts we produce.
const (
	nsHead      = "http://www.hancom.co.kr/hwpml/2011/head"
	nsParagraph = "http://www.hancom.co.kr/hwpml/2011/paragraph"
	nsCore      = "http://www.hancom.co.kr/hwpml/2011/core"
	nsSection   = "http://www.hancom.co.kr/hwpml/2011/section"
	nsOPF       = "http://www.idpf.org/2007/opf/"
)

// Package layout.
const (
	mimetypeName    = "mimetype"
	mimetypeContent = "application/hwp+zip"
	headerPath      = "Contents/header.xml"
	sectionPath     = "Contents/section0.xml"
	manifestPath    = "Contents/content.hpf"
	binDataDir      = "BinData"
)

// Fixed style ids of the built-in skeleton.
const (
	charPrNormal   = 0
	charPrTitle    = 7
	charPrSubtitle = 8
	charPrH3       = 9
	charPrCode     = 10

	// interned ids are never allocated at or below this one
	reservedCharPrMax = 10
)

const (
	firstParagraphID = 3121190099
	ruleGlyph        = "━"
	ruleLength       = 30
	indentUnit       = "　"
	imageToken       = "[image]"
)

// Line segment flags.
const (
	segSingle = 393216
	segFirst  = 131072
	segLast   = 262144
	segMiddle = 0
)

// Display equations get fixed line metrics.
const (
	equationHeight  = 1600
	equationSpacing = 125
)

// headingStyle is (style, paraPr, charPr) ids for a heading level.
type headingStyle struct {
	Style  int
	ParaPr int
	CharPr int
}

var defaultHeadingStyles = map[int]headingStyle{
	1: {2, 2, charPrTitle},
	2: {3, 3, charPrSubtitle},
	3: {4, 4, charPrH3},
	4: {5, 5, charPrNormal},
	5: {6, 6, charPrNormal},
	6: {7, 7, charPrNormal},
}

// charHeights are heights of the fixed character properties.
var charHeights = map[int]int{
	charPrNormal:   1000,
	charPrTitle:    2200,
	charPrSubtitle: 1600,
	charPrH3:       1300,
	charPrCode:     1000,
}

// headingSpacing is space before heading paragraphs keyed by level.
var headingSpacing = map[int]int{
	1: 800,
	2: 600,
	3: 400,
}

var (
	// ErrTemplateMissing is returned when the reference package cannot be used.
	ErrTemplateMissing = errors.New("hwpx template is missing or incomplete")
	// ErrArchiverUnavailable is returned when package extraction or
	// compression cannot be performed at all.
	ErrArchiverUnavailable = errors.New("archiver is not available")

	ErrSpanOverlap     = errors.New("table cell overlaps occupied cell")
	ErrSpanOutOfBounds = errors.New("table cell span exceeds grid")
	ErrGridGap         = errors.New("table grid position left uncovered")
)
