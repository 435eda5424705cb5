package hwpx

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"pandoc2hwpx/utils/images"
)

// HWPUNIT per millimeter.
const unitsPerMM = 283.465

var lengthRe = regexp.MustCompile(`^([0-9]*\.?[0-9]+)([a-z%]*)$`)

// millimeters per unit suffix, "%" is taken of a 150mm nominal page
var mmPerUnit = map[string]float64{
	"":   25.4 / 96,
	"px": 25.4 / 96,
	"in": 25.4,
	"cm": 10,
	"mm": 1,
	"pt": 25.4 / 72,
	"%":  1.5,
}

// parseLength converts author supplied length ("300px", "5cm", "50%") to
// HWPUNIT. Unknown suffixes are treated as pixels.
func parseLength(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	m := lengthRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	mm, ok := mmPerUnit[m[2]]
	if !ok {
		mm = mmPerUnit["px"]
	}
	return int(math.Round(v * mm * unitsPerMM)), true
}

func pixelsToUnits(px int) int {
	return int(math.Round(float64(px) * mmPerUnit["px"] * unitsPerMM))
}

// sizePolicy carries layout limits for image sizing.
type sizePolicy struct {
	pageWidth   int
	defaultSize int
}

// resolveImageSize reconciles author attributes with intrinsic pixel size.
// Intrinsic may be nil when the file is missing or its header unreadable.
func (p sizePolicy) resolveImageSize(widthAttr, heightAttr string, intrinsic *images.Size) (w, h int) {
	pw, haveW := parseLength(widthAttr)
	ph, haveH := parseLength(heightAttr)

	// intrinsic ratio as height/width, 1:1 when unknown
	rw, rh := 1, 1
	if intrinsic != nil && intrinsic.Width > 0 && intrinsic.Height > 0 {
		rw, rh = intrinsic.Width, intrinsic.Height
	}

	switch {
	case haveW && haveH:
		w, h = pw, ph
	case haveW:
		w, h = pw, int(int64(pw)*int64(rh)/int64(rw))
	case haveH:
		w, h = int(int64(ph)*int64(rw)/int64(rh)), ph
	case intrinsic != nil && intrinsic.Width > 0 && intrinsic.Height > 0:
		w, h = pixelsToUnits(intrinsic.Width), pixelsToUnits(intrinsic.Height)
	default:
		w, h = p.defaultSize, p.defaultSize
	}

	if p.pageWidth > 0 && w > p.pageWidth {
		h = int(int64(h) * int64(p.pageWidth) / int64(w))
		w = p.pageWidth
	}
	return w, h
}
