package hwpx

import (
	"strings"
)

// Format is a set of inline formatting flags.
type Format uint8

const (
	FormatBold Format = 1 << iota
	FormatItalic
	FormatUnderline
	FormatStrikeout
	FormatSuperscript
	FormatSubscript
	FormatColorBlue
)

var formatNames = []struct {
	f    Format
	name string
}{
	{FormatBold, "BOLD"},
	{FormatColorBlue, "COLOR_BLUE"},
	{FormatItalic, "ITALIC"},
	{FormatStrikeout, "STRIKEOUT"},
	{FormatSubscript, "SUBSCRIPT"},
	{FormatSuperscript, "SUPERSCRIPT"},
	{FormatUnderline, "UNDERLINE"},
}

func (f Format) Has(x Format) bool {
	return f&x == x
}

// With returns a new set, receiver is never changed.
func (f Format) With(x Format) Format {
	return f | x
}

// String returns sorted flag names joined with "+".
func (f Format) String() string {
	if f == 0 {
		return "NONE"
	}
	var names []string
	for _, n := range formatNames {
		if f.Has(n.f) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "+")
}

type styleKey struct {
	base    int
	formats Format
}

// styleEntry is a character property allocated during conversion.
type styleEntry struct {
	ID      int
	Base    int
	Formats Format
}

// styleCache interns (base charPr, formats) pairs into charPr ids. Mapping
// only grows during one conversion.
type styleCache struct {
	next    int
	ids     map[styleKey]int
	entries []styleEntry
}

// newStyleCache allocates ids strictly above floor and above all fixed ids.
func newStyleCache(floor int) *styleCache {
	return &styleCache{
		next: max(floor, reservedCharPrMax) + 1,
		ids:  make(map[styleKey]int),
	}
}

func (c *styleCache) intern(base int, formats Format) int {
	if formats == 0 {
		return base
	}
	key := styleKey{base: base, formats: formats}
	if id, ok := c.ids[key]; ok {
		return id
	}
	id := c.next
	c.next++
	c.ids[key] = id
	c.entries = append(c.entries, styleEntry{ID: id, Base: base, Formats: formats})
	return id
}

// Entries returns allocated styles in allocation order.
func (c *styleCache) Entries() []styleEntry {
	return c.entries
}

// baseOf resolves interned id back to the fixed style it was derived from.
func (c *styleCache) baseOf(id int) int {
	for _, e := range c.entries {
		if e.ID == id {
			return e.Base
		}
	}
	return id
}

// charHeight returns text height for a charPr id, interned ids inherit it
// from their base. Body text height is configurable and comes as fallback.
func (c *styleCache) charHeight(id, fallback int) int {
	switch base := c.baseOf(id); base {
	case charPrNormal, charPrCode:
		return fallback
	default:
		if h, ok := charHeights[base]; ok {
			return h
		}
		return fallback
	}
}
