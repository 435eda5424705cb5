package hwpx

import (
	"strconv"

	"github.com/beevik/etree"
)

type numberingKind int

const (
	numberingOrdered numberingKind = iota
	numberingBullet
)

// hc:left step per list level, first level is indented by one step
const listIndentStep = 2000

const bulletHead = "●"

type numberingDef struct {
	id    int
	kind  numberingKind
	start int
	level int
}

type listParaPr struct {
	id        int
	numbering int
	level     int
}

// numberings allocates native list numbering of reference templates: one
// hh:numbering per list and a paraPr cloned from the normal style per list
// and level.
type numberings struct {
	base int

	nextNum  int
	nextPara int
	defs     []numberingDef
	paraPrs  []listParaPr
	byList   map[[2]int]int
}

func newNumberings(tmpl *templateInfo) *numberings {
	return &numberings{
		base:     tmpl.normal.ParaPr,
		nextNum:  tmpl.maxNumbering + 1,
		nextPara: tmpl.maxParaPr + 1,
		byList:   make(map[[2]int]int),
	}
}

// add registers numbering for a list nested at level (zero based).
func (n *numberings) add(kind numberingKind, start, level int) int {
	if kind == numberingBullet || start < 1 {
		start = 1
	}
	id := n.nextNum
	n.nextNum++
	n.defs = append(n.defs, numberingDef{id: id, kind: kind, start: start, level: level})
	return id
}

// paraPr returns paragraph properties referencing numbering at level.
func (n *numberings) paraPr(numbering, level int) int {
	key := [2]int{numbering, level}
	if id, ok := n.byList[key]; ok {
		return id
	}
	id := n.nextPara
	n.nextPara++
	n.paraPrs = append(n.paraPrs, listParaPr{id: id, numbering: numbering, level: level})
	n.byList[key] = id
	return id
}

// apply writes allocated definitions into header root.
func (n *numberings) apply(root *etree.Element) {
	if len(n.defs) == 0 {
		return
	}
	list := refListChild(root, "numberings")
	for _, d := range n.defs {
		list.AddChild(d.element())
	}
	recount(list, "numbering")

	props := refListChild(root, "paraProperties")
	base := findByID(props, "hh:paraPr", n.base)
	if base == nil {
		return
	}
	for _, lp := range n.paraPrs {
		props.AddChild(lp.element(base))
	}
	recount(props, "paraPr")
}

func (d numberingDef) element() *etree.Element {
	e := etree.NewElement("hh:numbering")
	setAttrs(e, "id", strconv.Itoa(d.id), "start", strconv.Itoa(d.start))
	head := setAttrs(e.CreateElement("hh:paraHead"),
		"start", "1",
		"level", strconv.Itoa(d.level+1),
		"align", "LEFT",
		"useInstWidth", "1",
		"autoIndent", "0",
		"widthAdjust", "0",
		"textOffsetType", "PERCENT",
		"textOffset", "50",
		"numFormat", "DIGIT",
		"charPrIDRef", "4294967295",
		"checkable", "0")
	if d.kind == numberingBullet {
		head.SetText(bulletHead)
	} else {
		head.SetText("^" + strconv.Itoa(d.level+1) + ".")
	}
	return e
}

func (lp listParaPr) element(base *etree.Element) *etree.Element {
	pp := base.Copy()
	pp.CreateAttr("id", strconv.Itoa(lp.id))
	h := pp.SelectElement("hh:heading")
	if h == nil {
		h = pp.CreateElement("hh:heading")
	}
	setAttrs(h, "type", "NUMBER", "idRef", strconv.Itoa(lp.numbering), "level", strconv.Itoa(lp.level))
	for _, left := range pp.FindElements(".//hc:left") {
		left.CreateAttr("value", strconv.Itoa((lp.level+1)*listIndentStep))
	}
	for _, intent := range pp.FindElements(".//hc:intent") {
		intent.CreateAttr("value", strconv.Itoa(-listIndentStep))
	}
	return pp
}
