package hwpx

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pandoc2hwpx/pandoc"
)

// cellPlacement is a cell with its absolute grid position.
type cellPlacement struct {
	Row, Col         int
	RowSpan, ColSpan int
	Width            int
	Header           bool
	Blocks           []pandoc.Block
	// filler cells cover grid positions no source cell claimed
	Filler bool
}

type tableLayout struct {
	Rows, Cols int
	ColWidths  []int
	// cells grouped by grid row, ordered by column
	Cells [][]cellPlacement
}

func columnWidths(total, cols int) []int {
	widths := make([]int, cols)
	for i := range widths {
		widths[i] = total / cols
	}
	for i := 0; i < total-total/cols*cols; i++ {
		widths[i%cols]++
	}
	return widths
}

func tableColumns(t *pandoc.Table) int {
	if t.Columns > 0 {
		return t.Columns
	}
	rows := t.Rows()
	if len(rows) == 0 {
		return 0
	}
	n := 0
	for _, cell := range rows[0].Cells {
		n += max(cell.ColSpan, 1)
	}
	return n
}

// layoutTable places cells on the grid tracking occupied positions. Malformed
// spans are clipped, uncovered positions are filled with empty cells; every
// such anomaly is reported in returned error while layout stays usable.
// Returns nil layout for tables without rows or columns.
func layoutTable(t *pandoc.Table, width int) (*tableLayout, error) {
	rows := t.Rows()
	cols := tableColumns(t)
	if len(rows) == 0 || cols == 0 {
		return nil, nil
	}

	l := &tableLayout{
		Rows:      len(rows),
		Cols:      cols,
		ColWidths: columnWidths(width, cols),
		Cells:     make([][]cellPlacement, len(rows)),
	}
	occupied := make([][]bool, len(rows))
	for r := range occupied {
		occupied[r] = make([]bool, cols)
	}

	var errs error
	for r, row := range rows {
		col := 0
		for ci, cell := range row.Cells {
			for col < cols && occupied[r][col] {
				col++
			}
			if col >= cols {
				errs = multierr.Append(errs, fmt.Errorf("row %d, cell %d: no free column: %w", r, ci, ErrSpanOutOfBounds))
				continue
			}

			rs, cs := max(cell.RowSpan, 1), max(cell.ColSpan, 1)
			if col+cs > cols {
				errs = multierr.Append(errs, fmt.Errorf("row %d, cell %d: column span %d at %d: %w", r, ci, cs, col, ErrSpanOutOfBounds))
				cs = cols - col
			}
			if r+rs > len(rows) {
				errs = multierr.Append(errs, fmt.Errorf("row %d, cell %d: row span %d: %w", r, ci, rs, ErrSpanOutOfBounds))
				rs = len(rows) - r
			}
			if clipped := clipFootprint(occupied, r, col, rs, cs); clipped != [2]int{rs, cs} {
				errs = multierr.Append(errs, fmt.Errorf("row %d, cell %d: span %dx%d: %w", r, ci, rs, cs, ErrSpanOverlap))
				rs, cs = clipped[0], clipped[1]
			}

			for dr := range rs {
				for dc := range cs {
					occupied[r+dr][col+dc] = true
				}
			}
			l.Cells[r] = append(l.Cells[r], cellPlacement{
				Row:     r,
				Col:     col,
				RowSpan: rs,
				ColSpan: cs,
				Width:   l.span(col, cs),
				Header:  r < len(t.HeadRows),
				Blocks:  cell.Blocks,
			})
			col += cs
		}
	}

	for r := range occupied {
		for col := range occupied[r] {
			if occupied[r][col] {
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("row %d, column %d: %w", r, col, ErrGridGap))
			occupied[r][col] = true
			l.Cells[r] = append(l.Cells[r], cellPlacement{
				Row: r, Col: col, RowSpan: 1, ColSpan: 1,
				Width:  l.ColWidths[col],
				Header: r < len(t.HeadRows),
				Filler: true,
			})
		}
		slices.SortFunc(l.Cells[r], func(a, b cellPlacement) int { return cmp.Compare(a.Col, b.Col) })
	}
	return l, errs
}

// clipFootprint shrinks span so it covers only free positions. Top left
// position is known to be free.
func clipFootprint(occupied [][]bool, r, col, rs, cs int) [2]int {
	for dc := 1; dc < cs; dc++ {
		if occupied[r][col+dc] {
			cs = dc
			break
		}
	}
	for dr := 1; dr < rs; dr++ {
		if slices.Contains(occupied[r+dr][col:col+cs], true) {
			rs = dr
			break
		}
	}
	return [2]int{rs, cs}
}

func (l *tableLayout) span(col, cs int) int {
	w := 0
	for _, cw := range l.ColWidths[col : col+cs] {
		w += cw
	}
	return w
}

func (c *conversion) table(t *pandoc.Table, ctx blockContext) []*paragraph {
	if t == nil {
		return nil
	}
	width := ctx.width
	l, err := layoutTable(t, width)
	if err != nil {
		c.log.Warn("Malformed table spans, layout corrected", zap.Error(err))
	}
	if l == nil {
		return nil
	}

	var out []*paragraph
	if caption := pandoc.BlocksPlainText(t.Caption); caption != "" {
		out = append(out, c.textParagraph(caption, charPrNormal, ctx))
	}

	p := c.newParagraph(charPrNormal, blockContext{width: width})
	p.bare = true
	p.runs = []run{{kind: runObject, charPr: charPrNormal, elem: c.tableElement(l, width), trailingText: true}}
	return append(out, p)
}

func (c *conversion) tableElement(l *tableLayout, width int) *etree.Element {
	rowHeight := c.cfg.Layout.RowHeight
	bf := strconv.Itoa(c.borderFill)

	tbl := etree.NewElement("hp:tbl")
	setAttrs(tbl,
		"id", strconv.Itoa(c.nextInstID()),
		"zOrder", "0",
		"numberingType", "TABLE",
		"textWrap", "TOP_AND_BOTTOM",
		"textFlow", "BOTH_SIDES",
		"lock", "0",
		"dropcapstyle", "None",
		"pageBreak", "CELL",
		"repeatHeader", "1",
		"rowCnt", strconv.Itoa(l.Rows),
		"colCnt", strconv.Itoa(l.Cols),
		"cellSpacing", "0",
		"borderFillIDRef", bf,
		"noAdjust", "0")
	setAttrs(tbl.CreateElement("hp:sz"),
		"width", strconv.Itoa(width), "widthRelTo", "ABSOLUTE",
		"height", strconv.Itoa(rowHeight*l.Rows), "heightRelTo", "ABSOLUTE",
		"protect", "0")
	setAttrs(tbl.CreateElement("hp:pos"),
		"treatAsChar", "1",
		"affectLSpacing", "0",
		"flowWithText", "1",
		"allowOverlap", "0",
		"holdAnchorAndSO", "0",
		"vertRelTo", "PARA",
		"horzRelTo", "COLUMN",
		"vertAlign", "TOP",
		"horzAlign", "CENTER",
		"vertOffset", "0",
		"horzOffset", "0")
	setAttrs(tbl.CreateElement("hp:outMargin"), "left", "0", "right", "0", "top", "141", "bottom", "141")
	setAttrs(tbl.CreateElement("hp:inMargin"), "left", "0", "right", "0", "top", "0", "bottom", "0")

	for _, row := range l.Cells {
		tr := tbl.CreateElement("hp:tr")
		for _, cell := range row {
			tr.AddChild(c.cellElement(&cell, bf, rowHeight))
		}
	}
	return tbl
}

func (c *conversion) cellElement(cell *cellPlacement, bf string, rowHeight int) *etree.Element {
	header := "0"
	if cell.Header {
		header = "1"
	}
	tc := etree.NewElement("hp:tc")
	setAttrs(tc,
		"name", "",
		"header", header,
		"hasMargin", "0",
		"protect", "0",
		"editable", "0",
		"dirty", "0",
		"borderFillIDRef", bf)

	sub := newSubList(tc, c.nextInstID(), "CENTER")
	ctx := blockContext{width: cell.Width}
	paras := c.blocks(cell.Blocks, ctx)
	if len(paras) == 0 {
		paras = []*paragraph{c.textParagraph("", charPrNormal, ctx)}
	}
	for _, p := range paras {
		sub.AddChild(p.element(c.cfg.Layout.LineSpacing))
	}

	setAttrs(tc.CreateElement("hp:cellAddr"), "colAddr", strconv.Itoa(cell.Col), "rowAddr", strconv.Itoa(cell.Row))
	setAttrs(tc.CreateElement("hp:cellSpan"), "colSpan", strconv.Itoa(cell.ColSpan), "rowSpan", strconv.Itoa(cell.RowSpan))
	setAttrs(tc.CreateElement("hp:cellSz"), "width", strconv.Itoa(cell.Width), "height", strconv.Itoa(rowHeight*cell.RowSpan))
	setAttrs(tc.CreateElement("hp:cellMargin"), "left", "141", "right", "141", "top", "141", "bottom", "141")
	return tc
}
