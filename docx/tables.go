package docx

import (
	"strconv"

	"github.com/beevik/etree"
)

// Table is a body-level table (<w:tbl>).
type Table struct {
	doc   *Document
	el    *etree.Element
	index int
	rows  []*Row
}

// Row is a table row (<w:tr>). Its cells are laid out on the table grid.
type Row struct {
	table *Table
	el    *etree.Element
	index int
	cells []*Cell
}

func newTable(d *Document, el *etree.Element, index int) *Table {
	t := &Table{doc: d, el: el, index: index}
	t.resolveGrid()
	return t
}

// Index returns the position of the table among the body tables.
func (t *Table) Index() int {
	return t.index
}

// Rows returns the table rows in order.
func (t *Table) Rows() []*Row {
	return t.rows
}

// Index returns the position of the row within its table.
func (r *Row) Index() int {
	return r.index
}

// Cells returns one entry per grid column covered by the row. A cell that
// spans several columns (gridSpan) appears once per column, and a vertical
// merge continuation resolves to the cell that started the merge. Entries
// for the same underlying cell are the same *Cell.
func (r *Row) Cells() []*Cell {
	return r.cells
}

// resolveGrid lays every row out on the table grid.
func (t *Table) resolveGrid() {
	d := t.doc
	var above map[int]*Cell // grid column -> cell in the previous row

	for i, tr := range d.children(t.el, "tr") {
		row := &Row{table: t, el: tr, index: i}
		current := make(map[int]*Cell)

		col := gridBefore(d, tr)
		for _, tc := range rowCells(d, tr) {
			span := gridSpan(d, tc)

			cell := d.cellFor(tc)
			if isMergeContinuation(d, tc) {
				if origin, ok := above[col]; ok {
					cell = origin
				}
			}

			for k := 0; k < span; k++ {
				row.cells = append(row.cells, cell)
				current[col+k] = cell
			}
			col += span
		}

		t.rows = append(t.rows, row)
		above = current
	}
}

// rowCells returns the w:tc elements of a row, including those wrapped in
// content controls or custom XML.
func rowCells(d *Document, tr *etree.Element) []*etree.Element {
	var cells []*etree.Element
	for _, c := range tr.ChildElements() {
		switch {
		case d.is(c, "tc"):
			cells = append(cells, c)
		case d.is(c, "sdt"):
			if content := d.child(c, "sdtContent"); content != nil {
				cells = append(cells, rowCells(d, content)...)
			}
		case d.is(c, "customXml"):
			cells = append(cells, rowCells(d, c)...)
		}
	}
	return cells
}

// gridSpan returns the number of grid columns a cell spans.
func gridSpan(d *Document, tc *etree.Element) int {
	props := d.child(tc, "tcPr")
	if props == nil {
		return 1
	}
	span := d.child(props, "gridSpan")
	if span == nil {
		return 1
	}
	if n, err := strconv.Atoi(d.attr(span, "val")); err == nil && n > 0 {
		return n
	}
	return 1
}

// gridBefore returns the number of grid columns skipped before the first cell.
func gridBefore(d *Document, tr *etree.Element) int {
	props := d.child(tr, "trPr")
	if props == nil {
		return 0
	}
	before := d.child(props, "gridBefore")
	if before == nil {
		return 0
	}
	if n, err := strconv.Atoi(d.attr(before, "val")); err == nil && n > 0 {
		return n
	}
	return 0
}

// isMergeContinuation reports whether a cell continues a vertical merge.
// An empty val means continue.
func isMergeContinuation(d *Document, tc *etree.Element) bool {
	props := d.child(tc, "tcPr")
	if props == nil {
		return false
	}
	vMerge := d.child(props, "vMerge")
	if vMerge == nil {
		return false
	}
	val := d.attr(vMerge, "val")
	return val == "" || val == "continue"
}
