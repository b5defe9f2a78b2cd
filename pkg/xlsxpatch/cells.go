package xlsxpatch

import (
	"iter"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/parser"
)

// CellOrderCompare orders two cell references the way cells are ordered in
// a worksheet: by column (shorter first, then alphabetical) and then by row.
// It returns a negative number, zero or a positive number.
func CellOrderCompare(a, b string) int {
	return parser.CompareCellRefs(a, b)
}

// Cell is a view of one <c> element. It does not own any document state.
type Cell struct {
	row *Row
	el  *etree.Element
}

// Name returns the cell reference, e.g. "D4".
func (c *Cell) Name() string {
	return c.el.SelectAttrValue("r", "")
}

// Column returns the column letters of the cell reference.
func (c *Cell) Column() string {
	return parser.ColumnOf(c.Name())
}

// Row returns the row that contains the cell.
func (c *Cell) Row() *Row {
	return c.row
}

// Next returns the following cell in the same row, or nil.
func (c *Cell) Next() *Cell {
	return c.row.wrapCell(nextTagged(c.el, "c"))
}

// Previous returns the preceding cell in the same row, or nil.
func (c *Cell) Previous() *Cell {
	return c.row.wrapCell(prevTagged(c.el, "c"))
}

func (r *Row) wrapCell(el *etree.Element) *Cell {
	if el == nil {
		return nil
	}
	return &Cell{row: r, el: el}
}

// FirstCell returns the first cell of the row, or nil.
func (r *Row) FirstCell() *Cell {
	return r.wrapCell(firstTagged(r.el, "c"))
}

// LastCell returns the last cell of the row, or nil.
func (r *Row) LastCell() *Cell {
	return r.wrapCell(lastTagged(r.el, "c"))
}

// Cells returns an iterator over the cells of the row in document order.
func (r *Row) Cells() iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for el := firstTagged(r.el, "c"); el != nil; {
			next := nextTagged(el, "c")
			if !yield(&Cell{row: r, el: el}) {
				return
			}
			el = next
		}
	}
}

// Cell looks up a cell of the row. ref is either a full reference ("D4") or
// column letters only ("D"), which are completed with the row number. When
// the cell does not exist, mode decides between returning nil, returning an
// ErrInput error, or inserting an empty cell at its sorted position.
func (r *Row) Cell(ref string, mode AccessMode) (*Cell, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	ref = strings.ReplaceAll(ref, "$", "")
	if parser.IsColumnOnly(ref) {
		ref += strconv.Itoa(r.Number())
	}
	col, rowNum, err := parser.SplitCellRef(ref)
	if err != nil {
		return nil, &PackageError{Kind: ErrInvalidArgument, Err: err}
	}
	ref = col + strconv.Itoa(rowNum)

	var before *etree.Element
	for el := firstTagged(r.el, "c"); el != nil; el = nextTagged(el, "c") {
		cmp := parser.CompareCellRefs(el.SelectAttrValue("r", ""), ref)
		if cmp == 0 {
			return &Cell{row: r, el: el}, nil
		}
		if cmp > 0 {
			before = el
			break
		}
	}

	part := parser.WorksheetPart(r.sheet)
	switch mode {
	case ModeNil:
		return nil, nil
	case ModeError:
		return nil, newError(ErrInput, part, "cell %s does not exist", ref)
	}
	if rowNum != r.Number() {
		return nil, newError(ErrInput, part, "cell %s cannot be created in row %d", ref, r.Number())
	}

	el := newSibling(r.el, "c")
	el.CreateAttr("r", ref)
	if before != nil {
		r.el.InsertChildAt(before.Index(), el)
	} else {
		insertBefore(r.el, el, "extLst")
	}
	r.pkg.markDirty(part)
	return &Cell{row: r, el: el}, nil
}

// Cell looks up a cell of worksheet sheet by full reference. Under ModeCreate
// the row is created as well when missing.
func (p *Package) Cell(sheet int, ref string, mode AccessMode) (*Cell, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	_, rowNum, err := parser.SplitCellRef(ref)
	if err != nil {
		return nil, &PackageError{Kind: ErrInvalidArgument, Err: err}
	}
	row, err := p.Row(sheet, rowNum, mode)
	if err != nil || row == nil {
		return nil, err
	}
	return row.Cell(ref, mode)
}

// HighestColumnName returns the right-most column letters used by any row
// of the worksheet. The boolean is false when the worksheet has no cells.
func (p *Package) HighestColumnName(sheet int) (string, bool, error) {
	rows, err := p.Rows(sheet)
	if err != nil {
		return "", false, err
	}
	highest := ""
	for row := range rows {
		last := row.LastCell()
		if last == nil {
			continue
		}
		if col := last.Column(); parser.CompareColumns(col, highest) > 0 {
			highest = col
		}
	}
	return highest, highest != "", nil
}

// UsedRange returns the bounding range of all cells of the worksheet, such
// as "A1:D10". The boolean is false when the worksheet has no cells.
func (p *Package) UsedRange(sheet int) (string, bool, error) {
	rows, err := p.Rows(sheet)
	if err != nil {
		return "", false, err
	}
	var b parser.Bounds
	for row := range rows {
		first, last := row.FirstCell(), row.LastCell()
		if first == nil {
			continue
		}
		for _, c := range []*Cell{first, last} {
			if err := b.AddRef(c.Name()); err != nil {
				return "", false, structureError(parser.WorksheetPart(sheet), err, "bad cell reference")
			}
		}
	}
	if b.Empty() {
		return "", false, nil
	}
	ref, err := b.Ref()
	if err != nil {
		return "", false, structureError(parser.WorksheetPart(sheet), err, "bad used range")
	}
	return ref, true, nil
}
