package xlsxpatch

import (
	"iter"
	"strconv"

	"github.com/beevik/etree"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/parser"
)

// MaxRows is the largest row number a worksheet can hold.
const MaxRows = 1048576

// Row is a view of one <row> element of a worksheet. It does not own any
// document state.
type Row struct {
	pkg   *Package
	sheet int
	el    *etree.Element
}

// Sheet returns the worksheet number the row belongs to.
func (r *Row) Sheet() int {
	return r.sheet
}

// Number returns the 1-based row number, or 0 if the element carries none.
func (r *Row) Number() int {
	return rowNumber(r.el)
}

// Next returns the following row of the worksheet, or nil.
func (r *Row) Next() *Row {
	return r.wrap(nextTagged(r.el, "row"))
}

// Previous returns the preceding row of the worksheet, or nil.
func (r *Row) Previous() *Row {
	return r.wrap(prevTagged(r.el, "row"))
}

func (r *Row) wrap(el *etree.Element) *Row {
	if el == nil {
		return nil
	}
	return &Row{pkg: r.pkg, sheet: r.sheet, el: el}
}

// worksheet returns the root element of worksheet sheet.
func (p *Package) worksheet(sheet int) (*etree.Element, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	if sheet < 1 {
		return nil, newError(ErrInvalidArgument, "", "worksheet number %d", sheet)
	}
	return p.frags.root(parser.WorksheetPart(sheet))
}

func (p *Package) sheetData(sheet int) (*etree.Element, error) {
	ws, err := p.worksheet(sheet)
	if err != nil {
		return nil, err
	}
	data := ws.SelectElement("sheetData")
	if data == nil {
		return nil, newError(ErrStructure, parser.WorksheetPart(sheet), "missing <sheetData>")
	}
	return data, nil
}

// Row looks up row number n of worksheet sheet. When the row does not exist,
// mode decides between returning nil, returning an ErrInput error, or
// inserting an empty row at its sorted position.
func (p *Package) Row(sheet, n int, mode AccessMode) (*Row, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	if n < 1 || n > MaxRows {
		return nil, newError(ErrInvalidArgument, "", "row number %d out of range", n)
	}
	data, err := p.sheetData(sheet)
	if err != nil {
		return nil, err
	}

	var before *etree.Element
	for el := firstTagged(data, "row"); el != nil; el = nextTagged(el, "row") {
		num := rowNumber(el)
		if num == n {
			return &Row{pkg: p, sheet: sheet, el: el}, nil
		}
		if num > n {
			before = el
			break
		}
	}

	switch mode {
	case ModeNil:
		return nil, nil
	case ModeError:
		return nil, newError(ErrInput, parser.WorksheetPart(sheet), "row %d does not exist", n)
	}

	el := newSibling(data, "row")
	el.CreateAttr("r", strconv.Itoa(n))
	if before != nil {
		data.InsertChildAt(before.Index(), el)
	} else {
		data.AddChild(el)
	}
	p.markDirty(parser.WorksheetPart(sheet))
	return &Row{pkg: p, sheet: sheet, el: el}, nil
}

// FirstRow returns the first row of the worksheet, or nil if it is empty.
func (p *Package) FirstRow(sheet int) (*Row, error) {
	data, err := p.sheetData(sheet)
	if err != nil {
		return nil, err
	}
	if el := firstTagged(data, "row"); el != nil {
		return &Row{pkg: p, sheet: sheet, el: el}, nil
	}
	return nil, nil
}

// LastRow returns the last row of the worksheet, or nil if it is empty.
func (p *Package) LastRow(sheet int) (*Row, error) {
	data, err := p.sheetData(sheet)
	if err != nil {
		return nil, err
	}
	if el := lastTagged(data, "row"); el != nil {
		return &Row{pkg: p, sheet: sheet, el: el}, nil
	}
	return nil, nil
}

// DeleteRow removes row n and reports whether it existed. Handles to the
// removed row or its cells must not be used afterwards. When the row held
// a formula the calculation chain is marked stale, so the next Save drops
// xl/calcChain.xml instead of leaving entries for cells that are gone.
func (p *Package) DeleteRow(sheet, n int) (bool, error) {
	row, err := p.Row(sheet, n, ModeNil)
	if err != nil || row == nil {
		return false, err
	}
	if len(row.el.FindElements("c/f")) > 0 {
		p.invalidateCalcChain()
	}
	row.el.Parent().RemoveChild(row.el)
	p.markDirty(parser.WorksheetPart(sheet))
	return true, nil
}

// Rows returns an iterator over the existing rows of the worksheet in
// document order. Each call to the returned function starts from the top.
// Deleting the row just yielded does not stop the iteration.
func (p *Package) Rows(sheet int) (iter.Seq[*Row], error) {
	data, err := p.sheetData(sheet)
	if err != nil {
		return nil, err
	}
	return func(yield func(*Row) bool) {
		for el := firstTagged(data, "row"); el != nil; {
			next := nextTagged(el, "row")
			if !yield(&Row{pkg: p, sheet: sheet, el: el}) {
				return
			}
			el = next
		}
	}, nil
}

func checkMode(mode AccessMode) error {
	switch mode {
	case ModeNil, ModeError, ModeCreate:
		return nil
	}
	return newError(ErrInvalidArgument, "", "unknown access mode %q", string(mode))
}

func rowNumber(el *etree.Element) int {
	n, _ := strconv.Atoi(el.SelectAttrValue("r", ""))
	return n
}

func firstTagged(parent *etree.Element, tag string) *etree.Element {
	for _, t := range parent.Child {
		if el, ok := t.(*etree.Element); ok && el.Tag == tag {
			return el
		}
	}
	return nil
}

func lastTagged(parent *etree.Element, tag string) *etree.Element {
	for i := len(parent.Child) - 1; i >= 0; i-- {
		if el, ok := parent.Child[i].(*etree.Element); ok && el.Tag == tag {
			return el
		}
	}
	return nil
}

// nextTagged walks forward over siblings, skipping elements of other tags.
func nextTagged(el *etree.Element, tag string) *etree.Element {
	for s := el.NextSibling(); s != nil; s = s.NextSibling() {
		if s.Tag == tag {
			return s
		}
	}
	return nil
}

func prevTagged(el *etree.Element, tag string) *etree.Element {
	for s := el.PrevSibling(); s != nil; s = s.PrevSibling() {
		if s.Tag == tag {
			return s
		}
	}
	return nil
}
