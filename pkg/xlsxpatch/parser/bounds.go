package parser

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Bounds is the bounding box of the non-empty part of a sheet, in 1-based
// coordinates. The zero value is empty.
type Bounds struct {
	MinRow, MaxRow int
	MinCol, MaxCol int
}

// Empty reports whether no cell has been added to b.
func (b Bounds) Empty() bool {
	return b.MinRow == 0
}

// Add extends b to include the cell at (col, row).
func (b *Bounds) Add(col, row int) {
	if b.Empty() {
		b.MinRow, b.MaxRow, b.MinCol, b.MaxCol = row, row, col, col
		return
	}
	b.MinRow = min(b.MinRow, row)
	b.MaxRow = max(b.MaxRow, row)
	b.MinCol = min(b.MinCol, col)
	b.MaxCol = max(b.MaxCol, col)
}

// AddRef extends b to include the cell named ref.
func (b *Bounds) AddRef(ref string) error {
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	b.Add(col, row)
	return nil
}

// Ref renders b in Excel range notation, e.g. "A1:D10". A single cell is
// rendered without a colon.
func (b Bounds) Ref() (string, error) {
	if b.Empty() {
		return "", nil
	}
	startCell, err := excelize.CoordinatesToCellName(b.MinCol, b.MinRow)
	if err != nil {
		return "", err
	}
	endCell, err := excelize.CoordinatesToCellName(b.MaxCol, b.MaxRow)
	if err != nil {
		return "", err
	}
	if startCell == endCell {
		return startCell, nil
	}
	return fmt.Sprintf("%s:%s", startCell, endCell), nil
}
