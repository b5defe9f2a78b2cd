package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidReference indicates a cell reference that is not of the form
// <column letters><row number>.
var ErrInvalidReference = errors.New("invalid cell reference")

// SplitCellRef splits a reference such as "AB12" into its upper-cased column
// letters and row number. Absolute markers ("$A$1") are accepted.
func SplitCellRef(ref string) (string, int, error) {
	col, row, err := excelize.SplitCellName(ref)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	col = strings.ToUpper(col)
	if _, err := excelize.ColumnNameToNumber(col); err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrInvalidReference, ref, err)
	}
	return col, row, nil
}

// JoinCellRef builds a reference from column letters and a row number.
func JoinCellRef(col string, row int) (string, error) {
	ref, err := excelize.JoinCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("%w: %s%d: %v", ErrInvalidReference, col, row, err)
	}
	return ref, nil
}

// IsColumnOnly reports whether ref consists of column letters only, e.g. "D".
func IsColumnOnly(ref string) bool {
	if ref == "" {
		return false
	}
	for i := 0; i < len(ref); i++ {
		if !isLetter(ref[i]) {
			return false
		}
	}
	return true
}

// ColumnOf returns the upper-cased column letters of ref, or "" when ref does
// not start with a letter.
func ColumnOf(ref string) string {
	col, _ := splitLoose(ref)
	return col
}

// CompareColumns orders column letter sequences by length first and then
// lexicographically, so "Z" < "AA".
func CompareColumns(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// CompareCellRefs is the ordering SpreadsheetML requires for cells in a row:
// column letters (length, then lexicographic), then row number numerically.
// It returns a negative number, zero or a positive number.
func CompareCellRefs(a, b string) int {
	colA, rowA := splitLoose(a)
	colB, rowB := splitLoose(b)
	if c := CompareColumns(colA, colB); c != 0 {
		return c
	}
	switch {
	case rowA < rowB:
		return -1
	case rowA > rowB:
		return 1
	}
	return 0
}

// RangeContains reports whether the reference ref lies inside rng, which may
// be a single cell ("B2") or a rectangle ("A1:C3").
func RangeContains(rng, ref string) bool {
	first, last, found := strings.Cut(rng, ":")
	if !found {
		return CompareCellRefs(strings.ReplaceAll(first, "$", ""), ref) == 0
	}
	c1, r1, err := excelize.CellNameToCoordinates(strings.ReplaceAll(first, "$", ""))
	if err != nil {
		return false
	}
	c2, r2, err := excelize.CellNameToCoordinates(strings.ReplaceAll(last, "$", ""))
	if err != nil {
		return false
	}
	c, r, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return false
	}
	return c >= min(c1, c2) && c <= max(c1, c2) && r >= min(r1, r2) && r <= max(r1, r2)
}

// splitLoose splits a reference without validating it. Lower-case letters
// are folded and "$" markers skipped; a missing row yields 0.
func splitLoose(ref string) (string, int) {
	ref = strings.ReplaceAll(ref, "$", "")
	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	row, _ := strconv.Atoi(ref[i:])
	return strings.ToUpper(ref[:i]), row
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
