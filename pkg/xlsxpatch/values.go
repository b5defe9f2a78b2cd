package xlsxpatch

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/parser"
)

// Cell type markers (the t attribute).
const (
	typeSharedString = "s"
	typeInlineString = "inlineStr"
	typeFormulaStr   = "str"
	typeBool         = "b"
	typeError        = "e"
)

func (c *Cell) typ() string {
	return c.el.SelectAttrValue("t", "")
}

func (c *Cell) part() string {
	return parser.WorksheetPart(c.row.sheet)
}

// Formula returns the cell formula prefixed with "=".
func (c *Cell) Formula() (string, bool) {
	f := c.el.SelectElement("f")
	if f == nil {
		return "", false
	}
	return "=" + f.Text(), true
}

// rawValue returns the text of the <v> element.
func (c *Cell) rawValue() (string, bool) {
	v := c.el.SelectElement("v")
	if v == nil {
		return "", false
	}
	return v.Text(), true
}

// numeric reports whether the payload of the cell is meant as a number.
func (c *Cell) numeric() bool {
	switch c.typ() {
	case typeSharedString, typeInlineString, typeFormulaStr, typeError:
		return false
	}
	return true
}

// Float returns the numeric value of the cell. The boolean is false when the
// cell holds no number.
func (c *Cell) Float() (float64, bool) {
	raw, ok := c.rawValue()
	if !ok || !c.numeric() {
		return 0, false
	}
	return parser.ParseFloat(raw)
}

// Int returns the value of the cell as an integer. The boolean is false when
// the cell holds no integral number.
func (c *Cell) Int() (int64, bool) {
	raw, ok := c.rawValue()
	if !ok || !c.numeric() {
		return 0, false
	}
	return parser.ParseInt(raw)
}

// Text returns the text of the cell, dereferencing the shared string table
// when the cell is a shared string. The boolean is false when the cell holds
// no value.
func (c *Cell) Text() (string, bool, error) {
	switch c.typ() {
	case typeSharedString:
		raw, ok := c.rawValue()
		if !ok {
			return "", false, newError(ErrStructure, c.part(), "shared string cell %s has no value", c.Name())
		}
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return "", false, structureError(c.part(), err, "shared string cell %s has index %q", c.Name(), raw)
		}
		return c.row.pkg.SharedString(idx)
	case typeInlineString:
		is := c.el.SelectElement("is")
		if is == nil {
			return "", false, nil
		}
		return richText(is), true, nil
	}
	raw, ok := c.rawValue()
	return raw, ok, nil
}

// Time interprets the numeric value of the cell as a date serial in the
// workbook's date system.
func (c *Cell) Time() (time.Time, bool, error) {
	f, ok := c.Float()
	if !ok {
		return time.Time{}, false, nil
	}
	epoch, err := c.row.pkg.DateEpoch()
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := parser.SerialToTime(f, epoch)
	if err != nil {
		return time.Time{}, false, &PackageError{Kind: ErrInput, Err: err}
	}
	return t, true, nil
}

// Hyperlink returns the target URL of the hyperlink attached to the cell.
func (c *Cell) Hyperlink() (string, bool, error) {
	rel, err := c.row.pkg.hyperlinkRel(c.row.sheet, c.Name())
	if err != nil || rel == nil {
		return "", false, err
	}
	return rel.SelectAttrValue("Target", ""), true, nil
}

// Value returns the cell content as a Go value: string for text, bool for
// booleans, int64 or float64 for numbers, or nil for an empty cell.
func (c *Cell) Value() (interface{}, error) {
	switch c.typ() {
	case typeSharedString, typeInlineString, typeFormulaStr, typeError:
		s, ok, err := c.Text()
		if err != nil || !ok {
			return nil, err
		}
		return s, nil
	case typeBool:
		raw, ok := c.rawValue()
		if !ok {
			return nil, nil
		}
		return xmlBool(strings.TrimSpace(raw)), nil
	}
	raw, ok := c.rawValue()
	if !ok {
		return nil, nil
	}
	return parser.ParseValue(raw), nil
}

// SetFloat stores a number in the cell, replacing any previous content.
func (c *Cell) SetFloat(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return newError(ErrInvalidArgument, c.part(), "cannot store %v in cell %s", f, c.Name())
	}
	return c.setValue(parser.FormatFloat(f))
}

// SetInt stores an integer in the cell, replacing any previous content.
func (c *Cell) SetInt(i int64) error {
	return c.setValue(strconv.FormatInt(i, 10))
}

// SetString stores text in the cell as a new shared string, replacing any
// previous content. Every call appends a new entry to the shared string
// table, even for text that is already present.
func (c *Cell) SetString(s string) error {
	if err := c.row.pkg.checkOpen(); err != nil {
		return err
	}
	idx, err := c.row.pkg.AppendSharedString(s)
	if err != nil {
		return err
	}
	if err := c.setValue(strconv.Itoa(idx)); err != nil {
		return err
	}
	c.el.CreateAttr("t", typeSharedString)
	return nil
}

// SetFormula replaces the cell content with a formula. A leading "=" is
// dropped. The cached result is discarded, so the calculation chain of the
// package is invalidated.
func (c *Cell) SetFormula(formula string) error {
	if err := c.row.pkg.checkOpen(); err != nil {
		return err
	}
	c.clear()
	f := newSibling(c.el, "f")
	f.SetText(strings.TrimPrefix(formula, "="))
	insertBefore(c.el, f, "extLst")
	c.row.pkg.invalidateCalcChain()
	c.row.pkg.markDirty(c.part())
	return nil
}

// SetHyperlink changes the target of the hyperlink attached to the cell. It
// reports false and changes nothing when the cell has no hyperlink; new
// hyperlinks are never created.
func (c *Cell) SetHyperlink(url string) (bool, error) {
	if err := c.row.pkg.checkOpen(); err != nil {
		return false, err
	}
	if url == "" {
		return false, newError(ErrInvalidArgument, c.part(), "empty hyperlink target for cell %s", c.Name())
	}
	rel, err := c.row.pkg.hyperlinkRel(c.row.sheet, c.Name())
	if err != nil || rel == nil {
		return false, err
	}
	rel.CreateAttr("Target", url)
	c.row.pkg.markDirty(parser.RelsPart(c.part()))
	return true, nil
}

func (c *Cell) setValue(text string) error {
	if err := c.row.pkg.checkOpen(); err != nil {
		return err
	}
	c.clear()
	v := newSibling(c.el, "v")
	v.SetText(text)
	insertBefore(c.el, v, "extLst")
	c.row.pkg.markDirty(c.part())
	return nil
}

// clear removes the type marker and every value and formula element. Losing
// a formula invalidates the calculation chain.
func (c *Cell) clear() {
	c.el.RemoveAttr("t")
	for _, child := range c.el.ChildElements() {
		switch child.Tag {
		case "f":
			c.row.pkg.invalidateCalcChain()
			c.el.RemoveChild(child)
		case "v", "is":
			c.el.RemoveChild(child)
		}
	}
}

// richText concatenates the text runs of a string item (<si> or <is>),
// leaving out phonetic runs.
func richText(el *etree.Element) string {
	var sb strings.Builder
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, child := range e.ChildElements() {
			switch child.Tag {
			case "t":
				sb.WriteString(child.Text())
			case "rPh", "phoneticPr":
			default:
				walk(child)
			}
		}
	}
	walk(el)
	return sb.String()
}
