package xlsxpatch

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/models"
	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/parser"
)

// NotFound is returned by WorksheetNumber when no sheet has the given name.
const NotFound = -1

func (p *Package) sheetList() ([]*etree.Element, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	wb, err := p.frags.root(parser.WorkbookPart)
	if err != nil {
		return nil, err
	}
	sheets := wb.SelectElement("sheets")
	if sheets == nil {
		return nil, newError(ErrStructure, parser.WorkbookPart, "missing <sheets>")
	}
	return sheets.SelectElements("sheet"), nil
}

// WorksheetNumber resolves a sheet name to the number of its worksheet part,
// following the workbook relationship of the first sheet with that name. It
// returns NotFound when there is no such sheet.
func (p *Package) WorksheetNumber(name string) (int, error) {
	sheets, err := p.sheetList()
	if err != nil {
		return NotFound, err
	}
	for _, sheet := range sheets {
		if sheet.SelectAttrValue("name", "") != name {
			continue
		}
		rid := relID(sheet)
		if rid == "" {
			return NotFound, newError(ErrStructure, parser.WorkbookPart, "sheet %q has no relationship id", name)
		}
		if target, ok := p.workbookRelTarget(rid); ok {
			if n, ok := parser.TrailingNumber(target); ok {
				return n, nil
			}
		}
		if n, ok := parser.TrailingNumber(rid); ok {
			return n, nil
		}
		return NotFound, newError(ErrInvalidArgument, parser.WorkbookPart, "cannot derive a worksheet number from %q", rid)
	}
	return NotFound, nil
}

// workbookRelTarget looks up rid in the workbook relationships. Any failure
// to do so is reported as not found so the caller can fall back.
func (p *Package) workbookRelTarget(rid string) (string, bool) {
	if !p.frags.exists(parser.WorkbookRelsPart) {
		return "", false
	}
	rels, err := p.frags.root(parser.WorkbookRelsPart)
	if err != nil {
		p.log.Debug("workbook relationships unreadable", "err", err)
		return "", false
	}
	rel := findRelationship(rels, rid)
	if rel == nil {
		return "", false
	}
	target := rel.SelectAttrValue("Target", "")
	return target, target != ""
}

// WorksheetName returns the name of the sheet at 1-based position n in the
// workbook's sheet list.
func (p *Package) WorksheetName(n int) (string, bool, error) {
	sheets, err := p.sheetList()
	if err != nil {
		return "", false, err
	}
	if n < 1 || n > len(sheets) {
		return "", false, nil
	}
	return sheets[n-1].SelectAttrValue("name", ""), true, nil
}

// WorksheetCount returns the number of sheets in the workbook.
func (p *Package) WorksheetCount() (int, error) {
	sheets, err := p.sheetList()
	if err != nil {
		return 0, err
	}
	return len(sheets), nil
}

// FullCalcOnLoad reports whether the workbook asks for a full recalculation
// when it is opened.
func (p *Package) FullCalcOnLoad() (bool, error) {
	if err := p.checkOpen(); err != nil {
		return false, err
	}
	wb, err := p.frags.root(parser.WorkbookPart)
	if err != nil {
		return false, err
	}
	calcPr := wb.SelectElement("calcPr")
	if calcPr == nil {
		return false, nil
	}
	return xmlBool(calcPr.SelectAttrValue("fullCalcOnLoad", "")), nil
}

// SetFullCalcOnLoad sets or clears the full-recalculation-on-load flag.
func (p *Package) SetFullCalcOnLoad(on bool) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	wb, err := p.frags.root(parser.WorkbookPart)
	if err != nil {
		return err
	}
	calcPr := wb.SelectElement("calcPr")
	if calcPr == nil {
		if !on {
			return nil
		}
		calcPr = newSibling(wb, "calcPr")
		insertAfterLast(wb, calcPr, "sheets", "functionGroups", "externalReferences", "definedNames")
	}
	if on {
		calcPr.CreateAttr("fullCalcOnLoad", "1")
	} else {
		calcPr.RemoveAttr("fullCalcOnLoad")
	}
	p.markDirty(parser.WorkbookPart)
	return nil
}

// DateEpoch returns the date system of the workbook.
func (p *Package) DateEpoch() (parser.Epoch, error) {
	if p.epoch != 0 {
		return p.epoch, nil
	}
	if err := p.checkOpen(); err != nil {
		return 0, err
	}
	wb, err := p.frags.root(parser.WorkbookPart)
	if err != nil {
		return 0, err
	}
	flag := ""
	if pr := wb.SelectElement("workbookPr"); pr != nil {
		flag = pr.SelectAttrValue("date1904", "")
	}
	p.epoch = parser.EpochFromFlag(flag)
	return p.epoch, nil
}

// PrintAreas returns the print areas defined for worksheet position sheet
// (1-based, as in WorksheetName).
func (p *Package) PrintAreas(sheet int) ([]models.PrintArea, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	wb, err := p.frags.root(parser.WorkbookPart)
	if err != nil {
		return nil, err
	}
	names := wb.SelectElement("definedNames")
	if names == nil {
		return nil, nil
	}
	var areas []models.PrintArea
	for _, dn := range names.SelectElements("definedName") {
		if !strings.EqualFold(dn.SelectAttrValue("name", ""), parser.PrintAreaName) {
			continue
		}
		local, err := strconv.Atoi(dn.SelectAttrValue("localSheetId", ""))
		if err != nil || local+1 != sheet {
			continue
		}
		_, found := parser.ParsePrintAreaReference(dn.Text())
		areas = append(areas, found...)
	}
	return areas, nil
}

// findRelationship returns the Relationship child of rels with Id rid.
func findRelationship(rels *etree.Element, rid string) *etree.Element {
	for _, rel := range rels.SelectElements("Relationship") {
		if rel.SelectAttrValue("Id", "") == rid {
			return rel
		}
	}
	return nil
}

// relID returns the r:id attribute of el whatever prefix the relationships
// namespace is bound to.
func relID(el *etree.Element) string {
	for _, a := range el.Attr {
		if a.Key == "id" && a.Space != "" && a.Space != "xmlns" {
			return a.Value
		}
	}
	return ""
}

// insertAfterLast inserts child right after the last child of parent whose
// tag is one of tags, or first when none is present.
func insertAfterLast(parent, child *etree.Element, tags ...string) {
	index := -1
	for _, t := range parent.Child {
		el, ok := t.(*etree.Element)
		if !ok {
			continue
		}
		for _, tag := range tags {
			if el.Tag == tag {
				index = el.Index()
			}
		}
	}
	parent.InsertChildAt(index+1, child)
}

func xmlBool(v string) bool {
	return v == "1" || v == "true"
}
