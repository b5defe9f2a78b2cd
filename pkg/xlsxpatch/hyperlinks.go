package xlsxpatch

import (
	"github.com/beevik/etree"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/parser"
)

// hyperlinkRel returns the hyperlink relationship attached to cell ref of
// worksheet sheet, or nil when the cell has no external hyperlink.
func (p *Package) hyperlinkRel(sheet int, ref string) (*etree.Element, error) {
	ws, err := p.worksheet(sheet)
	if err != nil {
		return nil, err
	}
	links := ws.SelectElement("hyperlinks")
	if links == nil {
		return nil, nil
	}

	rid := ""
	for _, link := range links.SelectElements("hyperlink") {
		if parser.RangeContains(link.SelectAttrValue("ref", ""), ref) {
			if rid = relID(link); rid != "" {
				break
			}
		}
	}
	if rid == "" {
		return nil, nil
	}

	relsPart := parser.RelsPart(parser.WorksheetPart(sheet))
	rels, err := p.frags.root(relsPart)
	if err != nil {
		return nil, err
	}
	rel := findRelationship(rels, rid)
	if rel == nil {
		return nil, newError(ErrStructure, relsPart, "relationship %s of cell %s not found", rid, ref)
	}
	if !parser.IsHyperlinkRel(rel.SelectAttrValue("Type", "")) {
		return nil, nil
	}
	return rel, nil
}
