package parser

import (
	"path"
	"strconv"
	"strings"
)

// Fixed part names inside a spreadsheet package.
const (
	WorkbookPart      = "xl/workbook.xml"
	WorkbookRelsPart  = "xl/_rels/workbook.xml.rels"
	SharedStringsPart = "xl/sharedStrings.xml"
	CalcChainPart     = "xl/calcChain.xml"
	ContentTypesPart  = "[Content_Types].xml"
)

// HyperlinkRelType is the relationship type of external hyperlink targets.
const HyperlinkRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"

// WorksheetPart returns the part name of worksheet n (1-based).
func WorksheetPart(n int) string {
	return "xl/worksheets/sheet" + strconv.Itoa(n) + ".xml"
}

// RelsPart returns the relationship part that belongs to part, e.g.
// "xl/worksheets/sheet1.xml" -> "xl/worksheets/_rels/sheet1.xml.rels".
func RelsPart(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// ResolveRelativePath resolves a relationship target against the directory
// of the part that owns the relationship. Absolute targets are package-root
// relative.
func ResolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

// TrailingNumber extracts the integer at the end of s, ignoring a file
// extension: "worksheets/sheet12.xml" -> 12, "rId7" -> 7.
func TrailingNumber(s string) (int, bool) {
	s = strings.TrimSuffix(s, path.Ext(s))
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsHyperlinkRel reports whether relType names a hyperlink relationship,
// tolerating the strict-conformance namespace.
func IsHyperlinkRel(relType string) bool {
	return relType == HyperlinkRelType || strings.HasSuffix(relType, "/relationships/hyperlink")
}
