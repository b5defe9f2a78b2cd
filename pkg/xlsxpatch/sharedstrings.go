package xlsxpatch

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/parser"
)

// SharedString returns entry i (0-based) of the shared string table. The
// boolean is false when i is out of range.
func (p *Package) SharedString(i int) (string, bool, error) {
	if err := p.checkOpen(); err != nil {
		return "", false, err
	}
	sst, err := p.frags.root(parser.SharedStringsPart)
	if err != nil {
		return "", false, err
	}
	items := sst.SelectElements("si")
	if i < 0 || i >= len(items) {
		return "", false, nil
	}
	return richText(items[i]), true, nil
}

// SharedStringCount returns the number of entries in the shared string table.
func (p *Package) SharedStringCount() (int, error) {
	if err := p.checkOpen(); err != nil {
		return 0, err
	}
	sst, err := p.frags.root(parser.SharedStringsPart)
	if err != nil {
		return 0, err
	}
	return len(sst.SelectElements("si")), nil
}

// AppendSharedString adds s as a new entry at the end of the shared string
// table and returns its index. Existing identical entries are not reused, so
// indexes handed out earlier never change meaning.
func (p *Package) AppendSharedString(s string) (int, error) {
	if err := p.checkOpen(); err != nil {
		return 0, err
	}
	sst, err := p.frags.root(parser.SharedStringsPart)
	if err != nil {
		return 0, err
	}

	before := len(sst.SelectElements("si"))
	si := newSibling(sst, "si")
	t := newSibling(si, "t")
	t.SetText(s)
	setSpacePreserve(t, s)
	si.AddChild(t)
	insertBefore(sst, si, "extLst")

	count, err := strconv.Atoi(sst.SelectAttrValue("count", ""))
	if err != nil {
		count = before
	}
	sst.CreateAttr("count", strconv.Itoa(count+1))
	sst.CreateAttr("uniqueCount", strconv.Itoa(before+1))
	p.markDirty(parser.SharedStringsPart)
	return before, nil
}

// setSpacePreserve marks t so that leading and trailing whitespace in s
// survives, and drops the mark when s has none.
func setSpacePreserve(t *etree.Element, s string) {
	if strings.TrimSpace(s) != s {
		t.CreateAttr("xml:space", "preserve")
	} else {
		t.RemoveAttr("xml:space")
	}
}
