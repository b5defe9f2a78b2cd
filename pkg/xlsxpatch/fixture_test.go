package xlsxpatch

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	nsMain  = `xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"`
	nsRels  = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	xmlDecl = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// thumbnail is an opaque binary entry that must survive every save untouched.
var thumbnail = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

// fixtureOrder is the entry order of the fixture package.
var fixtureOrder = []string{
	"[Content_Types].xml",
	"_rels/.rels",
	"xl/workbook.xml",
	"xl/_rels/workbook.xml.rels",
	"xl/worksheets/sheet1.xml",
	"xl/worksheets/_rels/sheet1.xml.rels",
	"xl/worksheets/sheet2.xml",
	"xl/sharedStrings.xml",
	"xl/calcChain.xml",
	"docProps/thumbnail.jpeg",
}

func fixtureParts() map[string]string {
	return map[string]string{
		"[Content_Types].xml": xmlDecl +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Default Extension="jpeg" ContentType="image/jpeg"/>` +
			`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
			`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>` +
			`<Override PartName="/xl/worksheets/sheet2.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>` +
			`<Override PartName="/xl/sharedStrings.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"/>` +
			`<Override PartName="/xl/calcChain.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.calcChain+xml"/>` +
			`</Types>`,
		"_rels/.rels": xmlDecl +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>` +
			`</Relationships>`,
		"xl/workbook.xml": xmlDecl +
			`<workbook ` + nsMain + ` ` + nsRels + `>` +
			`<workbookPr/>` +
			`<sheets>` +
			`<sheet name="Data" sheetId="1" r:id="rId1"/>` +
			`<sheet name="Other" sheetId="2" r:id="rId5"/>` +
			`</sheets>` +
			`<definedNames>` +
			`<definedName name="_xlnm.Print_Area" localSheetId="0">Data!$A$1:$C$3</definedName>` +
			`</definedNames>` +
			`</workbook>`,
		"xl/_rels/workbook.xml.rels": xmlDecl +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>` +
			`<Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="/xl/worksheets/sheet2.xml"/>` +
			`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.xml"/>` +
			`<Relationship Id="rId4" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/calcChain" Target="calcChain.xml"/>` +
			`</Relationships>`,
		"xl/worksheets/sheet1.xml": xmlDecl +
			`<worksheet ` + nsMain + ` ` + nsRels + `>` +
			`<dimension ref="A1:C3"/>` +
			`<sheetData>` +
			`<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="inlineStr"><is><t>Link</t></is></c></row>` +
			`<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>12.5</v></c><c r="C2" t="inlineStr"><is><t>site</t></is></c></row>` +
			`<row r="3"><c r="A3" t="inlineStr"><is><t>Gadget</t></is></c><c r="B3"><f>B2*2</f><v>25</v></c><c r="C3"><v>44865</v></c></row>` +
			`</sheetData>` +
			`<hyperlinks>` +
			`<hyperlink ref="C2" r:id="rId1"/>` +
			`<hyperlink ref="E1:F2" r:id="rId2"/>` +
			`<hyperlink ref="A3" location="Other!A2"/>` +
			`</hyperlinks>` +
			`</worksheet>`,
		"xl/worksheets/_rels/sheet1.xml.rels": xmlDecl +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/site" TargetMode="External"/>` +
			`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/range" TargetMode="External"/>` +
			`</Relationships>`,
		"xl/worksheets/sheet2.xml": xmlDecl +
			`<worksheet ` + nsMain + `>` +
			`<sheetData>` +
			`<row r="2"><c r="A2" t="b"><v>1</v><extLst/></c><c r="B2" t="e"><v>#DIV/0!</v></c><c r="C2" t="str"><f>"x"&amp;"y"</f><v>xy</v></c></row>` +
			`</sheetData>` +
			`</worksheet>`,
		"xl/sharedStrings.xml": xmlDecl +
			`<sst ` + nsMain + ` count="4" uniqueCount="3">` +
			`<si><t>Name</t></si>` +
			`<si><t>Price</t></si>` +
			`<si><r><t>Wid</t></r><r><t>get</t></r><rPh sb="0" eb="1"><t>ウ</t></rPh></si>` +
			`</sst>`,
		"xl/calcChain.xml": xmlDecl +
			`<calcChain ` + nsMain + `><c r="B3" i="1"/></calcChain>`,
		"docProps/thumbnail.jpeg": string(thumbnail),
	}
}

// writeFixture writes the fixture package to a temporary file. Entries in
// overrides replace fixture parts; an empty value leaves the part out.
func writeFixture(t *testing.T, overrides map[string]string) string {
	t.Helper()
	parts := fixtureParts()
	for name, body := range overrides {
		parts[name] = body
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, name := range fixtureOrder {
		body := parts[name]
		if body == "" {
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func openFixture(t *testing.T, overrides map[string]string) (*Package, string) {
	t.Helper()
	path := writeFixture(t, overrides)
	p, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() {
		if !p.closed {
			p.Discard()
		}
	})
	return p, path
}

// zipEntries returns the entry names of the file at path in archive order,
// together with the raw (still compressed) bytes of each entry.
func zipEntries(t *testing.T, path string) ([]string, map[string][]byte) {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	raw := make(map[string][]byte)
	for _, f := range zr.File {
		names = append(names, f.Name)
		r, err := f.OpenRaw()
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		raw[f.Name] = data
	}
	return names, raw
}

func zipEntry(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	return ""
}

func mustCell(t *testing.T, p *Package, sheet int, ref string) *Cell {
	t.Helper()
	c, err := p.Cell(sheet, ref, ModeError)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func childTags(c *Cell) []string {
	var tags []string
	for _, el := range c.el.ChildElements() {
		tags = append(tags, el.Tag)
	}
	return tags
}
