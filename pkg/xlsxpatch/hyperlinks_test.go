package xlsxpatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/parser"
)

func TestHyperlinkRead(t *testing.T) {
	p, _ := openFixture(t, nil)

	target, ok, err := mustCell(t, p, 1, "C2").Hyperlink()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/site", target)

	// A cell inside a ranged hyperlink.
	c, err := p.Cell(1, "F2", ModeCreate)
	require.NoError(t, err)
	target, ok, err = c.Hyperlink()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/range", target)

	// Internal locations have no relationship.
	_, ok, err = mustCell(t, p, 1, "A3").Hyperlink()
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = mustCell(t, p, 1, "A1").Hyperlink()
	require.NoError(t, err)
	assert.False(t, ok)

	// Worksheets without hyperlinks.
	_, ok, err = mustCell(t, p, 2, "A2").Hyperlink()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetHyperlinkUpdatesOnly(t *testing.T) {
	p, path := openFixture(t, nil)

	ok, err := mustCell(t, p, 1, "C2").SetHyperlink("https://example.org/new")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mustCell(t, p, 1, "A1").SetHyperlink("https://example.org/none")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = mustCell(t, p, 1, "C2").SetHyperlink("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, []string{parser.RelsPart(parser.WorksheetPart(1))}, p.frags.dirtyNames())
	require.NoError(t, p.Save(true))

	rels := zipEntry(t, path, "xl/worksheets/_rels/sheet1.xml.rels")
	assert.Equal(t, 2, strings.Count(rels, "<Relationship "))
	assert.NotContains(t, rels, "example.org/none")

	q, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	defer q.Discard()
	target, _, err := mustCell(t, q, 1, "C2").Hyperlink()
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/new", target)
}

func TestHyperlinkDanglingRelationship(t *testing.T) {
	rels := strings.Replace(fixtureParts()["xl/worksheets/_rels/sheet1.xml.rels"], `Id="rId1"`, `Id="rId9"`, 1)
	p, _ := openFixture(t, map[string]string{"xl/worksheets/_rels/sheet1.xml.rels": rels})

	_, _, err := mustCell(t, p, 1, "C2").Hyperlink()
	assert.ErrorIs(t, err, ErrStructure)
}

func TestHyperlinkMissingRelationshipPart(t *testing.T) {
	p, _ := openFixture(t, map[string]string{"xl/worksheets/_rels/sheet1.xml.rels": ""})

	_, _, err := mustCell(t, p, 1, "C2").Hyperlink()
	assert.ErrorIs(t, err, ErrFormat)
}
