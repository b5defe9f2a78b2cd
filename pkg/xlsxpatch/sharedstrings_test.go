package xlsxpatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/xlsxpatch/pkg/xlsxpatch/parser"
)

func TestSharedStringLookup(t *testing.T) {
	p, _ := openFixture(t, nil)

	count, err := p.SharedStringCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	s, ok, err := p.SharedString(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Price", s)

	for _, i := range []int{-1, 3} {
		_, ok, err := p.SharedString(i)
		require.NoError(t, err)
		assert.False(t, ok, "SharedString(%d)", i)
	}
}

func TestSharedStringsAreAppendOnly(t *testing.T) {
	p, path := openFixture(t, nil)

	i, err := p.AppendSharedString("Name")
	require.NoError(t, err)
	assert.Equal(t, 3, i)
	j, err := p.AppendSharedString("Name")
	require.NoError(t, err)
	assert.Equal(t, 4, j)

	// Earlier entries keep their meaning.
	s, _, err := p.SharedString(0)
	require.NoError(t, err)
	assert.Equal(t, "Name", s)

	sst, err := p.frags.root(parser.SharedStringsPart)
	require.NoError(t, err)
	assert.Equal(t, "6", sst.SelectAttrValue("count", ""))
	assert.Equal(t, "5", sst.SelectAttrValue("uniqueCount", ""))

	require.NoError(t, p.Save(true))
	q, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	defer q.Discard()
	count, err := q.SharedStringCount()
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestSharedStringWhitespace(t *testing.T) {
	p, path := openFixture(t, nil)

	c, err := p.Cell(1, "D1", ModeCreate)
	require.NoError(t, err)
	require.NoError(t, c.SetString("  padded "))
	require.NoError(t, p.Save(true))

	assert.Contains(t, zipEntry(t, path, parser.SharedStringsPart), `<si><t xml:space="preserve">  padded </t></si>`)

	q, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	defer q.Discard()
	s, _, err := mustCell(t, q, 1, "D1").Text()
	require.NoError(t, err)
	assert.Equal(t, "  padded ", s)
}

func TestSharedStringCountWithoutCountAttr(t *testing.T) {
	sst := xmlDecl + `<sst ` + nsMain + `><si><t>a</t></si><si><t>b</t></si></sst>`
	p, _ := openFixture(t, map[string]string{"xl/sharedStrings.xml": sst})

	i, err := p.AppendSharedString("c")
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	root, err := p.frags.root(parser.SharedStringsPart)
	require.NoError(t, err)
	assert.Equal(t, "3", root.SelectAttrValue("count", ""))
	assert.Equal(t, "3", root.SelectAttrValue("uniqueCount", ""))
}
