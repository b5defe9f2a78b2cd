package xlsxpatch

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadValues(t *testing.T) {
	p, _ := openFixture(t, nil)

	s, ok, err := mustCell(t, p, 1, "A1").Text()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Name", s)

	// Rich text runs are joined, phonetic runs left out.
	s, _, err = mustCell(t, p, 1, "A2").Text()
	require.NoError(t, err)
	assert.Equal(t, "Widget", s)

	s, ok, err = mustCell(t, p, 1, "C1").Text()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Link", s)

	b2 := mustCell(t, p, 1, "B2")
	f, ok := b2.Float()
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)
	_, ok = b2.Int()
	assert.False(t, ok)
	_, ok = b2.Formula()
	assert.False(t, ok)
	s, ok, err = b2.Text()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "12.5", s)

	b3 := mustCell(t, p, 1, "B3")
	formula, ok := b3.Formula()
	assert.True(t, ok)
	assert.Equal(t, "=B2*2", formula)
	i, ok := b3.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(25), i)

	// Shared string cells carry an index, not a number.
	_, ok = mustCell(t, p, 1, "A1").Float()
	assert.False(t, ok)
	_, ok = mustCell(t, p, 1, "A1").Int()
	assert.False(t, ok)
}

func TestValue(t *testing.T) {
	p, _ := openFixture(t, nil)

	tests := []struct {
		sheet    int
		ref      string
		expected interface{}
	}{
		{1, "A1", "Name"},
		{1, "A3", "Gadget"},
		{1, "B2", 12.5},
		{1, "B3", int64(25)},
		{2, "A2", true},
		{2, "B2", "#DIV/0!"},
		{2, "C2", "xy"},
	}
	for _, tt := range tests {
		v, err := mustCell(t, p, tt.sheet, tt.ref).Value()
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.expected, v, "sheet %d cell %s", tt.sheet, tt.ref)
	}

	c, err := p.Cell(1, "H9", ModeCreate)
	require.NoError(t, err)
	v, err := c.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
	_, ok, err := c.Text()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptSharedStringCell(t *testing.T) {
	sheet := fixtureParts()["xl/worksheets/sheet1.xml"]
	sheet = strings.Replace(sheet, `<c r="A1" t="s"><v>0</v></c>`, `<c r="A1" t="s"><v>42</v></c>`, 1)
	sheet = strings.Replace(sheet, `<c r="B1" t="s"><v>1</v></c>`, `<c r="B1" t="s"><v>one</v></c>`, 1)
	sheet = strings.Replace(sheet, `<is><t>Link</t></is></c>`, `<is><t>Link</t></is></c><c r="AA1" t="s"/>`, 1)
	p, _ := openFixture(t, map[string]string{"xl/worksheets/sheet1.xml": sheet})

	_, _, err := mustCell(t, p, 1, "B1").Text()
	assert.ErrorIs(t, err, ErrStructure)

	_, _, err = mustCell(t, p, 1, "AA1").Text()
	assert.ErrorIs(t, err, ErrStructure)

	// An index past the end of the table reads as absent.
	_, ok, err := mustCell(t, p, 1, "A1").Text()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetValuesAreExclusive(t *testing.T) {
	p, _ := openFixture(t, nil)

	// Number over a shared string drops the type marker.
	a1 := mustCell(t, p, 1, "A1")
	require.NoError(t, a1.SetFloat(3.25))
	assert.Equal(t, "", a1.typ())
	assert.Equal(t, []string{"v"}, childTags(a1))
	f, ok := a1.Float()
	assert.True(t, ok)
	assert.Equal(t, 3.25, f)
	assert.False(t, p.calcChainStale)

	// Number over an inline string drops <is>.
	c1 := mustCell(t, p, 1, "C1")
	require.NoError(t, c1.SetInt(-4))
	assert.Equal(t, []string{"v"}, childTags(c1))
	i, ok := c1.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(-4), i)

	// Number over a formula drops <f> and invalidates the chain.
	b3 := mustCell(t, p, 1, "B3")
	require.NoError(t, b3.SetInt(50))
	_, ok = b3.Formula()
	assert.False(t, ok)
	assert.Equal(t, []string{"v"}, childTags(b3))
	assert.True(t, p.calcChainStale)

	// Formula over a shared string drops the type marker and the value.
	a2 := mustCell(t, p, 1, "A2")
	require.NoError(t, a2.SetFormula("=SUM(B1:B3)"))
	assert.Equal(t, "", a2.typ())
	assert.Equal(t, []string{"f"}, childTags(a2))
	formula, ok := a2.Formula()
	assert.True(t, ok)
	assert.Equal(t, "=SUM(B1:B3)", formula)
	_, ok = a2.Float()
	assert.False(t, ok)

	// String over a number.
	b2 := mustCell(t, p, 1, "B2")
	require.NoError(t, b2.SetString("twelve"))
	assert.Equal(t, "s", b2.typ())
	assert.Equal(t, []string{"v"}, childTags(b2))
	_, ok = b2.Float()
	assert.False(t, ok)
	s, _, err := b2.Text()
	require.NoError(t, err)
	assert.Equal(t, "twelve", s)
}

func TestSetKeepsExtLstLast(t *testing.T) {
	p, _ := openFixture(t, nil)
	c := mustCell(t, p, 2, "A2")

	require.NoError(t, c.SetFloat(2))
	assert.Equal(t, []string{"v", "extLst"}, childTags(c))

	require.NoError(t, c.SetFormula("1+1"))
	assert.Equal(t, []string{"f", "extLst"}, childTags(c))

	require.NoError(t, c.SetString("x"))
	assert.Equal(t, []string{"v", "extLst"}, childTags(c))
}

func TestSetFloatRejectsNonFinite(t *testing.T) {
	p, _ := openFixture(t, nil)
	c := mustCell(t, p, 1, "B2")

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, c.SetFloat(f), ErrInvalidArgument)
	}
	v, ok := c.Float()
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)
}

func TestSetFormulaAlwaysInvalidatesCalcChain(t *testing.T) {
	p, _ := openFixture(t, nil)
	c, err := p.Cell(1, "E5", ModeCreate)
	require.NoError(t, err)

	require.NoError(t, c.SetFormula("A1"))
	assert.True(t, p.calcChainStale)
	formula, _ := c.Formula()
	assert.Equal(t, "=A1", formula)
}

func TestSetStringMarksFragmentsDirty(t *testing.T) {
	p, _ := openFixture(t, nil)

	require.NoError(t, mustCell(t, p, 1, "B2").SetString("x"))
	assert.ElementsMatch(t, []string{"xl/sharedStrings.xml", "xl/worksheets/sheet1.xml"}, p.frags.dirtyNames())
}
