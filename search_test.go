package xlgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchSheet(t *testing.T) *Sheet {
	t.Helper()
	s := newTestSheet(t,
		[]any{"Apple pie", "banana", 42},
		[]any{"apple", nil, "Pineapple"},
	)
	require.NoError(t, s.SetFormula(2, 0, "SUM(C1:C2)", Number(42)))
	s.ClearHistory()
	s.Commit()
	return s
}

func addresses(cells []*Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Address()
	}
	return out
}

func TestFindAll_RowMajorCaseInsensitive(t *testing.T) {
	s := newSearchSheet(t)
	cells, err := s.FindAll("apple", FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "C2"}, addresses(cells))
}

func TestFindAll_MatchCase(t *testing.T) {
	s := newSearchSheet(t)
	cells, err := s.FindAll("Apple", FindOptions{MatchCase: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, addresses(cells))
}

func TestFindAll_WholeCell(t *testing.T) {
	s := newSearchSheet(t)
	cells, err := s.FindAll("APPLE", FindOptions{WholeCell: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"A2"}, addresses(cells))
}

func TestFindAll_Regexp(t *testing.T) {
	s := newSearchSheet(t)
	cells, err := s.FindAll(`^\d+$`, FindOptions{Regexp: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "A3"}, addresses(cells), "formula cells match on their cached result")

	_, err = s.FindAll("(", FindOptions{Regexp: true})
	assert.Error(t, err)
}

func TestFindAll_LiteralMetacharacters(t *testing.T) {
	s := newTestSheet(t, []any{"a.b", "axb"})
	cells, err := s.FindAll("a.b", FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, addresses(cells))
}

func TestFindAll_Formulas(t *testing.T) {
	s := newSearchSheet(t)
	cells, err := s.FindAll("sum", FindOptions{In: SearchFormulas})
	require.NoError(t, err)
	assert.Equal(t, []string{"A3"}, addresses(cells))

	cells, err = s.FindAll("sum", FindOptions{In: SearchValues})
	require.NoError(t, err)
	assert.Empty(t, cells)

	cells, err = s.FindAll("42", FindOptions{In: SearchBoth})
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "A3"}, addresses(cells))
}

func TestFindAll_Range(t *testing.T) {
	s := newSearchSheet(t)
	r := MustRange("A2:C3")
	cells, err := s.FindAll("apple", FindOptions{Range: &r})
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "C2"}, addresses(cells))

	bad := NewRange(1, 1, 0, 0)
	_, err = s.FindAll("apple", FindOptions{Range: &bad})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestFind(t *testing.T) {
	s := newSearchSheet(t)
	c, ok, err := s.Find("banana", FindOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "B1", c.Address())

	_, ok, err = s.Find("cherry", FindOptions{})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Find("", FindOptions{})
	assert.Error(t, err)
}

func TestReplace_FirstMatchOnly(t *testing.T) {
	s := newSearchSheet(t)
	changed, err := s.Replace("apple", "pear", FindOptions{})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "pear pie", s.Value(0, 0).String())
	assert.Equal(t, "apple", s.Value(1, 0).String())
	assert.Equal(t, 1, s.UndoLen())
}

func TestReplaceAll(t *testing.T) {
	s := newSearchSheet(t)
	n, err := s.ReplaceAll("apple", "pear", FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "pear pie", s.Value(0, 0).String())
	assert.Equal(t, "pear", s.Value(1, 0).String())
	assert.Equal(t, "Pinepear", s.Value(1, 2).String())

	assert.Equal(t, 1, s.UndoLen(), "replace all is one undo step")
	require.True(t, s.Undo())
	assert.Equal(t, "Apple pie", s.Value(0, 0).String())
	assert.Equal(t, "Pineapple", s.Value(1, 2).String())
}

func TestReplaceAll_KeepsNumbers(t *testing.T) {
	s := newTestSheet(t, []any{1200, "x1200"})
	n, err := s.ReplaceAll("12", "34", FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, CellNumber, s.Value(0, 0).Kind())
	assert.Equal(t, "3400", s.Value(0, 0).String())
	assert.Equal(t, "x3400", s.Value(0, 1).String())
}

func TestReplaceAll_RegexpGroups(t *testing.T) {
	s := newTestSheet(t, []any{"2024-06-01"})
	_, err := s.ReplaceAll(`(\d+)-(\d+)-(\d+)`, "$3/$2/$1", FindOptions{Regexp: true})
	require.NoError(t, err)
	assert.Equal(t, "01/06/2024", s.Value(0, 0).String())
}

func TestReplaceAll_LiteralDollar(t *testing.T) {
	s := newTestSheet(t, []any{"price"})
	_, err := s.ReplaceAll("price", "$1", FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, "$1", s.Value(0, 0).String())
}

func TestReplaceAll_Formulas(t *testing.T) {
	s := newSearchSheet(t)
	n, err := s.ReplaceAll("SUM", "AVERAGE", FindOptions{In: SearchFormulas, MatchCase: true})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	c, _ := s.Cell(2, 0)
	assert.Equal(t, "AVERAGE(C1:C2)", c.FormulaText())
	assert.Equal(t, "42", c.Value().String(), "cached result is kept")

	n, err = s.ReplaceAll("42", "7", FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "formula results are not rewritten as values")
	assert.Equal(t, "7", s.Value(0, 2).String())
}
