package xlgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertRows_RelocatesAndBack(t *testing.T) {
	s := NewSheet("Data")
	require.NoError(t, s.SetValue(5, 0, String("X")))

	require.NoError(t, s.InsertRows(2, 3))
	_, ok := s.Cell(5, 0)
	assert.False(t, ok)
	assert.Equal(t, "X", s.Value(8, 0).String())

	require.NoError(t, s.DeleteRows(2, 3))
	assert.Equal(t, "X", s.Value(5, 0).String())
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, s.Verify())
}

func TestInsertRows_AboveUntouched(t *testing.T) {
	s := newTestSheet(t, []any{"r0"}, []any{"r1"}, []any{"r2"})
	require.NoError(t, s.InsertRows(1, 2))
	assert.Equal(t, "r0", s.Value(0, 0).String())
	assert.True(t, s.Value(1, 0).IsEmpty())
	assert.True(t, s.Value(2, 0).IsEmpty())
	assert.Equal(t, "r1", s.Value(3, 0).String())
	assert.Equal(t, "r2", s.Value(4, 0).String())
	dim, _ := s.Dimensions()
	assert.Equal(t, "A1:A5", dim.String())
}

func TestDeleteRows_DiscardsSpan(t *testing.T) {
	s := newTestSheet(t, []any{"r0"}, []any{"r1"}, []any{"r2"}, []any{"r3"})
	s.SetRowHeight(1, 40)
	s.SetRowHeight(3, 50)
	require.NoError(t, s.DeleteRows(1, 2))

	assert.Equal(t, []string{"r0", "r3"}, columnValues(s, 0, 2))
	assert.Equal(t, 2, s.Len())
	_, ok := s.RowConfig(3)
	assert.False(t, ok)
	rc, ok := s.RowConfig(1)
	require.True(t, ok)
	assert.Equal(t, 50.0, rc.Height, "row config follows its row")
}

func TestInsertColumns(t *testing.T) {
	s := newTestSheet(t, []any{"a", "b", "c"})
	s.SetColWidth(1, 20)
	require.NoError(t, s.InsertColumns(1, 1))
	assert.Equal(t, []string{"a", "", "b", "c"}, rowValues(s, 0, 4))
	cc, ok := s.ColConfig(2)
	require.True(t, ok)
	assert.Equal(t, 20.0, cc.Width)

	require.NoError(t, s.DeleteColumns(0, 2))
	assert.Equal(t, []string{"b", "c"}, rowValues(s, 0, 2))
}

func TestStructure_InvalidSpan(t *testing.T) {
	s := NewSheet("Data")
	assert.ErrorIs(t, s.InsertRows(-1, 1), ErrInvalidRange)
	assert.ErrorIs(t, s.InsertRows(0, 0), ErrInvalidRange)
	assert.ErrorIs(t, s.DeleteColumns(0, -2), ErrInvalidRange)
	assert.ErrorIs(t, s.MoveRow(-1, 2), ErrInvalidRange)
}

func TestStructure_NoEventsOrHistory(t *testing.T) {
	s := newTestSheet(t, []any{1}, []any{2})
	calls := 0
	s.Subscribe(EventAll, func(Event) { calls++ })
	require.NoError(t, s.InsertRows(0, 1))
	require.NoError(t, s.DeleteColumns(0, 1))
	assert.Zero(t, calls)
	assert.False(t, s.CanUndo())
	assert.Empty(t, s.PendingChanges())
}

func TestStructure_MergesShift(t *testing.T) {
	s := NewSheet("Data")
	require.NoError(t, s.MergeAt("A3:B4"))
	require.NoError(t, s.MergeAt("D1:D6"))

	require.NoError(t, s.InsertRows(0, 2))
	assert.Equal(t, []Range{MustRange("D3:D8"), MustRange("A5:B6")}, s.Merges())
	assert.Equal(t, MergeMaster, s.MergeRole(4, 0).Kind)

	require.NoError(t, s.InsertRows(5, 1))
	assert.Equal(t, []Range{MustRange("D3:D9"), MustRange("A5:B7")}, s.Merges(), "inserting inside widens")

	require.NoError(t, s.DeleteRows(4, 3))
	assert.Equal(t, []Range{MustRange("D3:D6")}, s.Merges(), "merges inside the deleted span are dropped")
	assert.Empty(t, s.Verify())
}

func TestStructure_MergeDeletedEntirely(t *testing.T) {
	s := NewSheet("Data")
	require.NoError(t, s.MergeAt("B1:C1"))
	require.NoError(t, s.DeleteColumns(1, 2))
	assert.Empty(t, s.Merges())
	assert.Equal(t, 0, s.Len())
}

func TestStructure_FilterShifts(t *testing.T) {
	s := newTestSheet(t, []any{"x", "keep"}, []any{"y", "drop"})
	require.NoError(t, s.Filter(1, Equals("keep")))
	assert.Equal(t, []int{1}, s.FilteredRows())

	require.NoError(t, s.InsertRows(0, 1))
	assert.Equal(t, []int{2}, s.FilteredRows(), "hidden rows move with their data")
	assert.False(t, s.IsRowHidden(1))

	require.NoError(t, s.InsertColumns(0, 1))
	fs := s.Filters()
	require.Len(t, fs, 1)
	assert.Equal(t, 2, fs[0].Column)
	assert.Equal(t, []int{2}, s.FilteredRows())
	assert.Empty(t, s.Verify())
}

func TestMoveRow(t *testing.T) {
	s := newTestSheet(t, []any{"r0"}, []any{"r1"}, []any{"r2"}, []any{"r3"})
	s.SetRowHeight(0, 33)

	require.NoError(t, s.MoveRow(0, 3))
	assert.Equal(t, []string{"r1", "r2", "r0", "r3"}, columnValues(s, 0, 4))
	rc, ok := s.RowConfig(2)
	require.True(t, ok)
	assert.Equal(t, 33.0, rc.Height)

	require.NoError(t, s.MoveRow(3, 0))
	assert.Equal(t, []string{"r3", "r1", "r2", "r0"}, columnValues(s, 0, 4))

	require.NoError(t, s.MoveRow(1, 2))
	assert.Equal(t, []string{"r3", "r1", "r2", "r0"}, columnValues(s, 0, 4), "moving before the next row is a no-op")
	assert.Empty(t, s.Verify())
}

func TestMoveColumn(t *testing.T) {
	s := newTestSheet(t, []any{"a", "b", "c"})
	require.NoError(t, s.MoveColumn(2, 0))
	assert.Equal(t, []string{"c", "a", "b"}, rowValues(s, 0, 3))
}

func TestShiftSpan(t *testing.T) {
	tests := []struct {
		name           string
		lo, hi, at, n  int
		wantLo, wantHi int
		ok             bool
	}{
		{"insert above", 5, 7, 2, 3, 8, 10, true},
		{"insert inside", 5, 7, 6, 1, 5, 8, true},
		{"insert below", 5, 7, 9, 2, 5, 7, true},
		{"delete above", 5, 7, 0, -2, 3, 5, true},
		{"delete top", 5, 7, 4, -2, 4, 5, true},
		{"delete bottom", 5, 7, 7, -3, 5, 6, true},
		{"delete all", 5, 7, 5, -3, 0, 0, false},
		{"delete covering", 5, 7, 3, -6, 0, 0, false},
		{"delete below", 5, 7, 8, -1, 5, 7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, ok := shiftSpan(tt.lo, tt.hi, tt.at, tt.n)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.wantLo, lo)
				assert.Equal(t, tt.wantHi, hi)
			}
		})
	}
}

func TestMoveRow_FilteredRowIsReleasedByClearFilter(t *testing.T) {
	s := newTestSheet(t, []any{"Active"}, []any{"Inactive"}, []any{"Active"}, []any{"Active"})
	require.NoError(t, s.Filter(0, Equals("Active")))
	require.Equal(t, []int{1}, s.FilteredRows())

	require.NoError(t, s.MoveRow(1, 4))
	assert.Equal(t, []string{"Active", "Active", "Active", "Inactive"}, columnValues(s, 0, 4))
	assert.Equal(t, []int{3}, s.FilteredRows())
	assert.Empty(t, s.Verify())

	s.ClearFilter()
	assert.Empty(t, s.HiddenRows())
}

func TestMoveRow_KeepsHandHiddenRow(t *testing.T) {
	s := newTestSheet(t, []any{"x"}, []any{"y"}, []any{"z"})
	s.SetRowHidden(0, true)
	require.NoError(t, s.Filter(0, Equals("y")))

	require.NoError(t, s.MoveRow(0, 3))
	s.ClearFilter()
	assert.Equal(t, []int{2}, s.HiddenRows())
}

func TestMoveColumn_CarriesFilter(t *testing.T) {
	s := newTestSheet(t, []any{"a", "keep"}, []any{"b", "drop"}, []any{"c", "keep"})
	require.NoError(t, s.Filter(1, Equals("keep")))

	require.NoError(t, s.MoveColumn(1, 0))
	assert.Equal(t, []string{"keep", "a"}, rowValues(s, 0, 2))
	fs := s.Filters()
	require.Len(t, fs, 1)
	assert.Equal(t, 0, fs[0].Column)
	assert.Equal(t, []int{1}, s.FilteredRows())
	assert.True(t, s.IsRowHidden(1))
	assert.Empty(t, s.Verify())
}

func TestStructure_ClearsHistory(t *testing.T) {
	s := NewSheet("Data")
	require.NoError(t, s.SetValue(5, 0, String("X")))
	require.True(t, s.CanUndo())

	require.NoError(t, s.InsertRows(0, 1))
	assert.False(t, s.CanUndo())
	assert.False(t, s.Undo())
	assert.Equal(t, "X", s.Value(6, 0).String())
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.SetValue(0, 0, String("Y")))
	require.True(t, s.Undo())
	require.True(t, s.CanRedo())
	require.NoError(t, s.MoveColumn(0, 2))
	assert.False(t, s.CanRedo())
}

func TestInsert_PastLastIndex(t *testing.T) {
	s := NewSheet("Data")
	require.NoError(t, s.SetValue(MaxRow, 0, String("edge")))
	assert.ErrorIs(t, s.InsertRows(0, 1), ErrInvalidRange)
	assert.NoError(t, s.InsertRows(MaxRow+1, 1), "nothing at or below the insertion point")

	s = NewSheet("Data")
	s.SetColWidth(MaxCol-1, 12)
	assert.ErrorIs(t, s.InsertColumns(0, 2), ErrInvalidRange)
	assert.NoError(t, s.InsertColumns(0, 1))
}
