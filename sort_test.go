package xlgrid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestSort_NullsLastAscending(t *testing.T) {
	s := newTestSheet(t, []any{3}, []any{nil}, []any{1}, []any{2})
	// The null row needs a cell in another column so the row is inside the span.
	require.NoError(t, s.SetValue(1, 1, String("null row")))

	require.NoError(t, s.Sort(0, SortOptions{}))
	assert.Equal(t, []string{"1", "2", "3", ""}, columnValues(s, 0, 4))
	assert.Equal(t, "null row", s.Value(3, 1).String(), "the whole row travels")
}

func TestSort_NullsLastDescending(t *testing.T) {
	s := newTestSheet(t, []any{3}, []any{nil}, []any{1}, []any{2})
	require.NoError(t, s.Sort(0, SortOptions{Descending: true}))
	assert.Equal(t, []string{"3", "2", "1", ""}, columnValues(s, 0, 4))
}

func TestSort_RowsTravelTogether(t *testing.T) {
	s := newTestSheet(t,
		[]any{"Name", "Age"},
		[]any{"carol", 41},
		[]any{"alice", 30},
		[]any{"Bob", 25},
	)
	require.NoError(t, s.Sort(0, SortOptions{HasHeader: true}))
	assert.Equal(t, []string{"Name", "alice", "Bob", "carol"}, columnValues(s, 0, 4))
	assert.Equal(t, []string{"Age", "30", "25", "41"}, columnValues(s, 1, 4))

	require.NoError(t, s.Sort(1, SortOptions{HasHeader: true, Descending: true}))
	assert.Equal(t, []string{"Name", "carol", "alice", "Bob"}, columnValues(s, 0, 4))
}

func TestSort_CaseSensitive(t *testing.T) {
	s := newTestSheet(t, []any{"b"}, []any{"B"}, []any{"a"})
	require.NoError(t, s.Sort(0, SortOptions{}))
	assert.Equal(t, []string{"a", "b", "B"}, columnValues(s, 0, 3), "case-insensitive ties keep input order")

	s = newTestSheet(t, []any{"B"}, []any{"b"})
	require.NoError(t, s.Sort(0, SortOptions{CaseSensitive: true}))
	assert.Equal(t, []string{"b", "B"}, columnValues(s, 0, 2), "collation puts lowercase first")
}

func TestSort_Stable(t *testing.T) {
	s := newTestSheet(t,
		[]any{1, "first"},
		[]any{0, "x"},
		[]any{1, "second"},
		[]any{1, "third"},
	)
	require.NoError(t, s.Sort(0, SortOptions{}))
	assert.Equal(t, []string{"x", "first", "second", "third"}, columnValues(s, 1, 4))
}

func TestSort_Numeric(t *testing.T) {
	s := newTestSheet(t, []any{"10"}, []any{"9"}, []any{"100"})
	require.NoError(t, s.Sort(0, SortOptions{}))
	assert.Equal(t, []string{"10", "100", "9"}, columnValues(s, 0, 3))

	require.NoError(t, s.Sort(0, SortOptions{Numeric: true}))
	assert.Equal(t, []string{"9", "10", "100"}, columnValues(s, 0, 3))
}

func TestSort_Dates(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	s := newTestSheet(t, []any{d(20)}, []any{d(3)}, []any{d(11)})
	require.NoError(t, s.Sort(0, SortOptions{}))
	for i, day := range []int{3, 11, 20} {
		got, ok := s.Value(i, 0).Time()
		require.True(t, ok)
		assert.Equal(t, day, got.Day())
	}
}

func TestSortBy_MultipleKeys(t *testing.T) {
	s := newTestSheet(t,
		[]any{"east", 3},
		[]any{"west", 1},
		[]any{"east", 1},
		[]any{"west", 2},
	)
	require.NoError(t, s.SortBy([]SortKey{
		{Column: 0},
		{Column: 1, Descending: true},
	}, SortOptions{}))
	assert.Equal(t, []string{"east", "east", "west", "west"}, columnValues(s, 0, 4))
	assert.Equal(t, []string{"3", "1", "2", "1"}, columnValues(s, 1, 4))
}

func TestSort_RangeLimitsSpan(t *testing.T) {
	s := newTestSheet(t,
		[]any{3, "a", "keep0"},
		[]any{1, "b", "keep1"},
		[]any{2, "c", "keep2"},
	)
	r := MustRange("A1:B3")
	require.NoError(t, s.Sort(0, SortOptions{Range: &r}))
	assert.Equal(t, []string{"1", "2", "3"}, columnValues(s, 0, 3))
	assert.Equal(t, []string{"b", "c", "a"}, columnValues(s, 1, 3))
	assert.Equal(t, []string{"keep0", "keep1", "keep2"}, columnValues(s, 2, 3), "columns outside the range stay")
}

func TestSort_Errors(t *testing.T) {
	s := newTestSheet(t, []any{1, 2})
	assert.Error(t, s.SortBy(nil, SortOptions{}))
	assert.ErrorIs(t, s.Sort(5, SortOptions{}), ErrInvalidRange)

	bad := NewRange(3, 0, 0, 0)
	assert.ErrorIs(t, s.Sort(0, SortOptions{Range: &bad}), ErrInvalidRange)

	assert.NoError(t, NewSheet("Empty").Sort(0, SortOptions{}))
}

func TestSort_NoEventsOrHistory(t *testing.T) {
	s := newTestSheet(t, []any{2}, []any{1})
	calls := 0
	s.Subscribe(EventAll, func(Event) { calls++ })
	require.NoError(t, s.Sort(0, SortOptions{}))
	assert.Zero(t, calls)
	assert.False(t, s.CanUndo())
	assert.Empty(t, s.PendingChanges())
	assert.Empty(t, s.Verify())
}

func TestSort_KeepsFilterInSync(t *testing.T) {
	s := newTestSheet(t, []any{"b", "hide"}, []any{"a", "show"})
	require.NoError(t, s.Filter(1, Equals("show")))
	assert.Equal(t, []int{0}, s.FilteredRows())

	require.NoError(t, s.Sort(0, SortOptions{}))
	assert.Equal(t, []int{1}, s.FilteredRows(), "the hidden row is recomputed after the reorder")
	assert.Empty(t, s.Verify())
}

func TestSort_Locale(t *testing.T) {
	s := NewSheet("Data", WithLocale(language.Swedish))
	for i, v := range []string{"ö", "z", "a"} {
		require.NoError(t, s.SetValue(i, 0, String(v)))
	}
	require.NoError(t, s.Sort(0, SortOptions{}))
	assert.Equal(t, []string{"a", "z", "ö"}, columnValues(s, 0, 3))
}

func TestSort_ClearsHistory(t *testing.T) {
	s := newTestSheet(t, []any{3}, []any{1}, []any{2})
	require.NoError(t, s.SetValue(0, 1, String("note")))
	require.True(t, s.CanUndo())

	require.NoError(t, s.Sort(0, SortOptions{}))
	assert.False(t, s.CanUndo())
	assert.False(t, s.Undo())
	assert.Equal(t, "note", s.Value(2, 1).String(), "the row travelled with its key")
}

func TestSort_RejectsMergeInSortedRows(t *testing.T) {
	s := newTestSheet(t, []any{"h", "m"}, []any{3, nil}, []any{1, nil}, []any{2, nil})
	require.NoError(t, s.MergeAt("B2:B3"))

	err := s.Sort(0, SortOptions{HasHeader: true})
	var re *RangeError
	require.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Equal(t, []string{"h", "3", "1", "2"}, columnValues(s, 0, 4), "nothing moved")
}

func TestSort_MergeInHeaderIsAllowed(t *testing.T) {
	s := newTestSheet(t, []any{"head", nil}, []any{3, "c"}, []any{1, "a"}, []any{2, "b"})
	require.NoError(t, s.MergeAt("A1:B1"))

	require.NoError(t, s.Sort(0, SortOptions{HasHeader: true}))
	assert.Equal(t, []string{"head", "1", "2", "3"}, columnValues(s, 0, 4))
	assert.Equal(t, []Range{MustRange("A1:B1")}, s.Merges())
	assert.Empty(t, s.Verify())
}
