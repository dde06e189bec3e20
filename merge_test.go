package xlgrid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_Roles(t *testing.T) {
	s := newTestSheet(t, []any{"title"})
	r := MustRange("A1:C2")
	require.NoError(t, s.Merge(r))

	for ref := range r.Refs() {
		c, ok := s.Cell(ref.Row, ref.Col)
		require.True(t, ok, ref.String())
		role := c.MergeRole()
		if ref == r.Start {
			assert.Equal(t, MergeRole{Kind: MergeMaster, Range: r}, role)
		} else {
			assert.Equal(t, MergeRole{Kind: MergeSlave, Master: r.Start}, role, ref.String())
		}
		assert.Equal(t, role, s.MergeRole(ref.Row, ref.Col))
	}
	assert.Equal(t, "title", s.Value(0, 0).String(), "values are untouched")
	assert.Equal(t, MergeRole{}, s.MergeRole(5, 5))
}

func TestMerge_Unmerge(t *testing.T) {
	s := newTestSheet(t, []any{"title", nil, nil}, []any{nil, "keep"})
	r := MustRange("A1:C2")
	require.NoError(t, s.Merge(r))
	require.NoError(t, s.Unmerge(r))

	for ref := range r.Refs() {
		assert.Equal(t, MergeNone, s.MergeRole(ref.Row, ref.Col).Kind)
		if c, ok := s.Cell(ref.Row, ref.Col); ok {
			assert.Equal(t, MergeNone, c.MergeRole().Kind)
		}
	}
	assert.Empty(t, s.Merges())
	assert.Equal(t, 2, s.Len(), "placeholder cells are pruned")
	dim, _ := s.Dimensions()
	assert.Equal(t, "A1:B2", dim.String())
}

func TestMerge_Overlap(t *testing.T) {
	s := NewSheet("Data")
	require.NoError(t, s.Merge(MustRange("B2:C3")))

	err := s.Merge(MustRange("C3:D4"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverlap))
	var oe *OverlapError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, MustRange("B2:C3"), oe.Existing)

	assert.NoError(t, s.Merge(MustRange("D4:E5")), "adjacent merges are fine")
	assert.Len(t, s.Merges(), 2)
}

func TestMerge_InvalidRange(t *testing.T) {
	s := NewSheet("Data")
	assert.ErrorIs(t, s.Merge(NewRange(3, 0, 1, 0)), ErrInvalidRange)
	assert.ErrorIs(t, s.MergeAt("A0:B2"), ErrInvalidReference)
}

func TestMerge_UnmergeNotFound(t *testing.T) {
	s := NewSheet("Data")
	require.NoError(t, s.MergeAt("A1:D4"))

	err := s.Unmerge(MustRange("A1:B2"))
	assert.ErrorIs(t, err, ErrMergeNotFound)
	err = s.Unmerge(MustRange("A1:E5"))
	assert.ErrorIs(t, err, ErrMergeNotFound)
	assert.Len(t, s.Merges(), 1)
}

func TestMerge_RegistryMatchesHistory(t *testing.T) {
	s := NewSheet("Data")
	ops := []struct {
		merge bool
		r     string
	}{
		{true, "A1:B2"},
		{true, "D1:E1"},
		{true, "A5:A9"},
		{false, "D1:E1"},
		{true, "C3:F4"},
		{false, "A1:B2"},
		{true, "A1:C2"},
	}
	for _, op := range ops {
		if op.merge {
			require.NoError(t, s.MergeAt(op.r))
		} else {
			require.NoError(t, s.Unmerge(MustRange(op.r)))
		}
	}
	assert.Equal(t, []Range{MustRange("A1:C2"), MustRange("C3:F4"), MustRange("A5:A9")}, s.Merges())
	assert.Empty(t, s.Verify())
}

func TestMerge_MergeContaining(t *testing.T) {
	s := NewSheet("Data")
	require.NoError(t, s.MergeAt("B2:C3"))
	m, ok := s.MergeContaining(2, 2)
	require.True(t, ok)
	assert.Equal(t, MustRange("B2:C3"), m)
	_, ok = s.MergeContaining(0, 0)
	assert.False(t, ok)
}

func TestMerge_EmitsAddedForPlaceholders(t *testing.T) {
	s := newTestSheet(t, []any{"a"})
	var added []string
	s.Subscribe(EventCellAdded, func(ev Event) { added = append(added, ev.Address) })
	require.NoError(t, s.MergeAt("A1:B2"))
	assert.Equal(t, []string{"B1", "A2", "B2"}, added)
	assert.Empty(t, s.PendingChanges(), "merging is not a cell change")
}

func TestMerge_RoleSurvivesDeleteAndRecreate(t *testing.T) {
	s := NewSheet("Data")
	require.NoError(t, s.MergeAt("A1:B1"))
	s.Delete(0, 1)
	assert.Equal(t, MergeSlave, s.MergeRole(0, 1).Kind, "registry still covers the coordinate")

	require.NoError(t, s.SetValue(0, 1, String("x")))
	c, _ := s.Cell(0, 1)
	assert.Equal(t, MergeSlave, c.MergeRole().Kind)
	assert.Equal(t, MustCellRef("A1"), c.MergeRole().Master)
}

func TestMergeKind_String(t *testing.T) {
	assert.Equal(t, "Master", MergeMaster.String())
	assert.Equal(t, "Slave", MergeSlave.String())
	assert.Equal(t, "None", MergeNone.String())
}
