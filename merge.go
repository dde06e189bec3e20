package xlgrid

import "slices"

// Merge registers r as a merged range. The top-left cell becomes the master
// and every other cell a slave pointing at it. Stored values are untouched.
func (s *Sheet) Merge(r Range) error {
	if err := r.Validate(); err != nil {
		return err
	}
	for _, m := range s.merges {
		if m.Overlaps(r) {
			return &OverlapError{Range: r, Existing: m}
		}
	}
	s.merges = append(s.merges, r)
	var added []*Cell
	for ref := range r.Refs() {
		c, created := s.lookupOrCreate(ref)
		c.merge = roleFor(r, ref)
		if created {
			added = append(added, c)
		}
	}
	for _, c := range added {
		s.emit(s.addedEvent(c))
	}
	return nil
}

// MergeAt is a convenience for Merge(ParseRange(ref)).
func (s *Sheet) MergeAt(ref string) error {
	r, err := ParseRange(ref)
	if err != nil {
		return err
	}
	return s.Merge(r)
}

// Unmerge removes the merge exactly matching r and clears the roles of its
// cells. A sub- or super-range of a registered merge is not a match.
func (s *Sheet) Unmerge(r Range) error {
	i := slices.Index(s.merges, r)
	if i < 0 {
		return &MergeNotFoundError{Range: r}
	}
	s.merges = slices.Delete(s.merges, i, i+1)
	pruned := false
	for ref := range r.Refs() {
		c, ok := s.cells[ref]
		if !ok {
			continue
		}
		c.merge = MergeRole{}
		// Placeholders that only carried a role go away with the merge.
		if c.IsEmpty() {
			delete(s.cells, ref)
			pruned = true
		}
	}
	if pruned {
		s.recomputeBounds()
	}
	return nil
}

// Merges returns the registered merges in row-major order of their
// top-left corners.
func (s *Sheet) Merges() []Range {
	out := slices.Clone(s.merges)
	slices.SortFunc(out, func(a, b Range) int { return compareRefs(a.Start, b.Start) })
	return out
}

// MergeContaining returns the merge that covers (row, col), if any.
func (s *Sheet) MergeContaining(row, col int) (Range, bool) {
	return s.mergeContaining(CellRef{Row: row, Col: col})
}

// MergeRole returns the merge role of (row, col) from the registry. Unlike
// Cell.MergeRole it also answers for coordinates with no stored cell.
func (s *Sheet) MergeRole(row, col int) MergeRole {
	ref := CellRef{Row: row, Col: col}
	if m, ok := s.mergeContaining(ref); ok {
		return roleFor(m, ref)
	}
	return MergeRole{}
}

func (s *Sheet) mergeContaining(ref CellRef) (Range, bool) {
	for _, m := range s.merges {
		if m.Contains(ref) {
			return m, true
		}
	}
	return Range{}, false
}

func roleFor(m Range, ref CellRef) MergeRole {
	if ref == m.Start {
		return MergeRole{Kind: MergeMaster, Range: m}
	}
	return MergeRole{Kind: MergeSlave, Master: m.Start}
}

// rebuildMergeRoles re-derives every cell's role from the registry. Used
// after bulk relocation, where roles travelled with their cells.
func (s *Sheet) rebuildMergeRoles() {
	for _, c := range s.cells {
		c.merge = MergeRole{}
	}
	for _, m := range s.merges {
		for ref := range m.Refs() {
			c, _ := s.lookupOrCreate(ref)
			c.merge = roleFor(m, ref)
		}
	}
}
