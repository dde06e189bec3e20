package xlgrid

import (
	"maps"
	"slices"
)

// InsertRows inserts n empty rows before row at. Cells, row configuration,
// merges and filter state at or below at move down by n. Nothing is
// discarded.
//
// Structural edits emit no events and are not recorded in undo history.
// They clear undo and redo history, whose coordinates no longer apply.
func (s *Sheet) InsertRows(at, n int) error {
	if err := spanError(at, n, true); err != nil {
		return err
	}
	if err := s.checkGrowth(true, at, n); err != nil {
		return err
	}
	s.shift(true, at, n)
	return nil
}

// DeleteRows removes rows [at, at+n). Their cells and configuration are
// discarded and the rows below move up by n. Merges crossing the span
// shrink; merges inside it are removed.
func (s *Sheet) DeleteRows(at, n int) error {
	if err := spanError(at, n, true); err != nil {
		return err
	}
	s.shift(true, at, -n)
	return nil
}

// InsertColumns inserts n empty columns before column at.
func (s *Sheet) InsertColumns(at, n int) error {
	if err := spanError(at, n, false); err != nil {
		return err
	}
	if err := s.checkGrowth(false, at, n); err != nil {
		return err
	}
	s.shift(false, at, n)
	return nil
}

// DeleteColumns removes columns [at, at+n).
func (s *Sheet) DeleteColumns(at, n int) error {
	if err := spanError(at, n, false); err != nil {
		return err
	}
	s.shift(false, at, -n)
	return nil
}

// MoveRow moves row from so that it is inserted before row to as numbered
// before the move. Moving a row down therefore lands it at to-1.
func (s *Sheet) MoveRow(from, to int) error {
	return s.move(true, from, to)
}

// MoveColumn is the column counterpart of MoveRow.
func (s *Sheet) MoveColumn(from, to int) error {
	return s.move(false, from, to)
}

func (s *Sheet) move(rows bool, from, to int) error {
	if err := spanError(from, 1, rows); err != nil {
		return err
	}
	if err := spanError(to, 1, rows); err != nil {
		return err
	}
	if to > from {
		to--
	}
	if to == from {
		return nil
	}

	var line []*Cell
	for ref, c := range s.cells {
		if index(ref, rows) == from {
			line = append(line, c)
		}
	}
	var rc *RowConfig
	var cc *ColConfig
	var crit Criteria
	manual, filtered := false, false
	if rows {
		rc = s.rows[from]
		manual, filtered = s.filter.hidden[from]
	} else {
		cc = s.cols[from]
		crit, filtered = s.filter.columns[from]
	}

	resume := s.SuspendEvents()
	defer resume()
	for _, c := range line {
		delete(s.cells, c.ref)
	}
	s.shift(rows, from, -1)
	s.shift(rows, to, 1)
	for _, c := range line {
		if rows {
			c.ref.Row = to
		} else {
			c.ref.Col = to
		}
		s.put(c)
	}
	if rows {
		delete(s.rows, to)
		if rc != nil {
			s.rows[to] = rc
		}
		delete(s.filter.hidden, to)
		if filtered {
			s.filter.hidden[to] = manual
		}
	} else {
		delete(s.cols, to)
		if cc != nil {
			s.cols[to] = cc
		}
		delete(s.filter.columns, to)
		if filtered {
			s.filter.columns[to] = crit
		}
	}
	s.recomputeBounds()
	s.rebuildMergeRoles()
	s.refilter()
	return nil
}

// shift relocates everything at index >= at by n along one axis. A negative
// n deletes the span [at, at-n) first.
func (s *Sheet) shift(rows bool, at, n int) {
	resume := s.SuspendEvents()
	defer resume()

	var moved []*Cell
	for ref, c := range s.cells {
		i := index(ref, rows)
		if i < at {
			continue
		}
		delete(s.cells, ref)
		ni, ok := shiftIndex(i, at, n)
		if !ok {
			continue
		}
		if rows {
			c.ref.Row = ni
		} else {
			c.ref.Col = ni
		}
		moved = append(moved, c)
	}
	for _, c := range moved {
		s.put(c)
	}

	if rows {
		shiftKeys(s.rows, at, n)
		shiftKeys(s.filter.hidden, at, n)
	} else {
		shiftKeys(s.cols, at, n)
		shiftKeys(s.filter.columns, at, n)
	}
	s.shiftMerges(rows, at, n)

	s.recomputeBounds()
	s.rebuildMergeRoles()
	s.refilter()
	s.ClearHistory()
}

// checkGrowth rejects an insertion that would push content past the last
// addressable row or column.
func (s *Sheet) checkGrowth(rows bool, at, n int) error {
	last, limit := -1, MaxCol
	if rows {
		limit = MaxRow
		if s.hasBounds {
			last = s.bounds.End.Row
		}
		for i := range s.rows {
			last = max(last, i)
		}
	} else {
		if s.hasBounds {
			last = s.bounds.End.Col
		}
		for i := range s.cols {
			last = max(last, i)
		}
	}
	if last < at || last <= limit-n {
		return nil
	}
	r := NewRange(at, 0, last+n, 0)
	if !rows {
		r = NewRange(0, at, 0, last+n)
	}
	return &RangeError{Range: r, Reason: "insertion pushes content past the last addressable index"}
}

func (s *Sheet) shiftMerges(rows bool, at, n int) {
	kept := s.merges[:0]
	for _, m := range s.merges {
		lo, hi := m.Start.Col, m.End.Col
		if rows {
			lo, hi = m.Start.Row, m.End.Row
		}
		nlo, nhi, ok := shiftSpan(lo, hi, at, n)
		if !ok {
			continue
		}
		if rows {
			m.Start.Row, m.End.Row = nlo, nhi
		} else {
			m.Start.Col, m.End.Col = nlo, nhi
		}
		if m.Start == m.End {
			continue
		}
		kept = append(kept, m)
	}
	clear(s.merges[len(kept):])
	s.merges = kept
}

func index(ref CellRef, rows bool) int {
	if rows {
		return ref.Row
	}
	return ref.Col
}

// shiftIndex maps an index through an insertion (n > 0) or deletion
// (n < 0) at at. It reports false for indexes inside a deleted span.
func shiftIndex(i, at, n int) (int, bool) {
	if i < at {
		return i, true
	}
	if n < 0 && i < at-n {
		return 0, false
	}
	return i + n, true
}

// shiftSpan maps the inclusive span [lo, hi] through an insertion or
// deletion. Insertions inside the span widen it; deletions clip it. It
// reports false when the whole span was deleted.
func shiftSpan(lo, hi, at, n int) (int, int, bool) {
	if n > 0 {
		switch {
		case lo >= at:
			return lo + n, hi + n, true
		case hi >= at:
			return lo, hi + n, true
		default:
			return lo, hi, true
		}
	}
	end := at - n
	nlo := lo
	if lo >= end {
		nlo = lo + n
	} else if lo >= at {
		nlo = at
	}
	nhi := hi
	if hi >= end {
		nhi = hi + n
	} else if hi >= at {
		nhi = at - 1
	}
	if nhi < nlo {
		return 0, 0, false
	}
	return nlo, nhi, true
}

// shiftKeys re-keys an index map in place.
func shiftKeys[V any](m map[int]V, at, n int) {
	old := maps.Clone(m)
	clear(m)
	for _, k := range slices.Sorted(maps.Keys(old)) {
		if nk, ok := shiftIndex(k, at, n); ok {
			m[nk] = old[k]
		}
	}
}
