package xlgrid

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
)

// SortOptions controls Sort and SortBy.
type SortOptions struct {
	Descending    bool
	HasHeader     bool   // keep the first row of the span in place
	Range         *Range // rows and columns to reorder; nil means the sheet bounds
	Numeric       bool   // coerce numeric-looking text to numbers
	CaseSensitive bool
}

// SortKey is one column of a multi-column sort.
type SortKey struct {
	Column        int
	Descending    bool
	Numeric       bool
	CaseSensitive bool
}

// Sort reorders the rows of the span by the values in col. Blank cells and
// empty strings sort last in both directions. The sort is stable. All
// cells of a row inside the span's columns travel together.
//
// Sorting is a bulk reorder: it emits no events and records no changes.
// It clears undo and redo history, whose coordinates no longer apply. A
// merge that overlaps the sorted rows makes the sort fail with a
// *RangeError, since merges do not travel with their rows.
func (s *Sheet) Sort(col int, opts SortOptions) error {
	return s.SortBy([]SortKey{{
		Column:        col,
		Descending:    opts.Descending,
		Numeric:       opts.Numeric,
		CaseSensitive: opts.CaseSensitive,
	}}, opts)
}

// SortBy sorts by several columns, the first key having the highest
// priority. Later keys only break exact ties. opts.Descending is ignored in
// favor of each key's own direction; opts.Numeric and opts.CaseSensitive
// apply to every key.
func (s *Sheet) SortBy(keys []SortKey, opts SortOptions) error {
	if len(keys) == 0 {
		return errors.New("sort: no sort keys")
	}
	span, ok, err := s.span(opts.Range)
	if err != nil {
		return fmt.Errorf("sort: %w", err)
	}
	if !ok {
		return nil
	}
	for _, k := range keys {
		if k.Column < span.Start.Col || k.Column > span.End.Col {
			return fmt.Errorf("sort: column %s: %w", ColToName(k.Column),
				&RangeError{Range: span, Reason: "sort column outside range"})
		}
	}
	first := span.Start.Row
	if opts.HasHeader {
		first++
	}
	if first >= span.End.Row {
		return nil
	}
	body := NewRange(first, span.Start.Col, span.End.Row, span.End.Col)
	for _, m := range s.merges {
		if m.Overlaps(body) {
			return fmt.Errorf("sort: merge %s: %w", m,
				&RangeError{Range: body, Reason: "sorted rows cut through a merge"})
		}
	}

	type sortRow struct {
		keys  []Value
		cells []*Cell
	}
	rows := make([]sortRow, 0, span.End.Row-first+1)
	for r := first; r <= span.End.Row; r++ {
		sr := sortRow{keys: make([]Value, len(keys))}
		for i, k := range keys {
			sr.keys[i] = s.Value(r, k.Column)
		}
		for c := span.Start.Col; c <= span.End.Col; c++ {
			if cell, ok := s.cells[CellRef{Row: r, Col: c}]; ok {
				sr.cells = append(sr.cells, cell)
			}
		}
		rows = append(rows, sr)
	}

	cmps := make([]keyComparer, len(keys))
	for i, k := range keys {
		k.Numeric = k.Numeric || opts.Numeric
		k.CaseSensitive = k.CaseSensitive || opts.CaseSensitive
		cmps[i] = s.newKeyComparer(k)
	}
	slices.SortStableFunc(rows, func(a, b sortRow) int {
		for i, kc := range cmps {
			if c := kc.compare(a.keys[i], b.keys[i]); c != 0 {
				return c
			}
		}
		return 0
	})

	resume := s.SuspendEvents()
	defer resume()
	for _, sr := range rows {
		for _, c := range sr.cells {
			delete(s.cells, c.ref)
		}
	}
	for i, sr := range rows {
		for _, c := range sr.cells {
			c.ref = CellRef{Row: first + i, Col: c.ref.Col}
			s.put(c)
		}
	}
	s.recomputeBounds()
	s.refilter()
	s.ClearHistory()
	return nil
}

// span resolves an optional range argument against the sheet bounds.
func (s *Sheet) span(r *Range) (Range, bool, error) {
	if r != nil {
		if err := r.Validate(); err != nil {
			return Range{}, false, err
		}
		return *r, true, nil
	}
	if !s.hasBounds {
		return Range{}, false, nil
	}
	return s.bounds, true, nil
}

type keyComparer struct {
	key      SortKey
	collator *collate.Collator
}

func (s *Sheet) newKeyComparer(k SortKey) keyComparer {
	var opts []collate.Option
	if !k.CaseSensitive {
		opts = append(opts, collate.IgnoreCase)
	}
	return keyComparer{key: k, collator: collate.New(s.opts.locale, opts...)}
}

// compare orders two sort keys. Nulls go last whatever the direction.
func (kc keyComparer) compare(a, b Value) int {
	an, bn := a.isNull(), b.isNull()
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	c := kc.compareValues(a, b)
	if kc.key.Descending {
		return -c
	}
	return c
}

func (kc keyComparer) compareValues(a, b Value) int {
	if a.Kind() == CellNumber && b.Kind() == CellNumber {
		return cmp.Compare(a.num, b.num)
	}
	if kc.key.Numeric {
		fa, aok := a.number()
		fb, bok := b.number()
		if aok && bok {
			return cmp.Compare(fa, fb)
		}
	}
	if a.Kind() == CellDate && b.Kind() == CellDate {
		return a.t.Compare(b.t)
	}
	return kc.collator.CompareString(a.String(), b.String())
}
