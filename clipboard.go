package xlgrid

import (
	"errors"
	"fmt"
)

// ErrClipboardEmpty is returned by Paste when nothing has been copied.
var ErrClipboardEmpty = errors.New("clipboard is empty")

type clipEntry struct {
	dr, dc  int
	value   Value
	formula *Formula
	style   *Style
}

// clipboard holds one snapshot at a time, keyed by offset from the source
// rectangle's top-left corner.
type clipboard struct {
	source  Range
	entries []clipEntry
}

// PasteOptions controls Paste. ValuesOnly and StylesOnly are mutually
// exclusive.
type PasteOptions struct {
	ValuesOnly bool // values and formulas, keep target styles
	StylesOnly bool // styles, keep target values
	Transpose  bool // swap rows and columns
}

// Copy snapshots every populated cell of r, replacing the previous
// clipboard. Later edits to the source do not affect the snapshot.
func (s *Sheet) Copy(r Range) error {
	if err := r.Validate(); err != nil {
		return err
	}
	cb := &clipboard{source: r}
	for _, c := range s.cellsIn(&r) {
		if c.value.IsEmpty() && c.formula == nil && c.style == nil {
			continue
		}
		e := clipEntry{
			dr:    c.ref.Row - r.Start.Row,
			dc:    c.ref.Col - r.Start.Col,
			value: c.value,
			style: c.style.Clone(),
		}
		if c.formula != nil {
			f := *c.formula
			e.formula = &f
		}
		cb.entries = append(cb.entries, e)
	}
	s.clipboard = cb
	return nil
}

// Cut copies r and then deletes its cells, as one undo step.
func (s *Sheet) Cut(r Range) error {
	if err := s.Copy(r); err != nil {
		return err
	}
	return s.Batch(func() error {
		for _, c := range s.cellsIn(&r) {
			s.deleteRef(c.ref)
		}
		return nil
	})
}

// Clipboard returns the source range of the current snapshot.
func (s *Sheet) Clipboard() (Range, bool) {
	if s.clipboard == nil {
		return Range{}, false
	}
	return s.clipboard.source, true
}

// Paste writes the clipboard with its top-left corner at at, as one undo
// step. It returns the range written to.
func (s *Sheet) Paste(at CellRef, opts PasteOptions) (Range, error) {
	if opts.ValuesOnly && opts.StylesOnly {
		return Range{}, errors.New("paste: ValuesOnly and StylesOnly are mutually exclusive")
	}
	if s.clipboard == nil {
		return Range{}, ErrClipboardEmpty
	}
	if _, err := checkRef(at.Row, at.Col); err != nil {
		return Range{}, err
	}
	size := s.clipboard.source.Size()
	h, w := size.Height, size.Width
	if opts.Transpose {
		h, w = w, h
	}
	target := NewRange(at.Row, at.Col, at.Row+h-1, at.Col+w-1)
	if err := target.Validate(); err != nil {
		return Range{}, fmt.Errorf("paste: %w", err)
	}

	err := s.Batch(func() error {
		for _, e := range s.clipboard.entries {
			dr, dc := e.dr, e.dc
			if opts.Transpose {
				dr, dc = dc, dr
			}
			ref := CellRef{Row: at.Row + dr, Col: at.Col + dc}
			if !opts.StylesOnly {
				if e.formula != nil {
					f := *e.formula
					val := e.value
					s.write(ref, ChangeFormula, func(c *Cell) {
						c.value = val
						c.formula = &f
					})
				} else {
					val := e.value
					s.write(ref, ChangeValue, func(c *Cell) {
						c.value = val
						c.formula = nil
					})
				}
			}
			if !opts.ValuesOnly {
				st := e.style.Clone()
				s.write(ref, ChangeStyle, func(c *Cell) { c.style = st })
			}
		}
		return nil
	})
	return target, err
}
