package xlgrid

import (
	"iter"
	"maps"
	"slices"
)

// Sheet is the mutable grid of cells backing one worksheet. It keeps sparse
// cell storage, dimension bounds, merges, row/column configuration, the
// change buffer and undo history consistent under every edit.
//
// A Sheet is not safe for concurrent use; callers sharing one across
// goroutines must serialize every call.
type Sheet struct {
	name string
	opts *Options

	cells     map[CellRef]*Cell
	bounds    Range
	hasBounds bool

	merges []Range
	rows   map[int]*RowConfig
	cols   map[int]*ColConfig

	bus       eventBus
	pending   []*Change
	history   history
	nextID    uint64
	suspended int
	replaying bool

	filter    filterState
	clipboard *clipboard
}

// NewSheet creates an empty sheet.
func NewSheet(name string, opts ...Option) *Sheet {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Sheet{
		name:    name,
		opts:    o,
		cells:   make(map[CellRef]*Cell),
		rows:    make(map[int]*RowConfig),
		cols:    make(map[int]*ColConfig),
		history: history{limit: o.undoLimit},
		filter:  newFilterState(),
	}
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

// Rename changes the sheet name reported in events.
func (s *Sheet) Rename(name string) { s.name = name }

// Clone returns a deep copy of the sheet's cells, merges and row/column
// configuration under a new name. Subscribers, pending changes, history,
// filters and the clipboard are not copied.
func (s *Sheet) Clone(name string) *Sheet {
	n := NewSheet(name)
	n.opts = s.opts
	n.history.limit = s.history.limit
	for ref, c := range s.cells {
		n.cells[ref] = c.clone(ref)
	}
	n.bounds, n.hasBounds = s.bounds, s.hasBounds
	n.merges = slices.Clone(s.merges)
	for i, rc := range s.rows {
		n.rows[i] = rc.clone()
	}
	for i, cc := range s.cols {
		n.cols[i] = cc.clone()
	}
	return n
}

// Cell returns the cell at (row, col). It reports false when the coordinate
// was never populated or the cell is logically empty. It never creates.
func (s *Sheet) Cell(row, col int) (*Cell, bool) {
	c, ok := s.cells[CellRef{Row: row, Col: col}]
	if !ok || c.IsEmpty() {
		return nil, false
	}
	return c, true
}

// CellAt is like Cell but takes a reference string such as "B2".
func (s *Sheet) CellAt(ref string) (*Cell, bool, error) {
	r, err := ParseCellRef(ref)
	if err != nil {
		return nil, false, err
	}
	c, ok := s.Cell(r.Row, r.Col)
	return c, ok, nil
}

// Value returns the observable value at (row, col), blank when absent.
func (s *Sheet) Value(row, col int) Value {
	if c, ok := s.cells[CellRef{Row: row, Col: col}]; ok {
		return c.Value()
	}
	return Empty()
}

// GetOrCreate returns the cell at (row, col), creating an empty one if
// needed. Creation emits a cellAdded event.
func (s *Sheet) GetOrCreate(row, col int) (*Cell, error) {
	ref, err := checkRef(row, col)
	if err != nil {
		return nil, err
	}
	c, created := s.lookupOrCreate(ref)
	if created {
		s.emit(s.addedEvent(c))
	}
	return c, nil
}

// Delete removes the cell at (row, col) from storage. It reports whether a
// cell was stored there. Deletion is recorded as a change and emits a
// cellDeleted event carrying the last value.
func (s *Sheet) Delete(row, col int) bool {
	return s.deleteRef(CellRef{Row: row, Col: col})
}

func (s *Sheet) deleteRef(ref CellRef) bool {
	c, ok := s.cells[ref]
	if !ok {
		return false
	}
	before := c.fullState()
	delete(s.cells, ref)
	s.recomputeBounds()
	ch := s.record(ChangeDelete, ref, before, cellState{})
	if ch != nil {
		s.emit(s.changeEvent(ch))
	}
	return true
}

// Dimensions returns the bounding rectangle of all stored cells, or false
// if the sheet stores no cells.
func (s *Sheet) Dimensions() (Range, bool) {
	return s.bounds, s.hasBounds
}

// Len returns the number of stored cells.
func (s *Sheet) Len() int { return len(s.cells) }

// Cells iterates over all stored cells in no particular order.
func (s *Sheet) Cells() iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for _, c := range s.cells {
			if !yield(c) {
				return
			}
		}
	}
}

// CellsIn iterates over the stored cells inside r in row-major order.
func (s *Sheet) CellsIn(r Range) iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for _, c := range s.cellsIn(&r) {
			if !yield(c) {
				return
			}
		}
	}
}

// cellsIn returns stored cells inside r (all cells when r is nil) sorted
// row-major. Small ranges look up each coordinate; large ones scan the map.
func (s *Sheet) cellsIn(r *Range) []*Cell {
	var out []*Cell
	if r != nil && r.area() <= len(s.cells) {
		for ref := range r.Refs() {
			if c, ok := s.cells[ref]; ok {
				out = append(out, c)
			}
		}
		return out
	}
	for _, c := range s.cells {
		if r == nil || r.Contains(c.ref) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b *Cell) int { return compareRefs(a.ref, b.ref) })
	return out
}

func compareRefs(a, b CellRef) int {
	if a.Row != b.Row {
		return a.Row - b.Row
	}
	return a.Col - b.Col
}

// SetValue stores v at (row, col), clearing any formula.
func (s *Sheet) SetValue(row, col int, v Value) error {
	ref, err := checkRef(row, col)
	if err != nil {
		return err
	}
	s.write(ref, ChangeValue, func(c *Cell) {
		c.value = v
		c.formula = nil
	})
	return nil
}

// SetValueAt is like SetValue but takes a reference string and a Go value.
func (s *Sheet) SetValueAt(ref string, v any) error {
	r, err := ParseCellRef(ref)
	if err != nil {
		return err
	}
	return s.SetValue(r.Row, r.Col, ValueOf(v))
}

// SetFormula stores a formula and its cached result at (row, col). text is
// kept verbatim; a leading "=" is stripped. The stored value is untouched.
func (s *Sheet) SetFormula(row, col int, text string, cached Value) error {
	ref, err := checkRef(row, col)
	if err != nil {
		return err
	}
	if len(text) > 0 && text[0] == '=' {
		text = text[1:]
	}
	s.write(ref, ChangeFormula, func(c *Cell) {
		c.formula = &Formula{Text: text, Result: cached}
	})
	return nil
}

// SetFormulaAt is like SetFormula but takes a reference string.
func (s *Sheet) SetFormulaAt(ref, text string, cached Value) error {
	r, err := ParseCellRef(ref)
	if err != nil {
		return err
	}
	return s.SetFormula(r.Row, r.Col, text, cached)
}

// SetStyle sets the style at (row, col). A nil style clears it.
func (s *Sheet) SetStyle(row, col int, st *Style) error {
	ref, err := checkRef(row, col)
	if err != nil {
		return err
	}
	s.write(ref, ChangeStyle, func(c *Cell) {
		c.style = st.Clone()
	})
	return nil
}

// SetHyperlink attaches a hyperlink at (row, col); nil removes it.
// Metadata edits are not recorded as changes.
func (s *Sheet) SetHyperlink(row, col int, h *Hyperlink) error {
	return s.setMeta(row, col, func(c *Cell) {
		if h == nil {
			c.hyperlink = nil
			return
		}
		cp := *h
		c.hyperlink = &cp
	})
}

// SetComment attaches a comment at (row, col); nil removes it.
func (s *Sheet) SetComment(row, col int, cm *Comment) error {
	return s.setMeta(row, col, func(c *Cell) {
		if cm == nil {
			c.comment = nil
			return
		}
		cp := *cm
		c.comment = &cp
	})
}

// SetValidation attaches a validation rule at (row, col); nil removes it.
func (s *Sheet) SetValidation(row, col int, v *Validation) error {
	return s.setMeta(row, col, func(c *Cell) {
		c.validation = v.clone()
	})
}

func (s *Sheet) setMeta(row, col int, fn func(*Cell)) error {
	ref, err := checkRef(row, col)
	if err != nil {
		return err
	}
	c, created := s.lookupOrCreate(ref)
	fn(c)
	if created {
		s.emit(s.addedEvent(c))
	}
	return nil
}

// write applies fn to the cell at ref through the change-sourcing path:
// state first, then buffer and history, then subscribers.
func (s *Sheet) write(ref CellRef, kind ChangeKind, fn func(*Cell)) {
	before := s.stateAt(ref)
	c, created := s.lookupOrCreate(ref)
	fn(c)
	ch := s.record(kind, ref, before, c.state())
	if created {
		s.emit(s.addedEvent(c))
	}
	if ch != nil {
		s.emit(s.changeEvent(ch))
	}
}

// restore puts ref back into st as part of an undo/redo replay.
func (s *Sheet) restore(ref CellRef, kind ChangeKind, st cellState) {
	prev := s.replaying
	s.replaying = true
	defer func() { s.replaying = prev }()

	if !st.exists {
		s.deleteRef(ref)
		return
	}
	if kind == ChangeDelete {
		kind = ChangeValue
	}
	s.write(ref, kind, func(c *Cell) {
		c.value = st.value
		c.formula = nil
		if st.formula != nil {
			f := *st.formula
			c.formula = &f
		}
		c.style = st.style.Clone()
		if st.meta != nil {
			c.hyperlink, c.comment, c.validation = st.meta.hyperlink, st.meta.comment, st.meta.validation.clone()
		}
	})
}

func (s *Sheet) stateAt(ref CellRef) cellState {
	c, ok := s.cells[ref]
	if !ok {
		return cellState{}
	}
	return c.state()
}

// lookupOrCreate returns the cell at ref, creating it silently if absent.
// Callers emit the cellAdded event once their mutation is complete.
func (s *Sheet) lookupOrCreate(ref CellRef) (*Cell, bool) {
	if c, ok := s.cells[ref]; ok {
		return c, false
	}
	c := &Cell{ref: ref}
	if m, ok := s.mergeContaining(ref); ok {
		c.merge = roleFor(m, ref)
	}
	s.cells[ref] = c
	s.growBounds(ref)
	return c, true
}

// put stores c at its coordinate without notification. Used by bulk
// relocation, which recomputes bounds once at the end.
func (s *Sheet) put(c *Cell) {
	s.cells[c.ref] = c
}

func (s *Sheet) growBounds(ref CellRef) {
	if !s.hasBounds {
		s.bounds = CellRange(ref)
		s.hasBounds = true
		return
	}
	s.bounds = s.bounds.Union(CellRange(ref))
}

func (s *Sheet) recomputeBounds() {
	s.hasBounds = false
	s.bounds = Range{}
	for ref := range s.cells {
		s.growBounds(ref)
	}
}

func checkRef(row, col int) (CellRef, error) {
	ref := CellRef{Row: row, Col: col}
	if !ref.valid() {
		return ref, &RangeError{Range: CellRange(ref), Reason: ref.invalidReason()}
	}
	return ref, nil
}

// SetRowValues writes values into row starting at startCol. Nil entries are
// skipped so sparse rows stay sparse.
func (s *Sheet) SetRowValues(row, startCol int, values ...any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		if err := s.SetValue(row, startCol+i, ValueOf(v)); err != nil {
			return err
		}
	}
	return nil
}

// AppendRow writes values into the row after the last populated row,
// starting at column A, and returns that row's index.
func (s *Sheet) AppendRow(values ...any) (int, error) {
	row := 0
	if s.hasBounds {
		row = s.bounds.End.Row + 1
	}
	return row, s.SetRowValues(row, 0, values...)
}

// RangeValues projects r into a 2D slice of observable values, rows first.
func (s *Sheet) RangeValues(r Range) ([][]Value, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	size := r.Size()
	out := make([][]Value, size.Height)
	for i := range out {
		out[i] = make([]Value, size.Width)
	}
	for _, c := range s.cellsIn(&r) {
		out[c.ref.Row-r.Start.Row][c.ref.Col-r.Start.Col] = c.Value()
	}
	return out, nil
}

// SetRangeValues writes a 2D slice of values with its top-left at at.
// Blank entries are skipped.
func (s *Sheet) SetRangeValues(at CellRef, values [][]Value) error {
	if _, err := checkRef(at.Row, at.Col); err != nil {
		return err
	}
	for i, row := range values {
		for j, v := range row {
			if v.IsEmpty() {
				continue
			}
			if err := s.SetValue(at.Row+i, at.Col+j, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// sortedKeys returns the keys of an int-keyed map in ascending order.
func sortedKeys[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}
