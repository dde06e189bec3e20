package xlgrid

import "time"

// ChangeKind is the category of a recorded edit.
type ChangeKind int

const (
	ChangeValue ChangeKind = iota + 1
	ChangeStyle
	ChangeFormula
	ChangeDelete
	ChangeBatch
)

// String returns a human-readable name for the ChangeKind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeValue:
		return "value"
	case ChangeStyle:
		return "style"
	case ChangeFormula:
		return "formula"
	case ChangeDelete:
		return "delete"
	case ChangeBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// Change is an immutable record of one applied edit. Old and new values are
// observable values (formula results win over stored values). A ChangeBatch
// record groups the changes made inside one batch, in application order.
type Change struct {
	ID        uint64
	Kind      ChangeKind
	Ref       CellRef
	Timestamp time.Time

	OldValue, NewValue     Value
	OldStyle, NewStyle     *Style
	OldFormula, NewFormula string

	Batch []*Change

	before, after cellState
}

// Address returns the reference string of the changed cell.
func (c *Change) Address() string { return c.Ref.String() }

// record appends a change for an edit that was just applied. It returns nil
// while events are suspended: such edits are neither buffered nor undoable.
func (s *Sheet) record(kind ChangeKind, ref CellRef, before, after cellState) *Change {
	if s.suspended > 0 {
		return nil
	}
	s.nextID++
	ch := &Change{
		ID:        s.nextID,
		Kind:      kind,
		Ref:       ref,
		Timestamp: s.opts.clock(),
		OldValue:  before.effective(),
		NewValue:  after.effective(),
		OldStyle:  before.style.Clone(),
		NewStyle:  after.style.Clone(),
		before:    before,
		after:     after,
	}
	if before.formula != nil {
		ch.OldFormula = before.formula.Text
	}
	if after.formula != nil {
		ch.NewFormula = after.formula.Text
	}
	s.pending = append(s.pending, ch)
	if !s.replaying {
		s.history.push(ch)
	}
	return ch
}

// PendingChanges returns the changes recorded since the last Commit, oldest
// first.
func (s *Sheet) PendingChanges() []*Change {
	return append([]*Change(nil), s.pending...)
}

// Commit hands off the pending changes and clears the buffer. Undo history
// is not affected.
func (s *Sheet) Commit() []*Change {
	out := s.pending
	s.pending = nil
	return out
}
