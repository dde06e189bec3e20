package xlgrid

type history struct {
	undo    []*Change
	redo    []*Change
	limit   int
	batches []int // undo length when each open batch began
}

// push adds a fresh edit. Any new edit invalidates the redo stack.
func (h *history) push(ch *Change) {
	h.undo = append(h.undo, ch)
	h.redo = nil
	h.trim()
}

// trim drops the oldest entries beyond the limit. Trimming waits until no
// batch is open so that batch marks stay valid.
func (h *history) trim() {
	if len(h.batches) > 0 || h.limit <= 0 || len(h.undo) <= h.limit {
		return
	}
	drop := len(h.undo) - h.limit
	clear(h.undo[:drop])
	h.undo = h.undo[drop:]
}

// Undo reverts the most recent undoable change, or batch of changes. It
// reports false when there is nothing to undo.
func (s *Sheet) Undo() bool {
	n := len(s.history.undo)
	if n == 0 {
		return false
	}
	ch := s.history.undo[n-1]
	s.history.undo = s.history.undo[:n-1]
	s.replay(ch, true)
	s.history.redo = append(s.history.redo, ch)
	return true
}

// Redo reapplies the most recently undone change. It reports false when
// there is nothing to redo.
func (s *Sheet) Redo() bool {
	n := len(s.history.redo)
	if n == 0 {
		return false
	}
	ch := s.history.redo[n-1]
	s.history.redo = s.history.redo[:n-1]
	s.replay(ch, false)
	s.history.undo = append(s.history.undo, ch)
	s.history.trim()
	return true
}

// CanUndo reports whether Undo would do anything.
func (s *Sheet) CanUndo() bool { return len(s.history.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (s *Sheet) CanRedo() bool { return len(s.history.redo) > 0 }

// UndoLen returns the number of undoable entries; a batch counts once.
func (s *Sheet) UndoLen() int { return len(s.history.undo) }

// RedoLen returns the number of redoable entries.
func (s *Sheet) RedoLen() int { return len(s.history.redo) }

// ClearHistory forgets all undo and redo entries.
func (s *Sheet) ClearHistory() {
	s.history.undo = nil
	s.history.redo = nil
}

func (s *Sheet) replay(ch *Change, undo bool) {
	if ch.Kind == ChangeBatch {
		if undo {
			for i := len(ch.Batch) - 1; i >= 0; i-- {
				s.replay(ch.Batch[i], true)
			}
			return
		}
		for _, c := range ch.Batch {
			s.replay(c, false)
		}
		return
	}
	if undo {
		s.restore(ch.Ref, ch.Kind, ch.before)
		return
	}
	s.restore(ch.Ref, ch.Kind, ch.after)
}

// Batch groups edits so that a single Undo reverts all of them.
type Batch struct {
	sheet *Sheet
	depth int
	ended bool
}

// BeginBatch opens a batch. Every undoable edit until End is collapsed into
// one history entry. Batches nest; each End collapses its own edits.
func (s *Sheet) BeginBatch() *Batch {
	s.history.batches = append(s.history.batches, len(s.history.undo))
	return &Batch{sheet: s, depth: len(s.history.batches)}
}

// End closes the batch. An empty batch leaves no history entry. Calling End
// more than once has no effect.
func (b *Batch) End() {
	if b.ended {
		return
	}
	b.ended = true
	s := b.sheet
	h := &s.history
	if len(h.batches) < b.depth {
		return
	}
	mark := h.batches[b.depth-1]
	h.batches = h.batches[:b.depth-1]
	if mark > len(h.undo) {
		mark = len(h.undo)
	}
	if mark < len(h.undo) {
		entries := append([]*Change(nil), h.undo[mark:]...)
		s.nextID++
		group := &Change{
			ID:        s.nextID,
			Kind:      ChangeBatch,
			Ref:       entries[0].Ref,
			Timestamp: s.opts.clock(),
			Batch:     entries,
		}
		clear(h.undo[mark:])
		h.undo = append(h.undo[:mark], group)
	}
	h.trim()
}

// Batch runs fn inside a batch and returns its error. Edits made before an
// error stay applied and remain undoable as one entry.
func (s *Sheet) Batch(fn func() error) error {
	b := s.BeginBatch()
	defer b.End()
	return fn()
}
