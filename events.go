package xlgrid

import (
	"runtime/debug"
	"time"
)

// EventKind names a category of sheet notification.
type EventKind string

const (
	EventCellChange      EventKind = "cellChange"
	EventCellStyleChange EventKind = "cellStyleChange"
	EventCellAdded       EventKind = "cellAdded"
	EventCellDeleted     EventKind = "cellDeleted"

	// EventAll subscribes to every kind.
	EventAll EventKind = "*"
)

// Event is delivered to subscribers after a mutation has been applied.
// Change-derived events carry the change ID and before/after values.
type Event struct {
	Kind      EventKind
	Sheet     string
	Ref       CellRef
	Address   string
	Timestamp time.Time
	ChangeID  uint64 // zero for cellAdded

	OldValue, NewValue     Value
	OldStyle, NewStyle     *Style
	OldFormula, NewFormula string
}

// Listener receives sheet events. Listeners run synchronously on the
// mutating goroutine; a panicking listener is recovered and logged and does
// not stop delivery to the rest.
type Listener func(Event)

// SubscriptionID identifies a subscription for Unsubscribe.
type SubscriptionID uint64

type subscription struct {
	id   SubscriptionID
	kind EventKind
	fn   Listener
}

type eventBus struct {
	subs   []subscription
	nextID SubscriptionID
}

// Subscribe registers fn for events of the given kind, or every kind with
// EventAll. Listeners are called in subscription order.
func (s *Sheet) Subscribe(kind EventKind, fn Listener) SubscriptionID {
	s.bus.nextID++
	s.bus.subs = append(s.bus.subs, subscription{id: s.bus.nextID, kind: kind, fn: fn})
	return s.bus.nextID
}

// Unsubscribe removes a subscription. It reports whether id was registered.
func (s *Sheet) Unsubscribe(id SubscriptionID) bool {
	for i, sub := range s.bus.subs {
		if sub.id == id {
			s.bus.subs = append(s.bus.subs[:i:i], s.bus.subs[i+1:]...)
			return true
		}
	}
	return false
}

// SuspendEvents turns off change recording and notification until the
// returned function is called. Suspensions nest. While suspended, edits
// mutate state only: nothing is buffered, nothing enters undo history and
// no subscriber is called.
func (s *Sheet) SuspendEvents() (resume func()) {
	s.suspended++
	done := false
	return func() {
		if !done {
			done = true
			s.suspended--
		}
	}
}

// WithoutEvents runs fn with events suspended.
func (s *Sheet) WithoutEvents(fn func() error) error {
	resume := s.SuspendEvents()
	defer resume()
	return fn()
}

// EventsEnabled reports whether edits are currently recorded and notified.
func (s *Sheet) EventsEnabled() bool { return s.suspended == 0 }

func (s *Sheet) emit(ev Event) {
	if s.suspended > 0 {
		return
	}
	// Copy so listeners may (un)subscribe during delivery.
	subs := append([]subscription(nil), s.bus.subs...)
	for _, sub := range subs {
		if sub.kind != EventAll && sub.kind != ev.Kind {
			continue
		}
		s.deliver(sub, ev)
	}
}

func (s *Sheet) deliver(sub subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.opts.logger.Printf("[xlgrid] sheet %q: listener %d panicked on %s %s: %v\n%s",
				s.name, sub.id, ev.Kind, ev.Address, r, debug.Stack())
		}
	}()
	sub.fn(ev)
}

func (s *Sheet) addedEvent(c *Cell) Event {
	return Event{
		Kind:      EventCellAdded,
		Sheet:     s.name,
		Ref:       c.ref,
		Address:   c.ref.String(),
		Timestamp: s.opts.clock(),
		NewValue:  c.Value(),
	}
}

func (s *Sheet) changeEvent(ch *Change) Event {
	ev := Event{
		Sheet:      s.name,
		Ref:        ch.Ref,
		Address:    ch.Ref.String(),
		Timestamp:  ch.Timestamp,
		ChangeID:   ch.ID,
		OldValue:   ch.OldValue,
		NewValue:   ch.NewValue,
		OldStyle:   ch.OldStyle.Clone(),
		NewStyle:   ch.NewStyle.Clone(),
		OldFormula: ch.OldFormula,
		NewFormula: ch.NewFormula,
	}
	switch ch.Kind {
	case ChangeStyle:
		ev.Kind = EventCellStyleChange
	case ChangeDelete:
		ev.Kind = EventCellDeleted
	default:
		ev.Kind = EventCellChange
	}
	return ev
}
