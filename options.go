package xlgrid

import (
	"io"
	"log"
	"time"

	"golang.org/x/text/language"
)

// DefaultUndoLimit is the undo capacity used when none is configured.
const DefaultUndoLimit = 100

// Options holds configuration for a Sheet.
type Options struct {
	undoLimit int
	clock     func() time.Time
	logger    *log.Logger
	locale    language.Tag
}

func defaultOptions() *Options {
	return &Options{
		undoLimit: DefaultUndoLimit,
		clock:     time.Now,
		logger:    log.New(io.Discard, "", 0),
		locale:    language.Und,
	}
}

// Option configures a Sheet.
type Option func(*Options)

// WithUndoLimit sets how many undo steps are kept (default: 100).
// Non-positive values keep the default.
func WithUndoLimit(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.undoLimit = n
		}
	}
}

// WithClock sets the timestamp source for change records and events.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets where recovered subscriber panics are reported (default: discarded).
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLocale sets the collation locale used to order text when sorting.
func WithLocale(tag language.Tag) Option {
	return func(o *Options) { o.locale = tag }
}
