package xlgrid

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below unwrap to these, so callers can use
// errors.Is for the category and errors.As for the details.
var (
	ErrInvalidReference = errors.New("invalid reference")
	ErrOverlap          = errors.New("merge overlaps an existing merge")
	ErrMergeNotFound    = errors.New("merge not found")
	ErrInvalidRange     = errors.New("invalid range")
)

// ReferenceError reports a reference string that does not match the A1 grammar.
type ReferenceError struct {
	Ref    string
	Reason string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("invalid reference %q: %s", e.Ref, e.Reason)
}

func (e *ReferenceError) Unwrap() error { return ErrInvalidReference }

// OverlapError reports a merge request intersecting a registered merge.
type OverlapError struct {
	Range    Range
	Existing Range
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("merge %s overlaps existing merge %s", e.Range, e.Existing)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// MergeNotFoundError reports an unmerge naming a rectangle that is not registered.
type MergeNotFoundError struct {
	Range Range
}

func (e *MergeNotFoundError) Error() string {
	return fmt.Sprintf("no merge registered at %s", e.Range)
}

func (e *MergeNotFoundError) Unwrap() error { return ErrMergeNotFound }

// RangeError reports a range or span with inverted or negative bounds.
type RangeError struct {
	Range  Range
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range %d,%d:%d,%d: %s",
		e.Range.Start.Row, e.Range.Start.Col, e.Range.End.Row, e.Range.End.Col, e.Reason)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// spanError validates the index and count of a structural edit.
func spanError(at, count int, rows bool) error {
	if at >= 0 && count > 0 {
		return nil
	}
	r := NewRange(at, 0, at+count-1, 0)
	if !rows {
		r = NewRange(0, at, 0, at+count-1)
	}
	return &RangeError{Range: r, Reason: fmt.Sprintf("index %d count %d", at, count)}
}
