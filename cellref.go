package xlgrid

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// CellRef is a zero-based (row, column) coordinate within a sheet.
type CellRef struct {
	Row int // 0-based row index
	Col int // 0-based column index
}

// NewCellRef creates a CellRef from a row and column.
func NewCellRef(row, col int) CellRef {
	return CellRef{Row: row, Col: col}
}

// maxRefLetters and maxRefDigits bound reference parsing so that column and
// row numbers cannot overflow an int.
const (
	maxRefLetters = 13
	maxRefDigits  = 18
)

// MaxRow and MaxCol are the largest indexes whose A1 form parses back:
// row number 999999999999999999 and column "ZZZZZZZZZZZZZ".
const (
	MaxRow = 999_999_999_999_999_998
	MaxCol = 2_580_398_988_131_886_037
)

// ParseCellRef parses a cell reference string like "A1", "b7" or "$C$10".
func ParseCellRef(s string) (CellRef, error) {
	name := strings.ReplaceAll(strings.TrimSpace(s), "$", "")
	if name == "" {
		return CellRef{}, &ReferenceError{Ref: s, Reason: "empty reference"}
	}

	i := 0
	for i < len(name) && isAlpha(name[i]) {
		i++
	}
	if i == 0 || i == len(name) {
		return CellRef{}, &ReferenceError{Ref: s, Reason: "expected column letters followed by a row number"}
	}
	if i > maxRefLetters || len(name)-i > maxRefDigits {
		return CellRef{}, &ReferenceError{Ref: s, Reason: "reference out of range"}
	}

	col, err := NameToCol(name[:i])
	if err != nil {
		return CellRef{}, &ReferenceError{Ref: s, Reason: err.Error()}
	}

	rowNum := 0
	for _, ch := range name[i:] {
		if ch < '0' || ch > '9' {
			return CellRef{}, &ReferenceError{Ref: s, Reason: "invalid row number"}
		}
		rowNum = rowNum*10 + int(ch-'0')
	}
	if rowNum < 1 {
		return CellRef{}, &ReferenceError{Ref: s, Reason: "row numbers start at 1"}
	}

	return CellRef{Row: rowNum - 1, Col: col}, nil
}

// MustCellRef is like ParseCellRef but panics on error. Intended for tests
// and literals.
func MustCellRef(s string) CellRef {
	ref, err := ParseCellRef(s)
	if err != nil {
		panic(err)
	}
	return ref
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// String formats the CellRef as "A1".
func (c CellRef) String() string {
	return ColToName(c.Col) + strconv.Itoa(c.Row+1)
}

// Offset returns the reference moved by dr rows and dc columns.
func (c CellRef) Offset(dr, dc int) CellRef {
	return CellRef{Row: c.Row + dr, Col: c.Col + dc}
}

// Less reports whether c precedes o in row-major order.
func (c CellRef) Less(o CellRef) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

func (c CellRef) valid() bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row <= MaxRow && c.Col <= MaxCol
}

// invalidReason explains why valid reported false.
func (c CellRef) invalidReason() string {
	if c.Row < 0 || c.Col < 0 {
		return "negative coordinate"
	}
	return "coordinate beyond " + CellRef{Row: MaxRow, Col: MaxCol}.String()
}

// ColToName converts a 0-based column index to a column name.
// 0→"A", 25→"Z", 26→"AA", 702→"AAA"
func ColToName(col int) string {
	var buf [16]byte
	i := len(buf)
	col++ // convert to 1-based for algorithm
	for col > 0 {
		col-- // adjust for 0-indexed letter
		i--
		buf[i] = byte('A' + col%26)
		col /= 26
	}
	return string(buf[i:])
}

// NameToCol converts a column name to a 0-based column index.
// "A"→0, "Z"→25, "aa"→26
func NameToCol(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	col := 0
	for _, ch := range strings.ToUpper(name) {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1, nil
}

// Range is an inclusive rectangle of cells.
type Range struct {
	Start CellRef // top-left
	End   CellRef // bottom-right
}

// NewRange creates a Range from explicit bounds. It does not normalize;
// use Validate to reject inverted bounds.
func NewRange(startRow, startCol, endRow, endCol int) Range {
	return Range{
		Start: CellRef{Row: startRow, Col: startCol},
		End:   CellRef{Row: endRow, Col: endCol},
	}
}

// CellRange returns the 1x1 range covering ref.
func CellRange(ref CellRef) Range {
	return Range{Start: ref, End: ref}
}

// ParseRange parses "A1:C5" or a single cell "B2". Corners given in any order
// are normalized to top-left/bottom-right.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	first, second, found := strings.Cut(s, ":")
	a, err := ParseCellRef(first)
	if err != nil {
		return Range{}, err
	}
	if !found {
		return CellRange(a), nil
	}
	b, err := ParseCellRef(second)
	if err != nil {
		return Range{}, err
	}
	return NewRange(min(a.Row, b.Row), min(a.Col, b.Col), max(a.Row, b.Row), max(a.Col, b.Col)), nil
}

// MustRange is like ParseRange but panics on error.
func MustRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String formats the range as "A1:C5", or "B2" for a single cell.
func (r Range) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	return r.Start.String() + ":" + r.End.String()
}

// Validate returns a *RangeError if the range has inverted bounds or a
// corner outside [A1, MaxCol/MaxRow].
func (r Range) Validate() error {
	if !r.Start.valid() {
		return &RangeError{Range: r, Reason: r.Start.invalidReason()}
	}
	if !r.End.valid() {
		return &RangeError{Range: r, Reason: r.End.invalidReason()}
	}
	if r.End.Row < r.Start.Row || r.End.Col < r.Start.Col {
		return &RangeError{Range: r, Reason: "inverted bounds"}
	}
	return nil
}

// Size returns the dimensions of the range.
func (r Range) Size() Size {
	return Size{
		Width:  r.End.Col - r.Start.Col + 1,
		Height: r.End.Row - r.Start.Row + 1,
	}
}

// Contains returns true if ref lies inside the range.
func (r Range) Contains(ref CellRef) bool {
	return ref.Row >= r.Start.Row && ref.Row <= r.End.Row &&
		ref.Col >= r.Start.Col && ref.Col <= r.End.Col
}

// ContainsRange returns true if o lies entirely inside r.
func (r Range) ContainsRange(o Range) bool {
	return r.Contains(o.Start) && r.Contains(o.End)
}

// Overlaps reports whether the two ranges share at least one cell.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Row <= o.End.Row && o.Start.Row <= r.End.Row &&
		r.Start.Col <= o.End.Col && o.Start.Col <= r.End.Col
}

// Intersect returns the common part of two ranges.
func (r Range) Intersect(o Range) (Range, bool) {
	if !r.Overlaps(o) {
		return Range{}, false
	}
	return NewRange(
		max(r.Start.Row, o.Start.Row), max(r.Start.Col, o.Start.Col),
		min(r.End.Row, o.End.Row), min(r.End.Col, o.End.Col),
	), true
}

// Union returns the smallest range covering both ranges.
func (r Range) Union(o Range) Range {
	return NewRange(
		min(r.Start.Row, o.Start.Row), min(r.Start.Col, o.Start.Col),
		max(r.End.Row, o.End.Row), max(r.End.Col, o.End.Col),
	)
}

// Refs iterates over every coordinate of the range in row-major order.
func (r Range) Refs() iter.Seq[CellRef] {
	return func(yield func(CellRef) bool) {
		for row := r.Start.Row; row <= r.End.Row; row++ {
			for col := r.Start.Col; col <= r.End.Col; col++ {
				if !yield(CellRef{Row: row, Col: col}) {
					return
				}
			}
		}
	}
}

// area returns the number of cells in the range.
func (r Range) area() int {
	s := r.Size()
	return s.Width * s.Height
}

// Size represents width (columns) and height (rows).
type Size struct {
	Width  int
	Height int
}

// String formats the Size as "(WxH)".
func (s Size) String() string {
	return fmt.Sprintf("(%dx%d)", s.Width, s.Height)
}
