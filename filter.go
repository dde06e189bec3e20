package xlgrid

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/expr-lang/expr/vm"
)

type criteriaOp int

const (
	opEquals criteriaOp = iota + 1
	opNotEquals
	opContains
	opNotContains
	opBeginsWith
	opEndsWith
	opGreater
	opGreaterOrEqual
	opLess
	opLessOrEqual
	opBetween
	opNotBetween
	opOneOf
	opNoneOf
	opEmpty
	opNotEmpty
	opFunc
	opExpr
)

var opNames = map[criteriaOp]string{
	opEquals:         "equals",
	opNotEquals:      "notEquals",
	opContains:       "contains",
	opNotContains:    "notContains",
	opBeginsWith:     "beginsWith",
	opEndsWith:       "endsWith",
	opGreater:        "greaterThan",
	opGreaterOrEqual: "greaterOrEqual",
	opLess:           "lessThan",
	opLessOrEqual:    "lessOrEqual",
	opBetween:        "between",
	opNotBetween:     "notBetween",
	opOneOf:          "oneOf",
	opNoneOf:         "noneOf",
	opEmpty:          "isEmpty",
	opNotEmpty:       "isNotEmpty",
	opFunc:           "func",
	opExpr:           "expr",
}

// Criteria is a predicate over one column's cell values. Build one with the
// constructors below; the zero Criteria matches everything.
//
// Text matching is case-insensitive. Ordered comparisons coerce numeric
// text to numbers; a value that cannot be compared (text against a number,
// a blank cell) does not match.
type Criteria struct {
	op       criteriaOp
	operand  Value
	operand2 Value
	list     []Value
	text     string
	fn       func(Value) bool
	expr     string
	program  *vm.Program
}

// Equals matches values equal to v; text compares case-insensitively.
func Equals(v any) Criteria { return Criteria{op: opEquals, operand: ValueOf(v)} }

// NotEquals matches values that Equals(v) rejects.
func NotEquals(v any) Criteria { return Criteria{op: opNotEquals, operand: ValueOf(v)} }

// Contains matches values whose display text contains s.
func Contains(s string) Criteria { return Criteria{op: opContains, text: strings.ToLower(s)} }

// NotContains matches values whose display text does not contain s.
func NotContains(s string) Criteria { return Criteria{op: opNotContains, text: strings.ToLower(s)} }

// BeginsWith matches values whose display text starts with s.
func BeginsWith(s string) Criteria { return Criteria{op: opBeginsWith, text: strings.ToLower(s)} }

// EndsWith matches values whose display text ends with s.
func EndsWith(s string) Criteria { return Criteria{op: opEndsWith, text: strings.ToLower(s)} }

// GreaterThan matches values ordered after v.
func GreaterThan(v any) Criteria { return Criteria{op: opGreater, operand: ValueOf(v)} }

// GreaterOrEqual matches values ordered after or equal to v.
func GreaterOrEqual(v any) Criteria { return Criteria{op: opGreaterOrEqual, operand: ValueOf(v)} }

// LessThan matches values ordered before v.
func LessThan(v any) Criteria { return Criteria{op: opLess, operand: ValueOf(v)} }

// LessOrEqual matches values ordered before or equal to v.
func LessOrEqual(v any) Criteria { return Criteria{op: opLessOrEqual, operand: ValueOf(v)} }

// Between matches values in [lo, hi].
func Between(lo, hi any) Criteria {
	return Criteria{op: opBetween, operand: ValueOf(lo), operand2: ValueOf(hi)}
}

// NotBetween matches comparable values outside [lo, hi].
func NotBetween(lo, hi any) Criteria {
	return Criteria{op: opNotBetween, operand: ValueOf(lo), operand2: ValueOf(hi)}
}

// OneOf matches values equal to any of the given values.
func OneOf(values ...any) Criteria { return Criteria{op: opOneOf, list: valuesOf(values)} }

// NoneOf matches values equal to none of the given values.
func NoneOf(values ...any) Criteria { return Criteria{op: opNoneOf, list: valuesOf(values)} }

// IsEmpty matches blank cells and empty strings.
func IsEmpty() Criteria { return Criteria{op: opEmpty} }

// IsNotEmpty matches everything IsEmpty does not.
func IsNotEmpty() Criteria { return Criteria{op: opNotEmpty} }

// Func matches values for which fn returns true.
func Func(fn func(Value) bool) Criteria { return Criteria{op: opFunc, fn: fn} }

// Expr matches values for which the boolean expression holds. The
// expression sees value, text, num, isNumber, empty, row and col, e.g.
// `isNumber && num >= 10` or `text matches "^A"`.
func Expr(expression string) Criteria { return Criteria{op: opExpr, expr: expression} }

func valuesOf(values []any) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = ValueOf(v)
	}
	return out
}

// String describes the criteria, e.g. `equals "Active"`.
func (c Criteria) String() string {
	name, ok := opNames[c.op]
	if !ok {
		return "any"
	}
	switch c.op {
	case opEquals, opNotEquals, opGreater, opGreaterOrEqual, opLess, opLessOrEqual:
		return fmt.Sprintf("%s %q", name, c.operand.String())
	case opContains, opNotContains, opBeginsWith, opEndsWith:
		return fmt.Sprintf("%s %q", name, c.text)
	case opBetween, opNotBetween:
		return fmt.Sprintf("%s %q and %q", name, c.operand.String(), c.operand2.String())
	case opOneOf, opNoneOf:
		parts := make([]string, len(c.list))
		for i, v := range c.list {
			parts[i] = fmt.Sprintf("%q", v.String())
		}
		return name + " [" + strings.Join(parts, ", ") + "]"
	case opExpr:
		return fmt.Sprintf("%s %q", name, c.expr)
	default:
		return name
	}
}

// prepare compiles an Expr criteria.
func (c *Criteria) prepare() error {
	if c.op != opExpr || c.program != nil {
		return nil
	}
	p, err := compileExpr(c.expr)
	if err != nil {
		return err
	}
	c.program = p
	return nil
}

// Match reports whether v, found at (row, col), satisfies the criteria.
func (c Criteria) Match(v Value, row, col int) bool {
	switch c.op {
	case opFunc:
		return c.fn != nil && c.fn(v)
	case opExpr:
		if c.program == nil {
			if err := c.prepare(); err != nil {
				return false
			}
		}
		return runExpr(c.program, newExprEnv(v, row, col))
	case opEquals:
		return looseEqual(v, c.operand)
	case opNotEquals:
		return !looseEqual(v, c.operand)
	case opContains:
		return strings.Contains(strings.ToLower(v.String()), c.text)
	case opNotContains:
		return !strings.Contains(strings.ToLower(v.String()), c.text)
	case opBeginsWith:
		return strings.HasPrefix(strings.ToLower(v.String()), c.text)
	case opEndsWith:
		return strings.HasSuffix(strings.ToLower(v.String()), c.text)
	case opGreater:
		n, ok := compareOrdered(v, c.operand)
		return ok && n > 0
	case opGreaterOrEqual:
		n, ok := compareOrdered(v, c.operand)
		return ok && n >= 0
	case opLess:
		n, ok := compareOrdered(v, c.operand)
		return ok && n < 0
	case opLessOrEqual:
		n, ok := compareOrdered(v, c.operand)
		return ok && n <= 0
	case opBetween, opNotBetween:
		lo, lok := compareOrdered(v, c.operand)
		hi, hok := compareOrdered(v, c.operand2)
		if !lok || !hok {
			return false
		}
		in := lo >= 0 && hi <= 0
		return in == (c.op == opBetween)
	case opOneOf:
		return slices.ContainsFunc(c.list, func(o Value) bool { return looseEqual(v, o) })
	case opNoneOf:
		return !slices.ContainsFunc(c.list, func(o Value) bool { return looseEqual(v, o) })
	case opEmpty:
		return v.isNull()
	case opNotEmpty:
		return !v.isNull()
	default:
		return true
	}
}

// looseEqual compares numerically when both sides are numbers or numeric
// text, otherwise by case-insensitive display form.
func looseEqual(a, b Value) bool {
	if fa, ok := a.number(); ok {
		if fb, ok := b.number(); ok {
			return fa == fb
		}
	}
	return strings.EqualFold(a.String(), b.String())
}

func compareOrdered(a, b Value) (int, bool) {
	if fa, ok := a.number(); ok {
		if fb, ok := b.number(); ok {
			return cmp.Compare(fa, fb), true
		}
		return 0, false
	}
	ta, aok := a.Time()
	tb, bok := b.Time()
	if aok && bok {
		return ta.Compare(tb), true
	}
	return 0, false
}

// ColumnFilter pairs a column with its criteria.
type ColumnFilter struct {
	Column   int
	Criteria Criteria
}

// FilterOptions sets the rows a filter evaluates. It stays in effect until
// the filter is cleared.
type FilterOptions struct {
	Range     *Range // nil means the sheet bounds at each recompute
	HasHeader bool   // never hide the first row of the range
}

type filterState struct {
	columns map[int]Criteria
	opts    FilterOptions
	hidden  map[int]bool // filtered row → whether it was already hidden by hand
}

func newFilterState() filterState {
	return filterState{columns: make(map[int]Criteria), hidden: make(map[int]bool)}
}

// Filter sets the criteria for col, replacing any previous one, and
// recomputes which rows are hidden. Rows must pass the criteria of every
// filtered column to stay visible.
func (s *Sheet) Filter(col int, c Criteria, opts ...FilterOptions) error {
	return s.FilterBy([]ColumnFilter{{Column: col, Criteria: c}}, opts...)
}

// FilterBy sets the criteria of several columns at once.
func (s *Sheet) FilterBy(filters []ColumnFilter, opts ...FilterOptions) error {
	for i := range filters {
		if filters[i].Column < 0 {
			return fmt.Errorf("filter: column %d: %w", filters[i].Column, ErrInvalidRange)
		}
		if err := filters[i].Criteria.prepare(); err != nil {
			return fmt.Errorf("filter column %s: %w", ColToName(filters[i].Column), err)
		}
	}
	if len(opts) > 0 {
		if r := opts[0].Range; r != nil {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("filter: %w", err)
			}
		}
		s.filter.opts = opts[0]
	}
	for _, f := range filters {
		s.filter.columns[f.Column] = f.Criteria
	}
	s.refilter()
	return nil
}

// ClearColumnFilter removes the criteria for col. It reports whether one
// was set.
func (s *Sheet) ClearColumnFilter(col int) bool {
	if _, ok := s.filter.columns[col]; !ok {
		return false
	}
	delete(s.filter.columns, col)
	s.refilter()
	return true
}

// ClearFilter removes all criteria and shows every row the filter hid. A
// row that was already hidden by hand when the filter hid it stays hidden;
// SetRowHidden shows it.
func (s *Sheet) ClearFilter() {
	clear(s.filter.columns)
	s.filter.opts = FilterOptions{}
	s.refilter()
}

// Filters returns the active column filters ordered by column.
func (s *Sheet) Filters() []ColumnFilter {
	out := make([]ColumnFilter, 0, len(s.filter.columns))
	for _, col := range sortedKeys(s.filter.columns) {
		out = append(out, ColumnFilter{Column: col, Criteria: s.filter.columns[col]})
	}
	return out
}

// FilteredRows returns the rows currently hidden by the filter, ascending.
func (s *Sheet) FilteredRows() []int {
	return sortedKeys(s.filter.hidden)
}

// IsRowFiltered reports whether row is hidden by the filter.
func (s *Sheet) IsRowFiltered(row int) bool {
	_, ok := s.filter.hidden[row]
	return ok
}

// refilter recomputes the hidden set from scratch. Rows that were hidden
// by hand before the filter hid them stay hidden when the filter lets go.
func (s *Sheet) refilter() {
	for row, manual := range s.filter.hidden {
		if !manual {
			s.SetRowHidden(row, false)
		}
	}
	clear(s.filter.hidden)
	if len(s.filter.columns) == 0 {
		return
	}
	span, ok, err := s.span(s.filter.opts.Range)
	if err != nil || !ok {
		return
	}
	first := span.Start.Row
	if s.filter.opts.HasHeader {
		first++
	}
	for row := first; row <= span.End.Row; row++ {
		for col, c := range s.filter.columns {
			if !c.Match(s.Value(row, col), row, col) {
				s.filter.hidden[row] = s.IsRowHidden(row)
				s.SetRowHidden(row, true)
				break
			}
		}
	}
}
