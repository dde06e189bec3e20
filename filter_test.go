package xlgrid

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_EqualsHidesNonMatching(t *testing.T) {
	s := newTestSheet(t, []any{"Active"}, []any{"Inactive"}, []any{"Active"})
	require.NoError(t, s.Filter(0, Equals("Active")))

	assert.False(t, s.IsRowHidden(0))
	assert.True(t, s.IsRowHidden(1))
	assert.False(t, s.IsRowHidden(2))
	assert.Equal(t, []int{1}, s.FilteredRows())
	assert.True(t, s.IsRowFiltered(1))

	s.ClearFilter()
	assert.Empty(t, s.HiddenRows())
	assert.Empty(t, s.FilteredRows())
	assert.Empty(t, s.Filters())
}

func TestFilter_HeaderRow(t *testing.T) {
	s := newTestSheet(t, []any{"Status"}, []any{"Active"}, []any{"Inactive"})
	require.NoError(t, s.Filter(0, Equals("active"), FilterOptions{HasHeader: true}))
	assert.Equal(t, []int{2}, s.FilteredRows())
}

func TestFilter_AndAcrossColumns(t *testing.T) {
	s := newTestSheet(t,
		[]any{"east", 10},
		[]any{"east", 50},
		[]any{"west", 50},
	)
	require.NoError(t, s.FilterBy([]ColumnFilter{
		{Column: 0, Criteria: Equals("east")},
		{Column: 1, Criteria: GreaterThan(20)},
	}))
	assert.Equal(t, []int{0, 2}, s.FilteredRows())

	assert.True(t, s.ClearColumnFilter(1))
	assert.False(t, s.ClearColumnFilter(1))
	assert.Equal(t, []int{2}, s.FilteredRows())
}

func TestFilter_ReplacesColumnCriteria(t *testing.T) {
	s := newTestSheet(t, []any{"a"}, []any{"b"})
	require.NoError(t, s.Filter(0, Equals("a")))
	require.NoError(t, s.Filter(0, Equals("b")))
	assert.Equal(t, []int{0}, s.FilteredRows())
	require.Len(t, s.Filters(), 1)
	assert.Equal(t, `equals "b"`, s.Filters()[0].Criteria.String())
}

func TestFilter_ManualHiddenRowsAreKept(t *testing.T) {
	s := newTestSheet(t, []any{"a"}, []any{"b"}, []any{"c"})
	s.SetRowHidden(2, true)
	require.NoError(t, s.Filter(0, Equals("a")))
	s.ClearFilter()
	assert.Equal(t, []int{2}, s.HiddenRows())
}

func TestFilter_InvalidArguments(t *testing.T) {
	s := newTestSheet(t, []any{1})
	assert.ErrorIs(t, s.Filter(-1, Equals(1)), ErrInvalidRange)

	err := s.Filter(0, Expr("value >"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter column A")
	assert.Empty(t, s.Filters())

	bad := NewRange(2, 0, 0, 0)
	assert.ErrorIs(t, s.Filter(0, Equals(1), FilterOptions{Range: &bad}), ErrInvalidRange)
}

func TestFilter_Range(t *testing.T) {
	s := newTestSheet(t, []any{"x"}, []any{"x"}, []any{"y"}, []any{"y"})
	r := MustRange("A1:A2")
	require.NoError(t, s.Filter(0, Equals("y"), FilterOptions{Range: &r}))
	assert.Equal(t, []int{0, 1}, s.FilteredRows(), "rows outside the range are not evaluated")
}

func TestCriteria_Match(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		name string
		c    Criteria
		v    Value
		want bool
	}{
		{"equals text ci", Equals("ABC"), String("abc"), true},
		{"equals numeric text", Equals(10), String("10.0"), true},
		{"equals mismatch", Equals("a"), String("b"), false},
		{"not equals", NotEquals("a"), String("b"), true},
		{"contains", Contains("MID"), String("a middle b"), true},
		{"not contains", NotContains("zz"), String("abc"), true},
		{"begins", BeginsWith("ab"), String("ABC"), true},
		{"ends", EndsWith("bc"), String("ABC"), true},
		{"ends mismatch", EndsWith("ab"), String("ABC"), false},
		{"gt number", GreaterThan(5), Number(6), true},
		{"gt numeric text", GreaterThan(5), String("6"), true},
		{"gt text never matches", GreaterThan(5), String("six"), false},
		{"gt blank never matches", GreaterThan(-1), Empty(), false},
		{"ge equal", GreaterOrEqual(5), Number(5), true},
		{"lt", LessThan(5), Number(4), true},
		{"le", LessOrEqual(5), Number(6), false},
		{"lt dates", LessThan(day(10)), Time(day(9)), true},
		{"between inclusive", Between(1, 3), Number(3), true},
		{"between outside", Between(1, 3), Number(4), false},
		{"not between", NotBetween(1, 3), Number(4), true},
		{"not between text", NotBetween(1, 3), String("x"), false},
		{"one of", OneOf("a", 2), Number(2), true},
		{"one of miss", OneOf("a", 2), String("b"), false},
		{"none of", NoneOf("a", "b"), String("c"), true},
		{"is empty blank", IsEmpty(), Empty(), true},
		{"is empty string", IsEmpty(), String(""), true},
		{"is empty zero", IsEmpty(), Number(0), false},
		{"not empty", IsNotEmpty(), Bool(false), true},
		{"func", Func(func(v Value) bool { return strings.HasPrefix(v.String(), "x") }), String("xy"), true},
		{"nil func", Func(nil), String("x"), false},
		{"zero criteria", Criteria{}, String("anything"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Match(tt.v, 0, 0))
		})
	}
}

func TestCriteria_Expr(t *testing.T) {
	tests := []struct {
		expr string
		v    Value
		row  int
		want bool
	}{
		{"isNumber && num >= 10", Number(12), 0, true},
		{"isNumber && num >= 10", String("12"), 0, true},
		{"isNumber && num >= 10", String("abc"), 0, false},
		{`text matches "^A"`, String("Apple"), 0, true},
		{`text startsWith "a"`, String("Apple"), 0, false},
		{"empty", Empty(), 0, true},
		{"row % 2 == 0", String("x"), 4, true},
		{"value == true", Bool(true), 0, true},
		{"value > 1", String("text"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			c := Expr(tt.expr)
			require.NoError(t, c.prepare())
			assert.Equal(t, tt.want, c.Match(tt.v, tt.row, 0))
		})
	}
}

func TestCriteria_ExprCompileErrors(t *testing.T) {
	c := Expr("num +")
	assert.Error(t, c.prepare())
	assert.False(t, c.Match(Number(1), 0, 0))

	c = Expr("num + 1")
	assert.Error(t, c.prepare(), "non-boolean expressions are rejected")
}

func TestFilter_Expr(t *testing.T) {
	s := newTestSheet(t, []any{5}, []any{15}, []any{"n/a"})
	require.NoError(t, s.Filter(0, Expr("isNumber && num > 10")))
	assert.Equal(t, []int{0, 2}, s.FilteredRows())
}

func TestCriteria_String(t *testing.T) {
	assert.Equal(t, `greaterThan "5"`, GreaterThan(5).String())
	assert.Equal(t, `contains "abc"`, Contains("ABC").String())
	assert.Equal(t, `between "1" and "3"`, Between(1, 3).String())
	assert.Equal(t, `oneOf ["a", "b"]`, OneOf("a", "b").String())
	assert.Equal(t, "isEmpty", IsEmpty().String())
	assert.Equal(t, `expr "num > 1"`, Expr("num > 1").String())
	assert.Equal(t, "any", Criteria{}.String())
}
