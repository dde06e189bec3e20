package xlgrid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CellType is the kind of a cell value.
type CellType int

const (
	CellBlank CellType = iota
	CellString
	CellNumber
	CellBoolean
	CellDate
	CellError
	CellRichText
)

// String returns a human-readable name for the CellType.
func (ct CellType) String() string {
	switch ct {
	case CellBlank:
		return "Blank"
	case CellString:
		return "String"
	case CellNumber:
		return "Number"
	case CellBoolean:
		return "Boolean"
	case CellDate:
		return "Date"
	case CellError:
		return "Error"
	case CellRichText:
		return "RichText"
	default:
		return "Unknown"
	}
}

// ErrorCode is a spreadsheet error literal such as "#DIV/0!".
type ErrorCode string

const (
	ErrorNull  ErrorCode = "#NULL!"
	ErrorDiv0  ErrorCode = "#DIV/0!"
	ErrorValue ErrorCode = "#VALUE!"
	ErrorRef   ErrorCode = "#REF!"
	ErrorName  ErrorCode = "#NAME?"
	ErrorNum   ErrorCode = "#NUM!"
	ErrorNA    ErrorCode = "#N/A"
)

// RichTextRun is one formatted fragment of a rich-text value.
type RichTextRun struct {
	Text string
	Font *Font // nil inherits the cell style
}

// Value is the content of a cell: exactly one of blank, text, number,
// boolean, timestamp, error code or rich text. The zero Value is blank.
type Value struct {
	kind CellType
	str  string // CellString, CellError
	num  float64
	b    bool
	t    time.Time
	runs []RichTextRun
}

// Empty returns the blank value.
func Empty() Value { return Value{} }

// String returns a text value.
func String(s string) Value { return Value{kind: CellString, str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: CellNumber, num: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: CellBoolean, b: b} }

// Time returns a timestamp value.
func Time(t time.Time) Value { return Value{kind: CellDate, t: t} }

// Error returns an error-code value.
func Error(code ErrorCode) Value { return Value{kind: CellError, str: string(code)} }

// RichText returns a rich-text value. The runs are copied.
func RichText(runs ...RichTextRun) Value {
	return Value{kind: CellRichText, runs: append([]RichTextRun(nil), runs...)}
}

// ValueOf converts a Go value into a Value. Unknown types become their
// formatted string form.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Empty()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Number(float64(x))
	case int8:
		return Number(float64(x))
	case int16:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint8:
		return Number(float64(x))
	case uint16:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case float32:
		return Number(float64(x))
	case float64:
		return Number(x)
	case time.Time:
		return Time(x)
	case ErrorCode:
		return Error(x)
	case []RichTextRun:
		return RichText(x...)
	case interface{ String() string }:
		return String(x.String())
	default:
		return String(fmt.Sprint(v))
	}
}

// Kind returns the value's type.
func (v Value) Kind() CellType { return v.kind }

// IsEmpty reports whether the value is blank.
func (v Value) IsEmpty() bool { return v.kind == CellBlank }

// Text returns the text of a string value, or the concatenated runs of a
// rich-text value.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case CellString:
		return v.str, true
	case CellRichText:
		return joinRuns(v.runs), true
	default:
		return "", false
	}
}

// Float returns the number of a numeric value.
func (v Value) Float() (float64, bool) {
	if v.kind != CellNumber {
		return 0, false
	}
	return v.num, true
}

// Boolean returns the flag of a boolean value.
func (v Value) Boolean() (bool, bool) {
	if v.kind != CellBoolean {
		return false, false
	}
	return v.b, true
}

// Time returns the timestamp of a date value.
func (v Value) Time() (time.Time, bool) {
	if v.kind != CellDate {
		return time.Time{}, false
	}
	return v.t, true
}

// ErrorCode returns the code of an error value.
func (v Value) ErrorCode() (ErrorCode, bool) {
	if v.kind != CellError {
		return "", false
	}
	return ErrorCode(v.str), true
}

// Runs returns a copy of the runs of a rich-text value.
func (v Value) Runs() []RichTextRun {
	if v.kind != CellRichText {
		return nil
	}
	return append([]RichTextRun(nil), v.runs...)
}

// String returns the display form used by search, sort and filter.
func (v Value) String() string {
	switch v.kind {
	case CellBlank:
		return ""
	case CellString, CellError:
		return v.str
	case CellNumber:
		return formatNumber(v.num)
	case CellBoolean:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case CellDate:
		return v.t.Format(time.RFC3339)
	case CellRichText:
		return joinRuns(v.runs)
	default:
		return ""
	}
}

// Interface returns the value as a plain Go value: nil, string, float64,
// bool, time.Time, ErrorCode or []RichTextRun.
func (v Value) Interface() any {
	switch v.kind {
	case CellBlank:
		return nil
	case CellString:
		return v.str
	case CellNumber:
		return v.num
	case CellBoolean:
		return v.b
	case CellDate:
		return v.t
	case CellError:
		return ErrorCode(v.str)
	case CellRichText:
		return v.Runs()
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case CellBlank:
		return true
	case CellString, CellError:
		return v.str == o.str
	case CellNumber:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case CellBoolean:
		return v.b == o.b
	case CellDate:
		return v.t.Equal(o.t)
	case CellRichText:
		if len(v.runs) != len(o.runs) {
			return false
		}
		for i := range v.runs {
			if v.runs[i].Text != o.runs[i].Text || !v.runs[i].Font.equal(o.runs[i].Font) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// number coerces the value to a float: numbers directly, strings when they
// parse as a number. Everything else does not coerce.
func (v Value) number() (float64, bool) {
	switch v.kind {
	case CellNumber:
		return v.num, true
	case CellString, CellRichText:
		s, _ := v.Text()
		return parseNumber(s)
	case CellBlank, CellBoolean, CellDate, CellError:
		return 0, false
	default:
		return 0, false
	}
}

// isNull reports whether the value counts as absent for sorting and
// emptiness checks: blank or an empty string.
func (v Value) isNull() bool {
	switch v.kind {
	case CellBlank:
		return true
	case CellString:
		return v.str == ""
	case CellRichText:
		return joinRuns(v.runs) == ""
	case CellNumber, CellBoolean, CellDate, CellError:
		return false
	default:
		return false
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func joinRuns(runs []RichTextRun) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
