package xlgrid

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// SearchIn selects what Find compares the query against.
type SearchIn int

const (
	SearchValues   SearchIn = iota // the value's display form
	SearchFormulas                 // the formula text
	SearchBoth
)

// FindOptions controls Find, FindAll, Replace and ReplaceAll.
type FindOptions struct {
	MatchCase bool
	WholeCell bool   // the whole target must match, not a substring
	Regexp    bool   // treat the query as a regular expression
	In        SearchIn
	Range     *Range // nil searches every cell
}

// matcher is a compiled query.
type matcher struct {
	re *regexp.Regexp
}

func newMatcher(query string, opts FindOptions) (*matcher, error) {
	if query == "" {
		return nil, errors.New("empty search query")
	}
	pattern := query
	if !opts.Regexp {
		pattern = regexp.QuoteMeta(query)
	}
	if opts.WholeCell {
		pattern = "^(?:" + pattern + ")$"
	}
	if !opts.MatchCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile search pattern %q: %w", query, err)
	}
	return &matcher{re: re}, nil
}

func (m *matcher) matchCell(c *Cell, in SearchIn) bool {
	if in != SearchFormulas {
		if v := c.Value(); !v.IsEmpty() && m.re.MatchString(v.String()) {
			return true
		}
	}
	if in != SearchValues && c.formula != nil {
		return m.re.MatchString(c.formula.Text)
	}
	return false
}

// Find returns the first matching cell in row-major order.
func (s *Sheet) Find(query string, opts FindOptions) (*Cell, bool, error) {
	m, cells, err := s.searchSet(query, opts)
	if err != nil {
		return nil, false, err
	}
	for _, c := range cells {
		if m.matchCell(c, opts.In) {
			return c, true, nil
		}
	}
	return nil, false, nil
}

// FindAll returns every matching cell in row-major order.
func (s *Sheet) FindAll(query string, opts FindOptions) ([]*Cell, error) {
	m, cells, err := s.searchSet(query, opts)
	if err != nil {
		return nil, err
	}
	var out []*Cell
	for _, c := range cells {
		if m.matchCell(c, opts.In) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Sheet) searchSet(query string, opts FindOptions) (*matcher, []*Cell, error) {
	m, err := newMatcher(query, opts)
	if err != nil {
		return nil, nil, err
	}
	if opts.Range != nil {
		if err := opts.Range.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return m, s.cellsIn(opts.Range), nil
}

// Replace substitutes repl into the first matching cell. With Regexp set,
// repl may use $1-style group references. Values are rewritten through
// SetValue, formulas through SetFormula, so the edit is recorded and
// undoable. It reports whether a cell was changed.
func (s *Sheet) Replace(query, repl string, opts FindOptions) (bool, error) {
	n, err := s.replace(query, repl, opts, 1)
	return n > 0, err
}

// ReplaceAll substitutes repl into every matching cell as one undo step and
// returns the number of cells changed.
func (s *Sheet) ReplaceAll(query, repl string, opts FindOptions) (int, error) {
	var n int
	err := s.Batch(func() error {
		var err error
		n, err = s.replace(query, repl, opts, -1)
		return err
	})
	return n, err
}

func (s *Sheet) replace(query, repl string, opts FindOptions, limit int) (int, error) {
	m, cells, err := s.searchSet(query, opts)
	if err != nil {
		return 0, err
	}
	if !opts.Regexp {
		repl = strings.ReplaceAll(repl, "$", "$$")
	}
	n := 0
	for _, c := range cells {
		if limit >= 0 && n >= limit {
			break
		}
		if !m.matchCell(c, opts.In) {
			continue
		}
		if s.replaceIn(c, m, repl, opts.In) {
			n++
		}
	}
	return n, nil
}

func (s *Sheet) replaceIn(c *Cell, m *matcher, repl string, in SearchIn) bool {
	changed := false
	ref := c.ref
	if in != SearchValues && c.formula != nil && m.re.MatchString(c.formula.Text) {
		text := m.re.ReplaceAllString(c.formula.Text, repl)
		if text != c.formula.Text {
			result := c.formula.Result
			s.write(ref, ChangeFormula, func(c *Cell) { c.formula = &Formula{Text: text, Result: result} })
			changed = true
		}
	}
	if in != SearchFormulas && c.formula == nil {
		v := c.Value()
		if v.IsEmpty() || !m.re.MatchString(v.String()) {
			return changed
		}
		text := m.re.ReplaceAllString(v.String(), repl)
		if text == v.String() {
			return changed
		}
		nv := replacedValue(v, text)
		s.write(ref, ChangeValue, func(c *Cell) { c.value = nv })
		changed = true
	}
	return changed
}

// replacedValue keeps a number a number when the replaced text still
// parses as one; everything else becomes text.
func replacedValue(orig Value, text string) Value {
	if orig.Kind() == CellNumber {
		if f, ok := parseNumber(text); ok {
			return Number(f)
		}
	}
	return String(text)
}
