package xlgrid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxRenderWidth caps the width of a rendered column.
const maxRenderWidth = 24

// Describe returns a human-readable summary of the sheet: dimensions, cell
// counts, merges, hidden rows, filters and history depth. Useful for
// debugging and for the command-line tool.
func (s *Sheet) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sheet: %s\n", s.name)

	dim, ok := s.Dimensions()
	if !ok {
		b.WriteString("Dimensions: none\n")
	} else {
		fmt.Fprintf(&b, "Dimensions: %s %s\n", dim, dim.Size())
	}

	var formulas, styled, links, comments int
	for c := range s.Cells() {
		if c.formula != nil {
			formulas++
		}
		if c.style != nil {
			styled++
		}
		if c.hyperlink != nil {
			links++
		}
		if c.comment != nil {
			comments++
		}
	}
	fmt.Fprintf(&b, "Cells: %d (%d formulas, %d styled, %d links, %d comments)\n",
		s.Len(), formulas, styled, links, comments)

	if merges := s.Merges(); len(merges) > 0 {
		parts := make([]string, len(merges))
		for i, m := range merges {
			parts[i] = m.String()
		}
		fmt.Fprintf(&b, "Merges: %s\n", strings.Join(parts, ", "))
	}
	if hidden := s.HiddenRows(); len(hidden) > 0 {
		fmt.Fprintf(&b, "Hidden rows: %s\n", joinRows(hidden))
	}
	for _, f := range s.Filters() {
		fmt.Fprintf(&b, "Filter: %s %s\n", ColToName(f.Column), f.Criteria)
	}
	fmt.Fprintf(&b, "History: %d undo, %d redo, %d pending\n",
		s.UndoLen(), s.RedoLen(), len(s.pending))
	return b.String()
}

// joinRows formats zero-based rows as one-based row numbers.
func joinRows(rows []int) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = strconv.Itoa(r + 1)
	}
	return strings.Join(parts, ", ")
}

// Render draws r as a text table with column letters and row numbers.
// Hidden rows are skipped. Column widths account for East Asian wide
// characters; long values are truncated with "…".
func (s *Sheet) Render(r Range) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	size := r.Size()
	values, err := s.RangeValues(r)
	if err != nil {
		return "", err
	}

	widths := make([]int, size.Width)
	for j := range widths {
		widths[j] = runewidth.StringWidth(ColToName(r.Start.Col + j))
	}
	text := make([][]string, size.Height)
	for i, row := range values {
		text[i] = make([]string, size.Width)
		for j, v := range row {
			cell := runewidth.Truncate(v.String(), maxRenderWidth, "…")
			text[i][j] = cell
			widths[j] = max(widths[j], runewidth.StringWidth(cell))
		}
	}
	gutter := len(strconv.Itoa(r.End.Row + 1))

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutter))
	for j, w := range widths {
		b.WriteString(" | ")
		b.WriteString(runewidth.FillRight(ColToName(r.Start.Col+j), w))
	}
	b.WriteByte('\n')
	for i, row := range text {
		if s.IsRowHidden(r.Start.Row + i) {
			continue
		}
		b.WriteString(runewidth.FillLeft(strconv.Itoa(r.Start.Row+i+1), gutter))
		for j, cell := range row {
			b.WriteString(" | ")
			b.WriteString(runewidth.FillRight(cell, widths[j]))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
