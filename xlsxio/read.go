// Package xlsxio reads and writes xlgrid sheets as .xlsx workbooks using
// excelize. It only uses the public xlgrid API: imports write through the
// mutation methods with events suspended, exports read through the
// accessors.
package xlsxio

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/javajack/xlgrid"
	"github.com/xuri/excelize/v2"
)

// Open reads one worksheet from the workbook at path. An empty sheet name
// selects the first worksheet.
func Open(path, sheet string, opts ...xlgrid.Option) (*xlgrid.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer f.Close()
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook %q has no sheets", path)
		}
		sheet = list[0]
	}
	return Import(f, sheet, opts...)
}

// OpenAll reads every worksheet of the workbook at path, in tab order.
func OpenAll(path string, opts ...xlgrid.Option) ([]*xlgrid.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer f.Close()
	var sheets []*xlgrid.Sheet
	for _, name := range f.GetSheetList() {
		s, err := Import(f, name, opts...)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

// Import builds a sheet from the named worksheet of f: values with their
// types, formulas with cached results, styles, merges, row and column
// layout, hyperlinks, comments and data validations. The returned sheet has
// no pending changes and no undo history.
func Import(f *excelize.File, sheet string, opts ...xlgrid.Option) (*xlgrid.Sheet, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in workbook", sheet)
	}
	r := &reader{file: f, name: sheet, styles: make(map[int]*xlgrid.Style)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	s := xlgrid.NewSheet(sheet, opts...)
	err := s.WithoutEvents(func() error {
		return r.read(s)
	})
	if err != nil {
		return nil, fmt.Errorf("import sheet %q: %w", sheet, err)
	}
	return s, nil
}

type reader struct {
	file     *excelize.File
	name     string
	date1904 bool
	styles   map[int]*xlgrid.Style // excelize style ID → converted style
}

func (r *reader) read(s *xlgrid.Sheet) error {
	rows, err := r.file.GetRows(r.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}
	maxCol := 0
	for row, cols := range rows {
		maxCol = max(maxCol, len(cols))
		for col, raw := range cols {
			if err := r.readCell(s, row, col, raw); err != nil {
				return err
			}
		}
	}
	// GetRows trims trailing blanks, which drops cells that only carry a
	// style or a hyperlink. Check the rest of the used area for them.
	lastRow, lastCol := len(rows), maxCol
	if dim, err := r.file.GetSheetDimension(r.name); err == nil && dim != "" {
		if rng, err := xlgrid.ParseRange(dim); err == nil {
			lastRow = max(lastRow, rng.End.Row+1)
			lastCol = max(lastCol, rng.End.Col+1)
		}
	}
	for row := 0; row < lastRow; row++ {
		from := 0
		if row < len(rows) {
			from = len(rows[row])
		}
		for col := from; col < lastCol; col++ {
			if err := r.readCell(s, row, col, ""); err != nil {
				return err
			}
		}
	}
	if err := r.readMerges(s); err != nil {
		return err
	}
	if err := r.readComments(s); err != nil {
		return err
	}
	if err := r.readValidations(s); err != nil {
		return err
	}
	r.readRows(s, len(rows))
	r.readCols(s, maxCol)
	return nil
}

func (r *reader) readCell(s *xlgrid.Sheet, row, col int, raw string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	formula, _ := r.file.GetCellFormula(r.name, cell)
	styleID, _ := r.file.GetCellStyle(r.name, cell)
	linked, target, _ := r.file.GetCellHyperLink(r.name, cell)
	if raw == "" && formula == "" && styleID == 0 && !linked {
		return nil
	}

	v, err := r.value(cell, raw, styleID)
	if err != nil {
		return fmt.Errorf("cell %s: %w", cell, err)
	}
	if formula != "" {
		if err := s.SetFormula(row, col, formula, v); err != nil {
			return err
		}
	} else if !v.IsEmpty() {
		if err := s.SetValue(row, col, v); err != nil {
			return err
		}
	}
	if styleID != 0 {
		st, err := r.style(styleID)
		if err != nil {
			return fmt.Errorf("cell %s: %w", cell, err)
		}
		if st != nil {
			if err := s.SetStyle(row, col, st); err != nil {
				return err
			}
		}
	}
	if linked {
		if err := s.SetHyperlink(row, col, &xlgrid.Hyperlink{Target: target}); err != nil {
			return err
		}
	}
	return nil
}

// value converts a raw cell string into a typed value.
func (r *reader) value(cell, raw string, styleID int) (xlgrid.Value, error) {
	typ, err := r.file.GetCellType(r.name, cell)
	if err != nil {
		return xlgrid.Empty(), err
	}
	switch typ {
	case excelize.CellTypeBool:
		return xlgrid.Bool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeError:
		return xlgrid.Error(xlgrid.ErrorCode(raw)), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		runs, err := r.file.GetCellRichText(r.name, cell)
		if err == nil && isRich(runs) {
			return xlgrid.RichText(fromExcelRuns(runs)...), nil
		}
		return xlgrid.String(raw), nil
	case excelize.CellTypeDate:
		if t, err := parseISODate(raw); err == nil {
			return xlgrid.Time(t), nil
		}
		return xlgrid.String(raw), nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if raw == "" {
			return xlgrid.Empty(), nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return xlgrid.String(raw), nil
		}
		if styleID != 0 {
			if es, err := r.file.GetStyle(styleID); err == nil && isDateFormat(es.NumFmt, es.CustomNumFmt) {
				if t, err := excelize.ExcelDateToTime(f, r.date1904); err == nil {
					return xlgrid.Time(t), nil
				}
			}
		}
		return xlgrid.Number(f), nil
	case excelize.CellTypeFormula:
		// Cached string result of a formula.
		return xlgrid.String(raw), nil
	default:
		return xlgrid.String(raw), nil
	}
}

func (r *reader) style(id int) (*xlgrid.Style, error) {
	if st, ok := r.styles[id]; ok {
		return st, nil
	}
	es, err := r.file.GetStyle(id)
	if err != nil {
		return nil, fmt.Errorf("read style %d: %w", id, err)
	}
	st := fromExcelStyle(es)
	r.styles[id] = st
	return st, nil
}

func (r *reader) readMerges(s *xlgrid.Sheet) error {
	merges, err := r.file.GetMergeCells(r.name, true)
	if err != nil {
		return fmt.Errorf("read merges: %w", err)
	}
	for _, m := range merges {
		rng, err := xlgrid.ParseRange(m.GetStartAxis() + ":" + m.GetEndAxis())
		if err != nil {
			return err
		}
		if err := s.Merge(rng); err != nil {
			return fmt.Errorf("merge %s: %w", rng, err)
		}
	}
	return nil
}

func (r *reader) readComments(s *xlgrid.Sheet) error {
	comments, err := r.file.GetComments(r.name)
	if err != nil {
		return fmt.Errorf("read comments: %w", err)
	}
	for _, c := range comments {
		ref, err := xlgrid.ParseCellRef(c.Cell)
		if err != nil {
			return err
		}
		text := c.Text
		for _, run := range c.Paragraph {
			text += run.Text
		}
		// Authors are written as a bold "Author:" prefix run.
		text = strings.TrimPrefix(text, c.Author+":")
		if err := s.SetComment(ref.Row, ref.Col, &xlgrid.Comment{Author: c.Author, Text: text}); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readValidations(s *xlgrid.Sheet) error {
	dvs, err := r.file.GetDataValidations(r.name)
	if err != nil {
		return fmt.Errorf("read data validations: %w", err)
	}
	for _, dv := range dvs {
		v := &xlgrid.Validation{
			Type:       dv.Type,
			Operator:   dv.Operator,
			Formula1:   dv.Formula1,
			Formula2:   dv.Formula2,
			AllowBlank: dv.AllowBlank,
		}
		if dv.Type == "list" {
			v.List = parseDropList(dv.Formula1)
		}
		for _, sq := range strings.Fields(dv.Sqref) {
			rng, err := xlgrid.ParseRange(sq)
			if err != nil {
				return err
			}
			for ref := range rng.Refs() {
				if err := s.SetValidation(ref.Row, ref.Col, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *reader) readRows(s *xlgrid.Sheet, n int) {
	defHeight, _ := r.file.GetRowHeight(r.name, n+1)
	for row := 0; row < n; row++ {
		if h, err := r.file.GetRowHeight(r.name, row+1); err == nil && h != defHeight {
			s.SetRowHeight(row, h)
		}
		if visible, err := r.file.GetRowVisible(r.name, row+1); err == nil && !visible {
			s.SetRowHidden(row, true)
		}
		if lvl, err := r.file.GetRowOutlineLevel(r.name, row+1); err == nil && lvl > 0 {
			s.SetRowOutlineLevel(row, lvl)
		}
	}
}

func (r *reader) readCols(s *xlgrid.Sheet, n int) {
	defWidth, _ := r.file.GetColWidth(r.name, "XFD")
	for col := 0; col < n; col++ {
		name := xlgrid.ColToName(col)
		if w, err := r.file.GetColWidth(r.name, name); err == nil && w != defWidth {
			s.SetColWidth(col, w)
		}
		if visible, err := r.file.GetColVisible(r.name, name); err == nil && !visible {
			s.SetColHidden(col, true)
		}
		if lvl, err := r.file.GetColOutlineLevel(r.name, name); err == nil && lvl > 0 {
			s.SetColOutlineLevel(col, lvl)
		}
	}
}

func isRich(runs []excelize.RichTextRun) bool {
	if len(runs) > 1 {
		return true
	}
	return len(runs) == 1 && runs[0].Font != nil
}

func fromExcelRuns(runs []excelize.RichTextRun) []xlgrid.RichTextRun {
	out := make([]xlgrid.RichTextRun, len(runs))
	for i, run := range runs {
		out[i] = xlgrid.RichTextRun{Text: run.Text}
		if run.Font != nil {
			f := fromExcelFont(run.Font)
			out[i].Font = &f
		}
	}
	return out
}

// parseDropList splits a list validation formula like `"a,b,c"`.
func parseDropList(formula string) []string {
	if !strings.HasPrefix(formula, `"`) || !strings.HasSuffix(formula, `"`) || len(formula) < 2 {
		return nil
	}
	inner := strings.ReplaceAll(formula[1:len(formula)-1], `""`, `"`)
	return strings.Split(inner, ",")
}

// parseISODate parses the ISO 8601 text of an inline date cell.
func parseISODate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", raw)
}
