package xlsxio

import (
	"fmt"
	"io"
	"strings"

	"github.com/javajack/xlgrid"
	"github.com/xuri/excelize/v2"
)

// Save writes the sheets to a new workbook at path, one worksheet each, in
// the given order.
func Save(path string, sheets ...*xlgrid.Sheet) error {
	f, err := build(sheets)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}

// Write writes the sheets as a workbook to w.
func Write(w io.Writer, sheets ...*xlgrid.Sheet) error {
	f, err := build(sheets)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func build(sheets []*xlgrid.Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets to write")
	}
	f := excelize.NewFile()
	const defaultSheet = "Sheet1"
	keepDefault := false
	for _, s := range sheets {
		if s.Name() == defaultSheet {
			keepDefault = true
		}
		if err := Export(f, s); err != nil {
			f.Close()
			return nil, err
		}
	}
	if !keepDefault {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("remove default sheet: %w", err)
		}
	}
	if idx, err := f.GetSheetIndex(sheets[0].Name()); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// Export writes s into the worksheet of f with the same name, creating the
// worksheet if needed. Existing content at the same cells is overwritten.
func Export(f *excelize.File, s *xlgrid.Sheet) error {
	name := s.Name()
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
	}
	w := &writer{file: f, name: name, styles: make(map[xlgrid.Style]int)}
	dim, ok := s.Dimensions()
	if ok {
		for c := range s.CellsIn(dim) {
			if err := w.writeCell(c); err != nil {
				return fmt.Errorf("export %s!%s: %w", name, c.Address(), err)
			}
		}
	}
	for _, m := range s.Merges() {
		if err := f.MergeCell(name, m.Start.String(), m.End.String()); err != nil {
			return fmt.Errorf("export merge %s: %w", m, err)
		}
	}
	if err := w.writeRows(s); err != nil {
		return err
	}
	return w.writeCols(s)
}

type writer struct {
	file   *excelize.File
	name   string
	styles map[xlgrid.Style]int
}

func (w *writer) writeCell(c *xlgrid.Cell) error {
	cell := c.Address()
	v := c.RawValue()
	if f, ok := c.Formula(); ok && !f.Result.IsEmpty() {
		v = f.Result
	}
	if err := w.writeValue(cell, v); err != nil {
		return err
	}
	if text := c.FormulaText(); text != "" {
		if err := w.file.SetCellFormula(w.name, cell, text); err != nil {
			return err
		}
	}

	st := c.Style()
	if v.Kind() == xlgrid.CellDate && (st == nil || st.NumFmt == "") {
		if st == nil {
			st = &xlgrid.Style{}
		}
		st.NumFmt = "m/d/yy h:mm"
	}
	if st != nil {
		id, err := w.style(*st)
		if err != nil {
			return err
		}
		if err := w.file.SetCellStyle(w.name, cell, cell, id); err != nil {
			return err
		}
	}

	if h, ok := c.Hyperlink(); ok {
		linkType := "External"
		if strings.Contains(h.Target, "!") && !strings.Contains(h.Target, "://") {
			linkType = "Location"
		}
		var opts excelize.HyperlinkOpts
		if h.Display != "" {
			opts.Display = &h.Display
		}
		if h.Tooltip != "" {
			opts.Tooltip = &h.Tooltip
		}
		if err := w.file.SetCellHyperLink(w.name, cell, h.Target, linkType, opts); err != nil {
			return err
		}
	}
	if cm, ok := c.Comment(); ok {
		if err := w.file.AddComment(w.name, excelize.Comment{Cell: cell, Author: cm.Author, Text: cm.Text}); err != nil {
			return err
		}
	}
	if v := c.Validation(); v != nil {
		if err := w.writeValidation(cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) writeValue(cell string, v xlgrid.Value) error {
	switch v.Kind() {
	case xlgrid.CellBlank:
		return nil
	case xlgrid.CellString:
		s, _ := v.Text()
		return w.file.SetCellStr(w.name, cell, s)
	case xlgrid.CellNumber:
		n, _ := v.Float()
		return w.file.SetCellFloat(w.name, cell, n, -1, 64)
	case xlgrid.CellBoolean:
		b, _ := v.Boolean()
		return w.file.SetCellBool(w.name, cell, b)
	case xlgrid.CellDate:
		t, _ := v.Time()
		return w.file.SetCellValue(w.name, cell, t)
	case xlgrid.CellError:
		code, _ := v.ErrorCode()
		return w.file.SetCellStr(w.name, cell, string(code))
	case xlgrid.CellRichText:
		runs := v.Runs()
		out := make([]excelize.RichTextRun, len(runs))
		for i, r := range runs {
			out[i] = excelize.RichTextRun{Text: r.Text}
			if r.Font != nil {
				out[i].Font = toExcelFont(*r.Font)
			}
		}
		return w.file.SetCellRichText(w.name, cell, out)
	default:
		return fmt.Errorf("unsupported value kind %s", v.Kind())
	}
}

func (w *writer) style(st xlgrid.Style) (int, error) {
	if id, ok := w.styles[st]; ok {
		return id, nil
	}
	id, err := w.file.NewStyle(toExcelStyle(st))
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	w.styles[st] = id
	return id, nil
}

func (w *writer) writeValidation(cell string, v *xlgrid.Validation) error {
	dv := excelize.NewDataValidation(v.AllowBlank)
	dv.SetSqref(cell)
	dv.Type = v.Type
	dv.Operator = v.Operator
	dv.Formula1 = v.Formula1
	dv.Formula2 = v.Formula2
	if v.Type == "list" && len(v.List) > 0 {
		if err := dv.SetDropList(v.List); err != nil {
			return err
		}
	}
	return w.file.AddDataValidation(w.name, dv)
}

func (w *writer) writeRows(s *xlgrid.Sheet) error {
	for row, rc := range s.RowConfigs() {
		r := row + 1
		if rc.Height > 0 {
			if err := w.file.SetRowHeight(w.name, r, rc.Height); err != nil {
				return fmt.Errorf("row %d height: %w", r, err)
			}
		}
		if rc.Hidden {
			if err := w.file.SetRowVisible(w.name, r, false); err != nil {
				return fmt.Errorf("row %d visibility: %w", r, err)
			}
		}
		if rc.OutlineLevel > 0 {
			if err := w.file.SetRowOutlineLevel(w.name, r, rc.OutlineLevel); err != nil {
				return fmt.Errorf("row %d outline: %w", r, err)
			}
		}
	}
	return nil
}

func (w *writer) writeCols(s *xlgrid.Sheet) error {
	for col, cc := range s.ColConfigs() {
		name := xlgrid.ColToName(col)
		if cc.Width > 0 {
			if err := w.file.SetColWidth(w.name, name, name, cc.Width); err != nil {
				return fmt.Errorf("column %s width: %w", name, err)
			}
		}
		if cc.Hidden {
			if err := w.file.SetColVisible(w.name, name, false); err != nil {
				return fmt.Errorf("column %s visibility: %w", name, err)
			}
		}
		if cc.OutlineLevel > 0 {
			if err := w.file.SetColOutlineLevel(w.name, name, cc.OutlineLevel); err != nil {
				return fmt.Errorf("column %s outline: %w", name, err)
			}
		}
	}
	return nil
}
