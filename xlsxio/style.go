package xlsxio

import (
	"slices"
	"strings"

	"github.com/javajack/xlgrid"
	"github.com/xuri/excelize/v2"
)

// Border line styles in excelize index order.
var borderStyles = []string{
	"", "thin", "medium", "dashed", "dotted", "thick", "double", "hair",
	"mediumDashed", "dashDot", "mediumDashDot", "dashDotDot",
	"mediumDashDotDot", "slantDashDot",
}

// Fill patterns in excelize index order.
var fillPatterns = []string{
	"", "solid", "mediumGray", "darkGray", "lightGray", "darkHorizontal",
	"darkVertical", "darkDown", "darkUp", "darkGrid", "darkTrellis",
	"lightHorizontal", "lightVertical", "lightDown", "lightUp", "lightGrid",
	"lightTrellis", "gray125", "gray0625",
}

// builtInNumFmts maps the common built-in number format IDs to their codes.
var builtInNumFmts = map[int]string{
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	49: "@",
}

func indexOf(list []string, name string) int {
	return max(slices.Index(list, name), 0)
}

func nameAt(list []string, i int) string {
	if i < 0 || i >= len(list) {
		return ""
	}
	return list[i]
}

// fromExcelStyle converts an excelize style into an engine style.
func fromExcelStyle(es *excelize.Style) *xlgrid.Style {
	if es == nil {
		return nil
	}
	st := &xlgrid.Style{}
	if es.Font != nil {
		st.Font = fromExcelFont(es.Font)
	}
	if len(es.Fill.Color) > 0 && es.Fill.Type == "pattern" {
		st.Fill = xlgrid.Fill{Pattern: nameAt(fillPatterns, es.Fill.Pattern), Color: trimColor(es.Fill.Color[0])}
	}
	for _, b := range es.Border {
		line := nameAt(borderStyles, b.Style)
		switch b.Type {
		case "left":
			st.Border.Left = line
		case "right":
			st.Border.Right = line
		case "top":
			st.Border.Top = line
		case "bottom":
			st.Border.Bottom = line
		}
		if b.Color != "" {
			st.Border.Color = trimColor(b.Color)
		}
	}
	if a := es.Alignment; a != nil {
		st.Alignment = xlgrid.Alignment{
			Horizontal: a.Horizontal,
			Vertical:   a.Vertical,
			WrapText:   a.WrapText,
			Indent:     a.Indent,
			Rotation:   a.TextRotation,
		}
	}
	if es.CustomNumFmt != nil {
		st.NumFmt = *es.CustomNumFmt
	} else if code, ok := builtInNumFmts[es.NumFmt]; ok {
		st.NumFmt = code
	}
	if es.Protection != nil {
		st.Locked = es.Protection.Locked
	}
	if st.IsZero() {
		return nil
	}
	return st
}

func fromExcelFont(f *excelize.Font) xlgrid.Font {
	return xlgrid.Font{
		Name:      f.Family,
		Size:      f.Size,
		Color:     trimColor(f.Color),
		Bold:      f.Bold,
		Italic:    f.Italic,
		Underline: f.Underline != "" && f.Underline != "none",
		Strike:    f.Strike,
	}
}

// toExcelStyle converts an engine style into an excelize style.
func toExcelStyle(st xlgrid.Style) *excelize.Style {
	es := &excelize.Style{}
	if st.Font != (xlgrid.Font{}) {
		es.Font = toExcelFont(st.Font)
	}
	if st.Fill.Pattern != "" || st.Fill.Color != "" {
		pattern := indexOf(fillPatterns, st.Fill.Pattern)
		if pattern == 0 {
			pattern = 1
		}
		es.Fill = excelize.Fill{Type: "pattern", Pattern: pattern}
		if st.Fill.Color != "" {
			es.Fill.Color = []string{st.Fill.Color}
		}
	}
	for side, line := range map[string]string{
		"left":   st.Border.Left,
		"right":  st.Border.Right,
		"top":    st.Border.Top,
		"bottom": st.Border.Bottom,
	} {
		if line == "" {
			continue
		}
		es.Border = append(es.Border, excelize.Border{Type: side, Color: st.Border.Color, Style: indexOf(borderStyles, line)})
	}
	slices.SortFunc(es.Border, func(a, b excelize.Border) int { return strings.Compare(a.Type, b.Type) })
	if st.Alignment != (xlgrid.Alignment{}) {
		es.Alignment = &excelize.Alignment{
			Horizontal:   st.Alignment.Horizontal,
			Vertical:     st.Alignment.Vertical,
			WrapText:     st.Alignment.WrapText,
			Indent:       st.Alignment.Indent,
			TextRotation: st.Alignment.Rotation,
		}
	}
	if st.NumFmt != "" {
		id := -1
		for k, code := range builtInNumFmts {
			if code == st.NumFmt {
				id = k
				break
			}
		}
		if id >= 0 {
			es.NumFmt = id
		} else {
			code := st.NumFmt
			es.CustomNumFmt = &code
		}
	}
	if st.Locked {
		es.Protection = &excelize.Protection{Locked: true}
	}
	return es
}

func toExcelFont(f xlgrid.Font) *excelize.Font {
	ef := &excelize.Font{
		Family: f.Name,
		Size:   f.Size,
		Color:  f.Color,
		Bold:   f.Bold,
		Italic: f.Italic,
		Strike: f.Strike,
	}
	if f.Underline {
		ef.Underline = "single"
	}
	return ef
}

// trimColor normalizes "FFRRGGBB" and "#RRGGBB" to "RRGGBB".
func trimColor(c string) string {
	c = strings.TrimPrefix(strings.ToUpper(c), "#")
	if len(c) == 8 {
		return c[2:]
	}
	return c
}

// isDateFormat reports whether a number format renders a date or time.
func isDateFormat(id int, custom *string) bool {
	if (id >= 14 && id <= 22) || (id >= 45 && id <= 47) {
		return true
	}
	if custom == nil {
		return false
	}
	code := strings.ToLower(*custom)
	// Drop quoted literals and bracketed colors before looking for tokens.
	var b strings.Builder
	quoted := false
	for _, r := range code {
		switch {
		case r == '"':
			quoted = !quoted
		case !quoted:
			b.WriteRune(r)
		}
	}
	code = b.String()
	for _, tok := range []string{"yy", "dd", "mmm", "h:mm", "mm:ss"} {
		if strings.Contains(code, tok) {
			return true
		}
	}
	return false
}
