package xlgrid

import "iter"

// RowConfig is per-row layout. A zero Height means the default height.
type RowConfig struct {
	Height       float64
	Hidden       bool
	OutlineLevel uint8
	Style        *Style
}

func (rc *RowConfig) clone() *RowConfig {
	c := *rc
	c.Style = rc.Style.Clone()
	return &c
}

func (rc *RowConfig) isZero() bool {
	return rc.Height == 0 && !rc.Hidden && rc.OutlineLevel == 0 && rc.Style == nil
}

// ColConfig is per-column layout. A zero Width means the default width.
type ColConfig struct {
	Width        float64
	Hidden       bool
	OutlineLevel uint8
	Style        *Style
}

func (cc *ColConfig) clone() *ColConfig {
	c := *cc
	c.Style = cc.Style.Clone()
	return &c
}

func (cc *ColConfig) isZero() bool {
	return cc.Width == 0 && !cc.Hidden && cc.OutlineLevel == 0 && cc.Style == nil
}

// RowConfig returns a copy of row's configuration and whether one is set.
func (s *Sheet) RowConfig(row int) (RowConfig, bool) {
	rc, ok := s.rows[row]
	if !ok {
		return RowConfig{}, false
	}
	return *rc.clone(), true
}

// SetRowConfig replaces row's configuration. A zero config removes it.
func (s *Sheet) SetRowConfig(row int, rc RowConfig) {
	s.updateRow(row, func(c *RowConfig) { *c = *rc.clone() })
}

// SetRowHeight sets row's height in points.
func (s *Sheet) SetRowHeight(row int, height float64) {
	s.updateRow(row, func(c *RowConfig) { c.Height = height })
}

// SetRowHidden hides or shows row.
func (s *Sheet) SetRowHidden(row int, hidden bool) {
	s.updateRow(row, func(c *RowConfig) { c.Hidden = hidden })
}

// SetRowOutlineLevel sets row's grouping level.
func (s *Sheet) SetRowOutlineLevel(row int, level uint8) {
	s.updateRow(row, func(c *RowConfig) { c.OutlineLevel = level })
}

// SetRowStyle sets row's default style; nil clears it.
func (s *Sheet) SetRowStyle(row int, st *Style) {
	s.updateRow(row, func(c *RowConfig) { c.Style = st.Clone() })
}

// IsRowHidden reports whether row is hidden, manually or by a filter.
func (s *Sheet) IsRowHidden(row int) bool {
	rc, ok := s.rows[row]
	return ok && rc.Hidden
}

// HiddenRows returns the hidden rows in ascending order.
func (s *Sheet) HiddenRows() []int {
	var out []int
	for _, r := range sortedKeys(s.rows) {
		if s.rows[r].Hidden {
			out = append(out, r)
		}
	}
	return out
}

// RowConfigs iterates over configured rows in ascending order.
func (s *Sheet) RowConfigs() iter.Seq2[int, RowConfig] {
	return func(yield func(int, RowConfig) bool) {
		for _, r := range sortedKeys(s.rows) {
			if !yield(r, *s.rows[r].clone()) {
				return
			}
		}
	}
}

func (s *Sheet) updateRow(row int, fn func(*RowConfig)) {
	rc, ok := s.rows[row]
	if !ok {
		rc = &RowConfig{}
	}
	fn(rc)
	if rc.isZero() {
		delete(s.rows, row)
		return
	}
	s.rows[row] = rc
}

// ColConfig returns a copy of col's configuration and whether one is set.
func (s *Sheet) ColConfig(col int) (ColConfig, bool) {
	cc, ok := s.cols[col]
	if !ok {
		return ColConfig{}, false
	}
	return *cc.clone(), true
}

// SetColConfig replaces col's configuration. A zero config removes it.
func (s *Sheet) SetColConfig(col int, cc ColConfig) {
	s.updateCol(col, func(c *ColConfig) { *c = *cc.clone() })
}

// SetColWidth sets col's width in characters.
func (s *Sheet) SetColWidth(col int, width float64) {
	s.updateCol(col, func(c *ColConfig) { c.Width = width })
}

// SetColHidden hides or shows col.
func (s *Sheet) SetColHidden(col int, hidden bool) {
	s.updateCol(col, func(c *ColConfig) { c.Hidden = hidden })
}

// SetColOutlineLevel sets col's grouping level.
func (s *Sheet) SetColOutlineLevel(col int, level uint8) {
	s.updateCol(col, func(c *ColConfig) { c.OutlineLevel = level })
}

// SetColStyle sets col's default style; nil clears it.
func (s *Sheet) SetColStyle(col int, st *Style) {
	s.updateCol(col, func(c *ColConfig) { c.Style = st.Clone() })
}

// IsColHidden reports whether col is hidden.
func (s *Sheet) IsColHidden(col int) bool {
	cc, ok := s.cols[col]
	return ok && cc.Hidden
}

// ColConfigs iterates over configured columns in ascending order.
func (s *Sheet) ColConfigs() iter.Seq2[int, ColConfig] {
	return func(yield func(int, ColConfig) bool) {
		for _, c := range sortedKeys(s.cols) {
			if !yield(c, *s.cols[c].clone()) {
				return
			}
		}
	}
}

func (s *Sheet) updateCol(col int, fn func(*ColConfig)) {
	cc, ok := s.cols[col]
	if !ok {
		cc = &ColConfig{}
	}
	fn(cc)
	if cc.isZero() {
		delete(s.cols, col)
		return
	}
	s.cols[col] = cc
}
