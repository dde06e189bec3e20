package xlgrid

// Formula is the raw text of a formula (without the leading "=") and its
// cached result. Formulas are never evaluated by this package.
type Formula struct {
	Text   string
	Result Value // blank when no cached result is known
}

// Hyperlink is a clickable link attached to a cell.
type Hyperlink struct {
	Target  string // URL or in-workbook location like "Sheet2!A1"
	Display string
	Tooltip string
}

// String returns the display text for the hyperlink.
func (h Hyperlink) String() string {
	if h.Display != "" {
		return h.Display
	}
	return h.Target
}

// Comment is a note attached to a cell.
type Comment struct {
	Author string
	Text   string
}

// Validation is a data-validation rule attached to a cell. It is stored and
// copied, never enforced.
type Validation struct {
	Type       string   // "list", "whole", "decimal", "date", "textLength", "custom"
	Operator   string   // "between", "equal", ...
	Formula1   string
	Formula2   string
	List       []string // allowed values for Type "list"
	AllowBlank bool
}

func (v *Validation) clone() *Validation {
	if v == nil {
		return nil
	}
	c := *v
	c.List = append([]string(nil), v.List...)
	return &c
}

// MergeKind is the role of a cell within a merged range.
type MergeKind int

const (
	MergeNone MergeKind = iota
	MergeMaster
	MergeSlave
)

// String returns a human-readable name for the MergeKind.
func (k MergeKind) String() string {
	switch k {
	case MergeNone:
		return "None"
	case MergeMaster:
		return "Master"
	case MergeSlave:
		return "Slave"
	default:
		return "Unknown"
	}
}

// MergeRole describes a cell's place in a merge. Range is set for masters,
// Master for slaves.
type MergeRole struct {
	Kind   MergeKind
	Range  Range
	Master CellRef
}

// Cell is one coordinate of a sheet with its content and metadata. Cells are
// owned by their Sheet and only change through Sheet methods; the accessors
// here are read-only.
type Cell struct {
	ref        CellRef
	value      Value
	formula    *Formula
	style      *Style
	hyperlink  *Hyperlink
	comment    *Comment
	validation *Validation
	merge      MergeRole
}

// Ref returns the cell's coordinate.
func (c *Cell) Ref() CellRef { return c.ref }

// Row returns the cell's zero-based row.
func (c *Cell) Row() int { return c.ref.Row }

// Col returns the cell's zero-based column.
func (c *Cell) Col() int { return c.ref.Col }

// Address returns the cell's reference string, e.g. "B2".
func (c *Cell) Address() string { return c.ref.String() }

// Value returns the observable value: the formula's cached result when one
// is present, otherwise the stored value.
func (c *Cell) Value() Value {
	if c.formula != nil && !c.formula.Result.IsEmpty() {
		return c.formula.Result
	}
	return c.value
}

// RawValue returns the stored value, ignoring any formula result.
func (c *Cell) RawValue() Value { return c.value }

// Type returns the kind of the observable value.
func (c *Cell) Type() CellType { return c.Value().Kind() }

// Formula returns the cell's formula, if any.
func (c *Cell) Formula() (Formula, bool) {
	if c.formula == nil {
		return Formula{}, false
	}
	return *c.formula, true
}

// FormulaText returns the formula text or "".
func (c *Cell) FormulaText() string {
	if c.formula == nil {
		return ""
	}
	return c.formula.Text
}

// IsFormulaCell returns true if this cell contains a formula.
func (c *Cell) IsFormulaCell() bool { return c.formula != nil }

// Style returns a copy of the cell style, or nil.
func (c *Cell) Style() *Style { return c.style.Clone() }

// Hyperlink returns the cell's hyperlink, if any.
func (c *Cell) Hyperlink() (Hyperlink, bool) {
	if c.hyperlink == nil {
		return Hyperlink{}, false
	}
	return *c.hyperlink, true
}

// Comment returns the cell's comment, if any.
func (c *Cell) Comment() (Comment, bool) {
	if c.comment == nil {
		return Comment{}, false
	}
	return *c.comment, true
}

// Validation returns a copy of the cell's validation rule, or nil.
func (c *Cell) Validation() *Validation { return c.validation.clone() }

// MergeRole returns the cell's merge role.
func (c *Cell) MergeRole() MergeRole { return c.merge }

// IsEmpty reports whether the cell carries no content, style or metadata.
func (c *Cell) IsEmpty() bool {
	return c.value.IsEmpty() && c.formula == nil && c.style == nil &&
		c.hyperlink == nil && c.comment == nil && c.validation == nil &&
		c.merge.Kind == MergeNone
}

// hasContent reports whether the cell has anything worth copying.
func (c *Cell) hasContent() bool {
	return !c.value.IsEmpty() || c.formula != nil || c.style != nil ||
		c.hyperlink != nil || c.comment != nil || c.validation != nil
}

// clone returns a deep copy of the cell at the given coordinate.
func (c *Cell) clone(ref CellRef) *Cell {
	n := &Cell{
		ref:        ref,
		value:      c.value,
		style:      c.style.Clone(),
		validation: c.validation.clone(),
		merge:      c.merge,
	}
	if c.formula != nil {
		f := *c.formula
		n.formula = &f
	}
	if c.hyperlink != nil {
		h := *c.hyperlink
		n.hyperlink = &h
	}
	if c.comment != nil {
		cm := *c.comment
		n.comment = &cm
	}
	return n
}

// cellState is the undoable part of a cell: value, formula and style.
// meta is only captured for deletions so that undo brings back the
// cell's hyperlink, comment and validation too.
type cellState struct {
	exists  bool
	value   Value
	formula *Formula
	style   *Style
	meta    *cellMeta
}

type cellMeta struct {
	hyperlink  *Hyperlink
	comment    *Comment
	validation *Validation
}

func (c *Cell) state() cellState {
	if c == nil {
		return cellState{}
	}
	st := cellState{exists: true, value: c.value, style: c.style.Clone()}
	if c.formula != nil {
		f := *c.formula
		st.formula = &f
	}
	return st
}

func (c *Cell) fullState() cellState {
	st := c.state()
	if c != nil {
		cp := c.clone(c.ref)
		st.meta = &cellMeta{hyperlink: cp.hyperlink, comment: cp.comment, validation: cp.validation}
	}
	return st
}

// effective returns the observable value of the state.
func (st cellState) effective() Value {
	if st.formula != nil && !st.formula.Result.IsEmpty() {
		return st.formula.Result
	}
	return st.value
}
