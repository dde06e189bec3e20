package xlgrid

// Style is the presentation of a cell or a row/column default. The engine
// passes it through unchanged; only equality and copying are interpreted.
// Style is comparable, so two styles are equal iff == holds.
type Style struct {
	Font      Font
	Fill      Fill
	Border    Border
	Alignment Alignment
	NumFmt    string // number format code, e.g. "0.00" or "yyyy-mm-dd"
	Locked    bool
}

// Font describes text rendering.
type Font struct {
	Name      string
	Size      float64
	Color     string // "RRGGBB"
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
}

func (f *Font) equal(o *Font) bool {
	if f == nil || o == nil {
		return f == o
	}
	return *f == *o
}

// Fill describes the cell background.
type Fill struct {
	Pattern string // "solid", "gray125", ...
	Color   string // foreground "RRGGBB"
}

// Border describes the four cell edges; each side holds a line style
// ("thin", "medium", ...) or "" for none.
type Border struct {
	Left, Right, Top, Bottom string
	Color                    string
}

// Alignment describes text placement.
type Alignment struct {
	Horizontal string
	Vertical   string
	WrapText   bool
	Indent     int
	Rotation   int
}

// IsZero reports whether the style carries no formatting at all.
func (s *Style) IsZero() bool {
	return s == nil || *s == Style{}
}

// Clone returns a copy of the style, or nil for a nil style.
func (s *Style) Clone() *Style {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func styleEqual(a, b *Style) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
