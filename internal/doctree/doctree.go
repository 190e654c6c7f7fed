package doctree

// Style flag bits carried on a Span.
const (
	FlagItalic = 1 << 1
	FlagBold   = 1 << 4
)

// DefaultFontSize is assumed when a source reports no usable size.
const DefaultFontSize = 12.0

// Document is a parsed document as an ordered list of pages.
type Document struct {
	Name  string // Basename of the source file
	Pages []Page
}

// Page holds the styled spans of one page in reading order.
type Page struct {
	Number int // 1-based
	Spans  []Span
}

// Span is a run of text sharing one font and size.
type Span struct {
	Text     string
	Page     int
	FontSize float64
	Flags    int
	BBox     [4]float64 // x0, y0, x1, y1
}

// Bold reports whether the bold flag is set.
func (s Span) Bold() bool { return s.Flags&FlagBold != 0 }

// Size returns the font size, falling back to DefaultFontSize.
func (s Span) Size() float64 {
	if s.FontSize <= 0 {
		return DefaultFontSize
	}
	return s.FontSize
}

// SpanCount returns the number of spans across all pages.
func (d *Document) SpanCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Spans)
	}
	return n
}

// Section is a titled run of body text within one document.
type Section struct {
	Document string
	Title    string
	Page     int    // Page on which the title appeared
	Content  string // Trimmed; never includes Title
}

// Subsection is an excerpt carved from a single Section.
type Subsection struct {
	Document    string
	ParentTitle string
	Page        int
	Text        string
}
