package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
)

// ErrUnsupportedFormat is returned for file extensions without a parser.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Parser converts raw document bytes into pages of styled spans.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// Options tunes parser construction.
type Options struct {
	// FallbackPdftotext shells out to pdftotext when the Go PDF reader
	// fails or finds no text.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".csv":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsPDF reports whether filename carries a .pdf suffix, ignoring case.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// ParseFile opens path and parses it with the parser for its extension.
// The file is closed before ParseFile returns.
func ParseFile(path string, opts Options) (*doctree.Document, error) {
	p, err := ForFile(path, opts)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return p.Parse(f, filepath.Base(path))
}

// Formats that carry structure but no typography get synthetic sizes: body
// text at the default size, headings larger by level.
const bodySize = doctree.DefaultFontSize

func headingSize(level int) float64 {
	switch level {
	case 1:
		return 20
	case 2:
		return 16
	case 3:
		return 14
	default:
		return 13
	}
}

// spanBuilder accumulates spans page by page. Pages that end up empty are
// dropped but never renumbered.
type spanBuilder struct {
	pages []doctree.Page
	cur   doctree.Page
}

func newSpanBuilder() *spanBuilder {
	return &spanBuilder{cur: doctree.Page{Number: 1}}
}

func (b *spanBuilder) add(text string, size float64, flags int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.cur.Spans = append(b.cur.Spans, doctree.Span{
		Text:     text,
		Page:     b.cur.Number,
		FontSize: size,
		Flags:    flags,
	})
}

func (b *spanBuilder) heading(text string, level int) {
	b.add(text, headingSize(level), doctree.FlagBold)
}

func (b *spanBuilder) body(text string) {
	b.add(text, bodySize, 0)
}

func (b *spanBuilder) nextPage() {
	if len(b.cur.Spans) > 0 {
		b.pages = append(b.pages, b.cur)
	}
	b.cur = doctree.Page{Number: b.cur.Number + 1}
}

func (b *spanBuilder) document(filename string) *doctree.Document {
	if len(b.cur.Spans) > 0 {
		b.pages = append(b.pages, b.cur)
		b.cur = doctree.Page{Number: b.cur.Number + 1}
	}
	return &doctree.Document{Name: filepath.Base(filename), Pages: b.pages}
}
