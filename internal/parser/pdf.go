package parser

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It reads glyph runs with the Go library,
// then falls back to pdftotext if enabled and nothing was extracted.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// ledongthuc/pdf requires a ReaderAt+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docrank-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := extractPDFSpans(tmpPath)
	if (err != nil || countSpans(pages) == 0) && p.FallbackPdftotext {
		if text, ferr := extractPdftotext(tmpPath); ferr == nil {
			pages, err = textPages(text), nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf spans: %w", err)
	}

	return &doctree.Document{Name: filepath.Base(filename), Pages: pages}, nil
}

// extractPDFSpans reads every page's glyphs and groups them into spans.
// Panics raised by the PDF library are turned into errors.
func extractPDFSpans(path string) (pages []doctree.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf decode: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		glyphs, perr := pageGlyphs(page)
		if perr != nil {
			continue // undecodable content stream
		}
		if spans := groupSpans(glyphs, i); len(spans) > 0 {
			pages = append(pages, doctree.Page{Number: i, Spans: spans})
		}
	}
	return pages, nil
}

func pageGlyphs(page pdflib.Page) (glyphs []pdflib.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page content: %v", r)
		}
	}()
	return page.Content().Text, nil
}

// lineTolerance is the baseline distance, in points, within which glyphs
// share a line.
const lineTolerance = 2.0

type glyphLine struct {
	y      float64
	glyphs []pdflib.Text
}

// groupSpans orders glyphs top-to-bottom then left-to-right and merges
// neighbours that share font and size into spans.
func groupSpans(glyphs []pdflib.Text, pageNum int) []doctree.Span {
	var lines []*glyphLine
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		var line *glyphLine
		for j := len(lines) - 1; j >= 0; j-- {
			if math.Abs(lines[j].y-g.Y) <= lineTolerance {
				line = lines[j]
				break
			}
		}
		if line == nil {
			line = &glyphLine{y: g.Y}
			lines = append(lines, line)
		}
		line.glyphs = append(line.glyphs, g)
	}

	// PDF user space grows upward, so the top line has the largest y.
	sort.SliceStable(lines, func(a, b int) bool { return lines[a].y > lines[b].y })

	var spans []doctree.Span
	for _, line := range lines {
		sort.SliceStable(line.glyphs, func(a, b int) bool { return line.glyphs[a].X < line.glyphs[b].X })
		spans = append(spans, lineSpans(line.glyphs, pageNum)...)
	}
	return spans
}

func lineSpans(glyphs []pdflib.Text, pageNum int) []doctree.Span {
	var spans []doctree.Span
	var buf strings.Builder
	var cur pdflib.Text
	var x0, x1 float64

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text != "" {
			spans = append(spans, doctree.Span{
				Text:     text,
				Page:     pageNum,
				FontSize: cur.FontSize,
				Flags:    fontFlags(cur.Font),
				BBox:     [4]float64{x0, cur.Y, x1, cur.Y + cur.FontSize},
			})
		}
		buf.Reset()
	}

	for i, g := range glyphs {
		if i == 0 || g.Font != cur.Font || g.FontSize != cur.FontSize {
			if i > 0 {
				flush()
			}
			cur = g
			x0 = g.X
		} else if gap := g.X - x1; gap > 0.25*g.FontSize && !strings.HasSuffix(buf.String(), " ") {
			buf.WriteByte(' ')
		}
		buf.WriteString(g.S)
		x1 = g.X + g.W
	}
	if len(glyphs) > 0 {
		flush()
	}
	return spans
}

// fontFlags derives style bits from a font's base name, such as
// "ABCDEF+Helvetica-BoldOblique".
func fontFlags(font string) int {
	name := strings.ToLower(font)
	flags := 0
	for _, marker := range []string{"bold", "black", "heavy", "demi"} {
		if strings.Contains(name, marker) {
			flags |= doctree.FlagBold
			break
		}
	}
	if strings.Contains(name, "italic") || strings.Contains(name, "oblique") {
		flags |= doctree.FlagItalic
	}
	return flags
}

func countSpans(pages []doctree.Page) int {
	n := 0
	for _, p := range pages {
		n += len(p.Spans)
	}
	return n
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// textPages turns pdftotext output into unstyled spans, one per line, with
// pages separated by form feeds.
func textPages(text string) []doctree.Page {
	b := newSpanBuilder()
	for i, page := range strings.Split(text, "\f") {
		if i > 0 {
			b.nextPage()
		}
		for _, line := range strings.Split(page, "\n") {
			b.body(line)
		}
	}
	return b.document("").Pages
}
