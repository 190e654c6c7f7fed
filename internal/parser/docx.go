package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraphs styled as headings become bold
// heading spans; other paragraphs yield one span per run of equal style.
// DOCX has no fixed pagination, so everything lands on page 1.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docrank-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	b := newSpanBuilder()
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}

		if level := docxHeadingLevel(para); level > 0 {
			b.heading(docxParagraphText(para), level)
			continue
		}
		for _, run := range docxRuns(para) {
			b.add(run.text, run.size, run.flags)
		}
	}

	return b.document(filename), nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if rest, ok := strings.CutPrefix(style, "heading"); ok {
		if level, err := strconv.Atoi(rest); err == nil && level >= 1 && level <= 6 {
			return level
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		if run, ok := child.(*docx.Run); ok {
			buf.WriteString(docxRunText(run))
		}
	}
	return strings.TrimSpace(buf.String())
}

func docxRunText(run *docx.Run) string {
	var buf strings.Builder
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok {
			buf.WriteString(t.Text)
		}
	}
	return buf.String()
}

type styledRun struct {
	text  string
	size  float64
	flags int
}

// docxRuns merges adjacent runs that share size and style flags.
func docxRuns(para *docx.Paragraph) []styledRun {
	var out []styledRun
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		text := docxRunText(run)
		if text == "" {
			continue
		}
		size, flags := docxRunStyle(run)
		if n := len(out); n > 0 && out[n-1].size == size && out[n-1].flags == flags {
			out[n-1].text += text
			continue
		}
		out = append(out, styledRun{text: text, size: size, flags: flags})
	}
	return out
}

// docxRunStyle reads bold, italic and size from run properties. w:sz is in
// half-points.
func docxRunStyle(run *docx.Run) (float64, int) {
	size, flags := bodySize, 0
	rp := run.RunProperties
	if rp == nil {
		return size, flags
	}
	if rp.Bold != nil {
		flags |= doctree.FlagBold
	}
	if rp.Italic != nil {
		flags |= doctree.FlagItalic
	}
	if rp.Size != nil {
		if half, err := strconv.ParseFloat(rp.Size.Val, 64); err == nil && half > 0 {
			size = half / 2
		}
	}
	return size, flags
}
