package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docrank/internal/doctree"
)

const (
	// UntitledSection names body text seen before any heading.
	UntitledSection = "Document Content"

	// MinSectionRunes is the content length a section must exceed to be
	// emitted at a heading or at end of document.
	MinSectionRunes = 100

	// FlushSectionRunes is the content length above which a section is
	// emitted at a page boundary.
	FlushSectionRunes = 2000
)

// pending is the section being accumulated.
type pending struct {
	title   string
	content strings.Builder
	page    int
}

func (p *pending) trimmed() string { return strings.TrimSpace(p.content.String()) }

// sectionizer walks spans in reading order and emits sections. A nil current
// means no section is open.
type sectionizer struct {
	doc      string
	current  *pending
	sections []doctree.Section
}

func (s *sectionizer) emitIfLonger(limit int) bool {
	if s.current == nil {
		return false
	}
	content := s.current.trimmed()
	if utf8.RuneCountInString(content) <= limit {
		return false
	}
	s.sections = append(s.sections, doctree.Section{
		Document: s.doc,
		Title:    s.current.title,
		Page:     s.current.page,
		Content:  content,
	})
	return true
}

func (s *sectionizer) add(span doctree.Span, page int) {
	text := strings.TrimSpace(span.Text)
	if text == "" {
		return
	}

	if IsHeading(span, text) {
		s.emitIfLonger(MinSectionRunes)
		s.current = &pending{title: text, page: page}
		return
	}

	if s.current == nil {
		s.current = &pending{title: UntitledSection, page: page}
		s.current.content.WriteString(text)
		return
	}
	s.current.content.WriteString(" ")
	s.current.content.WriteString(text)
}

func (s *sectionizer) endPage() {
	if s.emitIfLonger(FlushSectionRunes) {
		s.current = nil
	}
}

func (s *sectionizer) finish() []doctree.Section {
	s.emitIfLonger(MinSectionRunes)
	s.current = nil
	return s.sections
}

// Sections splits a document into titled sections in reading order.
func Sections(doc *doctree.Document) []doctree.Section {
	if doc == nil {
		return nil
	}
	s := &sectionizer{doc: doc.Name}
	for i, page := range doc.Pages {
		num := page.Number
		if num <= 0 {
			num = i + 1
		}
		for _, span := range page.Spans {
			s.add(span, num)
		}
		s.endPage()
	}
	return s.finish()
}
