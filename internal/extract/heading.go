package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docrank/internal/doctree"
)

const (
	minHeadingRunes = 5
	maxHeadingRunes = 120
)

// noisePattern rejects page numbers, figure and table captions. Applied to
// lower-cased text.
var noisePattern = regexp.MustCompile(`^\d+$|^page\s+\d+|^figure\s+\d+|^table\s+\d+`)

// headingPatterns are anchored at the start of the span text. The all-caps
// and title-case patterns are about letter case and stay case-sensitive.
var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\d+\.?\s+[A-Z\x{4e00}-\x{9fff}]`),                 // "1. Introduction"
	regexp.MustCompile(`^[A-Z\x{4e00}-\x{9fff}][A-Z\x{4e00}-\x{9fff}\s]{2,}$`), // ALL CAPS / CJK
	regexp.MustCompile(`(?i)^(Chapter|Section|Part)\s+\d+`),
	regexp.MustCompile(`^\d+\.\d+\.?\s+`), // "1.1 Subsection"
	regexp.MustCompile(`(?i)^(Abstract|Introduction|Conclusion|References|Bibliography)`),
	regexp.MustCompile(`(?i)^(Executive Summary|Overview|Background|Methodology)`),
	regexp.MustCompile(`^[A-Z][a-z]+(\s+[A-Z][a-z]*){1,4}$`), // Title Case, 2-5 words
}

// HeadingScore returns the heading score of a span: 2 for a pattern match,
// plus 1 for bold and 1 for a font larger than 12pt. Hard-rejected text
// scores -1.
func HeadingScore(span doctree.Span, text string) int {
	n := utf8.RuneCountInString(text)
	if n < minHeadingRunes || n > maxHeadingRunes {
		return -1
	}
	if noisePattern.MatchString(strings.ToLower(text)) {
		return -1
	}

	score := 0
	for _, re := range headingPatterns {
		if re.MatchString(text) {
			score += 2
			break
		}
	}
	if span.Bold() {
		score++
	}
	if span.Size() > doctree.DefaultFontSize {
		score++
	}
	return score
}

// IsHeading reports whether text, rendered with the span's style, looks like
// a section heading.
func IsHeading(span doctree.Span, text string) bool {
	return HeadingScore(span, text) >= 2
}
