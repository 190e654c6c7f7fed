package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docrank/internal/doctree"
)

// Config controls subsection selection.
type Config struct {
	MaxSections int // Ranked sections to split.
	PerSection  int // Candidates kept per section.
	MinRunes    int // A candidate must be longer than this after trimming.
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		MaxSections: 5,
		PerSection:  2,
		MinRunes:    minCandidateRunes,
	}
}

const (
	minCandidateRunes = 150
	minSentenceRunes  = 50
	sentencesPerGroup = 4
	minWindowRunes    = 200
)

// Split carves section content into candidate excerpts. Paragraphs are tried
// first, then groups of sentences, then fixed windows; the first strategy
// yielding at least two candidates wins. A lone sentence group stays ahead of
// the windows appended after it.
func Split(content string) []string {
	if parts := splitByParagraphs(content); len(parts) >= 2 {
		return parts
	}
	parts := splitBySentenceGroups(content)
	if len(parts) >= 2 {
		return parts
	}
	return append(parts, splitByWindows(content)...)
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if runeLen(p) > minCandidateRunes {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentenceGroups joins runs of four sentences.
func splitBySentenceGroups(text string) []string {
	var sentences []string
	for _, s := range strings.Split(text, ".") {
		s = strings.TrimSpace(s)
		if runeLen(s) > minSentenceRunes {
			sentences = append(sentences, s)
		}
	}

	var result []string
	for i := 0; i < len(sentences); i += sentencesPerGroup {
		end := min(i+sentencesPerGroup, len(sentences))
		group := strings.Join(sentences[i:end], ". ")
		if runeLen(group) > minCandidateRunes {
			result = append(result, group)
		}
	}
	return result
}

// splitByWindows cuts the text into consecutive windows of a third of its
// length, never shorter than 200 runes.
func splitByWindows(text string) []string {
	runes := []rune(text)
	size := max(minWindowRunes, len(runes)/3)

	var result []string
	for i := 0; i < len(runes); i += size {
		end := min(i+size, len(runes))
		if end-i > minCandidateRunes {
			result = append(result, string(runes[i:end]))
		}
	}
	return result
}

// Subsections splits the leading ranked sections and keeps the first few
// candidates of each. Every subsection inherits its section's provenance.
func Subsections(sections []doctree.Section, cfg Config) []doctree.Subsection {
	if cfg.MaxSections <= 0 {
		cfg.MaxSections = 5
	}
	if cfg.PerSection <= 0 {
		cfg.PerSection = 2
	}
	if cfg.MinRunes <= 0 {
		cfg.MinRunes = minCandidateRunes
	}

	var subs []doctree.Subsection
	for _, sec := range sections[:min(cfg.MaxSections, len(sections))] {
		parts := Split(sec.Content)
		for _, part := range parts[:min(cfg.PerSection, len(parts))] {
			part = strings.TrimSpace(part)
			if runeLen(part) <= cfg.MinRunes {
				continue
			}
			subs = append(subs, doctree.Subsection{
				Document:    sec.Document,
				ParentTitle: sec.Title,
				Page:        sec.Page,
				Text:        part,
			})
		}
	}
	return subs
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
