// Package report defines the analysis report and its JSON form.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout is ISO-8601 local time with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Report is the output of one collection analysis.
type Report struct {
	Metadata           Metadata            `json:"metadata"`
	ExtractedSections  []ExtractedSection  `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionExcerpt `json:"subsection_analysis"`
}

type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection is one top-ranked section. ImportanceRank is 1-based.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// SubsectionExcerpt is one top-ranked excerpt from a top section.
type SubsectionExcerpt struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// New returns an empty, well-formed report.
func New(documents []string, persona, job string, now time.Time) *Report {
	if documents == nil {
		documents = []string{}
	}
	return &Report{
		Metadata: Metadata{
			InputDocuments:      documents,
			Persona:             persona,
			JobToBeDone:         job,
			ProcessingTimestamp: now.Format(TimestampLayout),
		},
		ExtractedSections:  []ExtractedSection{},
		SubsectionAnalysis: []SubsectionExcerpt{},
	}
}

// normalized returns a shallow copy whose nil slices are empty, so they
// encode as [] rather than null.
func (r *Report) normalized() *Report {
	c := *r
	if c.Metadata.InputDocuments == nil {
		c.Metadata.InputDocuments = []string{}
	}
	if c.ExtractedSections == nil {
		c.ExtractedSections = []ExtractedSection{}
	}
	if c.SubsectionAnalysis == nil {
		c.SubsectionAnalysis = []SubsectionExcerpt{}
	}
	return &c
}

// Write encodes r as UTF-8 JSON with 4-space indentation. Non-ASCII and
// HTML-significant characters are written as-is.
func Write(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.normalized()); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Marshal returns the encoded report.
func Marshal(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes r to path, creating parent directories. The file is written
// to a temp file in the same directory and renamed into place.
func Save(path string, r *Report) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

// Load reads a report previously written by Save.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
