package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
)

// csvBatchRows is the number of data rows grouped under one heading.
const csvBatchRows = 20

// CSVParser handles CSV files. The first record names the columns; data
// rows are grouped in batches, each under a "Rows a-b" heading, and every
// row becomes one "column: value" body span.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := newSpanBuilder()
	if len(records) == 0 {
		return b.document(filename), nil
	}

	headers := records[0]
	rows := records[1:]
	for i := 0; i < len(rows); i += csvBatchRows {
		end := min(i+csvBatchRows, len(rows))
		// 1-indexed, header is line 1.
		b.heading(fmt.Sprintf("Rows %d-%d", i+2, end+1), 2)
		for _, row := range rows[i:end] {
			b.body(csvRowText(headers, row))
		}
	}
	return b.document(filename), nil
}

func csvRowText(headers, row []string) string {
	cells := make([]string, 0, len(row))
	for j, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if j < len(headers) && strings.TrimSpace(headers[j]) != "" {
			cell = strings.TrimSpace(headers[j]) + ": " + cell
		}
		cells = append(cells, cell)
	}
	return strings.Join(cells, ", ")
}
