package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/doctree"
)

// csvBatchSize is the number of rows shown per page.
const csvBatchSize = 20

// CSVParser turns a CSV file into data table pages of csvBatchSize rows.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	tree := &doctree.DocTree{Title: TitleFromFilename(filename)}
	if len(records) == 0 {
		return tree, nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))

		rows := make([][]string, 0, end-i)
		for _, row := range dataRows[i:end] {
			rows = append(rows, fitRow(row, len(headers)))
		}

		tree.Children = append(tree.Children, &doctree.DocNode{
			Title: fmt.Sprintf("Rows %d-%d", i+1, end),
			Text:  fmt.Sprintf("Rows %d to %d of %d in `%s`.", i+1, end, len(dataRows), filename),
			Panel: &constellation.Star{
				Kind:      constellation.KindDataframe,
				DataFrame: &constellation.Table{Columns: headers, Rows: rows},
			},
			Page: i + 2, // 1-indexed line, skip header
		})
	}

	return tree, nil
}

// fitRow pads or trims a record to the header width.
func fitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
