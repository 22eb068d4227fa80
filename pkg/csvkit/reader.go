// Package csvkit implements the delimited-text interchange format for table
// data: an RFC4180-style reader that maps rows onto header names, and a
// writer that renders record values back to escaped delimited text.
package csvkit

import (
	"strings"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/errors"
)

// Row is one parsed data row, keyed by header name. Line is the 1-indexed
// line of the source text on which the row started, used in import error
// samples.
type Row struct {
	Line   int
	Values map[string]string
}

// Document is a parsed CSV file: the header row plus every data row.
type Document struct {
	Header []string
	Rows   []Row
}

// Parse reads delimited text. The first non-blank line is the header; blank
// lines are skipped; quoted fields may contain commas, newlines and doubled
// quotes per RFC4180. Rows shorter than the header get empty strings for the
// missing trailing columns; extra cells are dropped.
func Parse(data string) (*Document, error) {
	records, lines := splitRecords(data)
	if len(records) == 0 {
		return nil, errors.NewCSVParseError("file is empty")
	}

	header := records[0]
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, errors.NewCSVParseError("header row is empty")
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}

	doc := &Document{Header: header}
	for i, record := range records[1:] {
		values := make(map[string]string, len(header))
		for col, name := range header {
			if col < len(record) {
				values[name] = record[col]
			} else {
				values[name] = ""
			}
		}
		doc.Rows = append(doc.Rows, Row{Line: lines[i+1], Values: values})
	}
	return doc, nil
}

// splitRecords tokenizes the raw text into records of cells, tracking the
// 1-indexed starting line of each record. Blank records are skipped.
func splitRecords(data string) ([][]string, []int) {
	var (
		records   [][]string
		lines     []int
		cells     []string
		cell      strings.Builder
		inQuotes  bool
		line      = 1
		startLine = 1
		sawData   bool
	)

	flushCell := func() {
		cells = append(cells, cell.String())
		cell.Reset()
	}
	flushRecord := func() {
		flushCell()
		blank := len(cells) == 1 && strings.TrimSpace(cells[0]) == ""
		if !blank {
			records = append(records, cells)
			lines = append(lines, startLine)
		}
		cells = nil
		sawData = false
	}

	runes := []rune(data)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case inQuotes:
			if c == '"' {
				// A doubled quote inside a quoted cell is a literal quote.
				if i+1 < len(runes) && runes[i+1] == '"' {
					cell.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				if c == '\n' {
					line++
				}
				cell.WriteRune(c)
			}
		case c == '"':
			inQuotes = true
			sawData = true
		case c == ',':
			flushCell()
			sawData = true
		case c == '\r':
			// Swallowed; the following \n (if any) ends the record.
		case c == '\n':
			line++
			flushRecord()
			startLine = line
		default:
			cell.WriteRune(c)
			sawData = true
		}
	}
	if sawData || cell.Len() > 0 || len(cells) > 0 {
		flushRecord()
	}
	return records, lines
}
