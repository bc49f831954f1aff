// Package tabular turns decoded CSV text into ordered dynamic rows.
//
// The output is deliberately loose, a header-to-value map per row, because
// at parse time nothing is known about which column means what. Field mapping
// and validation downstream convert these into typed records as early as the
// pipeline allows.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyFile is returned when the input contains no rows at all.
var ErrEmptyFile = errors.New("file is empty")

// ErrNoDataRows is returned when only a header row survives blank-row filtering.
var ErrNoDataRows = errors.New("no data rows after header")

// Row is one parsed data row. Line is the 1-based physical line in the file
// (the header is line 1), kept stable for diagnostics even after blank rows
// are dropped.
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the cleaned value for a column header, tolerating case-only
// header mismatches.
func (r Row) Get(column string) string {
	if v, ok := r.Values[column]; ok {
		return v
	}
	for k, v := range r.Values {
		if strings.EqualFold(k, column) {
			return v
		}
	}
	return ""
}

// Parse reads decoded CSV text and returns the data rows plus the cleaned
// header. The header row is mandatory. Fully blank rows are dropped; ragged
// rows are tolerated (missing trailing cells become absent keys).
func Parse(text string) ([]Row, []string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var header []string
	var rows []Row
	line := 0

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse csv line %d: %w", line+1, err)
		}
		line++

		if header == nil {
			header = cleanHeader(rec)
			continue
		}

		if isBlank(rec) {
			continue
		}

		values := make(map[string]string, len(header))
		for i, h := range header {
			if h == "" || i >= len(rec) {
				continue
			}
			values[h] = CleanCell(rec[i])
		}
		rows = append(rows, Row{Line: line, Values: values})
	}

	if header == nil {
		return nil, nil, ErrEmptyFile
	}
	if len(rows) == 0 {
		return nil, nil, ErrNoDataRows
	}
	return rows, header, nil
}

// cleanHeader cleans each header cell and strips a leading BOM that survived
// decoding of a file that was double-BOMed.
func cleanHeader(rec []string) []string {
	out := make([]string, len(rec))
	for i, h := range rec {
		h = strings.TrimPrefix(h, "\uFEFF")
		out[i] = CleanCell(h)
	}
	return out
}

// isBlank reports whether every cell in the record is empty or whitespace.
func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// CleanCell removes common CSV artifacts from a cell value:
// trims whitespace, strips the Excel formula prefix (="value"), and drops
// stray surrounding quotes left by hand-edited files.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
