// Package companies loads the list of companies tracked by batch runs.
package companies

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column is the header naming the company column.
const Column = "Company"

// ErrNoColumn is returned when the CSV header lacks the Company column.
var ErrNoColumn = errors.New("company column not found")

// Load reads company names from the CSV file at path.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open company list: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads company names from CSV data with a Company header column.
// Names are trimmed, blanks dropped, and file order kept.
func Parse(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), Column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrNoColumn
	}

	names := []string{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read company list: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if name := strings.TrimSpace(rec[col]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
