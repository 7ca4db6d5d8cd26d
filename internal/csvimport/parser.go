// Package csvimport parses bulk import files into ledger rows. The
// expected format is a header line "title,type,value,category" followed
// by one transaction per line. Values are plain decimals, e.g. "150.00".
package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"gofinances/internal/core"
)

var expectedHeader = []string{"title", "type", "value", "category"}

// Parse reads the whole file and returns every row, or the first error
// encountered. Errors carry the 1-based line number of the offending
// row so upload failures are actionable.
func Parse(r io.Reader) ([]core.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty import file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var rows []core.ImportRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func validateHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return fmt.Errorf("header has %d columns, want %d", len(header), len(expectedHeader))
	}
	for i, want := range expectedHeader {
		got := strings.ToLower(strings.TrimSpace(header[i]))
		if got != want {
			return fmt.Errorf("header column %d is %q, want %q", i+1, header[i], want)
		}
	}
	return nil
}

func parseRecord(record []string) (core.ImportRow, error) {
	if len(record) != 4 {
		return core.ImportRow{}, fmt.Errorf("row has %d columns, want 4", len(record))
	}

	title := strings.TrimSpace(record[0])
	typ := core.TransactionType(strings.ToLower(strings.TrimSpace(record[1])))
	category := strings.TrimSpace(record[3])

	cents, err := core.ParseDecimalToCents(record[2])
	if err != nil {
		return core.ImportRow{}, fmt.Errorf("value %q: %w", record[2], err)
	}

	row := core.ImportRow{
		Title:         title,
		Type:          typ,
		Value:         core.Money{Cents: cents},
		CategoryTitle: category,
	}
	if err := row.Validate(); err != nil {
		return core.ImportRow{}, err
	}
	return row, nil
}
