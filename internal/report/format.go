// Package report writes analysis output as JSON, CSV and Parquet.
package report

import (
	"fmt"
	"strings"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// IsValid checks if the format is known.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatCSV, FormatParquet:
		return true
	}
	return false
}

// String returns string representation.
func (f Format) String() string {
	return string(f)
}

// FileName is the file each format is written to inside an output directory.
func (f Format) FileName() string {
	switch f {
	case FormatJSON:
		return "report.json"
	case FormatCSV:
		return "summary.csv"
	case FormatParquet:
		return "summary.parquet"
	}
	return ""
}

// ParseFormats converts and validates format names, dropping duplicates.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool, len(names))
	var out []Format
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimSpace(n)))
		if !f.IsValid() {
			return nil, fmt.Errorf("unknown output format: %s (valid: json, csv, parquet)", n)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}
