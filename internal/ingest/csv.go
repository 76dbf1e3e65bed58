// Package ingest reads breath-by-breath exports into samples.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/haskel/runeconomy/internal/physio"
)

// Column names of the breath-by-breath export.
const (
	ColSubjectID = "subject_id"
	ColPhase     = "phase"
	ColTime      = "time_s"
	ColVO2       = "VO2_ml_min"
	ColVCO2      = "VCO2_ml_min"
	ColBodyMass  = "body_mass_kg"
	ColSpeed     = "speed_m_per_s"
)

// RequiredColumns lists the columns every export must carry.
var RequiredColumns = []string{
	ColSubjectID,
	ColPhase,
	ColTime,
	ColVO2,
	ColVCO2,
	ColBodyMass,
	ColSpeed,
}

// MissingColumnsError reports every required column absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Unwrap classifies a missing column as invalid input.
func (e *MissingColumnsError) Unwrap() error {
	return physio.ErrInvalidInput
}

// ValidateHeader checks that header holds every required column and returns
// the index of each. Extra columns are ignored.
func ValidateHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return index, nil
}

// Read parses CSV with a header row. Empty numeric cells become NaN; infinite
// or unparsable cells fail with the offending line and column.
func Read(r io.Reader) ([]physio.Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", physio.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := ValidateHeader(header)
	if err != nil {
		return nil, err
	}
	cr.FieldsPerRecord = len(header)

	var samples []physio.Sample
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", physio.ErrInvalidInput, err)
		}
		line, _ := cr.FieldPos(0)

		s, err := parseRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", physio.ErrInvalidInput, line, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// ReadFile reads a CSV export from disk.
func ReadFile(path string) ([]physio.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	samples, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

func parseRecord(record []string, index map[string]int) (physio.Sample, error) {
	s := physio.Sample{
		SubjectID: strings.TrimSpace(record[index[ColSubjectID]]),
		Phase:     strings.TrimSpace(record[index[ColPhase]]),
	}

	fields := []struct {
		col string
		dst *float64
	}{
		{ColTime, &s.TimeS},
		{ColVO2, &s.VO2MlMin},
		{ColVCO2, &s.VCO2MlMin},
		{ColBodyMass, &s.BodyMassKg},
		{ColSpeed, &s.SpeedMPS},
	}
	for _, f := range fields {
		v, err := parseFloat(record[index[f.col]])
		if err != nil {
			return physio.Sample{}, fmt.Errorf("column %s: %v", f.col, err)
		}
		*f.dst = v
	}
	return s, nil
}

func parseFloat(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") || strings.EqualFold(cell, "na") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", cell)
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", cell)
	}
	return v, nil
}
