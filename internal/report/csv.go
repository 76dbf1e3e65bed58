package report

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/haskel/runeconomy/internal/cohort"
)

// WriteCSV writes the table with a header row in cohort.Columns order.
// NaN cells are left empty.
func WriteCSV(w io.Writer, table *cohort.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cohort.Columns); err != nil {
		return err
	}

	if table != nil {
		for _, row := range table.Rows {
			record := make([]string, 0, len(cohort.Columns))
			record = append(record, row.SubjectID)
			for _, v := range row.Values() {
				record = append(record, formatFloat(v))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
