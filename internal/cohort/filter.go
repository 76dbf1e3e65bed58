package cohort

import (
	"fmt"
	"math"

	"github.com/haskel/runeconomy/internal/physio"
)

// PowerRange restricts a table to rows whose net metabolic power lies in
// [Min, Max]. A nil bound is open.
type PowerRange struct {
	Min *float64 `json:"min_power_wkg,omitempty"`
	Max *float64 `json:"max_power_wkg,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r PowerRange) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

// Validate rejects inverted or NaN bounds.
func (r PowerRange) Validate() error {
	if r.Min != nil && math.IsNaN(*r.Min) || r.Max != nil && math.IsNaN(*r.Max) {
		return fmt.Errorf("%w: power range bounds must be numbers", physio.ErrInvalidInput)
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("%w: min power %v exceeds max power %v", physio.ErrInvalidInput, *r.Min, *r.Max)
	}
	return nil
}

// Contains reports whether power lies in the range. NaN is never contained
// by a bounded range.
func (r PowerRange) Contains(power float64) bool {
	if r.IsZero() {
		return true
	}
	if math.IsNaN(power) {
		return false
	}
	if r.Min != nil && power < *r.Min {
		return false
	}
	if r.Max != nil && power > *r.Max {
		return false
	}
	return true
}

// Filter returns a new table with the rows inside r, preserving order.
// Skipped subjects are carried over unchanged.
func (t *Table) Filter(r PowerRange) *Table {
	out := &Table{
		Policy:        t.Policy,
		WindowSeconds: t.WindowSeconds,
		Rows:          make([]SubjectSummary, 0, len(t.Rows)),
		Skipped:       t.Skipped,
	}
	for _, row := range t.Rows {
		if r.Contains(row.NetPowerWkg) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// PowerBounds returns the smallest and largest finite net power in the table.
func (t *Table) PowerBounds() (lo, hi float64, ok bool) {
	for _, row := range t.Rows {
		p := row.NetPowerWkg
		if math.IsNaN(p) {
			continue
		}
		if !ok {
			lo, hi, ok = p, p, true
			continue
		}
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	return lo, hi, ok
}
