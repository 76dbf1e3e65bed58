package narrative

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/physio"
)

// AssociationThreshold is the |r| above which a correlation is called positive or negative.
const AssociationThreshold = 0.3

// Association classifies the power/speed correlation.
type Association string

const (
	AssociationPositive         Association = "positive"
	AssociationNegative         Association = "negative"
	AssociationWeak             Association = "weak"
	AssociationInsufficientData Association = "insufficient_data"
)

// Classify maps a correlation coefficient to an Association. NaN (a
// zero-variance series) is weak.
func Classify(r float64) Association {
	switch {
	case r > AssociationThreshold:
		return AssociationPositive
	case r < -AssociationThreshold:
		return AssociationNegative
	default:
		return AssociationWeak
	}
}

// Extreme names a subject at one end of the running economy range.
type Extreme struct {
	SubjectID      string
	RunningEconomy float64
}

type extremeJSON struct {
	SubjectID      string   `json:"subject_id"`
	RunningEconomy *float64 `json:"running_economy_ml_kg_min"`
}

// MarshalJSON encodes a non-finite economy as null.
func (e Extreme) MarshalJSON() ([]byte, error) {
	return json.Marshal(extremeJSON{
		SubjectID:      e.SubjectID,
		RunningEconomy: cohort.Nullable(e.RunningEconomy),
	})
}

// UnmarshalJSON decodes a null economy as NaN.
func (e *Extreme) UnmarshalJSON(data []byte) error {
	var w extremeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Extreme{
		SubjectID:      w.SubjectID,
		RunningEconomy: cohort.FromNullable(w.RunningEconomy),
	}
	return nil
}

// Facts is the qualitative description of a cohort table.
type Facts struct {
	SubjectCount int

	MeanNetPowerWkg    float64
	MeanSpeedMPS       float64
	MeanRunningEconomy float64

	// Correlation is Pearson r between net power and speed; NaN when it
	// could not be computed.
	Correlation float64
	Association Association

	MostEconomical  *Extreme
	LeastEconomical *Extreme
}

type factsJSON struct {
	SubjectCount       int         `json:"subject_count"`
	MeanNetPowerWkg    *float64    `json:"mean_net_power_Wkg"`
	MeanSpeedMPS       *float64    `json:"mean_speed_m_per_s"`
	MeanRunningEconomy *float64    `json:"mean_running_economy_ml_kg_min"`
	Correlation        *float64    `json:"correlation"`
	Association        Association `json:"association"`
	MostEconomical     *Extreme    `json:"most_economical,omitempty"`
	LeastEconomical    *Extreme    `json:"least_economical,omitempty"`
}

// MarshalJSON encodes NaN fields as null.
func (f Facts) MarshalJSON() ([]byte, error) {
	return json.Marshal(factsJSON{
		SubjectCount:       f.SubjectCount,
		MeanNetPowerWkg:    cohort.Nullable(f.MeanNetPowerWkg),
		MeanSpeedMPS:       cohort.Nullable(f.MeanSpeedMPS),
		MeanRunningEconomy: cohort.Nullable(f.MeanRunningEconomy),
		Correlation:        cohort.Nullable(f.Correlation),
		Association:        f.Association,
		MostEconomical:     f.MostEconomical,
		LeastEconomical:    f.LeastEconomical,
	})
}

// UnmarshalJSON decodes null fields as NaN.
func (f *Facts) UnmarshalJSON(data []byte) error {
	var w factsJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*f = Facts{
		SubjectCount:       w.SubjectCount,
		MeanNetPowerWkg:    cohort.FromNullable(w.MeanNetPowerWkg),
		MeanSpeedMPS:       cohort.FromNullable(w.MeanSpeedMPS),
		MeanRunningEconomy: cohort.FromNullable(w.MeanRunningEconomy),
		Correlation:        cohort.FromNullable(w.Correlation),
		Association:        w.Association,
		MostEconomical:     w.MostEconomical,
		LeastEconomical:    w.LeastEconomical,
	}
	return nil
}

// Describe derives Facts from a cohort table. Means exclude NaN rows.
// Correlation needs at least two rows with both power and speed; the
// economy extremes use rows with a defined economy, first seen wins ties.
func Describe(table *cohort.Table) Facts {
	var rows []cohort.SubjectSummary
	if table != nil {
		rows = table.Rows
	}

	facts := Facts{
		SubjectCount:       len(rows),
		MeanNetPowerWkg:    physio.Mean(column(rows, func(s cohort.SubjectSummary) float64 { return s.NetPowerWkg })),
		MeanSpeedMPS:       physio.Mean(column(rows, func(s cohort.SubjectSummary) float64 { return s.SpeedMPS })),
		MeanRunningEconomy: physio.Mean(column(rows, func(s cohort.SubjectSummary) float64 { return s.RunningEconomy })),
		Correlation:        math.NaN(),
		Association:        AssociationInsufficientData,
	}

	var power, speed []float64
	for _, r := range rows {
		if r.HasPowerAndSpeed() {
			power = append(power, r.NetPowerWkg)
			speed = append(speed, r.SpeedMPS)
		}
	}
	if len(power) >= 2 {
		facts.Correlation = stat.Correlation(power, speed, nil)
		facts.Association = Classify(facts.Correlation)
	}

	for _, r := range rows {
		if math.IsNaN(r.RunningEconomy) {
			continue
		}
		if facts.MostEconomical == nil || r.RunningEconomy < facts.MostEconomical.RunningEconomy {
			facts.MostEconomical = &Extreme{SubjectID: r.SubjectID, RunningEconomy: r.RunningEconomy}
		}
		if facts.LeastEconomical == nil || r.RunningEconomy > facts.LeastEconomical.RunningEconomy {
			facts.LeastEconomical = &Extreme{SubjectID: r.SubjectID, RunningEconomy: r.RunningEconomy}
		}
	}

	return facts
}

func column(rows []cohort.SubjectSummary, get func(cohort.SubjectSummary) float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = get(r)
	}
	return out
}
