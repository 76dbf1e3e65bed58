package cohort

import (
	"encoding/json"
	"math"
)

// SubjectSummary is the per-subject record exchanged with downstream consumers.
// Fields that depend on an empty phase window are NaN.
type SubjectSummary struct {
	SubjectID  string
	BodyMassKg float64

	RestVO2MlMin  float64
	RunVO2MlMin   float64
	RestVCO2MlMin float64
	RunVCO2MlMin  float64
	NetVO2MlMin   float64
	NetVCO2MlMin  float64

	// RunningEconomy is net VO2 per kg body mass, mL/kg/min. Lower is better.
	RunningEconomy float64

	RestPowerWkg float64
	RunPowerWkg  float64
	NetPowerWkg  float64

	SpeedMPS float64
}

// Columns is the fixed output column order. Values returns the numeric
// columns in the same order, after subject_id.
var Columns = []string{
	"subject_id",
	"body_mass_kg",
	"rest_VO2_ml_min",
	"run_VO2_ml_min",
	"rest_VCO2_ml_min",
	"run_VCO2_ml_min",
	"net_VO2_ml_min",
	"net_VCO2_ml_min",
	"running_economy_ml_kg_min",
	"rest_metabolic_power_Wkg",
	"run_metabolic_power_Wkg",
	"net_metabolic_power_Wkg",
	"speed_m_per_s",
}

// Values returns the numeric fields in Columns order (subject_id excluded).
func (s SubjectSummary) Values() []float64 {
	return []float64{
		s.BodyMassKg,
		s.RestVO2MlMin,
		s.RunVO2MlMin,
		s.RestVCO2MlMin,
		s.RunVCO2MlMin,
		s.NetVO2MlMin,
		s.NetVCO2MlMin,
		s.RunningEconomy,
		s.RestPowerWkg,
		s.RunPowerWkg,
		s.NetPowerWkg,
		s.SpeedMPS,
	}
}

// HasPowerAndSpeed reports whether the row can enter the power/speed regression.
func (s SubjectSummary) HasPowerAndSpeed() bool {
	return !math.IsNaN(s.NetPowerWkg) && !math.IsNaN(s.SpeedMPS)
}

type summaryJSON struct {
	SubjectID      string   `json:"subject_id"`
	BodyMassKg     *float64 `json:"body_mass_kg"`
	RestVO2MlMin   *float64 `json:"rest_VO2_ml_min"`
	RunVO2MlMin    *float64 `json:"run_VO2_ml_min"`
	RestVCO2MlMin  *float64 `json:"rest_VCO2_ml_min"`
	RunVCO2MlMin   *float64 `json:"run_VCO2_ml_min"`
	NetVO2MlMin    *float64 `json:"net_VO2_ml_min"`
	NetVCO2MlMin   *float64 `json:"net_VCO2_ml_min"`
	RunningEconomy *float64 `json:"running_economy_ml_kg_min"`
	RestPowerWkg   *float64 `json:"rest_metabolic_power_Wkg"`
	RunPowerWkg    *float64 `json:"run_metabolic_power_Wkg"`
	NetPowerWkg    *float64 `json:"net_metabolic_power_Wkg"`
	SpeedMPS       *float64 `json:"speed_m_per_s"`
}

// MarshalJSON encodes NaN fields as null.
func (s SubjectSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		SubjectID:      s.SubjectID,
		BodyMassKg:     Nullable(s.BodyMassKg),
		RestVO2MlMin:   Nullable(s.RestVO2MlMin),
		RunVO2MlMin:    Nullable(s.RunVO2MlMin),
		RestVCO2MlMin:  Nullable(s.RestVCO2MlMin),
		RunVCO2MlMin:   Nullable(s.RunVCO2MlMin),
		NetVO2MlMin:    Nullable(s.NetVO2MlMin),
		NetVCO2MlMin:   Nullable(s.NetVCO2MlMin),
		RunningEconomy: Nullable(s.RunningEconomy),
		RestPowerWkg:   Nullable(s.RestPowerWkg),
		RunPowerWkg:    Nullable(s.RunPowerWkg),
		NetPowerWkg:    Nullable(s.NetPowerWkg),
		SpeedMPS:       Nullable(s.SpeedMPS),
	})
}

// UnmarshalJSON decodes null fields as NaN.
func (s *SubjectSummary) UnmarshalJSON(data []byte) error {
	var w summaryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = SubjectSummary{
		SubjectID:      w.SubjectID,
		BodyMassKg:     FromNullable(w.BodyMassKg),
		RestVO2MlMin:   FromNullable(w.RestVO2MlMin),
		RunVO2MlMin:    FromNullable(w.RunVO2MlMin),
		RestVCO2MlMin:  FromNullable(w.RestVCO2MlMin),
		RunVCO2MlMin:   FromNullable(w.RunVCO2MlMin),
		NetVO2MlMin:    FromNullable(w.NetVO2MlMin),
		NetVCO2MlMin:   FromNullable(w.NetVCO2MlMin),
		RunningEconomy: FromNullable(w.RunningEconomy),
		RestPowerWkg:   FromNullable(w.RestPowerWkg),
		RunPowerWkg:    FromNullable(w.RunPowerWkg),
		NetPowerWkg:    FromNullable(w.NetPowerWkg),
		SpeedMPS:       FromNullable(w.SpeedMPS),
	}
	return nil
}

// Nullable maps NaN and infinities to nil for JSON and SQL output.
func Nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FromNullable maps nil back to NaN.
func FromNullable(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
