package physio

import "math"

// Default phase labels used by breath-by-breath exports.
const (
	PhaseRest = "rest"
	PhaseRun  = "run"
)

// Sample is one timestamped gas-exchange measurement.
// Gas volumes are mL/min, mass is kg, speed is m/s.
type Sample struct {
	SubjectID  string  `json:"subject_id"`
	Phase      string  `json:"phase"`
	TimeS      float64 `json:"time_s"`
	VO2MlMin   float64 `json:"VO2_ml_min"`
	VCO2MlMin  float64 `json:"VCO2_ml_min"`
	BodyMassKg float64 `json:"body_mass_kg"`
	SpeedMPS   float64 `json:"speed_m_per_s"`
}

// FilterPhase returns the samples whose phase label equals phase, in input order.
func FilterPhase(samples []Sample, phase string) []Sample {
	var out []Sample
	for _, s := range samples {
		if s.Phase == phase {
			out = append(out, s)
		}
	}
	return out
}

// Mean returns the arithmetic mean of values, skipping NaN entries.
// Returns NaN when no finite value remains.
func Mean(values []float64) float64 {
	var sum float64
	var count int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// Field extracts one numeric column from samples.
func Field(samples []Sample, get func(Sample) float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = get(s)
	}
	return out
}

// Column accessors for Field.
func VO2(s Sample) float64   { return s.VO2MlMin }
func VCO2(s Sample) float64  { return s.VCO2MlMin }
func Speed(s Sample) float64 { return s.SpeedMPS }
func Time(s Sample) float64  { return s.TimeS }
