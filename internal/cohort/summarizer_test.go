package cohort

import (
	"errors"
	"math"
	"testing"

	"github.com/haskel/runeconomy/internal/physio"
	"github.com/haskel/runeconomy/internal/physio/energy"
)

// subjectSamples builds a 300 s rest phase and a 570 s run phase. Samples
// outside the trailing 120 s of each phase carry off-window values so tests
// can tell whether the window was applied.
func subjectSamples(id string, mass, restVO2, restVCO2, runVO2, runVCO2, speed float64) []physio.Sample {
	var out []physio.Sample
	for t := 0.0; t <= 300; t += 30 {
		vo2, vco2 := restVO2, restVCO2
		if t < 180 {
			vo2, vco2 = 999, 888
		}
		out = append(out, physio.Sample{
			SubjectID: id, Phase: physio.PhaseRest, TimeS: t,
			VO2MlMin: vo2, VCO2MlMin: vco2, BodyMassKg: mass,
		})
	}
	for t := 330.0; t <= 900; t += 30 {
		vo2, vco2, v := runVO2, runVCO2, speed
		if t < 780 {
			vo2, vco2, v = 1500, 1400, 2.0
		}
		out = append(out, physio.Sample{
			SubjectID: id, Phase: physio.PhaseRun, TimeS: t,
			VO2MlMin: vo2, VCO2MlMin: vco2, BodyMassKg: mass, SpeedMPS: v,
		})
	}
	return out
}

func netSummarizer(t *testing.T) *Summarizer {
	t.Helper()
	s, err := NewSummarizer(energy.NewNetModel(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestSummarize_Scenario(t *testing.T) {
	samples := subjectSamples("S1", 70, 300, 250, 3000, 2800, 3.5)

	got, err := Summarize(samples, physio.PhaseRest, physio.PhaseRun, 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name  string
		got   float64
		want  float64
		delta float64
	}{
		{"rest VO2", got.RestVO2MlMin, 300, 1e-9},
		{"run VO2", got.RunVO2MlMin, 3000, 1e-9},
		{"net VO2", got.NetVO2MlMin, 2700, 1e-9},
		{"net VCO2", got.NetVCO2MlMin, 2550, 1e-9},
		{"net power", got.NetPowerWkg, 13.396785714, 1e-6},
		{"running economy", got.RunningEconomy, 38.571428571, 1e-6},
		{"speed", got.SpeedMPS, 3.5, 1e-12},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > c.delta {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}

	if got.SubjectID != "S1" || got.BodyMassKg != 70 {
		t.Errorf("unexpected identity fields: %s %v", got.SubjectID, got.BodyMassKg)
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	s := netSummarizer(t)
	samples := subjectSamples("S1", 68.4, 310.5, 262.1, 2875.3, 2630.9, 3.33)

	first, err := s.Summarize(samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.Summarize(samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b := first.Values(), second.Values()
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			t.Errorf("column %s differs: %v vs %v", Columns[i+1], a[i], b[i])
		}
	}
}

func TestSummarize_EmptyPartitionIsNaN(t *testing.T) {
	s := netSummarizer(t)
	var runOnly []physio.Sample
	for _, smp := range subjectSamples("S2", 60, 300, 250, 3000, 2800, 3.5) {
		if smp.Phase == physio.PhaseRun {
			runOnly = append(runOnly, smp)
		}
	}

	got, err := s.Summarize(runOnly)
	if err != nil {
		t.Fatalf("empty rest partition must not error: %v", err)
	}

	for name, v := range map[string]float64{
		"rest VO2":        got.RestVO2MlMin,
		"net VO2":         got.NetVO2MlMin,
		"net power":       got.NetPowerWkg,
		"running economy": got.RunningEconomy,
	} {
		if !math.IsNaN(v) {
			t.Errorf("%s: expected NaN, got %v", name, v)
		}
	}
	if got.RunVO2MlMin != 3000 || got.SpeedMPS != 3.5 {
		t.Errorf("run-only fields should be defined, got VO2 %v speed %v", got.RunVO2MlMin, got.SpeedMPS)
	}
}

func TestSummarize_CustomLabels(t *testing.T) {
	samples := subjectSamples("S3", 70, 300, 250, 3000, 2800, 3.5)
	for i := range samples {
		if samples[i].Phase == physio.PhaseRest {
			samples[i].Phase = "baseline"
		} else {
			samples[i].Phase = "treadmill"
		}
	}

	got, err := Summarize(samples, "baseline", "treadmill", 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.NetVO2MlMin != 2700 {
		t.Errorf("expected net VO2 2700, got %v", got.NetVO2MlMin)
	}
}

func TestSummarize_InvalidInput(t *testing.T) {
	samples := subjectSamples("S4", 0, 300, 250, 3000, 2800, 3.5)

	if _, err := Summarize(samples, "", "", 120); !errors.Is(err, physio.ErrInvalidInput) {
		t.Errorf("zero mass: expected ErrInvalidInput, got %v", err)
	}
	if _, err := Summarize(subjectSamples("S5", 70, 1, 1, 2, 2, 3), "", "", 0); !errors.Is(err, physio.ErrInvalidInput) {
		t.Errorf("zero window: expected ErrInvalidInput, got %v", err)
	}
	if _, err := netSummarizer(t).Summarize(nil); !errors.Is(err, physio.ErrInvalidInput) {
		t.Errorf("no samples: expected ErrInvalidInput, got %v", err)
	}
}

func TestSummarize_BrockwayPolicy(t *testing.T) {
	s, err := NewSummarizer(energy.NewBrockwayModel(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Summarize(subjectSamples("S6", 70, 300, 250, 3000, 2800, 3.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := energy.NewBrockwayModel()
	want := m.Watts(3000, 2800)/70 - m.Watts(300, 250)/70
	if math.Abs(got.NetPowerWkg-want) > 1e-9 {
		t.Errorf("expected net power %v, got %v", want, got.NetPowerWkg)
	}
	// Running economy does not depend on the policy.
	if math.Abs(got.RunningEconomy-2700.0/70) > 1e-9 {
		t.Errorf("expected running economy %v, got %v", 2700.0/70, got.RunningEconomy)
	}
}
