package energy

import (
	"errors"
	"math"
	"testing"

	"github.com/haskel/runeconomy/internal/physio"
)

func phase(label string, mass float64, gas ...[2]float64) []physio.Sample {
	out := make([]physio.Sample, len(gas))
	for i, g := range gas {
		out[i] = physio.Sample{
			SubjectID:  "S1",
			Phase:      label,
			TimeS:      float64(i * 10),
			VO2MlMin:   g[0],
			VCO2MlMin:  g[1],
			BodyMassKg: mass,
		}
	}
	return out
}

func TestPolicy_IsValid(t *testing.T) {
	tests := []struct {
		policy Policy
		want   bool
	}{
		{PolicyNet, true},
		{PolicyBrockway, true},
		{"", false},
		{"weir", false},
	}
	for _, tt := range tests {
		if got := tt.policy.IsValid(); got != tt.want {
			t.Errorf("policy %q: expected %v, got %v", tt.policy, tt.want, got)
		}
	}
}

func TestNew(t *testing.T) {
	m, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Policy() != PolicyNet {
		t.Errorf("expected default policy net, got %s", m.Policy())
	}

	m, err = New(PolicyBrockway)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name() != "brockway_1987" {
		t.Errorf("expected brockway_1987, got %s", m.Name())
	}

	if _, err := New("unknown"); !errors.Is(err, physio.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNetModel_Scenario(t *testing.T) {
	m := NewNetModel()
	rest := phase(physio.PhaseRest, 70, [2]float64{300, 250})
	run := phase(physio.PhaseRun, 70, [2]float64{3000, 2800})

	p, err := m.Phases(rest, run, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 16.58*2.7 + 4.51*2.55 = 56.2665 kJ/min -> 937.775 W -> /70 kg
	if math.Abs(p.NetWkg-13.396785714) > 1e-6 {
		t.Errorf("expected net power ~13.3968 W/kg, got %v", p.NetWkg)
	}
	if math.Abs(m.Watts(2700, 2550)-937.775) > 1e-9 {
		t.Errorf("expected 937.775 W, got %v", m.Watts(2700, 2550))
	}
	if math.Abs((p.RunWkg-p.RestWkg)-p.NetWkg) > 1e-9 {
		t.Errorf("expected run-rest to match net, got %v vs %v", p.RunWkg-p.RestWkg, p.NetWkg)
	}
}

func TestNetModel_Linearity(t *testing.T) {
	m := NewNetModel()
	rest := phase(physio.PhaseRest, 65, [2]float64{0, 0})

	base, err := m.Phases(rest, phase(physio.PhaseRun, 65, [2]float64{1800, 1500}), 65)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, k := range []float64{0.5, 2, 3.7} {
		scaled, err := m.Phases(rest, phase(physio.PhaseRun, 65, [2]float64{1800 * k, 1500 * k}), 65)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(scaled.NetWkg-k*base.NetWkg) > 1e-9 {
			t.Errorf("factor %v: expected %v, got %v", k, k*base.NetWkg, scaled.NetWkg)
		}
	}
}

func TestNetModel_MeansOverWindow(t *testing.T) {
	m := NewNetModel()
	rest := phase(physio.PhaseRest, 70, [2]float64{280, 240}, [2]float64{320, 260})
	run := phase(physio.PhaseRun, 70, [2]float64{2900, 2700}, [2]float64{3100, 2900})

	p, err := m.Phases(rest, run, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p.NetWkg-13.396785714) > 1e-6 {
		t.Errorf("expected net power ~13.3968 W/kg, got %v", p.NetWkg)
	}
}

func TestNetModel_EmptyPartitionPropagatesNaN(t *testing.T) {
	m := NewNetModel()
	run := phase(physio.PhaseRun, 70, [2]float64{3000, 2800})

	p, err := m.Phases(nil, run, 70)
	if err != nil {
		t.Fatalf("empty partition must not error: %v", err)
	}
	if !math.IsNaN(p.RestWkg) || !math.IsNaN(p.NetWkg) {
		t.Errorf("expected NaN rest and net power, got %+v", p)
	}
	if math.IsNaN(p.RunWkg) {
		t.Error("run power should still be defined")
	}
}

func TestModels_InvalidMass(t *testing.T) {
	rest := phase(physio.PhaseRest, 70, [2]float64{300, 250})
	run := phase(physio.PhaseRun, 70, [2]float64{3000, 2800})

	for _, m := range []Model{NewNetModel(), NewBrockwayModel()} {
		for _, mass := range []float64{0, -70, math.NaN()} {
			if _, err := m.Phases(rest, run, mass); !errors.Is(err, physio.ErrInvalidInput) {
				t.Errorf("%s mass %v: expected ErrInvalidInput, got %v", m.Name(), mass, err)
			}
		}
	}
}

func TestBrockwayModel_Watts(t *testing.T) {
	m := NewBrockwayModel()

	// (3.941*3 + 1.106*2.8) * 69.78
	got := m.Watts(3000, 2800)
	if math.Abs(got-1041.103644) > 1e-6 {
		t.Errorf("expected ~1041.1036 W, got %v", got)
	}
}

func TestBrockwayModel_Phases(t *testing.T) {
	m := NewBrockwayModel()
	rest := phase(physio.PhaseRest, 70, [2]float64{300, 250}, [2]float64{300, 250})
	run := phase(physio.PhaseRun, 70, [2]float64{3000, 2800})

	p, err := m.Phases(rest, run, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantRest := m.Watts(300, 250) / 70
	wantRun := m.Watts(3000, 2800) / 70
	if math.Abs(p.RestWkg-wantRest) > 1e-12 {
		t.Errorf("expected rest %v, got %v", wantRest, p.RestWkg)
	}
	if math.Abs(p.NetWkg-(wantRun-wantRest)) > 1e-12 {
		t.Errorf("expected net %v, got %v", wantRun-wantRest, p.NetWkg)
	}
}

func TestBrockwayModel_RowMassValidated(t *testing.T) {
	m := NewBrockwayModel()
	run := phase(physio.PhaseRun, 0, [2]float64{3000, 2800})

	if _, err := m.Phases(nil, run, 70); !errors.Is(err, physio.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero row mass, got %v", err)
	}
}
