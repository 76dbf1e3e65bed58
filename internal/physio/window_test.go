package physio

import (
	"errors"
	"math"
	"testing"
)

func samplesAt(times ...float64) []Sample {
	out := make([]Sample, len(times))
	for i, t := range times {
		out[i] = Sample{SubjectID: "S1", Phase: PhaseRun, TimeS: t, VO2MlMin: float64(i)}
	}
	return out
}

func TestSelectWindow(t *testing.T) {
	tests := []struct {
		name   string
		times  []float64
		window float64
		want   []float64
	}{
		{
			name:   "empty input",
			times:  nil,
			window: 120,
			want:   nil,
		},
		{
			name:   "trailing interval",
			times:  []float64{0, 60, 120, 180, 240, 300},
			window: 120,
			want:   []float64{180, 240, 300},
		},
		{
			name:   "boundary sample included",
			times:  []float64{0, 100, 150, 200},
			window: 100,
			want:   []float64{100, 150, 200},
		},
		{
			name:   "unsorted input keeps order",
			times:  []float64{300, 10, 250, 200, 290},
			window: 60,
			want:   []float64{300, 250, 290},
		},
		{
			name:   "window larger than series",
			times:  []float64{5, 6, 7},
			window: 1000,
			want:   []float64{5, 6, 7},
		},
		{
			name:   "NaN times are skipped",
			times:  []float64{math.NaN(), 50, 100},
			window: 60,
			want:   []float64{50, 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectWindow(samplesAt(tt.times...), tt.window)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d samples, got %d", len(tt.want), len(got))
			}
			for i, s := range got {
				if s.TimeS != tt.want[i] {
					t.Errorf("sample %d: expected time %v, got %v", i, tt.want[i], s.TimeS)
				}
			}
		})
	}
}

func TestSelectWindow_SubsetProperty(t *testing.T) {
	input := samplesAt(3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5)
	const window = 4.0

	got, err := SelectWindow(input, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range got {
		if s.TimeS < 9-window {
			t.Errorf("sample at %v is before window start %v", s.TimeS, 9-window)
		}
		found := false
		for _, in := range input {
			if in == s {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("sample %+v not present in input", s)
		}
	}
}

func TestSelectWindow_InvalidWindow(t *testing.T) {
	for _, w := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := SelectWindow(samplesAt(1, 2, 3), w)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("window %v: expected ErrInvalidInput, got %v", w, err)
		}
	}
}

func TestWindowSpan(t *testing.T) {
	span, ok := WindowSpan(samplesAt(0, 30, 60, 90), 120)
	if !ok {
		t.Fatal("expected span")
	}
	if span.Start != 0 || span.End != 90 {
		t.Errorf("expected [0, 90], got [%v, %v]", span.Start, span.End)
	}

	span, _ = WindowSpan(samplesAt(0, 100, 200, 300), 120)
	if span.Start != 180 || span.End != 300 {
		t.Errorf("expected [180, 300], got [%v, %v]", span.Start, span.End)
	}

	if _, ok := WindowSpan(nil, 120); ok {
		t.Error("expected no span for empty samples")
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("expected 2.5, got %v", got)
	}
	if got := Mean([]float64{1, math.NaN(), 3}); got != 2 {
		t.Errorf("expected NaN to be skipped, got %v", got)
	}
	if got := Mean(nil); !math.IsNaN(got) {
		t.Errorf("expected NaN for empty input, got %v", got)
	}
	if got := Mean([]float64{math.NaN()}); !math.IsNaN(got) {
		t.Errorf("expected NaN for all-NaN input, got %v", got)
	}
}

func TestFilterPhase(t *testing.T) {
	samples := []Sample{
		{Phase: PhaseRest, TimeS: 1},
		{Phase: PhaseRun, TimeS: 2},
		{Phase: "cooldown", TimeS: 3},
		{Phase: PhaseRun, TimeS: 4},
	}

	run := FilterPhase(samples, PhaseRun)
	if len(run) != 2 || run[0].TimeS != 2 || run[1].TimeS != 4 {
		t.Errorf("unexpected run partition: %+v", run)
	}
	if got := FilterPhase(samples, "warmup"); len(got) != 0 {
		t.Errorf("expected empty partition, got %d", len(got))
	}
}
