package analysis

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/logger"
	"github.com/haskel/runeconomy/internal/narrative"
	"github.com/haskel/runeconomy/internal/physio"
	"github.com/haskel/runeconomy/internal/physio/energy"
)

// subject builds three constant rest samples and three constant run samples,
// all inside the default window.
func subject(id string, mass, runVO2, runVCO2, speed float64) []physio.Sample {
	var out []physio.Sample
	for _, t := range []float64{0, 60, 120} {
		out = append(out, physio.Sample{
			SubjectID: id, Phase: physio.PhaseRest, TimeS: t,
			VO2MlMin: 300, VCO2MlMin: 250, BodyMassKg: mass,
		})
	}
	for _, t := range []float64{200, 260, 320} {
		out = append(out, physio.Sample{
			SubjectID: id, Phase: physio.PhaseRun, TimeS: t,
			VO2MlMin: runVO2, VCO2MlMin: runVCO2, BodyMassKg: mass, SpeedMPS: speed,
		})
	}
	return out
}

func cohortSamples() []physio.Sample {
	var samples []physio.Sample
	samples = append(samples, subject("A", 70, 3000, 2800, 3.0)...)
	samples = append(samples, subject("B", 70, 3300, 3100, 3.3)...)
	samples = append(samples, subject("C", 70, 3600, 3400, 3.6)...)
	return samples
}

func newAnalyzer(t *testing.T, opts Options) *Analyzer {
	t.Helper()
	a, err := New(opts, logger.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return a
}

func TestRun(t *testing.T) {
	a := newAnalyzer(t, DefaultOptions())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	rep, err := a.Run(context.Background(), Request{Samples: cohortSamples(), Source: "lab.csv"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.ID == "" {
		t.Error("expected run id")
	}
	if !rep.CreatedAt.Equal(fixed) {
		t.Errorf("expected %v, got %v", fixed, rep.CreatedAt)
	}
	if rep.Policy != energy.PolicyNet || rep.WindowSeconds != 120 {
		t.Errorf("unexpected policy/window %s/%v", rep.Policy, rep.WindowSeconds)
	}
	if rep.Cohort.Len() != 3 || rep.Selected != nil {
		t.Errorf("expected 3 rows and no selection, got %d and %v", rep.Cohort.Len(), rep.Selected)
	}

	if math.Abs(rep.Cohort.Rows[0].NetPowerWkg-13.396785714) > 1e-6 {
		t.Errorf("expected A net power 13.396785714, got %v", rep.Cohort.Rows[0].NetPowerWkg)
	}

	if rep.RegressionStatus != RegressionOK || rep.Regression == nil {
		t.Fatalf("expected regression, got %s", rep.RegressionStatus)
	}
	if rep.Regression.N != 3 || math.Abs(rep.Regression.RSquared-1) > 1e-9 {
		t.Errorf("expected exact 3-point fit, got n=%d r2=%v", rep.Regression.N, rep.Regression.RSquared)
	}

	if rep.Facts.Association != narrative.AssociationPositive {
		t.Errorf("expected positive association, got %s", rep.Facts.Association)
	}
	if !strings.Contains(rep.Narrative(), "**3 subject(s)**") {
		t.Errorf("unexpected narrative:\n%s", rep.Narrative())
	}
}

func TestRun_Filter(t *testing.T) {
	a := newAnalyzer(t, DefaultOptions())
	lo := 14.0

	rep, err := a.Run(context.Background(), Request{
		Samples: cohortSamples(),
		Filter:  cohort.PowerRange{Min: &lo},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Cohort.Len() != 3 {
		t.Errorf("expected full cohort of 3, got %d", rep.Cohort.Len())
	}
	if rep.Selected.Len() != 2 || rep.Selected.Rows[0].SubjectID != "B" {
		t.Fatalf("expected B and C selected, got %+v", rep.Selected)
	}
	if rep.Regression.N != 2 {
		t.Errorf("expected regression on 2 rows, got %d", rep.Regression.N)
	}
	if rep.Facts.SubjectCount != 2 {
		t.Errorf("expected facts on 2 rows, got %d", rep.Facts.SubjectCount)
	}
}

func TestRun_InsufficientData(t *testing.T) {
	a := newAnalyzer(t, DefaultOptions())

	rep, err := a.Run(context.Background(), Request{Samples: subject("A", 70, 3000, 2800, 3.0)})
	if err != nil {
		t.Fatalf("insufficient data should not fail the run: %v", err)
	}

	if rep.RegressionStatus != RegressionInsufficientData {
		t.Errorf("expected insufficient_data, got %s", rep.RegressionStatus)
	}
	if rep.Regression != nil {
		t.Error("expected no regression result")
	}
	if rep.Facts.Association != narrative.AssociationInsufficientData {
		t.Errorf("expected insufficient_data facts, got %s", rep.Facts.Association)
	}
}

func TestRun_SkipsInvalidSubject(t *testing.T) {
	var buf bytes.Buffer
	a, err := New(DefaultOptions(), logger.NewWithWriter(&buf, "info", "text"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	samples := append(cohortSamples(), subject("D", 0, 3000, 2800, 3.0)...)

	rep, err := a.Run(context.Background(), Request{Samples: samples})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Cohort.Len() != 3 || len(rep.Cohort.Skipped) != 1 || rep.Cohort.Skipped[0].SubjectID != "D" {
		t.Errorf("expected D skipped, got rows=%d skipped=%+v", rep.Cohort.Len(), rep.Cohort.Skipped)
	}
	if !strings.Contains(buf.String(), "subject skipped") || !strings.Contains(buf.String(), "subject_id=D") {
		t.Errorf("expected skip warning, got %q", buf.String())
	}

	opts := DefaultOptions()
	opts.Strict = true
	strict := newAnalyzer(t, opts)
	if _, err := strict.Run(context.Background(), Request{Samples: samples}); !errors.Is(err, physio.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput in strict mode, got %v", err)
	}
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	opts := DefaultOptions()
	opts.Workers = 3

	seq, err := newAnalyzer(t, DefaultOptions()).Run(context.Background(), Request{Samples: cohortSamples()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	par, err := newAnalyzer(t, opts).Run(context.Background(), Request{Samples: cohortSamples()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range seq.Cohort.Rows {
		if seq.Cohort.Rows[i].SubjectID != par.Cohort.Rows[i].SubjectID ||
			seq.Cohort.Rows[i].NetPowerWkg != par.Cohort.Rows[i].NetPowerWkg {
			t.Errorf("row %d differs between sequential and parallel", i)
		}
	}
	if seq.Regression.Slope != par.Regression.Slope {
		t.Errorf("expected identical slope, got %v and %v", seq.Regression.Slope, par.Regression.Slope)
	}
}

func TestRun_Errors(t *testing.T) {
	a := newAnalyzer(t, DefaultOptions())

	lo, hi := 15.0, 10.0
	_, err := a.Run(context.Background(), Request{
		Samples: cohortSamples(),
		Filter:  cohort.PowerRange{Min: &lo, Max: &hi},
	})
	if !errors.Is(err, physio.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for inverted range, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Run(ctx, Request{Samples: cohortSamples()}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"unknown policy", func(o *Options) { o.Policy = "gross" }},
		{"zero window", func(o *Options) { o.Summarizer.WindowSeconds = 0 }},
		{"bad confidence", func(o *Options) { o.Regression.Confidence = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			if _, err := New(opts, logger.Discard()); !errors.Is(err, physio.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestNew_Brockway(t *testing.T) {
	opts := DefaultOptions()
	opts.Policy = energy.PolicyBrockway
	a := newAnalyzer(t, opts)

	rep, err := a.Run(context.Background(), Request{Samples: cohortSamples()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Policy() != energy.PolicyBrockway || rep.Policy != energy.PolicyBrockway {
		t.Errorf("expected brockway, got %s", rep.Policy)
	}
}
