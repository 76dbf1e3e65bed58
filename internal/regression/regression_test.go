package regression

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/physio"
)

func table(points ...[2]float64) *cohort.Table {
	t := &cohort.Table{WindowSeconds: 120}
	for i, p := range points {
		t.Rows = append(t.Rows, cohort.SubjectSummary{
			SubjectID:   string(rune('A' + i)),
			NetPowerWkg: p[0],
			SpeedMPS:    p[1],
		})
	}
	return t
}

func TestFitOLS_KnownValues(t *testing.T) {
	x := mat.NewDense(5, 2, []float64{1, 1, 1, 2, 1, 3, 1, 4, 1, 5})
	y := []float64{2, 4, 5, 4, 5}

	fit, err := FitOLS(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(fit.Coefficients[0]-2.2) > 1e-9 || math.Abs(fit.Coefficients[1]-0.6) > 1e-9 {
		t.Errorf("expected [2.2 0.6], got %v", fit.Coefficients)
	}
	if math.Abs(fit.SSR-2.4) > 1e-9 {
		t.Errorf("expected SSR 2.4, got %v", fit.SSR)
	}
	if math.Abs(fit.RSquared-0.6) > 1e-9 {
		t.Errorf("expected R² 0.6, got %v", fit.RSquared)
	}
	if fit.DFResid != 3 {
		t.Errorf("expected 3 residual df, got %d", fit.DFResid)
	}
	if math.Abs(fit.MeanStdErr([]float64{1, 3})-0.4) > 1e-9 {
		t.Errorf("expected standard error 0.4 at the mean, got %v", fit.MeanStdErr([]float64{1, 3}))
	}
}

func TestFitOLS_ShapeErrors(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 1, 1, 2})
	if _, err := FitOLS(x, []float64{1}); !errors.Is(err, physio.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for length mismatch, got %v", err)
	}

	x = mat.NewDense(1, 2, []float64{1, 3})
	if _, err := FitOLS(x, []float64{1}); !errors.Is(err, physio.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for n < p, got %v", err)
	}
}

func TestFit_ConfidenceBand(t *testing.T) {
	reg := NewPowerSpeedRegressor(Options{GridSize: 5, Confidence: 0.95, DropNaN: true})
	res, err := reg.Fit(table([2]float64{1, 2}, [2]float64{2, 4}, [2]float64{3, 5}, [2]float64{4, 4}, [2]float64{5, 5}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Grid) != 5 {
		t.Fatalf("expected 5 grid points, got %d", len(res.Grid))
	}

	// t(0.975, df=3) = 3.182446305284263
	const tq = 3.182446305284263
	tests := []struct {
		power float64
		se    float64
	}{
		{1, math.Sqrt(0.48)},
		{3, 0.4},
		{5, math.Sqrt(0.48)},
	}
	for _, tt := range tests {
		var gp GridPoint
		for _, p := range res.Grid {
			if p.Power == tt.power {
				gp = p
			}
		}
		wantMean := 2.2 + 0.6*tt.power
		if math.Abs(gp.PredictedSpeed-wantMean) > 1e-9 {
			t.Errorf("power %v: expected mean %v, got %v", tt.power, wantMean, gp.PredictedSpeed)
		}
		wantHalf := tq * tt.se
		if math.Abs((gp.CIUpper-gp.PredictedSpeed)-wantHalf) > 1e-6 {
			t.Errorf("power %v: expected half-width %v, got %v", tt.power, wantHalf, gp.CIUpper-gp.PredictedSpeed)
		}
		if math.Abs((gp.PredictedSpeed-gp.CILower)-wantHalf) > 1e-6 {
			t.Errorf("power %v: expected symmetric band", tt.power)
		}
	}
}

func TestFit_TwoPointsIsExact(t *testing.T) {
	res, err := Fit(table([2]float64{10, 3.0}, [2]float64{14, 3.6}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(res.RSquared-1) > 1e-12 {
		t.Errorf("expected R² 1, got %v", res.RSquared)
	}
	if math.Abs(res.Slope-0.15) > 1e-9 {
		t.Errorf("expected slope 0.15, got %v", res.Slope)
	}
	if len(res.Grid) != DefaultGridSize {
		t.Errorf("expected %d grid points, got %d", DefaultGridSize, len(res.Grid))
	}
	for _, p := range res.Grid {
		if p.CILower != p.PredictedSpeed || p.CIUpper != p.PredictedSpeed {
			t.Fatalf("expected band to collapse onto the line at power %v", p.Power)
		}
	}
	if res.Grid[0].Power != 10 || res.Grid[len(res.Grid)-1].Power != 14 {
		t.Errorf("grid should span [10, 14], got [%v, %v]", res.Grid[0].Power, res.Grid[len(res.Grid)-1].Power)
	}
}

func TestFit_InsufficientData(t *testing.T) {
	tests := []struct {
		name  string
		table *cohort.Table
	}{
		{"nil table", nil},
		{"empty", table()},
		{"single row", table([2]float64{10, 3})},
		{"one valid row", table([2]float64{10, 3}, [2]float64{math.NaN(), 3.2}, [2]float64{12, math.NaN()})},
		{"constant power", table([2]float64{10, 3}, [2]float64{10, 3.4})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Fit(tt.table)
			if !errors.Is(err, physio.ErrInsufficientData) {
				t.Errorf("expected ErrInsufficientData, got %v", err)
			}
			if res != nil {
				t.Error("expected no result")
			}
		})
	}
}

func TestFit_DropNaN(t *testing.T) {
	tbl := table([2]float64{10, 3.0}, [2]float64{math.NaN(), 9}, [2]float64{12, 3.3}, [2]float64{14, 3.6})

	res, err := Fit(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.N != 3 {
		t.Errorf("expected 3 rows used, got %d", res.N)
	}

	_, err = NewPowerSpeedRegressor(Options{DropNaN: false}).Fit(tbl)
	if !errors.Is(err, physio.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput without NaN dropping, got %v", err)
	}
}

func TestFit_InvalidOptions(t *testing.T) {
	tbl := table([2]float64{10, 3.0}, [2]float64{12, 3.3})

	for _, opts := range []Options{
		{GridSize: -1, Confidence: 0.95, DropNaN: true},
		{GridSize: 10, Confidence: 1.5, DropNaN: true},
	} {
		if _, err := NewPowerSpeedRegressor(opts).Fit(tbl); !errors.Is(err, physio.ErrInvalidInput) {
			t.Errorf("options %+v: expected ErrInvalidInput, got %v", opts, err)
		}
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	if got := Linspace(3, 7, 1); len(got) != 1 || got[0] != 3 {
		t.Errorf("expected [3], got %v", got)
	}
	if got := Linspace(0, 1, 0); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := Linspace(0.1, 0.7, 7); got[6] != 0.7 {
		t.Errorf("expected exact endpoint, got %v", got[6])
	}
}

func TestResult_JSON(t *testing.T) {
	res := Result{Slope: 0.15, Intercept: 1.5, RSquared: math.NaN(), N: 2}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if m["r_squared"] != nil {
		t.Errorf("expected null r_squared, got %v", m["r_squared"])
	}
	if m["slope"] != 0.15 {
		t.Errorf("expected slope 0.15, got %v", m["slope"])
	}
}
