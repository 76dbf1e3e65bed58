package regression

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/physio"
)

// Defaults for the prediction grid and interval.
const (
	DefaultGridSize   = 100
	DefaultConfidence = 0.95
)

// Options configures a PowerSpeedRegressor.
type Options struct {
	GridSize   int
	Confidence float64
	// DropNaN excludes rows with NaN power or speed. When false such rows
	// make the fit fail with ErrInvalidInput.
	DropNaN bool
}

// DefaultOptions returns a 100-point grid with 95% intervals, dropping NaN rows.
func DefaultOptions() Options {
	return Options{
		GridSize:   DefaultGridSize,
		Confidence: DefaultConfidence,
		DropNaN:    true,
	}
}

// Validate checks grid size and confidence level.
func (o Options) Validate() error {
	if o.GridSize < 1 {
		return fmt.Errorf("%w: grid size must be at least 1, got %d", physio.ErrInvalidInput, o.GridSize)
	}
	if !(o.Confidence > 0 && o.Confidence < 1) {
		return fmt.Errorf("%w: confidence must be in (0, 1), got %v", physio.ErrInvalidInput, o.Confidence)
	}
	return nil
}

// GridPoint is one prediction on the power grid.
type GridPoint struct {
	Power          float64 `json:"power"`
	PredictedSpeed float64 `json:"predicted_speed"`
	CILower        float64 `json:"ci_lower"`
	CIUpper        float64 `json:"ci_upper"`
}

// Result is the fitted speed = intercept + slope * power model.
type Result struct {
	Slope        float64
	Intercept    float64
	Coefficients []float64
	RSquared     float64
	N            int
	DFResid      int
	Confidence   float64
	Grid         []GridPoint
}

// Predict returns the fitted speed at power.
func (r *Result) Predict(power float64) float64 {
	return r.Intercept + r.Slope*power
}

type resultJSON struct {
	Slope        float64     `json:"slope"`
	Intercept    float64     `json:"intercept"`
	Coefficients []float64   `json:"coefficients"`
	RSquared     *float64    `json:"r_squared"`
	N            int         `json:"n"`
	DFResid      int         `json:"df_resid"`
	Confidence   float64     `json:"confidence"`
	Grid         []GridPoint `json:"grid"`
}

// MarshalJSON encodes an undefined R² as null.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Slope:        r.Slope,
		Intercept:    r.Intercept,
		Coefficients: r.Coefficients,
		RSquared:     cohort.Nullable(r.RSquared),
		N:            r.N,
		DFResid:      r.DFResid,
		Confidence:   r.Confidence,
		Grid:         r.Grid,
	})
}

// UnmarshalJSON decodes a null R² as NaN.
func (r *Result) UnmarshalJSON(data []byte) error {
	var w resultJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Result{
		Slope:        w.Slope,
		Intercept:    w.Intercept,
		Coefficients: w.Coefficients,
		RSquared:     cohort.FromNullable(w.RSquared),
		N:            w.N,
		DFResid:      w.DFResid,
		Confidence:   w.Confidence,
		Grid:         w.Grid,
	}
	return nil
}

// PowerSpeedRegressor fits speed as a linear function of net metabolic power.
type PowerSpeedRegressor struct {
	opts Options
}

// NewPowerSpeedRegressor creates a regressor. Zero-valued grid size and
// confidence fall back to the defaults.
func NewPowerSpeedRegressor(opts Options) *PowerSpeedRegressor {
	if opts.GridSize == 0 {
		opts.GridSize = DefaultGridSize
	}
	if opts.Confidence == 0 {
		opts.Confidence = DefaultConfidence
	}
	return &PowerSpeedRegressor{opts: opts}
}

// Fit fits the cohort. Fewer than two usable rows, or usable rows that all
// share one power value, yield ErrInsufficientData.
func (r *PowerSpeedRegressor) Fit(table *cohort.Table) (*Result, error) {
	if err := r.opts.Validate(); err != nil {
		return nil, err
	}

	var power, speed []float64
	if table != nil {
		for _, row := range table.Rows {
			if !row.HasPowerAndSpeed() {
				if !r.opts.DropNaN {
					return nil, fmt.Errorf("%w: subject %s has NaN power or speed", physio.ErrInvalidInput, row.SubjectID)
				}
				continue
			}
			power = append(power, row.NetPowerWkg)
			speed = append(speed, row.SpeedMPS)
		}
	}

	if len(power) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rows with power and speed, have %d", physio.ErrInsufficientData, len(power))
	}

	lo, hi := power[0], power[0]
	for _, p := range power[1:] {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	if lo == hi {
		return nil, fmt.Errorf("%w: net power has no variance across %d rows", physio.ErrInsufficientData, len(power))
	}

	design := mat.NewDense(len(power), 2, nil)
	for i, p := range power {
		design.Set(i, 0, 1)
		design.Set(i, 1, p)
	}

	ols, err := FitOLS(design, speed)
	if err != nil {
		return nil, err
	}

	grid := Linspace(lo, hi, r.opts.GridSize)
	points := make([]GridPoint, len(grid))
	for i, x := range grid {
		mean, lower, upper := ols.MeanConfidence([]float64{1, x}, r.opts.Confidence)
		points[i] = GridPoint{Power: x, PredictedSpeed: mean, CILower: lower, CIUpper: upper}
	}

	return &Result{
		Slope:        ols.Coefficients[1],
		Intercept:    ols.Coefficients[0],
		Coefficients: ols.Coefficients,
		RSquared:     ols.RSquared,
		N:            ols.N,
		DFResid:      ols.DFResid,
		Confidence:   r.opts.Confidence,
		Grid:         points,
	}, nil
}

// Fit is the one-shot form with default options.
func Fit(table *cohort.Table) (*Result, error) {
	return NewPowerSpeedRegressor(DefaultOptions()).Fit(table)
}

// Linspace returns n evenly spaced values from start to stop inclusive.
// The last value is exactly stop; n == 1 yields [start].
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = float64(i)*step + start
	}
	out[n-1] = stop
	return out
}
