package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/haskel/runeconomy/internal/physio"
)

// OLS is an ordinary least squares fit y = X*beta.
type OLS struct {
	Coefficients []float64

	N       int
	P       int
	DFResid int

	SSR      float64 // residual sum of squares
	TSS      float64 // centered total sum of squares
	RSquared float64 // NaN when TSS is zero

	// Scale is the residual variance SSR/DFResid; zero for an exact fit
	// with no residual degrees of freedom.
	Scale float64

	xtxInv *mat.Dense
}

// FitOLS fits y on the design matrix x (rows = observations).
// Returns ErrInsufficientData for fewer rows than columns or a
// rank-deficient design.
func FitOLS(x *mat.Dense, y []float64) (*OLS, error) {
	n, p := x.Dims()
	if len(y) != n {
		return nil, fmt.Errorf("%w: design has %d rows but response has %d", physio.ErrInvalidInput, n, len(y))
	}
	if n < p {
		return nil, fmt.Errorf("%w: %d observations for %d coefficients", physio.ErrInsufficientData, n, p)
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: design matrix is rank deficient: %v", physio.ErrInsufficientData, err)
	}

	yv := mat.NewVecDense(n, append([]float64(nil), y...))
	var xty mat.VecDense
	xty.MulVec(x.T(), yv)
	var beta mat.VecDense
	beta.MulVec(&inv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	var ybar float64
	for _, v := range y {
		ybar += v
	}
	ybar /= float64(n)

	var ssr, tss float64
	for i, v := range y {
		r := v - fitted.AtVec(i)
		ssr += r * r
		d := v - ybar
		tss += d * d
	}

	fit := &OLS{
		Coefficients: mat.Col(nil, 0, &beta),
		N:            n,
		P:            p,
		DFResid:      n - p,
		SSR:          ssr,
		TSS:          tss,
		RSquared:     math.NaN(),
		xtxInv:       &inv,
	}
	if tss > 0 {
		fit.RSquared = 1 - ssr/tss
	}
	if fit.DFResid > 0 {
		fit.Scale = ssr / float64(fit.DFResid)
	}
	return fit, nil
}

// Predict returns x0*beta.
func (f *OLS) Predict(x0 []float64) float64 {
	var y float64
	for i, c := range f.Coefficients {
		y += c * x0[i]
	}
	return y
}

// MeanStdErr returns the standard error of the conditional mean at x0:
// sqrt(scale * x0' (X'X)^-1 x0).
func (f *OLS) MeanStdErr(x0 []float64) float64 {
	v := mat.NewVecDense(len(x0), append([]float64(nil), x0...))
	q := mat.Inner(v, f.xtxInv, v)
	return math.Sqrt(math.Max(f.Scale*q, 0))
}

// MeanConfidence returns the predicted mean and its two-sided interval at the
// given confidence level, using the Student t quantile with DFResid degrees of
// freedom. With no residual degrees of freedom the interval is the point itself.
func (f *OLS) MeanConfidence(x0 []float64, confidence float64) (mean, lower, upper float64) {
	mean = f.Predict(x0)
	if f.DFResid <= 0 {
		return mean, mean, mean
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(f.DFResid)}
	half := t.Quantile(1-(1-confidence)/2) * f.MeanStdErr(x0)
	return mean, mean - half, mean + half
}
