package analysis

import (
	"time"

	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/narrative"
	"github.com/haskel/runeconomy/internal/physio/energy"
	"github.com/haskel/runeconomy/internal/regression"
)

// RegressionStatus tells whether the power/speed fit produced a result.
type RegressionStatus string

const (
	RegressionOK               RegressionStatus = "ok"
	RegressionInsufficientData RegressionStatus = "insufficient_data"
)

// Report is the outcome of one analysis run.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source,omitempty"`

	Policy        energy.Policy     `json:"policy"`
	WindowSeconds float64           `json:"window_seconds"`
	Filter        cohort.PowerRange `json:"filter"`

	// Cohort holds every summarized subject. Selected is the subset inside
	// Filter and is nil when no bound is set.
	Cohort   *cohort.Table `json:"cohort"`
	Selected *cohort.Table `json:"selected,omitempty"`

	RegressionStatus RegressionStatus   `json:"regression_status"`
	RegressionError  string             `json:"regression_error,omitempty"`
	Regression       *regression.Result `json:"regression,omitempty"`

	Facts narrative.Facts `json:"facts"`
}

// Analyzed returns the table the regression and facts were computed on.
func (r *Report) Analyzed() *cohort.Table {
	if r.Selected != nil {
		return r.Selected
	}
	return r.Cohort
}

// Narrative renders the facts as text.
func (r *Report) Narrative() string {
	return narrative.Render(r.Facts)
}
