// Package analysis runs the full pipeline from raw samples to a Report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haskel/runeconomy/internal/cohort"
	"github.com/haskel/runeconomy/internal/narrative"
	"github.com/haskel/runeconomy/internal/physio"
	"github.com/haskel/runeconomy/internal/physio/energy"
	"github.com/haskel/runeconomy/internal/regression"
)

// Options configures an Analyzer.
type Options struct {
	Policy     energy.Policy
	Summarizer cohort.Options
	Regression regression.Options
	Workers    int
	Strict     bool
}

// DefaultOptions returns the net policy with default window and grid.
func DefaultOptions() Options {
	return Options{
		Policy:     energy.DefaultPolicy,
		Summarizer: cohort.DefaultOptions(),
		Regression: regression.DefaultOptions(),
		Workers:    1,
	}
}

// Request is one analysis input.
type Request struct {
	Samples []physio.Sample
	Filter  cohort.PowerRange
	// Source names the input, e.g. a file name.
	Source string
}

// Analyzer is safe for concurrent use.
type Analyzer struct {
	policy     energy.Policy
	aggregator *cohort.Aggregator
	regressor  *regression.PowerSpeedRegressor
	logger     *slog.Logger
	now        func() time.Time
}

// New validates options and builds an Analyzer.
func New(opts Options, logger *slog.Logger) (*Analyzer, error) {
	model, err := energy.New(opts.Policy)
	if err != nil {
		return nil, err
	}

	summarizer, err := cohort.NewSummarizer(model, opts.Summarizer)
	if err != nil {
		return nil, err
	}

	if err := opts.Regression.Validate(); err != nil {
		return nil, err
	}

	return &Analyzer{
		policy: model.Policy(),
		aggregator: cohort.NewAggregator(summarizer,
			cohort.WithWorkers(opts.Workers),
			cohort.WithStrict(opts.Strict),
		),
		regressor: regression.NewPowerSpeedRegressor(opts.Regression),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Policy returns the energy policy in use.
func (a *Analyzer) Policy() energy.Policy {
	return a.policy
}

// Run aggregates every subject, applies the power filter, then fits the
// regression and derives the facts on the filtered table.
func (a *Analyzer) Run(ctx context.Context, req Request) (*Report, error) {
	if err := req.Filter.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := a.aggregator.Aggregate(req.Samples)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	for _, s := range table.Skipped {
		a.logger.Warn("subject skipped",
			"subject_id", s.SubjectID,
			"error", s.Err,
		)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := &Report{
		ID:            uuid.NewString(),
		CreatedAt:     a.now().UTC(),
		Source:        req.Source,
		Policy:        table.Policy,
		WindowSeconds: table.WindowSeconds,
		Filter:        req.Filter,
		Cohort:        table,
	}
	if !req.Filter.IsZero() {
		rep.Selected = table.Filter(req.Filter)
	}

	analyzed := rep.Analyzed()

	fit, err := a.regressor.Fit(analyzed)
	switch {
	case err == nil:
		rep.RegressionStatus = RegressionOK
		rep.Regression = fit
	case errors.Is(err, physio.ErrInsufficientData):
		rep.RegressionStatus = RegressionInsufficientData
		rep.RegressionError = err.Error()
		a.logger.Debug("regression skipped", "run_id", rep.ID, "error", err)
	default:
		return nil, fmt.Errorf("regression: %w", err)
	}

	rep.Facts = narrative.Describe(analyzed)

	a.logger.Info("analysis finished",
		"run_id", rep.ID,
		"subjects", table.Len(),
		"selected", analyzed.Len(),
		"skipped", len(table.Skipped),
		"policy", rep.Policy,
	)

	return rep, nil
}
