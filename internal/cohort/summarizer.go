package cohort

import (
	"fmt"

	"github.com/haskel/runeconomy/internal/physio"
	"github.com/haskel/runeconomy/internal/physio/energy"
)

// DefaultWindowSeconds is the steady-state window length.
const DefaultWindowSeconds = 120

// Options configures a Summarizer.
type Options struct {
	RestLabel     string
	RunLabel      string
	WindowSeconds float64
}

// DefaultOptions returns the labels and window used by standard exports.
func DefaultOptions() Options {
	return Options{
		RestLabel:     physio.PhaseRest,
		RunLabel:      physio.PhaseRun,
		WindowSeconds: DefaultWindowSeconds,
	}
}

// Summarizer reduces one subject's samples to a SubjectSummary.
// It holds no mutable state and is safe for concurrent use.
type Summarizer struct {
	model energy.Model
	opts  Options
}

// NewSummarizer creates a summarizer for the given energy model.
// Empty labels fall back to "rest" and "run".
func NewSummarizer(model energy.Model, opts Options) (*Summarizer, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: energy model is required", physio.ErrInvalidInput)
	}
	if err := physio.ValidateWindow(opts.WindowSeconds); err != nil {
		return nil, err
	}
	if opts.RestLabel == "" {
		opts.RestLabel = physio.PhaseRest
	}
	if opts.RunLabel == "" {
		opts.RunLabel = physio.PhaseRun
	}
	return &Summarizer{model: model, opts: opts}, nil
}

// Model returns the energy model in use.
func (s *Summarizer) Model() energy.Model {
	return s.model
}

// Options returns the effective options.
func (s *Summarizer) Options() Options {
	return s.opts
}

// Summarize computes the summary for one subject.
//
// Subject id and body mass come from the first sample; mass is assumed
// constant per subject and is not checked for constancy. An empty phase
// partition is not an error: every field depending on it is NaN.
func (s *Summarizer) Summarize(samples []physio.Sample) (SubjectSummary, error) {
	if len(samples) == 0 {
		return SubjectSummary{}, fmt.Errorf("%w: no samples for subject", physio.ErrInvalidInput)
	}

	first := samples[0]
	if err := energy.ValidateMass(first.BodyMassKg); err != nil {
		return SubjectSummary{}, fmt.Errorf("subject %s: %w", first.SubjectID, err)
	}

	restWin, err := physio.SelectWindow(physio.FilterPhase(samples, s.opts.RestLabel), s.opts.WindowSeconds)
	if err != nil {
		return SubjectSummary{}, err
	}
	runWin, err := physio.SelectWindow(physio.FilterPhase(samples, s.opts.RunLabel), s.opts.WindowSeconds)
	if err != nil {
		return SubjectSummary{}, err
	}

	power, err := s.model.Phases(restWin, runWin, first.BodyMassKg)
	if err != nil {
		return SubjectSummary{}, fmt.Errorf("subject %s: %w", first.SubjectID, err)
	}

	restVO2 := physio.Mean(physio.Field(restWin, physio.VO2))
	runVO2 := physio.Mean(physio.Field(runWin, physio.VO2))
	restVCO2 := physio.Mean(physio.Field(restWin, physio.VCO2))
	runVCO2 := physio.Mean(physio.Field(runWin, physio.VCO2))
	netVO2 := runVO2 - restVO2

	return SubjectSummary{
		SubjectID:      first.SubjectID,
		BodyMassKg:     first.BodyMassKg,
		RestVO2MlMin:   restVO2,
		RunVO2MlMin:    runVO2,
		RestVCO2MlMin:  restVCO2,
		RunVCO2MlMin:   runVCO2,
		NetVO2MlMin:    netVO2,
		NetVCO2MlMin:   runVCO2 - restVCO2,
		RunningEconomy: netVO2 / first.BodyMassKg,
		RestPowerWkg:   power.RestWkg,
		RunPowerWkg:    power.RunWkg,
		NetPowerWkg:    power.NetWkg,
		SpeedMPS:       physio.Mean(physio.Field(runWin, physio.Speed)),
	}, nil
}

// Summarize is the one-shot form using the net policy.
func Summarize(samples []physio.Sample, restLabel, runLabel string, windowSeconds float64) (SubjectSummary, error) {
	s, err := NewSummarizer(energy.NewNetModel(), Options{
		RestLabel:     restLabel,
		RunLabel:      runLabel,
		WindowSeconds: windowSeconds,
	})
	if err != nil {
		return SubjectSummary{}, err
	}
	return s.Summarize(samples)
}
