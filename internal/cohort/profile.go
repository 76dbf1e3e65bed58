package cohort

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/haskel/runeconomy/internal/physio"
)

// z-score for a two-sided 95% normal band.
const z95 = 1.96

// PhaseProfile describes one phase of a subject's VO2 trace.
type PhaseProfile struct {
	Phase   string
	Samples []physio.Sample // sorted by time

	// MeanVO2 is bracketed by a 1.96*SEM band (sample std, ddof=1).
	// The band collapses to the mean for a single sample.
	MeanVO2  float64
	LowerVO2 float64
	UpperVO2 float64

	SteadyState physio.Span
	HasSpan     bool
}

// SubjectProfile is the per-phase VO2 view of a subject.
type SubjectProfile struct {
	SubjectID string
	Rest      PhaseProfile
	Run       PhaseProfile
}

// Profile builds the rest and run views of one subject.
func Profile(samples []physio.Sample, opts Options) SubjectProfile {
	p := SubjectProfile{
		Rest: phaseProfile(samples, opts.RestLabel, opts.WindowSeconds),
		Run:  phaseProfile(samples, opts.RunLabel, opts.WindowSeconds),
	}
	if len(samples) > 0 {
		p.SubjectID = samples[0].SubjectID
	}
	return p
}

func phaseProfile(samples []physio.Sample, label string, windowSeconds float64) PhaseProfile {
	part := append([]physio.Sample(nil), physio.FilterPhase(samples, label)...)
	sort.SliceStable(part, func(i, j int) bool { return part[i].TimeS < part[j].TimeS })

	pp := PhaseProfile{
		Phase:    label,
		Samples:  part,
		MeanVO2:  math.NaN(),
		LowerVO2: math.NaN(),
		UpperVO2: math.NaN(),
	}
	if len(part) == 0 {
		return pp
	}

	vo2 := physio.Field(part, physio.VO2)
	mean := stat.Mean(vo2, nil)
	half := 0.0
	if len(vo2) > 1 {
		sem := stat.StdDev(vo2, nil) / math.Sqrt(float64(len(vo2)))
		half = z95 * sem
	}
	pp.MeanVO2 = mean
	pp.LowerVO2 = mean - half
	pp.UpperVO2 = mean + half
	pp.SteadyState, pp.HasSpan = physio.WindowSpan(part, windowSeconds)
	return pp
}

// AlignedRun is a subject's run-phase VO2 with time shifted so the first run
// sample is at zero.
type AlignedRun struct {
	SubjectID   string
	TimeS       []float64
	VO2MlMin    []float64
	SteadyState physio.Span
}

// AlignRuns builds AlignedRun series for the requested subjects, in request
// order. Subjects without run samples are omitted.
func AlignRuns(samples []physio.Sample, subjectIDs []string, opts Options) []AlignedRun {
	bySubject := make(map[string][]physio.Sample)
	for _, g := range GroupBySubject(samples) {
		bySubject[g.SubjectID] = g.Samples
	}

	var out []AlignedRun
	for _, id := range subjectIDs {
		run := phaseProfile(bySubject[id], opts.RunLabel, opts.WindowSeconds)
		if len(run.Samples) == 0 {
			continue
		}
		t0 := run.Samples[0].TimeS
		a := AlignedRun{SubjectID: id}
		for _, s := range run.Samples {
			a.TimeS = append(a.TimeS, s.TimeS-t0)
			a.VO2MlMin = append(a.VO2MlMin, s.VO2MlMin)
		}
		end := a.TimeS[len(a.TimeS)-1]
		a.SteadyState = physio.Span{Start: math.Max(end-opts.WindowSeconds, 0), End: end}
		out = append(out, a)
	}
	return out
}
