package physio

import (
	"fmt"
	"math"
)

// SelectWindow returns the trailing window of samples: every sample whose
// time is >= max(time) - windowSeconds. The lower bound is inclusive.
// Input order is preserved and the input is not sorted. An empty input
// yields an empty window.
func SelectWindow(samples []Sample, windowSeconds float64) ([]Sample, error) {
	return SelectWindowBy(samples, windowSeconds, Time)
}

// SelectWindowBy is SelectWindow over an arbitrary time column.
// Samples whose time is NaN never fall inside a window.
func SelectWindowBy(samples []Sample, windowSeconds float64, timeOf func(Sample) float64) ([]Sample, error) {
	if err := ValidateWindow(windowSeconds); err != nil {
		return nil, err
	}

	maxTime, ok := maxOf(samples, timeOf)
	if !ok {
		return nil, nil
	}

	lower := maxTime - windowSeconds
	window := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if timeOf(s) >= lower {
			window = append(window, s)
		}
	}
	return window, nil
}

// ValidateWindow rejects non-positive, NaN and infinite window sizes.
func ValidateWindow(windowSeconds float64) error {
	if !(windowSeconds > 0) || math.IsInf(windowSeconds, 1) {
		return fmt.Errorf("%w: window_seconds must be a positive number, got %v", ErrInvalidInput, windowSeconds)
	}
	return nil
}

// Span is the time interval covered by a steady-state window.
type Span struct {
	Start float64 `json:"start_s"`
	End   float64 `json:"end_s"`
}

// WindowSpan returns [max(end - windowSeconds, start), end] for the samples,
// where start and end are the earliest and latest sample times.
// ok is false when no sample has a usable time.
func WindowSpan(samples []Sample, windowSeconds float64) (span Span, ok bool) {
	end, ok := maxOf(samples, Time)
	if !ok {
		return Span{}, false
	}
	start, _ := minOf(samples, Time)
	return Span{Start: math.Max(end-windowSeconds, start), End: end}, true
}

func maxOf(samples []Sample, get func(Sample) float64) (float64, bool) {
	best := math.Inf(-1)
	found := false
	for _, s := range samples {
		v := get(s)
		if math.IsNaN(v) {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best, found
}

func minOf(samples []Sample, get func(Sample) float64) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, s := range samples {
		v := get(s)
		if math.IsNaN(v) {
			continue
		}
		if !found || v < best {
			best = v
			found = true
		}
	}
	return best, found
}
