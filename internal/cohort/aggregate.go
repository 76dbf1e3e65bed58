package cohort

import (
	"encoding/json"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/haskel/runeconomy/internal/physio"
	"github.com/haskel/runeconomy/internal/physio/energy"
)

// SubjectSamples is one subject's samples in input order.
type SubjectSamples struct {
	SubjectID string
	Samples   []physio.Sample
}

// GroupBySubject splits samples by subject id, ordered by first appearance.
func GroupBySubject(samples []physio.Sample) []SubjectSamples {
	index := make(map[string]int)
	var groups []SubjectSamples

	for _, s := range samples {
		i, ok := index[s.SubjectID]
		if !ok {
			i = len(groups)
			index[s.SubjectID] = i
			groups = append(groups, SubjectSamples{SubjectID: s.SubjectID})
		}
		groups[i].Samples = append(groups[i].Samples, s)
	}
	return groups
}

// SkippedSubject records a subject excluded from the table.
type SkippedSubject struct {
	SubjectID string
	Err       error
}

type skippedJSON struct {
	SubjectID string `json:"subject_id"`
	Error     string `json:"error"`
}

// MarshalJSON encodes the error as its message.
func (s SkippedSubject) MarshalJSON() ([]byte, error) {
	msg := ""
	if s.Err != nil {
		msg = s.Err.Error()
	}
	return json.Marshal(skippedJSON{SubjectID: s.SubjectID, Error: msg})
}

// UnmarshalJSON restores the error message as an opaque error.
func (s *SkippedSubject) UnmarshalJSON(data []byte) error {
	var w skippedJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.SubjectID = w.SubjectID
	s.Err = errors.New(w.Error)
	return nil
}

// Table is the cohort table: one row per subject in first-seen order.
type Table struct {
	Policy        energy.Policy    `json:"policy"`
	WindowSeconds float64          `json:"window_seconds"`
	Rows          []SubjectSummary `json:"rows"`
	Skipped       []SkippedSubject `json:"skipped,omitempty"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Row returns the row for a subject id.
func (t *Table) Row(subjectID string) (SubjectSummary, bool) {
	for _, r := range t.Rows {
		if r.SubjectID == subjectID {
			return r, true
		}
	}
	return SubjectSummary{}, false
}

// Aggregator builds a Table from raw samples.
type Aggregator struct {
	summarizer *Summarizer
	workers    int
	strict     bool
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithWorkers summarizes up to n subjects concurrently. n <= 1 means sequential.
func WithWorkers(n int) AggregatorOption {
	return func(a *Aggregator) {
		a.workers = n
	}
}

// WithStrict makes the first failing subject abort the aggregation instead of
// being recorded in Table.Skipped.
func WithStrict(strict bool) AggregatorOption {
	return func(a *Aggregator) {
		a.strict = strict
	}
}

// NewAggregator creates an aggregator around a summarizer.
func NewAggregator(s *Summarizer, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{summarizer: s, workers: 1}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type subjectResult struct {
	summary SubjectSummary
	err     error
}

// Aggregate summarizes every subject. An empty input yields an empty table.
// Row order is first-seen subject order regardless of worker count.
func (a *Aggregator) Aggregate(samples []physio.Sample) (*Table, error) {
	groups := GroupBySubject(samples)
	results := make([]subjectResult, len(groups))

	if a.workers <= 1 {
		for i, g := range groups {
			summary, err := a.summarizer.Summarize(g.Samples)
			results[i] = subjectResult{summary: summary, err: err}
			if err != nil && a.strict {
				return nil, err
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(a.workers)
		for i, group := range groups {
			g.Go(func() error {
				summary, err := a.summarizer.Summarize(group.Samples)
				results[i] = subjectResult{summary: summary, err: err}
				return nil
			})
		}
		_ = g.Wait()

		if a.strict {
			for _, r := range results {
				if r.err != nil {
					return nil, r.err
				}
			}
		}
	}

	table := &Table{
		Policy:        a.summarizer.Model().Policy(),
		WindowSeconds: a.summarizer.Options().WindowSeconds,
		Rows:          make([]SubjectSummary, 0, len(groups)),
	}
	for i, r := range results {
		if r.err != nil {
			table.Skipped = append(table.Skipped, SkippedSubject{SubjectID: groups[i].SubjectID, Err: r.err})
			continue
		}
		table.Rows = append(table.Rows, r.summary)
	}
	return table, nil
}
