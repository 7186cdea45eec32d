// internal/benchmark/report.go
package benchmark

import (
	"time"

	"github.com/mwiater/petit/internal/translate"
)

// Report is the outcome of one harness run.
type Report struct {
	StartedAt time.Time
	Elapsed   time.Duration
	Results   []translate.Result
	Failures  []Failure
	State     State
}

// Stats are the derived timing aggregates of a Report.
type Stats struct {
	Count   int
	Total   time.Duration
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
}

// Count is the number of successful results.
func (r Report) Count() int {
	return len(r.Results)
}

// Total is the sum of per-request latencies.
func (r Report) Total() time.Duration {
	var total time.Duration
	for _, res := range r.Results {
		total += res.Elapsed
	}
	return total
}

// Average is Total divided by Count, truncated to the nanosecond. It fails
// with ErrNoResults when the report holds no results.
func (r Report) Average() (time.Duration, error) {
	if len(r.Results) == 0 {
		return 0, ErrNoResults
	}
	return r.Total() / time.Duration(len(r.Results)), nil
}

// AverageSeconds is Total in seconds divided by Count, without the
// nanosecond truncation of Average.
func (r Report) AverageSeconds() (float64, error) {
	if len(r.Results) == 0 {
		return 0, ErrNoResults
	}
	return r.Total().Seconds() / float64(len(r.Results)), nil
}

// Min returns the fastest request latency, or zero for an empty report.
func (r Report) Min() time.Duration {
	return r.Stats().Min
}

// Max returns the slowest request latency, or zero for an empty report.
func (r Report) Max() time.Duration {
	return r.Stats().Max
}

// Stats computes every aggregate in one pass.
func (r Report) Stats() Stats {
	s := Stats{Count: len(r.Results)}
	if s.Count == 0 {
		return s
	}
	s.Min = r.Results[0].Elapsed
	s.Max = r.Results[0].Elapsed
	for _, res := range r.Results {
		s.Total += res.Elapsed
		if res.Elapsed < s.Min {
			s.Min = res.Elapsed
		}
		if res.Elapsed > s.Max {
			s.Max = res.Elapsed
		}
	}
	s.Average = s.Total / time.Duration(s.Count)
	return s
}
