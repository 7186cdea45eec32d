// internal/benchmark/harness.go
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mwiater/petit/internal/logging"
	"github.com/mwiater/petit/internal/providers"
	"github.com/mwiater/petit/internal/translate"
	"github.com/mwiater/petit/internal/util"
)

var (
	// ErrNoRequests is returned by RunAll when it is given nothing to run.
	ErrNoRequests = errors.New("benchmark: no requests to run")
	// ErrNoResults is returned by aggregates that are undefined for an empty report.
	ErrNoResults = errors.New("benchmark: no successful results")
)

// State is the lifecycle of a harness run.
type State int

const (
	NotStarted State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Failure records a request that did not produce a result.
type Failure struct {
	Index     int
	Iteration int
	Request   translate.Request
	Err       error
}

func (f Failure) Error() string {
	return fmt.Sprintf("case %d [%s -> %s]: %v", f.Index+1, f.Request.SourceLang, f.Request.TargetLang, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Harness runs a list of requests one after another against a single backend.
type Harness struct {
	Runner *translate.Runner
	// WarmupRuns sends the first request this many times before measuring.
	WarmupRuns int
	// Iterations repeats the whole list; values below 1 mean one pass.
	Iterations int
	// FailFast stops at the first failed request.
	FailFast bool

	OnStart   func(index int, req translate.Request)
	OnResult  func(index int, res translate.Result)
	OnFailure func(f Failure)

	mu    sync.Mutex
	state State
}

// State reports where the most recent run is in its lifecycle.
func (h *Harness) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Harness) setState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// RunAll runs every request in order, never more than one at a time.
// Results collected before a failure are kept: the returned Report always
// holds every successful result, and the error joins every Failure.
func (h *Harness) RunAll(ctx context.Context, c providers.Completer, reqs []translate.Request) (Report, error) {
	if len(reqs) == 0 {
		h.setState(Failed)
		return Report{State: Failed}, ErrNoRequests
	}

	runner := h.Runner
	if runner == nil {
		runner = &translate.Runner{}
	}
	iterations := h.Iterations
	if iterations < 1 {
		iterations = 1
	}

	report := Report{StartedAt: time.Now()}
	h.setState(Running)

	for i := 0; i < h.WarmupRuns; i++ {
		logging.Debug("warmup %d/%d", i+1, h.WarmupRuns)
		if _, err := runner.Run(ctx, c, reqs[0]); err != nil {
			f := Failure{Index: 0, Request: reqs[0], Err: fmt.Errorf("warmup: %w", err)}
			return h.finish(report, f)
		}
	}

	for iter := 1; iter <= iterations; iter++ {
		for i, req := range reqs {
			if err := ctx.Err(); err != nil {
				return h.finish(report, Failure{Index: i, Iteration: iter, Request: req, Err: err})
			}
			if h.OnStart != nil {
				h.OnStart(i, req)
			}

			res, err := runner.Run(ctx, c, req)
			if err != nil {
				f := Failure{Index: i, Iteration: iter, Request: req, Err: err}
				logging.Warn("%v", f)
				if h.OnFailure != nil {
					h.OnFailure(f)
				}
				if h.FailFast {
					return h.finish(report, f)
				}
				report.Failures = append(report.Failures, f)
				continue
			}

			logging.LogEvent("case %d [%s -> %s] %.2fs %q", i+1, res.SourceLang, res.TargetLang, res.ElapsedSeconds(), util.TruncateRunes(util.OneLine(res.OutputText), 80))
			report.Results = append(report.Results, res)
			if h.OnResult != nil {
				h.OnResult(i, res)
			}
		}
	}

	return h.finish(report)
}

func (h *Harness) finish(report Report, extra ...Failure) (Report, error) {
	report.Failures = append(report.Failures, extra...)
	report.Elapsed = time.Since(report.StartedAt)
	if len(report.Failures) == 0 {
		report.State = Completed
		h.setState(Completed)
		return report, nil
	}

	report.State = Failed
	h.setState(Failed)
	errs := make([]error, len(report.Failures))
	for i, f := range report.Failures {
		errs[i] = f
	}
	return report, errors.Join(errs...)
}
