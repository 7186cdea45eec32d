// Package translate runs single translation requests against a completion
// backend and measures how long each one takes.
package translate

import (
	"context"
	"strings"
	"time"

	"github.com/mwiater/petit/internal/prompt"
	"github.com/mwiater/petit/internal/providers"
)

// DefaultMaxTokens is the generation cap used when a request does not set one.
const DefaultMaxTokens = 256

// Request is one piece of text to translate.
type Request struct {
	Text       string `json:"text" toml:"text" yaml:"text"`
	SourceLang string `json:"sourceLang" toml:"src" yaml:"src"`
	TargetLang string `json:"targetLang" toml:"tgt" yaml:"tgt"`
	MaxTokens  int    `json:"maxTokens,omitempty" toml:"max_tokens" yaml:"max_tokens"`
}

// Result is the outcome of a successful Request.
type Result struct {
	SourceLang string        `json:"sourceLang"`
	TargetLang string        `json:"targetLang"`
	InputText  string        `json:"input"`
	OutputText string        `json:"output"`
	Elapsed    time.Duration `json:"elapsedNs"`
}

// ElapsedSeconds returns the request latency in seconds.
func (r Result) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// Runner holds the generation settings shared by every request it runs.
// The zero value uses DefaultMaxTokens, temperature 0 and the Gemma stop markers.
type Runner struct {
	MaxTokens   int
	Temperature float64
	Stop        []string

	now func() time.Time
}

// Run builds the prompt for req, sends exactly one completion to c and
// returns the trimmed output with the wall-clock time the call took.
// Errors from c are returned unchanged.
func (r *Runner) Run(ctx context.Context, c providers.Completer, req Request) (Result, error) {
	p := prompt.Build(req.Text, req.SourceLang, req.TargetLang)
	opts := r.options(req)

	now := r.now
	if now == nil {
		now = time.Now
	}

	start := now()
	out, err := c.Complete(ctx, p, opts)
	elapsed := now().Sub(start)
	if err != nil {
		return Result{}, err
	}
	if elapsed < 0 {
		elapsed = 0
	}

	return Result{
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		InputText:  req.Text,
		OutputText: strings.TrimSpace(out),
		Elapsed:    elapsed,
	}, nil
}

func (r *Runner) options(req Request) providers.Options {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = r.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	stop := r.Stop
	if len(stop) == 0 {
		stop = prompt.DefaultStopMarkers()
	}
	return providers.Options{
		MaxTokens:   maxTokens,
		Temperature: r.Temperature,
		Stop:        append([]string(nil), stop...),
	}
}
