// internal/metrics/metrics_test.go
package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mwiater/petit/internal/providers"
)

func TestProviderRecordsOutcomes(t *testing.T) {
	agg := NewAggregator()
	backendErr := errors.New("out of memory")

	responses := []struct {
		out string
		err error
	}{
		{out: "Bonjour", err: nil},
		{out: "Hola", err: nil},
		{err: backendErr},
		{err: fmt.Errorf("llama.cpp: %w", providers.ErrMalformedOutput)},
		{err: context.DeadlineExceeded},
	}
	call := 0
	stub := providers.CompleterFunc(func(ctx context.Context, prompt string, opts providers.Options) (string, error) {
		r := responses[call]
		call++
		return r.out, r.err
	})

	p := NewProvider(stub, agg)
	for i := range responses {
		out, err := p.Complete(context.Background(), "prompt", providers.Options{})
		if out != responses[i].out || err != responses[i].err {
			t.Fatalf("call %d: decorator altered result: %q %v", i, out, err)
		}
	}

	cases := map[string]float64{
		OutcomeSuccess:   2,
		OutcomeError:     1,
		OutcomeMalformed: 1,
		OutcomeCanceled:  1,
	}
	for outcome, want := range cases {
		if got := testutil.ToFloat64(agg.completions.WithLabelValues(outcome)); got != want {
			t.Fatalf("outcome %s: got %v, want %v", outcome, got, want)
		}
	}
	if n := testutil.CollectAndCount(agg.duration, "petit_completion_duration_seconds"); n != 1 {
		t.Fatalf("expected one duration series, got %d", n)
	}
}

func TestProviderPassesErrorsThrough(t *testing.T) {
	backendErr := errors.New("boom")
	stub := providers.CompleterFunc(func(ctx context.Context, prompt string, opts providers.Options) (string, error) {
		return "", backendErr
	})
	_, err := NewProvider(stub, nil).Complete(context.Background(), "p", providers.Options{})
	if err != backendErr {
		t.Fatalf("expected identical error, got %v", err)
	}
}

func TestEnsureModelReadyWithoutPreparer(t *testing.T) {
	stub := providers.CompleterFunc(func(ctx context.Context, prompt string, opts providers.Options) (string, error) {
		return "", nil
	})
	if err := NewProvider(stub, NewAggregator()).EnsureModelReady(context.Background()); err != nil {
		t.Fatalf("expected nil for completer without preparer, got %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	agg := NewAggregator()
	agg.Record(0.42, OutcomeSuccess, "Guten Tag")
	agg.Record(1.5, OutcomeError, "")

	path := filepath.Join(t.TempDir(), "petit.prom")
	if err := agg.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		`petit_completions_total{outcome="success"} 1`,
		`petit_completions_total{outcome="error"} 1`,
		"petit_completion_duration_seconds_count 2",
		"petit_output_chars_count 1",
		"petit_output_chars_sum 9",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in textfile, got:\n%s", want, content)
		}
	}
}
