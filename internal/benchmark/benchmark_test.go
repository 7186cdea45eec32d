package benchmark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/petit/internal/providers"
	"github.com/mwiater/petit/internal/translate"
)

// scripted answers each prompt with the next entry of outputs; entries that
// are errors fail that call.
type scripted struct {
	outputs []any
	calls   int
	prompts []string
}

func (s *scripted) Complete(ctx context.Context, prompt string, opts providers.Options) (string, error) {
	s.prompts = append(s.prompts, prompt)
	item := s.outputs[s.calls%len(s.outputs)]
	s.calls++
	time.Sleep(time.Millisecond)
	switch v := item.(type) {
	case error:
		return "", v
	default:
		return v.(string), nil
	}
}

func threeCases() []translate.Request {
	return []translate.Request{
		{Text: "one", SourceLang: "en", TargetLang: "fr"},
		{Text: "two", SourceLang: "en", TargetLang: "de"},
		{Text: "three", SourceLang: "en", TargetLang: "es"},
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Model:One":       "model_one",
		"  Model Two  ":   "model-two",
		"Model--Three!!":  "model-three",
		"__Mixed__Case__": "mixed__case",
		"!!!":             "benchmark",
	}
	for input, expected := range cases {
		if got := Slugify(input); got != expected {
			t.Fatalf("Slugify(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestRunAllEmpty(t *testing.T) {
	var h Harness
	report, err := h.RunAll(context.Background(), &scripted{outputs: []any{"x"}}, nil)
	if !errors.Is(err, ErrNoRequests) {
		t.Fatalf("expected ErrNoRequests, got %v", err)
	}
	if report.Count() != 0 {
		t.Fatalf("expected empty report, got %d results", report.Count())
	}
	if _, err := report.Average(); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
	if _, err := report.AverageSeconds(); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
	if h.State() != Failed {
		t.Fatalf("expected harness state failed, got %s", h.State())
	}
}

func TestRunAllInOrder(t *testing.T) {
	stub := &scripted{outputs: []any{" un ", "zwei<end_of_turn>", "tres"}}
	var started, finished []int
	h := Harness{
		OnStart:  func(i int, req translate.Request) { started = append(started, i) },
		OnResult: func(i int, res translate.Result) { finished = append(finished, i) },
	}

	report, err := h.RunAll(context.Background(), stub, threeCases())
	if err != nil {
		t.Fatalf("RunAll error: %v", err)
	}
	if report.State != Completed || h.State() != Completed {
		t.Fatalf("expected completed state, got %v / %v", report.State, h.State())
	}
	if report.Count() != 3 || stub.calls != 3 {
		t.Fatalf("expected 3 results and 3 calls, got %d / %d", report.Count(), stub.calls)
	}
	for i, want := range []string{"one", "two", "three"} {
		if report.Results[i].InputText != want {
			t.Fatalf("result %d out of order: %+v", i, report.Results[i])
		}
		if !strings.Contains(stub.prompts[i], want) {
			t.Fatalf("prompt %d out of order: %q", i, stub.prompts[i])
		}
	}
	if report.Results[0].OutputText != "un" {
		t.Fatalf("expected trimmed output, got %q", report.Results[0].OutputText)
	}
	if len(started) != 3 || len(finished) != 3 || started[2] != 2 || finished[2] != 2 {
		t.Fatalf("unexpected callbacks: %v %v", started, finished)
	}

	avg, err := report.Average()
	if err != nil {
		t.Fatalf("Average error: %v", err)
	}
	if avg != report.Total()/time.Duration(report.Count()) {
		t.Fatalf("average %v != total %v / count %d", avg, report.Total(), report.Count())
	}
	if report.Min() > avg || report.Max() < avg {
		t.Fatalf("min/avg/max inconsistent: %v %v %v", report.Min(), avg, report.Max())
	}
}

func TestRunAllKeepsPartialResults(t *testing.T) {
	backendErr := errors.New("out of memory")
	stub := &scripted{outputs: []any{"un", backendErr, "tres"}}
	var failures []Failure
	h := Harness{OnFailure: func(f Failure) { failures = append(failures, f) }}

	report, err := h.RunAll(context.Background(), stub, threeCases())
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected joined backend error, got %v", err)
	}
	if report.State != Failed {
		t.Fatalf("expected failed state, got %v", report.State)
	}
	if report.Count() != 2 || report.Results[0].OutputText != "un" || report.Results[1].OutputText != "tres" {
		t.Fatalf("expected partial results kept, got %+v", report.Results)
	}
	if len(report.Failures) != 1 || report.Failures[0].Index != 1 || report.Failures[0].Request.Text != "two" {
		t.Fatalf("unexpected failures: %+v", report.Failures)
	}
	if len(failures) != 1 {
		t.Fatalf("expected OnFailure once, got %d", len(failures))
	}
}

func TestRunAllFailFast(t *testing.T) {
	backendErr := errors.New("corrupt file")
	stub := &scripted{outputs: []any{"un", backendErr, "tres"}}
	h := Harness{FailFast: true}

	report, err := h.RunAll(context.Background(), stub, threeCases())
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("expected run to stop after failure, got %d calls", stub.calls)
	}
	if report.Count() != 1 || len(report.Failures) != 1 {
		t.Fatalf("expected one result and one failure, got %+v", report)
	}
}

func TestRunAllWarmupAndIterations(t *testing.T) {
	stub := &scripted{outputs: []any{"ok"}}
	h := Harness{WarmupRuns: 2, Iterations: 2}

	report, err := h.RunAll(context.Background(), stub, threeCases())
	if err != nil {
		t.Fatalf("RunAll error: %v", err)
	}
	if stub.calls != 2+2*3 {
		t.Fatalf("expected 8 backend calls, got %d", stub.calls)
	}
	if report.Count() != 6 {
		t.Fatalf("expected warmup runs to be unmeasured, got %d results", report.Count())
	}
}

func TestRunAllWarmupFailure(t *testing.T) {
	backendErr := errors.New("model not found")
	stub := &scripted{outputs: []any{backendErr}}
	h := Harness{WarmupRuns: 1}

	report, err := h.RunAll(context.Background(), stub, threeCases())
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected warmup error, got %v", err)
	}
	if stub.calls != 1 || report.Count() != 0 {
		t.Fatalf("expected run to stop after warmup, calls=%d results=%d", stub.calls, report.Count())
	}
}

func TestRunAllCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub := &scripted{outputs: []any{"ok"}}
	var h Harness

	_, err := h.RunAll(ctx, stub, threeCases())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no backend calls, got %d", stub.calls)
	}
}

func TestReportStats(t *testing.T) {
	report := Report{Results: []translate.Result{
		{Elapsed: 2 * time.Second},
		{Elapsed: 1 * time.Second},
		{Elapsed: 3 * time.Second},
	}}

	stats := report.Stats()
	if stats.Min != time.Second || stats.Max != 3*time.Second || stats.Average != 2*time.Second || stats.Total != 6*time.Second {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if (Report{}).Min() != 0 || (Report{}).Max() != 0 {
		t.Fatal("expected zero bounds for an empty report")
	}
}

func TestAverageSecondsIsExact(t *testing.T) {
	report := Report{Results: []translate.Result{{Elapsed: 1}, {Elapsed: 1}, {Elapsed: 2}}}
	got, err := report.AverageSeconds()
	if err != nil {
		t.Fatalf("AverageSeconds error: %v", err)
	}
	want := report.Total().Seconds() / 3
	if got != want {
		t.Fatalf("AverageSeconds = %g, want %g", got, want)
	}
	if avg, _ := report.Average(); avg != time.Nanosecond {
		t.Fatalf("Average truncates to the nanosecond, got %v", avg)
	}
	if exp := NewExport(report, "m", "llamacpp"); exp.AverageSeconds != want {
		t.Fatalf("export average = %g, want %g", exp.AverageSeconds, want)
	}
}

func TestStateString(t *testing.T) {
	if NotStarted.String() != "not started" || Failed.String() != "failed" {
		t.Fatalf("unexpected state names: %s %s", NotStarted, Failed)
	}
}

func TestPrinterFormat(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	req := translate.Request{Text: "Hello, how are you?", SourceLang: "en", TargetLang: "fr"}
	res := translate.Result{SourceLang: "en", TargetLang: "fr", InputText: req.Text, OutputText: "Bonjour, comment ca va?", Elapsed: 1234 * time.Millisecond}
	p.Banner("Translation Tests")
	p.CaseStart(req)
	p.CaseResult(res)
	p.Summary(Report{Results: []translate.Result{res}})

	want := strings.Join([]string{
		rule,
		"Translation Tests",
		rule,
		"",
		"[en -> fr]",
		"  Input:  Hello, how are you?",
		"  Output: Bonjour, comment ca va?",
		"  Time:   1.23s",
		"",
		rule,
		"Summary",
		rule,
		"Total tests: 1",
		"Average time: 1.23s",
		"Total time: 1.23s",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrinterSummaryWithFailures(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	p.Summary(Report{Failures: []Failure{{Index: 0, Request: translate.Request{SourceLang: "en", TargetLang: "ja"}, Err: errors.New("boom")}}})

	out := buf.String()
	for _, want := range []string{"Total tests: 0", "Average time: n/a", "Failed tests: 1", "case 1 [en -> ja]: boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary, got:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	report := Report{
		StartedAt: started,
		State:     Failed,
		Results:   []translate.Result{{SourceLang: "en", TargetLang: "fr", InputText: "Hi", OutputText: "Salut", Elapsed: 500 * time.Millisecond}},
		Failures:  []Failure{{Index: 1, Request: translate.Request{Text: "Bye", SourceLang: "en", TargetLang: "de"}, Err: errors.New("boom")}},
	}

	written, err := WriteJSON(dir+string(filepath.Separator), NewExport(report, "translategemma:12b", "llamacpp"))
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if filepath.Base(written) != "translategemma_12b-20250301T120000Z.json" {
		t.Fatalf("unexpected file name: %s", written)
	}

	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	var decoded Export
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if decoded.Count != 1 || decoded.State != "failed" || decoded.AverageSeconds != 0.5 {
		t.Fatalf("unexpected aggregates: %+v", decoded)
	}
	if len(decoded.Failures) != 1 || decoded.Failures[0].Error != "boom" || decoded.Failures[0].Input != "Bye" {
		t.Fatalf("unexpected failures: %+v", decoded.Failures)
	}

	explicit := filepath.Join(dir, "nested", "run.json")
	if got, err := WriteJSON(explicit, NewExport(report, "m", "ollama")); err != nil || got != explicit {
		t.Fatalf("WriteJSON explicit path: %q %v", got, err)
	}
}

func TestLoadSuite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.toml")
	body := `
[defaults]
src = "en"
max_tokens = 64

[[case]]
text = "Hello"
tgt = "fr"

[[case]]
text = "Hallo"
src = "de"
tgt = "en"
max_tokens = 32
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}

	cases, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("LoadSuite error: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0] != (translate.Request{Text: "Hello", SourceLang: "en", TargetLang: "fr", MaxTokens: 64}) {
		t.Fatalf("defaults not applied: %+v", cases[0])
	}
	if cases[1] != (translate.Request{Text: "Hallo", SourceLang: "de", TargetLang: "en", MaxTokens: 32}) {
		t.Fatalf("explicit values overridden: %+v", cases[1])
	}
}

func TestLoadSuiteErrors(t *testing.T) {
	cases := map[string]string{
		"empty":        `[defaults]` + "\n" + `src = "en"`,
		"missing tgt":  `[[case]]` + "\n" + `text = "x"` + "\n" + `src = "en"`,
		"missing text": `[[case]]` + "\n" + `src = "en"` + "\n" + `tgt = "fr"`,
		"unknown key":  `[[case]]` + "\n" + `text = "x"` + "\n" + `src = "en"` + "\n" + `tgt = "fr"` + "\n" + `lang = "x"`,
		"bad toml":     `[[case]`,
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "suite.toml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write suite: %v", err)
		}
		if _, err := LoadSuite(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadSuite(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadSuiteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yml")
	body := `defaults:
  tgt: ja
case:
  - text: Good morning.
    src: en
  - text: Guten Morgen.
    src: de
    tgt: en
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}

	cases, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("LoadSuite error: %v", err)
	}
	want := []translate.Request{
		{Text: "Good morning.", SourceLang: "en", TargetLang: "ja"},
		{Text: "Guten Morgen.", SourceLang: "de", TargetLang: "en"},
	}
	if len(cases) != len(want) || cases[0] != want[0] || cases[1] != want[1] {
		t.Fatalf("unexpected cases: %+v", cases)
	}

	for name, body := range map[string]string{
		"empty":       "",
		"unknown key": "case:\n  - text: x\n    src: en\n    tgt: fr\n    lang: x\n",
	} {
		bad := filepath.Join(t.TempDir(), "suite.yaml")
		if err := os.WriteFile(bad, []byte(body), 0o644); err != nil {
			t.Fatalf("write suite: %v", err)
		}
		if _, err := LoadSuite(bad); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDefaultCases(t *testing.T) {
	cases := DefaultCases()
	if len(cases) != 7 {
		t.Fatalf("expected 7 built-in cases, got %d", len(cases))
	}
	if cases[0].Text != "Hello, how are you?" || cases[0].TargetLang != "fr" {
		t.Fatalf("unexpected first case: %+v", cases[0])
	}
	cases[0].Text = "mutated"
	if DefaultCases()[0].Text == "mutated" {
		t.Fatal("DefaultCases must return a fresh slice")
	}
}
