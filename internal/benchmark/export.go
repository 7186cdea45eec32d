// internal/benchmark/export.go
package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mwiater/petit/internal/logging"
)

// Export is the JSON document written by WriteJSON.
type Export struct {
	Model          string         `json:"model"`
	Backend        string         `json:"backend"`
	StartedAt      time.Time      `json:"startedAt"`
	State          string         `json:"state"`
	Count          int            `json:"count"`
	TotalSeconds   float64        `json:"totalSeconds"`
	AverageSeconds float64        `json:"averageSeconds"`
	MinSeconds     float64        `json:"minSeconds"`
	MaxSeconds     float64        `json:"maxSeconds"`
	Results        []ExportResult `json:"results"`
	Failures       []ExportError  `json:"failures,omitempty"`
}

// ExportResult is one successful case in an Export.
type ExportResult struct {
	SourceLang     string  `json:"sourceLang"`
	TargetLang     string  `json:"targetLang"`
	Input          string  `json:"input"`
	Output         string  `json:"output"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// ExportError is one failed case in an Export.
type ExportError struct {
	Index      int    `json:"index"`
	Iteration  int    `json:"iteration,omitempty"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
	Input      string `json:"input"`
	Error      string `json:"error"`
}

// NewExport flattens a Report for serialization.
func NewExport(report Report, model, backend string) Export {
	stats := report.Stats()
	avg, _ := report.AverageSeconds()
	exp := Export{
		Model:          model,
		Backend:        backend,
		StartedAt:      report.StartedAt,
		State:          report.State.String(),
		Count:          stats.Count,
		TotalSeconds:   stats.Total.Seconds(),
		AverageSeconds: avg,
		MinSeconds:     stats.Min.Seconds(),
		MaxSeconds:     stats.Max.Seconds(),
		Results:        make([]ExportResult, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		exp.Results = append(exp.Results, ExportResult{
			SourceLang:     res.SourceLang,
			TargetLang:     res.TargetLang,
			Input:          res.InputText,
			Output:         res.OutputText,
			ElapsedSeconds: res.ElapsedSeconds(),
		})
	}
	for _, f := range report.Failures {
		exp.Failures = append(exp.Failures, ExportError{
			Index:      f.Index,
			Iteration:  f.Iteration,
			SourceLang: f.Request.SourceLang,
			TargetLang: f.Request.TargetLang,
			Input:      f.Request.Text,
			Error:      f.Err.Error(),
		})
	}
	return exp
}

// WriteJSON writes exp to path. When path is an existing directory or ends
// in a separator, a file named after the model and start time is created
// inside it. The written file name is returned.
func WriteJSON(path string, exp Export) (string, error) {
	if isDirTarget(path) {
		name := fmt.Sprintf("%s-%s.json", Slugify(exp.Model), exp.StartedAt.UTC().Format("20060102T150405Z"))
		path = filepath.Join(path, name)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("error creating results directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating result file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(exp); err != nil {
		return "", fmt.Errorf("error writing results to file: %w", err)
	}

	logging.LogEvent("Benchmark results written to %s", path)
	return path, nil
}

func isDirTarget(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9_]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a string into a "slug" format,
// including replacing colons (:) with underscores (_).
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ":", "_")
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")
	if s == "" {
		return "benchmark"
	}
	return s
}
