package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the current configuration summary. When verbose is set
// the full struct is dumped as well.
func ShowConfig(out io.Writer, file string, cfg *Config, verbose bool) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		fallback := Defaults()
		cfg = &fallback
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Backend:          %s\n", cfg.Backend)
	fmt.Fprintf(out, "  URL:              %s\n", cfg.URL)
	fmt.Fprintf(out, "  Model:            %s\n", cfg.ModelName())
	fmt.Fprintf(out, "  Model Path:       %s\n", cfg.ModelPath)
	fmt.Fprintf(out, "  Max Tokens:       %d\n", cfg.MaxTokens)
	fmt.Fprintf(out, "  Temperature:      %v\n", cfg.Temperature)
	fmt.Fprintf(out, "  Stop Markers:     %q\n", cfg.Stop)
	fmt.Fprintf(out, "  Request Timeout:  %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Languages:        %s -> %s\n", cfg.SourceLang, cfg.TargetLang)
	fmt.Fprintf(out, "  Suite:            %s\n", suiteLabel(cfg.Suite))
	fmt.Fprintf(out, "  Warmup Runs:      %d\n", cfg.WarmupRuns)
	fmt.Fprintf(out, "  Iterations:       %d\n", cfg.Iterations)
	fmt.Fprintf(out, "  Fail Fast:        %v\n", cfg.FailFast)
	fmt.Fprintf(out, "  Validate Suite:   %v\n", cfg.ValidateSuite)
	fmt.Fprintf(out, "  Export JSON:      %s\n", cfg.ExportPath)
	fmt.Fprintf(out, "  Metrics File:     %s\n", cfg.MetricsFile)
	fmt.Fprintf(out, "  Log File:         %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Debug:            %v\n", cfg.Debug)

	if verbose {
		fmt.Fprintln(out)
		_, _ = pp.Fprintln(out, *cfg)
	}
}

func suiteLabel(path string) string {
	if path == "" {
		return "(built-in)"
	}
	return path
}
