// internal/cli/benchmark.go
package petit

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/petit/internal/appconfig"
	"github.com/mwiater/petit/internal/benchmark"
	"github.com/mwiater/petit/internal/language"
	"github.com/mwiater/petit/internal/logging"
	"github.com/mwiater/petit/internal/translate"
)

// benchmarkCmd runs the benchmark suite. It is also what the root command does.
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Run the translation benchmark suite",
	Long: `Run every case of the benchmark suite against the configured backend, one
at a time and in order, and print per-case and aggregate timing.

Cases come from --suite (TOML), --text (a single case using --src/--tgt),
or the built-in validation set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmark(cmd, GetConfig())
	},
}

func init() {
	addBenchmarkFlags(benchmarkCmd.Flags())
	rootCmd.AddCommand(benchmarkCmd)
}

func runBenchmark(cmd *cobra.Command, cfg *appconfig.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is not loaded")
	}
	out := cmd.OutOrStdout()
	printer := benchmark.NewPrinter(out, cfg.NoColor || !writerIsTerminal(out))

	cases, err := benchmarkCases(cmd, cfg)
	if err != nil {
		return err
	}

	printer.Banner("TranslateGemma Benchmark (" + cfg.Backend + ")")
	ok, err := checkModelArtifact(out, cfg)
	if err != nil || !ok {
		return err
	}

	fmt.Fprintf(out, "\nLoading model %s...\n", cfg.ModelName())
	completer, err := prepareBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Model loaded successfully")

	h := &benchmark.Harness{
		Runner: &translate.Runner{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Stop:        cfg.Stop,
		},
		WarmupRuns: cfg.WarmupRuns,
		Iterations: cfg.Iterations,
		FailFast:   cfg.FailFast,
		OnStart:    func(_ int, req translate.Request) { printer.CaseStart(req) },
		OnResult:   func(_ int, res translate.Result) { printer.CaseResult(res) },
		OnFailure:  printer.CaseFailure,
	}

	fmt.Fprintln(out)
	printer.Banner("Translation Tests")
	report, runErr := h.RunAll(cmd.Context(), completer, cases)
	printer.Summary(report)

	if cfg.ExportPath != "" {
		path, err := benchmark.WriteJSON(cfg.ExportPath, benchmark.NewExport(report, cfg.ModelName(), cfg.Backend))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nResults written to %s\n", path)
	}
	if cfg.MetricsFile != "" {
		if err := getMetrics().WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if runErr != nil {
		logging.Warn("benchmark finished with %d failure(s)", len(report.Failures))
		return fmt.Errorf("benchmark %s: %w", report.State, runErr)
	}
	return nil
}

func benchmarkCases(cmd *cobra.Command, cfg *appconfig.Config) ([]translate.Request, error) {
	var cases []translate.Request
	text, _ := cmd.Flags().GetString("text")
	switch {
	case strings.TrimSpace(text) != "":
		cases = []translate.Request{{Text: text, SourceLang: cfg.SourceLang, TargetLang: cfg.TargetLang}}
	case cfg.Suite != "":
		loaded, err := benchmark.LoadSuite(cfg.Suite)
		if err != nil {
			return nil, err
		}
		cases = loaded
	default:
		cases = benchmark.DefaultCases()
	}

	if cfg.ValidateSuite {
		for i, c := range cases {
			if err := language.ValidatePair(c.SourceLang, c.TargetLang); err != nil {
				return nil, fmt.Errorf("case %d: %w", i+1, err)
			}
		}
	}
	return cases, nil
}

func writerIsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
