// internal/benchmark/print.go
package benchmark

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/mwiater/petit/internal/translate"
)

const rule = "============================================================"

// Printer writes the console report as a run progresses.
type Printer struct {
	out     io.Writer
	noColor bool
	title   lipgloss.Style
	label   lipgloss.Style
	fail    *color.Color
}

// NewPrinter returns a Printer writing to out. Styling is dropped entirely
// when noColor is set.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	r := lipgloss.NewRenderer(out)
	fail := color.New(color.FgRed, color.Bold)
	if noColor {
		fail.DisableColor()
	}
	return &Printer{
		out:     out,
		noColor: noColor,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:   r.NewStyle().Foreground(lipgloss.Color("8")),
		fail:    fail,
	}
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if p.noColor {
		return text
	}
	return s.Render(text)
}

// Banner prints title between two horizontal rules.
func (p *Printer) Banner(title string) {
	fmt.Fprintln(p.out, rule)
	fmt.Fprintln(p.out, p.style(p.title, title))
	fmt.Fprintln(p.out, rule)
}

// CaseStart prints the direction and input of a request before it runs.
func (p *Printer) CaseStart(req translate.Request) {
	fmt.Fprintf(p.out, "\n[%s -> %s]\n", req.SourceLang, req.TargetLang)
	fmt.Fprintf(p.out, "  %s  %s\n", p.style(p.label, "Input:"), req.Text)
}

// CaseResult prints the output and latency of a finished request.
func (p *Printer) CaseResult(res translate.Result) {
	fmt.Fprintf(p.out, "  %s %s\n", p.style(p.label, "Output:"), res.OutputText)
	fmt.Fprintf(p.out, "  %s   %.2fs\n", p.style(p.label, "Time:"), res.ElapsedSeconds())
}

// CaseFailure prints the error of a failed request.
func (p *Printer) CaseFailure(f Failure) {
	p.fail.Fprintf(p.out, "  Error:  %v\n", f.Err)
}

// Summary prints the aggregate section of the report.
func (p *Printer) Summary(report Report) {
	fmt.Fprintln(p.out)
	p.Banner("Summary")
	stats := report.Stats()
	fmt.Fprintf(p.out, "Total tests: %d\n", stats.Count)
	if avg, err := report.AverageSeconds(); err == nil {
		fmt.Fprintf(p.out, "Average time: %.2fs\n", avg)
	} else {
		fmt.Fprintln(p.out, "Average time: n/a")
	}
	fmt.Fprintf(p.out, "Total time: %.2fs\n", stats.Total.Seconds())
	if stats.Count > 1 {
		fmt.Fprintf(p.out, "Fastest: %.2fs  Slowest: %.2fs\n", stats.Min.Seconds(), stats.Max.Seconds())
	}
	if len(report.Failures) > 0 {
		p.fail.Fprintf(p.out, "Failed tests: %d\n", len(report.Failures))
		for _, f := range report.Failures {
			p.fail.Fprintf(p.out, "  - %s\n", strings.TrimSpace(f.Error()))
		}
	}
}
