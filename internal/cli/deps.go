// internal/cli/deps.go
package petit

import (
	"os"

	"golang.org/x/term"

	"github.com/mwiater/petit/internal/artifact"
	"github.com/mwiater/petit/internal/metrics"
	"github.com/mwiater/petit/internal/providerfactory"
	"github.com/mwiater/petit/internal/tui"
)

// Seams replaced in tests.
var (
	newCompleter    = providerfactory.NewCompleter
	checkArtifact   = artifact.Check
	inspectArtifact = artifact.Inspect
	runInteractive  = tui.Run
	getMetrics      = metrics.GetInstance
	stdin           = func() *os.File { return os.Stdin }
	isTerminal      = func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }
)
