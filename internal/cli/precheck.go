// internal/cli/precheck.go
package petit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mwiater/petit/internal/appconfig"
	"github.com/mwiater/petit/internal/artifact"
	"github.com/mwiater/petit/internal/logging"
	"github.com/mwiater/petit/internal/providers"
)

// checkModelArtifact verifies the configured model file before any backend
// traffic. It reports a missing file on out and returns false; an empty
// modelPath disables the check.
func checkModelArtifact(out io.Writer, cfg *appconfig.Config) (bool, error) {
	if strings.TrimSpace(cfg.ModelPath) == "" {
		logging.Debug("modelPath empty: skipping artifact check")
		return true, nil
	}
	info, err := checkArtifact(cfg.ModelPath)
	if err != nil {
		var missing *artifact.MissingArtifactError
		if errors.As(err, &missing) {
			fmt.Fprintf(out, "ERROR: Model not found at %s\n", missing.Path)
			logging.Warn("model artifact missing: %s", missing.Path)
			return false, nil
		}
		return false, err
	}
	logging.LogEvent("model artifact %s (%d bytes)", info.Path, info.Size)
	return true, nil
}

// prepareBackend builds the configured completer and loads the model when
// the backend supports it.
func prepareBackend(ctx context.Context, cfg *appconfig.Config) (providers.Completer, error) {
	completer, err := newCompleter(cfg)
	if err != nil {
		return nil, err
	}
	if preparer, ok := completer.(providers.Preparer); ok {
		if err := preparer.EnsureModelReady(ctx); err != nil {
			return nil, fmt.Errorf("load model %s: %w", cfg.ModelName(), err)
		}
	}
	return completer, nil
}
