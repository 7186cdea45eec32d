// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"
	"strings"

	"github.com/mwiater/petit/internal/appconfig"
	"github.com/mwiater/petit/internal/logging"
	"github.com/mwiater/petit/internal/metrics"
	"github.com/mwiater/petit/internal/providers"
	"github.com/mwiater/petit/internal/providers/llamacpp"
	"github.com/mwiater/petit/internal/providers/ollama"
)

// NewCompleter selects and configures the completion backend named by the
// configuration and wraps it with metrics collection if enabled.
func NewCompleter(cfg *appconfig.Config) (providers.Completer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	backend, err := normalizeBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	var completer providers.Completer
	switch backend {
	case appconfig.BackendOllama:
		completer = ollama.New(cfg)
	default:
		completer = llamacpp.New(cfg)
	}
	logging.LogEvent("backend ready: %s at %s (model %s)", backend, cfg.URL, cfg.ModelName())

	if cfg.Metrics || strings.TrimSpace(cfg.MetricsFile) != "" {
		completer = metrics.NewProvider(completer, metrics.GetInstance())
	}

	return completer, nil
}

func normalizeBackend(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", appconfig.BackendLlamaCpp, "llama.cpp", "llama-cpp":
		return appconfig.BackendLlamaCpp, nil
	case appconfig.BackendOllama:
		return appconfig.BackendOllama, nil
	default:
		return "", fmt.Errorf("unsupported backend type %q", value)
	}
}
