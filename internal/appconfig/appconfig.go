// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// DefaultModelPath is where the quantized TranslateGemma artifact is expected.
	DefaultModelPath = "models/translategemma-12b-it-GGUF/translategemma-12b-it.Q8_0.gguf"
	// DefaultURL is the llama.cpp server address used when none is configured.
	DefaultURL = "http://localhost:8080"
	// DefaultMaxTokens caps the number of generated tokens per translation.
	DefaultMaxTokens = 256
	// defaultRequestTimeout is the default timeout for HTTP requests.
	defaultRequestTimeout = 600 * time.Second
)

// Backend type identifiers accepted in the "backend" key.
const (
	BackendLlamaCpp = "llamacpp"
	BackendOllama   = "ollama"
)

// Config represents the top-level application configuration.
type Config struct {
	Backend           string   `json:"backend" mapstructure:"backend"`
	URL               string   `json:"url" mapstructure:"url"`
	Model             string   `json:"model,omitempty" mapstructure:"model"`
	ModelPath         string   `json:"modelPath" mapstructure:"modelPath"`
	MaxTokens         int      `json:"maxTokens" mapstructure:"maxTokens"`
	Temperature       float64  `json:"temperature" mapstructure:"temperature"`
	Stop              []string `json:"stop,omitempty" mapstructure:"stop"`
	TimeoutSeconds    int      `json:"timeout,omitempty" mapstructure:"timeout"`
	SourceLang        string   `json:"sourceLang" mapstructure:"sourceLang"`
	TargetLang        string   `json:"targetLang" mapstructure:"targetLang"`
	Suite             string   `json:"suite,omitempty" mapstructure:"suite"`
	WarmupRuns        int      `json:"warmupRuns" mapstructure:"warmupRuns"`
	Iterations        int      `json:"iterations" mapstructure:"iterations"`
	FailFast          bool     `json:"failFast" mapstructure:"failFast"`
	ExportPath        string   `json:"export,omitempty" mapstructure:"export"`
	MetricsFile       string   `json:"metricsFile,omitempty" mapstructure:"metricsFile"`
	Metrics           bool     `json:"metrics" mapstructure:"metrics"`
	ValidateLanguages bool     `json:"validateLanguages" mapstructure:"validateLanguages"`
	ValidateSuite     bool     `json:"validateSuite" mapstructure:"validateSuite"`
	LogFile           string   `json:"logFile,omitempty" mapstructure:"logFile"`
	Debug             bool     `json:"debug" mapstructure:"debug"`
	NoColor           bool     `json:"noColor" mapstructure:"noColor"`
	ConfigPath        string   `json:"-" mapstructure:"-"`
}

// Defaults returns a Config populated with the values used when neither a
// config file nor flags provide them.
func Defaults() Config {
	return Config{
		Backend:           BackendLlamaCpp,
		URL:               DefaultURL,
		ModelPath:         DefaultModelPath,
		MaxTokens:         DefaultMaxTokens,
		Temperature:       0,
		Stop:              []string{"<end_of_turn>", "<eos>"},
		TimeoutSeconds:    int(defaultRequestTimeout.Seconds()),
		SourceLang:        "en",
		TargetLang:        "fr",
		Iterations:        1,
		ValidateLanguages: true,
	}
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "petit.log"
}

// ModelName returns the model identifier sent to the backend. When no model
// is configured it is derived from the artifact file name.
func (c Config) ModelName() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	base := filepath.Base(strings.TrimSpace(c.ModelPath))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Validate reports configuration values the rest of the application cannot work with.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case BackendLlamaCpp, "llama.cpp", "llama-cpp", BackendOllama:
	default:
		return fmt.Errorf("invalid configuration: unknown backend %q (want %q or %q)", c.Backend, BackendLlamaCpp, BackendOllama)
	}
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("invalid configuration: url must not be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("invalid configuration: maxTokens must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("invalid configuration: temperature must not be negative, got %v", c.Temperature)
	}
	if c.WarmupRuns < 0 {
		return fmt.Errorf("invalid configuration: warmupRuns must not be negative, got %d", c.WarmupRuns)
	}
	return nil
}

// Load reads the application configuration from the specified path. Keys
// missing from the file keep their default values.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	config.ConfigPath = path
	return config, nil
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	config := Defaults()
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}
	if config.Iterations <= 0 {
		config.Iterations = 1
	}

	return config, nil
}
