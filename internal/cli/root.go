// internal/cli/root.go
package petit

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mwiater/petit/internal/appconfig"
	"github.com/mwiater/petit/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// flagKeys maps flag names that differ from their configuration key.
var flagKeys = map[string]string{
	"src":      "sourceLang",
	"tgt":      "targetLang",
	"no-color": "noColor",
}

// commandOnlyFlags never reach the configuration.
var commandOnlyFlags = map[string]bool{
	"config":      true,
	"help":        true,
	"version":     true,
	"text":        true,
	"interactive": true,
	"verbose":     true,
}

// rootCmd represents the base command when called without any subcommands.
// On its own it runs the benchmark suite.
var rootCmd = &cobra.Command{
	Use:   "petit",
	Short: "petit: TranslateGemma prompt runner and benchmark harness",
	Long: `petit renders TranslateGemma prompts, sends them to a llama.cpp or Ollama
server, and reports per-request and aggregate latency.

Run without a subcommand to execute the benchmark suite.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		bindFlags(cmd)
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		cfg := appconfig.Defaults()
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		if err := cfg.Validate(); err != nil {
			return err
		}
		currentConfig = &cfg

		if cfg.NoColor {
			color.NoColor = true
		}
		if err := logging.Init(currentConfig.LogFilePath(), currentConfig.Debug); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.LogEvent("petit %s starting: %s", appVersion, cmd.CommandPath())
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmark(cmd, GetConfig())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		_ = logging.Close()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := appconfig.Defaults()
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")
	pf.Bool("debug", false, "enable debug logging")
	pf.Bool("no-color", false, "disable coloured output")
	pf.String("logFile", "", "path to the log file (default petit.log)")
	pf.String("backend", defaults.Backend, "completion backend: llamacpp or ollama")
	pf.String("url", defaults.URL, "backend server URL")
	pf.String("model", "", "model name sent to the backend (defaults to the model file name)")
	pf.String("modelPath", defaults.ModelPath, "local GGUF artifact checked before running (empty to skip)")
	pf.Int("maxTokens", defaults.MaxTokens, "maximum tokens generated per translation")
	pf.Float64("temperature", defaults.Temperature, "sampling temperature")
	pf.StringSlice("stop", defaults.Stop, "stop markers that end generation")
	pf.Int("timeout", defaults.TimeoutSeconds, "request timeout in seconds")
	pf.String("src", defaults.SourceLang, "source language code")
	pf.String("tgt", defaults.TargetLang, "target language code")
	pf.Bool("metrics", false, "collect completion metrics")
	pf.String("metricsFile", "", "write Prometheus textfile metrics here after a run")

	addBenchmarkFlags(rootCmd.Flags())

	for key, value := range map[string]any{
		"backend":           defaults.Backend,
		"url":               defaults.URL,
		"modelPath":         defaults.ModelPath,
		"maxTokens":         defaults.MaxTokens,
		"temperature":       defaults.Temperature,
		"stop":              defaults.Stop,
		"timeout":           defaults.TimeoutSeconds,
		"sourceLang":        defaults.SourceLang,
		"targetLang":        defaults.TargetLang,
		"iterations":        defaults.Iterations,
		"validateLanguages": defaults.ValidateLanguages,
	} {
		viper.SetDefault(key, value)
	}
	viper.SetEnvPrefix("PETIT")
	viper.AutomaticEnv()
}

// addBenchmarkFlags registers the flags shared by the root and benchmark commands.
func addBenchmarkFlags(fs *pflag.FlagSet) {
	fs.String("suite", "", "TOML file with benchmark cases (default: built-in set)")
	fs.String("text", "", "benchmark a single text instead of a suite")
	fs.Int("warmupRuns", 0, "unmeasured runs of the first case before measuring")
	fs.Int("iterations", 1, "measured passes over the suite")
	fs.Bool("failFast", false, "stop at the first failed case")
	fs.String("export", "", "write results as JSON to this file or directory")
	fs.Bool("validateSuite", false, "reject cases whose language codes are not supported")
}

// bindFlags binds the flags of the executing command to their configuration
// keys. Binding happens per invocation because several commands define
// flags for the same key.
func bindFlags(cmd *cobra.Command) {
	bind := func(f *pflag.Flag) {
		if commandOnlyFlags[f.Name] {
			return
		}
		key := f.Name
		if mapped, ok := flagKeys[f.Name]; ok {
			key = mapped
		}
		_ = viper.BindPFlag(key, f)
	}
	cmd.InheritedFlags().VisitAll(bind)
	cmd.Flags().VisitAll(bind)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config file. A missing file leaves defaults,
// environment and flags in charge.
func ensureConfigLoaded() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
