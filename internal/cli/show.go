// internal/cli/show.go
package petit

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/petit/internal/appconfig"
	"github.com/mwiater/petit/internal/language"
	"github.com/mwiater/petit/internal/providers"
)

// showCmd groups the read-only informational commands.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration and backend information",
}

// showConfigCmd prints the effective configuration after file, environment,
// and flag overrides.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON config is loaded properly and overridden by environment variables and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), GetConfig(), verbose)
	},
}

var showLanguagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the supported language codes",
	Run: func(cmd *cobra.Command, args []string) {
		listLanguages(cmd.OutOrStdout())
	},
}

// showModelsCmd asks the backend which models it has loaded.
var showModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models loaded on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration is not loaded")
		}
		completer, err := newCompleter(cfg)
		if err != nil {
			return err
		}
		lister, ok := providers.Find[providers.ModelLister](completer)
		if !ok {
			return fmt.Errorf("backend %s cannot list models", cfg.Backend)
		}
		models, err := lister.LoadedModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("list models on %s: %w", cfg.URL, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s):\n", cfg.URL, cfg.Backend)
		if len(models) == 0 {
			fmt.Fprintln(out, "  (no models loaded)")
		}
		for _, m := range models {
			marker := " "
			if strings.EqualFold(m, cfg.ModelName()) {
				marker = "*"
			}
			fmt.Fprintf(out, "  %s %s\n", marker, m)
		}
		return nil
	},
}

// showCommandsCmd prints the command tree in two columns.
var showCommandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands in two columns",
	Run: func(cmd *cobra.Command, args []string) {
		var filtered []commandInfo
		for _, data := range collectCommandData(rootCmd, "", "") {
			if strings.Contains(data.Path, "completion") {
				continue
			}
			filtered = append(filtered, data)
		}
		listCommands(cmd.OutOrStdout(), filtered)
	},
}

func init() {
	showConfigCmd.Flags().BoolP("verbose", "v", false, "also dump the full config struct")
	showCmd.AddCommand(showConfigCmd, showLanguagesCmd, showModelsCmd, showCommandsCmd)
	rootCmd.AddCommand(showCmd)
}

func listLanguages(out io.Writer) {
	codes := language.Supported()
	fmt.Fprintf(out, "Supported languages (%d):\n", len(codes))
	for _, code := range codes {
		fmt.Fprintf(out, "  %-6s %s\n", code, language.Name(code))
	}
}

type commandInfo struct {
	Path        string
	Description string
}

func listCommands(out io.Writer, commands []commandInfo) {
	width := 0
	for _, data := range commands {
		width = max(width, len(data.Path))
	}
	fmt.Fprintln(out, "Commands and Subcommands:")
	for _, data := range commands {
		fmt.Fprintf(out, "  %s%s%s\n", data.Path, strings.Repeat(" ", width-len(data.Path)+2), data.Description)
	}
}

// collectCommandData walks the command tree depth first.
func collectCommandData(cmd *cobra.Command, currentPath, indent string) []commandInfo {
	fullPath := cmd.Name()
	if currentPath != "" {
		fullPath = currentPath + " " + cmd.Name()
	}
	all := []commandInfo{{Path: indent + fullPath, Description: cmd.Short}}
	for _, sub := range cmd.Commands() {
		all = append(all, collectCommandData(sub, fullPath, indent+"  ")...)
	}
	return all
}
