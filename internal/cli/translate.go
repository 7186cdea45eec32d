// internal/cli/translate.go
package petit

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/petit/internal/appconfig"
	"github.com/mwiater/petit/internal/language"
	"github.com/mwiater/petit/internal/translate"
	"github.com/mwiater/petit/internal/tui"
)

// translateCmd translates a single text, or opens the interactive translator.
var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text with the configured backend",
	Long: `Translate text from --src to --tgt. The text is taken from the arguments,
from --text, or from standard input when it is not a terminal.

With --interactive, an interactive translator is opened instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTranslate(cmd, args, GetConfig())
	},
}

func init() {
	translateCmd.Flags().String("text", "", "text to translate")
	translateCmd.Flags().BoolP("interactive", "i", false, "open the interactive translator")
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string, cfg *appconfig.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is not loaded")
	}
	src, tgt := language.Normalize(cfg.SourceLang), language.Normalize(cfg.TargetLang)
	if cfg.ValidateLanguages {
		if err := language.ValidatePair(src, tgt); err != nil {
			return err
		}
	}

	errOut := cmd.ErrOrStderr()
	if ok, err := checkModelArtifact(errOut, cfg); err != nil || !ok {
		return err
	}

	runner := &translate.Runner{MaxTokens: cfg.MaxTokens, Temperature: cfg.Temperature, Stop: cfg.Stop}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		completer, err := newCompleter(cfg)
		if err != nil {
			return err
		}
		return runInteractive(cmd.Context(), completer, tui.Options{
			Model:      cfg.ModelName(),
			Backend:    cfg.Backend,
			SourceLang: src,
			TargetLang: tgt,
			Runner:     runner,
		})
	}

	text, err := inputText(cmd, args)
	if err != nil {
		return err
	}

	completer, err := prepareBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	res, err := runner.Run(cmd.Context(), completer, translate.Request{Text: text, SourceLang: src, TargetLang: tgt})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.OutputText)
	fmt.Fprintf(errOut, "[%s -> %s] %.2fs\n", res.SourceLang, res.TargetLang, res.ElapsedSeconds())
	return nil
}

// inputText picks the text to translate: positional arguments, then --text,
// then standard input when it is redirected.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if text, _ := cmd.Flags().GetString("text"); strings.TrimSpace(text) != "" {
		return text, nil
	}

	in := stdin()
	if in == nil || isTerminal(in) {
		return "", fmt.Errorf("no text to translate: pass it as an argument, with --text, or on stdin")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no text to translate: stdin was empty")
	}
	return text, nil
}
