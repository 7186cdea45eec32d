// internal/cli/check.go
package petit

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/petit/internal/logging"
)

// checkCmd verifies the model artifact and prints what its header reports.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the model artifact exists and inspect its header",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration is not loaded")
		}
		out := cmd.OutOrStdout()
		if cfg.ModelPath == "" {
			fmt.Fprintln(out, "No modelPath configured: nothing to check.")
			return nil
		}

		info, err := checkArtifact(cfg.ModelPath)
		if err != nil {
			fmt.Fprintf(out, "ERROR: %v\n", err)
			return err
		}
		fmt.Fprintf(out, "Model:         %s\n", info.Path)
		if info.IsDir {
			fmt.Fprintln(out, "Kind:          directory")
		} else {
			fmt.Fprintf(out, "Size:          %.2f GiB\n", float64(info.Size)/(1<<30))
		}
		fmt.Fprintf(out, "Modified:      %s\n", info.ModTime.Format("2006-01-02 15:04:05"))

		md, err := inspectArtifact(info.Path)
		if err != nil {
			logging.Warn("could not read model header: %v", err)
			fmt.Fprintf(out, "Header:        unreadable (%v)\n", err)
			return nil
		}
		fmt.Fprintf(out, "Name:          %s\n", md.Name)
		fmt.Fprintf(out, "Architecture:  %s\n", md.Architecture)
		fmt.Fprintf(out, "File Type:     %s\n", md.FileType)
		fmt.Fprintf(out, "Parameters:    %s\n", md.Parameters)
		fmt.Fprintf(out, "Context:       %d\n", md.ContextLength)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
