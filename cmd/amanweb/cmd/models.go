package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanweb/internal/output"
)

func newModelsCmd(_ *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models installed in Ollama",
		Long:  `List the models installed on the configured Ollama server. The configured default is marked with *.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runModels(cmd.Context(), cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runModels(ctx context.Context, cmd *cobra.Command, jsonOutput bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	models, err := a.llm.ListModels(ctx)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	if jsonOutput {
		return out.JSON(models)
	}
	if len(models) == 0 {
		out.Warningf("No models installed on %s", a.llm.Host())
		out.Statusf("💡", "Run 'ollama pull %s'", a.llm.Model())
		return nil
	}
	for _, m := range models {
		marker := " "
		if m.Name == a.llm.Model() {
			marker = "*"
		}
		out.Text(fmt.Sprintf("%s %-32s %s", marker, m.Name, formatSize(m.Size)))
	}
	return nil
}

// formatSize formats a byte count with a binary unit.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
