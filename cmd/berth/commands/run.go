package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/berth/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a script from berth.yml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			expand, _ := cmd.Flags().GetBool("expand")
			outputMode, _ := cmd.Flags().GetString("output")
			ci, _ := cmd.Flags().GetBool("ci")
			journal, _ := cmd.Flags().GetString("journal")

			// If --ci is set, override output to "plain"
			if ci {
				outputMode = "plain"
			}

			return c.app.Run(cmd.Context(), args[0], app.RunOptions{
				DryRun:     dryRun,
				Expand:     expand,
				OutputMode: outputMode,
				Journal:    journal,
			})
		},
	}
	cmd.Flags().BoolP("dry-run", "n", false, "Print the tasks the script would run without running them")
	cmd.Flags().Bool("expand", false, "With --dry-run, list the commands inside grouped tasks")
	cmd.Flags().StringP("output", "o", "auto", "Output mode: auto, color, or plain")
	cmd.Flags().Bool("ci", false, "Use plain output (shorthand for --output=plain)")
	cmd.Flags().String("journal", "", "Write a JSON progress record per line to this file")
	return cmd
}
