package commands

import "github.com/spf13/cobra"

func (c *CLI) newComposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dc [args...]",
		Short: "Run docker-compose with the project's compose file",
		// Every argument, flags included, belongs to docker-compose.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Compose(cmd.Context(), args)
		},
	}
}
