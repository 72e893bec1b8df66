package commands

import (
	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/echeque-service/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
// Running it without a subcommand starts the server.
func NewRootCommand() *cobra.Command {
	var opts serveOptions

	rootCmd := &cobra.Command{
		Use:     "echeque-server",
		Short:   "E-cheque lifecycle service",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load environment variables from this file (default ./.env if present)")
	rootCmd.Flags().StringVar(&opts.addr, "addr", "", "listen address, overrides ECHEQUE_HTTP_ADDR")

	rootCmd.AddCommand(newServeCommand(&opts))
	rootCmd.AddCommand(newMigrateCommand(&opts))

	return rootCmd
}
