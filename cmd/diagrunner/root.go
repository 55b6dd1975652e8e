package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
	jsonOut bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "diagrunner",
		Short:         "diagrunner drives device update diagnostics scenarios in CI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.jsonOut, "json", false, "Emit the run summary as JSON")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
