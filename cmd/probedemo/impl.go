package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/probes/backend"
)

func newImplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impl",
		Short: "Print the compiled-in backend implementation",
		Long: "Print the compiled-in backend implementation. Exits non-zero when " +
			backend.ExpectedImplementationEnv + " names a different one.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), backend.Implementation)
			return backend.CheckExpected()
		},
	}
}
