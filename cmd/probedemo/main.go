// Command probedemo fires the simple_probes provider in a loop so tracing
// tools have something to attach to.
//
//	probedemo run --count 100 --interval 500ms
//	sudo bpftrace -e 'usdt:/proc/<pid>/...:simple_probes:greeting { printf("%s %s\n", str(arg0), str(arg1)); }'
//
// Flags can also be set through PROBEDEMO_* environment variables or a
// config file passed with --config.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "probedemo",
		Short:         "Fire demo probes for tracing tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newImplCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
