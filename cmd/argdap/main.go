// Command argdap serves the Debug Adapter Protocol for an Abstract
// Reachability Graph analyzer, mirroring the shape of delve's own
// cmd/dlv: a small cobra root wrapping one long-running `serve`
// subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "argdap",
		Short: "Debug Adapter Protocol server for an ARG-backed analyzer",
	}
	root.AddCommand(newServeCommand())
	return root
}
