// Command introscore scores spoken self-introduction transcripts, either as
// an HTTP service or one transcript at a time from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "introscore",
		Short:         "Rubric scoring for self-introduction transcripts",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: configs/config.yaml)")

	root.AddCommand(newServeCmd(&configPath), newScoreCmd(&configPath))
	return root
}
