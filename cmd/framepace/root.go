package main

import (
	"log/slog"
	"os"

	"github.com/gogpu/framepace"
	"github.com/gogpu/framepace/driver/haldriver"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
	debug   bool
}

func newRootCmd() *cobra.Command {
	var rf rootFlags
	cmd := &cobra.Command{
		Use:           "framepace",
		Short:         "framepace: adaptive frame pacing and transient texture recycling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(rf)
		},
	}
	cmd.PersistentFlags().BoolVarP(&rf.verbose, "verbose", "v", false, "log lifecycle events to stderr")
	cmd.PersistentFlags().BoolVar(&rf.debug, "debug", false, "log per-frame diagnostics to stderr")

	cmd.AddCommand(
		newSimulateCmd(),
		newWatchCmd(),
		newProbeCmd(),
		newDriversCmd(),
	)
	return cmd
}

func configureLogging(rf rootFlags) {
	if !rf.verbose && !rf.debug {
		return
	}
	level := slog.LevelInfo
	if rf.debug {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	framepace.SetLogger(l)
	haldriver.SetLogger(l)
}
