package main

import (
	"fmt"
	"slices"

	"github.com/gogpu/framepace/driver"
	"github.com/gogpu/wgpu/hal"
	"github.com/spf13/cobra"
)

func newDriversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List the registered drivers and hal backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("drivers"))
			for _, name := range driver.Available() {
				fmt.Fprintf(out, "  %s\n", name)
			}

			backends := hal.AvailableBackends()
			slices.Sort(backends)
			fmt.Fprintln(out, titleStyle.Render("hal backends"))
			for _, b := range backends {
				fmt.Fprintf(out, "  %s\n", b)
			}
			return nil
		},
	}
}
