package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	cfg := defaultSimConfig()
	var (
		every int
		plot  string
		quiet bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the synthetic workload on the simulated driver",
		Long: `Renders a synthetic deferred pipeline through a Pacer on the simulated
driver. The GPU cost of each frame follows the viewport size and the chosen
load scenario, and the clock advances by whole vsync intervals, so runs are
deterministic.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, sum, err := runSimulation(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !quiet {
				fmt.Fprintln(out, frameTable(samples, every, sum.Target))
			}
			writeSummary(out, fmt.Sprintf("%s scenario at %.0f Hz", cfg.scenario, cfg.rate), sum)
			if plot != "" {
				if err := writePlot(plot, samples, sum.Target); err != nil {
					return err
				}
				fmt.Fprintf(out, "plot written to %s\n", plot)
			}
			return nil
		},
	}
	cfg.addFlags(cmd)
	cmd.Flags().IntVar(&every, "every", 30, "print one frame row every N frames")
	cmd.Flags().StringVar(&plot, "plot", "", "write a PNG chart of the run to this file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print the summary only")
	return cmd
}

// runSimulation runs cfg.frames frames and closes the Pacer.
func runSimulation(cfg simConfig) ([]sample, summary, error) {
	sim, err := newSimulation(cfg)
	if err != nil {
		return nil, summary{}, err
	}
	samples := make([]sample, 0, cfg.frames)
	for range cfg.frames {
		s, err := sim.step()
		if err != nil {
			_ = sim.close()
			return nil, summary{}, fmt.Errorf("frame %d: %w", len(samples), err)
		}
		samples = append(samples, s)
	}
	sum := summarize(samples, sim)
	if err := sim.close(); err != nil {
		return nil, summary{}, err
	}
	return samples, sum, nil
}
