package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var estimateCount int

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate [list-file]",
	Short: "Estimate how long cleaning a list can take",
	Long: `Estimate prints the worst-case duration of cleaning a list:
ceil(links × timeout / workers), at least one second.

Pass a list file to count its links, or --count.

Examples:
  linksift estimate channels.txt
  linksift estimate --count 200 --timeout 5s --workers 20`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().IntVarP(&estimateCount, "count", "n", 0, "number of links")
	addProbeFlags(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if err := validateOutput(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := applyProbeFlags(cmd, &cfg.Probe); err != nil {
		return err
	}

	count := estimateCount
	if len(args) == 1 {
		links, err := readLinkList(args[0])
		if err != nil {
			return err
		}
		count = len(links)
	}

	if count < 0 {
		return fmt.Errorf("--count must not be negative")
	}

	d := newEngine(cfg, nil, nil).Estimate(count)

	if output == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"count":            count,
			"timeout_seconds":  cfg.Probe.Timeout.Seconds(),
			"concurrency":      cfg.Probe.Concurrency,
			"estimate_seconds": int64(d.Seconds()),
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "⏱  %d links: up to %v (timeout %v, %d workers)\n",
		count, d, cfg.Probe.Timeout, cfg.Probe.Concurrency)

	return nil
}
