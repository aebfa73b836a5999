package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/btraven00/linksift/internal/extractor"
	"github.com/btraven00/linksift/internal/prober"
)

var (
	cleanOut     string
	timeoutFlag  time.Duration
	workersFlag  int
	showProgress bool
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean <list-file>",
	Short: "Drop dead links from a category list",
	Long: `Clean fetches every link of a list once, with at most --workers requests in
flight, and keeps the links whose page answers below 400 and shows none of the
platform's dead-link phrases. Failed requests are not retried.

The surviving links are written next to the input as alive_<name> unless
--out is given.

Examples:
  linksift clean channels.txt
  linksift clean --workers 50 --timeout 5s groups.txt
  linksift clean --out live.txt -o json messages.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVar(&cleanOut, "out", "", "output file (default alive_<name> next to the input)")
	addProbeFlags(cleanCmd)
	cleanCmd.Flags().BoolVar(&showProgress, "progress", true, "show progress while probing")
}

// addProbeFlags registers the per-run overrides of the probe settings.
func addProbeFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVarP(&timeoutFlag, "timeout", "t", 0, "per-request timeout (default from config, 3s)")
	cmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "maximum simultaneous requests (default from config, 20)")
}

// applyProbeFlags copies explicitly set probe flags over cfg.
func applyProbeFlags(cmd *cobra.Command, cfg *prober.Config) error {
	if cmd.Flags().Changed("timeout") {
		if timeoutFlag <= 0 {
			return fmt.Errorf("--timeout must be positive")
		}
		cfg.Timeout = timeoutFlag
	}

	if cmd.Flags().Changed("workers") {
		if workersFlag < 1 {
			return fmt.Errorf("--workers must be at least 1")
		}
		cfg.Concurrency = workersFlag
	}

	return nil
}

func runClean(cmd *cobra.Command, args []string) error {
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

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	input := args[0]
	warnIfNotText(cmd, input)

	links, err := readLinkList(input)
	if err != nil {
		return err
	}

	if len(links) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no links found")
		return nil
	}

	var opts []prober.Option
	if showProgress && !quiet && output == "human" {
		opts = append(opts, progressPrinter(cmd.ErrOrStderr(), len(links)))
	}

	p := prober.New(cfg.Probe, append(opts, prober.WithLogger(log))...)

	if !quiet && output == "human" {
		fmt.Fprintf(cmd.ErrOrStderr(), "⏱  Checking %d links, this can take up to %v\n",
			len(links), p.Estimate(len(links)))
	}

	report := p.Probe(cmdContext(cmd), links)

	if showProgress && !quiet && output == "human" {
		fmt.Fprintln(cmd.ErrOrStderr())
	}

	target := cleanOut
	if target == "" {
		target = aliveFileName(input)
	}

	content := ""
	if len(report.Alive) > 0 {
		content = strings.Join(report.Alive, "\n") + "\n"
	}

	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	if output == "json" {
		return writeJSON(cmd.OutOrStdout(), struct {
			*prober.Report
			Output string `json:"output"`
		}{Report: report, Output: target})
	}

	printCleanSummary(cmd.OutOrStdout(), report, target)

	return nil
}

// readLinkList returns the distinct normalized links of a list file, one or
// more per line, in order of first appearance.
func readLinkList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var links []string
	seen := make(map[string]struct{})

	for _, link := range extractor.Links(extractor.SplitLines(data)) {
		rendered := link.WithQuery()
		if _, dup := seen[rendered]; dup {
			continue
		}

		seen[rendered] = struct{}{}
		links = append(links, rendered)
	}

	return links, nil
}

// aliveFileName returns alive_<base> in the directory of path.
func aliveFileName(path string) string {
	return filepath.Join(filepath.Dir(path), "alive_"+filepath.Base(path))
}

func progressPrinter(w io.Writer, total int) prober.Option {
	tracker := prober.NewProgressTracker(total)

	return prober.WithProgress(func(update prober.ProgressUpdate) {
		tracker.Update(update)
		if update.Status == prober.TaskStatusAlive || update.Status == prober.TaskStatusDead {
			tracker.Print(w)
		}
	})
}

func printCleanSummary(w io.Writer, report *prober.Report, target string) {
	fmt.Fprintf(w, "✅ %d of %d links alive (%.1fs)\n",
		report.AliveCount, report.Total, report.Elapsed.Seconds())

	if verbose {
		for _, r := range report.Results {
			if !r.Alive {
				fmt.Fprintf(w, "   ❌ %s: %s\n", r.URL, r.Reason())
			}
		}
	}

	fmt.Fprintf(w, "📁 Wrote %s\n", target)
}
