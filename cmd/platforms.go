package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/btraven00/linksift/internal/classifier"
	"github.com/btraven00/linksift/internal/platforms"
)

var (
	showMarkers bool
	showRules   bool
	listJSON    bool
)

// platformsCmd represents the platforms command
var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List recognized messaging platforms",
	Long: `Platforms lists the messaging platforms linksift recognizes, the hosts that
identify them and, optionally, the classification table and the phrases that
mark a dead link on their pages.

Links on any other host are sorted into "other" and judged alive by status
code alone.

Examples:
  linksift platforms
  linksift platforms --rules --markers
  linksift platforms --json`,
	Args: cobra.NoArgs,
	RunE: runPlatforms,
}

func init() {
	rootCmd.AddCommand(platformsCmd)

	platformsCmd.Flags().BoolVar(&showMarkers, "markers", false, "show dead-link markers")
	platformsCmd.Flags().BoolVar(&showRules, "rules", false, "show the classification table in evaluation order")
	platformsCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	info := platforms.DefaultRegistry.List()
	for i := range info {
		if override, ok := cfg.Probe.Markers[info[i].Name]; ok {
			info[i].DeadMarkers = override
		}
	}

	out := cmd.OutOrStdout()

	if listJSON || output == "json" {
		return writeJSON(out, struct {
			Platforms []platforms.Info `json:"platforms"`
			Count     int              `json:"count"`
		}{Platforms: info, Count: len(info)})
	}

	if len(info) == 0 {
		fmt.Fprintln(out, "No platforms are currently registered.")
		return nil
	}

	fmt.Fprintf(out, "Recognized Platforms (%d):\n\n", len(info))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPRIORITY\tHOSTS\tDESCRIPTION")
	fmt.Fprintln(w, "----\t--------\t-----\t-----------")

	for _, p := range info {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", p.Name, p.Priority, strings.Join(p.Hosts, ", "), p.Description)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if showRules {
		if err := printRules(out); err != nil {
			return err
		}
	}

	if showMarkers {
		fmt.Fprintf(out, "\nDead-link markers:\n")
		for _, p := range info {
			fmt.Fprintf(out, "  %s:\n", p.Name)
			for _, m := range p.DeadMarkers {
				fmt.Fprintf(out, "    • %q\n", m)
			}
		}
	}

	return nil
}

// printRules prints the classification table; the first matching row wins.
func printRules(out io.Writer) error {
	fmt.Fprintf(out, "\nClassification table (first match wins):\n\n")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  #\tPLATFORM\tRULE\tCATEGORY")

	for i, row := range classifier.New(nil).Rows() {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", i+1, row.Platform, row.Rule.Name, row.Rule.Category)
	}

	fmt.Fprintf(w, "  -\t(any)\tunrecognized host\t%s\n", platforms.CategoryOther)

	return w.Flush()
}
