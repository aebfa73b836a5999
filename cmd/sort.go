package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/btraven00/linksift/internal/batch"
	"github.com/btraven00/linksift/internal/extractor"
)

var (
	outDir string
	dryRun bool
)

// sortCmd represents the sort command
var sortCmd = &cobra.Command{
	Use:   "sort [file...]",
	Short: "Classify and deduplicate links into one list per category",
	Long: `Sort reads text files (or stdin when no file or "-" is given), extracts every
http(s) link, classifies it and writes one sorted, deduplicated list per
non-empty category to the output directory.

Only the first message link of each chat is kept. Input may be in any common
encoding; undecodable bytes are dropped.

Examples:
  linksift sort links.txt
  linksift sort --out-dir sorted/ dump1.txt dump2.txt
  cat links.txt | linksift sort --dry-run -o json`,
	RunE: runSort,
}

func init() {
	rootCmd.AddCommand(sortCmd)

	sortCmd.Flags().StringVarP(&outDir, "out-dir", "d", ".", "directory to write the category lists to")
	sortCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the summary without writing files")
}

type sortSummary struct {
	Artifacts []batch.Artifact `json:"artifacts"`
	Written   []string         `json:"written,omitempty"`
	Inputs    int              `json:"inputs"`
	Total     int              `json:"total"`
}

func runSort(cmd *cobra.Command, args []string) error {
	if err := validateOutput(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	lines, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	b := newEngine(cfg, log, nil).SortLines(lines)

	summary := sortSummary{
		Artifacts: b.Artifacts(),
		Inputs:    max(1, len(args)),
		Total:     b.Len(),
	}

	if b.Empty() {
		if output == "json" {
			return writeJSON(cmd.OutOrStdout(), summary)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "no links found")
		return nil
	}

	if !dryRun {
		written, err := writeArtifacts(outDir, summary.Artifacts)
		if err != nil {
			return err
		}
		summary.Written = written
	}

	if output == "json" {
		return writeJSON(cmd.OutOrStdout(), summary)
	}

	printSortSummary(cmd.OutOrStdout(), summary)

	return nil
}

// readInputs returns the decoded lines of every input, stdin for none or "-".
func readInputs(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	var lines []string

	for _, name := range args {
		var (
			data []byte
			err  error
		)

		if name == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			warnIfNotText(cmd, name)
			data, err = os.ReadFile(name)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		lines = append(lines, extractor.SplitLines(data)...)
	}

	return lines, nil
}

func warnIfNotText(cmd *cobra.Command, name string) {
	if quiet || strings.EqualFold(filepath.Ext(name), ".txt") {
		return
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %s is not a .txt file, reading it as text anyway\n", name)
}

// writeArtifacts writes each artifact to dir under its file name.
func writeArtifacts(dir string, artifacts []batch.Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	written := make([]string, 0, len(artifacts))

	for _, a := range artifacts {
		path := filepath.Join(dir, a.FileName)
		if err := os.WriteFile(path, []byte(a.Content()), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}

	return written, nil
}

func printSortSummary(w io.Writer, s sortSummary) {
	fmt.Fprintf(w, "🔗 Sorted %d unique links from %d input(s)\n", s.Total, s.Inputs)

	for _, a := range s.Artifacts {
		fmt.Fprintf(w, "   %-22s %5d  %s\n", a.Title, len(a.Links), a.FileName)
	}

	if len(s.Written) > 0 {
		fmt.Fprintf(w, "📁 Wrote %d file(s)\n", len(s.Written))
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
