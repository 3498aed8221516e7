package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/maxfahl/Loom-sub002/internal/config"
	"github.com/maxfahl/Loom-sub002/internal/dupes"
	"github.com/maxfahl/Loom-sub002/internal/errors"
	"github.com/maxfahl/Loom-sub002/internal/logging"
	"github.com/maxfahl/Loom-sub002/internal/report"
	"github.com/maxfahl/Loom-sub002/internal/source"
	"github.com/maxfahl/Loom-sub002/internal/tui"
)

var dupesCmd = &cobra.Command{
	Use:   "dupes [path]",
	Short: "Find blocks of code repeated verbatim",
	Long: `Find blocks of at least --min-lines lines that appear more than once.

Lines are compared after trimming surrounding whitespace, so indentation
differences do not matter. Any other difference does. Occurrences in the same
file closer than --min-lines lines apart are treated as one.

This is a text heuristic, not a semantic comparison.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDupes,
}

var (
	dupesMinLines    int
	dupesMerge       bool
	dupesInteractive bool
)

func init() {
	dupesCmd.Flags().IntVar(&dupesMinLines, "min-lines", config.DefaultMinLines, "Minimum block length in lines")
	dupesCmd.Flags().BoolVar(&dupesMerge, "merge", false, "Merge overlapping windows into the longest repeated block")
	dupesCmd.Flags().BoolVarP(&dupesInteractive, "interactive", "i", false, "Browse results in an interactive list")
	addScanFlags(dupesCmd)
	rootCmd.AddCommand(dupesCmd)
}

func detectDupes(cfg *config.Config, files []source.File) []dupes.Group {
	return dupes.Detect(files, dupes.Options{
		MinLines:        cfg.Dupes.MinLines,
		IgnoreBlank:     cfg.Dupes.IgnoreBlank,
		Merge:           cfg.Dupes.Merge,
		MaxSnippetLines: cfg.Dupes.MaxSnippetLines,
	})
}

func runDupes(cmd *cobra.Command, args []string) error {
	if dupesInteractive {
		return runDupesInteractive(cmd, args)
	}

	return runScan(cmd, args, func(ctx context.Context, cfg *config.Config, target string, files []source.File) (*report.Report, error) {
		r := report.New("dupes", "Duplicate Code Blocks", target)
		r.MinLines = cfg.Dupes.MinLines
		r.Duplicates = detectDupes(cfg, files)
		return r, nil
	})
}

func runDupesInteractive(cmd *cobra.Command, args []string) error {
	if scanWatch {
		return errors.ValidationError("--interactive cannot be combined with --watch")
	}
	if !logging.IsTerminal(os.Stdout) {
		return errors.ValidationError("--interactive requires a terminal")
	}

	target, err := resolveTarget(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, target)
	if err != nil {
		return err
	}

	files, err := collectFiles(cmd.Context(), target, cfg)
	if err != nil {
		return err
	}

	groups := detectDupes(cfg, files)
	if len(groups) == 0 {
		logSuccess("No duplicate blocks of %d+ lines in %d file(s)", cfg.Dupes.MinLines, len(files))
		return nil
	}

	return tui.RunBrowser(groups, target)
}
