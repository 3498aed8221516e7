package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/maxfahl/Loom-sub002/internal/errors"
	"github.com/maxfahl/Loom-sub002/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "Show recorded analyzer runs",
	Long: `Show analyzer runs recorded in the project's history log
(.loom/history.jsonl next to .loom.toml). Runs are recorded when
[history] enabled = true, which "loom init" sets.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var (
	historyLimit int
	historyClear bool
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Show at most this many runs (0 for all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete the recorded history")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	target, err := resolveTarget(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, target)
	if err != nil {
		return err
	}

	store := historyStore(cfg, target)

	if historyClear {
		if err := store.Clear(); err != nil {
			return errors.Wrap(errors.ExitGeneralError, "failed to clear history", err)
		}
		logSuccess("Cleared %s", store.Path())
		return nil
	}

	entries, err := store.Entries(historyLimit)
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "failed to read history", err)
	}

	if len(entries) == 0 {
		logInfo("No runs recorded in %s", store.Path())
		return nil
	}

	out := cmd.OutOrStdout()

	if report.Format(cfg.Report.Format) == report.FormatJSON {
		enc := json.NewEncoder(out)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return fmt.Errorf("failed to marshal entry: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTOOL\tFILES\tFINDINGS\tDURATION\tTARGET")
	fmt.Fprintln(w, "----\t----\t-----\t--------\t--------\t------")

	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Tool,
			e.Files,
			e.Findings,
			time.Duration(e.Duration).Round(time.Millisecond),
			e.Target)
	}

	return w.Flush()
}
