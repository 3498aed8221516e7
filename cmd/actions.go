package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maxfahl/Loom-sub002/internal/app"
	"github.com/maxfahl/Loom-sub002/internal/errors"
	"github.com/maxfahl/Loom-sub002/internal/logging"
	"github.com/maxfahl/Loom-sub002/internal/workflow"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "GitHub Actions workflow helpers",
}

var actionsPinCmd = &cobra.Command{
	Use:   "pin <workflow.yml>...",
	Short: "Pin action references to commit SHAs",
	Long: `Rewrite "uses: owner/repo@ref" lines to the commit SHA the ref points at,
keeping the original ref as a trailing comment:

  uses: actions/checkout@<sha> # v4

Tags are tried before branches. Local actions, docker:// images and refs
already pinned to a SHA are left alone, as are refs that cannot be resolved.

Requires $GITHUB_TOKEN. $GITHUB_API_URL overrides the API endpoint.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runActionsPin,
}

var actionsDryRun bool

func init() {
	actionsPinCmd.Flags().BoolVar(&actionsDryRun, "dry-run", false, "Print the updated workflow instead of writing it")
	actionsCmd.AddCommand(actionsPinCmd)
	rootCmd.AddCommand(actionsCmd)
}

func runActionsPin(cmd *cobra.Command, args []string) error {
	token := os.Getenv(workflow.EnvToken)
	if token == "" {
		return errors.ConfigError(workflow.EnvToken+" is not set", nil)
	}
	resolver := app.Default.Resolver(token)

	for _, path := range args {
		data, err := readInput(path)
		if err != nil {
			return err
		}

		result, err := workflow.Pin(cmd.Context(), string(data), resolver)
		if err != nil {
			if errors.Is(err, workflow.ErrForbidden) {
				return errors.RemoteError("github", err)
			}
			if cmd.Context().Err() != nil {
				return err
			}
			return errors.ParseError(path, err)
		}

		if result.NoJobs {
			logWarning("%s has no jobs, skipping", path)
			continue
		}

		for _, c := range result.Changes {
			logInfo("%s:%d %s@%s -> %s", path, c.Line, c.Action, c.From, c.To)
		}
		for _, s := range result.Skipped {
			logging.Debug("left unpinned", "file", path, "line", s.Line, "ref", s.Ref, "reason", s.Reason)
		}

		if actionsDryRun {
			if _, err := fmt.Fprint(cmd.OutOrStdout(), result.Content); err != nil {
				return err
			}
			continue
		}

		if !result.Changed() {
			logInfo("%s: nothing to pin", path)
			continue
		}

		if err := app.Default.FS.WriteFile(path, []byte(result.Content), 0644); err != nil {
			return errors.Wrap(errors.ExitGeneralError, "failed to write "+path, err)
		}
		logSuccess("Pinned %d action reference(s) in %s", len(result.Changes), path)
	}

	return nil
}
