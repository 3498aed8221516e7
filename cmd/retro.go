package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/maxfahl/Loom-sub002/internal/app"
	"github.com/maxfahl/Loom-sub002/internal/errors"
	"github.com/maxfahl/Loom-sub002/internal/logging"
	"github.com/maxfahl/Loom-sub002/internal/retro"
	"github.com/maxfahl/Loom-sub002/internal/tui"
)

var retroCmd = &cobra.Command{
	Use:   "retro <name>",
	Short: "Collect retrospective feedback into a Markdown file",
	Long: `Collect feedback in three sections: what went well, what could be improved,
and action items. Enter adds an item; an empty line or "done" moves to the
next section.

The result is written to retro_feedback_<name>.md in the current directory,
or to --output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetro,
}

var retroForce bool

func init() {
	retroCmd.Flags().BoolVar(&retroForce, "force", false, "Overwrite an existing feedback file")
	rootCmd.AddCommand(retroCmd)
}

func runRetro(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")

	var (
		feedback *retro.Feedback
		err      error
	)
	if interactiveInput() && logging.IsTerminal(os.Stdout) {
		feedback, err = tui.RunRetro(name)
		if errors.Is(err, tui.ErrCancelled) {
			logWarning("Retrospective cancelled, nothing written")
			return nil
		}
	} else {
		feedback, err = retro.Collect(app.Default.Stdin, cmd.OutOrStdout(), name)
	}
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "failed to collect feedback", err)
	}

	dir, file := ".", retro.DefaultFileName(name)
	if outputFile != "" {
		dir, file = filepath.Dir(outputFile), filepath.Base(outputFile)
	}

	path, err := writeNew(dir, file, []byte(retro.Render(feedback)), retroForce)
	if err != nil {
		return err
	}

	logSuccess("Feedback saved to %s", path)
	return nil
}

// interactiveInput reports whether prompts are read from a terminal.
func interactiveInput() bool {
	f, ok := app.Default.Stdin.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
