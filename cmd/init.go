package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maxfahl/Loom-sub002/internal/config"
	"github.com/maxfahl/Loom-sub002/internal/errors"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default .loom.toml",
	Long: `Write a .loom.toml with the built-in defaults and run history enabled.
Edit it to tune thresholds, excluded paths and report settings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing .loom.toml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := resolveTarget(args)
	if err != nil {
		return err
	}

	path, err := config.WriteDefault(dir, initForce)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return errors.FileExists(filepath.Join(dir, config.FileName))
		}
		return errors.Wrap(errors.ExitGeneralError, "failed to write configuration", err)
	}

	logSuccess("Created %s", path)
	return nil
}
