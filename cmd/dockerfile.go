package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/maxfahl/Loom-sub002/internal/app"
	"github.com/maxfahl/Loom-sub002/internal/dockerfile"
	"github.com/maxfahl/Loom-sub002/internal/errors"
	"github.com/maxfahl/Loom-sub002/internal/report"
)

var dockerfileCmd = &cobra.Command{
	Use:   "dockerfile",
	Short: "Lint and generate Dockerfiles",
}

var dockerfileLintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Check a Dockerfile for common mistakes",
	Long: `Check a Dockerfile for common mistakes: unpinned base images, running as
root, ADD where COPY would do, apt-get update in its own layer, no USER, no
multi-stage build and a missing .dockerignore.

path may be a Dockerfile or a directory containing one (default: .).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDockerfileLint,
}

var dockerfileGenerateCmd = &cobra.Command{
	Use:   "generate <kind> [dir]",
	Short: "Write a multi-stage Dockerfile template",
	Long: fmt.Sprintf(`Write a multi-stage Dockerfile for a project kind (%s) into dir
(default: .). The result passes "loom dockerfile lint" apart from the
.dockerignore check.

--cmd takes a shell-style command line and is written in exec form:
  loom dockerfile generate nodejs --cmd "node server.js --port 3000"`, strings.Join(dockerfile.Kinds(), ", ")),
	Args: cobra.RangeArgs(1, 2),
	RunE: runDockerfileGenerate,
}

var (
	generatePort    int
	generateCommand string
	generateName    string
	generateForce   bool
	generateDryRun  bool
)

func init() {
	dockerfileGenerateCmd.Flags().IntVar(&generatePort, "port", 0, "Port to EXPOSE (default depends on kind)")
	dockerfileGenerateCmd.Flags().StringVar(&generateCommand, "cmd", "", "Container command (default depends on kind)")
	dockerfileGenerateCmd.Flags().StringVar(&generateName, "name", dockerfile.DefaultFileName, "Output file name inside dir")
	dockerfileGenerateCmd.Flags().BoolVar(&generateForce, "force", false, "Overwrite an existing file")
	dockerfileGenerateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Print the Dockerfile instead of writing it")

	dockerfileCmd.AddCommand(dockerfileLintCmd)
	dockerfileCmd.AddCommand(dockerfileGenerateCmd)
	rootCmd.AddCommand(dockerfileCmd)
}

func runDockerfileLint(cmd *cobra.Command, args []string) error {
	start := time.Now()

	target, err := resolveTarget(args)
	if err != nil {
		return err
	}

	path := target
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		path = filepath.Join(target, dockerfile.DefaultFileName)
		if _, err := os.Stat(path); err != nil {
			return errors.InvalidPath(path)
		}
	}

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	findings, err := dockerfile.Lint(app.Default.FS, path)
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "failed to lint "+path, err)
	}

	r := report.New("dockerfile", "Dockerfile Lint Report", path)
	r.FilesScanned = 1
	r.Add(findings...)

	return emit(cmd.Context(), cmd, cfg, path, r, time.Since(start))
}

func runDockerfileGenerate(cmd *cobra.Command, args []string) error {
	kind := args[0]
	dir := "."
	if len(args) > 1 {
		dir = args[1]
	}

	content, err := dockerfile.Generate(kind, dockerfile.GenerateOptions{
		Port: generatePort,
		Cmd:  generateCommand,
	})
	if err != nil {
		return err
	}

	if generateDryRun {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}

	path, err := dockerfile.Write(app.Default.FS, dir, generateName, content, generateForce)
	if err != nil {
		return err
	}

	logSuccess("Generated %s Dockerfile at %s", kind, path)
	return nil
}
