package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/maxfahl/Loom-sub002/internal/logging"
)

var (
	configPath   string
	outputFormat string
	outputFile   string
	uploadURL    string
	noColor      bool
	verbose      bool
	logJSON      bool
)

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "Code-quality and infrastructure helper tools",
	Long: `loom bundles small, independent code-quality and infrastructure helpers.

Static-analysis commands (dupes, complexity, long-functions, names, srp, ocp,
dip) are heuristics: they may report false positives and miss real problems.
They exit with status 1 when they report findings.

Configuration is read from .loom.toml, found by walking up from the scanned
path, or from --config / $LOOM_CONFIG. Flags override the file.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, logJSON, os.Stderr)
		logging.SetColor(!noColor && os.Getenv("NO_COLOR") == "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to .loom.toml (default: search upwards from the target)")
	pf.StringVarP(&outputFormat, "format", "f", "text", "Report format: text, json, yaml, or markdown")
	pf.StringVarP(&outputFile, "output", "o", "", "Write the report to a file instead of stdout")
	pf.StringVar(&uploadURL, "upload", "", "Upload the report to s3://bucket/key")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)
