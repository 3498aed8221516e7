package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/maxfahl/Loom-sub002/internal/analyzer"
	"github.com/maxfahl/Loom-sub002/internal/config"
	"github.com/maxfahl/Loom-sub002/internal/report"
	"github.com/maxfahl/Loom-sub002/internal/source"
)

var (
	complexityThreshold int
	maxFunctionLines    int
	minNameLength       int
	maxPublicMethods    int
	minBranches         int
	dipAllowNew         string
)

const heuristicNote = `
This is a heuristic based on syntax alone. It may report false positives and
miss real problems.`

var complexityCmd = newAnalyzerCmd("complexity",
	"Report functions with high cyclomatic complexity",
	`Report functions whose cyclomatic complexity reaches --threshold.

Complexity starts at 1 and grows by one for each if, loop, case, catch,
conditional expression and && / || / ?? operator in the function body.
Nested functions are measured separately.`)

var longFunctionsCmd = newAnalyzerCmd("long-functions",
	"Report functions with too many lines",
	`Report functions whose body has more than --max-lines non-blank lines.`)

var namesCmd = newAnalyzerCmd("names",
	"Report generic or very short identifiers",
	`Report variable, parameter and function names that are generic (temp, data,
val, ...) or shorter than --min-length. The loop counters i, j and k are
allowed.`)

var srpCmd = newAnalyzerCmd("srp",
	"Report classes with many public methods",
	`Report classes with more than --max-methods public methods, a hint that the
class may have more than one responsibility.`)

var ocpCmd = newAnalyzerCmd("ocp",
	"Report long if/else-if chains and switches",
	`Report if/else-if chains and switch statements with at least --min-branches
branches, a hint that new cases require modifying existing code.`)

var dipCmd = newAnalyzerCmd("dip",
	"Report direct instantiation of concrete classes",
	`Report "new Concrete()" expressions, a hint that a dependency could be
injected instead. Built-ins such as Date, Error and Map are allowed, and
--allow-new adds more.`)

func init() {
	complexityCmd.Flags().IntVar(&complexityThreshold, "threshold", config.DefaultComplexity, "Report functions at or above this complexity")
	longFunctionsCmd.Flags().IntVar(&maxFunctionLines, "max-lines", config.DefaultMaxFunctionLines, "Maximum non-blank lines per function body")
	namesCmd.Flags().IntVar(&minNameLength, "min-length", config.DefaultMinNameLength, "Minimum identifier length")
	srpCmd.Flags().IntVar(&maxPublicMethods, "max-methods", config.DefaultMaxPublicMethods, "Maximum public methods per class")
	ocpCmd.Flags().IntVar(&minBranches, "min-branches", config.DefaultMinBranches, "Minimum branches to report")
	dipCmd.Flags().StringVar(&dipAllowNew, "allow-new", "", "Comma-separated class names that may be instantiated directly")

	for _, c := range []*cobra.Command{complexityCmd, longFunctionsCmd, namesCmd, srpCmd, ocpCmd, dipCmd} {
		addScanFlags(c)
		rootCmd.AddCommand(c)
	}
}

func newAnalyzerCmd(name, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [path]",
		Short: short,
		Long:  long + "\n" + heuristicNote,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, analyze(name))
		},
	}
}

func analyze(name string) scanFunc {
	return func(ctx context.Context, cfg *config.Config, target string, files []source.File) (*report.Report, error) {
		a, err := analyzer.New(name, cfg)
		if err != nil {
			return nil, err
		}

		findings, err := analyzer.Run(ctx, files, a, cfg.Scan.Workers)
		if err != nil {
			return nil, err
		}

		r := report.New(a.Name(), a.Title(), target)
		r.Add(findings...)
		return r, nil
	}
}
