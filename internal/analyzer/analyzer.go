package analyzer

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/maxfahl/Loom-sub002/internal/config"
	"github.com/maxfahl/Loom-sub002/internal/jsast"
	"github.com/maxfahl/Loom-sub002/internal/logging"
	"github.com/maxfahl/Loom-sub002/internal/report"
	"github.com/maxfahl/Loom-sub002/internal/source"
)

// Analyzer checks one parsed file.
type Analyzer interface {
	// Name is the subcommand and rule family, e.g. "complexity".
	Name() string

	// Title heads the rendered report.
	Title() string

	Check(unit *jsast.Unit) []report.Finding
}

// Run parses files concurrently and applies a to each. Files that cannot be
// parsed are skipped with a warning.
func Run(ctx context.Context, files []source.File, a Analyzer, workers int) ([]report.Finding, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([][]report.Finding, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !jsast.Supported(f.Path) {
				logging.Debug("skipping unsupported file", "path", f.Path)
				return nil
			}

			unit, err := jsast.Parse(gctx, f.Path, []byte(strings.Join(f.Lines, "\n")))
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logging.Warn("skipping file that failed to parse", "path", f.Path, "error", err)
				return nil
			}

			results[i] = a.Check(unit)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var findings []report.Finding
	for _, r := range results {
		findings = append(findings, r...)
	}
	return findings, nil
}

// Names lists the analyzers New accepts.
var Names = []string{"complexity", "long-functions", "names", "srp", "ocp", "dip"}

// New builds the named analyzer from configuration.
func New(name string, cfg *config.Config) (Analyzer, error) {
	switch name {
	case "complexity":
		return &Complexity{Threshold: cfg.Complexity.Threshold}, nil
	case "long-functions":
		return &LongFunctions{MaxLines: cfg.LongFunctions.MaxLines}, nil
	case "names":
		return NewNameChecker(cfg.Names.MinLength, cfg.Names.GenericNames), nil
	case "srp":
		return &SRP{MaxPublicMethods: cfg.SRP.MaxPublicMethods}, nil
	case "ocp":
		return &OCP{MinBranches: cfg.OCP.MinBranches}, nil
	case "dip":
		return NewDIP(cfg.DIP.ExcludePatterns), nil
	}
	return nil, fmt.Errorf("unknown analyzer: %s", name)
}
