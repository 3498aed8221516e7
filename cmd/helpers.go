package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/spf13/cobra"

	"github.com/maxfahl/Loom-sub002/internal/app"
	"github.com/maxfahl/Loom-sub002/internal/config"
	"github.com/maxfahl/Loom-sub002/internal/errors"
	"github.com/maxfahl/Loom-sub002/internal/history"
	"github.com/maxfahl/Loom-sub002/internal/logging"
	"github.com/maxfahl/Loom-sub002/internal/publish"
	"github.com/maxfahl/Loom-sub002/internal/report"
	"github.com/maxfahl/Loom-sub002/internal/source"
	"github.com/maxfahl/Loom-sub002/internal/vcs"
	"github.com/maxfahl/Loom-sub002/internal/watch"
)

// Scan flags shared by every analyzer command.
var (
	scanExcludeDirs string
	scanExclude     []string
	scanExt         string
	scanSince       string
	scanWatch       bool
)

func addScanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&scanExcludeDirs, "exclude-dirs", strings.Join(config.DefaultExcludeDirs, ","), "Comma-separated directory names to skip")
	f.StringArrayVar(&scanExclude, "exclude", nil, "Glob of paths to skip, relative to the target (repeatable)")
	f.StringVar(&scanExt, "ext", strings.Join(config.DefaultExtensions, ","), "Comma-separated file extensions to scan")
	f.StringVar(&scanSince, "since", "", "Only scan files changed since this git revision")
	f.BoolVar(&scanWatch, "watch", false, "Re-run when files change, until interrupted")
}

// resolveTarget returns the path argument, or "." when none is given.
func resolveTarget(args []string) (string, error) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	if _, err := os.Stat(target); err != nil {
		return "", errors.InvalidPath(target)
	}
	return filepath.Clean(target), nil
}

// loadConfig resolves the configuration for target and applies every flag
// the user set explicitly.
func loadConfig(cmd *cobra.Command, target string) (*config.Config, error) {
	cfg, err := config.Resolve(configPath, target)
	if err != nil {
		return nil, errors.ConfigError("failed to load configuration", err)
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	if changed("format") {
		cfg.Report.Format = outputFormat
	}
	if changed("upload") {
		cfg.Report.Upload = uploadURL
	}
	if changed("exclude-dirs") {
		cfg.Scan.ExcludeDirs = config.SplitList(scanExcludeDirs)
	}
	if changed("exclude") {
		cfg.Scan.Exclude = append(cfg.Scan.Exclude, scanExclude...)
	}
	if changed("ext") {
		var exts []string
		for _, ext := range config.SplitList(scanExt) {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			exts = append(exts, ext)
		}
		cfg.Scan.Extensions = exts
	}
	if changed("min-lines") {
		cfg.Dupes.MinLines = dupesMinLines
	}
	if changed("merge") {
		cfg.Dupes.Merge = dupesMerge
	}
	if changed("threshold") {
		cfg.Complexity.Threshold = complexityThreshold
	}
	if changed("max-lines") {
		cfg.LongFunctions.MaxLines = maxFunctionLines
	}
	if changed("min-length") {
		cfg.Names.MinLength = minNameLength
	}
	if changed("max-methods") {
		cfg.SRP.MaxPublicMethods = maxPublicMethods
	}
	if changed("min-branches") {
		cfg.OCP.MinBranches = minBranches
	}
	if changed("allow-new") {
		cfg.DIP.ExcludePatterns = append(cfg.DIP.ExcludePatterns, config.SplitList(dipAllowNew)...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// collectFiles loads the files an analyzer should look at. With --since only
// files git reports as changed are kept.
func collectFiles(ctx context.Context, target string, cfg *config.Config) ([]source.File, error) {
	opts := source.Options{
		Extensions:  cfg.Scan.Extensions,
		ExcludeDirs: cfg.Scan.ExcludeDirs,
		Exclude:     cfg.Scan.Exclude,
		Workers:     cfg.Scan.Workers,
	}

	if scanSince != "" {
		dir := target
		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			dir = filepath.Dir(target)
		}
		changed, err := vcs.NewGit(app.Default.Executor).ChangedFiles(ctx, dir, scanSince)
		if err != nil {
			return nil, errors.Wrap(errors.ExitGeneralError, "failed to list changed files", err)
		}
		opts.Only = changed
		if opts.Only == nil {
			opts.Only = []string{}
		}
	}

	files, err := source.Collect(ctx, app.Default.FS, target, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ExitGeneralError, "failed to read source files", err)
	}
	return files, nil
}

// scanFunc turns loaded files into a report.
type scanFunc func(ctx context.Context, cfg *config.Config, target string, files []source.File) (*report.Report, error)

// runScan is the shared RunE body of the analyzer commands.
func runScan(cmd *cobra.Command, args []string, scan scanFunc) error {
	target, err := resolveTarget(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, target)
	if err != nil {
		return err
	}

	if scanWatch {
		return watchScan(cmd, target, cfg, scan)
	}
	return scanOnce(cmd.Context(), cmd, target, cfg, scan)
}

func scanOnce(ctx context.Context, cmd *cobra.Command, target string, cfg *config.Config, scan scanFunc) error {
	start := time.Now()

	files, err := collectFiles(ctx, target, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logWarning("No matching files found in %s", target)
		return nil
	}

	r, err := scan(ctx, cfg, target, files)
	if err != nil {
		return err
	}
	r.FilesScanned = len(files)

	return emit(ctx, cmd, cfg, target, r, time.Since(start))
}

func watchScan(cmd *cobra.Command, target string, cfg *config.Config, scan scanFunc) error {
	root := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		root = filepath.Dir(target)
	}

	w, err := watch.New(root, watch.Options{
		Extensions:  cfg.Scan.Extensions,
		ExcludeDirs: cfg.Scan.ExcludeDirs,
	})
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "failed to watch "+root, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func(ctx context.Context) {
		if err := scanOnce(ctx, cmd, target, cfg, scan); err != nil && !errors.IsFindings(err) {
			logWarning("%v", err)
		}
	}

	run(ctx)
	logInfo("Watching %s for changes (Ctrl-C to stop)", root)

	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		logging.Debug("change detected", "files", len(changed))
		run(ctx)
		return nil
	})
}

// emit renders r, then uploads and records it as configured. It returns a
// findings error when r is not empty so the process exits with status 1.
func emit(ctx context.Context, cmd *cobra.Command, cfg *config.Config, target string, r *report.Report, elapsed time.Duration) error {
	r.Sort()

	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return errors.ConfigError("invalid report format", err)
	}

	if outputFile != "" {
		data, err := report.Bytes(r, format)
		if err != nil {
			return errors.Wrap(errors.ExitGeneralError, "failed to render report", err)
		}
		if err := app.Default.FS.WriteFile(outputFile, data, 0644); err != nil {
			return errors.Wrap(errors.ExitGeneralError, "failed to write report", err)
		}
		logSuccess("Report written to %s", outputFile)
	} else {
		out := cmd.OutOrStdout()
		tty := logging.IsTerminal(out)
		opts := report.Options{Color: tty && logging.ColorEnabled(), Terminal: tty}
		if err := report.Render(out, r, format, opts); err != nil {
			return errors.Wrap(errors.ExitGeneralError, "failed to render report", err)
		}
	}

	uploaded, err := upload(ctx, cfg, r, format)
	if err != nil {
		return err
	}

	record(cfg, target, r, elapsed, uploaded)

	if n := r.Count(); n > 0 {
		return errors.FindingsReported(r.Tool, n)
	}
	return nil
}

// upload sends the rendered report to the configured S3 location and returns
// its URL, or "" when uploads are off.
func upload(ctx context.Context, cfg *config.Config, r *report.Report, format report.Format) (string, error) {
	if cfg.Report.Upload == "" {
		return "", nil
	}

	name := fmt.Sprintf("%s-%s%s", r.Tool, r.ID, format.Extension())
	loc, err := publish.ParseURL(cfg.Report.Upload, name)
	if err != nil {
		return "", errors.ConfigError("invalid upload destination", err)
	}

	data, err := report.Bytes(r, format)
	if err != nil {
		return "", errors.Wrap(errors.ExitGeneralError, "failed to render report", err)
	}

	client, err := app.Default.Uploader(ctx, publish.Options{
		Endpoint: cfg.Report.S3Endpoint,
		Region:   cfg.Report.S3Region,
	})
	if err != nil {
		return "", errors.RemoteError("s3", err)
	}

	if err := publish.Upload(ctx, client, loc, data, publish.ContentType(format.Extension())); err != nil {
		return "", errors.RemoteError("s3", err)
	}

	logSuccess("Uploaded report to %s", loc)
	return loc.String(), nil
}

// historyStore returns the run history location for cfg: the history
// directory next to .loom.toml, or inside target without a config file.
func historyStore(cfg *config.Config, target string) *history.Store {
	base := cfg.Root()
	if base == "" {
		base = target
		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			base = filepath.Dir(target)
		}
	}
	dir := cfg.History.Dir
	if dir == "" {
		dir = config.DefaultHistoryDir
	}
	return history.NewStore(filepath.Join(base, dir))
}

func record(cfg *config.Config, target string, r *report.Report, elapsed time.Duration, uploaded string) {
	if !cfg.History.Enabled {
		return
	}

	store := historyStore(cfg, target)
	err := store.Record(history.Entry{
		ID:        r.ID,
		Timestamp: r.CreatedAt,
		Tool:      r.Tool,
		Target:    r.Target,
		Files:     r.FilesScanned,
		Findings:  r.Count(),
		Duration:  history.Duration(elapsed),
		Upload:    uploaded,
	})
	if err != nil {
		logging.Warn("failed to record run history", "path", store.Path(), "error", err)
	}
}

// writeNew writes content to name inside dir. name cannot escape dir, and an
// existing file is only replaced with force.
func writeNew(dir, name string, content []byte, force bool) (string, error) {
	path, err := securejoin.SecureJoin(dir, name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}

	fsys := app.Default.FS
	if fsys.Exists(path) && !force {
		return "", errors.FileExists(path)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := fsys.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// readInput reads a file named on the command line.
func readInput(path string) ([]byte, error) {
	data, err := app.Default.FS.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InvalidPath(path)
		}
		return nil, errors.Wrap(errors.ExitGeneralError, "failed to read "+path, err)
	}
	return data, nil
}
