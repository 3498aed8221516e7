package dockerfile

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/maxfahl/Loom-sub002/internal/report"
	"github.com/maxfahl/Loom-sub002/internal/source"
	"github.com/maxfahl/Loom-sub002/internal/system"
)

// Rule names used in findings.
const (
	RuleLatestTag    = "latest-tag"
	RuleRootUser     = "root-user"
	RulePreferCopy   = "prefer-copy"
	RuleAptUpdate    = "apt-update"
	RuleNoUser       = "no-user"
	RuleMultiStage   = "multi-stage"
	RuleDockerignore = "dockerignore"
)

var (
	fromLatestRe = regexp.MustCompile(`(?i)^FROM\s+[^\s:]+:latest\s*$`)
	userRootRe   = regexp.MustCompile(`(?i)^USER\s+root\s*$`)
	userRe       = regexp.MustCompile(`(?i)^USER\s+\w+\s*$`)
	addRe        = regexp.MustCompile(`(?i)^ADD\s+\S+\s+\S+\s*$`)
	fromStageRe  = regexp.MustCompile(`(?i)^FROM\s+\S+\s+AS\s+\w+\s*$`)
	aptUpdateRe  = regexp.MustCompile(`(?i)^RUN\s+apt-get\s+update\s*$`)
	aptInstallRe = regexp.MustCompile(`(?i)^RUN\s+apt-get\s+install\s+.*$`)
	aptCleanupRe = regexp.MustCompile(`(?i)^RUN\s+.*rm\s+-rf\s+/var/lib/apt/lists/\*.*$`)
)

// Lint reads the Dockerfile at path and returns its findings in line order,
// followed by the file-level findings.
func Lint(fsys system.FileSystem, path string) ([]report.Finding, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}

	findings := LintContent(path, source.SplitLines(string(data)))

	ignore := filepath.Join(filepath.Dir(path), ".dockerignore")
	if !fsys.Exists(ignore) {
		findings = append(findings, report.Finding{
			File:     path,
			Rule:     RuleDockerignore,
			Severity: report.SeverityWarning,
			Message:  "A .dockerignore file is missing. This can lead to larger image sizes and slower builds.",
		})
	}

	return findings, nil
}

// LintContent applies the line rules and the USER and multi-stage checks to
// already split lines. It does not look for .dockerignore.
func LintContent(path string, lines []string) []report.Finding {
	var (
		findings  []report.Finding
		hasUser   bool
		hasStages bool
		aptLine   int
	)

	add := func(line int, rule string, sev report.Severity, msg, snippet string) {
		f := report.Finding{File: path, Line: line, Rule: rule, Severity: sev, Message: msg}
		if snippet != "" {
			f.Details = []string{"Code: " + snippet}
		}
		findings = append(findings, f)
	}

	for i, line := range lines {
		num := i + 1
		trimmed := strings.TrimSpace(line)

		if fromLatestRe.MatchString(line) {
			add(num, RuleLatestTag, report.SeverityError,
				"Avoid using 'latest' tag for base images. Pin to a specific version for reproducibility.", trimmed)
		}

		if userRootRe.MatchString(line) {
			add(num, RuleRootUser, report.SeverityError,
				"Avoid running containers as 'root'. Use a non-root user for security.", trimmed)
		}
		if userRe.MatchString(line) {
			hasUser = true
		}

		if addRe.MatchString(line) && !strings.Contains(strings.ToLower(line), "--from=") {
			add(num, RulePreferCopy, report.SeverityWarning,
				"Prefer COPY over ADD for copying local files. ADD has extra features that can be misused.", trimmed)
		}

		if fromStageRe.MatchString(line) {
			hasStages = true
		}

		// Blank lines and comments between the update and its follow-up do
		// not end the pending apt-get update.
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch {
		case aptUpdateRe.MatchString(line):
			aptLine = num
		case aptLine != 0 && aptInstallRe.MatchString(line):
			add(aptLine, RuleAptUpdate, report.SeverityWarning,
				"Combine 'apt-get update' and 'apt-get install' into a single RUN command with cleanup (rm -rf /var/lib/apt/lists/*) to minimize layers and image size.",
				strings.TrimSpace(lines[aptLine-1]))
			aptLine = 0
		case aptLine != 0 && aptCleanupRe.MatchString(line):
			aptLine = 0
		case aptLine != 0:
			add(aptLine, RuleAptUpdate, report.SeverityWarning,
				"'apt-get update' should be followed by 'apt-get install' and cleanup (rm -rf /var/lib/apt/lists/*) in the same RUN command.",
				strings.TrimSpace(lines[aptLine-1]))
			aptLine = 0
		}
	}

	if aptLine != 0 {
		add(aptLine, RuleAptUpdate, report.SeverityWarning,
			"'apt-get update' should be followed by 'apt-get install' and cleanup (rm -rf /var/lib/apt/lists/*) in the same RUN command.",
			strings.TrimSpace(lines[aptLine-1]))
	}

	if !hasUser {
		add(0, RuleNoUser, report.SeverityWarning,
			"Consider running your application as a non-root user for better security. Use the USER directive.", "")
	}
	if !hasStages {
		add(0, RuleMultiStage, report.SeverityInfo,
			"Consider using multi-stage builds to reduce image size and attack surface.", "")
	}

	return findings
}

// Summary describes the findings count for log output.
func Summary(findings []report.Finding) string {
	var errs, warns, infos int
	for _, f := range findings {
		switch f.Severity {
		case report.SeverityError:
			errs++
		case report.SeverityWarning:
			warns++
		default:
			infos++
		}
	}
	return fmt.Sprintf("%d error(s), %d warning(s), %d info", errs, warns, infos)
}
