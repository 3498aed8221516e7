package workflow

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/maxfahl/Loom-sub002/internal/logging"
)

var (
	usesRe = regexp.MustCompile(`^(\s*(?:-\s*)?uses:\s*)(["']?)([^#\s"']+)(["']?)(.*)$`)
	shaRe  = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

// Change is one rewritten reference.
type Change struct {
	Line   int    `json:"line"`
	Action string `json:"action"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// Skip is a reference left untouched and why.
type Skip struct {
	Line   int    `json:"line"`
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

// Result is the outcome of Pin.
type Result struct {
	Content string
	Changes []Change
	Skipped []Skip

	// NoJobs is set when the document has no jobs section; Content is the input.
	NoJobs bool
}

// Changed reports whether any reference was rewritten.
func (r *Result) Changed() bool {
	return len(r.Changes) > 0
}

// Action is a parsed `uses:` reference.
type Action struct {
	Owner string
	Repo  string
	Path  string // subdirectory for actions in a monorepo, e.g. "init" in github/codeql-action/init
	Ref   string
}

// Name returns owner/repo[/path].
func (a Action) Name() string {
	name := a.Owner + "/" + a.Repo
	if a.Path != "" {
		name += "/" + a.Path
	}
	return name
}

// ParseAction splits owner/repo[/path]@ref. The reason is non-empty when the
// reference cannot be pinned.
func ParseAction(ref string) (Action, string) {
	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") {
		return Action{}, "local action"
	}
	if strings.HasPrefix(ref, "docker://") {
		return Action{}, "docker image"
	}

	name, version, ok := strings.Cut(ref, "@")
	if !ok || version == "" {
		return Action{}, "no version specified"
	}
	if shaRe.MatchString(version) {
		return Action{}, "already pinned to a SHA"
	}

	parts := strings.SplitN(name, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Action{}, "not an owner/repo reference"
	}

	a := Action{Owner: parts[0], Repo: parts[1], Ref: version}
	if len(parts) == 3 {
		a.Path = parts[2]
	}
	return a, ""
}

// Pin rewrites every pinnable `uses:` reference in content to a commit SHA.
// Unparsable YAML is an error. A failed lookup leaves the line as is, except
// ErrForbidden, which aborts the run.
func Pin(ctx context.Context, content string, resolver Resolver) (*Result, error) {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, err
	}

	result := &Result{Content: content}
	if _, ok := doc["jobs"]; !ok {
		result.NoJobs = true
		return result, nil
	}

	resolved := make(map[string]string)
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		m := usesRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		prefix, openQuote, ref, closeQuote, rest := m[1], m[2], m[3], m[4], m[5]
		num := i + 1

		action, reason := ParseAction(ref)
		if reason != "" {
			logging.Debug("skipping action", "ref", ref, "line", num, "reason", reason)
			result.Skipped = append(result.Skipped, Skip{Line: num, Ref: ref, Reason: reason})
			continue
		}

		sha, ok := resolved[ref]
		if !ok {
			logging.Debug("resolving action", "ref", ref)
			var err error
			sha, err = resolver.Resolve(ctx, action.Owner, action.Repo, action.Ref)
			if errors.Is(err, ErrForbidden) || ctx.Err() != nil {
				if err == nil {
					err = ctx.Err()
				}
				return nil, err
			}
			if err != nil {
				logging.Warn("could not resolve action, keeping original reference", "ref", ref, "error", err)
				result.Skipped = append(result.Skipped, Skip{Line: num, Ref: ref, Reason: err.Error()})
				continue
			}
			resolved[ref] = sha
		}

		pinned := action.Name() + "@" + sha
		lines[i] = fmt.Sprintf("%s%s%s%s # %s%s", prefix, openQuote, pinned, closeQuote, action.Ref, rest)
		result.Changes = append(result.Changes, Change{Line: num, Action: action.Name(), From: action.Ref, To: sha})
	}

	result.Content = strings.Join(lines, "\n")
	return result, nil
}
