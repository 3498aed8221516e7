// Package analyzer implements the heuristic code-quality checks that run
// over JavaScript and TypeScript sources.
//
// Every analyzer is a best-effort heuristic. It works from the syntax tree
// only, has no type information, and will report false positives and miss
// real problems. Results are hints for a reviewer, not verdicts.
//
// Files are parsed concurrently; findings come back in file order.
package analyzer
