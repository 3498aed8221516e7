// Package jsast extracts the syntax facts the heuristic analyzers need from
// JavaScript and TypeScript sources.
//
// Parsing uses tree-sitter, which recovers from syntax errors, so a file with
// mistakes still yields the functions and classes that could be recognized.
// Parse only fails when the grammar cannot be chosen or parsing is canceled.
//
// The extracted Unit is deliberately shallow: function spans and their
// cyclomatic complexity, classes with their public methods, branching
// constructs, constructor calls and declared names.
package jsast
