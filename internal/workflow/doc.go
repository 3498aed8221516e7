// Package workflow pins GitHub Actions references in workflow files to
// commit SHAs.
//
// References are found with a line-oriented match on `uses:` so that
// comments and formatting survive the rewrite. Each pinned line keeps the
// original ref as a trailing comment:
//
//	- uses: actions/checkout@8f4b7f84864484a7bf31766abe9204da3cbe65b3 # v4
//
// Tags are resolved before branches. Annotated tags are dereferenced to
// the commit they point at.
package workflow
