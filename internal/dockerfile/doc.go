// Package dockerfile lints Dockerfiles for common anti-patterns and
// generates multi-stage Dockerfiles for Node.js, Python and Go services.
//
// Lint works line by line on the raw file. It does not evaluate build
// arguments or follow parser directives, so a finding is a hint rather
// than a verdict. File-level findings (missing USER, no multi-stage
// build, missing .dockerignore) are reported on line 0.
package dockerfile
