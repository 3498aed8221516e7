// Package config provides the .loom.toml project configuration.
//
// # Lookup Order
//
// Resolve picks the first of:
//
//   - an explicit --config path
//   - the LOOM_CONFIG environment variable
//   - the nearest .loom.toml found walking up from the scan target
//   - the built-in defaults
//
// # File Format
//
//	[scan]
//	extensions   = [".ts", ".js", ".tsx", ".jsx"]
//	exclude_dirs = ["node_modules", "dist", ".git", "build"]
//	exclude      = ["**/*.spec.ts"]
//
//	[dupes]
//	min_lines = 5
//
//	[report]
//	format = "text"
//	upload = "s3://bucket/reports/dupes.json"
//
//	[history]
//	enabled = true
//
// Keys missing from the file keep their default values. Unknown keys are
// logged as warnings. Command-line flags that were explicitly set override
// both.
//
// # Validation
//
// Load validates after parsing; thresholds must be positive, the report
// format must be known and uploads must use an s3:// URL.
package config
