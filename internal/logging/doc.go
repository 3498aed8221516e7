// Package logging separates loom's two output channels.
//
// Diagnostics go through a process-wide slog logger configured by Setup.
// They are text by default, JSON with --log-json, and include debug records
// only with --verbose:
//
//	logging.Debug("loaded files", "count", len(files), "root", root)
//	logging.Warn("skipping unreadable file", "path", path, "error", err)
//
// Messages meant for the person running the command use the User helpers,
// which prefix a glyph (ℹ ✓ ⚠ ✗). Info and success lines go to stdout,
// warnings and errors to stderr:
//
//	logging.UserInfo("Analyzing %d files...", n)
//	logging.UserWarning("No relevant files found to analyze")
//
// Glyphs are colored with lipgloss unless SetColor(false) was called.
package logging
