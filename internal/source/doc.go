// Package source selects and loads the files an analyzer runs over.
//
// Selection walks a target directory, skipping excluded directory names,
// doublestar exclude globs (matched against the slash-separated path relative
// to the target, and against the base name) and files whose extension is not
// listed. A single-file target is subject to the same extension filter.
//
// Loading reads the selected files concurrently and returns them sorted by
// path, so results are identical to a sequential pass. Files that cannot be
// read are skipped with a warning.
package source
