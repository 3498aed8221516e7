// Package dupes finds exact duplicate code blocks across a set of files.
//
// Every window of MinLines consecutive lines is normalized (each line
// trimmed, lines joined with "\n") and fingerprinted with SHA-256. Windows
// sharing a fingerprint form a candidate group. Within a group, occurrences
// in the same file that start less than MinLines apart describe one physical
// block and collapse to the earliest. Groups left with two or more
// occurrences are reported.
//
// Only exact matches after whitespace trimming are found. Renamed variables
// or reordered statements are not detected.
package dupes
