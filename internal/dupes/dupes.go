package dupes

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/maxfahl/Loom-sub002/internal/source"
)

// Options controls detection.
type Options struct {
	// MinLines is the window length. Values below 1 are treated as 1.
	MinLines int

	// IgnoreBlank skips windows whose lines are all blank.
	IgnoreBlank bool

	// Merge coalesces groups that continue each other line by line into
	// one group covering the longest block.
	Merge bool

	// MaxSnippetLines caps Group.Snippet; 0 keeps the whole block.
	MaxSnippetLines int
}

// Location is a 1-based block start.
type Location struct {
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

// Group is a block of Lines lines found verbatim (after trimming) at every Location.
type Group struct {
	Fingerprint string     `json:"fingerprint" yaml:"fingerprint"`
	Lines       int        `json:"lines" yaml:"lines"`
	Locations   []Location `json:"locations" yaml:"locations"`
	Snippet     []string   `json:"snippet" yaml:"snippet"`
}

// Normalize trims every line and joins them with "\n".
func Normalize(lines []string) string {
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimSpace(line)
	}
	return strings.Join(trimmed, "\n")
}

// Fingerprint returns the hex SHA-256 of the normalized lines.
func Fingerprint(lines []string) string {
	sum := sha256.Sum256([]byte(Normalize(lines)))
	return hex.EncodeToString(sum[:])
}

// Detect returns every duplicate group in files, ordered by first location.
func Detect(files []source.File, opts Options) []Group {
	minLines := opts.MinLines
	if minLines < 1 {
		minLines = 1
	}

	content := make(map[string][]string, len(files))
	index := make(map[string][]Location)
	var order []string

	for _, f := range files {
		content[f.Path] = f.Lines
		for i := 0; i+minLines <= len(f.Lines); i++ {
			window := f.Lines[i : i+minLines]
			normalized := Normalize(window)
			if opts.IgnoreBlank && strings.TrimSpace(normalized) == "" {
				continue
			}
			sum := sha256.Sum256([]byte(normalized))
			fp := hex.EncodeToString(sum[:])
			if _, seen := index[fp]; !seen {
				order = append(order, fp)
			}
			index[fp] = append(index[fp], Location{File: f.Path, Line: i + 1})
		}
	}

	var groups []Group
	for _, fp := range order {
		locs := collapse(index[fp], minLines)
		if len(locs) < 2 {
			continue
		}
		groups = append(groups, Group{
			Fingerprint: fp,
			Lines:       minLines,
			Locations:   locs,
		})
	}

	if opts.Merge {
		groups = merge(groups, content)
	}

	for i := range groups {
		first := groups[i].Locations[0]
		groups[i].Snippet = snippet(content[first.File], first.Line, groups[i].Lines, opts.MaxSnippetLines)
	}

	sortGroups(groups)
	return groups
}

// collapse sorts locations and drops same-file occurrences that start less
// than minLines after the last kept one.
func collapse(locs []Location, minLines int) []Location {
	sorted := append([]Location(nil), locs...)
	sortLocations(sorted)

	kept := sorted[:0]
	lastKept := make(map[string]int)
	for _, loc := range sorted {
		if prev, ok := lastKept[loc.File]; ok && loc.Line-prev < minLines {
			continue
		}
		lastKept[loc.File] = loc.Line
		kept = append(kept, loc)
	}
	return kept
}

// merge joins chains of groups whose locations are the previous group's
// locations shifted down by one line. A chain whose merged block would
// overlap itself within a file is left unmerged.
func merge(groups []Group, content map[string][]string) []Group {
	byKey := make(map[string]int, len(groups))
	for i, g := range groups {
		byKey[locationKey(g.Locations, 0)] = i
	}

	hasPrev := make([]bool, len(groups))
	next := make([]int, len(groups))
	for i, g := range groups {
		next[i] = -1
		if j, ok := byKey[locationKey(g.Locations, 1)]; ok {
			next[i] = j
			hasPrev[j] = true
		}
	}

	var merged []Group
	for i, g := range groups {
		if hasPrev[i] {
			continue
		}
		length := g.Lines
		chain := []Group{g}
		for j := next[i]; j >= 0; j = next[j] {
			length++
			chain = append(chain, groups[j])
		}
		// A longer block can make same-file occurrences overlap again.
		if len(collapse(g.Locations, length)) != len(g.Locations) {
			merged = append(merged, chain...)
			continue
		}
		if length != g.Lines {
			first := g.Locations[0]
			lines := content[first.File]
			g.Fingerprint = Fingerprint(lines[first.Line-1 : first.Line-1+length])
			g.Lines = length
		}
		merged = append(merged, g)
	}
	return merged
}

func locationKey(locs []Location, shift int) string {
	var b strings.Builder
	for _, loc := range locs {
		b.WriteString(loc.File)
		b.WriteByte(0)
		b.WriteString(strconv.Itoa(loc.Line + shift))
		b.WriteByte(0)
	}
	return b.String()
}

func snippet(lines []string, start, length, max int) []string {
	if max > 0 && length > max {
		length = max
	}
	end := start - 1 + length
	if end > len(lines) {
		end = len(lines)
	}
	return append([]string(nil), lines[start-1:end]...)
}

func sortLocations(locs []Location) {
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].File != locs[j].File {
			return locs[i].File < locs[j].File
		}
		return locs[i].Line < locs[j].Line
	})
}

func sortGroups(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Locations[0], groups[j].Locations[0]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return groups[i].Fingerprint < groups[j].Fingerprint
	})
}
