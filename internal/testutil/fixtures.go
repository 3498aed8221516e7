package testutil

import (
	"embed"
	"os"
	"path/filepath"
	"testing"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// MustFixture loads a fixture or fails the test.
func MustFixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := LoadFixture(name)
	if err != nil {
		t.Fatalf("Failed to load fixture %s: %v", name, err)
	}
	return data
}

// WriteFixture copies a fixture to dir/rel, creating parent directories,
// and returns the written path.
func WriteFixture(t testing.TB, dir, name, rel string) string {
	t.Helper()

	if rel == "" {
		rel = name
	}
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, MustFixture(t, name), 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", rel, err)
	}
	return path
}
