// Package system abstracts the file and process operations loom performs so
// commands can run against fakes in tests.
package system

import (
	"context"
	"io/fs"
	"os"
)

// FileSystem covers reading inputs and writing generated files. Directory
// walking goes through the os package directly.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error

	// Exists reports whether anything, file or directory, is at path.
	Exists(path string) bool
}

// CommandExecutor runs external programs such as git.
type CommandExecutor interface {
	// Execute runs a command and returns its standard output.
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultFS returns the FileSystem backed by the os package.
func DefaultFS() FileSystem {
	return osFileSystem{}
}

// DefaultExecutor returns the CommandExecutor backed by os/exec.
func DefaultExecutor() CommandExecutor {
	return osExecutor{}
}

type osFileSystem struct{}

func (osFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (osFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (osFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (osFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
