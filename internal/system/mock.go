package system

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MockFS is an in-memory FileSystem. Paths are cleaned before lookup.
type MockFS struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
	fails map[string]error
}

// NewMockFS returns an empty MockFS.
func NewMockFS() *MockFS {
	return &MockFS{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
		fails: make(map[string]error),
	}
}

// AddFile stores a file and marks its parent directories as existing.
func (m *MockFS) AddFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.files[path] = data
	m.addParents(path)
}

// Fail makes every operation on path return err.
func (m *MockFS) Fail(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fails[filepath.Clean(path)] = err
}

// File returns the stored contents of path.
func (m *MockFS) File(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[filepath.Clean(path)]
	return data, ok
}

// Paths lists every stored file, sorted.
func (m *MockFS) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (m *MockFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if err := m.fails[path]; err != nil {
		return nil, err
	}
	data, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (m *MockFS) WriteFile(path string, data []byte, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if err := m.fails[path]; err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "/" && !m.dirs[dir] {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func (m *MockFS) MkdirAll(path string, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if err := m.fails[path]; err != nil {
		return err
	}
	if _, isFile := m.files[path]; isFile {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	m.dirs[path] = true
	m.addParents(path)
	return nil
}

func (m *MockFS) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	_, isFile := m.files[path]
	return isFile || m.dirs[path]
}

func (m *MockFS) addParents(path string) {
	for dir := filepath.Dir(path); dir != "." && dir != "/"; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
}

// MockExecutor is a CommandExecutor that answers from canned responses.
//
// A response is looked up by the full command line ("git -C /repo diff
// --name-only HEAD"), then by the command and its first argument, then by
// the bare command name. Unmatched commands fail.
type MockExecutor struct {
	mu        sync.Mutex
	responses map[string]mockResponse

	// Calls records every command line executed, in order.
	Calls []string
}

type mockResponse struct {
	out []byte
	err error
}

// NewMockExecutor returns an executor with no responses.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{responses: make(map[string]mockResponse)}
}

// Respond registers the output and error for a command pattern.
func (m *MockExecutor) Respond(pattern string, out []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[pattern] = mockResponse{out: out, err: err}
}

func (m *MockExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	line := strings.Join(append([]string{name}, args...), " ")
	m.Calls = append(m.Calls, line)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := []string{line}
	if len(args) > 0 {
		keys = append(keys, name+" "+args[0])
	}
	keys = append(keys, name)

	for _, k := range keys {
		if r, ok := m.responses[k]; ok {
			return r.out, r.err
		}
	}
	return nil, fmt.Errorf("%s: no response registered", line)
}
