package testutil

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/maxfahl/Loom-sub002/internal/app"
	"github.com/maxfahl/Loom-sub002/internal/system"
	"github.com/maxfahl/Loom-sub002/internal/workflow"
)

// TestEnv holds the test environment
type TestEnv struct {
	T        *testing.T
	Root     string
	Executor *system.MockExecutor
	Resolver *FakeResolver
	Uploader *FakeUploader
	App      *app.App
	cleanup  func()
}

// NewTestEnv creates a project directory and installs an App backed by fakes.
// Prompt input is empty unless SetStdin is called.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	root := t.TempDir()

	// macOS tmp dirs are symlinks; analyzers report resolved paths.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	executor := system.NewMockExecutor()
	resolver := NewFakeResolver()
	uploader := &FakeUploader{}

	env := &TestEnv{
		T:        t,
		Root:     root,
		Executor: executor,
		Resolver: resolver,
		Uploader: uploader,
	}
	env.install(strings.NewReader(""))

	return env
}

func (e *TestEnv) install(stdin io.Reader) {
	testApp := app.New(
		app.WithExecutor(e.Executor),
		app.WithResolver(e.Resolver),
		app.WithUploader(e.Uploader),
		app.WithStdin(stdin),
	)

	original := app.Default
	if e.cleanup != nil {
		e.cleanup()
		original = app.Default
	}
	app.SetDefault(testApp)

	e.App = testApp
	e.cleanup = func() {
		app.SetDefault(original)
	}
}

// Cleanup restores the original app default
func (e *TestEnv) Cleanup() {
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
}

// SetStdin replaces the prompt input.
func (e *TestEnv) SetStdin(input string) {
	e.install(strings.NewReader(input))
}

// AddFixture copies an embedded fixture into the project.
func (e *TestEnv) AddFixture(name, rel string) string {
	e.T.Helper()
	return WriteFixture(e.T, e.Root, name, rel)
}

// WriteFile writes content to a project-relative path.
func (e *TestEnv) WriteFile(rel, content string) string {
	e.T.Helper()

	path := filepath.Join(e.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.T.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.T.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

// ReadFile reads a project-relative path.
func (e *TestEnv) ReadFile(rel string) string {
	e.T.Helper()

	data, err := os.ReadFile(filepath.Join(e.Root, filepath.FromSlash(rel)))
	if err != nil {
		e.T.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(data)
}

// Path joins rel onto the project root.
func (e *TestEnv) Path(rel string) string {
	return filepath.Join(e.Root, filepath.FromSlash(rel))
}

// FakeResolver answers ref lookups from SHAs, keyed "owner/repo@ref".
type FakeResolver struct {
	mu    sync.Mutex
	SHAs  map[string]string
	Err   error
	Calls int
}

// NewFakeResolver returns a resolver that knows no refs.
func NewFakeResolver() *FakeResolver {
	return &FakeResolver{SHAs: make(map[string]string)}
}

func (r *FakeResolver) Resolve(ctx context.Context, owner, repo, ref string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Calls++
	if r.Err != nil {
		return "", r.Err
	}
	if sha, ok := r.SHAs[owner+"/"+repo+"@"+ref]; ok {
		return sha, nil
	}
	return "", workflow.ErrNotFound
}

// FakeUploader records PutObject calls.
type FakeUploader struct {
	mu      sync.Mutex
	Err     error
	Objects map[string][]byte
}

func (u *FakeUploader) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.Err != nil {
		return nil, u.Err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, in.Body); err != nil {
		return nil, err
	}
	if u.Objects == nil {
		u.Objects = make(map[string][]byte)
	}
	u.Objects["s3://"+aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = buf.Bytes()
	return &s3.PutObjectOutput{}, nil
}

// Keys lists the uploaded object URLs.
func (u *FakeUploader) Keys() []string {
	u.mu.Lock()
	defer u.mu.Unlock()

	keys := make([]string, 0, len(u.Objects))
	for k := range u.Objects {
		keys = append(keys, k)
	}
	return keys
}
