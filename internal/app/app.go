package app

import (
	"context"
	"io"
	"os"

	"github.com/maxfahl/Loom-sub002/internal/publish"
	"github.com/maxfahl/Loom-sub002/internal/system"
	"github.com/maxfahl/Loom-sub002/internal/workflow"
)

// App is the set of side-effecting collaborators the commands use.
type App struct {
	FS system.FileSystem

	// Executor runs git for --since.
	Executor system.CommandExecutor

	// Stdin feeds the retro prompts when no terminal is attached.
	Stdin io.Reader

	Resolver func(token string) workflow.Resolver

	Uploader func(ctx context.Context, opts publish.Options) (publish.PutObjectAPI, error)
}

// Option overrides one collaborator.
type Option func(*App)

func WithFS(fs system.FileSystem) Option {
	return func(a *App) {
		a.FS = fs
	}
}

func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Executor = exec
	}
}

func WithStdin(r io.Reader) Option {
	return func(a *App) {
		a.Stdin = r
	}
}

// WithResolver makes every token resolve through r.
func WithResolver(r workflow.Resolver) Option {
	return func(a *App) {
		a.Resolver = func(string) workflow.Resolver { return r }
	}
}

// WithUploader makes --upload write to client instead of S3.
func WithUploader(client publish.PutObjectAPI) Option {
	return func(a *App) {
		a.Uploader = func(context.Context, publish.Options) (publish.PutObjectAPI, error) {
			return client, nil
		}
	}
}

// New returns an App backed by the OS, the GitHub API and AWS, with opts
// applied on top.
func New(opts ...Option) *App {
	a := &App{
		FS:       system.DefaultFS(),
		Executor: system.DefaultExecutor(),
		Stdin:    os.Stdin,
		Resolver: func(token string) workflow.Resolver {
			return workflow.NewGitHub(os.Getenv("GITHUB_API_URL"), token)
		},
		Uploader: func(ctx context.Context, opts publish.Options) (publish.PutObjectAPI, error) {
			return publish.NewClient(ctx, opts)
		},
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Default is what the commands read. Tests replace it through SetDefault.
var Default = New()

func SetDefault(a *App) {
	Default = a
}

// ResetDefault restores a freshly built production App.
func ResetDefault() {
	Default = New()
}
