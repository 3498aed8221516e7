package app

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/maxfahl/Loom-sub002/internal/publish"
	"github.com/maxfahl/Loom-sub002/internal/system"
)

type stubResolver struct{}

func (stubResolver) Resolve(context.Context, string, string, string) (string, error) {
	return "sha", nil
}

type stubUploader struct{}

func (stubUploader) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func TestNew(t *testing.T) {
	app := New()

	if app == nil {
		t.Fatal("New() returned nil")
	}
	if app.FS == nil {
		t.Error("FS should not be nil")
	}
	if app.Executor == nil {
		t.Error("Executor should not be nil")
	}
	if app.Stdin == nil {
		t.Error("Stdin should not be nil")
	}
	if app.Resolver == nil || app.Resolver("token") == nil {
		t.Error("Resolver should build a resolver")
	}
	if app.Uploader == nil {
		t.Error("Uploader should not be nil")
	}
}

func TestNew_WithOptions(t *testing.T) {
	fs := system.NewMockFS()
	exec := system.NewMockExecutor()
	stdin := strings.NewReader("done\n")
	uploader := stubUploader{}

	app := New(
		WithFS(fs),
		WithExecutor(exec),
		WithStdin(stdin),
		WithResolver(stubResolver{}),
		WithUploader(uploader),
	)

	if app.FS != fs {
		t.Error("WithFS did not set filesystem")
	}
	if app.Executor != exec {
		t.Error("WithExecutor did not set executor")
	}
	if app.Stdin != stdin {
		t.Error("WithStdin did not set stdin")
	}

	sha, err := app.Resolver("ignored").Resolve(context.Background(), "o", "r", "v1")
	if err != nil || sha != "sha" {
		t.Errorf("Resolve() = %q, %v", sha, err)
	}

	client, err := app.Uploader(context.Background(), publish.Options{})
	if err != nil {
		t.Fatalf("Uploader() error = %v", err)
	}
	if _, ok := client.(stubUploader); !ok {
		t.Errorf("Uploader() = %T, want stubUploader", client)
	}
}

func TestSetDefault(t *testing.T) {
	original := Default
	defer func() { Default = original }()

	custom := New(WithFS(system.NewMockFS()))
	SetDefault(custom)
	if Default != custom {
		t.Error("SetDefault did not set default")
	}

	ResetDefault()
	if Default == custom {
		t.Error("ResetDefault did not reset")
	}
}
