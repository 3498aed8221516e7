package publish

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/go-cmp/cmp"
)

type fakeS3 struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.contentType = aws.ToString(in.ContentType)
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw     string
		def     string
		want    Location
		wantErr bool
	}{
		{"s3://reports/loom/dupes.json", "", Location{"reports", "loom/dupes.json"}, false},
		{"s3://reports/loom/", "run.json", Location{"reports", "loom/run.json"}, false},
		{"s3://reports", "run.json", Location{"reports", "run.json"}, false},
		{"s3://reports/", "", Location{}, true},
		{"https://reports/x", "", Location{}, true},
		{"s3:///key", "", Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseURL(tt.raw, tt.def)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseURL() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocation_String(t *testing.T) {
	if got := (Location{"b", "k/x.json"}).String(); got != "s3://b/k/x.json" {
		t.Errorf("String() = %q", got)
	}
}

func TestUpload(t *testing.T) {
	fake := &fakeS3{}
	loc := Location{Bucket: "reports", Key: "loom/run.json"}

	if err := Upload(context.Background(), fake, loc, []byte(`{"ok":true}`), ContentType(".json")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if fake.bucket != "reports" || fake.key != "loom/run.json" {
		t.Errorf("uploaded to %s/%s", fake.bucket, fake.key)
	}
	if fake.contentType != "application/json" {
		t.Errorf("ContentType = %q", fake.contentType)
	}
	if string(fake.body) != `{"ok":true}` {
		t.Errorf("body = %q", fake.body)
	}
}

func TestUpload_Error(t *testing.T) {
	boom := errors.New("access denied")
	err := Upload(context.Background(), &fakeS3{err: boom}, Location{"b", "k"}, nil, "")
	if !errors.Is(err, boom) {
		t.Errorf("Upload() error = %v, want wrapped %v", err, boom)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		".json": "application/json",
		".yaml": "application/yaml",
		".md":   "text/markdown; charset=utf-8",
		".txt":  "text/plain; charset=utf-8",
	}
	for ext, want := range tests {
		if got := ContentType(ext); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestNewClient_Endpoint(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	client, err := NewClient(context.Background(), Options{Endpoint: "http://localhost:4566"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client == nil {
		t.Fatal("NewClient() returned nil client")
	}
}
