// Package publish uploads rendered reports to S3 or an S3-compatible
// endpoint such as LocalStack.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/maxfahl/Loom-sub002/internal/logging"
)

// EnvEndpoint overrides the S3 endpoint.
const EnvEndpoint = "LOOM_S3_ENDPOINT"

const defaultRegion = "us-east-1"

// PutObjectAPI is the part of the S3 client Upload needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures the S3 client.
type Options struct {
	// Endpoint replaces the AWS endpoint, e.g. http://localhost:4566.
	Endpoint string
	Region   string
}

// Location is a parsed s3:// URL.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseURL parses s3://bucket/key. A key ending in "/" is a prefix and
// gets defaultName appended.
func ParseURL(raw, defaultName string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("invalid upload URL %q: %w", raw, err)
	}
	if u.Scheme != "s3" {
		return Location{}, fmt.Errorf("invalid upload URL %q: scheme must be s3", raw)
	}
	if u.Host == "" {
		return Location{}, fmt.Errorf("invalid upload URL %q: missing bucket", raw)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		if defaultName == "" {
			return Location{}, fmt.Errorf("invalid upload URL %q: missing object key", raw)
		}
		key += defaultName
	}

	return Location{Bucket: u.Host, Key: key}, nil
}

// NewClient builds an S3 client from the default AWS configuration chain.
// With an endpoint set the client uses path-style addressing, and falls back
// to LocalStack's test credentials when none are configured.
func NewClient(ctx context.Context, opts Options) (*s3.Client, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = os.Getenv(EnvEndpoint)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" && opts.Endpoint == "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		signingRegion := opts.Region
		if signingRegion == "" {
			signingRegion = defaultRegion
		}
		loadOpts = append(loadOpts,
			awsconfig.WithRegion(signingRegion),
			awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{
						URL:           endpoint,
						SigningRegion: signingRegion,
					}, nil
				})),
		)
		if os.Getenv("AWS_ACCESS_KEY_ID") == "" && os.Getenv("AWS_PROFILE") == "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")))
		}
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.Endpoint != ""
	}), nil
}

// Upload stores data at loc.
func Upload(ctx context.Context, client PutObjectAPI, loc Location, data []byte, contentType string) error {
	logging.Debug("uploading report", "bucket", loc.Bucket, "key", loc.Key, "bytes", len(data))

	input := &s3.PutObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", loc, err)
	}
	return nil
}

// ContentType maps a report file extension to a MIME type.
func ContentType(ext string) string {
	switch ext {
	case ".json":
		return "application/json"
	case ".yaml":
		return "application/yaml"
	case ".md":
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
