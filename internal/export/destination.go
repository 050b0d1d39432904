package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Dir writes files below a local directory.
type Dir struct {
	root string
}

// NewDir returns a destination rooted at root, creating it if needed.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		return nil, fmt.Errorf("export: empty output directory")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

// Root returns the output directory.
func (d *Dir) Root() string {
	return d.root
}

// Put writes body to root/key.
func (d *Dir) Put(_ context.Context, key string, body []byte, _ string) error {
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	target := filepath.Join(d.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, body, 0o644)
}

// S3API is the subset of the S3 client used for uploads.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Bucket uploads files to an S3 bucket under a key prefix.
type Bucket struct {
	client S3API
	bucket string
	prefix string
}

// NewBucket returns a destination uploading to bucket. prefix is joined
// in front of every key.
func NewBucket(client S3API, bucket, prefix string) (*Bucket, error) {
	if bucket == "" {
		return nil, fmt.Errorf("export: empty bucket name")
	}
	return &Bucket{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Put uploads body as bucket/prefix/key. HTML is revalidated on every
// visit; scripts and the manifest likewise, since their URLs carry no
// version.
func (b *Bucket) Put(ctx context.Context, key string, body []byte, contentType string) error {
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	if b.prefix != "" {
		clean = path.Join(b.prefix, clean)
	}
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(b.bucket),
		Key:          aws.String(clean),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=0, must-revalidate"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", b.bucket, clean, err)
	}
	return nil
}

// NewS3Client builds an S3 client for region using the standard AWS_*
// credential variables.
func NewS3Client(region string) *s3.Client {
	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	})
}

func envCredentials(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}
	if !creds.HasKeys() {
		return aws.Credentials{}, fmt.Errorf("export: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return creds, nil
}

func cleanKey(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("export: invalid key %q", key)
	}
	return strings.TrimPrefix(clean, "/"), nil
}
