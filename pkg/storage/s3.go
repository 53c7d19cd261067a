package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds the connection settings of a bucket. Endpoint is empty for
// AWS and set for MinIO, R2 or Spaces. URL overrides the public base URL.
type S3Config struct {
	Bucket   string
	Region   string
	Key      string
	Secret   string
	Endpoint string
	URL      string
}

// objectAPI is the part of *s3.Client the disk calls.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Disk struct {
	client  objectAPI
	bucket  string
	baseURL string
}

// NewS3Disk builds an S3 disk. Credentials fall back to the default AWS
// chain when Key or Secret is empty.
func NewS3Disk(ctx context.Context, cfg S3Config) (Disk, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage/s3: S3_BUCKET is not configured")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.Key != "" && cfg.Secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		))
	}
	awsConfig, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage/s3: load config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Disk(client, cfg), nil
}

func newS3Disk(client objectAPI, cfg S3Config) *s3Disk {
	baseURL := strings.TrimRight(cfg.URL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &s3Disk{client: client, bucket: cfg.Bucket, baseURL: baseURL}
}

func objectKey(p string) string { return strings.TrimLeft(p, "/") }

// Put buffers r so the SDK can sign a seekable body of known length.
func (d *s3Disk) Put(ctx context.Context, p string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("storage/s3: read %s: %w", p, err)
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(objectKey(p)),
		Body:   bytes.NewReader(data),
	}
	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if _, err := d.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("storage/s3: put %s: %w", p, err)
	}
	return nil
}

func (d *s3Disk) Exists(ctx context.Context, p string) (bool, error) {
	_, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(objectKey(p)),
	})
	if err == nil {
		return true, nil
	}
	var missing *types.NotFound
	if errors.As(err, &missing) {
		return false, nil
	}
	return false, fmt.Errorf("storage/s3: head %s: %w", p, err)
}

func (d *s3Disk) Delete(ctx context.Context, p string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(objectKey(p)),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: delete %s: %w", p, err)
	}
	return nil
}

func (d *s3Disk) URL(p string) string {
	return d.baseURL + "/" + objectKey(p)
}
