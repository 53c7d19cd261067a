package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bucket is an in-memory objectAPI.
type bucket struct {
	objects map[string]string
	types   map[string]string
	headErr error
}

func newBucket() *bucket {
	return &bucket{objects: map[string]string{}, types: map[string]string{}}
}

func (b *bucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.objects[aws.ToString(in.Key)] = string(data)
	b.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (b *bucket) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if b.headErr != nil {
		return nil, b.headErr
	}
	if _, ok := b.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (b *bucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(b.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3DiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newBucket()
	d := newS3Disk(b, S3Config{Bucket: "shop", Region: "eu-west-1"})

	require.NoError(t, d.Put(ctx, "/products/lamp.png", strings.NewReader("png")))
	assert.Equal(t, "png", b.objects["products/lamp.png"])
	assert.Equal(t, "image/png", b.types["products/lamp.png"])

	ok, err := d.Exists(ctx, "products/lamp.png")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, d.Delete(ctx, "products/lamp.png"))
	ok, err = d.Exists(ctx, "products/lamp.png")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3DiskExistsReportsOtherErrors(t *testing.T) {
	b := newBucket()
	b.headErr = errors.New("access denied")
	d := newS3Disk(b, S3Config{Bucket: "shop", Region: "eu-west-1"})

	_, err := d.Exists(context.Background(), "products/lamp.png")
	assert.ErrorContains(t, err, "access denied")
}

func TestS3DiskURL(t *testing.T) {
	d := newS3Disk(newBucket(), S3Config{Bucket: "shop", Region: "eu-west-1"})
	assert.Equal(t, "https://shop.s3.eu-west-1.amazonaws.com/products/lamp.png", d.URL("products/lamp.png"))

	cdn := newS3Disk(newBucket(), S3Config{Bucket: "shop", URL: "https://cdn.example.com/"})
	assert.Equal(t, "https://cdn.example.com/products/lamp.png", cdn.URL("/products/lamp.png"))
}

func TestNewS3DiskNeedsBucket(t *testing.T) {
	_, err := NewS3Disk(context.Background(), S3Config{})
	assert.Error(t, err)
}
