package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hszk-dev/cliprelay/internal/domain/repository"
)

// bucketAPI is the slice of *minio.Client that document storage touches.
type bucketAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

// sdkBucketAPI narrows GetObject's *minio.Object to io.ReadCloser.
type sdkBucketAPI struct {
	*minio.Client
}

func (a sdkBucketAPI) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return a.Client.GetObject(ctx, bucket, key, opts)
}

// ClientConfig holds configuration for the MinIO client.
type ClientConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool

	// CreateBucket makes the bucket at startup when it is missing instead of
	// refusing to start.
	CreateBucket bool
}

// Client reads and writes small JSON objects in one bucket.
type Client struct {
	api    bucketAPI
	bucket string
}

// NewClient connects to MinIO and makes sure the bucket is usable.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	sdk, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	c := &Client{api: sdkBucketAPI{sdk}, bucket: cfg.Bucket}
	if err := c.ensureBucket(ctx, cfg.Region, cfg.CreateBucket); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context, region string, create bool) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", c.bucket, err)
	}
	if exists {
		return nil
	}
	if !create {
		return fmt.Errorf("%w: %s", repository.ErrBucketNotFound, c.bucket)
	}
	if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
	}
	return nil
}

// PutJSON replaces the object at key with data in a single PUT.
func (c *Client) PutJSON(ctx context.Context, key string, data []byte) error {
	opts := minio.PutObjectOptions{
		ContentType:  "application/json",
		CacheControl: "no-cache",
		// Documents are small; a single request keeps the replace atomic.
		DisableMultipart: true,
	}
	if _, err := c.api.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// Fetch returns the body stored at key, or repository.ErrObjectNotFound.
func (c *Client) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.api.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer func() { _ = obj.Close() }()

	// The SDK defers the request until the first read, so a missing key
	// surfaces here rather than from GetObject.
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, repository.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Ping backs the worker health check.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.BucketExists(ctx, c.bucket); err != nil {
		return fmt.Errorf("minio unreachable: %w", err)
	}
	return nil
}

func (c *Client) Bucket() string {
	return c.bucket
}
