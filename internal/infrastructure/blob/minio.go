package blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Client is the object-store adapter. Only create-if-absent and put are
// exposed; archived blobs are never read back, updated or deleted here.
type Client struct {
	mc *minio.Client
}

func NewClient(cfg Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}

	return &Client{mc: mc}, nil
}

// EnsureBucket creates the bucket if it does not exist. A concurrent create
// from another instance is not an error.
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := c.mc.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := c.mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		// Lost the race to another instance creating the same bucket.
		if exists, checkErr := c.mc.BucketExists(ctx, bucket); checkErr == nil && exists {
			return nil
		}
		return fmt.Errorf("make bucket: %w", err)
	}

	return nil
}

func (c *Client) Put(ctx context.Context, bucket, name string, data []byte, contentType string) error {
	_, err := c.mc.PutObject(ctx, bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}
