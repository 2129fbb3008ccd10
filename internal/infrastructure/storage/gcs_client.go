package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/domain/service"
)

type CloudStorageClient struct {
	bucket     *storage.BucketHandle
	bucketName string
}

var _ service.MediaStorage = (*CloudStorageClient)(nil)

// NewCloudStorageClient wraps a bucket handle, typically the Firebase
// default bucket.
func NewCloudStorageClient(bucket *storage.BucketHandle, bucketName string) *CloudStorageClient {
	return &CloudStorageClient{
		bucket:     bucket,
		bucketName: bucketName,
	}
}

func (c *CloudStorageClient) Write(ctx context.Context, path string, data []byte, contentType string) error {
	wc := c.bucket.Object(path).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "private, max-age=86400"

	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write %s to GCS: %w", path, err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer for %s: %w", path, err)
	}

	return nil
}

func (c *CloudStorageClient) List(ctx context.Context, prefix string) ([]entity.MediaObject, error) {
	it := c.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var objects []entity.MediaObject
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		objects = append(objects, entity.MediaObject{
			Path:        attrs.Name,
			ContentType: attrs.ContentType,
			Size:        attrs.Size,
			CreatedAt:   attrs.Created,
		})
	}

	return objects, nil
}

func (c *CloudStorageClient) Open(ctx context.Context, object entity.MediaObject) (io.ReadCloser, error) {
	r, err := c.bucket.Object(object.Path).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", object.Path, err)
	}
	return r, nil
}
