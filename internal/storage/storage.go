package storage

import (
	"context"
	"io"
)

// Service stores uploaded post images in remote object storage and
// resolves the public URL a post body can reference them by.
type Service interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	ObjectURL(bucket, key string) string
}
