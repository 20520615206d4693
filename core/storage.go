package core

import (
	"context"
	"io"
)

// FileStorage is a bucket-based object store with public URLs.
type FileStorage interface {
	Upload(ctx context.Context, bucket, name string, body io.Reader, contentType string) (publicURL string, err error)
	Remove(ctx context.Context, bucket, name string) error
	// ObjectName returns the name of the object behind a public URL of `bucket`.
	ObjectName(bucket, publicURL string) (string, bool)
}
