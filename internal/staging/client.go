// Package staging pushes realized deposit artifacts to an S3-compatible
// staging bucket.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound reports that a staging object does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes an object already present in the staging bucket.
type ObjectInfo struct {
	Size int64
}

// PutRequest carries one artifact upload.
type PutRequest struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// Client is the blob-store surface the uploader needs. Head returns
// ErrNotFound for absent keys.
type Client interface {
	Head(ctx context.Context, bucket, key string) (*ObjectInfo, error)
	Put(ctx context.Context, req *PutRequest) error
}

// ParseS3URI parses an s3://bucket/prefix destination into bucket and
// prefix. The prefix may be empty and carries no trailing slash.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(uri, "s3://") {
		return "", "", fmt.Errorf("invalid S3 URI: must start with s3://")
	}

	path := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(path, "/", 2)

	if len(parts) == 0 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URI: missing bucket name")
	}

	bucket = parts[0]
	if len(parts) > 1 {
		prefix = strings.TrimSuffix(parts[1], "/")
	}

	return bucket, prefix, nil
}
