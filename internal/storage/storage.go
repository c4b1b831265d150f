// Package storage holds exercise demo videos in an S3-compatible bucket.
// Clients upload and stream through presigned URLs; the API never proxies bytes.
package storage

import (
	"context"
	"errors"
	"time"
)

const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrObjectNotFound = errors.New("object not found in storage")

// FileStorage is the object store the exercise videos live in.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a URL that accepts one PUT of objectKey.
	// The uploader must send the same Content-Type.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	// ObjectExists returns ErrObjectNotFound when nothing was uploaded under objectKey.
	ObjectExists(ctx context.Context, objectKey string) error
	DeleteObject(ctx context.Context, objectKey string) error
}
