/*
Package storage keeps uploaded files in an S3-compatible object store.

Every record that files can be attached to gets its own bucket, named after the record's
association type and key. Objects inside a bucket are keyed by file name.
*/
package storage

import (
	"context"
	"io"
	"strings"
	"time"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Object is a downloaded object. Body must be closed by the caller.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// StorageService defines the public interface for the file storage service.
type StorageService interface {
	// EnsureBucket creates bucket unless it already exists.
	EnsureBucket(ctx context.Context, bucket string) error

	// Upload streams body into bucket under key.
	Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error

	// Download opens the object stored under key.
	Download(ctx context.Context, bucket, key string) (*Object, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, bucket, key string) error

	// PresignDownload generates a pre-signed URL for downloading an object.
	PresignDownload(ctx context.Context, bucket, key string, duration time.Duration) (string, error)
}

// NewStorageService is the factory function for StorageService.
func NewStorageService(ctx context.Context, cfg ServiceConfig) (StorageService, error) {
	return newS3Client(ctx, cfg)
}

// BucketName is the bucket holding the files of one record.
func BucketName(associationType, associationKey string) string {
	return strings.ToLower(associationType) + "-" + strings.ToLower(associationKey) + "-fs"
}

// ContentType maps a stored file's format to the type it is served with.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "svg":
		return "image/svg+xml"
	case "ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
