package storage

import (
	"context"
	"io"
)

// Driver is the pluggable backend for uploaded files (expense receipts,
// company logos). Public URLs are returned by Upload and persisted on the
// owning row, so readers never go back to the driver.
type Driver interface {
	// Upload stores a file and returns its storage path and public URL.
	Upload(ctx context.Context, file io.Reader, path string) (storagePath string, publicURL string, err error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error
}

// Config selects and parameterizes a driver.
type Config struct {
	Driver string // local, s3, r2

	// Local filesystem
	UploadsPath string

	// AWS S3
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	AWSBucket          string

	// Cloudflare R2
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2AccountID       string
	R2Bucket          string
	R2PublicURL       string
}
