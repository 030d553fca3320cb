package storage

import (
	"context"
)

// Options locates the bucket objects are written to and how they are addressed.
type Options struct {
	Bucket    string
	Region    string
	KeyPrefix string
	// Endpoint is set for S3 compatible services; objects are addressed path-style.
	Endpoint string
	// PublicBaseURL, when set, replaces the bucket URL in returned object URLs.
	PublicBaseURL string
}

// Service persists local files to remote object storage.
type Service interface {
	// Upload stores the file at localPath under name and returns its durable URL.
	Upload(ctx context.Context, localPath, name string) (string, error)
	Delete(ctx context.Context, name string) error
}
