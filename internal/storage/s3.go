package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

// S3Client is the subset of the S3 API used besides the upload manager.
type S3Client interface {
	manager.UploadAPIClient
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Service uploads user images to Amazon S3 (or compatible APIs).
type S3Service struct {
	client   S3Client
	uploader *manager.Uploader
	opts     Options
}

func NewS3Service(client S3Client, opts Options) (*S3Service, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		opts:     opts,
	}, nil
}

func (s *S3Service) Upload(ctx context.Context, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open file %s: %w", localPath, err)
	}
	defer f.Close()

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(localPath); err == nil {
		contentType = mt.String()
	}

	key := s.Key(name)
	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("upload %s: %w", localPath, err)
	}

	return s.ObjectURL(key), nil
}

func (s *S3Service) Delete(ctx context.Context, name string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.Key(name)),
	}); err != nil {
		return fmt.Errorf("delete object %s: %w", name, err)
	}
	return nil
}

// Key joins name onto the configured key prefix.
func (s *S3Service) Key(name string) string {
	name = strings.TrimLeft(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	prefix := strings.Trim(s.opts.KeyPrefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// ObjectURL returns the durable URL of key.
func (s *S3Service) ObjectURL(key string) string {
	escaped := escapeKey(key)
	switch {
	case s.opts.PublicBaseURL != "":
		return strings.TrimSuffix(s.opts.PublicBaseURL, "/") + "/" + escaped
	case s.opts.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.opts.Endpoint, "/"), s.opts.Bucket, escaped)
	default:
		region := s.opts.Region
		if region == "" {
			region = "us-east-1"
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.opts.Bucket, region, escaped)
	}
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

var _ Service = (*S3Service)(nil)
