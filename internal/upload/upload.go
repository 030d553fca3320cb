// Package upload accepts single image uploads and keeps them on local disk.
package upload

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefaultMaxBytes is the largest accepted image.
const DefaultMaxBytes = 4_000_000

// room for the multipart envelope and the text fields sent with the image
const formOverhead = 64 << 10

var (
	ErrMissingFile     = errors.New("image file is required")
	ErrTooLarge        = errors.New("image file is too large")
	ErrUnsupportedType = errors.New("invalid mime type")
)

var mimeExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// Store saves uploaded images under a single directory.
type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string, maxBytes int64) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save reads the multipart file in field, validates it and writes it as
// <uuid>.<ext> inside the store directory. It returns the stored path.
func (s *Store) Save(c *gin.Context, field string) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBytes+formOverhead)

	header, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return "", ErrTooLarge
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return "", ErrMissingFile
		default:
			return "", fmt.Errorf("read upload: %w", err)
		}
	}
	if header.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	declaredExt, ok := mimeExtensions[header.Header.Get("Content-Type")]
	if !ok {
		return "", ErrUnsupportedType
	}

	f, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	detected, err := mimetype.DetectReader(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("sniff upload: %w", err)
	}
	ext, ok := storedExtension(detected, declaredExt)
	if !ok {
		return "", ErrUnsupportedType
	}

	dst := filepath.Join(s.dir, uuid.NewString()+"."+ext)
	if err := c.SaveUploadedFile(header, dst); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return dst, nil
}

// storedExtension names the file after its sniffed content. A jpeg keeps the
// client's jpg/jpeg spelling.
func storedExtension(detected *mimetype.MIME, declaredExt string) (string, bool) {
	switch {
	case detected.Is("image/png"):
		return "png", true
	case detected.Is("image/jpeg"):
		if declaredExt == "jpg" {
			return "jpg", true
		}
		return "jpeg", true
	default:
		return "", false
	}
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload %s: %w", path, err)
	}
	return nil
}
