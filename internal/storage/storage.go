package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var (
	// ErrObjectExists is returned by Save when the key is already taken.
	// Evidence objects are written once and never replaced.
	ErrObjectExists = errors.New("storage: object already exists")
	ErrInvalidKey   = errors.New("storage: invalid object key")
	ErrNotFound     = errors.New("storage: object not found")
)

// Storage keeps evidence media. Keys are slash-separated and relative.
type Storage interface {
	// Save stores a new object at key. It fails with ErrObjectExists instead of overwriting.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns a public URL for the object
	GetURL(ctx context.Context, key string) (string, error)

	// GetSignedURL returns a temporary URL for private buckets
	GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	GetSize(ctx context.Context, key string) (int64, error)
}

// Config holds storage configuration
type Config struct {
	Type       string // local, s3, cloudflare_r2
	BasePath   string // For local storage
	BaseURL    string // Public URL base
	Bucket     string // For S3/R2
	Region     string // For S3
	AccessKey  string // For S3/R2
	SecretKey  string // For S3/R2
	Endpoint   string // For R2 or custom S3
	UseSSL     bool   // For custom S3 endpoints
	PublicRead bool   // Make objects public by default
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "cloudflare_r2":
		return NewR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// cleanKey rejects keys that could escape the bucket or base directory.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
