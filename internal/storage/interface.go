package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// StorageInterface defines the interface for file storage backends.
// Supports both the local filesystem and S3-compatible object stores.
type StorageInterface interface {
	// SaveFile stores the content of reader under key.
	SaveFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// ReadFile opens a stored file for reading.
	ReadFile(ctx context.Context, key string) (io.ReadCloser, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a file from storage. Missing files are not an error.
	DeleteFile(ctx context.Context, key string) error

	// GeneratePresignedDownloadURL returns a URL a client can fetch key from.
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
}

// NewStorage builds the backend selected by cfg.Type.
func NewStorage(ctx context.Context, cfg Config) (StorageInterface, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorageService(cfg.BaseURL, cfg.LocalDir)
	case "s3":
		return NewS3StorageService(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFileName keeps the base name of name and replaces anything outside
// [A-Za-z0-9._-] with '_'.
func SanitizeFileName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return "file"
	}
	return unsafeName.ReplaceAllString(base, "_")
}

// DocumentKey is where an agent's onboarding document is stored.
func DocumentKey(agentID int64, fileName string) string {
	return fmt.Sprintf("documents/%d/%s-%s", agentID, uuid.NewString(), SanitizeFileName(fileName))
}

// CarImageKey is where a listing image is stored.
func CarImageKey(agentID int64, fileName string) string {
	return fmt.Sprintf("cars/%d/%s-%s", agentID, uuid.NewString(), SanitizeFileName(fileName))
}
