package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"karhubty-backend/internal/logger"
)

// LocalStorageService stores files on the local filesystem and serves them
// through the API's /uploads route.
type LocalStorageService struct {
	baseURL string // Server URL (e.g., "http://localhost:8080")
	rootDir string // Local directory for uploads (e.g., "./uploads")
}

// NewLocalStorageService creates rootDir if needed.
func NewLocalStorageService(baseURL, rootDir string) (*LocalStorageService, error) {
	if rootDir == "" {
		rootDir = "./uploads"
	}
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &LocalStorageService{
		baseURL: strings.TrimRight(baseURL, "/"),
		rootDir: rootDir,
	}, nil
}

// path resolves key under rootDir and refuses keys that escape it.
func (l *LocalStorageService) path(key string) (string, error) {
	full := filepath.Join(l.rootDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.rootDir, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return full, nil
}

func (l *LocalStorageService) SaveFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(file, reader)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Debug("File stored locally", "key", key, "bytes", n, "contentType", contentType)
	return nil
}

func (l *LocalStorageService) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (l *LocalStorageService) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (l *LocalStorageService) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GeneratePresignedDownloadURL returns a plain link; local files are served
// without signing.
func (l *LocalStorageService) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if _, err := l.path(key); err != nil {
		return "", err
	}
	escaped := (&url.URL{Path: key}).EscapedPath()
	return fmt.Sprintf("%s/uploads/%s", l.baseURL, escaped), nil
}

// Root is the directory files are stored under.
func (l *LocalStorageService) Root() string {
	return l.rootDir
}
