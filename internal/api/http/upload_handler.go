package http

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/storage"

	"github.com/gorilla/mux"
)

// UploadHandler serves stored car images and documents for the local
// storage backend. S3 deployments hand out presigned URLs instead.
type UploadHandler struct {
	store storage.StorageInterface
}

func NewUploadHandler(store storage.StorageInterface) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" || strings.Contains(key, "..") {
		http.Error(w, "Invalid key", http.StatusBadRequest)
		return
	}

	file, err := h.store.ReadFile(r.Context(), key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentTypeFor(key))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Failed to stream upload", "key", key, "error", err)
	}
}

func contentTypeFor(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
