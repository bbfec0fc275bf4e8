package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxUploadSize = 5 * 1024 * 1024

var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/webp":      true,
	"image/gif":       true,
	"application/pdf": true,
}

type UploadHandler struct {
	dir string
}

// NewUploadHandler stores uploads under dir, served from /uploads.
func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{dir: dir}
}

// Upload serves POST /api/upload: one multipart file, returned as a
// site-relative path usable in product image fields.
func (h *UploadHandler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "No file provided"})
	}

	if file.Size > maxUploadSize {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "File size too large. Maximum 5MB allowed."})
	}

	contentType := file.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid file type. Only JPEG, PNG, WebP, GIF, and PDF are allowed."})
	}

	src, err := file.Open()
	if err != nil {
		slog.Error("failed to open upload", "error", err, "filename", file.Filename)
		return serverError(c, "Upload gagal", err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.dir, 0755); err != nil {
		slog.Error("failed to create upload directory", "error", err, "dir", h.dir)
		return serverError(c, "Upload gagal", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	dst, err := os.Create(filepath.Join(h.dir, name))
	if err != nil {
		slog.Error("failed to create upload file", "error", err, "name", name)
		return serverError(c, "Upload gagal", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		slog.Error("failed to write upload", "error", err, "name", name)
		return serverError(c, "Upload gagal", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"path":    "/uploads/" + name,
	})
}
