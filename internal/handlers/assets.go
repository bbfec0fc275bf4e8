package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rsquare-id/rsquare/internal/guide"
	"github.com/rsquare-id/rsquare/internal/ogimage"
	"github.com/rsquare-id/rsquare/storage"
)

// AssetsHandler generates derived assets for a product: the OG social
// card and the purchase-guide PDF.
type AssetsHandler struct {
	store     storage.Store
	publicDir string
	uploadDir string
}

func NewAssetsHandler(store storage.Store, publicDir, uploadDir string) *AssetsHandler {
	return &AssetsHandler{store: store, publicDir: publicDir, uploadDir: uploadDir}
}

// GenerateOGImage serves POST /api/products/:id/og-image.
func (h *AssetsHandler) GenerateOGImage(c echo.Context) error {
	id := c.Param("id")

	product, err := h.store.GetProduct(c.Request().Context(), id)
	if err != nil {
		slog.Error("failed to load product for og image", "error", err, "id", id)
		return serverError(c, "Failed to generate OG image", err)
	}
	if product == nil {
		return c.JSON(http.StatusNotFound, errorBody{Error: "Product not found"})
	}

	source := product.GambarThumbnail
	if product.Detail != nil && product.Detail.GambarUtama != "" {
		source = product.Detail.GambarUtama
	}
	localPath, ok := h.localAssetPath(source)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Product image must be a local upload"})
	}

	outputPath := filepath.Join(h.uploadDir, "og", product.ID+".png")
	info := ogimage.ProductInfo{Judul: product.Judul, Harga: product.Harga, ImagePath: localPath}
	if err := ogimage.Generate(info, outputPath); err != nil {
		slog.Error("failed to generate og image", "error", err, "id", id)
		return serverError(c, "Failed to generate OG image", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"path":    "/uploads/og/" + product.ID + ".png",
	})
}

// GenerateGuide serves POST /api/products/:id/guide-pdf.
func (h *AssetsHandler) GenerateGuide(c echo.Context) error {
	id := c.Param("id")

	product, err := h.store.GetProduct(c.Request().Context(), id)
	if err != nil {
		slog.Error("failed to load product for guide pdf", "error", err, "id", id)
		return serverError(c, "Failed to generate guide PDF", err)
	}
	if product == nil {
		return c.JSON(http.StatusNotFound, errorBody{Error: "Product not found"})
	}

	path, err := guide.Generate(product, filepath.Join(h.uploadDir, "panduan"))
	if err != nil {
		slog.Error("failed to generate guide pdf", "error", err, "id", id)
		return serverError(c, "Failed to generate guide PDF", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"path":    path,
	})
}

// localAssetPath maps a site-relative asset path to a file on disk.
// Uploads live under the configured upload dir, which may sit outside
// the public dir. Remote URLs cannot be rendered locally.
func (h *AssetsHandler) localAssetPath(asset string) (string, bool) {
	if asset == "" || strings.HasPrefix(asset, "http://") || strings.HasPrefix(asset, "https://") {
		return "", false
	}
	cleaned := filepath.Clean("/" + strings.TrimPrefix(asset, "/"))
	if rest, ok := strings.CutPrefix(cleaned, "/uploads/"); ok {
		return filepath.Join(h.uploadDir, rest), true
	}
	return filepath.Join(h.publicDir, cleaned), true
}
