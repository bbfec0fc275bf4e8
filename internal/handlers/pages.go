package handlers

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rsquare-id/rsquare/internal/catalog"
	"github.com/rsquare-id/rsquare/storage"
	"github.com/yuin/goldmark"
)

// PagesHandler renders the public storefront.
type PagesHandler struct {
	store storage.Store
}

func NewPagesHandler(store storage.Store) *PagesHandler {
	return &PagesHandler{store: store}
}

// Home renders the landing page with featured templates.
func (h *PagesHandler) Home(c echo.Context) error {
	featured, err := h.store.ListFeatured(c.Request().Context())
	if err != nil {
		slog.Error("failed to load featured products for home", "error", err)
		featured = []catalog.Summary{}
	}

	free, err := h.store.ListFree(c.Request().Context())
	if err != nil {
		slog.Error("failed to load free products for home", "error", err)
		free = []catalog.Summary{}
	}

	return c.Render(http.StatusOK, "home", map[string]any{
		"Title":    "RSQUARE - Template Google Sheets",
		"Featured": featured,
		"Free":     free,
	})
}

// Templates renders the full public catalog.
func (h *PagesHandler) Templates(c echo.Context) error {
	products, err := h.store.ListProducts(c.Request().Context(), false)
	if err != nil {
		slog.Error("failed to load catalog page", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load templates")
	}

	return c.Render(http.StatusOK, "templates", map[string]any{
		"Title":    "Semua Template",
		"Products": products,
	})
}

type detailPage struct {
	Title       string
	Product     *catalog.Product
	Description template.HTML
	ShowFreeCTA bool
}

// Detail renders one product page. Free products get the download CTA
// only when a guide file exists; purchase links render regardless.
func (h *PagesHandler) Detail(c echo.Context) error {
	slug := c.Param("slug")

	product, err := h.store.GetProduct(c.Request().Context(), slug)
	if err != nil {
		slog.Error("failed to load product page", "error", err, "slug", slug)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load template")
	}
	if product == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Template tidak ditemukan")
	}

	page := detailPage{
		Title:       product.Judul,
		Product:     product,
		ShowFreeCTA: product.IsFree() && product.HasGuide(),
	}
	if product.SEO != nil && product.SEO.MetaTitle != "" {
		page.Title = product.SEO.MetaTitle
	}

	if product.Detail != nil && product.Detail.DeskripsiLengkap != "" {
		page.Description = renderMarkdown(product.Detail.DeskripsiLengkap, slug)
	}

	return c.Render(http.StatusOK, "detail", page)
}

type previewGalleryItem struct {
	Judul     string
	Gambar    string
	Deskripsi template.HTML
}

type previewPage struct {
	Title       string
	Product     *catalog.Product
	Description template.HTML
	Gallery     []previewGalleryItem
}

// Preview renders the long-form template walkthrough: header, full
// gallery with per-item markdown, and tutorial video.
func (h *PagesHandler) Preview(c echo.Context) error {
	slug := c.Param("slug")

	product, err := h.store.GetProduct(c.Request().Context(), slug)
	if err != nil {
		slog.Error("failed to load preview page", "error", err, "slug", slug)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load preview")
	}
	if product == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Template tidak ditemukan")
	}

	page := previewPage{
		Title:       "Preview: " + product.Judul,
		Product:     product,
		Description: renderMarkdown(product.DeskripsiSingkat, slug),
	}
	if product.Detail != nil {
		if product.Detail.DeskripsiLengkap != "" {
			page.Description = renderMarkdown(product.Detail.DeskripsiLengkap, slug)
		}
		for _, item := range product.Detail.Galeri {
			page.Gallery = append(page.Gallery, previewGalleryItem{
				Judul:     item.Judul,
				Gambar:    item.Gambar,
				Deskripsi: renderMarkdown(item.Deskripsi, slug),
			})
		}
	}

	return c.Render(http.StatusOK, "preview", page)
}

func renderMarkdown(source, slug string) template.HTML {
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		slog.Warn("failed to render markdown", "error", err, "slug", slug)
		return ""
	}
	return template.HTML(buf.String())
}

// Instructions renders the purchase walkthrough for a product.
func (h *PagesHandler) Instructions(c echo.Context) error {
	slug := c.Param("slug")

	product, err := h.store.GetProduct(c.Request().Context(), slug)
	if err != nil {
		slog.Error("failed to load instructions page", "error", err, "slug", slug)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load instructions")
	}
	if product == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Template tidak ditemukan")
	}

	return c.Render(http.StatusOK, "instructions", map[string]any{
		"Title":   "Petunjuk Pembelian - " + product.Judul,
		"Product": product,
	})
}

// Static returns a handler for a fixed info/legal page.
func (h *PagesHandler) Static(templateName, title string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, templateName, map[string]any{"Title": title})
	}
}
