package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rsquare-id/rsquare/internal/auth"
	"github.com/rsquare-id/rsquare/internal/catalog"
	"github.com/rsquare-id/rsquare/storage"
)

type ProductsHandler struct {
	store storage.Store
}

func NewProductsHandler(store storage.Store) *ProductsHandler {
	return &ProductsHandler{store: store}
}

// List serves GET /api/products. includeInactive is honored only for
// an authenticated admin; anonymous callers always get the public
// catalog.
func (h *ProductsHandler) List(c echo.Context) error {
	includeInactive := c.QueryParam("includeInactive") == "true" && auth.IsAdmin(c)

	products, err := h.store.ListProducts(c.Request().Context(), includeInactive)
	if err != nil {
		slog.Error("failed to list products", "error", err)
		return serverError(c, "Failed to fetch products", err)
	}

	return c.JSON(http.StatusOK, products)
}

// Get serves GET /api/products/:id.
func (h *ProductsHandler) Get(c echo.Context) error {
	id := c.Param("id")

	product, err := h.store.GetProduct(c.Request().Context(), id)
	if err != nil {
		slog.Error("failed to get product", "error", err, "id", id)
		return serverError(c, "Failed to fetch product", err)
	}
	if product == nil {
		return c.JSON(http.StatusNotFound, errorBody{Error: "Product not found"})
	}

	return c.JSON(http.StatusOK, product)
}

// Save serves POST /api/products: create or full update, children
// replaced wholesale.
func (h *ProductsHandler) Save(c echo.Context) error {
	var product catalog.Product
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid product payload"})
	}

	if err := product.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "ID dan Judul wajib diisi"})
	}

	if err := h.store.SaveProduct(c.Request().Context(), &product); err != nil {
		slog.Error("failed to save product", "error", err, "id", product.ID)
		return serverError(c, "Gagal menyimpan template", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Template berhasil disimpan",
		"productId": product.ID,
	})
}

// Delete serves DELETE /api/products/:id. Children go with the
// product via cascade.
func (h *ProductsHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	deleted, err := h.store.DeleteProduct(c.Request().Context(), id)
	if err != nil {
		slog.Error("failed to delete product", "error", err, "id", id)
		return serverError(c, "Gagal menghapus template", err)
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, errorBody{Error: "Product not found"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Template berhasil dihapus",
	})
}

// ListFeatured serves GET /api/products/featured: minimal fields,
// featured and active only.
func (h *ProductsHandler) ListFeatured(c echo.Context) error {
	summaries, err := h.store.ListFeatured(c.Request().Context())
	if err != nil {
		slog.Error("failed to list featured products", "error", err)
		return serverError(c, "Failed to fetch featured products", err)
	}
	return c.JSON(http.StatusOK, summaries)
}

// ListFree serves GET /api/products/free: minimal fields, harga=0 and
// active only.
func (h *ProductsHandler) ListFree(c echo.Context) error {
	summaries, err := h.store.ListFree(c.Request().Context())
	if err != nil {
		slog.Error("failed to list free products", "error", err)
		return serverError(c, "Failed to fetch free products", err)
	}
	return c.JSON(http.StatusOK, summaries)
}

type setFeaturedRequest struct {
	ProductID string `json:"productId"`
	Featured  *bool  `json:"featured"`
}

// SetFeatured serves POST /api/products/featured. Turning the flag off
// is rejected when it would leave the catalog without any featured
// product.
func (h *ProductsHandler) SetFeatured(c echo.Context) error {
	var req setFeaturedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid request payload"})
	}
	if req.ProductID == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Product ID is required"})
	}
	if req.Featured == nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Featured must be a boolean"})
	}

	ctx := c.Request().Context()

	if !*req.Featured {
		products, err := h.store.ListProducts(ctx, true)
		if err != nil {
			slog.Error("failed to count featured products", "error", err)
			return serverError(c, "Gagal mengupdate featured status", err)
		}
		featuredCount := 0
		for _, p := range products {
			if p.Featured {
				featuredCount++
			}
		}
		if featuredCount <= 1 {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "Minimal harus ada 1 produk unggulan!"})
		}
	}

	if err := h.store.SetFeatured(ctx, req.ProductID, *req.Featured); err != nil {
		slog.Error("failed to update featured status", "error", err, "id", req.ProductID)
		return serverError(c, "Gagal mengupdate featured status", err)
	}

	message := "Featured status dinonaktifkan"
	if *req.Featured {
		message = "Featured status diaktifkan"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

// SetActive serves PATCH /api/products/:id/active. No minimum-active
// rule: a catalog with zero active products just empties the
// storefront.
func (h *ProductsHandler) SetActive(c echo.Context) error {
	id := c.Param("id")

	var req setActiveRequest
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid active status. Must be boolean."})
	}

	if err := h.store.SetActive(c.Request().Context(), id, *req.Active); err != nil {
		slog.Error("failed to update active status", "error", err, "id", id)
		return serverError(c, "Gagal mengubah status aktif", err)
	}

	message := "Template dinonaktifkan"
	if *req.Active {
		message = "Template diaktifkan"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": message,
		"active":  *req.Active,
	})
}

type reorderRequest struct {
	ProductIDs []string `json:"productIds"`
}

// Reorder serves PATCH /api/products/reorder: the full new ordering in
// one call, positions assigned 1..N by index.
func (h *ProductsHandler) Reorder(c echo.Context) error {
	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid request payload"})
	}
	if len(req.ProductIDs) == 0 {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "productIds array is required"})
	}

	if err := h.store.Reorder(c.Request().Context(), req.ProductIDs); err != nil {
		slog.Error("failed to reorder products", "error", err, "count", len(req.ProductIDs))
		return serverError(c, "Failed to update product order", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Product order updated successfully",
		"count":   len(req.ProductIDs),
	})
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func serverError(c echo.Context, message string, err error) error {
	return c.JSON(http.StatusInternalServerError, errorBody{Error: message, Details: err.Error()})
}
