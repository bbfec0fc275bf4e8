package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rsquare-id/rsquare/internal/auth"
	"github.com/rsquare-id/rsquare/internal/catalog"
	"github.com/rsquare-id/rsquare/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestService creates a service instance backed by an in-memory
// database.
func setupTestService(t *testing.T) *Service {
	t.Helper()

	store, cleanup, err := sqlite.NewMemory()
	require.NoError(t, err)
	t.Cleanup(cleanup)

	config := &Config{
		Environment:  "test",
		Port:         "8080",
		TemplatesDir: "../web/templates",
		PublicDir:    t.TempDir(),
	}
	config.Session.Secret = "test-secret"
	config.Admin.Username = "admin"
	config.Admin.Password = "test-password"
	config.Upload.Dir = t.TempDir()

	svc, err := New(store, config)
	require.NoError(t, err)
	return svc
}

// setupTestEcho creates an Echo instance with all routes registered.
func setupTestEcho(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()

	e := echo.New()
	svc := setupTestService(t)
	require.NoError(t, svc.RegisterRoutes(e))

	return e, svc
}

func seedCatalog(t *testing.T, svc *Service) {
	t.Helper()

	products := []*catalog.Product{
		{ID: "budget-bulanan", Judul: "Budget Bulanan", Harga: 99000, Featured: true},
		{ID: "arisan", Judul: "Arisan", Harga: 0},
	}
	for _, p := range products {
		require.NoError(t, svc.store.SaveProduct(context.Background(), p))
	}
	require.NoError(t, svc.store.SetFeatured(context.Background(), "budget-bulanan", true))
}

func adminCookie(svc *Service) *http.Cookie {
	return &http.Cookie{Name: auth.SessionCookieName, Value: svc.sessions.Issue()}
}

func TestPublicRoutes(t *testing.T) {
	e, svc := setupTestEcho(t)
	seedCatalog(t, svc)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"Home page", "GET", "/", http.StatusOK},
		{"Catalog page", "GET", "/templates", http.StatusOK},
		{"Detail page", "GET", "/templates/budget-bulanan", http.StatusOK},
		{"Missing detail page", "GET", "/templates/tidak-ada", http.StatusNotFound},
		{"Instructions page", "GET", "/instructions/budget-bulanan", http.StatusOK},
		{"About page", "GET", "/tentang-kami", http.StatusOK},
		{"Contact page", "GET", "/kontak", http.StatusOK},
		{"Terms page", "GET", "/syarat-ketentuan", http.StatusOK},
		{"Privacy page", "GET", "/kebijakan-privasi", http.StatusOK},
		{"Login page", "GET", "/admin/login", http.StatusOK},
		{"Health check", "GET", "/healthz", http.StatusOK},
		{"Metrics", "GET", "/metrics", http.StatusOK},
		{"Products API", "GET", "/api/products", http.StatusOK},
		{"Featured API", "GET", "/api/products/featured", http.StatusOK},
		{"Free API", "GET", "/api/products/free", http.StatusOK},
		{"Product API", "GET", "/api/products/budget-bulanan", http.StatusOK},
		{"Missing product API", "GET", "/api/products/tidak-ada", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code,
				"Route %s %s should return %d, got %d",
				tt.method, tt.path, tt.wantStatus, rec.Code)
		})
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"Save product", "POST", "/api/products", http.StatusUnauthorized},
		{"Delete product", "DELETE", "/api/products/x", http.StatusUnauthorized},
		{"Toggle featured", "POST", "/api/products/featured", http.StatusUnauthorized},
		{"Toggle active", "PATCH", "/api/products/x/active", http.StatusUnauthorized},
		{"Reorder", "PATCH", "/api/products/reorder", http.StatusUnauthorized},
		{"Upload", "POST", "/api/upload", http.StatusUnauthorized},
		{"OG image", "POST", "/api/products/x/og-image", http.StatusUnauthorized},
		{"Guide PDF", "POST", "/api/products/x/guide-pdf", http.StatusUnauthorized},
		{"Admin panel redirects", "GET", "/admin", http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestDetailPageFreeCTA(t *testing.T) {
	e, svc := setupTestEcho(t)

	// Free product with purchase links but no guide file: the page
	// must render the links and skip the download button.
	free := &catalog.Product{
		ID:    "arisan",
		Judul: "Arisan",
		Harga: 0,
		Detail: &catalog.Detail{
			LinkPembelian: []catalog.PurchaseLink{
				{Platform: "Shopee", URL: "https://shopee.co.id/arisan"},
				{Platform: "Lynk.id", URL: "https://lynk.id/arisan"},
			},
		},
	}
	require.NoError(t, svc.store.SaveProduct(context.Background(), free))

	req := httptest.NewRequest("GET", "/templates/arisan", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "Download Gratis")
	assert.Contains(t, body, "Shopee")
	assert.Contains(t, body, "https://shopee.co.id/arisan")
	assert.Contains(t, body, "Lynk.id")

	// With a guide file the download button appears.
	free.Detail.FilePanduanPDF = "/uploads/panduan/arisan-panduan.pdf"
	require.NoError(t, svc.store.SaveProduct(context.Background(), free))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest("GET", "/templates/arisan", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Download Gratis")
}

func TestPreviewPage(t *testing.T) {
	e, svc := setupTestEcho(t)

	p := &catalog.Product{
		ID:    "budget-bulanan",
		Judul: "Budget Bulanan",
		Harga: 99000,
		Detail: &catalog.Detail{
			DeskripsiLengkap: "Ringkasan **bulanan** otomatis.",
			Galeri: []catalog.GalleryItem{
				{Judul: "Dashboard", Deskripsi: "Grafik pengeluaran", Gambar: "/uploads/dash.png"},
			},
		},
	}
	require.NoError(t, svc.store.SaveProduct(context.Background(), p))

	req := httptest.NewRequest("GET", "/preview/budget-bulanan", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Budget Bulanan")
	assert.Contains(t, body, "Dashboard")
	assert.Contains(t, body, "<strong>bulanan</strong>")
	assert.Contains(t, body, "/templates/budget-bulanan")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest("GET", "/preview/tidak-ada", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminPanelShipsManagerUI(t *testing.T) {
	e, svc := setupTestEcho(t)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(adminCookie(svc))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	// Search, create/edit form, list mount, and the client script.
	assert.Contains(t, body, `id="product-search"`)
	assert.Contains(t, body, `id="product-form"`)
	assert.Contains(t, body, `id="product-new"`)
	assert.Contains(t, body, `id="product-list"`)
	assert.Contains(t, body, "/public/js/admin.js")
}

func TestAdminSessionGrantsAccess(t *testing.T) {
	e, svc := setupTestEcho(t)
	seedCatalog(t, svc)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(adminCookie(svc))
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	e, _ := setupTestEcho(t)

	req := httptest.NewRequest("POST", "/admin/login", strings.NewReader("username=admin&password=test-password"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	e, _ := setupTestEcho(t)

	req := httptest.NewRequest("POST", "/admin/login", strings.NewReader("username=admin&password=salah"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login?error=invalid", rec.Header().Get("Location"))
}
