package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rsquare-id/rsquare/internal/auth"
	"github.com/rsquare-id/rsquare/internal/catalog"
	"github.com/rsquare-id/rsquare/storage/sqlite"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, cleanup, err := sqlite.NewMemory()
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return store
}

// newTestContext builds an echo context for a JSON request. Marks the
// request as an authenticated admin so handlers take the admin path.
func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set(auth.IsAdminKey, true)
	return c, rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func seedProduct(t *testing.T, store *sqlite.Store, id, judul string, featured bool) {
	t.Helper()

	p := &catalog.Product{
		ID:              id,
		Judul:           judul,
		Harga:           50000,
		GambarThumbnail: "/uploads/" + id + ".png",
	}
	require.NoError(t, store.SaveProduct(context.Background(), p))
	if featured {
		require.NoError(t, store.SetFeatured(context.Background(), id, true))
	}
}
