package sqlite

import (
	"context"
	"testing"

	"github.com/rsquare-id/rsquare/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	store, cleanup, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return store
}

func sampleProduct(id, judul string) *catalog.Product {
	return &catalog.Product{
		ID:               id,
		Judul:            judul,
		DeskripsiSingkat: "Template siap pakai",
		Harga:            99000,
		GambarThumbnail:  "/uploads/" + id + ".png",
		Detail: &catalog.Detail{
			GambarUtama:      "/uploads/" + id + "-utama.png",
			DeskripsiLengkap: "Deskripsi lengkap.",
			LinkPembelian: []catalog.PurchaseLink{
				{Platform: "Shopee", URL: "https://shopee.co.id/x"},
				{Platform: "Tokopedia", URL: "https://tokopedia.com/x"},
			},
			Galeri: []catalog.GalleryItem{
				{Judul: "Dashboard", Deskripsi: "Ringkasan bulanan", Gambar: "/uploads/g1.png"},
			},
		},
		SEO: &catalog.SEO{MetaTitle: judul + " | RSQUARE"},
	}
}

func TestSaveAndGetProduct(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, sampleProduct("budget", "Budget Bulanan")))

	got, err := store.GetProduct(ctx, "budget")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Budget Bulanan", got.Judul)
	assert.True(t, got.Active, "new products start active")
	assert.EqualValues(t, 1, got.OrderNumber, "first product takes position 1")
	require.NotNil(t, got.Detail)
	assert.Len(t, got.Detail.LinkPembelian, 2)
	assert.Len(t, got.Detail.Galeri, 1)
	require.NotNil(t, got.SEO)
	assert.Equal(t, "Budget Bulanan | RSQUARE", got.SEO.MetaTitle)
}

func TestPurchaseLinksKeepOrder(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := sampleProduct("budget", "Budget Bulanan")
	p.Detail.LinkPembelian = []catalog.PurchaseLink{
		{Platform: "Tokopedia", URL: "https://tokopedia.com/x"},
		{Platform: "Shopee", URL: "https://shopee.co.id/x"},
		{Platform: "Lynk.id", URL: "https://lynk.id/x"},
		{Platform: "Shopee", URL: "https://shopee.co.id/y"},
	}
	require.NoError(t, store.SaveProduct(ctx, p))

	got, err := store.GetProduct(ctx, "budget")
	require.NoError(t, err)
	require.NotNil(t, got.Detail)
	require.Len(t, got.Detail.LinkPembelian, 4)
	for i, want := range p.Detail.LinkPembelian {
		assert.Equal(t, want, got.Detail.LinkPembelian[i], "link %d out of order", i)
	}
}

func TestGetProductMissing(t *testing.T) {
	store := setupStore(t)

	got, err := store.GetProduct(context.Background(), "tidak-ada")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveReplacesChildren(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	p := sampleProduct("budget", "Budget Bulanan")
	require.NoError(t, store.SaveProduct(ctx, p))

	// Second save with a shorter link list must not accumulate rows.
	p.Detail.LinkPembelian = []catalog.PurchaseLink{
		{Platform: "Lynk.id", URL: "https://lynk.id/x"},
	}
	p.Detail.Galeri = nil
	require.NoError(t, store.SaveProduct(ctx, p))

	got, err := store.GetProduct(ctx, "budget")
	require.NoError(t, err)
	require.NotNil(t, got.Detail)
	require.Len(t, got.Detail.LinkPembelian, 1)
	assert.Equal(t, "Lynk.id", got.Detail.LinkPembelian[0].Platform)
	assert.Empty(t, got.Detail.Galeri)
}

func TestSaveUpdateKeepsActiveAndOrder(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, sampleProduct("budget", "Budget Bulanan")))
	require.NoError(t, store.SetActive(ctx, "budget", false))

	update := sampleProduct("budget", "Budget Bulanan v2")
	update.Active = true // payload value must be ignored on update
	require.NoError(t, store.SaveProduct(ctx, update))

	got, err := store.GetProduct(ctx, "budget")
	require.NoError(t, err)
	assert.Equal(t, "Budget Bulanan v2", got.Judul)
	assert.False(t, got.Active, "update must not resurrect a deactivated product")
	assert.EqualValues(t, 1, got.OrderNumber)
}

func TestInsertAppendsToOrder(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, sampleProduct("a", "Arisan")))
	require.NoError(t, store.SaveProduct(ctx, sampleProduct("b", "Budget")))
	require.NoError(t, store.SaveProduct(ctx, sampleProduct("c", "Catatan Kas")))

	got, err := store.GetProduct(ctx, "c")
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.OrderNumber)
}

func TestListProductsFiltersInactive(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, sampleProduct("a", "Arisan")))
	require.NoError(t, store.SaveProduct(ctx, sampleProduct("b", "Budget")))
	require.NoError(t, store.SetActive(ctx, "b", false))

	public, err := store.ListProducts(ctx, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "a", public[0].ID)

	admin, err := store.ListProducts(ctx, true)
	require.NoError(t, err)
	assert.Len(t, admin, 2)
}

func TestReorderRenumbers(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, sampleProduct("a", "Arisan")))
	require.NoError(t, store.SaveProduct(ctx, sampleProduct("b", "Budget")))
	require.NoError(t, store.SaveProduct(ctx, sampleProduct("c", "Catatan Kas")))

	require.NoError(t, store.Reorder(ctx, []string{"c", "a", "b"}))

	products, err := store.ListProducts(ctx, true)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "c", products[0].ID)
	assert.Equal(t, "a", products[1].ID)
	assert.Equal(t, "b", products[2].ID)
	assert.EqualValues(t, 1, products[0].OrderNumber)
	assert.EqualValues(t, 2, products[1].OrderNumber)
	assert.EqualValues(t, 3, products[2].OrderNumber)
}

func TestDeleteCascades(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, sampleProduct("budget", "Budget Bulanan")))

	deleted, err := store.DeleteProduct(ctx, "budget")
	require.NoError(t, err)
	assert.True(t, deleted)

	var links int
	err = store.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM product_links`).Scan(&links)
	require.NoError(t, err)
	assert.Zero(t, links, "child rows must go with the product")

	deleted, err = store.DeleteProduct(ctx, "budget")
	require.NoError(t, err)
	assert.False(t, deleted, "second delete finds nothing")
}

func TestSetFeaturedAndActive(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, sampleProduct("budget", "Budget Bulanan")))

	require.NoError(t, store.SetFeatured(ctx, "budget", true))
	got, err := store.GetProduct(ctx, "budget")
	require.NoError(t, err)
	assert.True(t, got.Featured)

	// Idempotent: setting the current value changes nothing.
	require.NoError(t, store.SetActive(ctx, "budget", true))
	require.NoError(t, store.SetActive(ctx, "budget", true))
	got, err = store.GetProduct(ctx, "budget")
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestListSummaries(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	paid := sampleProduct("paid", "Budget Bulanan")
	free := sampleProduct("free", "Arisan")
	free.Harga = 0
	hidden := sampleProduct("hidden", "Catatan Kas")
	hidden.Harga = 0

	require.NoError(t, store.SaveProduct(ctx, paid))
	require.NoError(t, store.SaveProduct(ctx, free))
	require.NoError(t, store.SaveProduct(ctx, hidden))
	require.NoError(t, store.SetFeatured(ctx, "paid", true))
	require.NoError(t, store.SetActive(ctx, "hidden", false))

	featured, err := store.ListFeatured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "paid", featured[0].ID)

	freeList, err := store.ListFree(ctx)
	require.NoError(t, err)
	require.Len(t, freeList, 1)
	assert.Equal(t, "free", freeList[0].ID)
}
