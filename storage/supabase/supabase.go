package supabase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/rsquare-id/rsquare/internal/catalog"
	"golang.org/x/sync/errgroup"
)

type Store struct {
	c *client
}

// New wires the hosted backend. Credentials are validated lazily: the
// first failing call surfaces the backend error.
func New(baseURL, key string) *Store {
	return &Store{c: newClient(baseURL, key)}
}

func (s *Store) Close() error { return nil }

// Row mirrors the products table.
type productRow struct {
	ID               string    `json:"id"`
	Judul            string    `json:"judul"`
	DeskripsiSingkat *string   `json:"deskripsi_singkat"`
	Harga            int64     `json:"harga"`
	GambarThumbnail  *string   `json:"gambar_thumbnail"`
	Featured         bool      `json:"featured"`
	Active           bool      `json:"active"`
	OrderNumber      int64     `json:"order_number"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type detailRow struct {
	ProductID         string  `json:"product_id"`
	GambarUtama       *string `json:"gambar_utama"`
	DeskripsiLengkap  *string `json:"deskripsi_lengkap"`
	LinkPreviewDetail *string `json:"link_preview_detail"`
	LinkPayment       *string `json:"link_payment_gateway"`
	LinkYoutube       *string `json:"link_youtube"`
	FilePanduan       *string `json:"file_panduan"`
}

type linkRow struct {
	ProductID string `json:"product_id,omitempty"`
	Platform  string `json:"platform"`
	URL       string `json:"url"`
}

type galleryRow struct {
	ProductID string  `json:"product_id,omitempty"`
	Judul     string  `json:"judul"`
	Deskripsi *string `json:"deskripsi"`
	Gambar    string  `json:"gambar"`
	SortOrder int64   `json:"sort_order"`
}

type seoRow struct {
	ProductID       string  `json:"product_id,omitempty"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
}

func (s *Store) ListProducts(ctx context.Context, includeInactive bool) ([]catalog.Product, error) {
	params := url.Values{}
	params.Set("select", "*")
	if !includeInactive {
		params.Set("active", "eq.true")
	}

	var rows []productRow
	if err := s.c.get(ctx, "products", params, &rows); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]catalog.Product, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	for i, row := range rows {
		g.Go(func() error {
			p := rowToProduct(row)
			if err := s.loadChildren(gctx, &p); err != nil {
				return err
			}
			p.ResolveAssets()
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog.SortProducts(products)
	return products, nil
}

func (s *Store) ListFeatured(ctx context.Context) ([]catalog.Summary, error) {
	params := summaryParams()
	params.Set("featured", "eq.true")
	params.Set("active", "eq.true")
	return s.listSummaries(ctx, params)
}

func (s *Store) ListFree(ctx context.Context) ([]catalog.Summary, error) {
	params := summaryParams()
	params.Set("harga", "eq.0")
	params.Set("active", "eq.true")
	return s.listSummaries(ctx, params)
}

func summaryParams() url.Values {
	params := url.Values{}
	params.Set("select", "id,judul,deskripsi_singkat,harga,gambar_thumbnail")
	params.Set("order", "order_number.asc,judul.asc")
	return params
}

func (s *Store) listSummaries(ctx context.Context, params url.Values) ([]catalog.Summary, error) {
	var rows []productRow
	if err := s.c.get(ctx, "products", params, &rows); err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}

	summaries := make([]catalog.Summary, len(rows))
	for i, row := range rows {
		summaries[i] = catalog.Summary{
			ID:               row.ID,
			Judul:            row.Judul,
			DeskripsiSingkat: deref(row.DeskripsiSingkat),
			Harga:            row.Harga,
			GambarThumbnail:  catalog.ResolveAssetPath(deref(row.GambarThumbnail)),
		}
	}
	return summaries, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	var rows []productRow
	if err := s.c.get(ctx, "products", eq("id", id), &rows); err != nil {
		return nil, fmt.Errorf("get product %q: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	p := rowToProduct(rows[0])
	if err := s.loadChildren(ctx, &p); err != nil {
		return nil, err
	}
	p.ResolveAssets()
	return &p, nil
}

func (s *Store) SaveProduct(ctx context.Context, p *catalog.Product) error {
	// REST calls are sequential and not wrapped in a transaction; a
	// mid-save failure leaves the product partially written.
	var existing []productRow
	if err := s.c.get(ctx, "products", eq("id", p.ID), &existing); err != nil {
		return fmt.Errorf("check product %q: %w", p.ID, err)
	}

	core := map[string]any{
		"judul":             p.Judul,
		"deskripsi_singkat": p.DeskripsiSingkat,
		"harga":             p.Harga,
		"gambar_thumbnail":  p.GambarThumbnail,
		"featured":          p.Featured,
		"updated_at":        time.Now().UTC().Format(time.RFC3339),
	}

	if len(existing) > 0 {
		if err := s.c.patch(ctx, "products", eq("id", p.ID), core); err != nil {
			return fmt.Errorf("update product %q: %w", p.ID, err)
		}
	} else {
		next, err := s.nextOrderNumber(ctx)
		if err != nil {
			return err
		}
		core["id"] = p.ID
		core["active"] = true
		core["order_number"] = next
		if err := s.c.insert(ctx, "products", core); err != nil {
			return fmt.Errorf("insert product %q: %w", p.ID, err)
		}
	}

	// Full replace of child relations; the deletes run concurrently.
	g, gctx := errgroup.WithContext(ctx)
	for _, table := range []string{"product_details", "product_links", "product_gallery", "product_seo"} {
		g.Go(func() error {
			if err := s.c.delete(gctx, table, eq("product_id", p.ID), nil); err != nil {
				return fmt.Errorf("clear %s for %q: %w", table, p.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if p.Detail != nil {
		if err := s.c.insert(ctx, "product_details", detailRow{
			ProductID:         p.ID,
			GambarUtama:       nullable(p.Detail.GambarUtama),
			DeskripsiLengkap:  nullable(p.Detail.DeskripsiLengkap),
			LinkPreviewDetail: nullable(p.Detail.LinkPreviewDetail),
			LinkPayment:       nullable(p.Detail.PaymentGateway),
			LinkYoutube:       nullable(p.Detail.LinkYoutube),
			FilePanduan:       nullable(p.Detail.FilePanduanPDF),
		}); err != nil {
			return fmt.Errorf("insert details for %q: %w", p.ID, err)
		}

		if len(p.Detail.LinkPembelian) > 0 {
			links := make([]linkRow, len(p.Detail.LinkPembelian))
			for i, l := range p.Detail.LinkPembelian {
				links[i] = linkRow{ProductID: p.ID, Platform: l.Platform, URL: l.URL}
			}
			if err := s.c.insert(ctx, "product_links", links); err != nil {
				return fmt.Errorf("insert links for %q: %w", p.ID, err)
			}
		}

		if len(p.Detail.Galeri) > 0 {
			gallery := make([]galleryRow, len(p.Detail.Galeri))
			for i, item := range p.Detail.Galeri {
				gallery[i] = galleryRow{ProductID: p.ID, Judul: item.Judul, Deskripsi: nullable(item.Deskripsi), Gambar: item.Gambar, SortOrder: int64(i)}
			}
			if err := s.c.insert(ctx, "product_gallery", gallery); err != nil {
				return fmt.Errorf("insert gallery for %q: %w", p.ID, err)
			}
		}
	}

	if p.SEO != nil {
		if err := s.c.insert(ctx, "product_seo", seoRow{
			ProductID:       p.ID,
			MetaTitle:       nullable(p.SEO.MetaTitle),
			MetaDescription: nullable(p.SEO.MetaDescription),
		}); err != nil {
			return fmt.Errorf("insert seo for %q: %w", p.ID, err)
		}
	}

	return nil
}

func (s *Store) nextOrderNumber(ctx context.Context) (int64, error) {
	params := url.Values{}
	params.Set("select", "order_number")
	params.Set("order", "order_number.desc")
	params.Set("limit", "1")

	var rows []struct {
		OrderNumber int64 `json:"order_number"`
	}
	if err := s.c.get(ctx, "products", params, &rows); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	if len(rows) == 0 {
		return 1, nil
	}
	return rows[0].OrderNumber + 1, nil
}

func (s *Store) SetFeatured(ctx context.Context, id string, featured bool) error {
	body := map[string]any{"featured": featured, "updated_at": time.Now().UTC().Format(time.RFC3339)}
	if err := s.c.patch(ctx, "products", eq("id", id), body); err != nil {
		return fmt.Errorf("set featured for %q: %w", id, err)
	}
	return nil
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	body := map[string]any{"active": active, "updated_at": time.Now().UTC().Format(time.RFC3339)}
	if err := s.c.patch(ctx, "products", eq("id", id), body); err != nil {
		return fmt.Errorf("set active for %q: %w", id, err)
	}
	return nil
}

// Reorder runs the per-id updates concurrently. PostgREST offers no
// transaction across calls, so the prior ordering is snapshotted first
// and restored when any update fails.
func (s *Store) Reorder(ctx context.Context, ids []string) error {
	params := url.Values{}
	params.Set("select", "id,order_number")
	var snapshot []productRow
	if err := s.c.get(ctx, "products", params, &snapshot); err != nil {
		return fmt.Errorf("snapshot order: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			body := map[string]any{"order_number": i + 1}
			if err := s.c.patch(gctx, "products", eq("id", id), body); err != nil {
				return fmt.Errorf("reorder %q to position %d: %w", id, i+1, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.restoreOrder(ctx, snapshot)
		return err
	}
	return nil
}

// restoreOrder is best effort: a restore failure is logged, not
// returned, because the caller already has the original error.
func (s *Store) restoreOrder(ctx context.Context, snapshot []productRow) {
	for _, row := range snapshot {
		body := map[string]any{"order_number": row.OrderNumber}
		if err := s.c.patch(ctx, "products", eq("id", row.ID), body); err != nil {
			slog.Error("failed to restore product order", "error", err, "id", row.ID)
		}
	}
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (bool, error) {
	var deleted []productRow
	if err := s.c.delete(ctx, "products", eq("id", id), &deleted); err != nil {
		return false, fmt.Errorf("delete product %q: %w", id, err)
	}
	return len(deleted) > 0, nil
}

func (s *Store) loadChildren(ctx context.Context, p *catalog.Product) error {
	var (
		details []detailRow
		links   []linkRow
		gallery []galleryRow
		seos    []seoRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.c.get(gctx, "product_details", eq("product_id", p.ID), &details) })
	g.Go(func() error { return s.c.get(gctx, "product_links", eq("product_id", p.ID), &links) })
	g.Go(func() error {
		params := eq("product_id", p.ID)
		params.Set("order", "sort_order.asc")
		return s.c.get(gctx, "product_gallery", params, &gallery)
	})
	g.Go(func() error { return s.c.get(gctx, "product_seo", eq("product_id", p.ID), &seos) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load children for %q: %w", p.ID, err)
	}

	if len(details) > 0 {
		d := details[0]
		p.Detail = &catalog.Detail{
			GambarUtama:       deref(d.GambarUtama),
			DeskripsiLengkap:  deref(d.DeskripsiLengkap),
			LinkPreviewDetail: deref(d.LinkPreviewDetail),
			PaymentGateway:    deref(d.LinkPayment),
			LinkYoutube:       deref(d.LinkYoutube),
			FilePanduanPDF:    deref(d.FilePanduan),
			LinkPembelian:     []catalog.PurchaseLink{},
			Galeri:            []catalog.GalleryItem{},
		}
		for _, l := range links {
			p.Detail.LinkPembelian = append(p.Detail.LinkPembelian, catalog.PurchaseLink{Platform: l.Platform, URL: l.URL})
		}
		for _, item := range gallery {
			p.Detail.Galeri = append(p.Detail.Galeri, catalog.GalleryItem{Judul: item.Judul, Deskripsi: deref(item.Deskripsi), Gambar: item.Gambar})
		}
	}

	if len(seos) > 0 {
		p.SEO = &catalog.SEO{MetaTitle: deref(seos[0].MetaTitle), MetaDescription: deref(seos[0].MetaDescription)}
	}
	return nil
}

func rowToProduct(row productRow) catalog.Product {
	return catalog.Product{
		ID:               row.ID,
		Judul:            row.Judul,
		DeskripsiSingkat: deref(row.DeskripsiSingkat),
		Harga:            row.Harga,
		GambarThumbnail:  deref(row.GambarThumbnail),
		Featured:         row.Featured,
		Active:           row.Active,
		OrderNumber:      row.OrderNumber,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
