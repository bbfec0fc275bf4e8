// Package postgres is the server-database catalog backend used in
// production deployments without hosted Supabase.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rsquare-id/rsquare/internal/catalog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database, runs pending migrations, and returns
// the pooled store.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	// Migrations go through database/sql; goose does not speak pgx
	// pools directly.
	migDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	defer migDB.Close()

	if err := migDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("running database migrations")
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(migDB, "migrations"); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) ListProducts(ctx context.Context, includeInactive bool) ([]catalog.Product, error) {
	query := `SELECT id, judul, deskripsi_singkat, harga, gambar_thumbnail, featured, active, order_number, created_at, updated_at FROM products`
	if !includeInactive {
		query += ` WHERE active`
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []catalog.Product{}
	for rows.Next() {
		var p catalog.Product
		var singkat, thumb *string
		if err := rows.Scan(&p.ID, &p.Judul, &singkat, &p.Harga, &thumb, &p.Featured, &p.Active, &p.OrderNumber, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.DeskripsiSingkat = deref(singkat)
		p.GambarThumbnail = deref(thumb)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	for i := range products {
		if err := s.loadChildren(ctx, &products[i]); err != nil {
			return nil, err
		}
		products[i].ResolveAssets()
	}

	catalog.SortProducts(products)
	return products, nil
}

func (s *Store) ListFeatured(ctx context.Context) ([]catalog.Summary, error) {
	return s.listSummaries(ctx, `featured AND active`)
}

func (s *Store) ListFree(ctx context.Context) ([]catalog.Summary, error) {
	return s.listSummaries(ctx, `harga = 0 AND active`)
}

func (s *Store) listSummaries(ctx context.Context, where string) ([]catalog.Summary, error) {
	query := `SELECT id, judul, deskripsi_singkat, harga, gambar_thumbnail FROM products WHERE ` + where + ` ORDER BY order_number, judul`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	summaries := []catalog.Summary{}
	for rows.Next() {
		var sm catalog.Summary
		var singkat, thumb *string
		if err := rows.Scan(&sm.ID, &sm.Judul, &singkat, &sm.Harga, &thumb); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sm.DeskripsiSingkat = deref(singkat)
		sm.GambarThumbnail = catalog.ResolveAssetPath(deref(thumb))
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	var singkat, thumb *string
	err := s.pool.QueryRow(ctx, `SELECT id, judul, deskripsi_singkat, harga, gambar_thumbnail, featured, active, order_number, created_at, updated_at FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Judul, &singkat, &p.Harga, &thumb, &p.Featured, &p.Active, &p.OrderNumber, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", id, err)
	}
	p.DeskripsiSingkat = deref(singkat)
	p.GambarThumbnail = deref(thumb)

	if err := s.loadChildren(ctx, &p); err != nil {
		return nil, err
	}
	p.ResolveAssets()
	return &p, nil
}

func (s *Store) SaveProduct(ctx context.Context, p *catalog.Product) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	// active and order_number are owned by their dedicated operations;
	// the upsert only sets them for brand-new rows.
	_, err = tx.Exec(ctx, `
		INSERT INTO products (id, judul, deskripsi_singkat, harga, gambar_thumbnail, featured, active, order_number)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, (SELECT COALESCE(MAX(order_number), 0) + 1 FROM products))
		ON CONFLICT (id) DO UPDATE SET
			judul = EXCLUDED.judul,
			deskripsi_singkat = EXCLUDED.deskripsi_singkat,
			harga = EXCLUDED.harga,
			gambar_thumbnail = EXCLUDED.gambar_thumbnail,
			featured = EXCLUDED.featured,
			updated_at = NOW()`,
		p.ID, p.Judul, p.DeskripsiSingkat, p.Harga, p.GambarThumbnail, p.Featured)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", p.ID, err)
	}

	for _, table := range []string{"product_details", "product_links", "product_gallery", "product_seo"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE product_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clear %s for %q: %w", table, p.ID, err)
		}
	}

	if p.Detail != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO product_details (product_id, gambar_utama, deskripsi_lengkap, link_preview_detail, link_payment_gateway, link_youtube, file_panduan)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, p.Detail.GambarUtama, p.Detail.DeskripsiLengkap, p.Detail.LinkPreviewDetail,
			p.Detail.PaymentGateway, p.Detail.LinkYoutube, p.Detail.FilePanduanPDF)
		if err != nil {
			return fmt.Errorf("insert details for %q: %w", p.ID, err)
		}

		for _, link := range p.Detail.LinkPembelian {
			if _, err := tx.Exec(ctx, `INSERT INTO product_links (product_id, platform, url) VALUES ($1, $2, $3)`,
				p.ID, link.Platform, link.URL); err != nil {
				return fmt.Errorf("insert link for %q: %w", p.ID, err)
			}
		}

		for i, item := range p.Detail.Galeri {
			if _, err := tx.Exec(ctx, `INSERT INTO product_gallery (product_id, judul, deskripsi, gambar, sort_order) VALUES ($1, $2, $3, $4, $5)`,
				p.ID, item.Judul, item.Deskripsi, item.Gambar, i); err != nil {
				return fmt.Errorf("insert gallery item for %q: %w", p.ID, err)
			}
		}
	}

	if p.SEO != nil {
		if _, err := tx.Exec(ctx, `INSERT INTO product_seo (product_id, meta_title, meta_description) VALUES ($1, $2, $3)`,
			p.ID, p.SEO.MetaTitle, p.SEO.MetaDescription); err != nil {
			return fmt.Errorf("insert seo for %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save for %q: %w", p.ID, err)
	}
	return nil
}

func (s *Store) SetFeatured(ctx context.Context, id string, featured bool) error {
	if _, err := s.pool.Exec(ctx, `UPDATE products SET featured = $1, updated_at = NOW() WHERE id = $2`, featured, id); err != nil {
		return fmt.Errorf("set featured for %q: %w", id, err)
	}
	return nil
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := s.pool.Exec(ctx, `UPDATE products SET active = $1, updated_at = NOW() WHERE id = $2`, active, id); err != nil {
		return fmt.Errorf("set active for %q: %w", id, err)
	}
	return nil
}

func (s *Store) Reorder(ctx context.Context, ids []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, id := range ids {
		if _, err := tx.Exec(ctx, `UPDATE products SET order_number = $1, updated_at = NOW() WHERE id = $2`, i+1, id); err != nil {
			return fmt.Errorf("reorder %q to position %d: %w", id, i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product %q: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) loadChildren(ctx context.Context, p *catalog.Product) error {
	var d catalog.Detail
	var utama, lengkap, preview, gateway, youtube, panduan *string
	err := s.pool.QueryRow(ctx, `SELECT gambar_utama, deskripsi_lengkap, link_preview_detail, link_payment_gateway, link_youtube, file_panduan FROM product_details WHERE product_id = $1`, p.ID).
		Scan(&utama, &lengkap, &preview, &gateway, &youtube, &panduan)
	switch {
	case err == nil:
		d.GambarUtama = deref(utama)
		d.DeskripsiLengkap = deref(lengkap)
		d.LinkPreviewDetail = deref(preview)
		d.PaymentGateway = deref(gateway)
		d.LinkYoutube = deref(youtube)
		d.FilePanduanPDF = deref(panduan)
		p.Detail = &d
	case errors.Is(err, pgx.ErrNoRows):
		p.Detail = nil
	default:
		return fmt.Errorf("load details for %q: %w", p.ID, err)
	}

	if p.Detail != nil {
		links, err := s.pool.Query(ctx, `SELECT platform, url FROM product_links WHERE product_id = $1 ORDER BY id`, p.ID)
		if err != nil {
			return fmt.Errorf("load links for %q: %w", p.ID, err)
		}
		p.Detail.LinkPembelian = []catalog.PurchaseLink{}
		for links.Next() {
			var l catalog.PurchaseLink
			if err := links.Scan(&l.Platform, &l.URL); err != nil {
				links.Close()
				return fmt.Errorf("scan link for %q: %w", p.ID, err)
			}
			p.Detail.LinkPembelian = append(p.Detail.LinkPembelian, l)
		}
		links.Close()
		if err := links.Err(); err != nil {
			return fmt.Errorf("load links for %q: %w", p.ID, err)
		}

		gallery, err := s.pool.Query(ctx, `SELECT judul, deskripsi, gambar FROM product_gallery WHERE product_id = $1 ORDER BY sort_order`, p.ID)
		if err != nil {
			return fmt.Errorf("load gallery for %q: %w", p.ID, err)
		}
		p.Detail.Galeri = []catalog.GalleryItem{}
		for gallery.Next() {
			var item catalog.GalleryItem
			var deskripsi *string
			if err := gallery.Scan(&item.Judul, &deskripsi, &item.Gambar); err != nil {
				gallery.Close()
				return fmt.Errorf("scan gallery item for %q: %w", p.ID, err)
			}
			item.Deskripsi = deref(deskripsi)
			p.Detail.Galeri = append(p.Detail.Galeri, item)
		}
		gallery.Close()
		if err := gallery.Err(); err != nil {
			return fmt.Errorf("load gallery for %q: %w", p.ID, err)
		}
	}

	var seo catalog.SEO
	var title, desc *string
	err = s.pool.QueryRow(ctx, `SELECT meta_title, meta_description FROM product_seo WHERE product_id = $1`, p.ID).Scan(&title, &desc)
	switch {
	case err == nil:
		seo.MetaTitle = deref(title)
		seo.MetaDescription = deref(desc)
		p.SEO = &seo
	case errors.Is(err, pgx.ErrNoRows):
		p.SEO = nil
	default:
		return fmt.Errorf("load seo for %q: %w", p.ID, err)
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
