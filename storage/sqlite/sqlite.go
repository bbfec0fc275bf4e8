// Package sqlite is the embedded catalog backend used for local
// development and single-machine deployments.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	"github.com/rsquare-id/rsquare/internal/catalog"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the catalog database at dbPath and
// runs pending migrations.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("running database migrations", "database", dbPath)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for maintenance scripts.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) ListProducts(ctx context.Context, includeInactive bool) ([]catalog.Product, error) {
	query := `SELECT id, judul, deskripsi_singkat, harga, gambar_thumbnail, featured, active, order_number, created_at, updated_at FROM products`
	if !includeInactive {
		query += ` WHERE active = 1`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
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
	return s.listSummaries(ctx, `featured = 1 AND active = 1`)
}

func (s *Store) ListFree(ctx context.Context) ([]catalog.Summary, error) {
	return s.listSummaries(ctx, `harga = 0 AND active = 1`)
}

func (s *Store) listSummaries(ctx context.Context, where string) ([]catalog.Summary, error) {
	query := `SELECT id, judul, deskripsi_singkat, harga, gambar_thumbnail FROM products WHERE ` + where + ` ORDER BY order_number, judul`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	summaries := []catalog.Summary{}
	for rows.Next() {
		var sm catalog.Summary
		var singkat, thumb sql.NullString
		if err := rows.Scan(&sm.ID, &sm.Judul, &singkat, &sm.Harga, &thumb); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sm.DeskripsiSingkat = singkat.String
		sm.GambarThumbnail = catalog.ResolveAssetPath(thumb.String)
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, judul, deskripsi_singkat, harga, gambar_thumbnail, featured, active, order_number, created_at, updated_at FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", id, err)
	}

	if err := s.loadChildren(ctx, p); err != nil {
		return nil, err
	}
	p.ResolveAssets()
	return p, nil
}

func (s *Store) SaveProduct(ctx context.Context, p *catalog.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	// Upsert the root row without touching active/order_number on
	// update; those are owned by their dedicated operations.
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) > 0 FROM products WHERE id = ?`, p.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check product %q: %w", p.ID, err)
	}

	if exists {
		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET judul = ?, deskripsi_singkat = ?, harga = ?, gambar_thumbnail = ?, featured = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`,
			p.Judul, p.DeskripsiSingkat, p.Harga, p.GambarThumbnail, boolToInt(p.Featured), p.ID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, judul, deskripsi_singkat, harga, gambar_thumbnail, featured, active, order_number)
			VALUES (?, ?, ?, ?, ?, ?, 1, (SELECT COALESCE(MAX(order_number), 0) + 1 FROM products))`,
			p.ID, p.Judul, p.DeskripsiSingkat, p.Harga, p.GambarThumbnail, boolToInt(p.Featured))
	}
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", p.ID, err)
	}

	// Full replace of child relations, no diffing.
	for _, table := range []string{"product_details", "product_links", "product_gallery", "product_seo"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE product_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clear %s for %q: %w", table, p.ID, err)
		}
	}

	if p.Detail != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_details (product_id, gambar_utama, deskripsi_lengkap, link_preview_detail, link_payment_gateway, link_youtube, file_panduan)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Detail.GambarUtama, p.Detail.DeskripsiLengkap, p.Detail.LinkPreviewDetail,
			p.Detail.PaymentGateway, p.Detail.LinkYoutube, p.Detail.FilePanduanPDF)
		if err != nil {
			return fmt.Errorf("insert details for %q: %w", p.ID, err)
		}

		for _, link := range p.Detail.LinkPembelian {
			if _, err := tx.ExecContext(ctx, `INSERT INTO product_links (product_id, platform, url) VALUES (?, ?, ?)`,
				p.ID, link.Platform, link.URL); err != nil {
				return fmt.Errorf("insert link for %q: %w", p.ID, err)
			}
		}

		for i, item := range p.Detail.Galeri {
			if _, err := tx.ExecContext(ctx, `INSERT INTO product_gallery (product_id, judul, deskripsi, gambar, sort_order) VALUES (?, ?, ?, ?, ?)`,
				p.ID, item.Judul, item.Deskripsi, item.Gambar, i); err != nil {
				return fmt.Errorf("insert gallery item for %q: %w", p.ID, err)
			}
		}
	}

	if p.SEO != nil {
		if _, err := tx.ExecContext(ctx, `INSERT INTO product_seo (product_id, meta_title, meta_description) VALUES (?, ?, ?)`,
			p.ID, p.SEO.MetaTitle, p.SEO.MetaDescription); err != nil {
			return fmt.Errorf("insert seo for %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save for %q: %w", p.ID, err)
	}
	return nil
}

func (s *Store) SetFeatured(ctx context.Context, id string, featured bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE products SET featured = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, boolToInt(featured), id)
	if err != nil {
		return fmt.Errorf("set featured for %q: %w", id, err)
	}
	return nil
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE products SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("set active for %q: %w", id, err)
	}
	return nil
}

func (s *Store) Reorder(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE products SET order_number = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, i+1, id); err != nil {
			return fmt.Errorf("reorder %q to position %d: %w", id, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete product %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete product %q: %w", id, err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*catalog.Product, error) {
	var p catalog.Product
	var singkat, thumb sql.NullString
	var featured, active int64
	if err := row.Scan(&p.ID, &p.Judul, &singkat, &p.Harga, &thumb, &featured, &active, &p.OrderNumber, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.DeskripsiSingkat = singkat.String
	p.GambarThumbnail = thumb.String
	p.Featured = featured != 0
	p.Active = active != 0
	return &p, nil
}

func (s *Store) loadChildren(ctx context.Context, p *catalog.Product) error {
	var d catalog.Detail
	var utama, lengkap, preview, gateway, youtube, panduan sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT gambar_utama, deskripsi_lengkap, link_preview_detail, link_payment_gateway, link_youtube, file_panduan FROM product_details WHERE product_id = ?`, p.ID).
		Scan(&utama, &lengkap, &preview, &gateway, &youtube, &panduan)
	switch err {
	case nil:
		d.GambarUtama = utama.String
		d.DeskripsiLengkap = lengkap.String
		d.LinkPreviewDetail = preview.String
		d.PaymentGateway = gateway.String
		d.LinkYoutube = youtube.String
		d.FilePanduanPDF = panduan.String
		p.Detail = &d
	case sql.ErrNoRows:
		p.Detail = nil
	default:
		return fmt.Errorf("load details for %q: %w", p.ID, err)
	}

	if p.Detail != nil {
		links, err := s.db.QueryContext(ctx, `SELECT platform, url FROM product_links WHERE product_id = ? ORDER BY id`, p.ID)
		if err != nil {
			return fmt.Errorf("load links for %q: %w", p.ID, err)
		}
		defer links.Close()
		p.Detail.LinkPembelian = []catalog.PurchaseLink{}
		for links.Next() {
			var l catalog.PurchaseLink
			if err := links.Scan(&l.Platform, &l.URL); err != nil {
				return fmt.Errorf("scan link for %q: %w", p.ID, err)
			}
			p.Detail.LinkPembelian = append(p.Detail.LinkPembelian, l)
		}
		if err := links.Err(); err != nil {
			return fmt.Errorf("load links for %q: %w", p.ID, err)
		}

		gallery, err := s.db.QueryContext(ctx, `SELECT judul, deskripsi, gambar FROM product_gallery WHERE product_id = ? ORDER BY sort_order`, p.ID)
		if err != nil {
			return fmt.Errorf("load gallery for %q: %w", p.ID, err)
		}
		defer gallery.Close()
		p.Detail.Galeri = []catalog.GalleryItem{}
		for gallery.Next() {
			var item catalog.GalleryItem
			var deskripsi sql.NullString
			if err := gallery.Scan(&item.Judul, &deskripsi, &item.Gambar); err != nil {
				return fmt.Errorf("scan gallery item for %q: %w", p.ID, err)
			}
			item.Deskripsi = deskripsi.String
			p.Detail.Galeri = append(p.Detail.Galeri, item)
		}
		if err := gallery.Err(); err != nil {
			return fmt.Errorf("load gallery for %q: %w", p.ID, err)
		}
	}

	var seo catalog.SEO
	var title, desc sql.NullString
	err = s.db.QueryRowContext(ctx, `SELECT meta_title, meta_description FROM product_seo WHERE product_id = ?`, p.ID).Scan(&title, &desc)
	switch err {
	case nil:
		seo.MetaTitle = title.String
		seo.MetaDescription = desc.String
		p.SEO = &seo
	case sql.ErrNoRows:
		p.SEO = nil
	default:
		return fmt.Errorf("load seo for %q: %w", p.ID, err)
	}

	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
