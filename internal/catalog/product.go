package catalog

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation marks client-caused errors so handlers can answer 400
// instead of 500. Wrap with fmt.Errorf("...: %w", ErrValidation).
var ErrValidation = errors.New("validation failed")

// Product is the root catalog entity. The JSON tags are the wire shape
// shared by the API, the admin form, and all storage backends.
type Product struct {
	ID               string    `json:"id"`
	Judul            string    `json:"judul"`
	DeskripsiSingkat string    `json:"deskripsi_singkat"`
	Harga            int64     `json:"harga"`
	GambarThumbnail  string    `json:"gambar_thumbnail"`
	Featured         bool      `json:"featured"`
	Active           bool      `json:"active"`
	OrderNumber      int64     `json:"order_number"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Detail           *Detail   `json:"detail"`
	SEO              *SEO      `json:"seo"`
}

// Detail holds the 1:1 long-form fields of a product.
type Detail struct {
	GambarUtama       string         `json:"gambar_utama"`
	DeskripsiLengkap  string         `json:"deskripsi_lengkap"`
	LinkPreviewDetail string         `json:"link_preview_detail"`
	PaymentGateway    string         `json:"payment_gateway"`
	LinkYoutube       string         `json:"link_youtube"`
	FilePanduanPDF    string         `json:"file_panduan_pdf"`
	LinkPembelian     []PurchaseLink `json:"link_pembelian"`
	Galeri            []GalleryItem  `json:"galeri"`
}

// PurchaseLink is an external marketplace listing for a product.
// Order-preserving, platforms may repeat.
type PurchaseLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// GalleryItem is one screenshot/section of the product gallery. Sort
// order is the slice index; it is not part of the wire shape.
type GalleryItem struct {
	Judul     string `json:"judul"`
	Deskripsi string `json:"deskripsi"`
	Gambar    string `json:"gambar"`
}

// SEO holds optional meta tags for the product page.
type SEO struct {
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

// Summary is the minimal listing shape used by the featured and free
// endpoints and the homepage cards.
type Summary struct {
	ID               string `json:"id"`
	Judul            string `json:"judul"`
	DeskripsiSingkat string `json:"deskripsi_singkat"`
	Harga            int64  `json:"harga"`
	GambarThumbnail  string `json:"gambar_thumbnail"`
}

// IsFree reports whether the product uses the free call-to-action.
// Price 0 is the sentinel; there is no separate flag.
func (p *Product) IsFree() bool { return p.Harga == 0 }

// HasGuide reports whether a downloadable guide exists for the product.
func (p *Product) HasGuide() bool {
	return p.Detail != nil && p.Detail.FilePanduanPDF != ""
}

// Validate checks the fields required before a product may be saved.
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: id wajib diisi", ErrValidation)
	}
	if p.Judul == "" {
		return fmt.Errorf("%w: judul wajib diisi", ErrValidation)
	}
	return nil
}

// Summary projects the product down to its listing fields.
func (p *Product) Summary() Summary {
	return Summary{
		ID:               p.ID,
		Judul:            p.Judul,
		DeskripsiSingkat: p.DeskripsiSingkat,
		Harga:            p.Harga,
		GambarThumbnail:  p.GambarThumbnail,
	}
}

// ResolveAssets normalizes every stored image/file reference on the
// product to a servable URL. Backends call this at their read boundary.
func (p *Product) ResolveAssets() {
	p.GambarThumbnail = ResolveAssetPath(p.GambarThumbnail)
	if p.Detail != nil {
		p.Detail.GambarUtama = ResolveAssetPath(p.Detail.GambarUtama)
		p.Detail.FilePanduanPDF = ResolveAssetPath(p.Detail.FilePanduanPDF)
		for i := range p.Detail.Galeri {
			p.Detail.Galeri[i].Gambar = ResolveAssetPath(p.Detail.Galeri[i].Gambar)
		}
	}
}
