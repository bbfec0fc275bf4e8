package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rsquare-id/rsquare/internal/catalog"
	"github.com/rsquare-id/rsquare/storage/sqlite"
)

const numProducts = 12

var templateKinds = []string{
	"Keuangan Pribadi",
	"Budgeting Bulanan",
	"Invoice Otomatis",
	"Stok Barang",
	"Laporan Penjualan",
	"Manajemen Proyek",
	"Absensi Karyawan",
	"Kas Masjid",
	"Arisan",
	"Tabungan Target",
	"Habit Tracker",
	"Jadwal Konten",
}

var platforms = []string{"Shopee", "Tokopedia", "Lynk.id", "Karyakarsa"}

func main() {
	gofakeit.Seed(time.Now().UnixNano())

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./db/rsquare.db"
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	fmt.Println("Seeding template catalog...")

	for i, kind := range templateKinds[:numProducts] {
		product := fakeProduct(i, kind)
		if err := store.SaveProduct(ctx, product); err != nil {
			log.Fatalf("Failed to save product %s: %v", product.ID, err)
		}
		fmt.Printf("  + %s (Rp %d)\n", product.Judul, product.Harga)
	}

	fmt.Printf("Done: %d templates seeded into %s\n", numProducts, dbPath)
}

func fakeProduct(index int, kind string) *catalog.Product {
	judul := "Template " + kind
	id := slugify(judul)

	harga := int64(rand.Intn(8)+2) * 25000
	if index%4 == 0 {
		harga = 0 // every fourth template is a free lead magnet
	}

	links := make([]catalog.PurchaseLink, 0, 2)
	for _, platform := range platforms[:rand.Intn(2)+1] {
		links = append(links, catalog.PurchaseLink{
			Platform: platform,
			URL:      gofakeit.URL(),
		})
	}

	galeri := make([]catalog.GalleryItem, 0, 3)
	for g := 0; g < rand.Intn(3)+1; g++ {
		galeri = append(galeri, catalog.GalleryItem{
			Judul:     gofakeit.ProductName(),
			Deskripsi: gofakeit.Sentence(8),
			Gambar:    fmt.Sprintf("/uploads/%s-galeri-%d.png", id, g+1),
		})
	}

	return &catalog.Product{
		ID:               id,
		Judul:            judul,
		DeskripsiSingkat: gofakeit.Sentence(10),
		Harga:            harga,
		GambarThumbnail:  fmt.Sprintf("/uploads/%s-thumb.png", id),
		Featured:         index < 3,
		Detail: &catalog.Detail{
			GambarUtama:       fmt.Sprintf("/uploads/%s-utama.png", id),
			DeskripsiLengkap:  strings.Join([]string{gofakeit.Paragraph(1, 3, 12, " "), gofakeit.Paragraph(1, 2, 10, " ")}, "\n\n"),
			LinkPreviewDetail: gofakeit.URL(),
			PaymentGateway:    gofakeit.URL(),
			LinkYoutube:       "https://youtube.com/watch?v=" + gofakeit.LetterN(11),
			LinkPembelian:     links,
			Galeri:            galeri,
		},
		SEO: &catalog.SEO{
			MetaTitle:       judul + " | RSQUARE",
			MetaDescription: gofakeit.Sentence(14),
		},
	}
}

func slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	return s
}
