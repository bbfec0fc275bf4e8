// Package guide produces the downloadable purchase-guide PDF
// (panduan) for a template, including a QR code to the payment page.
package guide

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/rsquare-id/rsquare/internal/catalog"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSizeMM = 40.0

var steps = []string{
	"Selesaikan pembayaran melalui tombol atau QR di bawah.",
	"Buka email konfirmasi dan klik tautan template.",
	"Pilih \"Buat salinan\" (Make a copy) di Google Sheets.",
	"Template siap digunakan di akun Google Anda.",
}

// Generate writes the panduan PDF for the product to outputPath and
// returns the site-relative path of the file.
func Generate(p *catalog.Product, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Panduan Pembelian - "+p.Judul, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 14, "Panduan Pembelian", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 10, p.Judul, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	for i, step := range steps {
		pdf.CellFormat(8, 8, fmt.Sprintf("%d.", i+1), "", 0, "R", false, 0, "")
		pdf.MultiCell(0, 8, " "+step, "", "L", false)
	}

	// Payment QR, only when the product has a payment page.
	if p.Detail != nil && p.Detail.PaymentGateway != "" {
		qr, err := qrcode.Encode(p.Detail.PaymentGateway, qrcode.Medium, 512)
		if err != nil {
			return "", fmt.Errorf("encode payment QR: %w", err)
		}

		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("payment-qr", opts, bytes.NewReader(qr))

		pageWidth, _ := pdf.GetPageSize()
		x := (pageWidth - qrSizeMM) / 2
		pdf.Ln(8)
		pdf.ImageOptions("payment-qr", x, pdf.GetY(), qrSizeMM, qrSizeMM, false, opts, 0, "")
		pdf.SetY(pdf.GetY() + qrSizeMM + 4)

		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, "Scan untuk membuka halaman pembayaran", "", 1, "C", false, 0, "")
	}

	name := p.ID + "-panduan.pdf"
	outputPath := filepath.Join(outputDir, name)
	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}

	return "/uploads/panduan/" + name, nil
}
