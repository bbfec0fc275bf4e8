// Package ogimage renders Open Graph cards for template product pages.
package ogimage

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

type ProductInfo struct {
	Judul     string
	Harga     int64
	ImagePath string
}

// Generate creates an OG card from the product image with a title and
// price overlay, written as PNG to outputPath.
func Generate(product ProductInfo, outputPath string) error {
	productImg, err := gg.LoadImage(product.ImagePath)
	if err != nil {
		slog.Error("failed to load product image", "error", err, "path", product.ImagePath)
		return fmt.Errorf("load product image: %w", err)
	}

	// Keep original dimensions; social platforms crop for themselves.
	dc := gg.NewContextForImage(productImg)
	imgWidth := dc.Width()
	imgHeight := dc.Height()

	// Dark bar behind the text, bottom 140px.
	textAreaHeight := 140
	textAreaY := imgHeight - textAreaHeight
	dc.SetRGBA(0, 0, 0, 0.75)
	dc.DrawRectangle(0, float64(textAreaY), float64(imgWidth), float64(textAreaHeight))
	dc.Fill()

	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}

	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 44}))
	title := truncate(product.Judul, 34)
	textY := float64(textAreaY) + 48
	dc.DrawStringAnchored(title, float64(imgWidth)/2, textY, 0.5, 0.5)

	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 26}))
	dc.DrawStringAnchored(priceLabel(product.Harga), float64(imgWidth)/2, textY+46, 0.5, 0.5)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, dc.Image()); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}

	slog.Debug("generated OG image", "judul", product.Judul, "output", outputPath)
	return nil
}

func priceLabel(harga int64) string {
	if harga == 0 {
		return "Gratis • Template Google Sheets"
	}
	return fmt.Sprintf("Rp %d • Template Google Sheets", harga)
}

func truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength-3]) + "..."
}
