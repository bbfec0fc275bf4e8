package ogimage

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "pendek", truncate("pendek", 34))

	long := "Template Laporan Keuangan Bulanan Untuk Usaha Kecil"
	got := truncate(long, 34)
	assert.Equal(t, 34, utf8.RuneCountInString(got))
	assert.Equal(t, "...", got[len(got)-3:])

	// Multi-byte titles must not be cut mid-rune.
	got = truncate("템플릿 가계부 Template Keuangan Keluarga Anda 완벽한", 20)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 20, utf8.RuneCountInString(got))
}

func TestPriceLabel(t *testing.T) {
	assert.Equal(t, "Gratis • Template Google Sheets", priceLabel(0))
	assert.Equal(t, "Rp 99000 • Template Google Sheets", priceLabel(99000))
}
