package handlers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalAssetPath(t *testing.T) {
	h := NewAssetsHandler(nil, "/srv/public", "/data/uploads")

	tests := []struct {
		name   string
		asset  string
		want   string
		wantOK bool
	}{
		{"empty", "", "", false},
		{"http url", "http://cdn.example.com/a.png", "", false},
		{"https url", "https://cdn.example.com/a.png", "", false},
		{"upload resolves to upload dir", "/uploads/thumb.png", "/data/uploads/thumb.png", true},
		{"nested upload", "/uploads/og/budget.png", "/data/uploads/og/budget.png", true},
		{"bare site asset", "/img/logo.png", "/srv/public/img/logo.png", true},
		{"relative rooted first", "img/logo.png", "/srv/public/img/logo.png", true},
		{"traversal cleaned", "/uploads/../../etc/passwd", "/srv/public/etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := h.localAssetPath(tt.asset)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, filepath.FromSlash(tt.want), got)
			}
		})
	}
}
