package objectstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		name     string
		lojaID   string
		filename string
		want     string
	}{
		{
			name:     "with store prefix",
			lojaID:   "loja-1001",
			filename: "planta_t1.jpg",
			want:     "loja-1001/20250314_092653_planta_t1.jpg",
		},
		{
			name:     "without store prefix",
			lojaID:   "",
			filename: "ativo-pdv-001.jpg",
			want:     "20250314_092653_ativo-pdv-001.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(tt.lojaID, tt.filename, now))
		})
	}
}
