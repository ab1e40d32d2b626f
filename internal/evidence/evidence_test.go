package evidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trademkt/image-audit/internal/ocr"
)

func det(text string, x0, y0, x1, y1 float64) ocr.Detection {
	return ocr.Detection{
		Text: text,
		Polygon: [4]ocr.Point{
			{X: x0, Y: y0},
			{X: x1, Y: y0},
			{X: x1, Y: y1},
			{X: x0, Y: y1},
		},
		Confidence: 0.9,
	}
}

func TestNormalize(t *testing.T) {
	// Polygon (0,0),(100,0),(100,50),(0,50) in a 200x100 image centers at
	// (50,25) which is a quarter of the way in on both axes.
	got := Normalize([]ocr.Detection{det("C01", 0, 0, 100, 50)}, 200, 100)
	require.Len(t, got, 1)
	assert.Equal(t, 0.25, got[0].XPct)
	assert.Equal(t, 0.25, got[0].YPct)
}

func TestNormalizeRounding(t *testing.T) {
	got := Normalize([]ocr.Detection{det("A1", 0, 0, 1, 1)}, 3, 7)
	require.Len(t, got, 1)
	assert.Equal(t, 0.1667, got[0].XPct)
	assert.Equal(t, 0.0714, got[0].YPct)
}

func TestBuildManifest(t *testing.T) {
	normalized := Normalize([]ocr.Detection{
		det("C01", 0, 0, 100, 50),
		det("G12", 100, 50, 200, 100),
	}, 200, 100)

	manifest := BuildManifest(normalized)

	lines := strings.Split(strings.TrimRight(manifest, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, ManifestHeader, lines[0])
	assert.Equal(t, "[ID: 1] TEXTO: 'C01' | x_pct: 0.25 | y_pct: 0.25", lines[1])
	assert.Equal(t, "[ID: 2] TEXTO: 'G12' | x_pct: 0.75 | y_pct: 0.75", lines[2])
}

func TestBuildManifestEmpty(t *testing.T) {
	manifest := BuildManifest(nil)
	assert.Equal(t, ManifestHeader+"\n", manifest)
}
