package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticPlate draws dark "text" blocks on a light background with a mild
// gradient, roughly what a photographed label looks like.
func syntheticPlate() image.Image {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(180 + y/4)})
		}
	}
	for y := 20; y < 28; y++ {
		for x := 10; x < 50; x++ {
			img.SetGray(x, y, color.Gray{Y: 40})
		}
	}
	return img
}

func TestPreprocessBinarizes(t *testing.T) {
	out := Preprocess(syntheticPlate())

	require.Equal(t, 64, out.Rect.Dx())
	require.Equal(t, 64, out.Rect.Dy())

	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := out.GrayAt(x, y).Y
			if v != 0 && v != 255 {
				t.Fatalf("pixel (%d,%d) = %d, expected 0 or 255", x, y, v)
			}
		}
	}

	// The dark text block must survive binarization as black pixels
	black := 0
	for y := 21; y < 27; y++ {
		for x := 12; x < 48; x++ {
			if out.GrayAt(x, y).Y == 0 {
				black++
			}
		}
	}
	assert.Greater(t, black, 0, "text region should contain black pixels")
}

func TestPreprocessDeterministic(t *testing.T) {
	img := syntheticPlate()

	first := Preprocess(img)
	second := Preprocess(img)

	assert.Equal(t, first.Pix, second.Pix)
}

func TestGrayOfClamps(t *testing.T) {
	assert.Equal(t, uint8(0), grayOf(-10).Y)
	assert.Equal(t, uint8(255), grayOf(300).Y)
	assert.Equal(t, uint8(128), grayOf(127.6).Y)
}

func TestTileLUTIdentityOnEmptyTile(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 8, 8))
	lut := tileLUT(src, 4, 4, 4, 4, claheClipLimit)
	for i := 0; i < 256; i++ {
		require.Equal(t, uint8(i), lut[i])
	}
}
