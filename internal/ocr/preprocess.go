package ocr

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

const (
	claheClipLimit = 2.0
	claheTileGrid  = 8
	threshWindow   = 11
	threshOffset   = 2.0
)

// Preprocess converts the image to grayscale, applies contrast-limited
// adaptive histogram equalization, and binarizes it with an adaptive
// Gaussian threshold. The fixed parameters are tuned for shelf photos and
// floor-plan scans with small printed codes.
func Preprocess(img image.Image) *image.Gray {
	gray := toGray(img)
	enhanced := equalizeAdaptive(gray, claheClipLimit, claheTileGrid)
	return thresholdAdaptive(enhanced, threshWindow, threshOffset)
}

func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(gray, gray.Bounds(), img, bounds.Min, xdraw.Src)
	return gray
}

// equalizeAdaptive is a CLAHE pass: the image is split into a grid of tiles,
// each tile gets a clip-limited histogram equalization mapping, and every
// pixel is remapped by bilinear interpolation between the mappings of the
// four nearest tile centers.
func equalizeAdaptive(src *image.Gray, clipLimit float64, grid int) *image.Gray {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	if w == 0 || h == 0 {
		return src
	}

	tileW := (w + grid - 1) / grid
	tileH := (h + grid - 1) / grid

	// Per-tile lookup tables.
	luts := make([][256]uint8, grid*grid)
	for ty := 0; ty < grid; ty++ {
		for tx := 0; tx < grid; tx++ {
			x0 := tx * tileW
			y0 := ty * tileH
			x1 := min(x0+tileW, w)
			y1 := min(y0+tileH, h)
			luts[ty*grid+tx] = tileLUT(src, x0, y0, x1, y1, clipLimit)
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		// Fractional tile-center position for interpolation.
		fy := (float64(y)-float64(tileH)/2 + 0.5) / float64(tileH)
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := clampTile(ty0+1, grid)
		ty0 = clampTile(ty0, grid)

		for x := 0; x < w; x++ {
			fx := (float64(x)-float64(tileW)/2 + 0.5) / float64(tileW)
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := clampTile(tx0+1, grid)
			tx0c := clampTile(tx0, grid)

			v := src.GrayAt(x, y).Y
			v00 := float64(luts[ty0*grid+tx0c][v])
			v01 := float64(luts[ty0*grid+tx1][v])
			v10 := float64(luts[ty1*grid+tx0c][v])
			v11 := float64(luts[ty1*grid+tx1][v])

			top := v00*(1-wx) + v01*wx
			bottom := v10*(1-wx) + v11*wx
			dst.SetGray(x, y, grayOf(top*(1-wy)+bottom*wy))
		}
	}
	return dst
}

// tileLUT builds the clip-limited equalization mapping for one tile
func tileLUT(src *image.Gray, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	total := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[src.GrayAt(x, y).Y]++
			total++
		}
	}

	var lut [256]uint8
	if total == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	// Clip the histogram and redistribute the excess evenly.
	limit := int(clipLimit * float64(total) / 256)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i, c := range hist {
		if c > limit {
			excess += c - limit
			hist[i] = limit
		}
	}
	share := excess / 256
	rem := excess % 256
	for i := range hist {
		hist[i] += share
		if i < rem {
			hist[i]++
		}
	}

	cdf := 0
	for i, c := range hist {
		cdf += c
		lut[i] = grayOf(float64(cdf) * 255 / float64(total)).Y
	}
	return lut
}

// thresholdAdaptive binarizes the image against a per-pixel threshold: the
// Gaussian-weighted neighborhood mean minus a fixed offset. Pixels above the
// local threshold become white, the rest black.
func thresholdAdaptive(src *image.Gray, window int, offset float64) *image.Gray {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	mean := gaussianBlur(src, window)

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if float64(src.GrayAt(x, y).Y) > mean[y*w+x]-offset {
				dst.SetGray(x, y, grayOf(255))
			} else {
				dst.SetGray(x, y, grayOf(0))
			}
		}
	}
	return dst
}

// gaussianBlur computes a separable Gaussian-weighted mean with clamped
// borders, returning row-major float values.
func gaussianBlur(src *image.Gray, window int) []float64 {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	radius := window / 2

	// Same sigma heuristic OpenCV derives from the kernel size.
	sigma := 0.3*(float64(window-1)*0.5-1) + 0.8
	kernel := make([]float64, window)
	sum := 0.0
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				acc += kernel[k+radius] * float64(src.GrayAt(clampInt(x+k, w), y).Y)
			}
			tmp[y*w+x] = acc
		}
	}

	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				acc += kernel[k+radius] * tmp[clampInt(y+k, h)*w+x]
			}
			out[y*w+x] = acc
		}
	}
	return out
}

func grayOf(v float64) color.Gray {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return color.Gray{Y: uint8(math.Round(v))}
}

func clampInt(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func clampTile(t, grid int) int {
	if t < 0 {
		return 0
	}
	if t >= grid {
		return grid - 1
	}
	return t
}
