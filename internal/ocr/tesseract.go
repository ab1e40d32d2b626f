package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine detects text with a local Tesseract installation. A fresh
// gosseract client is built per call; the underlying API is not safe to share
// across goroutines.
type TesseractEngine struct {
	languages []string
}

// NewTesseractEngine creates a Tesseract-backed detection engine. Languages
// are Tesseract trained-data names (e.g. "por", "eng").
func NewTesseractEngine(languages []string) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{"por", "eng"}
	}
	return &TesseractEngine{languages: languages}
}

// Name implements Engine
func (t *TesseractEngine) Name() string {
	return "tesseract"
}

// Recognize implements Engine. Word-level boxes are reported as 4-point
// polygons clockwise from the top-left corner, confidence scaled to [0,1].
func (t *TesseractEngine) Recognize(ctx context.Context, img *image.Gray) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return nil, fmt.Errorf("failed to set OCR languages: %w", err)
	}

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to load image into OCR engine: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to get bounding boxes: %w", err)
	}

	detections := make([]Detection, 0, len(boxes))
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		r := b.Box
		detections = append(detections, Detection{
			Text: b.Word,
			Polygon: [4]Point{
				{X: float64(r.Min.X), Y: float64(r.Min.Y)},
				{X: float64(r.Max.X), Y: float64(r.Min.Y)},
				{X: float64(r.Max.X), Y: float64(r.Max.Y)},
				{X: float64(r.Min.X), Y: float64(r.Max.Y)},
			},
			Confidence: b.Confidence / 100,
		})
	}

	return detections, nil
}
