// Package ocr extracts text evidence from audit images. It decodes the image,
// applies a contrast-enhancing binarization pass, and hands the result to a
// text-detection engine that reports words with bounding polygons and
// confidence scores.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	_ "image/jpeg"
	_ "image/png"
)

// ErrImageDecode is returned when the submitted bytes are not a decodable
// image. Not retried here; the job layer owns retries.
var ErrImageDecode = errors.New("image decode failed")

// Point is one vertex of a detection polygon in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detection is one recognized text fragment. The polygon lists the four
// corners clockwise from the top-left, matching the engine's reading order.
type Detection struct {
	Text       string   `json:"texto"`
	Polygon    [4]Point `json:"bbox"`
	Confidence float64  `json:"confidence"`
}

// Result is the output of one detection pass over a full image.
type Result struct {
	Detections []Detection
	Width      int
	Height     int
}

// Engine is the text-detection oracle: a preprocessed image in, detections
// out. Implementations must be safe for concurrent use or construct
// per-request state internally.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img *image.Gray) ([]Detection, error)
}

// Extractor runs the full evidence-extraction pass: decode, preprocess,
// detect.
type Extractor struct {
	engine Engine
	logger *slog.Logger
}

// NewExtractor creates an Extractor backed by the given engine
func NewExtractor(engine Engine, logger *slog.Logger) *Extractor {
	return &Extractor{
		engine: engine,
		logger: logger,
	}
}

// DetectText decodes and preprocesses the image, then runs text detection.
func (e *Extractor) DetectText(ctx context.Context, imageBytes []byte) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	bounds := img.Bounds()
	e.logger.Debug("Image decoded",
		slog.String("format", format),
		slog.Int("width", bounds.Dx()),
		slog.Int("height", bounds.Dy()),
	)

	processed := Preprocess(img)

	detections, err := e.engine.Recognize(ctx, processed)
	if err != nil {
		return nil, fmt.Errorf("text detection failed: %w", err)
	}

	e.logger.Info("Text detection completed",
		slog.String("engine", e.engine.Name()),
		slog.Int("detections", len(detections)),
	)

	return &Result{
		Detections: detections,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}, nil
}
