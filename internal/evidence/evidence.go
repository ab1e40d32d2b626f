// Package evidence turns raw text detections into the grounding manifest that
// is appended to the vision-LLM prompt. The manifest is the only mechanism
// keeping the model from inventing text content: it is instructed to reuse
// these IDs and coordinates instead of re-reading the image.
package evidence

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/trademkt/image-audit/internal/ocr"
)

// ManifestHeader precedes the evidence lines in the enriched prompt
const ManifestHeader = "EVIDÊNCIAS DE TEXTO DETECTADAS (USE APENAS ESTES DADOS):"

// Normalized is a detection with its polygon reduced to a
// percentage-of-image center coordinate.
type Normalized struct {
	Text       string
	Confidence float64
	XPct       float64
	YPct       float64
}

// Normalize computes the center of each detection polygon as the midpoint of
// its diagonal corners (first and third vertices) and expresses it as a
// fraction of the image dimensions, rounded to 4 decimals.
func Normalize(detections []ocr.Detection, width, height int) []Normalized {
	out := make([]Normalized, 0, len(detections))
	for _, det := range detections {
		cx := (det.Polygon[0].X + det.Polygon[2].X) / 2.0
		cy := (det.Polygon[0].Y + det.Polygon[2].Y) / 2.0
		out = append(out, Normalized{
			Text:       det.Text,
			Confidence: det.Confidence,
			XPct:       round4(cx / float64(width)),
			YPct:       round4(cy / float64(height)),
		})
	}
	return out
}

// BuildManifest renders the ordered, 1-indexed evidence manifest
func BuildManifest(normalized []Normalized) string {
	var b strings.Builder
	b.WriteString(ManifestHeader)
	b.WriteString("\n")
	for i, n := range normalized {
		fmt.Fprintf(&b, "[ID: %d] TEXTO: '%s' | x_pct: %s | y_pct: %s\n",
			i+1, n.Text, formatPct(n.XPct), formatPct(n.YPct))
	}
	return b.String()
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
