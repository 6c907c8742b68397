// Package chart renders survey statistics to PNG using go-chart.
package chart

import (
	"fmt"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Marker is the shape used for a series' points.
type Marker string

const (
	MarkerCircle   Marker = "circle"
	MarkerSquare   Marker = "square"
	MarkerTriangle Marker = "triangle"
)

// ParseMarker accepts marker names and the matplotlib shorthands o, s and ^.
func ParseMarker(s string) (Marker, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "circle", "o":
		return MarkerCircle, nil
	case "square", "s":
		return MarkerSquare, nil
	case "triangle", "^":
		return MarkerTriangle, nil
	default:
		return "", fmt.Errorf("unsupported marker: %s (use circle|square|triangle)", s)
	}
}

// Color parses "#RRGGBB" or "RRGGBB". Invalid input yields gray.
func Color(hex string) drawing.Color {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 && len(h) != 3 {
		return gochart.ColorAlternateGray
	}
	for _, c := range h {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return gochart.ColorAlternateGray
		}
	}
	return drawing.ColorFromHex(h)
}

var (
	colorQuadrant = drawing.Color{R: 128, G: 128, B: 128, A: 128}
	colorCaption  = drawing.Color{R: 60, G: 60, B: 60, A: 140}
	colorGrid     = drawing.Color{R: 220, G: 220, B: 220, A: 255}
	colorEdge     = drawing.ColorBlack
)

// TruncateLabel shortens s to at most max runes, ending in "..." when cut.
func TruncateLabel(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func setFont(r gochart.Renderer, s gochart.Style) {
	if s.Font != nil {
		r.SetFont(s.Font)
		return
	}
	if f, err := gochart.GetDefaultFont(); err == nil {
		r.SetFont(f)
	}
}
