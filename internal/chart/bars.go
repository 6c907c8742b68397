package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/KaramelBytes/surveyloom/internal/survey"
	"github.com/samber/lo"
	gochart "github.com/wcharczuk/go-chart/v2"
)

// BarPanel draws answer counts as vertical bars, one per value.
type BarPanel struct {
	Title  string
	Counts []survey.ValueCount
	Color  string
	// LabelWidth caps bar labels in runes; 0 means 14.
	LabelWidth int
	// Histogram packs bars edge to edge, as for a rating distribution.
	Histogram bool
}

// NewHistogramPanel returns a BarPanel for a rating distribution.
func NewHistogramPanel(title string, counts []survey.ValueCount, color string) BarPanel {
	return BarPanel{Title: title, Counts: counts, Color: color, Histogram: true}
}

// Chart builds the go-chart bar chart for the panel.
func (p BarPanel) Chart(width, height int) gochart.BarChart {
	lw := p.LabelWidth
	if lw <= 0 {
		lw = 14
	}
	fill := Color(p.Color)
	maxCount := 1
	bars := make([]gochart.Value, 0, len(p.Counts))
	for _, c := range p.Counts {
		if c.Count > maxCount {
			maxCount = c.Count
		}
		bars = append(bars, gochart.Value{
			Label: TruncateLabel(c.Value, lw),
			Value: float64(c.Count),
			Style: gochart.Style{FillColor: fill, StrokeColor: colorEdge, StrokeWidth: 1},
		})
	}
	n := len(bars)
	if n == 0 {
		n = 1
	}
	spacing := 8
	if p.Histogram {
		spacing = 1
	}
	barWidth := (width-80)/n - spacing
	if barWidth < 4 {
		barWidth = 4
	}
	return gochart.BarChart{
		Title:      p.Title,
		TitleStyle: gochart.Style{FontSize: 12},
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		XAxis:      gochart.Style{FontSize: 7},
		YAxis: gochart.YAxis{
			Name:  "Count",
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.1},
		},
		Bars: bars,
	}
}

// Render draws the panel to an image. A panel without any counted answer
// renders a "No data" tile.
func (p BarPanel) Render(width, height int) (image.Image, error) {
	if lo.SumBy(p.Counts, func(c survey.ValueCount) int { return c.Count }) == 0 {
		return placeholder(width, height, p.Title, "No data"), nil
	}
	c := p.Chart(width, height)
	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bars %q: %w", p.Title, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode bars %q: %w", p.Title, err)
	}
	return img, nil
}
