package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/KaramelBytes/surveyloom/internal/survey"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Series is one category's aggregated points with its display parameters.
type Series struct {
	Name   string
	Color  string
	Marker Marker
	Stats  []survey.CategoryStat
}

// CompassOptions controls the belief-compass layout.
type CompassOptions struct {
	// Invert maps the second axis as Invert - mean so "agree" plots low.
	Invert float64
	// Min and Max bound both axes.
	Min, Max float64
	// XSplit and YSplit place the dashed quadrant lines.
	XSplit, YSplit float64
	XLabel, YLabel string
	// SizeScale multiplies a point's response count into its marker area.
	SizeScale float64
	// LabelPoints annotates each point with its (truncated) category label.
	LabelPoints bool
	// SizeLegend draws reference markers for 5, 15 and 30 responses.
	SizeLegend bool
	// SeriesLegend draws a legend naming each series.
	SeriesLegend bool
}

// DefaultCompassOptions returns the layout for a 1-5 agreement scale.
func DefaultCompassOptions() CompassOptions {
	return CompassOptions{
		Invert:      5,
		Min:         0.5,
		Max:         5.5,
		XSplit:      3,
		YSplit:      2.5,
		XLabel:      "AGI Likely Within 10 Years →",
		YLabel:      "← Prioritize AI Safety (Inverted)",
		SizeScale:   20,
		LabelPoints: true,
		SizeLegend:  true,
	}
}

// QuadrantCaptions are drawn clockwise from the top-left corner.
var QuadrantCaptions = [4]string{
	"Safety First / AGI Skeptics",
	"Safety First / AGI Believers",
	"Move Fast / AGI Believers",
	"Move Fast / AGI Skeptics",
}

// CompassPanel is a scatter of category means on the two belief axes.
type CompassPanel struct {
	Title  string
	Series []Series
	Opt    CompassOptions
}

// Point returns the chart position of a stat.
func (o CompassOptions) Point(s survey.CategoryStat) (x, y float64) {
	return s.Axis1Mean, o.Invert - s.Axis2Mean
}

// Radius returns the marker radius in pixels for a response count.
func (o CompassOptions) Radius(count int) float64 {
	scale := o.SizeScale
	if scale <= 0 {
		scale = 20
	}
	r := math.Sqrt(float64(count)*scale) / 1.6
	if r < 3 {
		r = 3
	}
	return r
}

func (p CompassPanel) empty() bool {
	for _, s := range p.Series {
		if len(s.Stats) > 0 {
			return false
		}
	}
	return true
}

// Chart builds the go-chart definition for the panel.
func (p CompassPanel) Chart(width, height int) gochart.Chart {
	opt := p.Opt
	var ticks []gochart.Tick
	for v := math.Ceil(opt.Min); v <= opt.Max; v++ {
		ticks = append(ticks, gochart.Tick{Value: v, Label: fmt.Sprintf("%.0f", v)})
	}
	axisRange := &gochart.ContinuousRange{Min: opt.Min, Max: opt.Max}
	grid := gochart.Style{StrokeColor: colorGrid, StrokeWidth: 1}

	var series []gochart.Series
	for _, s := range p.Series {
		if len(s.Stats) == 0 {
			continue
		}
		series = append(series, markerSeries{
			name:   s.Name,
			color:  Color(s.Color),
			marker: s.Marker,
			stats:  s.Stats,
			opt:    opt,
		})
	}
	if len(series) == 0 {
		// go-chart refuses to render without a visible series; this one has
		// a near-transparent stroke and no dots.
		series = append(series, gochart.ContinuousSeries{
			Style:   gochart.Style{StrokeColor: drawing.Color{A: 1}, StrokeWidth: 1},
			XValues: []float64{opt.Min, opt.Max},
			YValues: []float64{opt.Min, opt.Max},
		})
	}

	c := gochart.Chart{
		Title:      p.Title,
		TitleStyle: gochart.Style{FontSize: 12},
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:           opt.XLabel,
			Range:          axisRange,
			Ticks:          ticks,
			GridMajorStyle: grid,
		},
		YAxis: gochart.YAxis{
			Name:           opt.YLabel,
			Range:          axisRange,
			Ticks:          ticks,
			GridMajorStyle: grid,
		},
		Series: series,
	}
	c.Elements = []gochart.Renderable{p.overlay()}
	if opt.SeriesLegend && !p.empty() {
		c.Elements = append(c.Elements, gochart.Legend(&c))
	}
	return c
}

// Render draws the panel to an image. A panel without any point renders a
// "No data" tile.
func (p CompassPanel) Render(width, height int) (image.Image, error) {
	if p.empty() {
		return placeholder(width, height, p.Title, "No data"), nil
	}
	c := p.Chart(width, height)
	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render compass %q: %w", p.Title, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode compass %q: %w", p.Title, err)
	}
	return img, nil
}

// overlay draws quadrant lines, captions and the size legend. The axes have
// a fixed range, so positions are computed directly from the canvas box.
func (p CompassPanel) overlay() gochart.Renderable {
	opt := p.Opt
	return func(r gochart.Renderer, box gochart.Box, defaults gochart.Style) {
		span := opt.Max - opt.Min
		px := func(x float64) int { return box.Left + int((x-opt.Min)/span*float64(box.Width())) }
		py := func(y float64) int { return box.Bottom - int((y-opt.Min)/span*float64(box.Height())) }

		r.SetStrokeColor(colorQuadrant)
		r.SetStrokeWidth(1)
		r.SetStrokeDashArray([]float64{5, 5})
		r.MoveTo(px(opt.XSplit), box.Top)
		r.LineTo(px(opt.XSplit), box.Bottom)
		r.Stroke()
		r.MoveTo(box.Left, py(opt.YSplit))
		r.LineTo(box.Right, py(opt.YSplit))
		r.Stroke()
		r.SetStrokeDashArray(nil)

		setFont(r, defaults)
		r.SetFontSize(9)
		r.SetFontColor(colorCaption)
		pad := 6
		for i, caption := range QuadrantCaptions {
			tb := r.MeasureText(caption)
			x, y := box.Left+pad, box.Top+pad+tb.Height()
			if i == 1 || i == 2 {
				x = box.Right - pad - tb.Width()
			}
			if i >= 2 {
				y = box.Bottom - pad
			}
			if i == 0 && opt.SizeLegend {
				y += 70
			}
			r.Text(caption, x, y)
		}

		if p.empty() {
			msg := "No data"
			r.SetFontSize(14)
			r.SetFontColor(drawing.ColorBlack)
			tb := r.MeasureText(msg)
			r.Text(msg, box.Left+(box.Width()-tb.Width())/2, box.Top+(box.Height()+tb.Height())/2)
			return
		}
		if opt.SizeLegend {
			p.drawSizeLegend(r, box)
		}
	}
}

func (p CompassPanel) drawSizeLegend(r gochart.Renderer, box gochart.Box) {
	col := gochart.ColorAlternateGray
	if len(p.Series) > 0 {
		col = Color(p.Series[0].Color)
	}
	r.SetFontSize(8)
	r.SetFontColor(drawing.ColorBlack)
	y := box.Top + 14
	for _, n := range []int{5, 15, 30} {
		rad := p.Opt.Radius(n)
		x := box.Left + 18
		r.SetFillColor(col.WithAlpha(150))
		r.SetStrokeColor(colorEdge)
		r.SetStrokeWidth(1)
		r.Circle(math.Min(rad, 9), x, y)
		r.FillStroke()
		r.Text(fmt.Sprintf("%d responses", n), x+14, y+4)
		y += 20
	}
}

// markerSeries draws sized markers of one shape, optionally labelled.
type markerSeries struct {
	name   string
	color  drawing.Color
	marker Marker
	stats  []survey.CategoryStat
	opt    CompassOptions
}

func (m markerSeries) GetName() string { return m.name }
func (m markerSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (m markerSeries) Len() int { return len(m.stats) }
func (m markerSeries) GetValues(i int) (float64, float64) { return m.opt.Point(m.stats[i]) }

func (m markerSeries) GetStyle() gochart.Style {
	return gochart.Style{
		StrokeColor: m.color,
		StrokeWidth: 4,
		FillColor:   m.color.WithAlpha(150),
		DotColor:    m.color,
	}
}

func (m markerSeries) Validate() error {
	if len(m.stats) == 0 {
		return fmt.Errorf("series %q has no points", m.name)
	}
	return nil
}

func (m markerSeries) Render(r gochart.Renderer, box gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	for _, st := range m.stats {
		vx, vy := m.opt.Point(st)
		x := box.Left + xrange.Translate(vx)
		y := box.Bottom - yrange.Translate(vy)
		rad := m.opt.Radius(st.Count)

		r.SetFillColor(m.color.WithAlpha(150))
		r.SetStrokeColor(colorEdge)
		r.SetStrokeWidth(1.5)
		drawMarker(r, m.marker, x, y, rad)
		r.FillStroke()
	}
	if !m.opt.LabelPoints {
		return
	}
	setFont(r, defaults)
	r.SetFontSize(8)
	r.SetFontColor(drawing.ColorBlack)
	for _, st := range m.stats {
		vx, vy := m.opt.Point(st)
		x := box.Left + xrange.Translate(vx)
		y := box.Bottom - yrange.Translate(vy)
		label := TruncateLabel(st.Label, 20)
		tb := r.MeasureText(label)
		r.Text(label, x-tb.Width()/2, y-int(m.opt.Radius(st.Count))-3)
	}
}

func drawMarker(r gochart.Renderer, m Marker, x, y int, rad float64) {
	d := int(math.Round(rad))
	switch m {
	case MarkerSquare:
		r.MoveTo(x-d, y-d)
		r.LineTo(x+d, y-d)
		r.LineTo(x+d, y+d)
		r.LineTo(x-d, y+d)
		r.Close()
	case MarkerTriangle:
		h := int(math.Round(rad * 1.15))
		r.MoveTo(x, y-h)
		r.LineTo(x+h, y+d)
		r.LineTo(x-h, y+d)
		r.Close()
	default:
		r.Circle(rad, x, y)
	}
}
