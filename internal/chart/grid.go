package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/KaramelBytes/surveyloom/internal/utils"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Panel is one tile of a figure.
type Panel interface {
	Render(width, height int) (image.Image, error)
}

// Figure lays panels out in a grid under a title.
type Figure struct {
	Title       string
	Columns     int
	PanelWidth  int
	PanelHeight int
	Panels      []Panel
}

const titleBand = 40

// Render composes every panel into a single PNG.
func (f Figure) Render() ([]byte, error) {
	if len(f.Panels) == 0 {
		return nil, fmt.Errorf("figure %q has no panels", f.Title)
	}
	cols := f.Columns
	if cols <= 0 {
		cols = 1
	}
	pw, ph := f.PanelWidth, f.PanelHeight
	if pw <= 0 {
		pw = 800
	}
	if ph <= 0 {
		ph = 800
	}
	rows := (len(f.Panels) + cols - 1) / cols

	canvas := image.NewRGBA(image.Rect(0, 0, cols*pw, titleBand+rows*ph))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	for i, p := range f.Panels {
		img, err := p.Render(pw, ph)
		if err != nil {
			return nil, err
		}
		x, y := (i%cols)*pw, titleBand+(i/cols)*ph
		draw.Draw(canvas, image.Rect(x, y, x+pw, y+ph), img, img.Bounds().Min, draw.Over)
	}
	drawCentered(canvas, f.Title, canvas.Bounds().Dx()/2, titleBand/2+5)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Save renders the figure and writes it atomically to path.
func (f Figure) Save(path string) error {
	b, err := f.Render()
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

func drawCentered(dst draw.Image, text string, cx, baseline int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	w := d.MeasureString(text).Ceil()
	d.Dot = fixed.P(cx-w/2, baseline)
	d.DrawString(text)
}

// placeholder is a blank tile with a title and a centered message.
func placeholder(width, height int, title, msg string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	drawCentered(img, title, width/2, 24)
	drawCentered(img, msg, width/2, height/2)
	return img
}
