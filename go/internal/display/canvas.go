package display

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Canvas is the 2D drawing context of a surface.
type Canvas interface {
	Size() (width, height int)
	Clear()
	// FillText draws text centred horizontally on x with its middle on y.
	FillText(text string, x, y float64, c color.Color, size float64)
	Image() image.Image
}

// CanvasFactory creates drawable surfaces sized for a font size.
type CanvasFactory interface {
	NewCanvas(fontSize int) (Canvas, error)
}

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// RasterFactory creates RGBA canvases that draw with the Go Regular face.
type RasterFactory struct{}

func (RasterFactory) NewCanvas(fontSize int) (Canvas, error) {
	c, err := NewRasterCanvas(fontSize)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RasterCanvas is an in-memory RGBA bitmap. A canvas is drawn by a single
// goroutine at a time; faces are cached per canvas.
type RasterCanvas struct {
	img   *image.RGBA
	font  *opentype.Font
	faces map[float64]font.Face
}

// NewRasterCanvas returns a transparent fontSize*2 x fontSize canvas.
func NewRasterCanvas(fontSize int) (*RasterCanvas, error) {
	if fontSize <= 0 {
		return nil, fmt.Errorf("invalid font size %d", fontSize)
	}
	f, err := goRegular()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &RasterCanvas{
		img:   image.NewRGBA(image.Rect(0, 0, fontSize*2, fontSize)),
		font:  f,
		faces: make(map[float64]font.Face),
	}, nil
}

func (c *RasterCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *RasterCanvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (c *RasterCanvas) FillText(text string, x, y float64, col color.Color, size float64) {
	face, err := c.face(size)
	if err != nil {
		log.Error().Err(err).Float64("size", size).Msg("failed to load face, text skipped")
		return
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
	}
	width := d.MeasureString(text)
	m := face.Metrics()
	d.Dot = fixed.Point26_6{
		X: toFixed(x) - width/2,
		Y: toFixed(y) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(text)
}

func (c *RasterCanvas) Image() image.Image {
	return c.img
}

func (c *RasterCanvas) face(size float64) (font.Face, error) {
	if face, ok := c.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	c.faces[size] = face
	return face, nil
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
