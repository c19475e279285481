package display

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// Texture is an immutable snapshot of a surface bitmap.
type Texture struct {
	SurfaceID uuid.UUID
	Version   uint64
	Image     *image.RGBA
}

// EncodePNG writes the texture as PNG.
func (t Texture) EncodePNG(w io.Writer) error {
	if t.Image == nil {
		return fmt.Errorf("texture %s has no image", t.SurfaceID)
	}
	if err := png.Encode(w, t.Image); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// TextureFactory turns a canvas bitmap into a texture.
type TextureFactory interface {
	NewTexture(c Canvas) Texture
}

// SnapshotTextures copies the canvas pixels so later draws never alter a
// texture that has already been handed out.
type SnapshotTextures struct{}

func (SnapshotTextures) NewTexture(c Canvas) Texture {
	src := c.Image()
	dst := image.NewRGBA(src.Bounds())
	draw.Copy(dst, dst.Bounds().Min, src, src.Bounds(), draw.Src, nil)
	return Texture{Image: dst}
}
