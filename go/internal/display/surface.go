package display

import (
	"sync"

	"github.com/google/uuid"
)

// Vec3 is a scene-space position.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Placement is the scale and offset the visual layer applies to a surface's
// mesh. The clock never reads it.
type Placement struct {
	Scale   float64 `json:"scale"`
	Offset  Vec3    `json:"offset"`
	RotateY float64 `json:"rotate_y"`
}

// Material mirrors the renderer material a surface texture is bound to.
type Material struct {
	Map         *Texture
	NeedsUpdate bool
}

// Surface is a drawable bitmap bound to one textured mesh.
type Surface struct {
	ID        uuid.UUID
	Name      string
	Placement Placement

	canvas   Canvas
	textures TextureFactory

	mu       sync.RWMutex
	material Material
	version  uint64
}

// NewSurface binds a canvas to a new surface.
func NewSurface(name string, placement Placement, canvas Canvas, textures TextureFactory) *Surface {
	if textures == nil {
		textures = SnapshotTextures{}
	}
	return &Surface{
		ID:        uuid.New(),
		Name:      name,
		Placement: placement,
		canvas:    canvas,
		textures:  textures,
	}
}

// Canvas returns the surface's drawing context.
func (s *Surface) Canvas() Canvas {
	return s.canvas
}

// Clear wipes the bitmap.
func (s *Surface) Clear() {
	s.canvas.Clear()
}

// Draw renders f onto the bitmap.
func (s *Surface) Draw(f Frame) {
	f.DrawOn(s.canvas)
}

// Refresh takes a fresh texture from the bitmap, binds it to the material and
// flags it for upload.
func (s *Surface) Refresh() Texture {
	tex := s.textures.NewTexture(s.canvas)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	tex.SurfaceID = s.ID
	tex.Version = s.version
	s.material.Map = &tex
	s.material.NeedsUpdate = true
	return tex
}

// Current returns the bound texture, if any.
func (s *Surface) Current() (Texture, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.material.Map == nil {
		return Texture{}, false
	}
	return *s.material.Map, true
}

// Consume returns the bound texture when it changed since the last call and
// clears the update flag.
func (s *Surface) Consume() (Texture, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.material.NeedsUpdate || s.material.Map == nil {
		return Texture{}, false
	}
	s.material.NeedsUpdate = false
	return *s.material.Map, true
}

// NeedsUpdate reports whether the material has an unconsumed texture.
func (s *Surface) NeedsUpdate() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.material.NeedsUpdate
}

// Version is the number of textures produced so far.
func (s *Surface) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
