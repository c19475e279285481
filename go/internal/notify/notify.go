// Package notify carries "texture changed" signals from the clock engine to
// whatever renders the textures.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TextureUpdate announces a new texture for one surface.
type TextureUpdate struct {
	Side          string    `json:"side"`
	SurfaceID     uuid.UUID `json:"surface_id"`
	SurfaceName   string    `json:"surface_name"`
	Version       uint64    `json:"version"`
	GameClockText string    `json:"game_clock"`
	ShotClockText string    `json:"shot_clock"`
	At            time.Time `json:"at"`
}

// Notifier marks a texture as changed for a renderer.
type Notifier interface {
	TextureChanged(ctx context.Context, update TextureUpdate) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, update TextureUpdate) error

func (f Func) TextureChanged(ctx context.Context, update TextureUpdate) error {
	return f(ctx, update)
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) TextureChanged(ctx context.Context, update TextureUpdate) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.TextureChanged(ctx, update); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop ignores updates.
type Nop struct{}

func (Nop) TextureChanged(context.Context, TextureUpdate) error { return nil }

// Log writes a debug line per update.
type Log struct{}

func (Log) TextureChanged(_ context.Context, u TextureUpdate) error {
	log.Debug().
		Str("side", u.Side).
		Str("surface_id", u.SurfaceID.String()).
		Str("surface", u.SurfaceName).
		Uint64("version", u.Version).
		Str("game_clock", u.GameClockText).
		Str("shot_clock", u.ShotClockText).
		Msg("texture changed")
	return nil
}
