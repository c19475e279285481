// Package arena assembles the scoreboard displays of both hoops and drives
// their clocks.
package arena

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arenaclock/go/internal/clock"
	"github.com/mcdev12/arenaclock/go/internal/display"
	"github.com/mcdev12/arenaclock/go/internal/scheduler"
)

// Scene coordinates of the shot clock assembly.
const (
	BackboardX      = 10.5
	ClockY          = 10.0
	ClockInset      = 0.7
	ClockDepth      = 0.3
	SideCopyZ       = 1.2
	SideCopyScale   = 0.5
	MaxSideDisplays = 2
)

// Scheduler runs a callback at a fixed interval.
type Scheduler interface {
	Every(ctx context.Context, interval time.Duration, fn func()) scheduler.Cancel
}

// Hoop is the clock display assembly of one side.
type Hoop struct {
	Side       clock.Side
	Primary    *display.Surface
	SideCopies []*display.Surface
}

// Surfaces returns the primary surface followed by the side copies.
func (h Hoop) Surfaces() []*display.Surface {
	return append([]*display.Surface{h.Primary}, h.SideCopies...)
}

type Options struct {
	SideDisplays int
	TickInterval time.Duration
	Canvases     display.CanvasFactory
	Textures     display.TextureFactory
}

// Arena holds both hoops.
type Arena struct {
	engine   *clock.Engine
	hoops    []Hoop
	interval time.Duration
}

// Build creates the surfaces of both hoops, binds them to the engine and
// registers them for lookup.
func Build(engine *clock.Engine, registry *display.Registry, opts Options) (*Arena, error) {
	if opts.SideDisplays < 0 || opts.SideDisplays > MaxSideDisplays {
		return nil, fmt.Errorf("side displays must be between 0 and %d, got %d", MaxSideDisplays, opts.SideDisplays)
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = clock.TickInterval
	}
	if opts.Canvases == nil {
		opts.Canvases = display.RasterFactory{}
	}
	if opts.Textures == nil {
		opts.Textures = display.SnapshotTextures{}
	}

	fontSize := engine.Style().FontSize
	a := &Arena{engine: engine, interval: opts.TickInterval}

	for _, side := range clock.Sides {
		newSurface := func(name string, p display.Placement) (*display.Surface, error) {
			canvas, err := opts.Canvases.NewCanvas(fontSize)
			if err != nil {
				return nil, fmt.Errorf("create %s %s canvas: %w", side, name, err)
			}
			return display.NewSurface(name, p, canvas, opts.Textures), nil
		}

		primary, err := newSurface("primary", PrimaryPlacement(side))
		if err != nil {
			return nil, err
		}
		hoop := Hoop{Side: side, Primary: primary}
		for i := 0; i < opts.SideDisplays; i++ {
			copySurface, err := newSurface(fmt.Sprintf("side-%d", i+1), SidePlacement(side, i))
			if err != nil {
				return nil, err
			}
			hoop.SideCopies = append(hoop.SideCopies, copySurface)
		}

		if err := engine.Bind(side, hoop.Surfaces()...); err != nil {
			return nil, fmt.Errorf("bind %s hoop: %w", side, err)
		}
		for _, s := range hoop.Surfaces() {
			registry.Register(side.String(), s)
		}
		a.hoops = append(a.hoops, hoop)

		log.Info().
			Str("side", side.String()).
			Str("primary_id", primary.ID.String()).
			Int("side_displays", len(hoop.SideCopies)).
			Msg("hoop clock assembled")
	}

	return a, nil
}

func (a *Arena) Hoops() []Hoop {
	return a.hoops
}

// Start schedules one tick loop per side. The loops are independent and may
// drift apart. The returned Cancel stops both.
func (a *Arena) Start(ctx context.Context, sched Scheduler) scheduler.Cancel {
	cancels := make([]scheduler.Cancel, 0, len(a.hoops))
	for _, h := range a.hoops {
		side := h.Side
		cancels = append(cancels, sched.Every(ctx, a.interval, func() {
			a.engine.Tick(ctx, side)
		}))
		log.Info().Str("side", side.String()).Dur("interval", a.interval).Msg("clock started")
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// PrimaryPlacement is the main number display in front of the shot clock box.
func PrimaryPlacement(side clock.Side) display.Placement {
	dir := direction(side)
	x := dir*BackboardX - dir*ClockInset + dir*ClockDepth
	return display.Placement{
		Scale:   1,
		Offset:  display.Vec3{X: x, Y: ClockY},
		RotateY: dir * math.Pi / 2,
	}
}

// SidePlacement is a smaller copy on the side faces of the shot clock box.
func SidePlacement(side clock.Side, index int) display.Placement {
	dir := direction(side)
	z := SideCopyZ
	rot := 0.0
	if index%2 == 1 {
		z = -SideCopyZ
		rot = math.Pi
	}
	return display.Placement{
		Scale:   SideCopyScale,
		Offset:  display.Vec3{X: dir*BackboardX - dir*ClockInset, Y: ClockY, Z: z},
		RotateY: rot,
	}
}

func direction(side clock.Side) float64 {
	if side == clock.Left {
		return 1
	}
	return -1
}
