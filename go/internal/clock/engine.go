package clock

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arenaclock/go/internal/display"
	"github.com/mcdev12/arenaclock/go/internal/notify"
)

// side is the state owned by one side's tick loop.
type side struct {
	mu    sync.Mutex
	pair  Pair
	group display.Group
}

// Engine owns both clock pairs and the display groups bound to them.
type Engine struct {
	sides    [2]*side
	style    display.Style
	notifier notify.Notifier
	clock    clockwork.Clock
}

type Option func(*Engine)

func WithStyle(s display.Style) Option {
	return func(e *Engine) { e.style = s }
}

func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// NewEngine creates an engine with both sides at the start of a quarter.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		style:    display.DefaultStyle(),
		notifier: notify.Nop{},
		clock:    clockwork.NewRealClock(),
	}
	for _, s := range Sides {
		e.sides[s] = &side{pair: NewPair()}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Style returns the frame style the engine draws with.
func (e *Engine) Style() display.Style {
	return e.style
}

// Bind adds surfaces to a side's display group.
func (e *Engine) Bind(s Side, surfaces ...*display.Surface) error {
	st, err := e.side(s)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.group.Add(surfaces...)
	return nil
}

// Surfaces returns the surfaces bound to a side.
func (e *Engine) Surfaces(s Side) []*display.Surface {
	st, err := e.side(s)
	if err != nil {
		return nil
	}
	return st.group.Surfaces()
}

// Tick redraws every surface of side s with the current clock values and then
// advances both clocks by one second.
func (e *Engine) Tick(ctx context.Context, s Side) {
	st, err := e.side(s)
	if err != nil {
		log.Error().Err(err).Msg("tick on unknown side")
		return
	}

	r := e.render(st)

	log.Debug().
		Str("side", s.String()).
		Str("game_clock", r.game).
		Str("shot_clock", r.shot).
		Int("surfaces", len(r.textures)).
		Int("next_game_seconds", r.after.GameClockSeconds).
		Int("next_shot_seconds", r.after.ShotClockSeconds).
		Msg("clock ticked")

	now := e.clock.Now()
	for i, tex := range r.textures {
		update := notify.TextureUpdate{
			Side:          s.String(),
			SurfaceID:     tex.SurfaceID,
			Version:       tex.Version,
			GameClockText: r.game,
			ShotClockText: r.shot,
			At:            now,
		}
		if i < len(r.surfaces) {
			update.SurfaceName = r.surfaces[i].Name
		}
		if err := e.notifier.TextureChanged(ctx, update); err != nil {
			log.Warn().
				Err(err).
				Str("side", s.String()).
				Str("surface_id", tex.SurfaceID.String()).
				Msg("failed to deliver texture update")
		}
	}
}

type rendered struct {
	game, shot string
	textures   []display.Texture
	surfaces   []*display.Surface
	after      Pair
}

// render draws and advances one side under its lock.
func (e *Engine) render(st *side) rendered {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.group.Clear()
	game, shot := st.pair.Texts()
	st.group.Draw(e.style.Frame(game, shot))
	st.pair.Advance()
	return rendered{
		game:     game,
		shot:     shot,
		textures: st.group.Refresh(),
		surfaces: st.group.Surfaces(),
		after:    st.pair,
	}
}

// Snapshot is a read-only view of one side.
type Snapshot struct {
	Side             Side   `json:"side"`
	GameClockSeconds int    `json:"game_clock_seconds"`
	ShotClockSeconds int    `json:"shot_clock_seconds"`
	GameClockText    string `json:"game_clock"`
	ShotClockText    string `json:"shot_clock"`
}

// Snapshot returns the values the next tick will display.
func (e *Engine) Snapshot(s Side) (Snapshot, error) {
	st, err := e.side(s)
	if err != nil {
		return Snapshot{}, err
	}

	st.mu.Lock()
	p := st.pair
	st.mu.Unlock()

	game, shot := p.Texts()
	return Snapshot{
		Side:             s,
		GameClockSeconds: p.GameClockSeconds,
		ShotClockSeconds: p.ShotClockSeconds,
		GameClockText:    game,
		ShotClockText:    shot,
	}, nil
}

// Pair returns the current pair of side s.
func (e *Engine) Pair(s Side) (Pair, error) {
	st, err := e.side(s)
	if err != nil {
		return Pair{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.pair, nil
}

func (e *Engine) side(s Side) (*side, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSide, int(s))
	}
	return e.sides[s], nil
}
