package clock

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// QuarterLength is the game clock start value in seconds (12 minutes).
	QuarterLength = 720

	// ShotClockLength is the shot clock start value in seconds.
	ShotClockLength = 24

	// TickInterval is how often each side's clock ticks.
	TickInterval = time.Second
)

var ErrUnknownSide = errors.New("unknown clock side")

// Side identifies one hoop's clock assembly.
type Side int

const (
	Left Side = iota
	Right
)

// Sides lists both sides in display order.
var Sides = []Side{Left, Right}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

func (s Side) Valid() bool {
	return s == Left || s == Right
}

func (s Side) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSide, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	parsed, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSide accepts "left" or "right" in any case.
func ParseSide(v string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSide, v)
	}
}

// Pair is the game clock and shot clock of one side.
type Pair struct {
	GameClockSeconds int `json:"game_clock_seconds"`
	ShotClockSeconds int `json:"shot_clock_seconds"`
}

// NewPair returns a pair at the start of a quarter.
func NewPair() Pair {
	return Pair{
		GameClockSeconds: QuarterLength,
		ShotClockSeconds: ShotClockLength,
	}
}

// Advance decrements both clocks by one second. A clock that lands on zero
// starts over from its full length.
func (p *Pair) Advance() {
	p.GameClockSeconds--
	p.ShotClockSeconds--

	if p.GameClockSeconds == 0 {
		p.GameClockSeconds = QuarterLength
	}
	if p.ShotClockSeconds == 0 {
		p.ShotClockSeconds = ShotClockLength
	}
}

// Texts formats both clocks for display.
func (p Pair) Texts() (game, shot string) {
	return GameClockText(p.GameClockSeconds), ShotClockText(p.ShotClockSeconds)
}
