package display

import (
	"fmt"
	"image/color"
)

const (
	// FontSize is the surface font size; canvases are FontSize*2 wide and FontSize tall.
	FontSize = 200

	// LineOffset is the vertical distance of each line from the canvas centre.
	LineOffset = 50
)

var (
	// GameClockColor is the amber used for the game clock line (#dc8e50).
	GameClockColor = color.RGBA{R: 0xdc, G: 0x8e, B: 0x50, A: 0xff}

	// ShotClockColor is the red used for the shot clock line (#f44341).
	ShotClockColor = color.RGBA{R: 0xf4, G: 0x43, B: 0x41, A: 0xff}
)

// Style holds the fixed look of a clock frame.
type Style struct {
	FontSize   int
	LineOffset float64
	GameColor  color.RGBA
	ShotColor  color.RGBA
}

// DefaultStyle returns the arena scoreboard style.
func DefaultStyle() Style {
	return Style{
		FontSize:   FontSize,
		LineOffset: LineOffset,
		GameColor:  GameClockColor,
		ShotColor:  ShotClockColor,
	}
}

// TextSize is the glyph size used for both lines.
func (s Style) TextSize() float64 {
	return float64(s.FontSize) / 2
}

// Frame builds the frame for the given texts.
func (s Style) Frame(gameText, shotText string) Frame {
	return Frame{
		GameText: gameText,
		ShotText: shotText,
		Style:    s,
	}
}

// Frame is the canonical content of one tick. Every surface of a display group
// draws the same Frame.
type Frame struct {
	GameText string
	ShotText string
	Style    Style
}

// DrawOn renders the frame onto c: game clock above centre, shot clock below.
func (f Frame) DrawOn(c Canvas) {
	w, h := c.Size()
	x := float64(w) / 2
	mid := float64(h) / 2
	size := f.Style.TextSize()

	c.FillText(f.GameText, x, mid-f.Style.LineOffset, f.Style.GameColor, size)
	c.FillText(f.ShotText, x, mid+f.Style.LineOffset, f.Style.ShotColor, size)
}

func (f Frame) String() string {
	return fmt.Sprintf("%s|%s", f.GameText, f.ShotText)
}
