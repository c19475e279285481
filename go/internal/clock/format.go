package clock

import (
	"fmt"
	"strconv"
)

// GameClockText formats the game clock. Under a minute it shows seconds with a
// tenths digit; the counter only holds whole seconds, so the tenths digit is
// always 0.
func GameClockText(seconds int) string {
	if seconds < 60 {
		return strconv.FormatFloat(float64(seconds%60), 'f', 1, 64)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ShotClockText formats the shot clock as at least two digits.
func ShotClockText(seconds int) string {
	return fmt.Sprintf("%02d", seconds)
}
