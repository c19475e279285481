package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameClockText(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{720, "12:00"},
		{719, "11:59"},
		{600, "10:00"},
		{65, "1:05"},
		{60, "1:00"},
		{59, "59.0"},
		{10, "10.0"},
		{5, "5.0"},
		{1, "1.0"},
		{0, "0.0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GameClockText(tt.seconds), "seconds=%d", tt.seconds)
	}
}

func TestShotClockText(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{24, "24"},
		{10, "10"},
		{9, "09"},
		{7, "07"},
		{1, "01"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ShotClockText(tt.seconds), "seconds=%d", tt.seconds)
	}
}
