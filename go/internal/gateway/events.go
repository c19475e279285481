package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/arenaclock/go/internal/notify"
)

// ClockEvent is the envelope sent to scoreboard viewers.
type ClockEvent struct {
	ID        string          `json:"id"`
	Side      string          `json:"side"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type EventType string

const (
	EventTypeTextureUpdated EventType = "TextureUpdated"
	EventTypeClockState     EventType = "ClockState"
)

// TextureUpdatedPayload tells a viewer to refetch a surface texture.
type TextureUpdatedPayload struct {
	SurfaceID   string `json:"surface_id"`
	SurfaceName string `json:"surface_name"`
	Version     uint64 `json:"version"`
	GameClock   string `json:"game_clock"`
	ShotClock   string `json:"shot_clock"`
	TextureURL  string `json:"texture_url"`
}

func newClockEvent(side string, eventType EventType, at time.Time, payload any) (*ClockEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &ClockEvent{
		ID:        uuid.NewString(),
		Side:      side,
		Type:      eventType,
		Timestamp: at,
		Data:      data,
	}, nil
}

// NewTextureUpdatedEvent wraps a texture update for viewers of its side.
func NewTextureUpdatedEvent(u notify.TextureUpdate) (*ClockEvent, error) {
	return newClockEvent(u.Side, EventTypeTextureUpdated, u.At, TextureUpdatedPayload{
		SurfaceID:   u.SurfaceID.String(),
		SurfaceName: u.SurfaceName,
		Version:     u.Version,
		GameClock:   u.GameClockText,
		ShotClock:   u.ShotClockText,
		TextureURL:  TextureURL(u.SurfaceID),
	})
}

// TextureURL is the path a surface's PNG is served from.
func TextureURL(id uuid.UUID) string {
	return fmt.Sprintf("/api/surfaces/%s/texture.png", id)
}
