package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// DefaultQueueSize holds several ticks' worth of updates for both hoops.
const DefaultQueueSize = 256

var ErrQueueFull = errors.New("notification queue full")

// Queue hands updates to a worker goroutine so a slow sink never holds up
// the caller. Updates are delivered in the order they were queued.
type Queue struct {
	next    Notifier
	updates chan TextureUpdate
}

var _ Notifier = (*Queue)(nil)

func NewQueue(next Notifier, size int) *Queue {
	if next == nil {
		next = Nop{}
	}
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		next:    next,
		updates: make(chan TextureUpdate, size),
	}
}

// TextureChanged queues u without blocking. It returns ErrQueueFull when the
// worker has fallen a full queue behind; the update is dropped.
func (q *Queue) TextureChanged(_ context.Context, u TextureUpdate) error {
	select {
	case q.updates <- u:
		return nil
	default:
		return ErrQueueFull
	}
}

// Len is the number of updates waiting for delivery.
func (q *Queue) Len() int {
	return len(q.updates)
}

// Run delivers queued updates until ctx is done.
func (q *Queue) Run(ctx context.Context) {
	log.Info().Int("capacity", cap(q.updates)).Msg("notification worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Int("pending", len(q.updates)).Msg("notification worker shutting down")
			return
		case u := <-q.updates:
			if err := q.next.TextureChanged(ctx, u); err != nil {
				log.Warn().
					Err(err).
					Str("side", u.Side).
					Str("surface_id", u.SurfaceID.String()).
					Uint64("version", u.Version).
					Msg("failed to deliver texture update")
			}
		}
	}
}
