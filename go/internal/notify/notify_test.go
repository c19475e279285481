package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiDeliversToAll(t *testing.T) {
	var got []string
	record := func(name string) Notifier {
		return Func(func(_ context.Context, u TextureUpdate) error {
			got = append(got, name+":"+u.GameClockText)
			return nil
		})
	}

	m := Multi{record("a"), nil, record("b")}
	err := m.TextureChanged(context.Background(), TextureUpdate{SurfaceID: uuid.New(), GameClockText: "12:00"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a:12:00", "b:12:00"}, got)
}

func TestMultiJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	calls := 0

	m := Multi{
		Func(func(context.Context, TextureUpdate) error { calls++; return errA }),
		Func(func(context.Context, TextureUpdate) error { calls++; return nil }),
		Func(func(context.Context, TextureUpdate) error { calls++; return errB }),
	}
	err := m.TextureChanged(context.Background(), TextureUpdate{})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestNopAndLog(t *testing.T) {
	assert.NoError(t, Nop{}.TextureChanged(context.Background(), TextureUpdate{}))
	assert.NoError(t, Log{}.TextureChanged(context.Background(), TextureUpdate{Side: "left"}))
}

func TestQueueDoesNotBlockOnSlowSink(t *testing.T) {
	release := make(chan struct{})
	delivered := make(chan uint64, 8)
	slow := Func(func(_ context.Context, u TextureUpdate) error {
		<-release
		delivered <- u.Version
		return nil
	})

	q := NewQueue(slow, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	start := time.Now()
	for v := uint64(1); v <= 4; v++ {
		require.NoError(t, q.TextureChanged(ctx, TextureUpdate{Version: v}))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(release)
	for v := uint64(1); v <= 4; v++ {
		select {
		case got := <-delivered:
			assert.Equal(t, v, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("update %d not delivered", v)
		}
	}
}

func TestQueueReportsFull(t *testing.T) {
	q := NewQueue(Nop{}, 1)

	require.NoError(t, q.TextureChanged(context.Background(), TextureUpdate{}))
	assert.ErrorIs(t, q.TextureChanged(context.Background(), TextureUpdate{}), ErrQueueFull)
	assert.Equal(t, 1, q.Len())
}

func TestQueueRunStopsOnCancel(t *testing.T) {
	q := NewQueue(Nop{}, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
