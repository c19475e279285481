// Package scheduler runs repeating callbacks on a clockwork clock.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is used when a non-positive interval is requested.
const DefaultInterval = time.Second

// Cancel stops a scheduled callback. It is safe to call more than once.
type Cancel func()

// PanicHandler receives a value recovered from a callback.
type PanicHandler func(recovered any)

// FatalOnPanic logs the recovered value and exits the process.
func FatalOnPanic(recovered any) {
	log.Fatal().Str("panic", fmt.Sprint(recovered)).Msg("scheduled callback panicked")
}

// Scheduler starts one ticker loop per Every call. Loops are not synchronized
// with each other and do not correct for drift.
type Scheduler struct {
	clock   clockwork.Clock
	onPanic PanicHandler
	wg      sync.WaitGroup
}

type Option func(*Scheduler)

func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithPanicHandler(h PanicHandler) Option {
	return func(s *Scheduler) {
		if h != nil {
			s.onPanic = h
		}
	}
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:   clockwork.NewRealClock(),
		onPanic: FatalOnPanic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Every calls fn once per interval until the returned Cancel is called or ctx
// is done. A call always finishes before the next tick is taken.
func (s *Scheduler) Every(ctx context.Context, interval time.Duration, fn func()) Cancel {
	if interval <= 0 {
		log.Warn().Dur("interval", interval).Dur("default", DefaultInterval).Msg("invalid interval, using default")
		interval = DefaultInterval
	}

	ticker := s.clock.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() { close(done) })
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.Chan():
				s.run(fn)
			}
		}
	}()

	return cancel
}

// Wait blocks until every loop started by s has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("panic", fmt.Sprint(r)).Msg("recovered panic in scheduled callback")
			s.onPanic(r)
		}
	}()
	fn()
}
