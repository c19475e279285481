package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arenaclock/go/internal/arena"
	"github.com/mcdev12/arenaclock/go/internal/clock"
	"github.com/mcdev12/arenaclock/go/internal/config"
	"github.com/mcdev12/arenaclock/go/internal/display"
	"github.com/mcdev12/arenaclock/go/internal/gateway"
	"github.com/mcdev12/arenaclock/go/internal/notify"
	"github.com/mcdev12/arenaclock/go/internal/notify/natspub"
)

type Services struct {
	Engine   *clock.Engine
	Registry *display.Registry
	Arena    *arena.Arena
	Gateway  *gateway.Service
	NATS     *natspub.Publisher

	// Notifications delivers texture updates off the tick goroutines.
	Notifications *notify.Queue
}

func setupServices(ctx context.Context, cfg config.Config) (*Services, error) {
	// Notifiers → Engine → Arena surfaces → Gateway
	registry := display.NewRegistry()
	notifiers := notify.Multi{notify.Log{}}

	var publisher *natspub.Publisher
	if cfg.NATS.URL != "" {
		natsCfg := natspub.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.StreamName = cfg.NATS.StreamName
		natsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix

		p, err := natspub.New(ctx, natsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to set up NATS publisher: %w", err)
		}
		publisher = p
		notifiers = append(notifiers, p)
		log.Info().Str("nats_url", cfg.NATS.URL).Str("stream", natsCfg.StreamName).Msg("publishing texture updates to NATS")
	}

	// The gateway needs the engine for state reads and the engine needs the
	// gateway for viewer notifications, so the gateway notifier is appended
	// once both exist.
	var viewers notify.Notifier = notify.Nop{}
	notifiers = append(notifiers, notify.Func(func(ctx context.Context, u notify.TextureUpdate) error {
		return viewers.TextureChanged(ctx, u)
	}))

	queue := notify.NewQueue(notifiers, notify.DefaultQueueSize)
	engine := clock.NewEngine(
		clock.WithStyle(cfg.Style()),
		clock.WithNotifier(queue),
	)
	gw := gateway.NewService(gateway.DefaultConfig(), engine, registry)
	viewers = gw.Notifier()

	a, err := arena.Build(engine, registry, arena.Options{
		SideDisplays: cfg.Display.SideDisplays,
		TickInterval: cfg.TickInterval,
	})
	if err != nil {
		if publisher != nil {
			publisher.Close()
		}
		return nil, fmt.Errorf("failed to build arena: %w", err)
	}

	return &Services{
		Engine:   engine,
		Registry: registry,
		Arena:    a,
		Gateway:  gw,
		NATS:     publisher,

		Notifications: queue,
	}, nil
}

func (s *Services) Close() {
	if s.NATS != nil {
		if err := s.NATS.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close NATS publisher")
		}
	}
}
