package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"atendimento-relay/config"
	"atendimento-relay/internal/events"
	"atendimento-relay/internal/handler"
	"atendimento-relay/internal/redis"
	"atendimento-relay/internal/repository"
	"atendimento-relay/internal/server"
	"atendimento-relay/internal/services"
	"atendimento-relay/pkg/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.LogMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := services.NewAtendimentoService(repository.NewAtendimentoRepository())
	if cfg.SeedDemoData {
		ids := service.SeedDemoData()
		l.Infof("Seeded %d demo atendimentos", len(ids))
	}

	g, ctx := errgroup.WithContext(ctx)

	opts := server.HubOptions{
		EnableTestEvents: cfg.EnableTestEvents,
		SimulatorEvery:   cfg.SimulatorEvery,
		SendBuffer:       cfg.ClientSendBuffer,
		Logger:           l.Logger,
	}

	if cfg.RedisEnabled {
		client := redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()

		if err := redis.Ping(ctx, client); err != nil {
			l.Warnf("Redis unavailable, events will not be mirrored: %v", err)
		} else {
			mirror := redis.NewEventMirror(
				redis.NewPublisher(client),
				events.NewHybridChannelResolver(cfg.RedisChannel),
				l.Named("event_mirror"),
				0,
			)
			opts.Sink = mirror
			g.Go(func() error { return mirror.Run(ctx) })
			l.Infof("Mirroring events to redis channel %s", cfg.RedisChannel)
		}
	}

	hub := server.NewHub(service, opts)
	g.Go(func() error { return hub.Run(ctx) })

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Atendimento: handler.NewAtendimentoHandler(service, hub),
		WebSocket:   server.NewWebSocketHandler(hub, server.OriginAllowed(cfg.CORSOrigins)),
	})
	g.Go(func() error { return srv.Start(ctx) })

	if err := g.Wait(); err != nil {
		l.Errorf("Server exited with error: %v", err)
		l.Sync()
		os.Exit(1)
	}
}
