package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.opentelemetry.io/otel/trace"

	"github.com/kodisha/flowd/pkg/actions/outbox"
	"github.com/kodisha/flowd/pkg/cmd"
	"github.com/kodisha/flowd/pkg/entities"
	"github.com/kodisha/flowd/pkg/eventbus"
	"github.com/kodisha/flowd/pkg/events"
	"github.com/kodisha/flowd/pkg/flow"
	"github.com/kodisha/flowd/pkg/flowdefs"
	"github.com/kodisha/flowd/pkg/otelhelper"
	"github.com/kodisha/flowd/pkg/persistence"
	kafkareceiver "github.com/kodisha/flowd/pkg/receivers/kafka"
	"github.com/kodisha/flowd/pkg/scheduler"
	"github.com/kodisha/flowd/pkg/web"
)

// ServiceConfig carries the resolved command line options.
type ServiceConfig struct {
	Port         int
	DatabaseURL  string
	EventBus     string
	KafkaTopics  string
	BuiltinFlows bool
	Tracing      bool
}

// Service owns the wired components and their lifecycle.
type Service struct {
	logger    *slog.Logger
	config    ServiceConfig
	engine    *flow.Engine
	bus       eventbus.EventBus
	store     persistence.FlowStore
	scheduler *scheduler.Scheduler
	receiver  *kafkareceiver.Receiver
}

func NewService(ctx context.Context, logger *slog.Logger, config ServiceConfig) (*Service, error) {
	var tracer trace.Tracer

	if config.Tracing {
		var err error

		tracer, err = otelhelper.NewTracer(ctx, "flowd")
		if err != nil {
			return nil, err
		}
	}

	bus, err := cmd.NewEventBus(config.EventBus, logger)
	if err != nil {
		return nil, err
	}

	store, err := cmd.NewFlowStore(ctx, logger, config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	entityStore := entities.NewStore(bus, logger)
	sender := outbox.NewLogSender(logger)
	actions := cmd.NewRegistry(logger, sender, entityStore)
	engine := flow.NewEngine(logger, actions, flow.Config{Tracer: tracer})

	service := &Service{
		logger:    logger,
		config:    config,
		engine:    engine,
		bus:       bus,
		store:     store,
		scheduler: scheduler.NewScheduler(logger, engine),
	}

	if err := service.loadFlows(ctx); err != nil {
		return nil, err
	}

	if topics := strings.TrimSpace(config.KafkaTopics); topics != "" {
		receiver, err := kafkareceiver.NewReceiver(
			kafkareceiver.Config{Topics: strings.Split(topics, ",")},
			func(ctx context.Context, event events.DomainEvent) error {
				return bus.Publish(ctx, event)
			},
			logger,
		)
		if err != nil {
			return nil, err
		}

		service.receiver = receiver
	}

	return service, nil
}

// loadFlows registers the built-in flows first, then the stored ones. A
// stored flow with a built-in id wins: the built-in is replaced.
func (s *Service) loadFlows(ctx context.Context) error {
	if s.config.BuiltinFlows {
		for _, def := range flowdefs.BuiltIn() {
			if err := s.engine.Flows().Register(def); err != nil {
				return err
			}
		}
	}

	stored, err := s.store.Flows(ctx)
	if err != nil {
		return err
	}

	for _, def := range stored {
		if _, exists := s.engine.Flows().Get(def.ID); exists {
			if err := s.engine.Flows().Unregister(def.ID); err != nil {
				return err
			}
		}

		if err := s.engine.Flows().Register(def); err != nil {
			s.logger.WarnContext(ctx, "Skipping invalid stored flow",
				"flow_id", def.ID,
				"error", err)
		}
	}

	s.logger.InfoContext(ctx, "Flows loaded",
		"total", len(s.engine.Flows().List()),
		"stored", len(stored))

	return nil
}

// Run starts every component and blocks until SIGINT or SIGTERM.
func (s *Service) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.engine.Start(ctx); err != nil {
		return err
	}

	if err := s.bus.Subscribe(ctx, eventbus.FeedEngine(s.engine, s.logger)); err != nil {
		return err
	}

	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	if s.receiver != nil {
		if err := s.receiver.Start(ctx); err != nil {
			return err
		}
	}

	handlers := web.NewAPIHandlers(s.logger, s.engine, s.store, s.scheduler)
	app := web.NewApp(handlers)

	errCh := make(chan error, 1)

	go func() {
		errCh <- app.Listen(":" + strconv.Itoa(s.config.Port))
	}()

	s.logger.InfoContext(ctx, "flowd running", "port", s.config.Port)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")

	if err := app.Shutdown(); err != nil {
		s.logger.Error("Failed to shut down HTTP server", "error", err)
	}

	s.shutdown(context.Background())

	return nil
}

func (s *Service) shutdown(ctx context.Context) {
	if s.receiver != nil {
		if err := s.receiver.Stop(ctx); err != nil {
			s.logger.Error("Failed to stop kafka receiver", "error", err)
		}
	}

	if err := s.scheduler.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop scheduler", "error", err)
	}

	if err := s.engine.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop engine", "error", err)
	}

	if err := s.bus.Close(); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Failed to close event bus", "error", err)
	}

	if err := s.store.Close(ctx); err != nil {
		s.logger.Error("Failed to close flow store", "error", err)
	}
}
