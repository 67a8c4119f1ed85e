package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"boardedit/application/commands/bus"
	commandhandlers "boardedit/application/commands/handlers"
	"boardedit/application/ports"
	"boardedit/application/projections"
	querybus "boardedit/application/queries/bus"
	queryhandlers "boardedit/application/queries/handlers"
	"boardedit/application/services"
	"boardedit/application/undo"
	domainconfig "boardedit/domain/config"
	"boardedit/domain/core/valueobjects"
	"boardedit/infrastructure/config"
	"boardedit/infrastructure/fixtures"
	"boardedit/infrastructure/messaging"
	"boardedit/infrastructure/messaging/eventbridge"
	"boardedit/infrastructure/messaging/memory"
	persistence "boardedit/infrastructure/persistence/memory"
	pkgerrors "boardedit/pkg/errors"
	"boardedit/pkg/observability"
)

// ProvideAtomicLevel creates the log level shared by the logger and the
// config watcher
func ProvideAtomicLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	return zap.ParseAtomicLevel(cfg.Logging.Level)
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Logging.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", string(cfg.Environment))), nil
}

// ProvideDomainConfig converts the editor settings into board rules
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.DomainConfig()
}

// ProvideBoardRepository creates the board store and seeds it from the
// fixtures directory
func ProvideBoardRepository(ctx context.Context, cfg *config.Config, rules *domainconfig.DomainConfig, logger *zap.Logger) (ports.BoardRepository, error) {
	repo := persistence.NewBoardRepository()
	if cfg.FixturesDir == "" {
		return repo, nil
	}

	ids, err := fixtures.LoadDir(ctx, cfg.FixturesDir, rules, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}
	logger.Info("Loaded board fixtures",
		zap.String("dir", cfg.FixturesDir),
		zap.Int("boards", len(ids)),
	)
	return repo, nil
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// ProvideEventBus creates the in-process event bus
func ProvideEventBus(logger *zap.Logger) *memory.EventBus {
	return memory.NewEventBus(logger.Named("events"))
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Events.Region),
	)
}

// ProvideEventPublisher creates the publisher that receives committed board
// events: the in-process bus, plus EventBridge when it is enabled
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, eventBus *memory.EventBus, collector *observability.Collector, logger *zap.Logger) (ports.EventPublisher, error) {
	publishers := []ports.EventPublisher{eventBus}

	if cfg.Events.EventBridgeEnabled {
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		publishers = append(publishers, eventbridge.NewPublisher(
			awseventbridge.NewFromConfig(awsCfg),
			eventbridge.Config{
				EventBusName: cfg.Events.EventBusName,
				MaxRetries:   cfg.Events.MaxRetries,
				Backoff:      cfg.Events.RetryBackoff,
				TripAfter:    cfg.Events.BreakerTripAfter,
				BreakerReset: cfg.Events.BreakerReset,
			},
			logger.Named("eventbridge"),
		))
		logger.Info("EventBridge publishing enabled", zap.String("bus", cfg.Events.EventBusName))
	}

	return messaging.NewMetered(messaging.NewFanout(publishers...), collector), nil
}

// ProvideSessionManager creates the edit session manager
func ProvideSessionManager(repo ports.BoardRepository, publisher ports.EventPublisher, collector *observability.Collector, rules *domainconfig.DomainConfig, logger *zap.Logger) *services.SessionManager {
	recorders := func(id valueobjects.BoardID) undo.Recorder {
		return collector.ForBoard(id.String())
	}
	sessions := services.NewSessionManager(repo, publisher, recorders, rules.MaxUndoDepth, logger.Named("sessions"))
	sessions.UpdateRules(rules)
	return sessions
}

// ProvideActivityProjection creates the board activity read model and
// subscribes it to every event on the in-process bus
func ProvideActivityProjection(cfg *config.Config, eventBus *memory.EventBus, collector *observability.Collector, logger *zap.Logger) (*projections.BoardActivityProjection, error) {
	projection := projections.NewBoardActivityProjection(cfg.Events.ActivityLimit, collector, logger.Named("activity"))
	if _, err := eventBus.Subscribe(memory.AllEvents, projection); err != nil {
		return nil, fmt.Errorf("failed to subscribe activity projection: %w", err)
	}
	return projection, nil
}

// ProvideTracer creates the tracer used by the buses and handlers
func ProvideTracer(cfg *config.Config) trace.Tracer {
	if !cfg.Tracing.Enabled {
		return noop.NewTracerProvider().Tracer(cfg.Tracing.ServiceName)
	}
	return otel.Tracer(cfg.Tracing.ServiceName)
}

// ProvideCommandBus creates the command bus and registers the edit intents
func ProvideCommandBus(sessions *services.SessionManager, tracer trace.Tracer, collector *observability.Collector, logger *zap.Logger) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger.Named("commands")),
		bus.TracingMiddleware(tracer),
		bus.MetricsMiddleware(collector),
		bus.ValidationMiddleware(),
	)

	h := commandhandlers.NewIntentHandlers(sessions, tracer, logger.Named("intents"))
	if err := h.Register(commandBus); err != nil {
		return nil, fmt.Errorf("failed to register intent handlers: %w", err)
	}
	return commandBus, nil
}

// ProvideQueryBus creates the query bus and registers the board and
// activity queries
func ProvideQueryBus(sessions *services.SessionManager, repo ports.BoardRepository, activity *projections.BoardActivityProjection, collector *observability.Collector, logger *zap.Logger) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger.Named("queries")),
		querybus.MetricsMiddleware(collector),
	)

	h := queryhandlers.NewBoardQueryHandler(sessions, logger.Named("queries"))
	if err := h.Register(queryBus); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	if err := queryhandlers.NewActivityQueryHandler(repo, activity).Register(queryBus); err != nil {
		return nil, fmt.Errorf("failed to register activity query handler: %w", err)
	}
	return queryBus, nil
}

// ProvideErrorHandler creates the HTTP error handler. Development responses
// carry error details and stack traces.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger.Named("http"), cfg.IsDevelopment())
}
