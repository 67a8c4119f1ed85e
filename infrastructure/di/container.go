// Package di wires the application together with google/wire.
package di

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"boardedit/application/commands/bus"
	"boardedit/application/ports"
	"boardedit/application/projections"
	querybus "boardedit/application/queries/bus"
	"boardedit/application/services"
	domainconfig "boardedit/domain/config"
	"boardedit/infrastructure/config"
	"boardedit/infrastructure/messaging/memory"
	pkgerrors "boardedit/pkg/errors"
	"boardedit/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Level      zap.AtomicLevel
	Logger     *zap.Logger
	Rules      *domainconfig.DomainConfig
	Boards     ports.BoardRepository
	EventBus   *memory.EventBus
	Publisher  ports.EventPublisher
	Metrics    *observability.Collector
	Sessions   *services.SessionManager
	Activity   *projections.BoardActivityProjection
	Tracer     trace.Tracer
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Errors     *pkgerrors.ErrorHandler
}
