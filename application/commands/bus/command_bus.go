package bus

import (
	"context"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	pkgerrors "boardedit/pkg/errors"
)

// Command represents an edit intent that changes a board
type Command interface {
	Validate() error
}

// CommandHandler handles a specific command type
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) (interface{}, error)
}

// CommandHandlerFunc is an adapter to allow functions to be used as handlers
type CommandHandlerFunc func(ctx context.Context, cmd Command) (interface{}, error)

// Handle implements CommandHandler
func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) (interface{}, error) {
	return f(ctx, cmd)
}

// Middleware defines command middleware
type Middleware func(next CommandHandler) CommandHandler

// CommandBus dispatches commands to their handlers through a middleware
// pipeline.
type CommandBus struct {
	handlers map[reflect.Type]CommandHandler
	pipeline *Pipeline
	mu       sync.RWMutex
}

// NewCommandBus creates a new command bus. Middlewares run in the given
// order around every handler.
func NewCommandBus(middlewares ...Middleware) *CommandBus {
	return &CommandBus{
		handlers: make(map[reflect.Type]CommandHandler),
		pipeline: NewPipeline(middlewares...),
	}
}

// Register registers a handler for a command type
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return pkgerrors.NewConflictError("handler already registered for command type " + t.Name())
	}

	b.handlers[t] = b.pipeline.Execute(handler)
	return nil
}

// Send dispatches a command to its handler and returns the handler's result
func (b *CommandBus) Send(ctx context.Context, cmd Command) (interface{}, error) {
	if cmd == nil {
		return nil, pkgerrors.NewValidationError("command cannot be nil")
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()

	if !exists {
		return nil, pkgerrors.NewInternalError("no handler registered for command type " + commandName(cmd))
	}
	return handler.Handle(ctx, cmd)
}

// ValidationMiddleware rejects invalid commands before they reach a handler
func ValidationMiddleware() Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			if err := cmd.Validate(); err != nil {
				if pkgerrors.IsAppError(err) {
					return nil, err
				}
				return nil, pkgerrors.NewValidationError(err.Error())
			}
			return next.Handle(ctx, cmd)
		})
	}
}

// LoggingMiddleware logs command execution
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			name := commandName(cmd)
			start := time.Now()

			result, err := next.Handle(ctx, cmd)
			if err != nil {
				fields := []zap.Field{
					zap.String("type", name),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err),
				}
				if appErr := pkgerrors.GetAppError(err); appErr != nil && appErr.UserFacing() {
					logger.Info("Command rejected", fields...)
				} else {
					logger.Error("Command failed", fields...)
				}
				return nil, err
			}

			logger.Debug("Command succeeded",
				zap.String("type", name),
				zap.Duration("duration", time.Since(start)),
			)
			return result, nil
		})
	}
}

// TracingMiddleware wraps every command in a span
func TracingMiddleware(tracer trace.Tracer) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			name := commandName(cmd)
			ctx, span := tracer.Start(ctx, "CommandBus."+name,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attribute.String("command.type", name)),
			)
			defer span.End()

			result, err := next.Handle(ctx, cmd)
			if err != nil {
				span.RecordError(err)
				if appErr := pkgerrors.GetAppError(err); appErr != nil {
					span.SetAttributes(attribute.String("error.type", string(appErr.Type)))
				}
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			span.SetStatus(codes.Ok, "")
			return result, nil
		})
	}
}

// Metrics receives one observation per dispatched command
type Metrics interface {
	RecordIntent(intent string, success bool, duration time.Duration)
}

// MetricsMiddleware records dispatch counts and durations
func MetricsMiddleware(metrics Metrics) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			start := time.Now()
			result, err := next.Handle(ctx, cmd)
			metrics.RecordIntent(commandName(cmd), err == nil, time.Since(start))
			return result, err
		})
	}
}

// Pipeline chains multiple middleware together
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline creates a new middleware pipeline
func NewPipeline(middlewares ...Middleware) *Pipeline {
	return &Pipeline{
		middlewares: middlewares,
	}
}

// Execute wraps handler so that the first middleware runs outermost
func (p *Pipeline) Execute(handler CommandHandler) CommandHandler {
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		handler = p.middlewares[i](handler)
	}
	return handler
}

func commandName(cmd Command) string {
	t := reflect.TypeOf(cmd)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
