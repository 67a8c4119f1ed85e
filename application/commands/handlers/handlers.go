// Package handlers turns edit intents into board commands and runs them
// through the board's edit session.
package handlers

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"boardedit/application/commands"
	"boardedit/application/commands/bus"
	"boardedit/application/intents"
	"boardedit/application/ports"
	"boardedit/application/services"
	"boardedit/application/undo"
	"boardedit/domain/core/aggregates"
	"boardedit/domain/core/entities"
	"boardedit/domain/core/valueobjects"
	pkgerrors "boardedit/pkg/errors"
)

// IntentHandlers handles every edit intent
type IntentHandlers struct {
	sessions *services.SessionManager
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewIntentHandlers creates the intent handlers
func NewIntentHandlers(sessions *services.SessionManager, tracer trace.Tracer, logger *zap.Logger) *IntentHandlers {
	return &IntentHandlers{
		sessions: sessions,
		tracer:   tracer,
		logger:   logger,
	}
}

// Register binds every intent type to its handler on the bus
func (h *IntentHandlers) Register(b *bus.CommandBus) error {
	registrations := []struct {
		intent  bus.Command
		handler bus.CommandHandler
	}{
		{intents.PlaceNetPoint{}, typed(h.PlaceNetPoint)},
		{intents.AddFreePoint{}, typed(h.AddFreePoint)},
		{intents.CombineSegments{}, typed(h.CombineSegments)},
		{intents.EditSegmentSignal{}, typed(h.EditSegmentSignal)},
		{intents.CombinePoints{}, typed(h.CombinePoints)},
		{intents.DetachPoint{}, typed(h.DetachPoint)},
		{intents.CombineAllItemsUnderPoint{}, typed(h.CombineAllItemsUnderPoint)},
		{intents.BeginEdit{}, typed(h.BeginEdit)},
		{intents.CommitEdit{}, typed(h.CommitEdit)},
		{intents.AbortEdit{}, typed(h.AbortEdit)},
		{intents.Undo{}, typed(h.Undo)},
		{intents.Redo{}, typed(h.Redo)},
	}
	for _, r := range registrations {
		if err := b.Register(r.intent, r.handler); err != nil {
			return err
		}
	}
	return nil
}

// PlaceNetPoint places a junction where the user clicked
func (h *IntentHandlers) PlaceNetPoint(ctx context.Context, in intents.PlaceNetPoint) (*intents.Result, error) {
	var place *commands.PlaceNetPoint
	result, err := h.run(ctx, "PlaceNetPoint", in.BoardID, func(b *aggregates.Board) (undo.Command, error) {
		var opts []commands.PlaceOption
		if in.Choice != "" {
			if !b.Config().AllowAmbiguityChooser {
				return nil, pkgerrors.NewValidationError("choosing among candidates is disabled for this board")
			}
			opts = append(opts, commands.WithChooser(fixedChoice(in.Choice)))
		}
		place = commands.NewPlaceNetPoint(b, valueobjects.PositionFromMM(in.X, in.Y), valueobjects.Layer(in.Layer), opts...)
		return place, nil
	})
	if err != nil {
		return nil, err
	}
	if p := place.NetPoint(); p != nil {
		result.PointID = p.ID().String()
	}
	return result, nil
}

// AddFreePoint starts a new segment with a free point
func (h *IntentHandlers) AddFreePoint(ctx context.Context, in intents.AddFreePoint) (*intents.Result, error) {
	var add *commands.PointAdd
	result, err := h.run(ctx, "AddFreePoint", in.BoardID, func(b *aggregates.Board) (undo.Command, error) {
		signal, err := signalByName(b, in.Signal)
		if err != nil {
			return nil, err
		}
		add = commands.NewPointAddFree(b, valueobjects.Layer(in.Layer), signal.ID(), valueobjects.PositionFromMM(in.X, in.Y))
		return add, nil
	})
	if err != nil {
		return nil, err
	}
	result.PointID = add.NetPoint().ID().String()
	return result, nil
}

// CombineSegments merges two segments at a junction
func (h *IntentHandlers) CombineSegments(ctx context.Context, in intents.CombineSegments) (*intents.Result, error) {
	return h.run(ctx, "CombineSegments", in.BoardID, func(b *aggregates.Board) (undo.Command, error) {
		return commands.NewCombineSegments(b, valueobjects.SegmentID(in.RemovedSegment), valueobjects.PointID(in.JunctionPointID)), nil
	})
}

// EditSegmentSignal moves a segment to another net signal
func (h *IntentHandlers) EditSegmentSignal(ctx context.Context, in intents.EditSegmentSignal) (*intents.Result, error) {
	return h.run(ctx, "EditSegmentSignal", in.BoardID, func(b *aggregates.Board) (undo.Command, error) {
		seg, err := b.Segment(valueobjects.SegmentID(in.SegmentID))
		if err != nil {
			return nil, err
		}
		signal, err := signalByName(b, in.Signal)
		if err != nil {
			return nil, err
		}
		return commands.NewSegmentEdit(b, seg, signal.ID()), nil
	})
}

// CombinePoints merges two points of one segment
func (h *IntentHandlers) CombinePoints(ctx context.Context, in intents.CombinePoints) (*intents.Result, error) {
	result, err := h.run(ctx, "CombinePoints", in.BoardID, func(b *aggregates.Board) (undo.Command, error) {
		return commands.NewCombinePoints(b, valueobjects.PointID(in.RemovedPoint), valueobjects.PointID(in.ResultingPoint)), nil
	})
	if err != nil {
		return nil, err
	}
	result.PointID = in.ResultingPoint
	return result, nil
}

// DetachPoint detaches a point from its via or pad
func (h *IntentHandlers) DetachPoint(ctx context.Context, in intents.DetachPoint) (*intents.Result, error) {
	return h.run(ctx, "DetachPoint", in.BoardID, func(b *aggregates.Board) (undo.Command, error) {
		return commands.NewDetachPoint(b, valueobjects.PointID(in.PointID)), nil
	})
}

// CombineAllItemsUnderPoint merges everything under a point into it
func (h *IntentHandlers) CombineAllItemsUnderPoint(ctx context.Context, in intents.CombineAllItemsUnderPoint) (*intents.Result, error) {
	result, err := h.run(ctx, "CombineAllItemsUnderPoint", in.BoardID, func(b *aggregates.Board) (undo.Command, error) {
		return commands.NewCombineAllItemsUnderPoint(b, valueobjects.PointID(in.PointID)), nil
	})
	if err != nil {
		return nil, err
	}
	result.PointID = in.PointID
	return result, nil
}

// BeginEdit opens an edit group on the board
func (h *IntentHandlers) BeginEdit(ctx context.Context, in intents.BeginEdit) (*intents.Result, error) {
	result, err := h.history(ctx, "BeginEdit", in.BoardID, func(s *services.EditSession) (string, error) {
		return in.Text, s.BeginGroup(in.Text)
	})
	if err != nil {
		return nil, err
	}
	result.Changed = false
	return result, nil
}

// CommitEdit records the open edit group as one undo step
func (h *IntentHandlers) CommitEdit(ctx context.Context, in intents.CommitEdit) (*intents.Result, error) {
	var changed bool
	result, err := h.history(ctx, "CommitEdit", in.BoardID, func(s *services.EditSession) (string, error) {
		var err error
		changed, err = s.CommitGroup()
		if err != nil {
			return "", err
		}
		_, _, text, _ := s.History()
		return text, nil
	})
	if err != nil {
		return nil, err
	}
	result.Changed = changed
	if !changed {
		result.Text = ""
	}
	return result, nil
}

// AbortEdit reverts the open edit group
func (h *IntentHandlers) AbortEdit(ctx context.Context, in intents.AbortEdit) (*intents.Result, error) {
	return h.history(ctx, "AbortEdit", in.BoardID, func(s *services.EditSession) (string, error) {
		return "", s.AbortGroup()
	})
}

// Undo reverts the last edit
func (h *IntentHandlers) Undo(ctx context.Context, in intents.Undo) (*intents.Result, error) {
	return h.history(ctx, "Undo", in.BoardID, func(s *services.EditSession) (string, error) {
		_, _, text, _ := s.History()
		return text, s.Undo()
	})
}

// Redo re-applies the last undone edit
func (h *IntentHandlers) Redo(ctx context.Context, in intents.Redo) (*intents.Result, error) {
	return h.history(ctx, "Redo", in.BoardID, func(s *services.EditSession) (string, error) {
		_, _, _, text := s.History()
		return text, s.Redo()
	})
}

func (h *IntentHandlers) run(ctx context.Context, name, boardID string, build func(*aggregates.Board) (undo.Command, error)) (*intents.Result, error) {
	ctx, span := h.tracer.Start(ctx, "IntentHandlers."+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("board.id", boardID)),
	)
	defer span.End()

	session, err := h.sessions.Open(ctx, valueobjects.BoardID(boardID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to open edit session")
		return nil, err
	}

	cmd, changed, err := session.Execute(build)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Edit failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("command.kind", string(cmd.Kind())),
		attribute.Bool("command.changed", changed),
	)
	h.logger.Debug("Edit applied",
		zap.String("board_id", boardID),
		zap.String("command", cmd.Text()),
		zap.Bool("changed", changed),
	)
	return h.result(session, changed, cmd.Text()), nil
}

func (h *IntentHandlers) history(ctx context.Context, name, boardID string, step func(*services.EditSession) (string, error)) (*intents.Result, error) {
	ctx, span := h.tracer.Start(ctx, "IntentHandlers."+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("board.id", boardID)),
	)
	defer span.End()

	session, err := h.sessions.Open(ctx, valueobjects.BoardID(boardID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to open edit session")
		return nil, err
	}
	text, err := step(session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
		return nil, err
	}
	return h.result(session, true, text), nil
}

func (h *IntentHandlers) result(s *services.EditSession, changed bool, text string) *intents.Result {
	canUndo, canRedo, _, _ := s.History()
	return &intents.Result{
		Changed:   changed,
		Text:      text,
		CanUndo:   canUndo,
		CanRedo:   canRedo,
		GroupOpen: s.GroupOpen(),
	}
}

func signalByName(b *aggregates.Board, name string) (*entities.NetSignal, error) {
	signal, ok := b.SignalByName(name)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("net signal " + name)
	}
	return signal, nil
}

// fixedChoice answers an ambiguous selection with a choice the caller made
// in advance. A choice that is not among the candidates leaves the
// selection ambiguous.
func fixedChoice(choice string) ports.Chooser {
	return ports.ChooserFunc(func(kind string, candidates []string) (string, error) {
		for _, c := range candidates {
			if c == choice {
				return c, nil
			}
		}
		return "", pkgerrors.NewAmbiguousSelectionError(kind, len(candidates))
	})
}

func typed[T bus.Command](fn func(context.Context, T) (*intents.Result, error)) bus.CommandHandler {
	return bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
		in, ok := cmd.(T)
		if !ok {
			return nil, pkgerrors.NewLogicError("unexpected command type")
		}
		result, err := fn(ctx, in)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}
