// Package handlers translates REST requests into intents and queries.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"boardedit/application/commands/bus"
	"boardedit/application/intents"
	"boardedit/application/queries"
	querybus "boardedit/application/queries/bus"
	pkgerrors "boardedit/pkg/errors"
)

const defaultMaxBody = 1 << 20

// BoardHandler handles board HTTP requests
type BoardHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	maxBody    int64
	logger     *zap.Logger
}

// NewBoardHandler creates a new board handler. maxBody limits request
// bodies; zero means 1 MiB.
func NewBoardHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errHandler *pkgerrors.ErrorHandler, maxBody int64, logger *zap.Logger) *BoardHandler {
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	return &BoardHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errHandler,
		maxBody:    maxBody,
		logger:     logger,
	}
}

// GetBoard handles GET /boards/{boardID}
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetBoardQuery{BoardID: chi.URLParam(r, "boardID")})
}

// GetSegment handles GET /boards/{boardID}/segments/{segmentID}
func (h *BoardHandler) GetSegment(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetSegmentQuery{
		BoardID:   chi.URLParam(r, "boardID"),
		SegmentID: chi.URLParam(r, "segmentID"),
	})
}

// ItemsAt handles GET /boards/{boardID}/items?x=&y=&layer=
func (h *BoardHandler) ItemsAt(w http.ResponseWriter, r *http.Request) {
	x, err := floatParam(r, "x")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	y, err := floatParam(r, "y")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.ask(w, r, queries.ItemsAtQuery{
		BoardID: chi.URLParam(r, "boardID"),
		X:       x,
		Y:       y,
		Layer:   r.URL.Query().Get("layer"),
	})
}

// Activity handles GET /boards/{boardID}/activity?limit=
func (h *BoardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("query parameter limit must be an integer"))
			return
		}
		limit = n
	}
	h.ask(w, r, queries.GetActivityQuery{BoardID: chi.URLParam(r, "boardID"), Limit: limit})
}

// PlaceNetPoint handles POST /boards/{boardID}/points
func (h *BoardHandler) PlaceNetPoint(w http.ResponseWriter, r *http.Request) {
	var in intents.PlaceNetPoint
	if !h.decode(w, r, &in) {
		return
	}
	in.BoardID = chi.URLParam(r, "boardID")
	h.send(w, r, in)
}

// AddFreePoint handles POST /boards/{boardID}/free-points
func (h *BoardHandler) AddFreePoint(w http.ResponseWriter, r *http.Request) {
	var in intents.AddFreePoint
	if !h.decode(w, r, &in) {
		return
	}
	in.BoardID = chi.URLParam(r, "boardID")
	h.send(w, r, in)
}

// CombineSegments handles POST /boards/{boardID}/segments/combine
func (h *BoardHandler) CombineSegments(w http.ResponseWriter, r *http.Request) {
	var in intents.CombineSegments
	if !h.decode(w, r, &in) {
		return
	}
	in.BoardID = chi.URLParam(r, "boardID")
	h.send(w, r, in)
}

// EditSegmentSignal handles PUT /boards/{boardID}/segments/{segmentID}/signal
func (h *BoardHandler) EditSegmentSignal(w http.ResponseWriter, r *http.Request) {
	var in intents.EditSegmentSignal
	if !h.decode(w, r, &in) {
		return
	}
	in.BoardID = chi.URLParam(r, "boardID")
	in.SegmentID = chi.URLParam(r, "segmentID")
	h.send(w, r, in)
}

// CombinePoints handles POST /boards/{boardID}/points/combine
func (h *BoardHandler) CombinePoints(w http.ResponseWriter, r *http.Request) {
	var in intents.CombinePoints
	if !h.decode(w, r, &in) {
		return
	}
	in.BoardID = chi.URLParam(r, "boardID")
	h.send(w, r, in)
}

// DetachPoint handles POST /boards/{boardID}/points/{pointID}/detach
func (h *BoardHandler) DetachPoint(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, intents.DetachPoint{
		BoardID: chi.URLParam(r, "boardID"),
		PointID: chi.URLParam(r, "pointID"),
	})
}

// CombineAllItemsUnderPoint handles POST /boards/{boardID}/points/{pointID}/combine-all
func (h *BoardHandler) CombineAllItemsUnderPoint(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, intents.CombineAllItemsUnderPoint{
		BoardID: chi.URLParam(r, "boardID"),
		PointID: chi.URLParam(r, "pointID"),
	})
}

// BeginEdit handles POST /boards/{boardID}/edits/begin
func (h *BoardHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	var in intents.BeginEdit
	if !h.decode(w, r, &in) {
		return
	}
	in.BoardID = chi.URLParam(r, "boardID")
	h.send(w, r, in)
}

// CommitEdit handles POST /boards/{boardID}/edits/commit
func (h *BoardHandler) CommitEdit(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, intents.CommitEdit{BoardID: chi.URLParam(r, "boardID")})
}

// AbortEdit handles POST /boards/{boardID}/edits/abort
func (h *BoardHandler) AbortEdit(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, intents.AbortEdit{BoardID: chi.URLParam(r, "boardID")})
}

// Undo handles POST /boards/{boardID}/undo
func (h *BoardHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, intents.Undo{BoardID: chi.URLParam(r, "boardID")})
}

// Redo handles POST /boards/{boardID}/redo
func (h *BoardHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, intents.Redo{BoardID: chi.URLParam(r, "boardID")})
}

func (h *BoardHandler) send(w http.ResponseWriter, r *http.Request, cmd bus.Command) {
	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *BoardHandler) ask(w http.ResponseWriter, r *http.Request, q querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// decode reads a JSON body into dst and answers the request itself when
// the body is unusable
func (h *BoardHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.errors.HandleStatus(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			h.errors.Handle(w, r, pkgerrors.NewValidationError("request body is required"))
		default:
			h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		}
		return false
	}
	return true
}

func (h *BoardHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, pkgerrors.NewValidationError("query parameter " + name + " is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, pkgerrors.NewValidationError("query parameter " + name + " must be a finite number")
	}
	return v, nil
}
