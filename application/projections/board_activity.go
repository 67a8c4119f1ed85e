// Package projections keeps read models up to date from committed board
// events.
package projections

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"boardedit/domain/events"
)

// DefaultActivityLimit bounds the recent events kept per board
const DefaultActivityLimit = 200

// ActivityEntry is one committed change
type ActivityEntry struct {
	Type      string    `json:"type"`
	Version   int       `json:"version"`
	Subject   string    `json:"subject,omitempty"`
	Segment   string    `json:"segment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// BoardActivity summarises the committed changes of one board. Recent is
// newest first.
type BoardActivity struct {
	BoardID     string          `json:"board_id"`
	Counts      map[string]int  `json:"counts"`
	Recent      []ActivityEntry `json:"recent"`
	LastVersion int             `json:"last_version"`
	LastUpdated time.Time       `json:"last_updated,omitempty"`
}

// EventTypeRecorder counts events by type
type EventTypeRecorder interface {
	RecordEventType(eventType string)
}

// BoardActivityProjection listens to board events and keeps, per board, the
// number of changes of each kind and the latest entries.
type BoardActivityProjection struct {
	limit    int
	recorder EventTypeRecorder
	logger   *zap.Logger

	mu     sync.RWMutex
	boards map[string]*boardLog
}

type boardLog struct {
	counts      map[string]int
	ring        []ActivityEntry
	next        int
	lastVersion int
	lastUpdated time.Time
}

// NewBoardActivityProjection creates the projection. A limit below one uses
// DefaultActivityLimit; recorder may be nil.
func NewBoardActivityProjection(limit int, recorder EventTypeRecorder, logger *zap.Logger) *BoardActivityProjection {
	if limit < 1 {
		limit = DefaultActivityLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardActivityProjection{
		limit:    limit,
		recorder: recorder,
		logger:   logger,
		boards:   make(map[string]*boardLog),
	}
}

// CanHandle accepts the board event types
func (p *BoardActivityProjection) CanHandle(eventType string) bool {
	return strings.HasPrefix(eventType, "board.")
}

// Handle records one event
func (p *BoardActivityProjection) Handle(_ context.Context, event events.DomainEvent) error {
	entry := ActivityEntry{
		Type:      event.GetEventType(),
		Version:   event.GetVersion(),
		Timestamp: event.GetTimestamp(),
	}
	entry.Subject, entry.Segment = subjectOf(event)

	p.mu.Lock()
	log, ok := p.boards[event.GetAggregateID()]
	if !ok {
		log = &boardLog{counts: make(map[string]int)}
		p.boards[event.GetAggregateID()] = log
	}
	log.counts[entry.Type]++
	if len(log.ring) < p.limit {
		log.ring = append(log.ring, entry)
	} else {
		log.ring[log.next] = entry
	}
	log.next = (log.next + 1) % p.limit
	if entry.Version > log.lastVersion {
		log.lastVersion = entry.Version
	}
	log.lastUpdated = entry.Timestamp
	p.mu.Unlock()

	if p.recorder != nil {
		p.recorder.RecordEventType(entry.Type)
	}
	p.logger.Debug("Board activity recorded",
		zap.String("board_id", event.GetAggregateID()),
		zap.String("event_type", entry.Type),
		zap.Int("version", entry.Version))
	return nil
}

// Activity returns at most limit recent entries of a board, newest first. A
// board without committed changes has an empty activity.
func (p *BoardActivityProjection) Activity(boardID string, limit int) *BoardActivity {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := &BoardActivity{BoardID: boardID, Counts: map[string]int{}, Recent: []ActivityEntry{}}
	log, ok := p.boards[boardID]
	if !ok {
		return out
	}
	for k, v := range log.counts {
		out.Counts[k] = v
	}
	out.LastVersion = log.lastVersion
	out.LastUpdated = log.lastUpdated

	n := len(log.ring)
	if limit > 0 && limit < n {
		n = limit
	}
	for i := 0; i < n; i++ {
		idx := (log.next - 1 - i + 2*len(log.ring)) % len(log.ring)
		out.Recent = append(out.Recent, log.ring[idx])
	}
	return out
}

// Forget drops the activity of a board
func (p *BoardActivityProjection) Forget(boardID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.boards, boardID)
}

func subjectOf(event events.DomainEvent) (subject, segment string) {
	switch e := event.(type) {
	case events.SegmentAdded:
		return e.SegmentID.String(), e.SegmentID.String()
	case events.SegmentRemoved:
		return e.SegmentID.String(), e.SegmentID.String()
	case events.SegmentSignalChanged:
		return e.SegmentID.String(), e.SegmentID.String()
	case events.PointAdded:
		return e.PointID.String(), e.SegmentID.String()
	case events.PointRemoved:
		return e.PointID.String(), e.SegmentID.String()
	case events.PointEdited:
		return e.PointID.String(), ""
	case events.LineAdded:
		return e.LineID.String(), e.SegmentID.String()
	case events.LineRemoved:
		return e.LineID.String(), e.SegmentID.String()
	}
	return "", ""
}
