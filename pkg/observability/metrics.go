package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Global metrics instance for singleton pattern
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Undo stack metrics
	StackOperations *prometheus.CounterVec
	StackDuration   *prometheus.HistogramVec
	UndoDepth       *prometheus.GaugeVec
	RedoDepth       *prometheus.GaugeVec

	// Bus metrics
	Intents        *prometheus.CounterVec
	IntentDuration *prometheus.HistogramVec
	Queries        *prometheus.CounterVec

	// Event metrics
	EventsPublished *prometheus.CounterVec
	EventsByType    *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	// Use singleton pattern to avoid duplicate registration in tests
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	stackOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undo_stack_operations_total",
			Help:      "Total number of undo stack operations",
		},
		[]string{"operation", "status"},
	)

	stackDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "undo_stack_operation_duration_seconds",
			Help:      "Undo stack operation duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"operation"},
	)

	undoDepth := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "undo_stack_undo_depth",
			Help:      "Number of undoable commands per board",
		},
		[]string{"board"},
	)

	redoDepth := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "undo_stack_redo_depth",
			Help:      "Number of redoable commands per board",
		},
		[]string{"board"},
	)

	intents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Total number of dispatched edit intents",
		},
		[]string{"intent", "status"},
	)

	intentDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "intent_duration_seconds",
			Help:      "Edit intent handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	queries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of dispatched queries",
		},
		[]string{"query", "status"},
	)

	eventsPublished := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of published domain events",
		},
		[]string{"status"},
	)

	eventsByType := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_changes_total",
			Help:      "Committed board changes by event type",
		},
		[]string{"type"},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		stackOperations,
		stackDuration,
		undoDepth,
		redoDepth,
		intents,
		intentDuration,
		queries,
		eventsPublished,
		eventsByType,
	)

	globalCollector = &Collector{
		registry:        registry,
		HTTPRequests:    httpRequests,
		HTTPDuration:    httpDuration,
		StackOperations: stackOperations,
		StackDuration:   stackDuration,
		UndoDepth:       undoDepth,
		RedoDepth:       redoDepth,
		Intents:         intents,
		IntentDuration:  intentDuration,
		Queries:         queries,
		EventsPublished: eventsPublished,
		EventsByType:    eventsByType,
	}

	return globalCollector
}

// ResetForTesting resets the global collector for testing purposes
func ResetForTesting() {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()
	globalCollector = nil
}

// ForBoard returns a recorder for the undo stack of one board
func (c *Collector) ForBoard(board string) *BoardRecorder {
	return &BoardRecorder{collector: c, board: board}
}

// RecordIntent records one dispatched edit intent
func (c *Collector) RecordIntent(intent string, success bool, duration time.Duration) {
	c.Intents.WithLabelValues(intent, status(success)).Inc()
	c.IntentDuration.WithLabelValues(intent).Observe(duration.Seconds())
}

// RecordQuery records one dispatched query
func (c *Collector) RecordQuery(query string, success bool) {
	c.Queries.WithLabelValues(query, status(success)).Inc()
}

// RecordEvents counts published or dropped domain events
func (c *Collector) RecordEvents(n int, success bool) {
	c.EventsPublished.WithLabelValues(status(success)).Add(float64(n))
}

// RecordEventType counts one committed change of the given event type
func (c *Collector) RecordEventType(eventType string) {
	c.EventsByType.WithLabelValues(eventType).Inc()
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// BoardRecorder feeds undo stack metrics labelled with a board id
type BoardRecorder struct {
	collector *Collector
	board     string
}

// RecordStackOperation records one stack operation
func (r *BoardRecorder) RecordStackOperation(op string, success bool, duration time.Duration) {
	r.collector.StackOperations.WithLabelValues(op, status(success)).Inc()
	r.collector.StackDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SetStackDepth publishes the current undo and redo depth
func (r *BoardRecorder) SetStackDepth(undo, redo int) {
	r.collector.UndoDepth.WithLabelValues(r.board).Set(float64(undo))
	r.collector.RedoDepth.WithLabelValues(r.board).Set(float64(redo))
}

// Forget drops the depth gauges of a closed board
func (r *BoardRecorder) Forget() {
	r.collector.UndoDepth.DeleteLabelValues(r.board)
	r.collector.RedoDepth.DeleteLabelValues(r.board)
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
