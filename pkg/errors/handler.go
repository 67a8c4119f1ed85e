package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorResponse is the JSON body of every failed request. Code is stable
// and meant for clients; Hint tells an editor front end what to do next.
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Hint      string                 `json:"hint,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// outcome is how one kind of failure is answered and logged
type outcome struct {
	status int
	code   string
	level  zapcore.Level
	hint   string
}

// Rejected edits are part of normal editing and log at info. Engine faults
// log at error with their stack.
var outcomes = map[ErrorType]outcome{
	ErrorTypeAmbiguousSelection: {http.StatusConflict, "EDIT_AMBIGUOUS", zapcore.InfoLevel,
		"repeat the request with one of the candidate ids as choice"},
	ErrorTypeUnconnectedAnchor: {http.StatusUnprocessableEntity, "EDIT_UNCONNECTED_ANCHOR", zapcore.InfoLevel,
		"assign a net signal to the pad or via first"},
	ErrorTypeSignalMismatch: {http.StatusUnprocessableEntity, "EDIT_SIGNAL_MISMATCH", zapcore.InfoLevel,
		"only items of the same net signal can be connected"},
	ErrorTypeNoTargetFound: {http.StatusUnprocessableEntity, "EDIT_NO_TARGET", zapcore.InfoLevel,
		"nothing routable lies at this position on this layer"},
	ErrorTypeUserCanceled: {http.StatusConflict, "EDIT_CANCELED", zapcore.InfoLevel, ""},
	ErrorTypeConflict:     {http.StatusConflict, "EDIT_CONFLICT", zapcore.InfoLevel, ""},
	ErrorTypeValidation:   {http.StatusBadRequest, "BAD_REQUEST", zapcore.InfoLevel, ""},
	ErrorTypeNotFound:     {http.StatusNotFound, "NOT_FOUND", zapcore.InfoLevel, ""},
	ErrorTypeLogic:        {http.StatusInternalServerError, "ENGINE_FAULT", zapcore.ErrorLevel, ""},
	ErrorTypeInternal:     {http.StatusInternalServerError, "INTERNAL", zapcore.ErrorLevel, ""},
}

var timeout = outcome{http.StatusGatewayTimeout, "EDIT_TIMEOUT", zapcore.WarnLevel, "the board is busy, retry the edit"}

func outcomeOf(t ErrorType) outcome {
	if o, ok := outcomes[t]; ok {
		return o
	}
	return outcomes[ErrorTypeInternal]
}

// ErrorHandler answers failed requests
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler. In debug mode responses carry
// the stack trace of engine errors and the text of unclassified ones.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// HTTPStatus returns the response status for an error
func HTTPStatus(err error) int {
	if appErr := GetAppError(err); appErr != nil {
		if appErr.HTTPStatus != 0 {
			return appErr.HTTPStatus
		}
		return outcomeOf(appErr.Type).status
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return timeout.status
	}
	return http.StatusInternalServerError
}

// Handle answers the request with the JSON form of err
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	resp, o, cause := h.describe(err)
	resp.RequestID = r.Header.Get("X-Request-ID")

	fields := requestFields(r, o.status)
	fields = append(fields, zap.String("error_type", resp.Type), zap.String("error_code", resp.Code))
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	if len(resp.Details) > 0 {
		fields = append(fields, zap.Any("details", resp.Details))
	}
	if ce := h.logger.Check(o.level, resp.Message); ce != nil {
		ce.Write(fields...)
	}

	h.write(w, o.status, resp)
}

// describe builds the response body for err together with its outcome and
// the cause worth logging
func (h *ErrorHandler) describe(err error) (ErrorResponse, outcome, error) {
	appErr := GetAppError(err)
	if appErr == nil {
		o := outcomeOf(ErrorTypeInternal)
		msg := "An internal error occurred"
		if errors.Is(err, context.DeadlineExceeded) {
			o, msg = timeout, "The edit timed out"
		}
		resp := ErrorResponse{Error: true, Type: string(ErrorTypeInternal), Code: o.code, Message: msg, Hint: o.hint}
		if h.debug {
			resp.Message = err.Error()
		}
		return resp, o, err
	}

	o := outcomeOf(appErr.Type)
	if appErr.HTTPStatus != 0 {
		o.status = appErr.HTTPStatus
	}
	resp := ErrorResponse{
		Error:   true,
		Type:    string(appErr.Type),
		Code:    o.code,
		Message: appErr.Message,
		Hint:    o.hint,
		Details: appErr.Details,
	}
	if appErr.Code != "" {
		resp.Code = appErr.Code
	}
	if h.debug && appErr.StackTrace != "" {
		details := make(map[string]interface{}, len(appErr.Details)+1)
		for k, v := range appErr.Details {
			details[k] = v
		}
		details["stack_trace"] = appErr.StackTrace
		resp.Details = details
	}
	return resp, o, appErr.Cause
}

// HandleStatus answers a request the router itself rejected
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	t := statusType(status)
	resp := ErrorResponse{
		Error:     true,
		Type:      string(t),
		Code:      outcomeOf(t).code,
		Message:   message,
		RequestID: r.Header.Get("X-Request-ID"),
	}
	h.logger.Info(message, requestFields(r, status)...)
	h.write(w, status, resp)
}

func statusType(status int) ErrorType {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusMethodNotAllowed:
		return ErrorTypeValidation
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusConflict:
		return ErrorTypeConflict
	}
	return ErrorTypeInternal
}

func requestFields(r *http.Request, status int) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", r.Header.Get("X-Request-ID")),
	}
}

func (h *ErrorHandler) write(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// Middleware turns a panic in the wrapped handler into an engine fault
// response
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
