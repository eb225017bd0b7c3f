package db

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Sentinel errors for engine operations.
var (
	ErrInvalidRequest = errors.New("db: invalid request")
	ErrIndexNotFound  = errors.New("db: index not found")
	ErrIndexExists    = errors.New("db: index already exists")
)

// Op constants name the engine endpoints for error context.
const (
	OpPing        = "PING"
	OpCreateIndex = "INDICES.CREATE"
	OpGetMapping  = "INDICES.GET_MAPPING"
	OpBulk        = "BULK"
	OpSearch      = "SEARCH"
	OpCount       = "COUNT"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ResponseError is a non-2xx response whose body is not a structured engine error.
type ResponseError struct {
	Op         string
	StatusCode int
	Body       string
	Warnings   []string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message())
}

// Message returns the raw body, or the status text when the body is empty.
func (e *ResponseError) Message() string {
	if b := strings.TrimSpace(e.Body); b != "" {
		return b
	}
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// EngineError is a failure the engine reported with a structured error body.
type EngineError struct {
	Op         string
	StatusCode int
	Type       string
	Reason     string
	Metadata   map[string]any
	Warnings   []string
}

func (e *EngineError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Type, e.Reason)
	}
	return e.Op + ": " + e.Reason
}

// Is maps well-known engine error types onto the package sentinels.
func (e *EngineError) Is(target error) bool {
	switch target {
	case ErrIndexNotFound:
		return e.Type == "index_not_found_exception"
	case ErrIndexExists:
		return e.Type == "resource_already_exists_exception"
	}
	return false
}

// DecodeError signals a 2xx response the driver could not decode.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string { return e.Op + ": decode response: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// NewResponseFailure classifies a non-2xx body into an EngineError when the
// engine produced a structured error, or a ResponseError otherwise.
func NewResponseFailure(op string, status int, body []byte, warnings []string) error {
	reason := gjson.GetBytes(body, "error.reason")
	if !gjson.ValidBytes(body) || !reason.Exists() {
		return &ResponseError{Op: op, StatusCode: status, Body: string(body), Warnings: warnings}
	}

	errObj := gjson.GetBytes(body, "error")
	meta := make(map[string]any)
	errObj.ForEach(func(k, v gjson.Result) bool {
		switch k.String() {
		case "reason", "type":
		default:
			meta[k.String()] = v.Value()
		}
		return true
	})
	meta["status"] = status

	return &EngineError{
		Op:         op,
		StatusCode: status,
		Type:       errObj.Get("type").String(),
		Reason:     reason.String(),
		Metadata:   meta,
		Warnings:   warnings,
	}
}

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 64 << 10

// ReadResponseFailure drains a non-2xx body and classifies it with NewResponseFailure.
func ReadResponseFailure(op string, status int, body io.Reader, warnings []string) error {
	var data []byte
	if body != nil {
		b, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("read error body: %w", err)}
		}
		data = b
	}
	return NewResponseFailure(op, status, data, warnings)
}
