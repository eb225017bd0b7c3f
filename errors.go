package searchkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// Sentinel errors. Use errors.Is() to check.
var (
	// ErrConfiguration marks caller mistakes: invalid connection settings,
	// a missing or malformed mapping resource, a transport that cannot be built.
	ErrConfiguration = errors.New("searchkit: configuration error")

	ErrInvalidConfig   = fmt.Errorf("%w: invalid connection config", ErrConfiguration)
	ErrMappingNotFound = fmt.Errorf("%w: mapping resource not found", ErrConfiguration)
	ErrInvalidMapping  = fmt.Errorf("%w: mapping resource is not a JSON object", ErrConfiguration)

	// Engine conditions re-exported from the driver layer.
	ErrIndexNotFound = db.ErrIndexNotFound
	ErrIndexExists   = db.ErrIndexExists
)

// FailureKind classifies why an operation failed.
type FailureKind int

const (
	// KindUnknown is anything not recognised below, including decode and encode errors.
	KindUnknown FailureKind = iota
	// KindResponse is a non-2xx answer whose body is not a structured engine error.
	KindResponse
	// KindEngine is a structured error reported by the engine.
	KindEngine
	// KindIO is a connection failure before any response was read.
	KindIO
	// KindConfiguration is a client that could not be constructed.
	KindConfiguration
)

func (k FailureKind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindEngine:
		return "engine"
	case KindIO:
		return "io"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Failure is the normalized error carried by every error variant.
// Message is never empty; Cause is the original error.
type Failure struct {
	Kind     FailureKind
	Message  string
	Metadata map[string]any
	Warnings []string
	Cause    error
}

func (f *Failure) Error() string { return "searchkit: " + f.Kind.String() + ": " + f.Message }
func (f *Failure) Unwrap() error { return f.Cause }

// AsFailure extracts the Failure from err, if there is one.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// classify maps err onto the taxonomy, checking the most specific causes first:
// response, engine, io, then unknown.
func classify(err error) *Failure {
	if err == nil {
		return nil
	}
	if f, ok := AsFailure(err); ok {
		return f
	}

	var respErr *db.ResponseError
	if errors.As(err, &respErr) {
		return &Failure{
			Kind:     KindResponse,
			Message:  respErr.Message(),
			Metadata: map[string]any{"status": respErr.StatusCode},
			Warnings: respErr.Warnings,
			Cause:    err,
		}
	}

	var engineErr *db.EngineError
	if errors.As(err, &engineErr) {
		meta := make(map[string]any, len(engineErr.Metadata)+1)
		for k, v := range engineErr.Metadata {
			meta[k] = v
		}
		if engineErr.Type != "" {
			meta["type"] = engineErr.Type
		}
		return &Failure{
			Kind:     KindEngine,
			Message:  nonEmpty(engineErr.Reason, engineErr.Error()),
			Metadata: meta,
			Warnings: engineErr.Warnings,
			Cause:    err,
		}
	}

	// A truncated body surfaces as io.ErrUnexpectedEOF but the round trip completed.
	var decodeErr *db.DecodeError
	if errors.As(err, &decodeErr) {
		return &Failure{Kind: KindUnknown, Message: err.Error(), Cause: err}
	}

	if isIO(err) {
		return &Failure{Kind: KindIO, Message: err.Error(), Cause: err}
	}

	return &Failure{Kind: KindUnknown, Message: nonEmpty(err.Error(), "unknown failure"), Cause: err}
}

func isIO(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, context.DeadlineExceeded)
}

// configFailure wraps a construction error so it is never mistaken for an engine failure.
func configFailure(err error) *Failure {
	if !errors.Is(err, ErrConfiguration) {
		err = fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return &Failure{Kind: KindConfiguration, Message: err.Error(), Cause: err}
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
