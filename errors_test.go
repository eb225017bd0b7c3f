package searchkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/kailas-cloud/searchkit/internal/db"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    FailureKind
		message string
	}{
		{
			name:    "response error keeps raw body",
			err:     &db.ResponseError{Op: db.OpBulk, StatusCode: 502, Body: "bad gateway"},
			want:    KindResponse,
			message: "bad gateway",
		},
		{
			name:    "response error without body uses status line",
			err:     &db.ResponseError{Op: db.OpBulk, StatusCode: 503},
			want:    KindResponse,
			message: "503 Service Unavailable",
		},
		{
			name: "engine error uses reason",
			err: &db.EngineError{
				Op: db.OpCreateIndex, StatusCode: 400,
				Type: "mapper_parsing_exception", Reason: "failed to parse mapping",
			},
			want:    KindEngine,
			message: "failed to parse mapping",
		},
		{
			name: "connection refused",
			err: &db.Error{Op: db.OpBulk, Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED,
			}},
			want: KindIO,
		},
		{
			name: "url error",
			err:  &db.Error{Op: db.OpSearch, Err: &url.Error{Op: "Post", URL: "http://x", Err: io.EOF}},
			want: KindIO,
		},
		{
			name: "deadline",
			err:  &db.Error{Op: db.OpCount, Err: context.DeadlineExceeded},
			want: KindIO,
		},
		{
			name: "truncated 2xx body is not io",
			err:  &db.DecodeError{Op: db.OpSearch, Err: io.ErrUnexpectedEOF},
			want: KindUnknown,
		},
		{
			name:    "anything else",
			err:     errors.New("json: unsupported type: chan int"),
			want:    KindUnknown,
			message: "json: unsupported type: chan int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := classify(tt.err)
			if f.Kind != tt.want {
				t.Errorf("Kind = %s, want %s", f.Kind, tt.want)
			}
			if f.Message == "" {
				t.Error("Message is empty")
			}
			if tt.message != "" && f.Message != tt.message {
				t.Errorf("Message = %q, want %q", f.Message, tt.message)
			}
			if !errors.Is(f, tt.err) {
				t.Error("cause not preserved")
			}
		})
	}
}

func TestClassify_EngineMetadata(t *testing.T) {
	f := classify(&db.EngineError{
		Op:       db.OpCreateIndex,
		Type:     "resource_already_exists_exception",
		Reason:   "index [orders] already exists",
		Metadata: map[string]any{"index": "orders", "status": 400},
		Warnings: []string{"deprecated setting"},
	})

	if f.Metadata["type"] != "resource_already_exists_exception" {
		t.Errorf("Metadata[type] = %v", f.Metadata["type"])
	}
	if f.Metadata["index"] != "orders" {
		t.Errorf("Metadata[index] = %v", f.Metadata["index"])
	}
	if len(f.Warnings) != 1 {
		t.Errorf("Warnings = %v, want 1", f.Warnings)
	}
	if !errors.Is(f, ErrIndexExists) {
		t.Error("expected errors.Is(f, ErrIndexExists)")
	}
}

func TestClassify_Idempotent(t *testing.T) {
	orig := &Failure{Kind: KindEngine, Message: "x"}
	if got := classify(fmt.Errorf("wrapped: %w", orig)); got != orig {
		t.Errorf("classify re-wrapped an existing Failure: %+v", got)
	}
}

func TestConfigFailure(t *testing.T) {
	f := configFailure(errors.New("bad host"))
	if f.Kind != KindConfiguration {
		t.Errorf("Kind = %s, want configuration", f.Kind)
	}
	if !errors.Is(f, ErrConfiguration) {
		t.Error("expected errors.Is(f, ErrConfiguration)")
	}
}

func TestFailureKind_String(t *testing.T) {
	kinds := map[FailureKind]string{
		KindUnknown:       "unknown",
		KindResponse:      "response",
		KindEngine:        "engine",
		KindIO:            "io",
		KindConfiguration: "configuration",
	}
	for k, want := range kinds {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", k, k.String(), want)
		}
	}
}
