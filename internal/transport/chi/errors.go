package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchkit"
	logpkg "github.com/kailas-cloud/searchkit/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// writeFailure maps a searchkit failure onto an HTTP answer. Plain
// configuration errors are the caller's fault. Engine-reported errors keep
// their message and metadata; everything else is summarized.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())

	f, ok := searchkit.AsFailure(err)
	if !ok {
		if errors.Is(err, searchkit.ErrConfiguration) {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
			return
		}
		log.Error("unclassified error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
		return
	}

	status, code := failureStatus(f)
	if status >= http.StatusInternalServerError {
		log.Warn("engine call failed", zap.Stringer("kind", f.Kind), zap.Error(f))
	}

	resp := ErrorResponse{Code: code, Message: f.Message, Warnings: f.Warnings}
	switch f.Kind {
	case searchkit.KindEngine:
		resp.Metadata = f.Metadata
	case searchkit.KindIO:
		resp.Message = "search engine unreachable"
	case searchkit.KindConfiguration:
		resp.Message = "search engine client unavailable"
	case searchkit.KindUnknown:
		resp.Message = "internal error"
	case searchkit.KindResponse:
	}
	writeJSON(w, status, resp)
}

func failureStatus(f *searchkit.Failure) (int, ErrorCode) {
	switch f.Kind {
	case searchkit.KindEngine:
		switch {
		case errors.Is(f, searchkit.ErrIndexNotFound):
			return http.StatusNotFound, CodeIndexNotFound
		case errors.Is(f, searchkit.ErrIndexExists):
			return http.StatusConflict, CodeIndexExists
		}
		if s, ok := f.Metadata["status"].(int); ok && s >= 400 && s < 500 {
			return http.StatusBadRequest, CodeEngineRejected
		}
		return http.StatusBadGateway, CodeEngineRejected
	case searchkit.KindResponse:
		return http.StatusBadGateway, CodeEngineResponse
	case searchkit.KindIO:
		return http.StatusServiceUnavailable, CodeEngineUnavail
	case searchkit.KindConfiguration:
		return http.StatusInternalServerError, CodeConfiguration
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}
