package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// requestField tags handler logs with the id set by middleware.RequestID.
func requestField(r *http.Request) logx.Field {
	id := middleware.GetReqID(r.Context())
	if id == "" {
		id = "-"
	}
	return logx.String("request_id", id)
}

// writeJSON encodes before touching the header so a value that fails to
// marshal turns into a 500 instead of a truncated body.
func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		if logger != nil {
			logger.Error("json encode error", requestField(r), logx.Err(err))
		}
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	if logger != nil {
		logger.Warn("http error",
			requestField(r),
			logx.Int("status", status),
			logx.String("msg", msg),
		)
	}
	writeJSON(logger, w, r, status, ErrorResponse{Error: msg})
}

// writeAppError maps err by its apperr class. Validation errors keep their
// reason, everything else gets a fixed message.
func writeAppError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	msg := "internal error"
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		msg = domain.Reason(err)
	case errors.Is(err, apperr.ErrNotFound):
		msg = "not found"
	case errors.Is(err, apperr.ErrUnavailable):
		msg = "temporarily unavailable"
	}
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			requestField(r),
			logx.String("path", r.URL.Path),
			logx.Err(err),
		)
	}
	writeError(logger, w, r, status, msg)
}

const bodyLimit = 1 << 20

func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	return true
}

func pathParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}
