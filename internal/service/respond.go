package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/castlemilk/cardkeeper/internal/auth"
	"github.com/castlemilk/cardkeeper/internal/ingest"
	"github.com/castlemilk/cardkeeper/internal/mailbox"
	"github.com/castlemilk/cardkeeper/internal/model"
	"github.com/castlemilk/cardkeeper/internal/store"
)

// envelope is the shape of every API response.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// badRequest marks malformed input that is not a record validation failure.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

// writeJSON always emits data on success; a nil value is written as null.
func (s *CardService) writeJSON(w http.ResponseWriter, status int, data any) {
	if data == nil {
		data = json.RawMessage("null")
	}
	s.writeEnvelope(w, status, envelope{Success: true, Data: data})
}

func (s *CardService) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := mapError(err)
	if status >= 500 {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.log.Info("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.writeEnvelope(w, status, envelope{Error: msg})
}

func (s *CardService) writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	env.Timestamp = s.clock().Unix()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.log.Warn("failed to write response", "error", err)
	}
}

// mapError maps domain errors to HTTP status codes and client messages.
func mapError(err error) (int, string) {
	var ve *model.ValidationError
	var bad *badRequest
	var mailErr *mailbox.Error
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.As(err, &bad):
		return http.StatusBadRequest, bad.msg
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "card not found"
	case errors.Is(err, ingest.ErrNotConfigured):
		return http.StatusBadRequest, "mail account is not configured; save an email config first"
	case errors.As(err, &mailErr):
		if mailErr.Code == mailbox.ErrCancelled {
			return http.StatusGatewayTimeout, mailErr.Message
		}
		return http.StatusBadGateway, mailErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// decodeJSON reads one JSON value from a size-capped body.
func (s *CardService) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return badRequestf("request body is empty")
		}
		return badRequestf("invalid JSON: %v", err)
	}
	return nil
}

func nowFunc(clock func() time.Time) func() time.Time {
	if clock == nil {
		return time.Now
	}
	return clock
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
