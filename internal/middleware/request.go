package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID keeps an incoming X-Request-ID or mints a UUID, echoes it on
// the response and stores it where chi's GetReqID finds it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), chimw.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logger is chi's RequestLogger writing one slog record per request.
// Recoverer reports panics through the same entry.
func Logger(log *slog.Logger) func(http.Handler) http.Handler {
	return chimw.RequestLogger(&slogFormatter{log: log})
}

type slogFormatter struct {
	log *slog.Logger
}

func (f *slogFormatter) NewLogEntry(r *http.Request) chimw.LogEntry {
	return &slogEntry{log: f.log.With(
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", chimw.GetReqID(r.Context())),
	)}
}

type slogEntry struct {
	log *slog.Logger
}

func (e *slogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	e.log.Info("request",
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.Duration("duration", elapsed))
}

func (e *slogEntry) Panic(v interface{}, stack []byte) {
	e.log.Error("panic",
		slog.String("panic", fmt.Sprint(v)),
		slog.String("stack", string(stack)))
}
