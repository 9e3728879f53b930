package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/luozhen/go-chat-keeper/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// withRequestID attaches a request-scoped logger carrying a request id to the
// context, so downstream code can recover it via logger.FromRequest. An id
// supplied by the caller is reused; otherwise a fresh one is generated. The id
// is echoed back in the response header either way.
func (h *Handlers) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		l := h.log.With().Str("request_id", requestID).Logger()
		r = r.WithContext(l.WithContext(r.Context()))

		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		start := time.Now()
		lw := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(lw, r)

		log.Info().
			Str("uri", r.RequestURI).
			Str("method", r.Method).
			Int("status", lw.Status()).
			Dur("duration", time.Since(start)).
			Int("size", lw.size).
			Send()
	})
}

// responseWriter records the status code and body size written by the
// downstream handler. WriteHeader is forwarded to the underlying writer at
// most once; later calls are ignored, matching the contract documented on
// [http.ResponseWriter].
type responseWriter struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// Status reports the code sent to the client, http.StatusOK when the handler
// never called WriteHeader explicitly.
func (w *responseWriter) Status() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.status
}
