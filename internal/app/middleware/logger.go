// Internal/app/middleware/logger.go.

package middleware

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. It stays silent until Initialize is called.
var Log = zerolog.Nop()

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// Initialize sets up Log with the given level, writing human-readable lines to stderr.
func Initialize(level string) error {
	return InitializeWriter(level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// InitializeWriter is Initialize with an explicit sink.
func InitializeWriter(level string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	Log = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return nil
}

// WithLogging logs one line per handled request.
func WithLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		h.ServeHTTP(ww, r)

		Log.Info().
			Str("URI", r.RequestURI).
			Str("method", r.Method).
			Int("status", ww.statusCode).
			Int("size", ww.size).
			Dur("duration", time.Since(start)).
			Msg("handled request")
	})
}
