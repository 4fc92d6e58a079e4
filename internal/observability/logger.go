package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// InitLogger points the global zerolog logger at stdout. Development gets the
// human readable console writer, everything else gets JSON lines with caller.
func InitLogger(serviceName, env, level string) {
	log.Logger = newLogger(os.Stdout, serviceName, env, level)
}

func newLogger(out io.Writer, serviceName, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
			With().Timestamp().Str("service", serviceName).Logger()
	}
	return zerolog.New(out).
		With().Timestamp().Caller().Str("service", serviceName).Logger()
}

// LoggerFromContext returns the global logger tagged with the chi request id
// and the active span, when the context has them.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	c := log.With()
	if id := middleware.GetReqID(ctx); id != "" {
		c = c.Str("request_id", id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		c = c.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}
	logger := c.Logger()
	return &logger
}
