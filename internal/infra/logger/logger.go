package logger

import (
	"io"
	"log/slog"
	"os"
)

func New(env string) *slog.Logger {
	return NewWithWriter(os.Stdout, env)
}

func NewWithWriter(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// LogError logs err under the "err" key together with attrs.
func LogError(log *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	if log == nil || err == nil {
		return
	}
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("err", err.Error()))
	for _, a := range attrs {
		args = append(args, a)
	}
	log.Error(msg, args...)
}

// LogOperation logs a completed operation at info level. Zero durations are dropped.
func LogOperation(log *slog.Logger, op string, attrs ...slog.Attr) {
	if log == nil {
		return
	}
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == "duration" && a.Value.Kind() == slog.KindDuration && a.Value.Duration() == 0 {
			continue
		}
		args = append(args, a)
	}
	log.Info(op, args...)
}

// LogHTTPRequest logs one served request.
func LogHTTPRequest(log *slog.Logger, method, path string, status int, durationMs float64, attrs ...slog.Attr) {
	if log == nil {
		return
	}
	args := make([]any, 0, len(attrs)+4)
	args = append(args,
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	)
	for _, a := range attrs {
		args = append(args, a)
	}
	log.Info("http_request", args...)
}
