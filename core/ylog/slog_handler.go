package ylog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// handler routes error records to the error stream and everything else to the common stream.
type handler struct {
	common slog.Handler
	errors slog.Handler
}

// NewHandlerFromConfig creates a slog.Handler from conf
func NewHandlerFromConfig(conf Config) slog.Handler {
	level := parseToSlogLevel(conf.Level)

	return &handler{
		common: newSlogHandler(parseToWriter(conf, conf.Output, os.Stdout), conf.Format, level, conf.Verbose, conf.DisableTime),
		errors: newSlogHandler(parseToWriter(conf, conf.ErrorOutput, os.Stderr), conf.Format, level, conf.Verbose, conf.DisableTime),
	}
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= slog.LevelError {
		return h.errors.Enabled(ctx, level)
	}
	return h.common.Enabled(ctx, level)
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return h.errors.Handle(ctx, r)
	}
	return h.common.Handle(ctx, r)
}

func (h *handler) WithAttrs(as []slog.Attr) slog.Handler {
	return &handler{
		common: h.common.WithAttrs(as),
		errors: h.errors.WithAttrs(as),
	}
}

func (h *handler) WithGroup(name string) slog.Handler {
	return &handler{
		common: h.common.WithGroup(name),
		errors: h.errors.WithGroup(name),
	}
}

func newSlogHandler(w io.Writer, format string, level slog.Level, verbose, disableTime bool) slog.Handler {
	replaceAttr := func(groups []string, a slog.Attr) slog.Attr {
		if disableTime && a.Key == slog.TimeKey && len(groups) == 0 {
			return slog.Attr{}
		}
		return a
	}

	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   verbose,
			Level:       level,
			ReplaceAttr: replaceAttr,
		})
	}

	return tint.NewHandler(w, &tint.Options{
		AddSource:   verbose,
		Level:       level,
		ReplaceAttr: replaceAttr,
		NoColor:     true,
	})
}
