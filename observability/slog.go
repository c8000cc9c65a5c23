package observability

import (
	"context"
	"log/slog"
)

// SlogObserver bridges orchestration events onto a slog.Logger: the event
// type becomes the log message, severity maps through Level.SlogLevel, and
// the event's data entries flatten into top-level attributes alongside the
// emitting source.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver wraps the given logger as an Observer.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	fields := make([]slog.Attr, 0, len(event.Data)+1)
	fields = append(fields, slog.String("source", event.Source))
	for key, value := range event.Data {
		fields = append(fields, slog.Any(key, value))
	}

	o.logger.LogAttrs(ctx, event.Level.SlogLevel(), string(event.Type), fields...)
}
