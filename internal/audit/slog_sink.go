package audit

import (
	"context"
	"log/slog"
)

// SlogSink mirrors every event to a structured logger.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger.With("component", "audit")}
}

func (s *SlogSink) Record(ctx context.Context, e Event) error {
	attrs := []any{"action", e.Action, "origin", OriginFrom(ctx)}
	if e.ActorID != nil {
		attrs = append(attrs, "actor_id", e.ActorID.String())
	}
	if e.ActorName != "" {
		attrs = append(attrs, "actor_name", e.ActorName)
	}
	if e.Details != "" {
		attrs = append(attrs, "details", e.Details)
	}
	for k, v := range e.Meta {
		attrs = append(attrs, k, v)
	}

	level := slog.LevelInfo
	if e.OpsOnly {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "audit event", attrs...)
	return nil
}
