package multiview

import (
	"context"

	"go.uber.org/zap"
)

// Telemetry records layout manager events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// ZapTelemetry writes telemetry events as structured zap entries.
type ZapTelemetry struct {
	logger *zap.Logger
}

// NewZapTelemetry wraps logger; a nil logger yields a no-op logger.
func NewZapTelemetry(logger *zap.Logger) *ZapTelemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapTelemetry{logger: logger}
}

// Record logs the event at info level, or warn when the payload carries an error.
func (t *ZapTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	fields := make([]zap.Field, 0, len(payload)+1)
	if meta := ActivityFromContext(ctx); meta.ActorID != "" {
		fields = append(fields, zap.String("actor_id", meta.ActorID))
	}
	for key, value := range payload {
		fields = append(fields, zap.Any(key, value))
	}
	if _, failed := payload["error"]; failed {
		t.logger.Warn(event, fields...)
		return
	}
	t.logger.Info(event, fields...)
}
