package commands

import (
	"context"

	"github.com/goliatone/go-multiview/components/multiview"
)

// Telemetry is the core event sink, so one multiview.ZapTelemetry serves the
// service and its commands.
type Telemetry = multiview.Telemetry

const eventPrefix = "multiview.command."

type discard struct{}

func (discard) Record(context.Context, string, map[string]any) {}

func orDiscard(t Telemetry) Telemetry {
	if t == nil {
		return discard{}
	}
	return t
}

// record emits eventPrefix+name. User and tenant ids from the context are
// added when present; the zap sink already logs the actor id.
func record(ctx context.Context, t Telemetry, name string, payload map[string]any) {
	meta := multiview.ActivityFromContext(ctx)
	if meta.UserID != "" || meta.TenantID != "" {
		merged := make(map[string]any, len(payload)+2)
		for k, v := range payload {
			merged[k] = v
		}
		if meta.UserID != "" {
			merged["user_id"] = meta.UserID
		}
		if meta.TenantID != "" {
			merged["tenant_id"] = meta.TenantID
		}
		payload = merged
	}
	t.Record(ctx, eventPrefix+name, payload)
}
