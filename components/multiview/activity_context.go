package multiview

import "context"

// ActivityContext identifies who triggered a mutation. The service copies it
// onto activity events and telemetry.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

// IsZero reports whether no identifier is set.
func (a ActivityContext) IsZero() bool {
	return a == ActivityContext{}
}

type activityKey struct{}

// ContextWithActivity returns ctx carrying meta. A zero meta leaves ctx as is.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if meta.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, activityKey{}, meta)
}

// ActivityFromContext returns the identifiers stored by ContextWithActivity.
func ActivityFromContext(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	meta, _ := ctx.Value(activityKey{}).(ActivityContext)
	return meta
}
