package commands

import (
	"context"

	"github.com/goliatone/go-multiview/components/multiview"
)

// Actor identifies who issued a command. It is embedded in command inputs so
// the identifiers travel with the JSON payload.
type Actor struct {
	ActorID  string `json:"actor_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
}

func (a Actor) context(ctx context.Context) context.Context {
	if a == (Actor{}) {
		return ctx
	}
	return multiview.ContextWithActivity(ctx, multiview.ActivityContext{
		ActorID:  a.ActorID,
		UserID:   a.UserID,
		TenantID: a.TenantID,
	})
}
