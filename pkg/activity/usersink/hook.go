package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-multiview/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Sink is the go-users activity sink contract.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook persists activity events through a go-users sink.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// Notify maps evt to an ActivityRecord and logs it.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil || strings.TrimSpace(evt.Verb) == "" {
		return nil
	}
	evt = activity.NormalizeEvent(evt)
	data := make(map[string]any, len(evt.Metadata)+2)
	for k, v := range evt.Metadata {
		data[k] = v
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = append([]string(nil), evt.Recipients...)
	}
	record := types.ActivityRecord{
		ActorID:    parseUUID(evt.ActorID),
		UserID:     parseUUID(evt.UserID),
		TenantID:   parseUUID(evt.TenantID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		Data:       data,
		OccurredAt: evt.OccurredAt,
	}
	return h.Sink.Log(ctx, record)
}

func parseUUID(value string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return id
}
