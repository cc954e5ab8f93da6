package usersink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-multiview/pkg/activity"
)

type sinkFunc func(context.Context, types.ActivityRecord) error

func (f sinkFunc) Log(ctx context.Context, record types.ActivityRecord) error {
	return f(ctx, record)
}

func collect(records *[]types.ActivityRecord) Sink {
	return sinkFunc(func(_ context.Context, r types.ActivityRecord) error {
		*records = append(*records, r)
		return nil
	})
}

func TestHookBuildsRecordFromLayoutEvent(t *testing.T) {
	var records []types.ActivityRecord
	operator := uuid.New()
	tenant := uuid.New()
	at := time.Date(2026, 7, 2, 22, 15, 0, 0, time.UTC)

	err := Hook{Sink: collect(&records)}.Notify(context.Background(), activity.Event{
		Verb:           "multiview.layout.broadcast",
		ActorID:        " " + operator.String() + " ",
		TenantID:       tenant.String(),
		ObjectType:     "layout",
		ObjectID:       "layout-operations",
		Channel:        "ops-floor",
		DefinitionCode: "layout:broadcast",
		Recipients:     []string{"wall-north", "wall-south"},
		Metadata:       map[string]any{"audience": "all"},
		OccurredAt:     at,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, operator, rec.ActorID)
	assert.Equal(t, tenant, rec.TenantID)
	assert.Equal(t, uuid.Nil, rec.UserID)
	assert.Equal(t, "multiview.layout.broadcast", rec.Verb)
	assert.Equal(t, "layout-operations", rec.ObjectID)
	assert.Equal(t, "ops-floor", rec.Channel)
	assert.True(t, rec.OccurredAt.Equal(at))
	assert.Equal(t, map[string]any{
		"audience":        "all",
		"definition_code": "layout:broadcast",
		"recipients":      []string{"wall-north", "wall-south"},
	}, rec.Data)
}

func TestHookIgnoresNonUUIDActors(t *testing.T) {
	var records []types.ActivityRecord
	err := Hook{Sink: collect(&records)}.Notify(context.Background(), activity.Event{
		Verb:       "multiview.layout.select",
		ActorID:    "operator@rig.example",
		UserID:     "not-a-uuid",
		ObjectType: "layout",
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uuid.Nil, records[0].ActorID)
	assert.Equal(t, uuid.Nil, records[0].UserID)
	assert.Empty(t, records[0].Data)
}

func TestHookNoopCases(t *testing.T) {
	var records []types.ActivityRecord
	require.NoError(t, Hook{}.Notify(context.Background(), activity.Event{Verb: "multiview.layout.create"}))
	require.NoError(t, Hook{Sink: collect(&records)}.Notify(context.Background(), activity.Event{Verb: "  "}))
	assert.Empty(t, records)
}

func TestHookReturnsSinkError(t *testing.T) {
	full := errors.New("activity table full")
	hook := Hook{Sink: sinkFunc(func(context.Context, types.ActivityRecord) error { return full })}
	err := hook.Notify(context.Background(), activity.Event{Verb: "multiview.layout.commit", ObjectType: "layout"})
	assert.ErrorIs(t, err, full)
}
