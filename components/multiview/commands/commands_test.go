package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-multiview/components/multiview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTelemetry struct {
	events   []string
	payloads []map[string]any
}

func (s *stubTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	s.events = append(s.events, event)
	s.payloads = append(s.payloads, payload)
}

type stubService struct {
	createCalls  int
	lastCreate   multiview.CreateLayoutRequest
	selectCalls  int
	deleteCalls  int
	lastID       string
	beginCalls   int
	toggleCalls  int
	updateCalls  int
	addCalls     int
	removeCalls  int
	renameCalls  int
	resizeCalls  int
	lastGrid     multiview.GridConfig
	lastName     string
	commitCalls  int
	cancelCalls  int
	audience     multiview.Audience
	simulator    bool
	reloadCalls  int
	activity     multiview.ActivityContext
	draft        multiview.Layout
	err          error
	createResult multiview.Layout
}

func (s *stubService) CreateLayout(ctx context.Context, req multiview.CreateLayoutRequest) (multiview.Layout, error) {
	s.createCalls++
	s.lastCreate = req
	s.activity = multiview.ActivityFromContext(ctx)
	return s.createResult, s.err
}

func (s *stubService) SelectLayout(_ context.Context, id string) ([]multiview.Layout, error) {
	s.selectCalls++
	s.lastID = id
	return nil, s.err
}

func (s *stubService) DeleteLayout(_ context.Context, id string) error {
	s.deleteCalls++
	s.lastID = id
	return s.err
}

func (s *stubService) BeginEdit(_ context.Context, id string) (multiview.Layout, error) {
	s.beginCalls++
	s.lastID = id
	return s.draft, s.err
}

func (s *stubService) TogglePanel(_ context.Context, id string) (multiview.Panel, error) {
	s.toggleCalls++
	return multiview.Panel{ID: id}, s.err
}

func (s *stubService) UpdatePanel(_ context.Context, id string, _ multiview.PanelPatch) (multiview.Panel, error) {
	s.updateCalls++
	return multiview.Panel{ID: id}, s.err
}

func (s *stubService) AddPanel(_ context.Context, t multiview.PanelType) (multiview.Panel, error) {
	s.addCalls++
	return multiview.Panel{ID: "new", Type: t}, s.err
}

func (s *stubService) RemovePanel(_ context.Context, _ string) error {
	s.removeCalls++
	return s.err
}

func (s *stubService) Draft(context.Context) (multiview.Layout, error) {
	return s.draft, s.err
}

func (s *stubService) RenameDraft(_ context.Context, name, _ string) error {
	s.renameCalls++
	s.lastName = name
	return nil
}

func (s *stubService) ResizeDraft(_ context.Context, grid multiview.GridConfig) error {
	s.resizeCalls++
	s.lastGrid = grid
	return nil
}

func (s *stubService) CommitEdit(context.Context) (multiview.Layout, error) {
	s.commitCalls++
	return s.draft, s.err
}

func (s *stubService) CancelEdit(context.Context) {
	s.cancelCalls++
}

func (s *stubService) Broadcast(_ context.Context, audience multiview.Audience) (multiview.BroadcastReceipt, error) {
	s.audience = audience
	if s.err != nil {
		return multiview.BroadcastReceipt{}, s.err
	}
	return multiview.BroadcastReceipt{LayoutID: "L1", Audience: audience}, nil
}

func (s *stubService) SetSimulatorActive(_ context.Context, active bool) error {
	s.simulator = active
	return s.err
}

func (s *stubService) Reload(context.Context) ([]multiview.Layout, error) {
	s.reloadCalls++
	return []multiview.Layout{{ID: "L1"}}, s.err
}

func TestCreateLayoutCommandPropagatesActorAndResult(t *testing.T) {
	service := &stubService{createResult: multiview.Layout{ID: "L9", Name: "Night"}}
	telemetry := &stubTelemetry{}
	cmd := NewCreateLayoutCommand(service, telemetry)

	var created multiview.Layout
	err := cmd.Execute(context.Background(), CreateLayoutInput{
		Actor:  Actor{ActorID: "admin-1", TenantID: "tenant-a"},
		Name:   "Night",
		Cols:   2,
		Rows:   2,
		Result: &created,
	})
	require.NoError(t, err)
	assert.Equal(t, "L9", created.ID)
	assert.Equal(t, 2, service.lastCreate.Cols)
	assert.Equal(t, "admin-1", service.activity.ActorID)
	assert.Equal(t, "tenant-a", service.activity.TenantID)
	assert.Equal(t, []string{"multiview.command.create"}, telemetry.events)
	assert.Equal(t, "tenant-a", telemetry.payloads[0]["tenant_id"])
	assert.Equal(t, "L9", telemetry.payloads[0]["layout_id"])
	_, hasUser := telemetry.payloads[0]["user_id"]
	assert.False(t, hasUser)
}

func TestCreateLayoutCommandKeepsResultWhenHookFails(t *testing.T) {
	service := &stubService{createResult: multiview.Layout{ID: "L9"}, err: errors.New("hook down")}
	telemetry := &stubTelemetry{}
	cmd := NewCreateLayoutCommand(service, telemetry)

	var created multiview.Layout
	err := cmd.Execute(context.Background(), CreateLayoutInput{Name: "x", Cols: 1, Rows: 1, Result: &created})
	require.Error(t, err)
	assert.Equal(t, "L9", created.ID)
	assert.Empty(t, telemetry.events)
}

func TestSelectAndDeleteRequireLayoutID(t *testing.T) {
	service := &stubService{}
	if err := NewSelectLayoutCommand(service, nil).Execute(context.Background(), SelectLayoutInput{}); err == nil {
		t.Fatalf("expected select without id to fail")
	}
	if err := NewDeleteLayoutCommand(service, nil).Execute(context.Background(), DeleteLayoutInput{}); err == nil {
		t.Fatalf("expected delete without id to fail")
	}
	if service.selectCalls+service.deleteCalls != 0 {
		t.Fatalf("service should not be called without an id")
	}

	require.NoError(t, NewSelectLayoutCommand(service, nil).Execute(context.Background(), SelectLayoutInput{LayoutID: "L2"}))
	require.NoError(t, NewDeleteLayoutCommand(service, nil).Execute(context.Background(), DeleteLayoutInput{LayoutID: "L3"}))
	assert.Equal(t, 1, service.selectCalls)
	assert.Equal(t, 1, service.deleteCalls)
	assert.Equal(t, "L3", service.lastID)
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, NewCreateLayoutCommand(nil, nil).Execute(ctx, CreateLayoutInput{}))
	assert.Error(t, NewBeginEditCommand(nil, nil).Execute(ctx, BeginEditInput{}))
	assert.Error(t, NewEditPanelCommand(nil, nil).Execute(ctx, EditPanelInput{}))
	assert.Error(t, NewUpdateDraftCommand(nil, nil).Execute(ctx, UpdateDraftInput{}))
	assert.Error(t, NewCommitEditCommand(nil, nil).Execute(ctx, CommitEditInput{}))
	assert.Error(t, NewCancelEditCommand(nil, nil).Execute(ctx, CancelEditInput{}))
	assert.Error(t, NewBroadcastCommand(nil, nil).Execute(ctx, BroadcastInput{}))
	assert.Error(t, NewSetSimulatorCommand(nil, nil).Execute(ctx, SetSimulatorInput{}))
	assert.Error(t, NewReloadLayoutsCommand(nil, nil).Execute(ctx, ReloadLayoutsInput{}))
}

func TestEditPanelCommandDispatchesActions(t *testing.T) {
	service := &stubService{}
	cmd := NewEditPanelCommand(service, nil)
	ctx := context.Background()

	var panel multiview.Panel
	require.NoError(t, cmd.Execute(ctx, EditPanelInput{Action: PanelActionToggle, PanelID: "p1", Result: &panel}))
	assert.Equal(t, "p1", panel.ID)
	require.NoError(t, cmd.Execute(ctx, EditPanelInput{Action: PanelActionUpdate, PanelID: "p1"}))
	require.NoError(t, cmd.Execute(ctx, EditPanelInput{Action: PanelActionAdd, Type: multiview.PanelBalance, Result: &panel}))
	assert.Equal(t, multiview.PanelBalance, panel.Type)
	require.NoError(t, cmd.Execute(ctx, EditPanelInput{Action: PanelActionRemove, PanelID: "p1"}))

	assert.Equal(t, 1, service.toggleCalls)
	assert.Equal(t, 1, service.updateCalls)
	assert.Equal(t, 1, service.addCalls)
	assert.Equal(t, 1, service.removeCalls)

	assert.Error(t, cmd.Execute(ctx, EditPanelInput{Action: "explode", PanelID: "p1"}))
	assert.Error(t, cmd.Execute(ctx, EditPanelInput{Action: PanelActionToggle}))
}

func TestUpdateDraftCommandKeepsUnsetFields(t *testing.T) {
	service := &stubService{draft: multiview.Layout{ID: "L1", Name: "Ops", Cols: 2, Rows: 2}}
	cmd := NewUpdateDraftCommand(service, nil)

	require.NoError(t, cmd.Execute(context.Background(), UpdateDraftInput{Rows: 4}))
	assert.Equal(t, 0, service.renameCalls)
	assert.Equal(t, multiview.GridConfig{Cols: 2, Rows: 4}, service.lastGrid)

	require.NoError(t, cmd.Execute(context.Background(), UpdateDraftInput{Description: "late shift"}))
	assert.Equal(t, 1, service.renameCalls)
	assert.Equal(t, "Ops", service.lastName)
}

func TestBroadcastCommandStoresReceipt(t *testing.T) {
	service := &stubService{}
	var receipt multiview.BroadcastReceipt
	err := NewBroadcastCommand(service, nil).Execute(context.Background(), BroadcastInput{
		Audience: multiview.AudiencePremium,
		Result:   &receipt,
	})
	require.NoError(t, err)
	assert.Equal(t, multiview.AudiencePremium, receipt.Audience)
	assert.Equal(t, "L1", receipt.LayoutID)
}

func TestMaintenanceCommands(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	require.NoError(t, NewSetSimulatorCommand(service, telemetry).Execute(context.Background(), SetSimulatorInput{Active: true}))
	require.NoError(t, NewReloadLayoutsCommand(service, telemetry).Execute(context.Background(), ReloadLayoutsInput{Source: "fsnotify"}))
	require.NoError(t, NewCancelEditCommand(service, telemetry).Execute(context.Background(), CancelEditInput{}))
	assert.True(t, service.simulator)
	assert.Equal(t, 1, service.reloadCalls)
	assert.Equal(t, 1, service.cancelCalls)
	assert.Len(t, telemetry.events, 3)
}

func TestCommandsAgainstService(t *testing.T) {
	ctx := context.Background()
	service := multiview.NewService(multiview.Options{
		BroadcastOptions: []multiview.BroadcastOption{multiview.WithBroadcastDelay(0)},
	})

	var created multiview.Layout
	require.NoError(t, NewCreateLayoutCommand(service, nil).Execute(ctx, CreateLayoutInput{
		Name: "Ops", Cols: 2, Rows: 1, Result: &created,
	}))
	require.NoError(t, NewSelectLayoutCommand(service, nil).Execute(ctx, SelectLayoutInput{LayoutID: created.ID}))

	var draft multiview.Layout
	require.NoError(t, NewBeginEditCommand(service, nil).Execute(ctx, BeginEditInput{Result: &draft}))
	assert.Equal(t, created.ID, draft.ID)
	require.NoError(t, NewEditPanelCommand(service, nil).Execute(ctx, EditPanelInput{
		Action:  PanelActionToggle,
		PanelID: draft.Panels[0].ID,
	}))

	var committed multiview.Layout
	require.NoError(t, NewCommitEditCommand(service, nil).Execute(ctx, CommitEditInput{Result: &committed}))
	assert.False(t, committed.Panels[0].IsVisible)

	var receipt multiview.BroadcastReceipt
	require.NoError(t, NewBroadcastCommand(service, nil).Execute(ctx, BroadcastInput{
		Audience: multiview.AudienceAdmins,
		Result:   &receipt,
	}))
	assert.Equal(t, created.ID, receipt.LayoutID)

	err := NewBroadcastCommand(service, nil).Execute(ctx, BroadcastInput{Audience: "everyone"})
	assert.True(t, multiview.IsValidation(err))
}
