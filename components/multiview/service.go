package multiview

import (
	"context"
	"time"

	"github.com/goliatone/go-multiview/pkg/activity"
)

// Options configures the multiview Service. Collaborators are interfaces so
// hosts can swap storage, hooks and telemetry without touching the core.
type Options struct {
	Storage        Storage
	Catalog        *Catalog
	Validator      DocumentValidator
	RefreshHook    RefreshHook
	Telemetry      Telemetry
	ActivityHooks  activity.Hooks
	ActivityConfig activity.Config
	// BroadcastDelay overrides DefaultBroadcastDelay when positive.
	BroadcastDelay   time.Duration
	BroadcastOptions []BroadcastOption
	RendererOptions  []PanelRendererOption
	Now              func() time.Time
	NewID            func() string
}

// Service ties the layout store, the editor session, panel rendering and the
// broadcast control together and notifies hooks about every change.
type Service struct {
	opts      Options
	store     *LayoutStore
	editor    *LayoutEditor
	renderer  *PanelRenderer
	broadcast *BroadcastController
	simulator *SimulatorFlag
	activity  *activity.Emitter
}

// NewService builds a Service with safe defaults.
func NewService(opts Options) *Service {
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	if opts.Catalog == nil {
		opts.Catalog = NewCatalog()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)

	store := NewLayoutStore(StoreOptions{
		Storage:   opts.Storage,
		Catalog:   opts.Catalog,
		Validator: opts.Validator,
		Telemetry: opts.Telemetry,
		Now:       opts.Now,
		NewID:     opts.NewID,
	})
	editor := NewLayoutEditor(store, opts.Catalog)
	if opts.NewID != nil {
		editor.newID = opts.NewID
	}
	broadcastOpts := []BroadcastOption{WithBroadcastClock(opts.Now, nil)}
	if opts.BroadcastDelay > 0 {
		broadcastOpts = append(broadcastOpts, WithBroadcastDelay(opts.BroadcastDelay))
	}
	broadcastOpts = append(broadcastOpts, opts.BroadcastOptions...)

	return &Service{
		opts:      opts,
		store:     store,
		editor:    editor,
		renderer:  NewPanelRenderer(opts.Catalog, opts.RendererOptions...),
		broadcast: NewBroadcastController(store, broadcastOpts...),
		simulator: NewSimulatorFlag(opts.Storage),
		activity:  activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
}

// Catalog returns the panel catalog.
func (s *Service) Catalog() *Catalog {
	return s.opts.Catalog
}

// Layouts returns every stored layout in display order.
func (s *Service) Layouts(ctx context.Context) ([]Layout, error) {
	return s.store.Layouts(ctx)
}

// Layout returns one layout by id.
func (s *Service) Layout(ctx context.Context, id string) (Layout, error) {
	return s.store.Get(ctx, id)
}

// ActiveLayout returns the layout currently selected for display.
func (s *Service) ActiveLayout(ctx context.Context) (Layout, error) {
	return s.store.Active(ctx)
}

// CreateLayoutRequest captures the data needed to create a layout.
type CreateLayoutRequest struct {
	Name        string
	Description string
	Cols        int
	Rows        int
}

// CreateLayout appends a generated layout.
func (s *Service) CreateLayout(ctx context.Context, req CreateLayoutRequest) (Layout, error) {
	layout, err := s.store.Create(ctx, req.Name, req.Description, GridConfig{Cols: req.Cols, Rows: req.Rows})
	if err != nil {
		return Layout{}, err
	}
	if err := s.notify(ctx, ReasonCreate, layout); err != nil {
		return layout, err
	}
	s.record(ctx, "multiview.layout.create", layout.ID, map[string]any{
		"name":   layout.Name,
		"cols":   layout.Cols,
		"rows":   layout.Rows,
		"panels": len(layout.Panels),
	})
	return layout, nil
}

// SelectLayout makes id the active layout. Unknown ids leave the collection
// untouched and emit nothing.
func (s *Service) SelectLayout(ctx context.Context, id string) ([]Layout, error) {
	layouts, err := s.store.SelectActive(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, layout := range layouts {
		if layout.ID != id || !layout.IsActive {
			continue
		}
		if err := s.notify(ctx, ReasonSelect, layout); err != nil {
			return layouts, err
		}
		s.record(ctx, "multiview.layout.select", layout.ID, map[string]any{"name": layout.Name})
	}
	return layouts, nil
}

// DeleteLayout removes a layout.
func (s *Service) DeleteLayout(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.opts.RefreshHook.LayoutUpdated(ctx, LayoutEvent{
		LayoutID: id,
		Reason:   ReasonDelete,
		At:       s.opts.Now(),
	}); err != nil {
		return err
	}
	s.record(ctx, "multiview.layout.delete", id, nil)
	return nil
}

// BeginEdit opens an edit session on id, or on the active layout when id is empty.
func (s *Service) BeginEdit(ctx context.Context, id string) (Layout, error) {
	var (
		layout Layout
		err    error
	)
	if id == "" {
		layout, err = s.store.Active(ctx)
	} else {
		layout, err = s.store.Get(ctx, id)
	}
	if err != nil {
		return Layout{}, err
	}
	draft := s.editor.Begin(layout)
	s.opts.Telemetry.Record(ctx, "multiview.edit.begin", map[string]any{"layout_id": draft.ID})
	return draft, nil
}

// Draft returns the open edit draft.
func (s *Service) Draft(context.Context) (Layout, error) {
	return s.editor.Draft()
}

// TogglePanel flips visibility of a draft panel.
func (s *Service) TogglePanel(_ context.Context, panelID string) (Panel, error) {
	return s.editor.TogglePanelVisibility(panelID)
}

// UpdatePanel merges patch into a draft panel.
func (s *Service) UpdatePanel(_ context.Context, panelID string, patch PanelPatch) (Panel, error) {
	return s.editor.UpdatePanel(panelID, patch)
}

// AddPanel appends a panel of type t to the draft.
func (s *Service) AddPanel(_ context.Context, t PanelType) (Panel, error) {
	return s.editor.AddPanel(t)
}

// RemovePanel drops a panel from the draft.
func (s *Service) RemovePanel(_ context.Context, panelID string) error {
	return s.editor.RemovePanel(panelID)
}

// RenameDraft updates the draft name and description.
func (s *Service) RenameDraft(_ context.Context, name, description string) error {
	return s.editor.Rename(name, description)
}

// ResizeDraft changes the draft grid.
func (s *Service) ResizeDraft(_ context.Context, grid GridConfig) error {
	return s.editor.Resize(grid)
}

// CommitEdit persists the draft and closes the session.
func (s *Service) CommitEdit(ctx context.Context) (Layout, error) {
	layout, err := s.editor.Commit(ctx)
	if err != nil {
		s.opts.Telemetry.Record(ctx, "multiview.edit.commit_failed", map[string]any{"error": err.Error()})
		return Layout{}, err
	}
	if err := s.notify(ctx, ReasonCommit, layout); err != nil {
		return layout, err
	}
	s.record(ctx, "multiview.layout.commit", layout.ID, map[string]any{
		"name":   layout.Name,
		"panels": len(layout.Panels),
	})
	return layout, nil
}

// CancelEdit discards the draft.
func (s *Service) CancelEdit(ctx context.Context) {
	if !s.editor.Active() {
		return
	}
	s.editor.Cancel()
	s.opts.Telemetry.Record(ctx, "multiview.edit.cancel", nil)
}

// Editing reports whether an edit session is open.
func (s *Service) Editing() bool {
	return s.editor.Active()
}

// Broadcast records audience on the active layout and simulates distribution.
func (s *Service) Broadcast(ctx context.Context, audience Audience) (BroadcastReceipt, error) {
	receipt, err := s.broadcast.Broadcast(ctx, audience)
	if err != nil {
		return BroadcastReceipt{}, err
	}
	if err := s.opts.RefreshHook.LayoutUpdated(ctx, LayoutEvent{
		LayoutID: receipt.LayoutID,
		Reason:   ReasonBroadcast,
		Audience: audience,
		At:       receipt.CompletedAt,
	}); err != nil {
		return receipt, err
	}
	s.record(ctx, "multiview.layout.broadcast", receipt.LayoutID, map[string]any{
		"audience":    string(audience),
		"duration_ms": receipt.CompletedAt.Sub(receipt.StartedAt).Milliseconds(),
	})
	return receipt, nil
}

// BroadcastState reports whether a broadcast is in flight.
func (s *Service) BroadcastState() BroadcastState {
	return s.broadcast.State()
}

// ActiveView bundles the active layout with its rendered fragments.
type ActiveView struct {
	Layout    Layout     `json:"layout"`
	Fragments []Fragment `json:"fragments"`
}

// RenderActive renders the active layout.
func (s *Service) RenderActive(ctx context.Context) (ActiveView, error) {
	layout, err := s.store.Active(ctx)
	if err != nil {
		return ActiveView{}, err
	}
	return ActiveView{Layout: layout, Fragments: s.renderer.RenderLayout(layout)}, nil
}

// Render renders the layout id, or the active layout when id is empty.
func (s *Service) Render(ctx context.Context, id string) (ActiveView, error) {
	if id == "" {
		return s.RenderActive(ctx)
	}
	layout, err := s.store.Get(ctx, id)
	if err != nil {
		return ActiveView{}, err
	}
	return ActiveView{Layout: layout, Fragments: s.renderer.RenderLayout(layout)}, nil
}

// RenderDraft renders the open draft for preview.
func (s *Service) RenderDraft(context.Context) (ActiveView, error) {
	draft, err := s.editor.Draft()
	if err != nil {
		return ActiveView{}, err
	}
	return ActiveView{Layout: draft, Fragments: s.renderer.RenderLayout(draft)}, nil
}

// Reload re-reads the persisted collection, typically after an external change.
func (s *Service) Reload(ctx context.Context) ([]Layout, error) {
	layouts, err := s.store.Reload(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.opts.RefreshHook.LayoutUpdated(ctx, LayoutEvent{Reason: ReasonReload, At: s.opts.Now()}); err != nil {
		return layouts, err
	}
	s.opts.Telemetry.Record(ctx, "multiview.layouts.reload", map[string]any{"count": len(layouts)})
	return layouts, nil
}

// SimulatorActive reports the ghost-user simulator toggle.
func (s *Service) SimulatorActive(ctx context.Context) (bool, error) {
	return s.simulator.Active(ctx)
}

// SetSimulatorActive persists the ghost-user simulator toggle.
func (s *Service) SetSimulatorActive(ctx context.Context, active bool) error {
	if err := s.simulator.SetActive(ctx, active); err != nil {
		return err
	}
	s.opts.Telemetry.Record(ctx, "multiview.simulator.toggle", map[string]any{"active": active})
	return nil
}

func (s *Service) notify(ctx context.Context, reason string, layout Layout) error {
	snapshot := layout.Clone()
	return s.opts.RefreshHook.LayoutUpdated(ctx, LayoutEvent{
		LayoutID: layout.ID,
		Layout:   &snapshot,
		Reason:   reason,
		Audience: layout.Audience,
		At:       s.opts.Now(),
	})
}

// record writes telemetry and emits a matching activity event.
func (s *Service) record(ctx context.Context, verb, layoutID string, payload map[string]any) {
	data := map[string]any{"layout_id": layoutID}
	for k, v := range payload {
		data[k] = v
	}
	s.opts.Telemetry.Record(ctx, verb, data)
	if !s.activity.Enabled() {
		return
	}
	meta := ActivityFromContext(ctx)
	if err := s.activity.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    meta.ActorID,
		UserID:     meta.UserID,
		TenantID:   meta.TenantID,
		ObjectType: "layout",
		ObjectID:   layoutID,
		Metadata:   payload,
		OccurredAt: s.opts.Now(),
	}); err != nil {
		s.opts.Telemetry.Record(ctx, "multiview.activity.error", map[string]any{"error": err.Error(), "verb": verb})
	}
}
