package multiview

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// layoutCommitter is the slice of LayoutStore the editor needs.
type layoutCommitter interface {
	Commit(ctx context.Context, layout Layout) (Layout, error)
}

// LayoutEditor holds a detached draft of one layout. Only one session exists at
// a time; Begin while a draft is open discards the previous draft.
type LayoutEditor struct {
	store   layoutCommitter
	catalog *Catalog
	newID   func() string

	mu    sync.Mutex
	draft *Layout
}

// NewLayoutEditor wires the editor to the store it commits into.
func NewLayoutEditor(store layoutCommitter, catalog *Catalog) *LayoutEditor {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &LayoutEditor{store: store, catalog: catalog, newID: uuid.NewString}
}

// Begin deep-copies layout into the draft. The store is not touched.
func (e *LayoutEditor) Begin(layout Layout) Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	draft := layout.Clone()
	e.draft = &draft
	return draft.Clone()
}

// Active reports whether an edit session is open.
func (e *LayoutEditor) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft != nil
}

// Draft returns a copy of the current draft.
func (e *LayoutEditor) Draft() (Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return Layout{}, preconditionError("draft", "no edit session in progress")
	}
	return e.draft.Clone(), nil
}

// TogglePanelVisibility flips IsVisible on the matching draft panel.
func (e *LayoutEditor) TogglePanelVisibility(panelID string) (Panel, error) {
	return e.mutatePanel("toggle", panelID, func(p *Panel) error {
		p.IsVisible = !p.IsVisible
		return nil
	})
}

// UpdatePanel merges patch into the matching draft panel.
func (e *LayoutEditor) UpdatePanel(panelID string, patch PanelPatch) (Panel, error) {
	return e.mutatePanel("update_panel", panelID, func(p *Panel) error {
		return applyPanelPatch(p, patch)
	})
}

func (e *LayoutEditor) mutatePanel(op, panelID string, fn func(p *Panel) error) (Panel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return Panel{}, preconditionError(op, "no edit session in progress")
	}
	for i := range e.draft.Panels {
		if e.draft.Panels[i].ID != panelID {
			continue
		}
		updated := e.draft.Panels[i]
		if err := fn(&updated); err != nil {
			return Panel{}, err
		}
		e.draft.Panels[i] = updated
		return updated, nil
	}
	return Panel{}, notFoundError(op, "panel %s not found in draft", panelID)
}

func applyPanelPatch(p *Panel, patch PanelPatch) error {
	const op = "update_panel"
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return validationError(op, "unknown panel type %q", *patch.Type)
		}
		p.Type = *patch.Type
	}
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.CustomURL != nil {
		p.CustomURL = strings.TrimSpace(*patch.CustomURL)
	}
	if patch.RefreshIntervalSeconds != nil {
		if *patch.RefreshIntervalSeconds < 0 {
			return validationError(op, "refresh interval must not be negative")
		}
		p.RefreshIntervalSeconds = *patch.RefreshIntervalSeconds
	}
	if patch.ColSpan != nil {
		if *patch.ColSpan <= 0 {
			return validationError(op, "column span must be positive")
		}
		p.ColSpan = *patch.ColSpan
	}
	if patch.RowSpan != nil {
		if *patch.RowSpan <= 0 {
			return validationError(op, "row span must be positive")
		}
		p.RowSpan = *patch.RowSpan
	}
	if patch.Position != nil {
		p.Position = *patch.Position
	}
	if patch.IsVisible != nil {
		p.IsVisible = *patch.IsVisible
	}
	if p.Type != PanelCustom {
		p.CustomURL = ""
	}
	return nil
}

// AddPanel appends a panel of type t with catalog defaults at the next position.
func (e *LayoutEditor) AddPanel(t PanelType) (Panel, error) {
	if !t.Valid() {
		return Panel{}, validationError("add_panel", "unknown panel type %q", t)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return Panel{}, preconditionError("add_panel", "no edit session in progress")
	}
	next := 0
	for _, p := range e.draft.Panels {
		if p.Position >= next {
			next = p.Position + 1
		}
	}
	panel := e.catalog.NewPanel(e.newID(), t, next)
	e.draft.Panels = append(e.draft.Panels, panel)
	return panel, nil
}

// RemovePanel drops the matching panel from the draft.
func (e *LayoutEditor) RemovePanel(panelID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return preconditionError("remove_panel", "no edit session in progress")
	}
	for i := range e.draft.Panels {
		if e.draft.Panels[i].ID == panelID {
			e.draft.Panels = append(e.draft.Panels[:i], e.draft.Panels[i+1:]...)
			return nil
		}
	}
	return notFoundError("remove_panel", "panel %s not found in draft", panelID)
}

// Rename updates the draft name and description.
func (e *LayoutEditor) Rename(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validationError("rename", "layout name is required")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return preconditionError("rename", "no edit session in progress")
	}
	e.draft.Name = name
	e.draft.Description = strings.TrimSpace(description)
	return nil
}

// Resize changes the draft grid dimensions. Panels are kept as-is.
func (e *LayoutEditor) Resize(grid GridConfig) error {
	if err := validateGrid("resize", grid); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return preconditionError("resize", "no edit session in progress")
	}
	e.draft.Cols = grid.Cols
	e.draft.Rows = grid.Rows
	return nil
}

// Commit hands the draft to the store and closes the session. A failed commit
// keeps the draft so the operator can fix it.
func (e *LayoutEditor) Commit(ctx context.Context) (Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return Layout{}, preconditionError("commit", "no edit session in progress")
	}
	committed, err := e.store.Commit(ctx, e.draft.Clone())
	if err != nil {
		return Layout{}, err
	}
	e.draft = nil
	return committed, nil
}

// Cancel discards the draft without persisting.
func (e *LayoutEditor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = nil
}
