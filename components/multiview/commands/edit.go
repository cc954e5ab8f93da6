package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-multiview/components/multiview"
)

// BeginEditInput opens an edit session. An empty LayoutID edits the active layout.
type BeginEditInput struct {
	Actor
	LayoutID string            `json:"layout_id,omitempty"`
	Result   *multiview.Layout `json:"-"`
}

type beginService interface {
	BeginEdit(ctx context.Context, id string) (multiview.Layout, error)
}

// BeginEditCommand wraps Service.BeginEdit.
type BeginEditCommand struct {
	service   beginService
	telemetry Telemetry
}

// NewBeginEditCommand creates the command.
func NewBeginEditCommand(service beginService, telemetry Telemetry) *BeginEditCommand {
	return &BeginEditCommand{service: service, telemetry: orDiscard(telemetry)}
}

var _ gocommand.Commander[BeginEditInput] = (*BeginEditCommand)(nil)

// Execute opens the session and stores the draft in msg.Result.
func (c *BeginEditCommand) Execute(ctx context.Context, msg BeginEditInput) error {
	if c.service == nil {
		return errors.New("begin edit command requires service")
	}
	draft, err := c.service.BeginEdit(msg.context(ctx), msg.LayoutID)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = draft
	}
	record(msg.context(ctx), c.telemetry, "begin_edit", map[string]any{"layout_id": draft.ID})
	return nil
}

// PanelAction selects the draft mutation performed by EditPanelCommand.
type PanelAction string

const (
	PanelActionToggle PanelAction = "toggle"
	PanelActionUpdate PanelAction = "update"
	PanelActionAdd    PanelAction = "add"
	PanelActionRemove PanelAction = "remove"
)

// EditPanelInput describes a single draft panel mutation. PanelID is ignored
// for add, Type is only read for add.
type EditPanelInput struct {
	Actor
	Action  PanelAction          `json:"action"`
	PanelID string               `json:"panel_id,omitempty"`
	Type    multiview.PanelType  `json:"type,omitempty"`
	Patch   multiview.PanelPatch `json:"patch"`
	Result  *multiview.Panel     `json:"-"`
}

type panelEditor interface {
	TogglePanel(ctx context.Context, panelID string) (multiview.Panel, error)
	UpdatePanel(ctx context.Context, panelID string, patch multiview.PanelPatch) (multiview.Panel, error)
	AddPanel(ctx context.Context, t multiview.PanelType) (multiview.Panel, error)
	RemovePanel(ctx context.Context, panelID string) error
}

// EditPanelCommand applies panel mutations to the open draft.
type EditPanelCommand struct {
	service   panelEditor
	telemetry Telemetry
}

// NewEditPanelCommand creates the command.
func NewEditPanelCommand(service panelEditor, telemetry Telemetry) *EditPanelCommand {
	return &EditPanelCommand{service: service, telemetry: orDiscard(telemetry)}
}

var _ gocommand.Commander[EditPanelInput] = (*EditPanelCommand)(nil)

// Execute dispatches on msg.Action.
func (c *EditPanelCommand) Execute(ctx context.Context, msg EditPanelInput) error {
	if c.service == nil {
		return errors.New("edit panel command requires service")
	}
	if msg.Action != PanelActionAdd && msg.PanelID == "" {
		return errors.New("edit panel command requires panel id")
	}
	ctx = msg.context(ctx)

	var (
		panel multiview.Panel
		err   error
	)
	switch msg.Action {
	case PanelActionToggle:
		panel, err = c.service.TogglePanel(ctx, msg.PanelID)
	case PanelActionUpdate:
		panel, err = c.service.UpdatePanel(ctx, msg.PanelID, msg.Patch)
	case PanelActionAdd:
		panel, err = c.service.AddPanel(ctx, msg.Type)
	case PanelActionRemove:
		err = c.service.RemovePanel(ctx, msg.PanelID)
		panel = multiview.Panel{ID: msg.PanelID}
	default:
		return fmt.Errorf("edit panel command: unknown action %q", msg.Action)
	}
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = panel
	}
	record(msg.context(ctx), c.telemetry, "edit_panel", map[string]any{
		"action":   string(msg.Action),
		"panel_id": panel.ID,
	})
	return nil
}

// UpdateDraftInput renames or resizes the draft. Zero values are left untouched.
type UpdateDraftInput struct {
	Actor
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Cols        int    `json:"cols,omitempty"`
	Rows        int    `json:"rows,omitempty"`
}

type draftService interface {
	Draft(ctx context.Context) (multiview.Layout, error)
	RenameDraft(ctx context.Context, name, description string) error
	ResizeDraft(ctx context.Context, grid multiview.GridConfig) error
}

// UpdateDraftCommand edits draft-level attributes.
type UpdateDraftCommand struct {
	service   draftService
	telemetry Telemetry
}

// NewUpdateDraftCommand creates the command.
func NewUpdateDraftCommand(service draftService, telemetry Telemetry) *UpdateDraftCommand {
	return &UpdateDraftCommand{service: service, telemetry: orDiscard(telemetry)}
}

var _ gocommand.Commander[UpdateDraftInput] = (*UpdateDraftCommand)(nil)

// Execute applies the rename first, then the resize.
func (c *UpdateDraftCommand) Execute(ctx context.Context, msg UpdateDraftInput) error {
	if c.service == nil {
		return errors.New("update draft command requires service")
	}
	ctx = msg.context(ctx)
	draft, err := c.service.Draft(ctx)
	if err != nil {
		return err
	}
	if msg.Name != "" || msg.Description != "" {
		name := msg.Name
		if name == "" {
			name = draft.Name
		}
		if err := c.service.RenameDraft(ctx, name, msg.Description); err != nil {
			return err
		}
	}
	if msg.Cols != 0 || msg.Rows != 0 {
		grid := multiview.GridConfig{Cols: draft.Cols, Rows: draft.Rows}
		if msg.Cols != 0 {
			grid.Cols = msg.Cols
		}
		if msg.Rows != 0 {
			grid.Rows = msg.Rows
		}
		if err := c.service.ResizeDraft(ctx, grid); err != nil {
			return err
		}
	}
	record(msg.context(ctx), c.telemetry, "update_draft", map[string]any{"layout_id": draft.ID})
	return nil
}

// CommitEditInput persists the draft.
type CommitEditInput struct {
	Actor
	Result *multiview.Layout `json:"-"`
}

type commitService interface {
	CommitEdit(ctx context.Context) (multiview.Layout, error)
}

// CommitEditCommand wraps Service.CommitEdit.
type CommitEditCommand struct {
	service   commitService
	telemetry Telemetry
}

// NewCommitEditCommand creates the command.
func NewCommitEditCommand(service commitService, telemetry Telemetry) *CommitEditCommand {
	return &CommitEditCommand{service: service, telemetry: orDiscard(telemetry)}
}

var _ gocommand.Commander[CommitEditInput] = (*CommitEditCommand)(nil)

// Execute commits the draft and stores the persisted layout in msg.Result.
func (c *CommitEditCommand) Execute(ctx context.Context, msg CommitEditInput) error {
	if c.service == nil {
		return errors.New("commit command requires service")
	}
	layout, err := c.service.CommitEdit(msg.context(ctx))
	if msg.Result != nil && layout.ID != "" {
		*msg.Result = layout
	}
	if err != nil {
		return err
	}
	record(msg.context(ctx), c.telemetry, "commit", map[string]any{"layout_id": layout.ID})
	return nil
}

// CancelEditInput discards the draft.
type CancelEditInput struct {
	Actor
}

type cancelService interface {
	CancelEdit(ctx context.Context)
}

// CancelEditCommand wraps Service.CancelEdit.
type CancelEditCommand struct {
	service   cancelService
	telemetry Telemetry
}

// NewCancelEditCommand creates the command.
func NewCancelEditCommand(service cancelService, telemetry Telemetry) *CancelEditCommand {
	return &CancelEditCommand{service: service, telemetry: orDiscard(telemetry)}
}

var _ gocommand.Commander[CancelEditInput] = (*CancelEditCommand)(nil)

// Execute discards any open session; it never fails once wired.
func (c *CancelEditCommand) Execute(ctx context.Context, msg CancelEditInput) error {
	if c.service == nil {
		return errors.New("cancel command requires service")
	}
	c.service.CancelEdit(msg.context(ctx))
	record(msg.context(ctx), c.telemetry, "cancel", nil)
	return nil
}
