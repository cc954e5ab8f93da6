package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-multiview/components/multiview"
)

// CreateLayoutInput captures layout creation payloads. Result receives the
// stored layout when set.
type CreateLayoutInput struct {
	Actor
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Cols        int               `json:"cols"`
	Rows        int               `json:"rows"`
	Result      *multiview.Layout `json:"-"`
}

type createService interface {
	CreateLayout(ctx context.Context, req multiview.CreateLayoutRequest) (multiview.Layout, error)
}

// CreateLayoutCommand wraps Service.CreateLayout.
type CreateLayoutCommand struct {
	service   createService
	telemetry Telemetry
}

// NewCreateLayoutCommand creates the command.
func NewCreateLayoutCommand(service createService, telemetry Telemetry) *CreateLayoutCommand {
	return &CreateLayoutCommand{service: service, telemetry: orDiscard(telemetry)}
}

var _ gocommand.Commander[CreateLayoutInput] = (*CreateLayoutCommand)(nil)

// Execute creates the layout and stores it in msg.Result.
func (c *CreateLayoutCommand) Execute(ctx context.Context, msg CreateLayoutInput) error {
	if c.service == nil {
		return errors.New("create command requires service")
	}
	layout, err := c.service.CreateLayout(msg.context(ctx), multiview.CreateLayoutRequest{
		Name:        msg.Name,
		Description: msg.Description,
		Cols:        msg.Cols,
		Rows:        msg.Rows,
	})
	if msg.Result != nil && layout.ID != "" {
		*msg.Result = layout
	}
	if err != nil {
		return err
	}
	record(msg.context(ctx), c.telemetry, "create", map[string]any{"layout_id": layout.ID})
	return nil
}

// SelectLayoutInput names the layout to activate.
type SelectLayoutInput struct {
	Actor
	LayoutID string `json:"layout_id"`
}

type selectService interface {
	SelectLayout(ctx context.Context, id string) ([]multiview.Layout, error)
}

// SelectLayoutCommand wraps Service.SelectLayout.
type SelectLayoutCommand struct {
	service   selectService
	telemetry Telemetry
}

// NewSelectLayoutCommand creates the command.
func NewSelectLayoutCommand(service selectService, telemetry Telemetry) *SelectLayoutCommand {
	return &SelectLayoutCommand{service: service, telemetry: orDiscard(telemetry)}
}

var _ gocommand.Commander[SelectLayoutInput] = (*SelectLayoutCommand)(nil)

// Execute activates the layout. Unknown ids are ignored by the service.
func (c *SelectLayoutCommand) Execute(ctx context.Context, msg SelectLayoutInput) error {
	if c.service == nil {
		return errors.New("select command requires service")
	}
	if msg.LayoutID == "" {
		return errors.New("select command requires layout id")
	}
	if _, err := c.service.SelectLayout(msg.context(ctx), msg.LayoutID); err != nil {
		return err
	}
	record(msg.context(ctx), c.telemetry, "select", map[string]any{"layout_id": msg.LayoutID})
	return nil
}

// DeleteLayoutInput names the layout to remove.
type DeleteLayoutInput struct {
	Actor
	LayoutID string `json:"layout_id"`
}

type deleteService interface {
	DeleteLayout(ctx context.Context, id string) error
}

// DeleteLayoutCommand wraps Service.DeleteLayout.
type DeleteLayoutCommand struct {
	service   deleteService
	telemetry Telemetry
}

// NewDeleteLayoutCommand creates the command.
func NewDeleteLayoutCommand(service deleteService, telemetry Telemetry) *DeleteLayoutCommand {
	return &DeleteLayoutCommand{service: service, telemetry: orDiscard(telemetry)}
}

var _ gocommand.Commander[DeleteLayoutInput] = (*DeleteLayoutCommand)(nil)

// Execute removes the layout.
func (c *DeleteLayoutCommand) Execute(ctx context.Context, msg DeleteLayoutInput) error {
	if c.service == nil {
		return errors.New("delete command requires service")
	}
	if msg.LayoutID == "" {
		return errors.New("delete command requires layout id")
	}
	if err := c.service.DeleteLayout(msg.context(ctx), msg.LayoutID); err != nil {
		return err
	}
	record(msg.context(ctx), c.telemetry, "delete", map[string]any{"layout_id": msg.LayoutID})
	return nil
}
