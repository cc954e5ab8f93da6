package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-multiview/components/multiview"
)

// SetSimulatorInput toggles the ghost-user simulator.
type SetSimulatorInput struct {
	Actor
	Active bool `json:"active"`
}

type simulatorService interface {
	SetSimulatorActive(ctx context.Context, active bool) error
}

// SetSimulatorCommand persists the simulator flag.
type SetSimulatorCommand struct {
	service   simulatorService
	telemetry Telemetry
}

// NewSetSimulatorCommand creates the command.
func NewSetSimulatorCommand(service simulatorService, telemetry Telemetry) *SetSimulatorCommand {
	return &SetSimulatorCommand{service: service, telemetry: orDiscard(telemetry)}
}

var _ gocommand.Commander[SetSimulatorInput] = (*SetSimulatorCommand)(nil)

// Execute stores msg.Active.
func (c *SetSimulatorCommand) Execute(ctx context.Context, msg SetSimulatorInput) error {
	if c.service == nil {
		return errors.New("simulator command requires service")
	}
	if err := c.service.SetSimulatorActive(msg.context(ctx), msg.Active); err != nil {
		return err
	}
	record(msg.context(ctx), c.telemetry, "simulator", map[string]any{"active": msg.Active})
	return nil
}

// ReloadLayoutsInput re-reads persisted layouts.
type ReloadLayoutsInput struct {
	Source string `json:"source,omitempty"`
}

type reloadService interface {
	Reload(ctx context.Context) ([]multiview.Layout, error)
}

// ReloadLayoutsCommand refreshes the in-memory collection after an external
// write, for example from a file watcher.
type ReloadLayoutsCommand struct {
	service   reloadService
	telemetry Telemetry
}

// NewReloadLayoutsCommand creates the command.
func NewReloadLayoutsCommand(service reloadService, telemetry Telemetry) *ReloadLayoutsCommand {
	return &ReloadLayoutsCommand{service: service, telemetry: orDiscard(telemetry)}
}

var _ gocommand.Commander[ReloadLayoutsInput] = (*ReloadLayoutsCommand)(nil)

// Execute reloads the layouts.
func (c *ReloadLayoutsCommand) Execute(ctx context.Context, msg ReloadLayoutsInput) error {
	if c.service == nil {
		return errors.New("reload command requires service")
	}
	layouts, err := c.service.Reload(ctx)
	if err != nil {
		return err
	}
	record(ctx, c.telemetry, "reload", map[string]any{
		"source": msg.Source,
		"count":  len(layouts),
	})
	return nil
}
