package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-multiview/components/multiview"
	"github.com/goliatone/go-multiview/components/multiview/commands"
)

// Executor is the write surface shared by HTTP transports. Commands that
// produce data write it through the Result field of their input.
type Executor interface {
	CreateLayout(ctx context.Context, input commands.CreateLayoutInput) error
	SelectLayout(ctx context.Context, input commands.SelectLayoutInput) error
	DeleteLayout(ctx context.Context, input commands.DeleteLayoutInput) error
	BeginEdit(ctx context.Context, input commands.BeginEditInput) error
	EditPanel(ctx context.Context, input commands.EditPanelInput) error
	UpdateDraft(ctx context.Context, input commands.UpdateDraftInput) error
	CommitEdit(ctx context.Context, input commands.CommitEditInput) error
	CancelEdit(ctx context.Context, input commands.CancelEditInput) error
	Broadcast(ctx context.Context, input commands.BroadcastInput) error
	SetSimulator(ctx context.Context, input commands.SetSimulatorInput) error
}

// CommandExecutor satisfies Executor by dispatching to go-command commanders.
type CommandExecutor struct {
	Create     gocommand.Commander[commands.CreateLayoutInput]
	Select     gocommand.Commander[commands.SelectLayoutInput]
	Delete     gocommand.Commander[commands.DeleteLayoutInput]
	Begin      gocommand.Commander[commands.BeginEditInput]
	Panel      gocommand.Commander[commands.EditPanelInput]
	Draft      gocommand.Commander[commands.UpdateDraftInput]
	Commit     gocommand.Commander[commands.CommitEditInput]
	Cancel     gocommand.Commander[commands.CancelEditInput]
	Distribute gocommand.Commander[commands.BroadcastInput]
	Simulator  gocommand.Commander[commands.SetSimulatorInput]
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires every command against service.
func NewCommandExecutor(service *multiview.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		Create:     commands.NewCreateLayoutCommand(service, telemetry),
		Select:     commands.NewSelectLayoutCommand(service, telemetry),
		Delete:     commands.NewDeleteLayoutCommand(service, telemetry),
		Begin:      commands.NewBeginEditCommand(service, telemetry),
		Panel:      commands.NewEditPanelCommand(service, telemetry),
		Draft:      commands.NewUpdateDraftCommand(service, telemetry),
		Commit:     commands.NewCommitEditCommand(service, telemetry),
		Cancel:     commands.NewCancelEditCommand(service, telemetry),
		Distribute: commands.NewBroadcastCommand(service, telemetry),
		Simulator:  commands.NewSetSimulatorCommand(service, telemetry),
	}
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], name string, input T) error {
	if cmd == nil {
		return errors.New("httpapi: " + name + " command not configured")
	}
	return cmd.Execute(ctx, input)
}

func (e *CommandExecutor) CreateLayout(ctx context.Context, input commands.CreateLayoutInput) error {
	return execute(ctx, e.Create, "create", input)
}

func (e *CommandExecutor) SelectLayout(ctx context.Context, input commands.SelectLayoutInput) error {
	return execute(ctx, e.Select, "select", input)
}

func (e *CommandExecutor) DeleteLayout(ctx context.Context, input commands.DeleteLayoutInput) error {
	return execute(ctx, e.Delete, "delete", input)
}

func (e *CommandExecutor) BeginEdit(ctx context.Context, input commands.BeginEditInput) error {
	return execute(ctx, e.Begin, "begin edit", input)
}

func (e *CommandExecutor) EditPanel(ctx context.Context, input commands.EditPanelInput) error {
	return execute(ctx, e.Panel, "edit panel", input)
}

func (e *CommandExecutor) UpdateDraft(ctx context.Context, input commands.UpdateDraftInput) error {
	return execute(ctx, e.Draft, "update draft", input)
}

func (e *CommandExecutor) CommitEdit(ctx context.Context, input commands.CommitEditInput) error {
	return execute(ctx, e.Commit, "commit", input)
}

func (e *CommandExecutor) CancelEdit(ctx context.Context, input commands.CancelEditInput) error {
	return execute(ctx, e.Cancel, "cancel", input)
}

func (e *CommandExecutor) Broadcast(ctx context.Context, input commands.BroadcastInput) error {
	return execute(ctx, e.Distribute, "broadcast", input)
}

func (e *CommandExecutor) SetSimulator(ctx context.Context, input commands.SetSimulatorInput) error {
	return execute(ctx, e.Simulator, "simulator", input)
}
