package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-multiview/components/multiview"
)

// BroadcastInput targets an audience segment with the active layout.
type BroadcastInput struct {
	Actor
	Audience multiview.Audience          `json:"audience"`
	Result   *multiview.BroadcastReceipt `json:"-"`
}

type broadcastService interface {
	Broadcast(ctx context.Context, audience multiview.Audience) (multiview.BroadcastReceipt, error)
}

// BroadcastCommand wraps Service.Broadcast. Execute blocks for the simulated
// distribution delay.
type BroadcastCommand struct {
	service   broadcastService
	telemetry Telemetry
}

// NewBroadcastCommand creates the command.
func NewBroadcastCommand(service broadcastService, telemetry Telemetry) *BroadcastCommand {
	return &BroadcastCommand{service: service, telemetry: orDiscard(telemetry)}
}

var _ gocommand.Commander[BroadcastInput] = (*BroadcastCommand)(nil)

// Execute runs the broadcast and stores the receipt in msg.Result.
func (c *BroadcastCommand) Execute(ctx context.Context, msg BroadcastInput) error {
	if c.service == nil {
		return errors.New("broadcast command requires service")
	}
	receipt, err := c.service.Broadcast(msg.context(ctx), msg.Audience)
	if msg.Result != nil && receipt.LayoutID != "" {
		*msg.Result = receipt
	}
	if err != nil {
		return err
	}
	record(msg.context(ctx), c.telemetry, "broadcast", map[string]any{
		"layout_id": receipt.LayoutID,
		"audience":  string(receipt.Audience),
	})
	return nil
}
