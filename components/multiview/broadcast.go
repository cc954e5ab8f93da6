package multiview

import (
	"context"
	"sync"
	"time"
)

// DefaultBroadcastDelay is the simulated distribution time.
const DefaultBroadcastDelay = 2 * time.Second

// BroadcastState is the state of the broadcast control.
type BroadcastState string

const (
	BroadcastIdle         BroadcastState = "idle"
	BroadcastBroadcasting BroadcastState = "broadcasting"
)

// BroadcastReceipt describes a completed simulated broadcast.
type BroadcastReceipt struct {
	LayoutID    string    `json:"layout_id"`
	LayoutName  string    `json:"layout_name"`
	Audience    Audience  `json:"audience"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

type broadcastStore interface {
	Active(ctx context.Context) (Layout, error)
	Commit(ctx context.Context, layout Layout) (Layout, error)
}

// BroadcastController simulates distributing the active layout. There is no
// transport: after the fixed delay the broadcast always succeeds.
type BroadcastController struct {
	store broadcastStore
	delay time.Duration
	now   func() time.Time
	sleep func(time.Duration)

	mu    sync.Mutex
	state BroadcastState
}

// BroadcastOption customizes a BroadcastController.
type BroadcastOption func(*BroadcastController)

// WithBroadcastDelay overrides the simulated delay.
func WithBroadcastDelay(delay time.Duration) BroadcastOption {
	return func(c *BroadcastController) {
		if delay >= 0 {
			c.delay = delay
		}
	}
}

// WithBroadcastClock overrides the clock and sleep functions.
func WithBroadcastClock(now func() time.Time, sleep func(time.Duration)) BroadcastOption {
	return func(c *BroadcastController) {
		if now != nil {
			c.now = now
		}
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewBroadcastController builds an idle controller.
func NewBroadcastController(store broadcastStore, options ...BroadcastOption) *BroadcastController {
	c := &BroadcastController{
		store: store,
		delay: DefaultBroadcastDelay,
		now:   func() time.Time { return time.Now().UTC() },
		sleep: time.Sleep,
		state: BroadcastIdle,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// State reports whether a broadcast is in flight.
func (c *BroadcastController) State() BroadcastState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Broadcast records audience on the active layout and blocks for the simulated
// delay. A second call while one is in flight is refused. The delay is not
// cancellable; the controller always returns to idle when it elapses.
func (c *BroadcastController) Broadcast(ctx context.Context, audience Audience) (BroadcastReceipt, error) {
	if !audience.Valid() {
		return BroadcastReceipt{}, validationError("broadcast", "unknown audience %q", audience)
	}
	if !c.begin() {
		return BroadcastReceipt{}, preconditionError("broadcast", "a broadcast is already in progress")
	}
	defer c.finish()

	started := c.now()
	active, err := c.store.Active(ctx)
	if err != nil {
		return BroadcastReceipt{}, err
	}
	active.Audience = audience
	committed, err := c.store.Commit(ctx, active)
	if err != nil {
		return BroadcastReceipt{}, err
	}
	c.sleep(c.delay)
	return BroadcastReceipt{
		LayoutID:    committed.ID,
		LayoutName:  committed.Name,
		Audience:    audience,
		StartedAt:   started,
		CompletedAt: c.now(),
	}, nil
}

func (c *BroadcastController) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == BroadcastBroadcasting {
		return false
	}
	c.state = BroadcastBroadcasting
	return true
}

func (c *BroadcastController) finish() {
	c.mu.Lock()
	c.state = BroadcastIdle
	c.mu.Unlock()
}
