package activity

import "context"

// Config toggles activity emission.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps the configured channel on events and forwards them to hooks.
type Emitter struct {
	hooks  Hooks
	config Config
}

// NewEmitter builds an emitter. Without hooks the emitter is disabled.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if len(hooks) == 0 {
		cfg.Enabled = false
	}
	return &Emitter{hooks: hooks, config: cfg}
}

// Enabled reports whether Emit will deliver anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.config.Enabled && len(e.hooks) > 0
}

// Emit delivers evt when enabled.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.config.Channel
	}
	return e.hooks.Notify(ctx, evt)
}
