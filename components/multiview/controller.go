package multiview

import (
	"context"
	"errors"
	"io"
)

// DefaultTemplate is the view rendered by Controller.RenderTemplate.
const DefaultTemplate = "multiview"

// ViewSource is the slice of Service the controller reads from.
type ViewSource interface {
	RenderActive(ctx context.Context) (ActiveView, error)
	RenderDraft(ctx context.Context) (ActiveView, error)
	Layouts(ctx context.Context) ([]Layout, error)
	SimulatorActive(ctx context.Context) (bool, error)
	Catalog() *Catalog
	BroadcastState() BroadcastState
	Editing() bool
}

var _ ViewSource = (*Service)(nil)

// ControllerOptions configures the controller.
type ControllerOptions struct {
	Service  ViewSource
	Renderer Renderer
	Template string
	Title    string
}

// Controller renders the multi-view page for HTTP transports.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service and renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	if opts.Title == "" {
		opts.Title = "Multi-View Dashboard"
	}
	return &Controller{opts: opts}
}

// View renders the active layout.
func (c *Controller) View(ctx context.Context) (ActiveView, error) {
	if c.opts.Service == nil {
		return ActiveView{}, errors.New("multiview: controller service not configured")
	}
	return c.opts.Service.RenderActive(ctx)
}

// LayoutPayload builds the template data for the current state.
func (c *Controller) LayoutPayload(ctx context.Context) (map[string]any, error) {
	view, err := c.View(ctx)
	if err != nil {
		return nil, err
	}
	svc := c.opts.Service
	layouts, err := svc.Layouts(ctx)
	if err != nil {
		return nil, err
	}
	simulator, err := svc.SimulatorActive(ctx)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"title":            c.opts.Title,
		"layout":           view.Layout,
		"fragments":        view.Fragments,
		"layouts":          layouts,
		"audiences":        Audiences(),
		"catalog":          svc.Catalog().Entries(),
		"broadcast_state":  string(svc.BroadcastState()),
		"simulator_active": simulator,
		"editing":          svc.Editing(),
	}
	if svc.Editing() {
		if draft, err := svc.RenderDraft(ctx); err == nil {
			payload["draft"] = draft.Layout
			payload["draft_fragments"] = draft.Fragments
		}
	}
	return payload, nil
}

// RenderTemplate writes the rendered page to out.
func (c *Controller) RenderTemplate(ctx context.Context, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("multiview: controller renderer not configured")
	}
	payload, err := c.LayoutPayload(ctx)
	if err != nil {
		return err
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, payload, out)
	return err
}
