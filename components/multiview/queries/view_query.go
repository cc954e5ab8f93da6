package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-multiview/components/multiview"
)

type viewRenderer interface {
	RenderActive(ctx context.Context) (multiview.ActiveView, error)
	RenderDraft(ctx context.Context) (multiview.ActiveView, error)
}

// ViewInput selects between the active layout and the open draft.
type ViewInput struct {
	Draft bool `json:"draft"`
}

// ViewQuery renders the active layout, or the draft preview when requested.
type ViewQuery struct {
	service viewRenderer
}

// NewViewQuery builds the query.
func NewViewQuery(service viewRenderer) *ViewQuery {
	return &ViewQuery{service: service}
}

var _ gocommand.Querier[ViewInput, multiview.ActiveView] = (*ViewQuery)(nil)

// Query renders the requested view.
func (q *ViewQuery) Query(ctx context.Context, in ViewInput) (multiview.ActiveView, error) {
	if in.Draft {
		return q.service.RenderDraft(ctx)
	}
	return q.service.RenderActive(ctx)
}
