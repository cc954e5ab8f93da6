package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-multiview/components/multiview"
)

type layoutLister interface {
	Layouts(ctx context.Context) ([]multiview.Layout, error)
}

// LayoutsInput carries no filters; the whole collection is always returned.
type LayoutsInput struct{}

// LayoutsQuery lists every stored layout in display order.
type LayoutsQuery struct {
	service layoutLister
}

// NewLayoutsQuery builds the query.
func NewLayoutsQuery(service layoutLister) *LayoutsQuery {
	return &LayoutsQuery{service: service}
}

var _ gocommand.Querier[LayoutsInput, []multiview.Layout] = (*LayoutsQuery)(nil)

// Query returns the layouts.
func (q *LayoutsQuery) Query(ctx context.Context, _ LayoutsInput) ([]multiview.Layout, error) {
	return q.service.Layouts(ctx)
}

type layoutGetter interface {
	Layout(ctx context.Context, id string) (multiview.Layout, error)
}

// LayoutInput names a single layout.
type LayoutInput struct {
	LayoutID string `json:"layout_id"`
}

// LayoutQuery fetches one layout by id.
type LayoutQuery struct {
	service layoutGetter
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutGetter) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[LayoutInput, multiview.Layout] = (*LayoutQuery)(nil)

// Query resolves the layout.
func (q *LayoutQuery) Query(ctx context.Context, in LayoutInput) (multiview.Layout, error) {
	return q.service.Layout(ctx, in.LayoutID)
}
