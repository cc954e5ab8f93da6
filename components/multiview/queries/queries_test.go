package queries

import (
	"context"
	"testing"

	"github.com/goliatone/go-multiview/components/multiview"
)

type stubService struct {
	listCalls   int
	getCalls    int
	activeCalls int
	draftCalls  int
	lastID      string
}

func (s *stubService) Layouts(context.Context) ([]multiview.Layout, error) {
	s.listCalls++
	return []multiview.Layout{{ID: "L1"}, {ID: "L2"}}, nil
}

func (s *stubService) Layout(_ context.Context, id string) (multiview.Layout, error) {
	s.getCalls++
	s.lastID = id
	return multiview.Layout{ID: id}, nil
}

func (s *stubService) RenderActive(context.Context) (multiview.ActiveView, error) {
	s.activeCalls++
	return multiview.ActiveView{Layout: multiview.Layout{ID: "L1"}}, nil
}

func (s *stubService) RenderDraft(context.Context) (multiview.ActiveView, error) {
	s.draftCalls++
	return multiview.ActiveView{Layout: multiview.Layout{ID: "draft"}}, nil
}

func TestLayoutsQuery(t *testing.T) {
	service := &stubService{}
	layouts, err := NewLayoutsQuery(service).Query(context.Background(), LayoutsInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(layouts) != 2 || service.listCalls != 1 {
		t.Fatalf("expected 2 layouts from 1 call, got %d from %d", len(layouts), service.listCalls)
	}
}

func TestLayoutQuery(t *testing.T) {
	service := &stubService{}
	layout, err := NewLayoutQuery(service).Query(context.Background(), LayoutInput{LayoutID: "L2"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if layout.ID != "L2" || service.lastID != "L2" {
		t.Fatalf("expected layout id propagation, got %q", layout.ID)
	}
}

func TestViewQuery(t *testing.T) {
	service := &stubService{}
	query := NewViewQuery(service)
	view, err := query.Query(context.Background(), ViewInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if view.Layout.ID != "L1" || service.activeCalls != 1 {
		t.Fatalf("expected active view")
	}
	view, err = query.Query(context.Background(), ViewInput{Draft: true})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if view.Layout.ID != "draft" || service.draftCalls != 1 {
		t.Fatalf("expected draft view")
	}
}
