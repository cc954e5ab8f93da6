package goadmin

import (
	"context"
	"errors"
	"fmt"

	activitypkg "github.com/goliatone/go-multiview/pkg/activity"
	multiviewpkg "github.com/goliatone/go-multiview/pkg/multiview"
)

// MenuBuilder upserts navigation entries in the host admin.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem is one navigation entry. Parent links layout shortcuts to the
// Multi-View root entry.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Parent   string
	Params   map[string]string
	Position int
}

// Config plugs the layout manager into an admin shell. When Service is nil
// and Storage is set, New builds the service itself.
type Config struct {
	EnableMultiView bool
	// LayoutShortcuts adds one child entry per stored layout on Bootstrap.
	LayoutShortcuts bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *multiviewpkg.Service
	Storage         multiviewpkg.Storage
	RootItem        MenuItem
	ActivityHooks   activitypkg.Hooks
	ActivityConfig  activitypkg.Config
}

const (
	defaultMenuCode    = "admin.main"
	defaultRootLabel   = "Multi-View"
	defaultRootRoute   = "admin.multiview"
	defaultRootIcon    = "layout-grid"
	layoutRoute        = "admin.multiview.layout"
	activeLayoutIcon   = "monitor-check"
	inactiveLayoutIcon = "monitor"
)

// Admin seeds multiview navigation for go-admin style hosts.
type Admin struct {
	cfg Config
}

func New(cfg Config) (*Admin, error) {
	if cfg.EnableMultiView && cfg.Service == nil {
		if cfg.Storage == nil {
			return nil, errors.New("goadmin: multiview service or storage is required when enabled")
		}
		cfg.Service = multiviewpkg.NewService(multiviewpkg.Options{
			Storage:        cfg.Storage,
			ActivityHooks:  cfg.ActivityHooks,
			ActivityConfig: cfg.ActivityConfig,
		})
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = defaultMenuCode
	}
	root := &cfg.RootItem
	if root.Label == "" {
		root.Label = defaultRootLabel
	}
	if root.Route == "" {
		root.Route = defaultRootRoute
	}
	if root.Icon == "" {
		root.Icon = defaultRootIcon
	}
	return &Admin{cfg: cfg}, nil
}

// MultiView returns the layout service, or nil when the feature is off.
func (a *Admin) MultiView() *multiviewpkg.Service {
	if !a.cfg.EnableMultiView {
		return nil
	}
	return a.cfg.Service
}

// MenuItems lists the entries Bootstrap would ensure, root first.
func (a *Admin) MenuItems(ctx context.Context) ([]MenuItem, error) {
	if !a.cfg.EnableMultiView {
		return nil, nil
	}
	items := []MenuItem{a.cfg.RootItem}
	if !a.cfg.LayoutShortcuts {
		return items, nil
	}
	layouts, err := a.cfg.Service.Layouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("goadmin: list layouts: %w", err)
	}
	for i, layout := range layouts {
		icon := inactiveLayoutIcon
		if layout.IsActive {
			icon = activeLayoutIcon
		}
		items = append(items, MenuItem{
			Label:    layout.Name,
			Route:    layoutRoute,
			Icon:     icon,
			Parent:   a.cfg.RootItem.Route,
			Params:   map[string]string{"id": layout.ID},
			Position: a.cfg.RootItem.Position + i + 1,
		})
	}
	return items, nil
}

// Bootstrap ensures every menu entry exists. It is safe to call again after
// layouts change.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableMultiView || a.cfg.MenuBuilder == nil {
		return nil
	}
	items, err := a.MenuItems(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return fmt.Errorf("goadmin: ensure %q: %w", item.Label, err)
		}
	}
	return nil
}
