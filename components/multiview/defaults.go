package multiview

import (
	"fmt"
	"time"
)

// Storage keys.
const (
	LayoutsKey   = "multiview.layouts"
	SimulatorKey = "ghost.simulator.active"
)

type seedLayout struct {
	id          string
	name        string
	description string
	grid        GridConfig
}

var defaultSeedLayouts = []seedLayout{
	{id: "layout-overview", name: "Mining Overview", description: "Hardware, balances and accounts at a glance", grid: GridConfig{Cols: 2, Rows: 2}},
	{id: "layout-operations", name: "Operations Wall", description: "Extended six panel broadcast wall", grid: GridConfig{Cols: 3, Rows: 2}},
}

// DefaultLayouts returns the deterministic first-run collection: a 2x2 and a
// 3x2 grid, the first one active.
func DefaultLayouts(catalog *Catalog, now time.Time) []Layout {
	if catalog == nil {
		catalog = NewCatalog()
	}
	layouts := make([]Layout, 0, len(defaultSeedLayouts))
	for i, seed := range defaultSeedLayouts {
		layout := Layout{
			ID:           seed.id,
			Name:         seed.name,
			Description:  seed.description,
			Cols:         seed.grid.Cols,
			Rows:         seed.grid.Rows,
			Panels:       generatePanels(catalog, seed.grid, func(pos int) string { return fmt.Sprintf("%s-panel-%d", seed.id, pos) }),
			IsActive:     i == 0,
			LastModified: now,
		}
		layouts = append(layouts, layout)
	}
	return layouts
}

// generatePanels synthesizes cols*rows panels cycling through the catalog.
func generatePanels(catalog *Catalog, grid GridConfig, id func(pos int) string) []Panel {
	count := grid.Cols * grid.Rows
	panels := make([]Panel, 0, count)
	for pos := 0; pos < count; pos++ {
		entry := catalog.At(pos)
		panels = append(panels, catalog.NewPanel(id(pos), entry.Type, pos))
	}
	return panels
}
