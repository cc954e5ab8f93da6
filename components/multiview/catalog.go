package multiview

import (
	"fmt"
	"sync"

	"github.com/ettle/strcase"
)

// CatalogEntry is the display metadata for one panel type.
type CatalogEntry struct {
	Type                   PanelType `json:"type" yaml:"type"`
	Name                   string    `json:"name" yaml:"name"`
	Icon                   string    `json:"icon" yaml:"icon"`
	RefreshIntervalSeconds int       `json:"refresh_interval_seconds" yaml:"refresh_interval_seconds"`
}

// CSSClass returns the kebab-case class templates use for the panel type.
func (e CatalogEntry) CSSClass() string {
	return "panel-" + strcase.ToKebab(string(e.Type))
}

var defaultCatalogEntries = []CatalogEntry{
	{Type: PanelHardware, Name: "Mining Hardware", Icon: "cpu", RefreshIntervalSeconds: 10},
	{Type: PanelBalance, Name: "Wallet Balance", Icon: "wallet", RefreshIntervalSeconds: 30},
	{Type: PanelAccounts, Name: "Accounts", Icon: "users", RefreshIntervalSeconds: 60},
	{Type: PanelTransactions, Name: "Transactions", Icon: "arrow-left-right", RefreshIntervalSeconds: 15},
	{Type: PanelStatistics, Name: "Statistics", Icon: "bar-chart", RefreshIntervalSeconds: 30},
	{Type: PanelActivityLog, Name: "Activity Log", Icon: "list", RefreshIntervalSeconds: 5},
	{Type: PanelPriceTicker, Name: "Price Ticker", Icon: "trending-up", RefreshIntervalSeconds: 5},
	{Type: PanelSettings, Name: "Settings", Icon: "settings", RefreshIntervalSeconds: 0},
	{Type: PanelCustom, Name: "Custom Panel", Icon: "globe", RefreshIntervalSeconds: 0},
}

// DefaultCatalogEntries returns the built-in catalog in display order.
func DefaultCatalogEntries() []CatalogEntry {
	return append([]CatalogEntry{}, defaultCatalogEntries...)
}

// CatalogHook lets packages adjust catalog metadata during init().
type CatalogHook func(c *Catalog) error

var (
	globalHookMu sync.Mutex
	globalHooks  []CatalogHook
)

// RegisterCatalogHook registers a hook executed against new catalogs.
func RegisterCatalogHook(h CatalogHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Catalog maps panel types to display metadata. Order is fixed by the
// PanelType enumeration; registering only replaces metadata.
type Catalog struct {
	mu      sync.RWMutex
	entries map[PanelType]CatalogEntry
}

// NewCatalog builds a catalog seeded with the defaults and applies global hooks.
func NewCatalog() *Catalog {
	c := &Catalog{entries: make(map[PanelType]CatalogEntry, len(defaultCatalogEntries))}
	for _, entry := range defaultCatalogEntries {
		c.entries[entry.Type] = entry
	}
	_ = c.ApplyHooks()
	return c
}

// ApplyHooks executes registered catalog hooks.
func (c *Catalog) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(c); err != nil {
			return err
		}
	}
	return nil
}

// Register overrides metadata for a known panel type.
func (c *Catalog) Register(entry CatalogEntry) error {
	if !entry.Type.Valid() {
		return fmt.Errorf("multiview: unknown panel type %q", entry.Type)
	}
	if entry.Name == "" {
		return fmt.Errorf("multiview: catalog entry %s requires a name", entry.Type)
	}
	if entry.RefreshIntervalSeconds < 0 {
		return fmt.Errorf("multiview: catalog entry %s has negative refresh interval", entry.Type)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Type] = entry
	return nil
}

// Lookup returns metadata for t. Unknown types get a generic entry and false.
func (c *Catalog) Lookup(t PanelType) (CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.entries[t]; ok {
		return entry, true
	}
	return CatalogEntry{Type: t, Name: string(t), Icon: "square"}, false
}

// Entries returns all entries in catalog order.
func (c *Catalog) Entries() []CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CatalogEntry, 0, len(panelTypes))
	for _, t := range panelTypes {
		out = append(out, c.entries[t])
	}
	return out
}

// At returns the entry at index i, cycling through the catalog.
func (c *Catalog) At(i int) CatalogEntry {
	entries := c.Entries()
	if i < 0 {
		i = -i
	}
	return entries[i%len(entries)]
}

// NewPanel builds a panel of type t with catalog defaults.
func (c *Catalog) NewPanel(id string, t PanelType, position int) Panel {
	entry, _ := c.Lookup(t)
	return Panel{
		ID:                     id,
		Type:                   t,
		Title:                  entry.Name,
		ColSpan:                1,
		RowSpan:                1,
		Position:               position,
		RefreshIntervalSeconds: entry.RefreshIntervalSeconds,
		IsVisible:              true,
	}
}
