package multiview

import (
	"context"
	"time"
)

// Storage is the durable key/value contract behind the layout store. Load
// returns ErrStorageKeyNotFound when nothing was saved under key.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// RefreshHook notifies transports (REST/WebSocket/MQTT) about layout changes.
type RefreshHook interface {
	LayoutUpdated(ctx context.Context, event LayoutEvent) error
}

// PanelType identifies what mock data category a panel displays.
type PanelType string

const (
	PanelHardware     PanelType = "hardware"
	PanelBalance      PanelType = "balance"
	PanelAccounts     PanelType = "accounts"
	PanelTransactions PanelType = "transactions"
	PanelStatistics   PanelType = "statistics"
	PanelActivityLog  PanelType = "activity_log"
	PanelPriceTicker  PanelType = "price_ticker"
	PanelSettings     PanelType = "settings"
	PanelCustom       PanelType = "custom"
)

var panelTypes = []PanelType{
	PanelHardware,
	PanelBalance,
	PanelAccounts,
	PanelTransactions,
	PanelStatistics,
	PanelActivityLog,
	PanelPriceTicker,
	PanelSettings,
	PanelCustom,
}

// PanelTypes returns the closed set of panel types in catalog order.
func PanelTypes() []PanelType {
	return append([]PanelType{}, panelTypes...)
}

// Valid reports whether t belongs to the known enumeration.
func (t PanelType) Valid() bool {
	for _, candidate := range panelTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Audience is a broadcast target segment.
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceAdmins   Audience = "admins"
	AudiencePremium  Audience = "premium"
	AudienceStandard Audience = "standard"
	AudienceSelected Audience = "selected"
)

var audiences = []Audience{AudienceAll, AudienceAdmins, AudiencePremium, AudienceStandard, AudienceSelected}

// Audiences lists the accepted broadcast segments.
func Audiences() []Audience {
	return append([]Audience{}, audiences...)
}

// Valid reports whether a is one of the accepted segments.
func (a Audience) Valid() bool {
	for _, candidate := range audiences {
		if candidate == a {
			return true
		}
	}
	return false
}

// Panel is a single dashboard tile.
type Panel struct {
	ID                     string    `json:"id"`
	Type                   PanelType `json:"type"`
	Title                  string    `json:"title"`
	ColSpan                int       `json:"colSpan,omitempty"`
	RowSpan                int       `json:"rowSpan,omitempty"`
	Position               int       `json:"position"`
	CustomURL              string    `json:"customUrl,omitempty"`
	RefreshIntervalSeconds int       `json:"refreshIntervalSeconds"`
	IsVisible              bool      `json:"isVisible"`
}

// Layout is a named grid arrangement of panels.
type Layout struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Cols         int       `json:"cols"`
	Rows         int       `json:"rows"`
	Panels       []Panel   `json:"panels"`
	IsActive     bool      `json:"isActive"`
	LastModified time.Time `json:"lastModified"`
	Audience     Audience  `json:"audience,omitempty"`
}

// Clone returns a deep copy so callers never share panel slices with the store.
func (l Layout) Clone() Layout {
	out := l
	if l.Panels != nil {
		out.Panels = make([]Panel, len(l.Panels))
		copy(out.Panels, l.Panels)
	}
	return out
}

// Panel returns the panel with the given id.
func (l Layout) Panel(id string) (Panel, bool) {
	for _, p := range l.Panels {
		if p.ID == id {
			return p, true
		}
	}
	return Panel{}, false
}

// GridConfig carries the grid dimensions for new layouts.
type GridConfig struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// PanelPatch is a partial panel update; nil fields are left untouched.
type PanelPatch struct {
	Title                  *string    `json:"title,omitempty"`
	Type                   *PanelType `json:"type,omitempty"`
	CustomURL              *string    `json:"customUrl,omitempty"`
	RefreshIntervalSeconds *int       `json:"refreshIntervalSeconds,omitempty"`
	ColSpan                *int       `json:"colSpan,omitempty"`
	RowSpan                *int       `json:"rowSpan,omitempty"`
	Position               *int       `json:"position,omitempty"`
	IsVisible              *bool      `json:"isVisible,omitempty"`
}

// LayoutEvent describes changes that transports might care about.
type LayoutEvent struct {
	LayoutID string    `json:"layout_id"`
	Layout   *Layout   `json:"layout,omitempty"`
	Reason   string    `json:"reason"`
	Audience Audience  `json:"audience,omitempty"`
	At       time.Time `json:"at"`
}

// Layout event reasons.
const (
	ReasonCreate    = "create"
	ReasonSelect    = "select"
	ReasonCommit    = "commit"
	ReasonDelete    = "delete"
	ReasonBroadcast = "broadcast"
	ReasonReload    = "reload"
)
