package multiview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StoreOptions configures a LayoutStore.
type StoreOptions struct {
	Storage   Storage
	Catalog   *Catalog
	Validator DocumentValidator
	Telemetry Telemetry
	Key       string
	Now       func() time.Time
	NewID     func() string
}

// LayoutStore owns the durable collection of layouts and which one is active.
// Every mutation persists the full collection before returning.
type LayoutStore struct {
	opts    StoreOptions
	mu      sync.Mutex
	loaded  bool
	layouts []Layout
}

// NewLayoutStore builds a store with safe defaults. The collection is loaded
// lazily on first use.
func NewLayoutStore(opts StoreOptions) *LayoutStore {
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	if opts.Catalog == nil {
		opts.Catalog = NewCatalog()
	}
	if opts.Validator == nil {
		opts.Validator = NewSchemaValidator()
	}
	if opts.Key == "" {
		opts.Key = LayoutsKey
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &LayoutStore{opts: opts}
}

// Load returns a copy of the collection, reading storage on first use.
// Defaults are seeded when the persisted data is absent or unparsable;
// storage read failures are returned and leave the store unloaded.
func (s *LayoutStore) Load(ctx context.Context) ([]Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return cloneLayouts(s.layouts), nil
}

// Reload reads storage again and replaces the in-memory collection. On a
// read failure the previous collection stays in place.
func (s *LayoutStore) Reload(ctx context.Context) ([]Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}
	return cloneLayouts(s.layouts), nil
}

func (s *LayoutStore) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

func (s *LayoutStore) loadLocked(ctx context.Context) error {
	layouts, reason, err := s.readPersisted(ctx)
	if err != nil {
		return err
	}
	if reason != "" {
		s.opts.Telemetry.Record(ctx, "multiview.layouts.seed", map[string]any{"reason": reason})
		layouts = DefaultLayouts(s.opts.Catalog, s.opts.Now())
		if err := s.persist(ctx, layouts); err != nil {
			return err
		}
		s.layouts, s.loaded = layouts, true
		return nil
	}
	if normalizeActive(layouts) {
		s.opts.Telemetry.Record(ctx, "multiview.layouts.normalize", map[string]any{"count": len(layouts)})
		if err := s.persist(ctx, layouts); err != nil {
			return err
		}
	}
	s.layouts, s.loaded = layouts, true
	return nil
}

// readPersisted returns the decoded collection, or a non-empty reason when
// defaults must be seeded instead. Storage failures other than a missing key
// are returned as errors.
func (s *LayoutStore) readPersisted(ctx context.Context) ([]Layout, string, error) {
	data, err := s.opts.Storage.Load(ctx, s.opts.Key)
	if err != nil {
		if errors.Is(err, ErrStorageKeyNotFound) {
			return nil, "absent", nil
		}
		s.opts.Telemetry.Record(ctx, "multiview.layouts.read_error", map[string]any{"error": err.Error()})
		return nil, "", fmt.Errorf("multiview: read layouts: %w", err)
	}
	if err := s.opts.Validator.ValidateDocument(data); err != nil {
		s.opts.Telemetry.Record(ctx, "multiview.layouts.invalid", map[string]any{"error": err.Error()})
		return nil, "invalid", nil
	}
	var layouts []Layout
	if err := json.Unmarshal(data, &layouts); err != nil {
		s.opts.Telemetry.Record(ctx, "multiview.layouts.invalid", map[string]any{"error": err.Error()})
		return nil, "invalid", nil
	}
	if len(layouts) == 0 {
		return nil, "empty", nil
	}
	for i := range layouts {
		normalizePanels(layouts[i].Panels)
	}
	return layouts, "", nil
}

// normalizeActive enforces exactly one active layout. It reports whether the
// collection was changed.
func normalizeActive(layouts []Layout) bool {
	if len(layouts) == 0 {
		return false
	}
	first := -1
	changed := false
	for i := range layouts {
		if !layouts[i].IsActive {
			continue
		}
		if first == -1 {
			first = i
			continue
		}
		layouts[i].IsActive = false
		changed = true
	}
	if first == -1 {
		layouts[0].IsActive = true
		changed = true
	}
	return changed
}

func normalizePanels(panels []Panel) {
	for i := range panels {
		if panels[i].ColSpan == 0 {
			panels[i].ColSpan = 1
		}
		if panels[i].RowSpan == 0 {
			panels[i].RowSpan = 1
		}
	}
}

func (s *LayoutStore) persistLocked(ctx context.Context) error {
	return s.persist(ctx, s.layouts)
}

func (s *LayoutStore) persist(ctx context.Context, layouts []Layout) error {
	data, err := json.Marshal(layouts)
	if err != nil {
		return fmt.Errorf("multiview: encode layouts: %w", err)
	}
	if err := s.opts.Storage.Save(ctx, s.opts.Key, data); err != nil {
		return fmt.Errorf("multiview: persist layouts: %w", err)
	}
	return nil
}

// Layouts returns a copy of the collection in display order. Storage is read
// only on first use; call Reload to pick up external writes.
func (s *LayoutStore) Layouts(ctx context.Context) ([]Layout, error) {
	return s.Load(ctx)
}

// Get returns the layout with the given id.
func (s *LayoutStore) Get(ctx context.Context, id string) (Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return Layout{}, err
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return Layout{}, notFoundError("get", "layout %s not found", id)
	}
	return s.layouts[idx].Clone(), nil
}

// Active returns the active layout.
func (s *LayoutStore) Active(ctx context.Context) (Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return Layout{}, err
	}
	for _, layout := range s.layouts {
		if layout.IsActive {
			return layout.Clone(), nil
		}
	}
	return Layout{}, notFoundError("active", "no active layout")
}

// SelectActive marks the matching layout active and every other inactive.
// An unknown id is ignored and the unchanged collection is returned.
func (s *LayoutStore) SelectActive(ctx context.Context, id string) ([]Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if s.indexLocked(id) < 0 {
		s.opts.Telemetry.Record(ctx, "multiview.layout.select_ignored", map[string]any{"layout_id": id})
		return cloneLayouts(s.layouts), nil
	}
	next := cloneLayouts(s.layouts)
	for i := range next {
		next[i].IsActive = next[i].ID == id
	}
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.layouts = next
	return cloneLayouts(s.layouts), nil
}

// Commit replaces the stored layout with the same id and stamps LastModified.
// Activation is owned by SelectActive, so the stored IsActive flag is kept.
func (s *LayoutStore) Commit(ctx context.Context, updated Layout) (Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return Layout{}, err
	}
	idx := s.indexLocked(updated.ID)
	if idx < 0 {
		return Layout{}, notFoundError("commit", "layout %s not found", updated.ID)
	}
	next := updated.Clone()
	normalizePanels(next.Panels)
	if err := validateLayout("commit", next); err != nil {
		return Layout{}, err
	}
	next.IsActive = s.layouts[idx].IsActive
	next.LastModified = s.nextTimestamp(s.layouts[idx].LastModified)
	previous := s.layouts[idx]
	s.layouts[idx] = next
	if err := s.persistLocked(ctx); err != nil {
		s.layouts[idx] = previous
		return Layout{}, err
	}
	return next.Clone(), nil
}

// Create appends a new inactive layout whose cols*rows panels cycle through
// the catalog in order.
func (s *LayoutStore) Create(ctx context.Context, name, description string, grid GridConfig) (Layout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Layout{}, validationError("create", "layout name is required")
	}
	if err := validateGrid("create", grid); err != nil {
		return Layout{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return Layout{}, err
	}
	layoutID := s.opts.NewID()
	layout := Layout{
		ID:           layoutID,
		Name:         name,
		Description:  strings.TrimSpace(description),
		Cols:         grid.Cols,
		Rows:         grid.Rows,
		Panels:       generatePanels(s.opts.Catalog, grid, func(int) string { return s.opts.NewID() }),
		IsActive:     false,
		LastModified: s.opts.Now(),
	}
	s.layouts = append(s.layouts, layout)
	if err := s.persistLocked(ctx); err != nil {
		s.layouts = s.layouts[:len(s.layouts)-1]
		return Layout{}, err
	}
	return layout.Clone(), nil
}

// Delete removes a layout. The last remaining layout cannot be deleted; if the
// active layout is removed the new first layout becomes active.
func (s *LayoutStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if len(s.layouts) <= 1 {
		return preconditionError("delete", "cannot delete the last remaining layout")
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return notFoundError("delete", "layout %s not found", id)
	}
	previous := cloneLayouts(s.layouts)
	wasActive := s.layouts[idx].IsActive
	s.layouts = append(s.layouts[:idx], s.layouts[idx+1:]...)
	if wasActive {
		s.layouts[0].IsActive = true
	}
	if err := s.persistLocked(ctx); err != nil {
		s.layouts = previous
		return err
	}
	return nil
}

func (s *LayoutStore) indexLocked(id string) int {
	for i := range s.layouts {
		if s.layouts[i].ID == id {
			return i
		}
	}
	return -1
}

// nextTimestamp returns now, nudged past prev so commits always advance LastModified.
func (s *LayoutStore) nextTimestamp(prev time.Time) time.Time {
	now := s.opts.Now()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

// Catalog exposes the catalog used to synthesize panels.
func (s *LayoutStore) Catalog() *Catalog {
	return s.opts.Catalog
}

func cloneLayouts(layouts []Layout) []Layout {
	out := make([]Layout, len(layouts))
	for i, layout := range layouts {
		out[i] = layout.Clone()
	}
	return out
}
