package multiview

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestVersion is the only catalog manifest format understood.
const ManifestVersion = "1"

// CatalogManifest overrides catalog metadata for known panel types. Fields
// left empty in a panel entry keep the catalog's current value.
type CatalogManifest struct {
	Version string          `json:"version" yaml:"version"`
	Name    string          `json:"name,omitempty" yaml:"name,omitempty"`
	Panels  []ManifestPanel `json:"panels" yaml:"panels"`
	Source  string          `json:"-" yaml:"-"`
}

// ManifestPanel is one override. RefreshIntervalSeconds is a pointer so an
// explicit 0 (manual refresh) differs from "unchanged".
type ManifestPanel struct {
	Type                   PanelType `json:"type" yaml:"type"`
	Name                   string    `json:"name,omitempty" yaml:"name,omitempty"`
	Icon                   string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	RefreshIntervalSeconds *int      `json:"refresh_interval_seconds,omitempty" yaml:"refresh_interval_seconds,omitempty"`
}

func (p ManifestPanel) empty() bool {
	return p.Name == "" && p.Icon == "" && p.RefreshIntervalSeconds == nil
}

// apply merges the override into entry.
func (p ManifestPanel) apply(entry CatalogEntry) CatalogEntry {
	entry.Type = p.Type
	if p.Name != "" {
		entry.Name = p.Name
	}
	if p.Icon != "" {
		entry.Icon = p.Icon
	}
	if p.RefreshIntervalSeconds != nil {
		entry.RefreshIntervalSeconds = *p.RefreshIntervalSeconds
	}
	return entry
}

// LoadManifestFile reads path and applies it to the catalog.
func (c *Catalog) LoadManifestFile(path string) (*CatalogManifest, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return doc, c.LoadManifest(doc)
}

// LoadManifest applies every override of doc. The document is validated
// first, so a bad manifest leaves the catalog untouched.
func (c *Catalog) LoadManifest(doc *CatalogManifest) error {
	if doc == nil {
		return errors.New("multiview: nil catalog manifest")
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	for _, panel := range doc.Panels {
		current, _ := c.Lookup(panel.Type)
		if err := c.Register(panel.apply(current)); err != nil {
			return fmt.Errorf("multiview: apply manifest %s: %w", doc.Source, err)
		}
	}
	return nil
}

// ReadManifest decodes the manifest at path and records it as the source.
func ReadManifest(path string) (*CatalogManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("multiview: open manifest: %w", err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest parses YAML (or JSON, which YAML accepts) and rejects
// unknown keys.
func DecodeManifest(r io.Reader) (*CatalogManifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	doc := &CatalogManifest{}
	switch err := dec.Decode(doc); {
	case errors.Is(err, io.EOF):
		return nil, errors.New("multiview: catalog manifest is empty")
	case err != nil:
		return nil, fmt.Errorf("multiview: parse catalog manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = ManifestVersion
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate reports every problem in the document at once.
func (doc *CatalogManifest) Validate() error {
	var errs []error
	if doc.Version != ManifestVersion {
		errs = append(errs, fmt.Errorf("unsupported version %q", doc.Version))
	}
	seen := map[PanelType]bool{}
	for i, panel := range doc.Panels {
		switch {
		case !panel.Type.Valid():
			errs = append(errs, fmt.Errorf("panels[%d]: unknown type %q", i, panel.Type))
		case seen[panel.Type]:
			errs = append(errs, fmt.Errorf("panels[%d]: %s listed twice", i, panel.Type))
		case panel.empty():
			errs = append(errs, fmt.Errorf("panels[%d]: %s overrides nothing", i, panel.Type))
		case panel.RefreshIntervalSeconds != nil && *panel.RefreshIntervalSeconds < 0:
			errs = append(errs, fmt.Errorf("panels[%d]: negative refresh interval", i))
		}
		seen[panel.Type] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiview: invalid catalog manifest: %w", errors.Join(errs...))
	}
	return nil
}
