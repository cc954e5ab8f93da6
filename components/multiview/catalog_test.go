package multiview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogDefaultsFollowEnumerationOrder(t *testing.T) {
	catalog := NewCatalog()
	entries := catalog.Entries()
	require.Len(t, entries, len(PanelTypes()))
	for i, panelType := range PanelTypes() {
		assert.Equal(t, panelType, entries[i].Type)
		assert.NotEmpty(t, entries[i].Name)
		assert.NotEmpty(t, entries[i].Icon)
	}
	assert.Equal(t, PanelHardware, catalog.At(len(entries)).Type)
}

func TestCatalogRegisterOverridesMetadata(t *testing.T) {
	catalog := NewCatalog()
	require.NoError(t, catalog.Register(CatalogEntry{Type: PanelBalance, Name: "Treasury", Icon: "vault", RefreshIntervalSeconds: 120}))

	entry, ok := catalog.Lookup(PanelBalance)
	require.True(t, ok)
	assert.Equal(t, "Treasury", entry.Name)

	panel := catalog.NewPanel("p", PanelBalance, 3)
	assert.Equal(t, "Treasury", panel.Title)
	assert.Equal(t, 120, panel.RefreshIntervalSeconds)
	assert.Equal(t, 3, panel.Position)

	assert.Error(t, catalog.Register(CatalogEntry{Type: "weather", Name: "Weather"}))
	assert.Error(t, catalog.Register(CatalogEntry{Type: PanelBalance}))
	assert.Error(t, catalog.Register(CatalogEntry{Type: PanelBalance, Name: "x", RefreshIntervalSeconds: -1}))
}

func TestCatalogLookupUnknownType(t *testing.T) {
	entry, ok := NewCatalog().Lookup("weather")
	assert.False(t, ok)
	assert.Equal(t, "square", entry.Icon)
	assert.Equal(t, "weather", entry.Name)
}

func TestDecodeManifest(t *testing.T) {
	const payload = `
version: "1"
name: night-shift
panels:
  - type: hardware
    name: Rig Floor
    icon: server
    refresh_interval_seconds: 20
  - type: price_ticker
    name: Markets
    icon: chart
    refresh_interval_seconds: 10
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.Panels, 2)
	assert.Equal(t, "night-shift", doc.Name)
	assert.Equal(t, PanelHardware, doc.Panels[0].Type)
	require.NotNil(t, doc.Panels[0].RefreshIntervalSeconds)
	assert.Equal(t, 20, *doc.Panels[0].RefreshIntervalSeconds)

	catalog := NewCatalog()
	require.NoError(t, catalog.LoadManifest(doc))
	entry, _ := catalog.Lookup(PanelPriceTicker)
	assert.Equal(t, "Markets", entry.Name)
}

func TestManifestPartialOverrideKeepsCatalogValues(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader("panels:\n  - type: balance\n    refresh_interval_seconds: 0\n"))
	require.NoError(t, err)

	catalog := NewCatalog()
	require.NoError(t, catalog.LoadManifest(doc))
	entry, _ := catalog.Lookup(PanelBalance)
	assert.Equal(t, "Wallet Balance", entry.Name)
	assert.Equal(t, "wallet", entry.Icon)
	assert.Equal(t, 0, entry.RefreshIntervalSeconds)
}

func TestManifestValidateListsEveryProblem(t *testing.T) {
	negative := -5
	doc := &CatalogManifest{Version: "9", Panels: []ManifestPanel{
		{Type: "weather", Name: "Weather"},
		{Type: PanelHardware, RefreshIntervalSeconds: &negative},
	}}
	err := doc.Validate()
	require.Error(t, err)
	for _, want := range []string{`version "9"`, `unknown type "weather"`, "negative refresh"} {
		assert.Contains(t, err.Error(), want)
	}

	catalog := NewCatalog()
	require.Error(t, catalog.LoadManifest(doc))
	entry, _ := catalog.Lookup(PanelHardware)
	assert.Equal(t, 10, entry.RefreshIntervalSeconds)
}

func TestDecodeManifestRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"unknown field": "version: \"1\"\npanels: []\nwidgets: []\n",
		"unknown type":  "panels:\n  - type: weather\n    name: Weather\n",
		"no overrides":  "panels:\n  - type: hardware\n",
		"duplicate":     "panels:\n  - type: hardware\n    name: A\n  - type: hardware\n    name: B\n",
		"bad version":   "version: \"2\"\npanels: []\n",
	}
	for name, payload := range cases {
		_, err := DecodeManifest(strings.NewReader(payload))
		assert.Errorf(t, err, "expected error for %s", name)
	}
}

func TestCatalogLoadManifestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("panels:\n  - type: settings\n    name: Controls\n    icon: sliders\n"), 0o600))

	catalog := NewCatalog()
	doc, err := catalog.LoadManifestFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
	assert.Equal(t, ManifestVersion, doc.Version)

	entry, _ := catalog.Lookup(PanelSettings)
	assert.Equal(t, "Controls", entry.Name)

	_, err = catalog.LoadManifestFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
