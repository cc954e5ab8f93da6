package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "multiview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, StorageFile, cfg.Storage.Driver)
	assert.Equal(t, ":9876", cfg.Server.Addr)
	assert.Equal(t, TransportFiber, cfg.Server.Transport)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: SQLite
  dir: /tmp/mv
broadcast_delay: 750ms
catalog_manifest: panels.yaml
mqtt:
  broker: tcp://localhost:1883
  reasons: [select, broadcast]
server:
  transport: http
  base_path: /ops
  allowed_origins: ["https://wall.example"]
ghost:
  base_url: http://admin.local
  timeout: 3s
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.Normalize()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, filepath.Join("/tmp/mv", "multiview.db"), cfg.Storage.DSN)
	assert.Equal(t, 750*time.Millisecond, cfg.BroadcastDelay)
	assert.Equal(t, "panels.yaml", cfg.CatalogManifest)
	assert.Equal(t, []string{"select", "broadcast"}, cfg.MQTT.Reasons)
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, "/ops", cfg.Server.BasePath)
	assert.Equal(t, []string{"https://wall.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ":9876", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Ghost.Timeout)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "storage: [oops"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"driver":    func(c *Config) { c.Storage.Driver = "etcd" },
		"postgres":  func(c *Config) { c.Storage.Driver = StoragePostgres; c.Storage.DSN = "" },
		"redis":     func(c *Config) { c.Storage.Driver = StorageRedis; c.Redis.Addr = "" },
		"transport": func(c *Config) { c.Server.Transport = "grpc" },
		"delay":     func(c *Config) { c.BroadcastDelay = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGlobalsOverrideConfigFile(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: redis\nlog:\n  level: warn\n")
	g := Globals{Config: path, Storage: " memory ", LogFormat: "json"}

	cfg, err := g.Resolve()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestRuntimeWithMemoryStorage(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Storage.Driver = StorageMemory
	cfg.BroadcastDelay = time.Millisecond
	cfg.Log.Level = "error"

	rt, err := newRuntime(ctx, cfg)
	require.NoError(t, err)
	defer rt.Close()

	layouts, err := rt.service.Layouts(ctx)
	require.NoError(t, err)
	assert.Len(t, layouts, 2)

	view, err := rt.service.Render(ctx, "")
	require.NoError(t, err)
	assert.True(t, view.Layout.IsActive)
}

func TestRuntimeWithSQLiteStorage(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Storage.Driver = StorageSQLite
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "state")
	cfg.Log.Level = "error"
	cfg.Normalize()

	rt, err := newRuntime(ctx, cfg)
	require.NoError(t, err)
	_, err = rt.service.SelectLayout(ctx, "layout-operations")
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	rt, err = newRuntime(ctx, cfg)
	require.NoError(t, err)
	defer rt.Close()
	active, err := rt.service.ActiveLayout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "layout-operations", active.ID)
}

func TestActivityLogWritesRecord(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := activityLog{logger: zap.New(core)}

	err := sink.Log(context.Background(), types.ActivityRecord{
		Verb:       "multiview.layout.select",
		ObjectType: "multiview.layout",
		ObjectID:   "layout-operations",
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "multiview.layout.select", fields["verb"])
	assert.Equal(t, "layout-operations", fields["object_id"])
}
