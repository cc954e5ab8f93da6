package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-multiview/components/multiview"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "multiview.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.Load(ctx, multiview.LayoutsKey)
	assert.True(t, errors.Is(err, multiview.ErrStorageKeyNotFound))

	require.NoError(t, store.Save(ctx, multiview.LayoutsKey, []byte(`[]`)))
	require.NoError(t, store.Save(ctx, multiview.LayoutsKey, []byte(`[{"id":"a"}]`)))
	data, err := store.Load(ctx, multiview.LayoutsKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(data))
}

func TestStoreBacksLayoutStore(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	service := multiview.NewService(multiview.Options{Storage: store})
	created, err := service.CreateLayout(ctx, multiview.CreateLayoutRequest{Name: "SQL", Cols: 1, Rows: 1})
	require.NoError(t, err)
	require.NoError(t, service.SetSimulatorActive(ctx, true))

	reopened := multiview.NewService(multiview.Options{Storage: store})
	got, err := reopened.Layout(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "SQL", got.Name)
	active, err := reopened.SimulatorActive(ctx)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	assert.Error(t, err)
}

func TestRebindPostgres(t *testing.T) {
	s := &Store{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE k = $1 AND v = $2", s.rebind("SELECT a FROM t WHERE k = ? AND v = ?"))
	s.driver = DriverSQLite
	assert.Equal(t, "k = ?", s.rebind("k = ?"))
}
