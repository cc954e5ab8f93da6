package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goliatone/go-users/pkg/types"
	"go.uber.org/zap"

	"github.com/goliatone/go-multiview/components/multiview"
	"github.com/goliatone/go-multiview/components/multiview/mqtthook"
	"github.com/goliatone/go-multiview/components/multiview/redisstore"
	"github.com/goliatone/go-multiview/components/multiview/sqlstore"
	"github.com/goliatone/go-multiview/pkg/activity"
	"github.com/goliatone/go-multiview/pkg/activity/usersink"
	"github.com/goliatone/go-multiview/pkg/logging"
)

type runtime struct {
	cfg       Config
	logger    *zap.Logger
	storage   multiview.Storage
	telemetry *multiview.ZapTelemetry
	hub       *multiview.EventHub
	service   *multiview.Service
	closers   []func() error
}

func newRuntime(ctx context.Context, cfg Config) (*runtime, error) {
	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, "multiviewctl")
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger, hub: multiview.NewEventHub(multiview.WithAllowedOrigins(cfg.Server.AllowedOrigins...))}

	storage, closer, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt.storage = storage
	if closer != nil {
		rt.closers = append(rt.closers, closer)
	}

	catalog := multiview.NewCatalog()
	if cfg.CatalogManifest != "" {
		if _, err := catalog.LoadManifestFile(cfg.CatalogManifest); err != nil {
			rt.Close()
			return nil, err
		}
	}

	hooks := multiview.MultiHook{rt.hub}
	if cfg.MQTT.Broker != "" {
		publisher, err := mqtthook.Connect(mqtthook.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
			QoS:      cfg.MQTT.QoS,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, func() error {
			publisher.Close()
			return nil
		})
		hooks = append(hooks, &multiview.NotificationsHook{Client: publisher, Reasons: cfg.MQTT.Reasons})
		logger.Info("mqtt publisher connected", zap.String("broker", cfg.MQTT.Broker))
	}

	rt.telemetry = multiview.NewZapTelemetry(logger)
	rt.service = multiview.NewService(multiview.Options{
		Storage:        storage,
		Catalog:        catalog,
		Validator:      multiview.NewSchemaValidator(),
		RefreshHook:    hooks,
		Telemetry:      rt.telemetry,
		ActivityHooks:  activity.Hooks{usersink.Hook{Sink: activityLog{logger: logger}}},
		ActivityConfig: activity.Config{Enabled: true, Channel: "multiview"},
		BroadcastDelay: cfg.BroadcastDelay,
	})
	return rt, nil
}

func openStorage(ctx context.Context, cfg Config) (multiview.Storage, func() error, error) {
	switch cfg.Storage.Driver {
	case StorageMemory:
		return multiview.NewMemoryStorage(), nil, nil
	case StorageFile:
		storage, err := multiview.NewFileStorage(cfg.Storage.Dir)
		return storage, nil, err
	case StorageSQLite, StoragePostgres:
		if cfg.Storage.Driver == StorageSQLite && cfg.Storage.Dir != "" {
			if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("multiviewctl: mkdir %s: %w", cfg.Storage.Dir, err)
			}
		}
		store, err := sqlstore.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case StorageRedis:
		client := redisstore.NewClient(redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("multiviewctl: redis ping: %w", err)
		}
		return redisstore.New(client, cfg.Redis.Prefix), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("multiviewctl: unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Close releases backends in reverse order and flushes the logger.
func (rt *runtime) Close() error {
	var errs error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	rt.closers = nil
	_ = rt.logger.Sync()
	return errs
}

// activityLog is a go-users activity sink that writes records to the log.
type activityLog struct {
	logger *zap.Logger
}

func (a activityLog) Log(_ context.Context, record types.ActivityRecord) error {
	a.logger.Info("activity",
		zap.String("verb", record.Verb),
		zap.String("object_type", record.ObjectType),
		zap.String("object_id", record.ObjectID),
		zap.String("channel", record.Channel),
		zap.Stringer("actor_id", record.ActorID),
		zap.Any("data", record.Data),
		zap.Time("occurred_at", record.OccurredAt),
	)
	return nil
}
