package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-multiview/components/multiview/redisstore"
	"github.com/goliatone/go-multiview/components/multiview/sqlstore"
)

// Storage drivers accepted by storage.driver.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageSQLite   = sqlstore.DriverSQLite
	StoragePostgres = sqlstore.DriverPostgres
	StorageRedis    = "redis"
)

// Server transports accepted by server.transport.
const (
	TransportFiber = "fiber"
	TransportHTTP  = "http"
)

// Config is the multiviewctl configuration file.
type Config struct {
	Storage         StorageConfig `yaml:"storage"`
	Redis           RedisConfig   `yaml:"redis"`
	Log             LogConfig     `yaml:"log"`
	CatalogManifest string        `yaml:"catalog_manifest"`
	BroadcastDelay  time.Duration `yaml:"broadcast_delay"`
	MQTT            MQTTConfig    `yaml:"mqtt"`
	Server          ServerConfig  `yaml:"server"`
	Ghost           GhostConfig   `yaml:"ghost"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Dir    string `yaml:"dir"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MQTTConfig enables layout event publishing when Broker is set.
type MQTTConfig struct {
	Broker   string   `yaml:"broker"`
	ClientID string   `yaml:"client_id"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Topic    string   `yaml:"topic"`
	QoS      byte     `yaml:"qos"`
	Reasons  []string `yaml:"reasons"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	BasePath  string `yaml:"base_path"`
	Transport string `yaml:"transport"`
	// AllowedOrigins may open the live event stream; empty means same-origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type GhostConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig keeps state in ./.multiview and serves fiber on :9876.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{Driver: StorageFile, Dir: ".multiview"},
		Redis:   RedisConfig{Addr: "localhost:6379", Prefix: redisstore.DefaultPrefix},
		Log:     LogConfig{Level: "info", Format: "console"},
		Server:  ServerConfig{Addr: ":9876", BasePath: "/admin", Transport: TransportFiber},
	}
}

// LoadConfig reads path over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("multiviewctl: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("multiviewctl: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize lowercases enum values and fills derived defaults.
func (c *Config) Normalize() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Server.Transport = strings.ToLower(strings.TrimSpace(c.Server.Transport))
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageFile
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = ".multiview"
	}
	if c.Storage.Driver == StorageSQLite && c.Storage.DSN == "" {
		c.Storage.DSN = filepath.Join(c.Storage.Dir, "multiview.db")
	}
	if c.Server.Transport == "" {
		c.Server.Transport = TransportFiber
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":9876"
	}
}

// Validate reports unusable combinations.
func (c Config) Validate() error {
	var errs error
	switch c.Storage.Driver {
	case StorageMemory, StorageFile, StorageSQLite, StorageRedis:
	case StoragePostgres:
		if c.Storage.DSN == "" {
			errs = errors.Join(errs, errors.New("storage.dsn is required for postgres"))
		}
	default:
		errs = errors.Join(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Storage.Driver == StorageRedis && c.Redis.Addr == "" {
		errs = errors.Join(errs, errors.New("redis.addr is required for redis storage"))
	}
	switch c.Server.Transport {
	case TransportFiber, TransportHTTP:
	default:
		errs = errors.Join(errs, fmt.Errorf("unknown server transport %q", c.Server.Transport))
	}
	if c.BroadcastDelay < 0 {
		errs = errors.Join(errs, errors.New("broadcast_delay must not be negative"))
	}
	if errs != nil {
		return fmt.Errorf("multiviewctl: invalid config: %w", errs)
	}
	return nil
}
