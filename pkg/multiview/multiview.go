package multiview

import (
	core "github.com/goliatone/go-multiview/components/multiview"
)

// Service exposes the underlying components/multiview.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Layout, Panel and Storage re-exports.
type (
	Layout  = core.Layout
	Panel   = core.Panel
	Storage = core.Storage
)

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}
