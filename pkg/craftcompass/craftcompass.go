// Package craftcompass is the public entry point to a Craft Compass
// inventory. It exposes the SQLite-backed store behind types.Inventory
// while keeping the implementation internal.
package craftcompass

import (
	"go.uber.org/zap"

	"github.com/Novaotic/craft-compass/internal/logging"
	"github.com/Novaotic/craft-compass/internal/sqlite"
	"github.com/Novaotic/craft-compass/pkg/types"
)

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/Novaotic/craft-compass/pkg/craftcompass.Version=...".
var Version = "0.3.0"

// Option configures an inventory.
type Option = sqlite.Option

// WithLogger routes storage log output to l.
func WithLogger(l *zap.Logger) Option {
	return sqlite.WithLogger(logging.FromZap(l))
}

// New creates a detached inventory. Call Attach with a Config to open it.
//
// Example:
//
//	inv := craftcompass.New()
//	err := inv.Attach(types.Config{DataDir: ".craft-compass-db"})
//	defer inv.Detach()
func New(opts ...Option) types.Inventory {
	return sqlite.NewBackend(opts...)
}

// Open creates an inventory and attaches it to the database described by
// config, creating the data directory and schema when missing.
func Open(config types.Config, opts ...Option) (types.Inventory, error) {
	inv := sqlite.NewBackend(opts...)
	if err := inv.Attach(config); err != nil {
		return nil, err
	}
	return inv, nil
}
