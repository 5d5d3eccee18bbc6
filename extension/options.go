package extension

import (
	"time"

	"github.com/perknet/pointledger"
	"github.com/perknet/pointledger/plugin"
	"github.com/perknet/pointledger/store"
)

// Option configures the pointledger Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedgerOption passes a pointledger.Option through to the underlying
// engine.
func WithLedgerOption(opt pointledger.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, pointledger.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithSQLitePath sets the SQLite database file used when no store is
// provided programmatically.
func WithSQLitePath(path string) Option {
	return func(e *Extension) { e.config.SQLitePath = path }
}

// WithAuditInterval sets how often the daily audit worker recomputes roots.
func WithAuditInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.AuditInterval = d }
}

// WithEconomyFile sets the YAML file holding economic controls.
func WithEconomyFile(path string) Option {
	return func(e *Extension) { e.config.EconomyFile = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
