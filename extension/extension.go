// Package extension provides the Forge extension adapter for the points
// ledger.
//
// It implements the forge.Extension interface to integrate the ledger
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.pointledger" or
// "pointledger" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/perknet/pointledger"
	"github.com/perknet/pointledger/economy"
	"github.com/perknet/pointledger/store"
	"github.com/perknet/pointledger/store/memory"
	"github.com/perknet/pointledger/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "pointledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Hash-verified loyalty points ledger"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the points ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *pointledger.Ledger
	store      store.Store
	ledgerOpts []pointledger.Option
}

// New creates a new pointledger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *pointledger.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Open a store unless one was provided programmatically.
	if e.store == nil {
		if e.config.SQLitePath != "" {
			s, err := sqlite.Open(e.config.SQLitePath)
			if err != nil {
				return fmt.Errorf("pointledger: open sqlite store: %w", err)
			}
			e.store = s
		} else {
			e.store = memory.New()
		}
	}

	opts, err := e.buildLedgerOpts()
	if err != nil {
		return err
	}

	e.engine = pointledger.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*pointledger.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("pointledger: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("pointledger: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildLedgerOpts constructs pointledger.Option values from the resolved
// config.
func (e *Extension) buildLedgerOpts() ([]pointledger.Option, error) {
	opts := make([]pointledger.Option, 0, len(e.ledgerOpts)+3)

	if e.config.AuditInterval > 0 {
		opts = append(opts, pointledger.WithAuditInterval(e.config.AuditInterval))
	}
	if e.config.DisableMigrate {
		opts = append(opts, pointledger.WithoutMigrate())
	}
	if e.config.EconomyFile != "" {
		cfg, err := economy.LoadFile(e.config.EconomyFile)
		if err != nil {
			return nil, fmt.Errorf("pointledger: load economy config: %w", err)
		}
		opts = append(opts, pointledger.WithEconomics(cfg))
	}

	// Append any pass-through ledger options.
	opts = append(opts, e.ledgerOpts...)

	return opts, nil
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("pointledger: configuration is required but not found in config files; " +
				"ensure 'extensions.pointledger' or 'pointledger' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("pointledger: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("sqlite_path", e.config.SQLitePath),
		forge.F("audit_interval", e.config.AuditInterval),
		forge.F("economy_file", e.config.EconomyFile),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.pointledger" first (namespaced pattern).
	if cm.IsSet("extensions.pointledger") {
		if err := cm.Bind("extensions.pointledger", &cfg); err == nil {
			e.Logger().Debug("pointledger: loaded config from file",
				forge.F("key", "extensions.pointledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("pointledger: failed to bind extensions.pointledger config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "pointledger" key.
	if cm.IsSet("pointledger") {
		if err := cm.Bind("pointledger", &cfg); err == nil {
			e.Logger().Debug("pointledger: loaded config from file",
				forge.F("key", "pointledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("pointledger: failed to bind pointledger config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.AuditInterval == 0 {
		cfg.AuditInterval = defaults.AuditInterval
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.SQLitePath == "" && programmaticConfig.SQLitePath != "" {
		yamlConfig.SQLitePath = programmaticConfig.SQLitePath
	}
	if yamlConfig.EconomyFile == "" && programmaticConfig.EconomyFile != "" {
		yamlConfig.EconomyFile = programmaticConfig.EconomyFile
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.AuditInterval == 0 && programmaticConfig.AuditInterval != 0 {
		yamlConfig.AuditInterval = programmaticConfig.AuditInterval
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
