package extension

import "time"

// Config holds the Ledger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.pointledger" or "pointledger"
// keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// SQLitePath is the path of a SQLite database file. When set and no
	// store was provided programmatically, the extension opens a SQLite
	// store at this path. When empty, an in-memory store is used.
	SQLitePath string `json:"sqlite_path" mapstructure:"sqlite_path" yaml:"sqlite_path"`

	// AuditInterval is how often the daily audit worker recomputes roots
	// (default: 1h).
	AuditInterval time.Duration `json:"audit_interval" mapstructure:"audit_interval" yaml:"audit_interval"`

	// EconomyFile is the path of a YAML file holding economic controls
	// (emission rates, burn rate, redemption limits). When empty the
	// built-in defaults apply.
	EconomyFile string `json:"economy_file" mapstructure:"economy_file" yaml:"economy_file"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		AuditInterval: time.Hour,
	}
}
