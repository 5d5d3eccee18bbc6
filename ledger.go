package pointledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/perknet/pointledger/account"
	"github.com/perknet/pointledger/economy"
	"github.com/perknet/pointledger/id"
	"github.com/perknet/pointledger/plugin"
	"github.com/perknet/pointledger/store"
	"github.com/perknet/pointledger/types"
)

// Ledger is the main points ledger engine.
type Ledger struct {
	store    store.Store
	plugins  *plugin.Registry
	logger   *slog.Logger
	calc     *economy.Calculator
	rates    economy.RateProvider
	balances *balanceCache

	// Background workers
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Configuration
	auditInterval  time.Duration
	disableMigrate bool
}

// New creates a new Ledger instance.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:         s,
		plugins:       plugin.NewRegistry(),
		logger:        slog.Default(),
		calc:          economy.NewCalculator(economy.DefaultConfig()),
		balances:      newBalanceCache(),
		stopChan:      make(chan struct{}),
		auditInterval: time.Hour,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.rates == nil {
		l.rates = l.calc.RateProvider()
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithEconomics sets the economic control configuration.
func WithEconomics(cfg economy.Config) Option {
	return func(l *Ledger) {
		l.calc = economy.NewCalculator(cfg)
	}
}

// WithRateProvider overrides emission rate resolution.
func WithRateProvider(p economy.RateProvider) Option {
	return func(l *Ledger) {
		l.rates = p
	}
}

// WithAuditInterval sets how often the daily audit worker recomputes roots.
func WithAuditInterval(interval time.Duration) Option {
	return func(l *Ledger) {
		l.auditInterval = interval
	}
}

// WithoutMigrate skips schema migration on Start. The caller is then
// responsible for migrating the store before any posting.
func WithoutMigrate() Option {
	return func(l *Ledger) {
		l.disableMigrate = true
	}
}

// Economics returns the active economic configuration.
func (l *Ledger) Economics() economy.Config {
	return l.calc.Config()
}

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry {
	return l.plugins
}

// Start begins background workers.
func (l *Ledger) Start(ctx context.Context) error {
	// Migrate database
	if !l.disableMigrate {
		if err := l.store.Migrate(ctx); err != nil {
			return err
		}
	}

	// Ensure the burn and reserve sentinels exist
	if err := l.ensureSystemAccounts(ctx); err != nil {
		return err
	}

	// Initialize plugins
	l.plugins.EmitInit(ctx, l)

	// Start daily audit worker
	l.wg.Add(1)
	go l.auditWorker(ctx)

	l.logger.Info("pointledger started",
		"audit_interval", l.auditInterval,
		"burn_rate", l.calc.Config().BurnRate,
		"min_redeem", l.calc.Config().MinRedeemPoints,
	)

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	close(l.stopChan)
	l.wg.Wait()

	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// ensureSystemAccounts creates the burn and reserve sentinels if missing.
func (l *Ledger) ensureSystemAccounts(ctx context.Context) error {
	sentinels := []struct {
		id   id.AccountID
		name string
	}{
		{id.SystemBurnAccount, "system burn"},
		{id.SystemReserveAccount, "system reserve"},
	}
	for _, s := range sentinels {
		_, err := l.store.GetAccount(ctx, s.id)
		if err == nil {
			continue
		}
		if !IsNotFound(err) {
			return err
		}
		a := &account.Account{
			Entity: types.NewEntity(),
			ID:     s.id,
			Kind:   account.KindSystem,
			Name:   s.name,
		}
		if err := l.store.CreateAccount(ctx, a); err != nil && !errors.Is(err, ErrAlreadyExists) {
			return err
		}
	}
	return nil
}

// auditWorker recomputes daily audit roots on a fixed interval. Recomputing
// the current day repeatedly is safe: the upsert replaces the record, and
// entries that arrived after a previous cutoff are simply folded in.
func (l *Ledger) auditWorker(ctx context.Context) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.auditInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			now := time.Now().UTC()
			for _, day := range []time.Time{now.AddDate(0, 0, -1), now} {
				if _, err := l.RunDailyAudit(ctx, day); err != nil {
					l.logger.Error("daily audit failed",
						"date", day.Format("2006-01-02"),
						"error", err,
					)
				}
			}
		}
	}
}

// ──────────────────────────────────────────────────
// Account Management
// ──────────────────────────────────────────────────

// CreateAccount creates a new customer or business account.
func (l *Ledger) CreateAccount(ctx context.Context, a *account.Account) error {
	if a.ID == (id.AccountID{}) {
		a.ID = id.NewAccountID()
	}
	if a.Kind == "" {
		a.Kind = account.KindCustomer
	}
	if a.Kind == account.KindSystem {
		return ValidationError{Field: "kind", Message: "system accounts are managed by the ledger"}
	}
	if a.Balance < 0 {
		return ValidationError{Field: "balance", Message: "initial balance must be non-negative"}
	}
	a.Entity = types.NewEntity()

	if err := l.store.CreateAccount(ctx, a); err != nil {
		return err
	}

	l.balances.set(a.ID, a.Balance)
	return nil
}

// GetAccount retrieves an account by ID.
func (l *Ledger) GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error) {
	return l.store.GetAccount(ctx, accountID)
}
