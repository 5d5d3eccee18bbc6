package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit               []OnInit
	onShutdown           []OnShutdown
	onEarnPosted         []OnEarnPosted
	onRedeemPosted       []OnRedeemPosted
	onPointsBurned       []OnPointsBurned
	onPointsExpired      []OnPointsExpired
	onAdjustmentPosted   []OnAdjustmentPosted
	onVerificationFailed []OnVerificationFailed
	onAuditRootComputed  []OnAuditRootComputed
	onBalanceRefreshed   []OnBalanceRefreshed
	rateStrategies       map[string]RateStrategy
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:         slog.Default(),
		rateStrategies: make(map[string]RateStrategy),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnEarnPosted); ok {
		r.onEarnPosted = append(r.onEarnPosted, v)
	}
	if v, ok := p.(OnRedeemPosted); ok {
		r.onRedeemPosted = append(r.onRedeemPosted, v)
	}
	if v, ok := p.(OnPointsBurned); ok {
		r.onPointsBurned = append(r.onPointsBurned, v)
	}
	if v, ok := p.(OnPointsExpired); ok {
		r.onPointsExpired = append(r.onPointsExpired, v)
	}
	if v, ok := p.(OnAdjustmentPosted); ok {
		r.onAdjustmentPosted = append(r.onAdjustmentPosted, v)
	}
	if v, ok := p.(OnVerificationFailed); ok {
		r.onVerificationFailed = append(r.onVerificationFailed, v)
	}
	if v, ok := p.(OnAuditRootComputed); ok {
		r.onAuditRootComputed = append(r.onAuditRootComputed, v)
	}
	if v, ok := p.(OnBalanceRefreshed); ok {
		r.onBalanceRefreshed = append(r.onBalanceRefreshed, v)
	}
	if v, ok := p.(RateStrategy); ok {
		r.rateStrategies[v.StrategyName()] = v
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnEarnPosted)(nil)).Elem(), "OnEarnPosted")
	checkInterface(reflect.TypeOf((*OnRedeemPosted)(nil)).Elem(), "OnRedeemPosted")
	checkInterface(reflect.TypeOf((*OnPointsBurned)(nil)).Elem(), "OnPointsBurned")
	checkInterface(reflect.TypeOf((*OnPointsExpired)(nil)).Elem(), "OnPointsExpired")
	checkInterface(reflect.TypeOf((*OnAdjustmentPosted)(nil)).Elem(), "OnAdjustmentPosted")
	checkInterface(reflect.TypeOf((*OnVerificationFailed)(nil)).Elem(), "OnVerificationFailed")
	checkInterface(reflect.TypeOf((*OnAuditRootComputed)(nil)).Elem(), "OnAuditRootComputed")
	checkInterface(reflect.TypeOf((*OnBalanceRefreshed)(nil)).Elem(), "OnBalanceRefreshed")
	checkInterface(reflect.TypeOf((*RateStrategy)(nil)).Elem(), "RateStrategy")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, ledger)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitEarnPosted emits an earn posted event.
func (r *Registry) EmitEarnPosted(ctx context.Context, txn interface{}) {
	r.mu.RLock()
	plugins := r.onEarnPosted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnEarnPosted(ctx, txn)
		}); err != nil {
			r.logger.Warn("plugin OnEarnPosted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRedeemPosted emits a redeem posted event.
func (r *Registry) EmitRedeemPosted(ctx context.Context, txn interface{}) {
	r.mu.RLock()
	plugins := r.onRedeemPosted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRedeemPosted(ctx, txn)
		}); err != nil {
			r.logger.Warn("plugin OnRedeemPosted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPointsBurned emits a points burned event.
func (r *Registry) EmitPointsBurned(ctx context.Context, txn interface{}, burned int64) {
	r.mu.RLock()
	plugins := r.onPointsBurned
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPointsBurned(ctx, txn, burned)
		}); err != nil {
			r.logger.Warn("plugin OnPointsBurned failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPointsExpired emits a points expired event.
func (r *Registry) EmitPointsExpired(ctx context.Context, txn interface{}, expired int64) {
	r.mu.RLock()
	plugins := r.onPointsExpired
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPointsExpired(ctx, txn, expired)
		}); err != nil {
			r.logger.Warn("plugin OnPointsExpired failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitAdjustmentPosted emits an adjustment posted event.
func (r *Registry) EmitAdjustmentPosted(ctx context.Context, txn interface{}) {
	r.mu.RLock()
	plugins := r.onAdjustmentPosted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAdjustmentPosted(ctx, txn)
		}); err != nil {
			r.logger.Warn("plugin OnAdjustmentPosted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitVerificationFailed emits a verification failed event.
func (r *Registry) EmitVerificationFailed(ctx context.Context, entryID, storedHash, computedHash string) {
	r.mu.RLock()
	plugins := r.onVerificationFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnVerificationFailed(ctx, entryID, storedHash, computedHash)
		}); err != nil {
			r.logger.Warn("plugin OnVerificationFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitAuditRootComputed emits an audit root computed event.
func (r *Registry) EmitAuditRootComputed(ctx context.Context, date, rootHash string, entryCount int) {
	r.mu.RLock()
	plugins := r.onAuditRootComputed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAuditRootComputed(ctx, date, rootHash, entryCount)
		}); err != nil {
			r.logger.Warn("plugin OnAuditRootComputed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBalanceRefreshed emits a balance refreshed event.
func (r *Registry) EmitBalanceRefreshed(ctx context.Context, accountID string, balance int64) {
	r.mu.RLock()
	plugins := r.onBalanceRefreshed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBalanceRefreshed(ctx, accountID, balance)
		}); err != nil {
			r.logger.Warn("plugin OnBalanceRefreshed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// GetRateStrategy returns a rate strategy by name.
func (r *Registry) GetRateStrategy(name string) RateStrategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rateStrategies[name]
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the posting pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
