package audithook

// Action constants for audit events.
const (
	// Posting actions
	ActionEarnPosted       = "earn.posted"
	ActionRedeemPosted     = "redeem.posted"
	ActionPointsBurned     = "points.burned"
	ActionPointsExpired    = "points.expired"
	ActionAdjustmentPosted = "adjustment.posted"

	// Integrity actions
	ActionVerificationFailed = "verification.failed"
	ActionAuditRootComputed  = "audit.root_computed"

	// Balance actions
	ActionBalanceRefreshed = "balance.refreshed"
)

// Resource constants for audit events.
const (
	ResourceTransaction = "transaction"
	ResourceEntry       = "entry"
	ResourceAuditRoot   = "audit_root"
	ResourceAccount     = "account"
)

// Category constants for audit events.
const (
	CategoryPosting   = "posting"
	CategoryIntegrity = "integrity"
	CategoryBalance   = "balance"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
