package model

import "time"

// Audit action labels.  Status changes use the "STATUS:<newStatus>" form.
const (
	ActionSubmitted = "SUBMITTED"
	ActionMinted    = "MINTED_CERTIFICATE"
)

// AuditLog mirrors the append-only `audit_logs` table.  One row is written
// for every state-changing administrative action; rows are never updated.
type AuditLog struct {
	ID        uint64    // audit_logs.id
	UserID    uint64    // audit_logs.user_id (acting principal)
	ProjectID *uint64   // audit_logs.project_id (nullable)
	Action    string    // audit_logs.action
	TxRef     *string   // audit_logs.tx_ref (ledger tx reference, nullable)
	Notes     *string   // audit_logs.notes (nullable)
	CreatedAt time.Time // audit_logs.created_at
}

// AnalyticsEvent mirrors the append-only `analytics_events` table.  Payload
// holds the raw JSON the producing handler recorded.
type AnalyticsEvent struct {
	ID        uint64    // analytics_events.id
	EventName string    // analytics_events.event_name
	Payload   string    // analytics_events.payload (JSON)
	CreatedAt time.Time // analytics_events.created_at
}
