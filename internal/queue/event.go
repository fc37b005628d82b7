// Package queue defines message payloads exchanged over the message broker.
package queue

// PurchaseRecordedEvent is published after a checkout has been fully
// processed.  It carries enough for downstream consumers to log or feed
// analytics without querying the primary database.
type PurchaseRecordedEvent struct {
	BuyerID        uint64   `json:"buyer_id"`
	TransactionIDs []uint64 `json:"transaction_ids"`
	ProjectIDs     []uint64 `json:"project_ids"`
	TotalAmount    float64  `json:"total_amount"`
	RecordedAt     string   `json:"recorded_at"`
}
