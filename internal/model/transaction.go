package model

import "time"

// TxCompleted is the only transaction status written in the current flow;
// the column is kept free-form for future payment states.
const TxCompleted = "COMPLETED"

// Transaction mirrors the `transactions` table.  A row records one purchase
// of credits by a COMPANY against a project.  Rows are immutable; the paired
// credit increment on the buyer happens in the same SQL transaction.
type Transaction struct {
	ID         uint64    `json:"id"`          // transactions.id
	CompanyID  uint64    `json:"company_id"`  // transactions.company_id -> users.id
	ProjectID  uint64    `json:"project_id"`  // transactions.project_id
	Amount     float64   `json:"amount"`      // transactions.amount
	Status     string    `json:"status"`      // transactions.status
	InvoiceRef string    `json:"invoice_ref"` // transactions.invoice_ref
	CreatedAt  time.Time `json:"created_at"`  // transactions.created_at
}
