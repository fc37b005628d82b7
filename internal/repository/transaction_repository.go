package repository

import (
	"context"
	"database/sql"

	"github.com/verdantlabs/verdant-backend/internal/model"
)

// TransactionRepo provides persistence for purchase transactions.  A
// transaction row and the paired credit increment must land in the same SQL
// transaction, so the write path is exposed only in a Tx variant.
type TransactionRepo struct{ DB *sql.DB }

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{DB: db} }

// CreateTx inserts a transaction within an existing SQL transaction and
// populates the generated ID on the record.  The caller commits or rolls
// back.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO transactions (company_id, project_id, amount, status, invoice_ref) VALUES (?,?,?,?,?)",
		t.CompanyID, t.ProjectID, t.Amount, t.Status, t.InvoiceRef)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ListByCompany returns a buyer's transactions, newest first.
func (r *TransactionRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,company_id,project_id,amount,status,invoice_ref,created_at FROM transactions WHERE company_id=? ORDER BY id DESC",
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Transaction, 0)
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.ProjectID, &t.Amount, &t.Status, &t.InvoiceRef, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
