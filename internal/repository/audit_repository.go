package repository

import (
	"context"
	"database/sql"

	"github.com/verdantlabs/verdant-backend/internal/model"
)

// AuditRepo appends rows to the audit_logs table.  The table is append only;
// no update or delete methods exist on purpose.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Append writes one audit entry.  projectID, txRef and notes may be nil.
func (r *AuditRepo) Append(ctx context.Context, userID uint64, projectID *uint64, action string, txRef, notes *string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_logs (user_id, project_id, action, tx_ref, notes) VALUES (?,?,?,?,?)",
		userID, projectID, action, txRef, notes)
	return err
}

// ListByProject returns a project's audit trail in insertion order.
func (r *AuditRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.AuditLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,project_id,action,tx_ref,notes,created_at FROM audit_logs WHERE project_id=? ORDER BY id ASC",
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AuditLog, 0)
	for rows.Next() {
		var a model.AuditLog
		if err := rows.Scan(&a.ID, &a.UserID, &a.ProjectID, &a.Action, &a.TxRef, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
