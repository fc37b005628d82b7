package repository

import (
	"context"
	"database/sql"

	"github.com/verdantlabs/verdant-backend/internal/model"
)

// VerificationRepo provides persistence for automated verification results.
// Each submit event that had evidence appends one row; resubmission appends
// another rather than replacing the first.
type VerificationRepo struct{ DB *sql.DB }

func NewVerificationRepo(db *sql.DB) *VerificationRepo { return &VerificationRepo{DB: db} }

// Create appends a verification result for a project.
func (r *VerificationRepo) Create(ctx context.Context, projectID uint64, label string, confidence float64, meta string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO verifications (project_id, label, confidence, meta) VALUES (?,?,?,?)",
		projectID, label, confidence, meta)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByProject returns a project's verification history in insertion order.
func (r *VerificationRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Verification, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,project_id,label,confidence,meta,created_at FROM verifications WHERE project_id=? ORDER BY id ASC",
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Verification, 0)
	for rows.Next() {
		var v model.Verification
		if err := rows.Scan(&v.ID, &v.ProjectID, &v.Label, &v.Confidence, &v.Meta, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
