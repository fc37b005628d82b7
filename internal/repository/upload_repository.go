package repository

import (
	"context"
	"database/sql"

	"github.com/verdantlabs/verdant-backend/internal/model"
)

// UploadRepo provides persistence for evidence uploads.  Rows are append
// only; there is no update or delete path.
type UploadRepo struct{ DB *sql.DB }

func NewUploadRepo(db *sql.DB) *UploadRepo { return &UploadRepo{DB: db} }

// Create inserts an upload row referencing the evidence store identifier.
func (r *UploadRepo) Create(ctx context.Context, projectID uint64, filename, cid, fileType string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO uploads (project_id, filename, cid, file_type) VALUES (?,?,?,?)",
		projectID, filename, cid, fileType)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByProject returns a project's uploads in insertion order.  The first
// element, if any, is the upload handed to the verifier on submit.
func (r *UploadRepo) ListByProject(ctx context.Context, projectID uint64) ([]model.Upload, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,project_id,filename,cid,file_type,created_at FROM uploads WHERE project_id=? ORDER BY id ASC",
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Upload, 0)
	for rows.Next() {
		var u model.Upload
		if err := rows.Scan(&u.ID, &u.ProjectID, &u.Filename, &u.CID, &u.FileType, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
