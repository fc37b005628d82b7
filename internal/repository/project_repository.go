package repository

import (
	"context"
	"database/sql"

	"github.com/verdantlabs/verdant-backend/internal/model"
)

// ProjectRepo provides persistence for projects and the read paths that
// include their related uploads and verifications.  Status changes go
// through UpdateStatus / SetCertificate so that every mutation stays a
// single statement; cross-step consistency is best-effort by design.
type ProjectRepo struct{ DB *sql.DB }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{DB: db} }

const projectCols = "id,owner_id,title,description,area,species,saplings,lat,lng,language,status,cid,token_id,ai_label,ai_confidence,created_at,updated_at"

// CreateParams carries the optional authoring fields for a new project.
// Pointer fields stay NULL in the database when the client omitted them.
type CreateParams struct {
	Title       string
	Description string
	Area        *float64
	Species     string
	Saplings    *int64
	Lat         *float64
	Lng         *float64
	Language    string
}

// Create inserts a project in DRAFT owned by ownerID and returns its ID.
func (r *ProjectRepo) Create(ctx context.Context, ownerID uint64, p CreateParams) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO projects (owner_id, title, description, area, species, saplings, lat, lng, language, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		ownerID, p.Title, p.Description, p.Area, p.Species, p.Saplings, p.Lat, p.Lng, p.Language, model.StatusDraft)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func scanProject(row interface{ Scan(...any) error }) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Area, &p.Species,
		&p.Saplings, &p.Lat, &p.Lng, &p.Language, &p.Status, &p.CID, &p.TokenID,
		&p.AILabel, &p.AIConfidence, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetByID fetches a single project row without relations.
func (r *ProjectRepo) GetByID(ctx context.Context, id uint64) (model.Project, error) {
	p, err := scanProject(r.DB.QueryRowContext(ctx,
		"SELECT "+projectCols+" FROM projects WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Project{}, ErrProjectNotFound
	}
	return p, err
}

// List returns all projects, newest first.
func (r *ProjectRepo) List(ctx context.Context) ([]model.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+projectCols+" FROM projects ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListByStatus returns projects in the given lifecycle status, newest first.
func (r *ProjectRepo) ListByStatus(ctx context.Context, status string) ([]model.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+projectCols+" FROM projects WHERE status=? ORDER BY created_at DESC, id DESC", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateStatus sets the lifecycle status unconditionally.  There is no
// forward-only guard here: admins may correct a terminal state.
func (r *ProjectRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE projects SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// SetVerdict copies the latest verifier result onto the project row.
func (r *ProjectRepo) SetVerdict(ctx context.Context, id uint64, label string, confidence float64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE projects SET ai_label=?, ai_confidence=? WHERE id=?", label, confidence, id)
	return err
}

// SetCertificate records the ledger-issued token and the metadata CID after
// approval.
func (r *ProjectRepo) SetCertificate(ctx context.Context, id uint64, tokenID, cid string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE projects SET token_id=?, cid=? WHERE id=?", tokenID, cid, id)
	return err
}

// Stats aggregates the dashboard numbers in one round trip.  AVG skips NULL
// confidences, so unverified projects do not drag the mean toward zero.
func (r *ProjectRepo) Stats(ctx context.Context) (total, approved int64, avgConfidence float64, err error) {
	var avg sql.NullFloat64
	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(status='APPROVED'),0),
		        AVG(ai_confidence)
		 FROM projects`).Scan(&total, &approved, &avg)
	if err != nil {
		return 0, 0, 0, err
	}
	if avg.Valid {
		avgConfidence = avg.Float64
	}
	return total, approved, avgConfidence, nil
}
