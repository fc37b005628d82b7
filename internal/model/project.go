package model

import "time"

// Project lifecycle statuses.  A project is created in DRAFT by its owning
// NGO, moves to SUBMITTED when handed over for review, and ends in APPROVED
// or REJECTED.  Status updates are admin-driven and unconditional; the
// forward-only invariant is a convention, not enforced by the store.
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
)

// Project mirrors the `projects` table.  Numeric planting fields are
// nullable: the create endpoint leaves them unset when the client omits them.
// CID and TokenID are populated only once a project reaches APPROVED.
type Project struct {
	ID           uint64     // projects.id
	OwnerID      uint64     // projects.owner_id -> users.id
	Title        string     // projects.title
	Description  string     // projects.description
	Area         *float64   // projects.area (hectares)
	Species      string     // projects.species
	Saplings     *int64     // projects.saplings
	Lat          *float64   // projects.lat
	Lng          *float64   // projects.lng
	Language     string     // projects.language
	Status       string     // projects.status
	CID          *string    // projects.cid (approved metadata content id)
	TokenID      *string    // projects.token_id (ledger certificate id)
	AILabel      *string    // projects.ai_label (latest verifier label)
	AIConfidence *float64   // projects.ai_confidence (latest verifier score)
	CreatedAt    time.Time  // projects.created_at
	UpdatedAt    time.Time  // projects.updated_at
}

// Upload mirrors the `uploads` table.  Rows are immutable once written.
type Upload struct {
	ID        uint64    // uploads.id
	ProjectID uint64    // uploads.project_id
	Filename  string    // uploads.filename (original client filename)
	CID       string    // uploads.cid (evidence store content identifier)
	FileType  string    // uploads.file_type (media type)
	CreatedAt time.Time // uploads.created_at
}

// Verification mirrors the `verifications` table.  One row is appended per
// submit event that had evidence to classify; resubmission appends another.
type Verification struct {
	ID         uint64    // verifications.id
	ProjectID  uint64    // verifications.project_id
	Label      string    // verifications.label
	Confidence float64   // verifications.confidence in [0,1]
	Meta       string    // verifications.meta (raw adapter result, JSON)
	CreatedAt  time.Time // verifications.created_at
}
