package handler

import (
	"errors"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// Shared fixtures for the handler tests.

func repositoryDuplicateErr() error {
	return errors.New("Error 1062 (23000): Duplicate entry 'ngo@x.com' for key 'users.email'")
}

func userRow(id uint64, name, email, hash, role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "credits", "created_at", "updated_at"}).
		AddRow(id, name, email, hash, role, 0.0, now, now)
}

var projectCols = []string{
	"id", "owner_id", "title", "description", "area", "species", "saplings",
	"lat", "lng", "language", "status", "cid", "token_id", "ai_label",
	"ai_confidence", "created_at", "updated_at",
}

// projectRow returns a single-row result for a project in the given status.
// cid and tokenID may be empty to produce NULL columns.
func projectRow(id, ownerID uint64, status, cid, tokenID string) *sqlmock.Rows {
	now := time.Now()
	var cidVal, tokenVal any
	if cid != "" {
		cidVal = cid
	}
	if tokenID != "" {
		tokenVal = tokenID
	}
	return sqlmock.NewRows(projectCols).
		AddRow(id, ownerID, "A", "", 0.5, "", nil, nil, nil, "", status, cidVal, tokenVal, nil, nil, now, now)
}

func uploadRow(id, projectID uint64, filename, cid string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "project_id", "filename", "cid", "file_type", "created_at"}).
		AddRow(id, projectID, filename, cid, "image/jpeg", now)
}
