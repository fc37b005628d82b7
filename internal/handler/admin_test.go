package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/verdant-backend/internal/ledger"
	"github.com/verdantlabs/verdant-backend/internal/model"
	"github.com/verdantlabs/verdant-backend/internal/repository"
)

func newAdminHandler(db *sql.DB) *AdminHandler {
	return NewAdminHandler(
		repository.NewProjectRepo(db),
		repository.NewUploadRepo(db),
		repository.NewUserRepo(db),
		repository.NewAuditRepo(db),
		ledger.New(""), // mock certificates
		nil,            // no redis in tests
	)
}

func TestSetStatusRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE projects SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "STATUS:REJECTED", nil, "not enough evidence").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT (.+) FROM projects WHERE id").
		WillReturnRows(projectRow(7, 2, model.StatusRejected, "", ""))

	h := newAdminHandler(db)
	c, rec := newJSONContext(t, http.MethodPost, "/v1/admin/projects/7/status",
		`{"status":"REJECTED","notes":"not enough evidence"}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("principal", model.Principal{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.SetStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusApprovedMintsCertificate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE projects SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// First audit entry: the status change itself.
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "STATUS:APPROVED", nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// Approval side effects: load the project (no CID yet), persist the
	// minted token with the placeholder CID, append the mint audit entry.
	mock.ExpectQuery("SELECT (.+) FROM projects WHERE id").
		WillReturnRows(projectRow(7, 2, model.StatusApproved, "", ""))
	mock.ExpectExec("UPDATE projects SET token_id").
		WithArgs(sqlmock.AnyArg(), "mock:metadata", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "MINTED_CERTIFICATE", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	// Final reload for the response carries the minted certificate.
	mock.ExpectQuery("SELECT (.+) FROM projects WHERE id").
		WillReturnRows(projectRow(7, 2, model.StatusApproved, "mock:metadata", "1234"))

	h := newAdminHandler(db)
	c, rec := newJSONContext(t, http.MethodPost, "/v1/admin/projects/7/status",
		`{"status":"APPROVED"}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("principal", model.Principal{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.SetStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK      bool        `json:"ok"`
		Project projectJSON `json:"project"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	require.NotNil(t, resp.Project.TokenID)
	assert.NotEmpty(t, *resp.Project.TokenID)
	require.NotNil(t, resp.Project.CID)
	assert.NotEmpty(t, *resp.Project.CID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusUnknownStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := newAdminHandler(db)
	c, rec := newJSONContext(t, http.MethodPost, "/v1/admin/projects/7/status",
		`{"status":"SHIPPED"}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("principal", model.Principal{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.SetStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusMissingProject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE projects SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	h := newAdminHandler(db)
	c, rec := newJSONContext(t, http.MethodPost, "/v1/admin/projects/404/status",
		`{"status":"APPROVED"}`)
	c.SetParamNames("id")
	c.SetParamValues("404")
	c.Set("principal", model.Principal{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.SetStatus(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count", "approved", "avg"}).AddRow(3, 1, 0.8))

	h := newAdminHandler(db)
	c, rec := newJSONContext(t, http.MethodGet, "/v1/admin/dashboard/stats", "")
	c.Set("principal", model.Principal{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.Stats(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.TotalProjects)
	assert.Equal(t, int64(1), resp.Approved)
	assert.Equal(t, 0.8, resp.AvgConfidence)
}

func TestProjectAuditTrail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	txRef := "mock_tx_7_1"
	notes := "minted 1234"
	mock.ExpectQuery("SELECT (.+) FROM projects WHERE id").
		WillReturnRows(projectRow(7, 2, model.StatusApproved, "mock:metadata", "1234"))
	mock.ExpectQuery("SELECT (.+) FROM audit_logs WHERE project_id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "project_id", "action", "tx_ref", "notes", "created_at"}).
			AddRow(1, 2, 7, model.ActionSubmitted, nil, "Submitted by NGO", now).
			AddRow(2, 1, 7, "STATUS:APPROVED", nil, nil, now).
			AddRow(3, 1, 7, model.ActionMinted, txRef, notes, now))

	h := newAdminHandler(db)
	c, rec := newJSONContext(t, http.MethodGet, "/v1/admin/projects/7/audit", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("principal", model.Principal{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.Audit(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Audit []auditJSON `json:"audit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Audit, 3)
	assert.Equal(t, model.ActionSubmitted, resp.Audit[0].Action)
	require.NotNil(t, resp.Audit[2].TxRef)
	assert.Equal(t, txRef, *resp.Audit[2].TxRef)
	assert.Nil(t, resp.Audit[1].Notes)
}

func TestProjectAuditMissingProject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM projects WHERE id").
		WillReturnError(sql.ErrNoRows)

	h := newAdminHandler(db)
	c, rec := newJSONContext(t, http.MethodGet, "/v1/admin/projects/404/audit", "")
	c.SetParamNames("id")
	c.SetParamValues("404")
	c.Set("principal", model.Principal{ID: 1, Role: model.RoleAdmin})

	require.NoError(t, h.Audit(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
