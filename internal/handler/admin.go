package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/verdantlabs/verdant-backend/internal/ledger"
	"github.com/verdantlabs/verdant-backend/internal/middleware"
	"github.com/verdantlabs/verdant-backend/internal/model"
	"github.com/verdantlabs/verdant-backend/internal/repository"
)

// statsCacheKey is the redis key under which the dashboard numbers are
// cached; any status change invalidates it.
const statsCacheKey = "dashboard:stats"

const statsCacheTTL = 30 * time.Second

// placeholderCID is used when a project is approved before any metadata CID
// was assigned.
const placeholderCID = "mock:metadata"

// AdminHandler covers the review workflow: listing pending submissions,
// ruling on them, and the dashboard numbers.  RDB may be nil, in which case
// stats are computed on every request.
type AdminHandler struct {
	Projects *repository.ProjectRepo
	Uploads  *repository.UploadRepo
	Users    *repository.UserRepo
	Audits   *repository.AuditRepo
	Ledger   *ledger.Client
	RDB      *redis.Client
}

func NewAdminHandler(projects *repository.ProjectRepo, uploads *repository.UploadRepo, users *repository.UserRepo, audits *repository.AuditRepo, lg *ledger.Client, rdb *redis.Client) *AdminHandler {
	if projects == nil || uploads == nil || users == nil || audits == nil || lg == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Projects: projects, Uploads: uploads, Users: users, Audits: audits, Ledger: lg, RDB: rdb}
}

// Pending handles GET /v1/admin/projects/pending: every SUBMITTED project
// with its owner and uploads, for the review queue.
func (h *AdminHandler) Pending(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	projects, err := h.Projects.ListByStatus(ctx, model.StatusSubmitted)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	out := make([]echo.Map, 0, len(projects))
	for _, p := range projects {
		owner, err := h.Users.GetByID(ctx, p.OwnerID)
		if err != nil && err != repository.ErrUserNotFound {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		uploads, err := h.Uploads.ListByProject(ctx, p.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		ujs := make([]uploadJSON, 0, len(uploads))
		for _, u := range uploads {
			ujs = append(ujs, toUploadJSON(u))
		}
		out = append(out, echo.Map{
			"project": toProjectJSON(p),
			"owner":   userPart{ID: owner.ID, Name: owner.Name, Email: owner.Email, Role: owner.Role},
			"uploads": ujs,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"pending": out})
}

type setStatusReq struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// SetStatus handles POST /v1/admin/projects/:id/status.  The update is
// unconditional: admins may override any state, including terminal ones.
// Approval additionally asks the ledger for a certificate and records the
// token and CID on the project.  The approval side effects run best-effort
// after the status write; a crash in between leaves an APPROVED project
// without a token, which is recovered by re-running the approval.
func (h *AdminHandler) SetStatus(c echo.Context) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := projectID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}
	var req setStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	switch status {
	case model.StatusDraft, model.StatusSubmitted, model.StatusApproved, model.StatusRejected:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	if err := h.Projects.UpdateStatus(ctx, id, status); err != nil {
		if err == repository.ErrProjectNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	if err := h.Audits.Append(ctx, p.ID, &id, "STATUS:"+status, nil, notes); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "audit write failed"})
	}

	if status == model.StatusApproved {
		if err := h.mintCertificate(ctx, p.ID, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mint certificate failed"})
		}
	}

	if h.RDB != nil {
		_ = h.RDB.Del(ctx, statsCacheKey).Err()
	}

	project, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load project failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "project": toProjectJSON(project)})
}

// mintCertificate runs the approval side effects: one ledger call, the
// token/CID write, and the MINTED_CERTIFICATE audit entry.
func (h *AdminHandler) mintCertificate(ctx context.Context, actorID, projectID uint64) error {
	project, err := h.Projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	cid := placeholderCID
	if project.CID != nil && *project.CID != "" {
		cid = *project.CID
	}

	cert, err := h.Ledger.IssueCertificate(ctx, projectID, cid)
	if err != nil {
		return err
	}
	if err := h.Projects.SetCertificate(ctx, projectID, cert.TokenID, cid); err != nil {
		return err
	}

	minted := fmt.Sprintf("minted %s", cert.TokenID)
	return h.Audits.Append(ctx, actorID, &projectID, model.ActionMinted, &cert.TxRef, &minted)
}

type auditJSON struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Action    string    `json:"action"`
	TxRef     *string   `json:"tx_ref"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Audit handles GET /v1/admin/projects/:id/audit: the project's full audit
// trail in insertion order, for reviewing how a ruling came about.
func (h *AdminHandler) Audit(c echo.Context) error {
	id, err := projectID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Projects.GetByID(ctx, id); err != nil {
		if err == repository.ErrProjectNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	entries, err := h.Audits.ListByProject(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]auditJSON, 0, len(entries))
	for _, a := range entries {
		out = append(out, auditJSON{ID: a.ID, UserID: a.UserID, Action: a.Action, TxRef: a.TxRef, Notes: a.Notes, CreatedAt: a.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"audit": out})
}

type statsResp struct {
	TotalProjects int64   `json:"total_projects"`
	Approved      int64   `json:"approved"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// Stats handles GET /v1/admin/dashboard/stats.  The mean confidence is taken
// over projects that actually have a score; unverified ones are excluded,
// not counted as zero.  Results are cached briefly in redis when available.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.RDB != nil {
		if cached, err := h.RDB.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var resp statsResp
			if json.Unmarshal(cached, &resp) == nil {
				return c.JSON(http.StatusOK, resp)
			}
		}
	}

	total, approved, avg, err := h.Projects.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	resp := statsResp{TotalProjects: total, Approved: approved, AvgConfidence: avg}

	if h.RDB != nil {
		if body, err := json.Marshal(resp); err == nil {
			_ = h.RDB.Set(ctx, statsCacheKey, body, statsCacheTTL).Err()
		}
	}
	return c.JSON(http.StatusOK, resp)
}
