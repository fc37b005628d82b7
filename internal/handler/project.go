package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verdantlabs/verdant-backend/internal/middleware"
	"github.com/verdantlabs/verdant-backend/internal/model"
	"github.com/verdantlabs/verdant-backend/internal/repository"
	"github.com/verdantlabs/verdant-backend/internal/storage"
	"github.com/verdantlabs/verdant-backend/internal/verifier"
)

// ProjectHandler owns the project authoring and submission flow: creation in
// DRAFT, evidence attachment through the evidence store, submission with
// automated scoring, and the read endpoints.  Role gating happens in
// middleware; methods here assume an authenticated principal.
type ProjectHandler struct {
	Projects      *repository.ProjectRepo
	Uploads       *repository.UploadRepo
	Verifications *repository.VerificationRepo
	Audits        *repository.AuditRepo
	Evidence      *storage.EvidenceStore
	Verifier      *verifier.Client
}

func NewProjectHandler(projects *repository.ProjectRepo, uploads *repository.UploadRepo, verifications *repository.VerificationRepo, audits *repository.AuditRepo, evidence *storage.EvidenceStore, vf *verifier.Client) *ProjectHandler {
	if projects == nil || uploads == nil || verifications == nil || audits == nil || evidence == nil || vf == nil {
		panic("nil dependency passed to NewProjectHandler")
	}
	return &ProjectHandler{
		Projects:      projects,
		Uploads:       uploads,
		Verifications: verifications,
		Audits:        audits,
		Evidence:      evidence,
		Verifier:      vf,
	}
}

// ----- DTOs -----

type createProjectReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Area        *float64 `json:"area"`
	Species     string   `json:"species"`
	Saplings    *int64   `json:"saplings"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Language    string   `json:"language"`
}

type projectJSON struct {
	ID           uint64    `json:"id"`
	OwnerID      uint64    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Area         *float64  `json:"area"`
	Species      string    `json:"species"`
	Saplings     *int64    `json:"saplings"`
	Lat          *float64  `json:"lat"`
	Lng          *float64  `json:"lng"`
	Language     string    `json:"language"`
	Status       string    `json:"status"`
	CID          *string   `json:"cid"`
	TokenID      *string   `json:"token_id"`
	AILabel      *string   `json:"ai_label"`
	AIConfidence *float64  `json:"ai_confidence"`
	CreatedAt    time.Time `json:"created_at"`
}

type uploadJSON struct {
	ID        uint64    `json:"id"`
	ProjectID uint64    `json:"project_id"`
	Filename  string    `json:"filename"`
	CID       string    `json:"cid"`
	FileType  string    `json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}

type verificationJSON struct {
	ID         uint64    `json:"id"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

func toProjectJSON(p model.Project) projectJSON {
	return projectJSON{
		ID: p.ID, OwnerID: p.OwnerID, Title: p.Title, Description: p.Description,
		Area: p.Area, Species: p.Species, Saplings: p.Saplings, Lat: p.Lat, Lng: p.Lng,
		Language: p.Language, Status: p.Status, CID: p.CID, TokenID: p.TokenID,
		AILabel: p.AILabel, AIConfidence: p.AIConfidence, CreatedAt: p.CreatedAt,
	}
}

func toUploadJSON(u model.Upload) uploadJSON {
	return uploadJSON{ID: u.ID, ProjectID: u.ProjectID, Filename: u.Filename, CID: u.CID, FileType: u.FileType, CreatedAt: u.CreatedAt}
}

// projectID parses the :id path parameter.
func projectID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// Create handles POST /v1/projects.  Every field is optional; numeric fields
// the client omits stay unset.  The project starts in DRAFT owned by the
// calling NGO.
func (h *ProjectHandler) Create(c echo.Context) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createProjectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Projects.Create(ctx, p.ID, repository.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Area:        req.Area,
		Species:     req.Species,
		Saplings:    req.Saplings,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Language:    req.Language,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create project failed"})
	}

	project, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load project failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"project": toProjectJSON(project)})
}

// AttachEvidence handles POST /v1/projects/:id/upload.  The multipart file
// is handed to the evidence store, which returns a content identifier; the
// upload row references that identifier.  A degraded (local mock) identifier
// is not an error.
func (h *ProjectHandler) AttachEvidence(c echo.Context) error {
	id, err := projectID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing file"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}

	mimeType := fh.Header.Get("Content-Type")
	storedName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), fh.Filename)

	cid, err := h.Evidence.Put(c.Request().Context(), data, storedName, mimeType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store evidence failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uploadID, err := h.Uploads.Create(ctx, id, fh.Filename, cid, mimeType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save upload failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"upload": uploadJSON{ID: uploadID, ProjectID: id, Filename: fh.Filename, CID: cid, FileType: mimeType, CreatedAt: time.Now().UTC()},
		"cid":    cid,
	})
}

// Submit handles POST /v1/projects/:id/submit.  The status moves to
// SUBMITTED unconditionally; when evidence exists, the first upload is
// scored and the result recorded both as a Verification row and on the
// project itself.  The score is advisory and never changes the status.
// Resubmitting an already SUBMITTED project repeats the scoring and audit
// append.
func (h *ProjectHandler) Submit(c echo.Context) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := projectID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if _, err := h.Projects.GetByID(ctx, id); err != nil {
		if err == repository.ErrProjectNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	uploads, err := h.Uploads.ListByProject(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := h.Projects.UpdateStatus(ctx, id, model.StatusSubmitted); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}

	if len(uploads) > 0 {
		first := uploads[0]
		// The verifier works from the evidence reference; the raw bytes are
		// already in the evidence store and are not re-read here.
		result, _ := h.Verifier.Classify(ctx, nil, first.Filename)
		meta, _ := json.Marshal(result)
		if _, err := h.Verifications.Create(ctx, id, result.Label, result.Confidence, string(meta)); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save verification failed"})
		}
		if err := h.Projects.SetVerdict(ctx, id, result.Label, result.Confidence); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save verification failed"})
		}
	}

	notes := "Submitted by NGO"
	if err := h.Audits.Append(ctx, p.ID, &id, model.ActionSubmitted, nil, &notes); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "audit write failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// List handles GET /v1/projects and returns every project with its uploads,
// newest project first.
func (h *ProjectHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	projects, err := h.Projects.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	out := make([]echo.Map, 0, len(projects))
	for _, p := range projects {
		uploads, err := h.Uploads.ListByProject(ctx, p.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		ujs := make([]uploadJSON, 0, len(uploads))
		for _, u := range uploads {
			ujs = append(ujs, toUploadJSON(u))
		}
		out = append(out, echo.Map{"project": toProjectJSON(p), "uploads": ujs})
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": out})
}

// Get handles GET /v1/projects/:id with uploads and verification history.
func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := projectID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	project, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrProjectNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	uploads, err := h.Uploads.ListByProject(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	verifications, err := h.Verifications.ListByProject(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	ujs := make([]uploadJSON, 0, len(uploads))
	for _, u := range uploads {
		ujs = append(ujs, toUploadJSON(u))
	}
	vjs := make([]verificationJSON, 0, len(verifications))
	for _, v := range verifications {
		vjs = append(vjs, verificationJSON{ID: v.ID, Label: v.Label, Confidence: v.Confidence, CreatedAt: v.CreatedAt})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"project":       toProjectJSON(project),
		"uploads":       ujs,
		"verifications": vjs,
	})
}
