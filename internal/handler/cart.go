package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/verdantlabs/verdant-backend/internal/middleware"
	"github.com/verdantlabs/verdant-backend/internal/model"
	"github.com/verdantlabs/verdant-backend/internal/queue"
	"github.com/verdantlabs/verdant-backend/internal/repository"
	queue_publisher "github.com/verdantlabs/verdant-backend/internal/service"
)

// CartHandler implements checkout: converting approved projects into
// transactions and credit increments for the buying company.  Each item is
// an independent unit of work; the transaction row and its credit increment
// share one SQL transaction, but items do not roll each other back.
type CartHandler struct {
	Projects     *repository.ProjectRepo
	Transactions *repository.TransactionRepo
	Users        *repository.UserRepo
	Analytics    *repository.AnalyticsRepo

	// Publish sends the post-checkout event.  Overridable in tests; failures
	// are logged by the publisher and ignored here.
	Publish func(ctx context.Context, ev queue.PurchaseRecordedEvent) error
}

func NewCartHandler(projects *repository.ProjectRepo, transactions *repository.TransactionRepo, users *repository.UserRepo, analytics *repository.AnalyticsRepo) *CartHandler {
	if projects == nil || transactions == nil || users == nil || analytics == nil {
		panic("nil dependency passed to NewCartHandler")
	}
	return &CartHandler{
		Projects:     projects,
		Transactions: transactions,
		Users:        users,
		Analytics:    analytics,
		Publish:      queue_publisher.PublishPurchaseRecorded,
	}
}

type checkoutItem struct {
	ProjectID uint64  `json:"project_id"`
	Amount    float64 `json:"amount"`
}
type checkoutReq struct {
	Items []checkoutItem `json:"items"`
}

// Checkout handles POST /v1/cart/checkout.  Items referencing missing
// projects are skipped silently; the response therefore may carry fewer
// transactions than the request had items.  One analytics event records the
// full input payload after the loop, however many items were skipped.
func (h *CartHandler) Checkout(c echo.Context) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no items"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	created := make([]model.Transaction, 0, len(req.Items))
	for _, it := range req.Items {
		project, err := h.Projects.GetByID(ctx, it.ProjectID)
		if err != nil {
			if err == repository.ErrProjectNotFound {
				continue // silent skip, matches the documented behavior
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}

		t, err := h.purchase(ctx, p.ID, project.ID, it.Amount)
		if err != nil {
			// Earlier items stay committed; this item aborts the request.
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checkout failed"})
		}
		created = append(created, t)
	}

	payload, _ := json.Marshal(echo.Map{"items": req.Items, "user": p.ID})
	if err := h.Analytics.Append(ctx, "purchase_made", string(payload)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "analytics write failed"})
	}

	h.publishEvent(ctx, p.ID, created)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "transactions": created})
}

// History handles GET /v1/cart/transactions: the calling company's purchase
// history, newest first.
func (h *CartHandler) History(c echo.Context) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	txs, err := h.Transactions.ListByCompany(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txs})
}

// purchase writes one transaction row and the paired credit increment inside
// a single SQL transaction so a crash cannot record one without the other.
func (h *CartHandler) purchase(ctx context.Context, buyerID, projID uint64, amount float64) (model.Transaction, error) {
	tx, err := h.Transactions.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Transaction{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t := model.Transaction{
		CompanyID:  buyerID,
		ProjectID:  projID,
		Amount:     amount,
		Status:     model.TxCompleted,
		InvoiceRef: "mock:invoice:" + uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Transactions.CreateTx(ctx, tx, &t); err != nil {
		return model.Transaction{}, err
	}
	if err := h.Users.AddCreditsTx(ctx, tx, buyerID, amount); err != nil {
		return model.Transaction{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Transaction{}, err
	}
	committed = true
	return t, nil
}

func (h *CartHandler) publishEvent(ctx context.Context, buyerID uint64, created []model.Transaction) {
	if h.Publish == nil || len(created) == 0 {
		return
	}
	ev := queue.PurchaseRecordedEvent{
		BuyerID:    buyerID,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, t := range created {
		ev.TransactionIDs = append(ev.TransactionIDs, t.ID)
		ev.ProjectIDs = append(ev.ProjectIDs, t.ProjectID)
		ev.TotalAmount += t.Amount
	}
	_ = h.Publish(ctx, ev) // best effort, publisher logs failures
}
