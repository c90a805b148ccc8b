package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

// TransactionsHandler exposes the ledger: staff listing and mutation plus the
// buyer-facing my-orders views.
type TransactionsHandler struct {
	ledger *service.LedgerService
}

// NewTransactionsHandler constructs handler.
func NewTransactionsHandler(ledger *service.LedgerService) *TransactionsHandler {
	return &TransactionsHandler{ledger: ledger}
}

// List handles GET /transactions.
func (h *TransactionsHandler) List(c *fiber.Ctx) error {
	params := service.QueryParams{
		CreatedFrom: parseTime(c.Query("created_from")),
		CreatedTo:   parseTime(c.Query("created_to")),
		Limit:       parseInt(c.Query("limit"), 0),
		Skip:        parseInt(c.Query("skip"), 0),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.TransactionStatus(strings.ToLower(statusStr))
		params.Status = &status
	}
	if search := c.Query("search"); search != "" {
		params.Search = &search
	}

	result, err := h.ledger.Query(c.UserContext(), params)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TransactionListResponse{
		Transactions: dto.NewTransactionResponses(result.Transactions),
		Total:        result.Total,
		Limit:        result.Limit,
		Skip:         result.Skip,
		HasMore:      result.HasMore,
	}})
}

// Stats handles GET /transactions/stats.
func (h *TransactionsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.ledger.Stats(c.UserContext(), parseTime(c.Query("from")), parseTime(c.Query("to")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatsResponse(stats)})
}

// Get handles GET /transactions/:id.
func (h *TransactionsHandler) Get(c *fiber.Ctx) error {
	txn, err := h.ledger.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTransactionResponse(txn)})
}

// UpdateStatus handles PUT /transactions/:id/status.
func (h *TransactionsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	txn, err := h.ledger.TransitionStatus(c.UserContext(), c.Params("id"),
		domain.TransactionStatus(strings.ToLower(req.Status)), principal.User, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTransactionResponse(txn)})
}

// UpdateShipping handles PUT /transactions/:id/shipping.
func (h *TransactionsHandler) UpdateShipping(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateShippingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	var status *domain.ShippingStatus
	if req.ShippingStatus != nil {
		parsed := domain.ShippingStatus(strings.ToLower(*req.ShippingStatus))
		status = &parsed
	}

	txn, err := h.ledger.UpdateShipping(c.UserContext(), c.Params("id"), status, req.TrackingNumber, principal.User, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTransactionResponse(txn)})
}

// UpdateNotes handles PUT /transactions/:id/notes.
func (h *TransactionsHandler) UpdateNotes(c *fiber.Ctx) error {
	var req dto.UpdateNotesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	txn, err := h.ledger.UpdateNotes(c.UserContext(), c.Params("id"), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTransactionResponse(txn)})
}

// MyOrders handles GET /transactions/my-orders.
func (h *TransactionsHandler) MyOrders(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	result, err := h.ledger.MyOrders(c.UserContext(), principal.User,
		parseInt(c.Query("limit"), 0), parseInt(c.Query("skip"), 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMyOrdersResponse(result)})
}

// MyOrder handles GET /transactions/my-orders/:id.
func (h *TransactionsHandler) MyOrder(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	txn, err := h.ledger.MyOrder(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(txn)})
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
