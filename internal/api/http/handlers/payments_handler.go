package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

// PaymentsHandler exposes checkout and the provider webhook.
type PaymentsHandler struct {
	ledger *service.LedgerService
	logger *zap.Logger
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(ledger *service.LedgerService, logger *zap.Logger) *PaymentsHandler {
	return &PaymentsHandler{ledger: ledger, logger: logger}
}

// Create handles POST /payments/create.
func (h *PaymentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	items := make([]service.PaymentItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.PaymentItem{
			Title:       item.Title,
			Description: item.Description,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
	}

	checkout := service.CheckoutRequest{
		Items: items,
		Customer: domain.CustomerInfo{
			Email: req.Customer.Email,
			Name:  req.Customer.Name,
			Phone: req.Customer.Phone,
		},
	}
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.User != nil {
		userID := principal.User.ID
		checkout.UserID = &userID
	}

	session, err := h.ledger.Checkout(c.UserContext(), checkout)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CheckoutResponse{
		PaymentURL: session.PaymentURL,
		PaymentID:  session.PaymentID,
	}})
}

// Webhook handles POST /payments/webhook. The provider retries non-200
// responses forever, so persistence failures are logged and acknowledged.
func (h *PaymentsHandler) Webhook(c *fiber.Ctx) error {
	body := c.Body()

	var req dto.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Warn("unparseable webhook payload", zap.Error(err))
		return c.JSON(fiber.Map{"received": true})
	}
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)

	if req.TransactionID == "" && req.PaymentID != nil {
		req.TransactionID = *req.PaymentID
	}

	items := make([]domain.TransactionItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.TransactionItem{
			Title:       item.Title,
			Description: item.Description,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
	}

	_, err := h.ledger.IngestWebhook(c.UserContext(), service.WebhookInput{
		TransactionID: req.TransactionID,
		PaymentID:     req.PaymentID,
		UserID:        req.UserID,
		Status:        req.Status,
		Customer: domain.CustomerInfo{
			Email: req.Customer.Email,
			Name:  req.Customer.Name,
			Phone: req.Customer.Phone,
		},
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		PaymentType:   req.PaymentType,
		Raw:           raw,
	})
	if err != nil {
		h.logger.Error("webhook processing failed",
			zap.String("transaction_id", req.TransactionID), zap.Error(err))
	}
	return c.JSON(fiber.Map{"received": true})
}

// CreateTestOrder handles POST /payments/create-test-order.
func (h *PaymentsHandler) CreateTestOrder(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	// Body is optional; without one the service seeds its fixture items.
	var req dto.CreateTestOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	items := make([]domain.TransactionItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.TransactionItem{
			Title:       item.Title,
			Description: item.Description,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
	}

	txn, err := h.ledger.CreateTestOrder(c.UserContext(), principal.User, items)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOrderResponse(txn)})
}

// Status handles GET /payments/status/:paymentId.
func (h *PaymentsHandler) Status(c *fiber.Ctx) error {
	txn, err := h.ledger.GetByExternalID(c.UserContext(), c.Params("paymentId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PaymentStatusResponse{
		TransactionID: txn.TransactionID,
		Status:        string(txn.Status),
	}})
}
