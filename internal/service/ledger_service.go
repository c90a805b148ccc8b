package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

const (
	webhookCreateNote = "order created from payment webhook"
	webhookUpdateNote = "updated automatically by payment webhook"
	testOrderNote     = "test order created manually"
)

// CheckoutRequest is what a buyer submits to start paying for their cart.
type CheckoutRequest struct {
	Items    []PaymentItem
	Customer domain.CustomerInfo
	UserID   *string
}

// WebhookInput is the normalized payload of a provider notification.
type WebhookInput struct {
	TransactionID string
	PaymentID     *string
	UserID        *string
	Status        string
	Customer      domain.CustomerInfo
	Items         []domain.TransactionItem
	PaymentMethod *string
	PaymentType   *string
	Raw           map[string]any
}

// QueryParams drive the admin ledger listing.
type QueryParams struct {
	Status      *domain.TransactionStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Search      *string
	Limit       int
	Skip        int
}

// QueryResult is one page of the ledger plus pagination bookkeeping.
type QueryResult struct {
	Transactions []domain.Transaction
	Total        int64
	Limit        int
	Skip         int
	HasMore      bool
}

// StatsResult aggregates the ledger for the admin dashboard.
type StatsResult struct {
	Total          int64
	TotalAmount    float64
	ApprovedCount  int64
	ApprovedAmount float64
	ByStatus       map[domain.TransactionStatus]repository.StatusTally
	Recent         []domain.Transaction
}

// MyOrdersResult is the buyer-facing order history with per-status counts.
type MyOrdersResult struct {
	Orders   []domain.Transaction
	Total    int64
	ByStatus map[domain.TransactionStatus]int
}

// LedgerService owns the transaction ledger: checkout sessions, webhook
// ingestion, status transitions, shipping and buyer order history.
type LedgerService struct {
	txns       repository.TransactionRepository
	provider   PaymentProvider
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewLedgerService builds the service. The clock is injectable for tests.
func NewLedgerService(txns repository.TransactionRepository, provider PaymentProvider, dispatcher events.Dispatcher, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		txns:       txns,
		provider:   provider,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Checkout opens a payment session at the provider for the submitted items.
// No ledger row is written here; the transaction materializes when the
// provider's webhook arrives.
func (s *LedgerService) Checkout(ctx context.Context, req CheckoutRequest) (*PaymentSession, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.NewValidationError("at least one item is required", nil)
	}
	for i, item := range req.Items {
		if item.Title == "" || item.Quantity <= 0 || item.UnitPrice <= 0 {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("item %d is invalid: title, positive quantity and positive unit_price are required", i), nil)
		}
	}

	session, err := s.provider.CreateSession(ctx, PaymentRequest{
		Items:         req.Items,
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.Customer.Email)),
		CustomerName:  req.Customer.Name,
		CustomerPhone: req.Customer.Phone,
	})
	if err != nil {
		s.logger.Error("checkout session creation failed", zap.Error(err))
		return nil, apperrors.NewDomainError("PAYMENT_PROVIDER_ERROR",
			"could not create payment session", http.StatusBadGateway, nil)
	}

	s.logger.Info("checkout session created",
		zap.String("payment_id", session.PaymentID),
		zap.Int("items", len(req.Items)),
	)
	return session, nil
}

// NormalizeStatus maps the provider's status vocabulary onto the ledger enum.
// Unknown values fall back to pending rather than failing the webhook.
func NormalizeStatus(raw string) domain.TransactionStatus {
	status := domain.TransactionStatus(strings.ToLower(strings.TrimSpace(raw)))
	if domain.ValidTransactionStatus(status) {
		return status
	}
	return domain.TransactionStatusPending
}

// IngestWebhook records a provider notification. First delivery creates the
// transaction; any later delivery for the same external id becomes a status
// transition. Duplicate concurrent deliveries are absorbed by the unique
// transaction id constraint.
func (s *LedgerService) IngestWebhook(ctx context.Context, input WebhookInput) (*domain.Transaction, error) {
	if strings.TrimSpace(input.TransactionID) == "" {
		return nil, apperrors.NewValidationError("transaction id is required", nil)
	}
	status := NormalizeStatus(input.Status)

	existing, err := s.txns.GetByExternalID(ctx, input.TransactionID)
	if err == nil {
		return s.transitionFromWebhook(ctx, existing, status)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	txn, err := s.insertFromWebhook(ctx, input, status)
	if errors.Is(err, repository.ErrDuplicateTransaction) {
		existing, lookupErr := s.txns.GetByExternalID(ctx, input.TransactionID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return s.transitionFromWebhook(ctx, existing, status)
	}
	return txn, err
}

func (s *LedgerService) insertFromWebhook(ctx context.Context, input WebhookInput, status domain.TransactionStatus) (*domain.Transaction, error) {
	now := s.now()
	items := make([]domain.TransactionItem, len(input.Items))
	for i, item := range input.Items {
		item.Subtotal = item.UnitPrice * float64(item.Quantity)
		items[i] = item
	}

	txn := &domain.Transaction{
		TransactionID: input.TransactionID,
		PaymentID:     input.PaymentID,
		UserID:        input.UserID,
		CustomerInfo:  input.Customer,
		Items:         items,
		Amount:        domain.SumSubtotals(items),
		Status:        status,
		StatusHistory: domain.StatusHistory[domain.TransactionStatus]{}.
			Append(status, nil, webhookCreateNote, now),
		PaymentMethod: input.PaymentMethod,
		PaymentType:   input.PaymentType,
		WebhookData:   input.Raw,
	}
	if err := s.txns.Insert(ctx, txn); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:            uuid.NewString(),
		Type:          events.EventTransactionCreated,
		TransactionID: txn.ID,
		Timestamp:     now,
		Payload: events.TransactionCreatedPayload{
			Status:        txn.Status,
			Amount:        txn.Amount,
			CustomerEmail: txn.CustomerInfo.Email,
			ItemCount:     len(txn.Items),
		},
	})
	s.logger.Info("transaction created from webhook",
		zap.String("transaction_id", txn.TransactionID),
		zap.String("status", string(txn.Status)),
		zap.Float64("amount", txn.Amount),
	)
	return txn, nil
}

func (s *LedgerService) transitionFromWebhook(ctx context.Context, txn *domain.Transaction, status domain.TransactionStatus) (*domain.Transaction, error) {
	if txn.Status == status {
		return txn, nil
	}
	old := txn.Status

	updated, err := s.txns.AppendStatus(ctx, txn.ID, domain.StatusEntry[domain.TransactionStatus]{
		Status:    status,
		ChangedAt: s.now(),
		Note:      webhookUpdateNote,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:            uuid.NewString(),
		Type:          events.EventTransactionStatusChanged,
		TransactionID: updated.ID,
		Timestamp:     s.now(),
		Payload: events.TransactionStatusChangedPayload{
			OldStatus: old,
			NewStatus: status,
			Note:      webhookUpdateNote,
		},
	})
	s.logger.Info("transaction status updated from webhook",
		zap.String("transaction_id", updated.TransactionID),
		zap.String("old_status", string(old)),
		zap.String("new_status", string(status)),
	)
	return updated, nil
}

// CreateTestOrder inserts a synthetic approved transaction so staff can
// exercise the ledger without paying. Its id carries a TEST_ prefix. Subtotals
// on caller-supplied items are recomputed; an empty slice falls back to a
// canned fixture.
func (s *LedgerService) CreateTestOrder(ctx context.Context, actor *domain.User, items []domain.TransactionItem) (*domain.Transaction, error) {
	now := s.now()
	actorID := actor.ID
	if len(items) == 0 {
		items = []domain.TransactionItem{
			{Title: "Test Hoodie", Description: "synthetic line item", UnitPrice: 49.90, Quantity: 1},
			{Title: "Test Cap", Description: "synthetic line item", UnitPrice: 19.90, Quantity: 2},
		}
	}
	for i := range items {
		items[i].Subtotal = items[i].UnitPrice * float64(items[i].Quantity)
	}

	txn := &domain.Transaction{
		TransactionID: fmt.Sprintf("TEST_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
		UserID:        &actorID,
		CustomerInfo: domain.CustomerInfo{
			Email: actor.Email,
			Name:  actor.Name,
		},
		Items:  items,
		Amount: domain.SumSubtotals(items),
		Status: domain.TransactionStatusApproved,
		StatusHistory: domain.StatusHistory[domain.TransactionStatus]{}.
			Append(domain.TransactionStatusApproved, &actorID, testOrderNote, now),
	}
	if err := s.txns.Insert(ctx, txn); err != nil {
		return nil, err
	}

	s.logger.Info("test order created",
		zap.String("transaction_id", txn.TransactionID),
		zap.String("actor_email", actor.Email),
	)
	return txn, nil
}

// Get fetches a single transaction by internal id.
func (s *LedgerService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	txn, err := s.txns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("transaction", nil)
		}
		return nil, err
	}
	return txn, nil
}

// GetByExternalID fetches a transaction by its provider-side id.
func (s *LedgerService) GetByExternalID(ctx context.Context, externalID string) (*domain.Transaction, error) {
	txn, err := s.txns.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("transaction", nil)
		}
		return nil, err
	}
	return txn, nil
}

// TransitionStatus records a staff-driven status change. Any current status
// may move to any valid status.
func (s *LedgerService) TransitionStatus(ctx context.Context, id string, status domain.TransactionStatus, actor *domain.User, note string) (*domain.Transaction, error) {
	if !domain.ValidTransactionStatus(status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	old := current.Status

	actorID := actor.ID
	updated, err := s.txns.AppendStatus(ctx, id, domain.StatusEntry[domain.TransactionStatus]{
		Status:    status,
		ChangedAt: s.now(),
		ChangedBy: &actorID,
		Note:      note,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("transaction", nil)
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:            uuid.NewString(),
		Type:          events.EventTransactionStatusChanged,
		TransactionID: updated.ID,
		ActorID:       &actorID,
		Timestamp:     s.now(),
		Payload: events.TransactionStatusChangedPayload{
			OldStatus: old,
			NewStatus: status,
			Note:      note,
		},
	})
	s.logger.Info("transaction status changed",
		zap.String("transaction_id", updated.TransactionID),
		zap.String("actor_email", actor.Email),
		zap.String("old_status", string(old)),
		zap.String("new_status", string(status)),
	)
	return updated, nil
}

// UpdateShipping sets shipping status and/or tracking number and appends the
// change to the shipping history.
func (s *LedgerService) UpdateShipping(ctx context.Context, id string, status *domain.ShippingStatus, trackingNumber *string, actor *domain.User, note string) (*domain.Transaction, error) {
	if status == nil && trackingNumber == nil {
		return nil, apperrors.NewValidationError("shipping status or tracking number is required", nil)
	}
	if status != nil && !domain.ValidShippingStatus(*status) {
		return nil, apperrors.NewValidationError("invalid shipping status", map[string]any{"shippingStatus": *status})
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entryStatus := current.ShippingStatus
	if status != nil {
		entryStatus = status
	}
	if entryStatus == nil {
		pending := domain.ShippingStatusPending
		entryStatus = &pending
	}

	actorID := actor.ID
	updated, err := s.txns.AppendShipping(ctx, id, status, trackingNumber, domain.StatusEntry[domain.ShippingStatus]{
		Status:    *entryStatus,
		ChangedAt: s.now(),
		ChangedBy: &actorID,
		Note:      note,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("transaction", nil)
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:            uuid.NewString(),
		Type:          events.EventShippingUpdated,
		TransactionID: updated.ID,
		ActorID:       &actorID,
		Timestamp:     s.now(),
		Payload: events.ShippingUpdatedPayload{
			ShippingStatus: updated.ShippingStatus,
			TrackingNumber: updated.TrackingNumber,
			Note:           note,
		},
	})
	return updated, nil
}

// UpdateNotes replaces the free-form staff notes on a transaction.
func (s *LedgerService) UpdateNotes(ctx context.Context, id, notes string) (*domain.Transaction, error) {
	updated, err := s.txns.UpdateNotes(ctx, id, notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("transaction", nil)
		}
		return nil, err
	}
	return updated, nil
}

// Query returns one page of the ledger for the admin listing.
func (s *LedgerService) Query(ctx context.Context, params QueryParams) (*QueryResult, error) {
	if params.Status != nil && !domain.ValidTransactionStatus(*params.Status) {
		return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": *params.Status})
	}

	limit := params.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	skip := params.Skip
	if skip < 0 {
		skip = 0
	}

	filter := repository.TransactionFilter{
		Status:      params.Status,
		CreatedFrom: params.CreatedFrom,
		CreatedTo:   params.CreatedTo,
		Search:      params.Search,
		Limit:       limit,
		Skip:        skip,
	}

	transactions, err := s.txns.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.txns.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &QueryResult{
		Transactions: transactions,
		Total:        total,
		Limit:        limit,
		Skip:         skip,
		HasMore:      int64(skip+len(transactions)) < total,
	}, nil
}

// Stats aggregates the ledger per status within an optional window and
// attaches the five most recent transactions.
func (s *LedgerService) Stats(ctx context.Context, from, to *time.Time) (*StatsResult, error) {
	tallies, err := s.txns.TallyByStatus(ctx, from, to)
	if err != nil {
		return nil, err
	}

	result := &StatsResult{
		ByStatus: make(map[domain.TransactionStatus]repository.StatusTally, len(tallies)),
	}
	for _, tally := range tallies {
		result.ByStatus[tally.Status] = tally
		result.Total += tally.Count
		result.TotalAmount += tally.Amount
		if tally.Status == domain.TransactionStatusApproved {
			result.ApprovedCount = tally.Count
			result.ApprovedAmount = tally.Amount
		}
	}

	recent, err := s.txns.List(ctx, repository.TransactionFilter{
		CreatedFrom: from,
		CreatedTo:   to,
		Limit:       5,
	})
	if err != nil {
		return nil, err
	}
	result.Recent = recent
	return result, nil
}

// MyOrders lists the caller's transactions. Ownership is an OR match on the
// stored user id and the customer email, so guest purchases surface once the
// buyer registers with the same address.
func (s *LedgerService) MyOrders(ctx context.Context, user *domain.User, limit, skip int) (*MyOrdersResult, error) {
	userID := user.ID
	email := strings.ToLower(user.Email)

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	filter := repository.TransactionFilter{
		OwnerUserID: &userID,
		OwnerEmail:  &email,
		Limit:       limit,
		Skip:        skip,
	}
	orders, err := s.txns.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.txns.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[domain.TransactionStatus]int)
	for _, order := range orders {
		byStatus[order.Status]++
	}

	return &MyOrdersResult{Orders: orders, Total: total, ByStatus: byStatus}, nil
}

// MyOrder fetches one of the caller's transactions. Lookups by someone else's
// order id report not found rather than forbidden.
func (s *LedgerService) MyOrder(ctx context.Context, user *domain.User, id string) (*domain.Transaction, error) {
	txn, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsTransaction(user, txn) {
		return nil, apperrors.NewNotFound("order", nil)
	}
	return txn, nil
}

func ownsTransaction(user *domain.User, txn *domain.Transaction) bool {
	if txn.UserID != nil && *txn.UserID == user.ID {
		return true
	}
	return txn.CustomerInfo.Email != "" &&
		strings.EqualFold(txn.CustomerInfo.Email, user.Email)
}

func (s *LedgerService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publication failed",
			zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
