package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
)

// NotificationService turns ledger events into customer-facing notices. The
// outbound channel is the log for now; the dispatch seam is where a real
// email or push integration plugs in.
type NotificationService struct {
	txns   repository.TransactionRepository
	logger *zap.Logger
}

// NewNotificationService builds the service.
func NewNotificationService(txns repository.TransactionRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{txns: txns, logger: logger}
}

// Handle renders and dispatches the notification for one event.
func (s *NotificationService) Handle(ctx context.Context, event events.Event) error {
	txn, err := s.txns.GetByID(ctx, event.TransactionID)
	if err != nil {
		return fmt.Errorf("loading transaction for notification: %w", err)
	}
	if txn.CustomerInfo.Email == "" {
		return nil
	}

	var subject string
	switch event.Type {
	case events.EventTransactionCreated:
		subject = "we received your order"
		if txn.Status == domain.TransactionStatusApproved {
			subject = "your payment was approved"
		}
	case events.EventTransactionStatusChanged:
		subject = fmt.Sprintf("your order is now %s", txn.Status)
	case events.EventShippingUpdated:
		subject = "your shipment was updated"
		if txn.TrackingNumber != nil {
			subject = fmt.Sprintf("your shipment was updated, tracking %s", *txn.TrackingNumber)
		}
	default:
		return nil
	}

	s.logger.Info("customer notification dispatched",
		zap.String("to", txn.CustomerInfo.Email),
		zap.String("transaction_id", txn.TransactionID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject", subject),
	)
	return nil
}
