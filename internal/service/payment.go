package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/al-shaimon/zkart-backend/internal/client"
	"github.com/al-shaimon/zkart-backend/internal/repository"
)

const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"
)

// PaymentService reconciles asynchronous gateway events into order state.
// The gateway redelivers events until it sees a 2xx, so every path here must
// be idempotent: effects are derived from persisted state via guarded
// updates, never from assuming events arrive once or in order.
type PaymentService interface {
	HandleWebhook(ctx context.Context, body []byte, sigHeader string) error
}

type paymentServiceImpl struct {
	db               *gorm.DB
	paymentClient    client.PaymentClient
	logger           *zap.Logger
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	webhookEventRepo repository.WebhookEventRepository
}

func NewPaymentService(
	db *gorm.DB,
	paymentClient client.PaymentClient,
	logger *zap.Logger,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	webhookEventRepo repository.WebhookEventRepository,
) PaymentService {
	return &paymentServiceImpl{
		db:               db,
		paymentClient:    paymentClient,
		logger:           logger,
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		webhookEventRepo: webhookEventRepo,
	}
}

func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, body []byte, sigHeader string) error {
	event, err := s.paymentClient.VerifyWebhookSignature(body, sigHeader)
	if err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	seen, err := s.webhookEventRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		s.logger.Debug("webhook event already processed", zap.String("event_id", event.ID))
		return nil
	}

	switch event.Type {
	case eventPaymentSucceeded:
		return s.handlePaymentSucceeded(ctx, event)
	case eventPaymentFailed:
		return s.handlePaymentFailed(ctx, event)
	default:
		// not ours to handle
		s.logger.Debug("ignoring webhook event", zap.String("type", event.Type))
		return nil
	}
}

func (s *paymentServiceImpl) handlePaymentSucceeded(ctx context.Context, event *client.GatewayEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := s.orderRepo.MarkPaid(ctx, tx, event.PaymentIntentID)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if !updated {
			// already terminal: duplicate or late delivery, nothing to do
			s.logger.Info("payment already reconciled",
				zap.String("payment_id", event.PaymentIntentID))
		} else {
			s.logger.Info("payment succeeded",
				zap.String("payment_id", event.PaymentIntentID))
		}

		return s.webhookEventRepo.MarkProcessed(ctx, tx, event.ID, event.Type)
	})
}

func (s *paymentServiceImpl) handlePaymentFailed(ctx context.Context, event *client.GatewayEvent) error {
	order, err := s.orderRepo.FindByPaymentID(ctx, event.PaymentIntentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// intent without an order: checkout aborted after the intent was
			// created, nothing was reserved
			s.logger.Info("payment failure for unknown intent",
				zap.String("payment_id", event.PaymentIntentID))
			return nil
		}
		return fmt.Errorf("find order by payment id: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := s.orderRepo.MarkFailed(ctx, tx, event.PaymentIntentID)
		if err != nil {
			return fmt.Errorf("mark order failed: %w", err)
		}

		if updated {
			// give the reserved stock back; the order is cancelled
			items, err := s.orderRepo.GetOrderItems(ctx, tx, order.ID)
			if err != nil {
				return fmt.Errorf("get order items: %w", err)
			}
			for _, item := range items {
				if err := s.productRepo.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return fmt.Errorf("restore stock: %w", err)
				}
			}
			s.logger.Info("payment failed, order cancelled and stock restored",
				zap.String("order_id", order.ID),
				zap.String("payment_id", event.PaymentIntentID))
		}

		return s.webhookEventRepo.MarkProcessed(ctx, tx, event.ID, event.Type)
	})
}
