package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant/models"
	"restaurant/store"
)

type CashPayment struct {
	OrderID        string   `json:"orderId"`
	Amount         float64  `json:"amount"`
	AmountReceived float64  `json:"amountReceived"`
	Change         *float64 `json:"change"`
	ProcessedBy    string   `json:"-"`
}

type QRPayment struct {
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transactionId"`
	Provider      string  `json:"provider"`
	ProcessedBy   string  `json:"-"`
}

func (s *Service) PayCash(ctx context.Context, in CashPayment) (*models.Payment, error) {
	if in.AmountReceived < in.Amount {
		return nil, validationf("amount received %.2f is less than amount %.2f", in.AmountReceived, in.Amount)
	}
	change := Change(in.Amount, in.AmountReceived)
	if in.Change != nil && !equalCents(*in.Change, change) {
		return nil, validationf("change %.2f does not match %.2f", *in.Change, change)
	}
	details := map[string]interface{}{
		"amountReceived": in.AmountReceived,
		"change":         change,
	}
	return s.pay(ctx, in.OrderID, models.PaymentMethodCash, in.Amount, details, in.ProcessedBy)
}

// PayQR records a payment confirmed out of band by a QR wallet; the gateway
// itself is not contacted.
func (s *Service) PayQR(ctx context.Context, in QRPayment) (*models.Payment, error) {
	if strings.TrimSpace(in.TransactionID) == "" {
		return nil, validationf("transactionId is required")
	}
	provider := in.Provider
	if provider == "" {
		provider = "esewa"
	}
	details := map[string]interface{}{
		"transactionId": in.TransactionID,
		"provider":      provider,
	}
	return s.pay(ctx, in.OrderID, models.PaymentMethodQR, in.Amount, details, in.ProcessedBy)
}

func (s *Service) PaymentForOrder(ctx context.Context, orderID string) (*models.Payment, error) {
	oid, err := parseID(orderID, "order")
	if err != nil {
		return nil, err
	}
	p, err := s.payments.GetByOrder(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundf("no payment for order %s", orderID)
	}
	return p, err
}

// pay marks the order paid, completes it through the regular status path when
// needed, and records the payment.
func (s *Service) pay(ctx context.Context, orderID, method string, amount float64, details map[string]interface{}, processedBy string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, validationf("amount must be greater than zero")
	}
	oid, err := parseID(orderID, "order")
	if err != nil {
		return nil, err
	}
	order, err := s.load(ctx, oid)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentPaid {
		return nil, conflictf("order %s is already paid", order.OrderNumber)
	}
	if order.Status == models.OrderCancelled {
		return nil, conflictf("cannot pay for a cancelled order")
	}
	if !covers(amount, order.Total) {
		return nil, validationf("amount %.2f is less than order total %.2f", amount, order.Total)
	}

	claimed, err := s.orders.SetPaymentStatus(ctx, oid, models.PaymentUnpaid, models.PaymentPaid)
	if errors.Is(err, store.ErrStale) {
		return nil, conflictf("order %s is already paid", order.OrderNumber)
	}
	if err != nil {
		return nil, s.orderWriteErr(err, oid)
	}

	if claimed.Status != models.OrderCompleted {
		if _, err := s.transition(ctx, claimed, models.OrderCompleted); err != nil {
			if _, rerr := s.orders.SetPaymentStatus(ctx, oid, models.PaymentPaid, models.PaymentUnpaid); rerr != nil {
				s.logger.Error().Err(rerr).Str("order", oid.Hex()).Msg("cannot revert payment status")
			}
			return nil, err
		}
	}

	payment := &models.Payment{
		OrderID:            oid,
		PaymentMethod:      method,
		PaymentStatus:      models.PaymentRecordCompleted,
		Amount:             amount,
		TransactionDetails: details,
		ProcessedBy:        processedBy,
		CreatedAt:          s.now(),
	}
	if err := s.payments.Insert(ctx, payment); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, conflictf("a payment is already recorded for order %s", order.OrderNumber)
		}
		s.logger.Error().Err(err).Str("order", oid.Hex()).Msg("order paid but payment record failed")
		return nil, fmt.Errorf("cannot record payment: %w", err)
	}

	paymentsTotal.WithLabelValues(method).Inc()
	s.logger.Info().
		Str("order", oid.Hex()).
		Str("method", method).
		Float64("amount", amount).
		Msg("payment recorded")
	return payment, nil
}
