package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tetgift/commerce/pkg/slogx"
	"github.com/tetgift/commerce/pkg/vnpay"
)

var (
	ErrMissingPaymentID = errors.New("missing_payment_id")
	ErrInvalidAmount    = errors.New("invalid_amount")
)

// PaymentService builds signed checkout URLs for the VNPay gateway.
type PaymentService struct {
	Gateway *vnpay.Client
}

// CheckoutURL validates the inputs and returns the signed redirect URL.
func (s *PaymentService) CheckoutURL(ctx context.Context, paymentID string, amount float64, clientIP string) (string, error) {
	l := slogx.FromContext(ctx)

	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return "", ErrMissingPaymentID
	}
	if amount <= 0 {
		return "", ErrInvalidAmount
	}

	url := s.Gateway.BuildPaymentURL(paymentID, amount, clientIP)
	l.Info("checkout url built", slog.String("payment_id", paymentID))
	return url, nil
}
