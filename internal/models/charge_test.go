package models

import (
	"errors"
	"testing"
)

func TestChargeRefundTransition(t *testing.T) {
	charge := &Charge{Status: ChargeStatusApproved}

	if err := charge.Refund(); err != nil {
		t.Fatalf("Refund() error = %v", err)
	}
	if !charge.Refunded || charge.RefundedAt == nil {
		t.Errorf("Refund() did not set refunded state: refunded=%v refunded_at=%v", charge.Refunded, charge.RefundedAt)
	}

	err := charge.Refund()
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != ErrorCodeChargeAlreadyRefunded {
		t.Errorf("second Refund() error = %v, want ChargeAlreadyRefunded", err)
	}
}

func TestChargeRefundDeclined(t *testing.T) {
	charge := &Charge{Status: ChargeStatusDeclined}

	err := charge.Refund()
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != ErrorCodeChargeNotRefundable {
		t.Errorf("Refund() on declined charge error = %v, want ChargeNotRefundable", err)
	}
	if charge.Refunded {
		t.Error("declined charge was marked refunded")
	}
}
