package models

import "time"

type ChargeStatus string

const (
	ChargeStatusApproved ChargeStatus = "approved"
	ChargeStatusDeclined ChargeStatus = "declined"
)

// Charge is a simulated authorization attempt. The status is decided
// once at creation and never recomputed; the only mutation allowed
// afterwards is the one-way refund transition.
type Charge struct {
	ID          string       `json:"id"`
	ClientID    string       `json:"client_id"`
	CardID      string       `json:"card_id"`
	Amount      float64      `json:"amount"`
	AttemptedAt time.Time    `json:"attempted_at"`
	Status      ChargeStatus `json:"status"`
	ReasonCode  *string      `json:"reason_code"`
	Refunded    bool         `json:"refunded"`
	RefundedAt  *time.Time   `json:"refunded_at"`
	RequestID   *string      `json:"request_id"`
}

type ChargeCreateRequest struct {
	ClientID  string  `json:"client_id" binding:"required"`
	CardID    string  `json:"card_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	RequestID *string `json:"request_id"`
}

// ChargeFilter narrows a charge listing. All set fields combine with
// logical AND. Since is inclusive, Until exclusive.
type ChargeFilter struct {
	Status *ChargeStatus
	Since  *time.Time
	Until  *time.Time
}

// Refund marks an approved, unrefunded charge as refunded. The
// transition is irreversible.
func (c *Charge) Refund() error {
	if c.Status != ChargeStatusApproved {
		return NewConflictError(ErrorCodeChargeNotRefundable, "Only approved charges can be refunded")
	}
	if c.Refunded {
		return NewConflictError(ErrorCodeChargeAlreadyRefunded, "Charge already refunded")
	}
	now := time.Now().UTC()
	c.Refunded = true
	c.RefundedAt = &now
	return nil
}
