// Package rules decides whether a simulated charge is approved or
// declined. Evaluation is deterministic and has no side effects.
package rules

import (
	"github.com/serchbauti/technical-t1/internal/models"
)

// Reason codes attached to declined charges.
const (
	ReasonSuspectPAN    = "SUSPECT_PAN"
	ReasonLimitExceeded = "LIMIT_EXCEEDED"
)

// MaxApprovedAmount is the inclusive upper bound for auto-approval.
const MaxApprovedAmount = 5000.0

var blockedLast4 = map[string]struct{}{
	"0000": {},
	"9999": {},
}

// Evaluate applies the authorization rules in order, first match wins:
//
//  1. last4 blocklist        -> declined, SUSPECT_PAN
//  2. amount > 5000.0        -> declined, LIMIT_EXCEEDED
//  3. otherwise              -> approved, nil reason
//
// The returned reason code is nil exactly when the charge is approved.
func Evaluate(last4 string, amount float64) (models.ChargeStatus, *string) {
	if _, blocked := blockedLast4[last4]; blocked {
		return models.ChargeStatusDeclined, reason(ReasonSuspectPAN)
	}
	if amount > MaxApprovedAmount {
		return models.ChargeStatusDeclined, reason(ReasonLimitExceeded)
	}
	return models.ChargeStatusApproved, nil
}

func reason(code string) *string {
	return &code
}
