package models

import (
	"strings"
	"time"

	"github.com/serchbauti/technical-t1/internal/luhn"
)

const (
	minPANLen       = 12
	maxPANLen       = 19
	minMaskedPANLen = 12
)

// Card is a tokenized reference to a card number. The raw PAN is
// accepted once at creation, used to derive pan_masked/bin/last4, and
// never stored.
type Card struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	PANMasked string    `json:"pan_masked"`
	Last4     string    `json:"last4"`
	BIN       string    `json:"bin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CardCreateRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	PAN      string `json:"pan" binding:"required"`
}

// CardUpdateRequest carries only derived metadata. A raw PAN is never
// accepted again after creation.
type CardUpdateRequest struct {
	BIN   string `json:"bin" binding:"required"`
	Last4 string `json:"last4" binding:"required"`
}

// NewCard validates the raw PAN (numeric, 12-19 digits, Luhn-valid) and
// builds a Card holding only the derived safe fields.
func NewCard(clientID, rawPAN string) (*Card, error) {
	pan := strings.TrimSpace(rawPAN)
	if !isDigits(pan) || len(pan) < minPANLen || len(pan) > maxPANLen || !luhn.Validate(pan) {
		return nil, NewValidationError("Invalid PAN (Luhn)")
	}

	bin, last4, err := luhn.SplitBinLast4(pan)
	if err != nil {
		return nil, NewValidationError("Invalid PAN (Luhn)")
	}
	masked, err := luhn.Mask(pan)
	if err != nil {
		return nil, NewValidationError("Invalid PAN (Luhn)")
	}

	now := time.Now().UTC()
	return &Card{
		ClientID:  clientID,
		PANMasked: masked,
		Last4:     last4,
		BIN:       bin,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyMetadataUpdate replaces bin/last4 and keeps pan_masked consistent
// with the new last4: same length (floor of 12), all mask characters
// before the trailing 4 digits.
func (c *Card) ApplyMetadataUpdate(req *CardUpdateRequest) error {
	if len(req.BIN) != 6 || !isDigits(req.BIN) {
		return NewValidationError("bin must be exactly 6 digits")
	}
	if len(req.Last4) != 4 || !isDigits(req.Last4) {
		return NewValidationError("last4 must be exactly 4 digits")
	}

	c.BIN = req.BIN
	c.Last4 = req.Last4

	maskedLen := len(c.PANMasked)
	if maskedLen < minMaskedPANLen {
		maskedLen = minMaskedPANLen
	}
	c.PANMasked = strings.Repeat("*", maskedLen-4) + req.Last4
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
