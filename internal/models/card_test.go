package models

import (
	"strings"
	"testing"
)

const validPAN = "4242424242424242"

func TestNewCardDerivesMaskedFields(t *testing.T) {
	card, err := NewCard("64f0c1e2a5b3d4e5f6a7b8c9", validPAN)
	if err != nil {
		t.Fatalf("NewCard() error = %v", err)
	}

	if card.BIN != "424242" {
		t.Errorf("BIN = %q, want 424242", card.BIN)
	}
	if card.Last4 != "4242" {
		t.Errorf("Last4 = %q, want 4242", card.Last4)
	}
	if len(card.PANMasked) != len(validPAN) {
		t.Errorf("PANMasked length = %d, want %d", len(card.PANMasked), len(validPAN))
	}
	if !strings.HasSuffix(card.PANMasked, card.Last4) {
		t.Errorf("PANMasked %q does not end with last4 %q", card.PANMasked, card.Last4)
	}
	for _, r := range card.PANMasked[:len(card.PANMasked)-4] {
		if r != '*' {
			t.Fatalf("PANMasked %q contains unmasked character before last4", card.PANMasked)
		}
	}
	if strings.Contains(card.PANMasked, validPAN[:6]+validPAN[6:12]) {
		t.Error("raw PAN leaked into PANMasked")
	}
}

func TestNewCardRejectsBadPANs(t *testing.T) {
	tests := []struct {
		name string
		pan  string
	}{
		{name: "Too short", pan: "42424242424"},
		{name: "Too long", pan: "42424242424242424242"},
		{name: "Non numeric", pan: "4242abcd42424242"},
		{name: "Wrong check digit", pan: "4242424242424241"},
		{name: "Empty", pan: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCard("64f0c1e2a5b3d4e5f6a7b8c9", tt.pan); err == nil {
				t.Errorf("NewCard(%q) succeeded, want validation error", tt.pan)
			}
		})
	}
}

func TestApplyMetadataUpdateKeepsMaskConsistent(t *testing.T) {
	card, err := NewCard("64f0c1e2a5b3d4e5f6a7b8c9", validPAN)
	if err != nil {
		t.Fatalf("NewCard() error = %v", err)
	}

	if err := card.ApplyMetadataUpdate(&CardUpdateRequest{BIN: "411111", Last4: "1111"}); err != nil {
		t.Fatalf("ApplyMetadataUpdate() error = %v", err)
	}

	if card.BIN != "411111" || card.Last4 != "1111" {
		t.Errorf("update not applied: bin=%q last4=%q", card.BIN, card.Last4)
	}
	want := strings.Repeat("*", len(validPAN)-4) + "1111"
	if card.PANMasked != want {
		t.Errorf("PANMasked = %q, want %q", card.PANMasked, want)
	}
}

func TestApplyMetadataUpdateValidation(t *testing.T) {
	card, _ := NewCard("64f0c1e2a5b3d4e5f6a7b8c9", validPAN)

	if err := card.ApplyMetadataUpdate(&CardUpdateRequest{BIN: "41111", Last4: "1111"}); err == nil {
		t.Error("5-digit bin accepted, want validation error")
	}
	if err := card.ApplyMetadataUpdate(&CardUpdateRequest{BIN: "411111", Last4: "111"}); err == nil {
		t.Error("3-digit last4 accepted, want validation error")
	}
	if err := card.ApplyMetadataUpdate(&CardUpdateRequest{BIN: "41111x", Last4: "1111"}); err == nil {
		t.Error("non-numeric bin accepted, want validation error")
	}
}
