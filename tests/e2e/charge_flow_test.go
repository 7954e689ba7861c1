//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

// Runs against a live server (make run) plus its MongoDB:
//
//	go test -tags e2e ./tests/e2e/...
//
// BASE_URL overrides the default localhost target.
func baseURL() string {
	if url := os.Getenv("BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func postJSON(t *testing.T, path string, payload map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("Failed to encode payload: %v", err)
		}
	}

	resp, err := http.Post(baseURL()+path, "application/json", &body)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response from %s: %v", path, err)
	}
	return resp.StatusCode, result
}

func TestChargeFlowE2E(t *testing.T) {
	stamp := time.Now().Format("20060102150405")

	// Client
	status, client := postJSON(t, "/clients", map[string]interface{}{
		"name":  "E2E Client " + stamp,
		"email": fmt.Sprintf("e2e-%s@example.com", stamp),
	})
	if status != http.StatusCreated {
		t.Fatalf("Expected 201 creating client, got %d: %v", status, client)
	}
	clientID, _ := client["id"].(string)
	if clientID == "" {
		t.Fatal("Client ID is missing")
	}

	// Card
	status, card := postJSON(t, "/cards", map[string]interface{}{
		"client_id": clientID,
		"pan":       "4242424242424242",
	})
	if status != http.StatusCreated {
		t.Fatalf("Expected 201 creating card, got %d: %v", status, card)
	}
	cardID, _ := card["id"].(string)
	if card["pan_masked"] != "************4242" {
		t.Errorf("Unexpected pan_masked: %v", card["pan_masked"])
	}

	// Approved charge with an idempotency key
	requestID := "e2e-charge-" + stamp
	status, charge := postJSON(t, "/charges", map[string]interface{}{
		"client_id":  clientID,
		"card_id":    cardID,
		"amount":     100.00,
		"request_id": requestID,
	})
	if status != http.StatusCreated {
		t.Fatalf("Expected 201 creating charge, got %d: %v", status, charge)
	}
	if charge["status"] != "approved" {
		t.Errorf("Expected approved charge, got %v (reason %v)", charge["status"], charge["reason_code"])
	}
	chargeID, _ := charge["id"].(string)

	// Replay of the same request_id returns the original with 200
	status, replay := postJSON(t, "/charges", map[string]interface{}{
		"client_id":  clientID,
		"card_id":    cardID,
		"amount":     100.00,
		"request_id": requestID,
	})
	if status != http.StatusOK {
		t.Errorf("Expected 200 on replay, got %d", status)
	}
	if replay["id"] != chargeID {
		t.Errorf("Replay returned a different charge: %v vs %v", replay["id"], chargeID)
	}

	// Over-limit charge is declined, not rejected
	status, declined := postJSON(t, "/charges", map[string]interface{}{
		"client_id": clientID,
		"card_id":   cardID,
		"amount":    6000.00,
	})
	if status != http.StatusCreated {
		t.Fatalf("Expected 201 for declined charge, got %d: %v", status, declined)
	}
	if declined["status"] != "declined" || declined["reason_code"] != "LIMIT_EXCEEDED" {
		t.Errorf("Expected LIMIT_EXCEEDED decline, got %v/%v", declined["status"], declined["reason_code"])
	}

	// Refund, then refuse the second refund
	status, refunded := postJSON(t, "/charges/"+chargeID+"/refund", nil)
	if status != http.StatusOK {
		t.Fatalf("Expected 200 refunding charge, got %d: %v", status, refunded)
	}
	if refunded["refunded"] != true {
		t.Errorf("Charge not marked refunded: %v", refunded)
	}

	status, conflict := postJSON(t, "/charges/"+chargeID+"/refund", nil)
	if status != http.StatusConflict {
		t.Errorf("Expected 409 on double refund, got %d: %v", status, conflict)
	}

	t.Logf("Charge flow completed: charge %v refunded", chargeID)
}
