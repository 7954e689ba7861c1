package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/serchbauti/technical-t1/internal/events"
	"github.com/serchbauti/technical-t1/internal/repository"
	"github.com/serchbauti/technical-t1/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	log := zap.NewNop()

	clients := repository.NewMemoryClientStore()
	cards := repository.NewMemoryCardStore()
	charges := repository.NewMemoryChargeStore()
	publisher := events.NewLogPublisher(log)

	clientService := service.NewClientService(clients, log)
	cardService := service.NewCardService(cards, clients, log)
	chargeService := service.NewChargeService(charges, clients, cards, nil, publisher, log)

	return NewRouter(
		NewClientHandler(clientService, log),
		NewCardHandler(cardService, log),
		NewChargeHandler(chargeService, log),
		log,
	)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if len(w.Body.Bytes()) > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestChargeFlowEndToEnd(t *testing.T) {
	router := newTestRouter(t)

	// Client
	w, client := doJSON(t, router, http.MethodPost, "/clients", gin.H{
		"name":  "Flow Client",
		"email": "flow@example.com",
		"phone": "+10000000000",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	clientID := client["id"].(string)

	// Card ending 4242
	w, card := doJSON(t, router, http.MethodPost, "/cards", gin.H{
		"client_id": clientID,
		"pan":       "4242424242424242",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	cardID := card["id"].(string)
	assert.Equal(t, "************4242", card["pan_masked"])
	assert.Equal(t, "4242", card["last4"])
	assert.Equal(t, "424242", card["bin"])
	_, hasPAN := card["pan"]
	assert.False(t, hasPAN, "raw PAN must never be echoed back")

	// Approved charge
	w, charge := doJSON(t, router, http.MethodPost, "/charges", gin.H{
		"client_id": clientID,
		"card_id":   cardID,
		"amount":    100.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "approved", charge["status"])
	assert.Nil(t, charge["reason_code"])
	chargeID := charge["id"].(string)

	// Declined over the limit
	w, declined := doJSON(t, router, http.MethodPost, "/charges", gin.H{
		"client_id": clientID,
		"card_id":   cardID,
		"amount":    6000.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "declined", declined["status"])
	assert.Equal(t, "LIMIT_EXCEEDED", declined["reason_code"])

	// Refund once
	w, refunded := doJSON(t, router, http.MethodPost, "/charges/"+chargeID+"/refund", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, refunded["refunded"])
	assert.NotNil(t, refunded["refunded_at"])

	// Refund twice -> conflict
	w, conflict := doJSON(t, router, http.MethodPost, "/charges/"+chargeID+"/refund", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CHARGE_ALREADY_REFUNDED", conflict["code"])

	// Refunding the declined charge -> conflict
	w, conflict = doJSON(t, router, http.MethodPost, "/charges/"+declined["id"].(string)+"/refund", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CHARGE_NOT_REFUNDABLE", conflict["code"])
}

func TestChargeIdempotentReplayStatusCodes(t *testing.T) {
	router := newTestRouter(t)

	_, client := doJSON(t, router, http.MethodPost, "/clients", gin.H{
		"name":  "Replay Client",
		"email": "replay@example.com",
	})
	clientID := client["id"].(string)

	_, card := doJSON(t, router, http.MethodPost, "/cards", gin.H{
		"client_id": clientID,
		"pan":       "4242424242424242",
	})
	cardID := card["id"].(string)

	payload := gin.H{
		"client_id":  clientID,
		"card_id":    cardID,
		"amount":     350.0,
		"request_id": "replay-123",
	}

	w, first := doJSON(t, router, http.MethodPost, "/charges", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	payload["amount"] = 999.0
	w, second := doJSON(t, router, http.MethodPost, "/charges", payload)
	require.Equal(t, http.StatusOK, w.Code, "replay must be 200, not 201")
	assert.Equal(t, first["id"], second["id"])
	assert.Equal(t, 350.0, second["amount"])
}

func TestChargeEndpointErrorStatuses(t *testing.T) {
	router := newTestRouter(t)

	_, client := doJSON(t, router, http.MethodPost, "/clients", gin.H{
		"name":  "Err Client",
		"email": "err@example.com",
	})
	clientID := client["id"].(string)
	_, card := doJSON(t, router, http.MethodPost, "/cards", gin.H{
		"client_id": clientID,
		"pan":       "4242424242424242",
	})
	cardID := card["id"].(string)

	// Malformed ids -> 422
	w, _ := doJSON(t, router, http.MethodPost, "/charges", gin.H{
		"client_id": "junk", "card_id": cardID, "amount": 10.0,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Unknown client -> 404
	w, _ = doJSON(t, router, http.MethodPost, "/charges", gin.H{
		"client_id": "64f0c1e2a5b3d4e5f6a7b8c9", "card_id": cardID, "amount": 10.0,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Ownership mismatch -> 422
	_, other := doJSON(t, router, http.MethodPost, "/clients", gin.H{
		"name": "Other", "email": "other@example.com",
	})
	w, body := doJSON(t, router, http.MethodPost, "/charges", gin.H{
		"client_id": other["id"].(string), "card_id": cardID, "amount": 10.0,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "CARD_OWNERSHIP_MISMATCH", body["code"])

	// Listing with a bad client id -> 422; unknown-but-valid id -> 200 [].
	req := httptest.NewRequest(http.MethodGet, "/charges/not-an-id", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w2.Code)

	req = httptest.NewRequest(http.MethodGet, "/charges/64f0c1e2a5b3d4e5f6a7b8c9", nil)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "[]", w2.Body.String())

	// Refund of a missing charge -> 404
	w, _ = doJSON(t, router, http.MethodPost, "/charges/64f0c1e2a5b3d4e5f6a7b8c9/refund", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListChargesQueryFilters(t *testing.T) {
	router := newTestRouter(t)

	_, client := doJSON(t, router, http.MethodPost, "/clients", gin.H{
		"name":  "List Client",
		"email": "list@example.com",
	})
	clientID := client["id"].(string)
	_, card := doJSON(t, router, http.MethodPost, "/cards", gin.H{
		"client_id": clientID,
		"pan":       "4242424242424242",
	})
	cardID := card["id"].(string)

	for _, amount := range []float64{100, 6000} {
		w, _ := doJSON(t, router, http.MethodPost, "/charges", gin.H{
			"client_id": clientID, "card_id": cardID, "amount": amount,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/charges/"+clientID+"?status=declined", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var charges []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &charges))
	require.Len(t, charges, 1)
	assert.Equal(t, "declined", charges[0]["status"])

	// Invalid status value -> 422
	req = httptest.NewRequest(http.MethodGet, "/charges/"+clientID+"?status=pending", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Invalid timestamp -> 422
	req = httptest.NewRequest(http.MethodGet, "/charges/"+clientID+"?since=yesterday", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestClientAndCardEndpoints(t *testing.T) {
	router := newTestRouter(t)

	// 422 on malformed body
	w, _ := doJSON(t, router, http.MethodPost, "/clients", gin.H{"email": "x@example.com"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, client := doJSON(t, router, http.MethodPost, "/clients", gin.H{
		"name":  "CRUD Client",
		"email": "crud@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	clientID := client["id"].(string)

	w, updated := doJSON(t, router, http.MethodPut, "/clients/"+clientID, gin.H{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", updated["name"])

	// Card with a bad Luhn check digit -> 422
	w, _ = doJSON(t, router, http.MethodPost, "/cards", gin.H{
		"client_id": clientID,
		"pan":       "4242424242424241",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, card := doJSON(t, router, http.MethodPost, "/cards", gin.H{
		"client_id": clientID,
		"pan":       "4242424242424242",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	cardID := card["id"].(string)

	w, card = doJSON(t, router, http.MethodPut, "/cards/"+cardID, gin.H{
		"bin": "411111", "last4": "1111",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "************1111", card["pan_masked"])

	// Delete both, then 404
	req := httptest.NewRequest(http.MethodDelete, "/cards/"+cardID, nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusNoContent, w2.Code)

	req = httptest.NewRequest(http.MethodDelete, "/clients/"+clientID, nil)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusNoContent, w2.Code)

	req = httptest.NewRequest(http.MethodGet, "/clients/"+clientID, nil)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusNotFound, w2.Code)
}
