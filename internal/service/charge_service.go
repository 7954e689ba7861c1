package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/serchbauti/technical-t1/internal/events"
	"github.com/serchbauti/technical-t1/internal/metrics"
	"github.com/serchbauti/technical-t1/internal/models"
	"github.com/serchbauti/technical-t1/internal/rules"
	"github.com/serchbauti/technical-t1/pkg/redis"
)

const idempotencyCacheTTL = 24 * time.Hour

// ChargeResult is the outcome of a CreateCharge call. Replayed is true
// when an existing charge was returned for a repeated request_id; the
// HTTP layer surfaces that as 200 instead of 201.
type ChargeResult struct {
	Charge   *models.Charge
	Replayed bool
}

// ChargeService owns the charge lifecycle: reference validation, the
// idempotency protocol, rule evaluation, the durable insert, and the
// refund transition. It holds no state of its own and is safe for
// arbitrary request parallelism.
type ChargeService struct {
	charges   ChargeStore
	clients   ClientFinder
	cards     CardFinder
	cache     *redis.Client
	publisher events.Publisher
	logger    *zap.Logger
}

// NewChargeService wires the charge core. cache may be nil to disable
// the idempotency read-through cache; the store's unique index remains
// authoritative either way.
func NewChargeService(
	charges ChargeStore,
	clients ClientFinder,
	cards CardFinder,
	cache *redis.Client,
	publisher events.Publisher,
	logger *zap.Logger,
) *ChargeService {
	return &ChargeService{
		charges:   charges,
		clients:   clients,
		cards:     cards,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateCharge validates the request, resolves idempotency, evaluates
// the authorization rules and durably inserts the resulting charge.
//
// Two concurrent calls with the same request_id may both pass the
// pre-check; the sparse unique index decides the winner and the loser
// re-reads and returns the winner's record. The caller never sees the
// conflict.
func (s *ChargeService) CreateCharge(ctx context.Context, req *models.ChargeCreateRequest) (*ChargeResult, error) {
	// Cheap checks before any lookup.
	if req.Amount <= 0 {
		return nil, models.NewValidationError("amount must be greater than zero")
	}
	if !models.IsValidID(req.ClientID) {
		return nil, models.NewValidationError("Invalid client_id")
	}
	if !models.IsValidID(req.CardID) {
		return nil, models.NewValidationError("Invalid card_id")
	}

	requestID := req.RequestID
	if requestID != nil && *requestID == "" {
		requestID = nil
	}

	client, err := s.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	if client == nil {
		return nil, models.NewNotFoundError(models.ErrorCodeClientNotFound, "Client not found")
	}

	card, err := s.cards.FindByID(ctx, req.CardID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	if card == nil {
		return nil, models.NewNotFoundError(models.ErrorCodeCardNotFound, "Card not found")
	}

	if card.ClientID != client.ID {
		return nil, models.NewInvalidRelationshipError("Card does not belong to client")
	}

	// Idempotency pre-check: an existing charge under this request_id
	// is returned unchanged, with no new rule evaluation or timestamp.
	if requestID != nil {
		if cached := s.cachedCharge(ctx, *requestID); cached != nil {
			metrics.ChargeReplaysTotal.Inc()
			return &ChargeResult{Charge: cached, Replayed: true}, nil
		}

		existing, err := s.charges.FindByRequestID(ctx, *requestID)
		if err != nil {
			return nil, models.NewStorageError(err)
		}
		if existing != nil {
			s.cacheCharge(ctx, *requestID, existing)
			metrics.ChargeReplaysTotal.Inc()
			return &ChargeResult{Charge: existing, Replayed: true}, nil
		}
	}

	status, reasonCode := rules.Evaluate(card.Last4, req.Amount)
	charge := &models.Charge{
		ClientID:    client.ID,
		CardID:      card.ID,
		Amount:      req.Amount,
		AttemptedAt: time.Now().UTC(),
		Status:      status,
		ReasonCode:  reasonCode,
		Refunded:    false,
		RequestID:   requestID,
	}

	created, err := s.charges.Insert(ctx, charge)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateRequestID) && requestID != nil {
			// Lost the insert race; the winner's record is the answer.
			winner, ferr := s.charges.FindByRequestID(ctx, *requestID)
			if ferr != nil {
				return nil, models.NewStorageError(ferr)
			}
			if winner != nil {
				s.cacheCharge(ctx, *requestID, winner)
				metrics.ChargeReplaysTotal.Inc()
				return &ChargeResult{Charge: winner, Replayed: true}, nil
			}
		}
		return nil, models.NewStorageError(err)
	}

	metrics.ChargesTotal.WithLabelValues(string(created.Status)).Inc()
	if requestID != nil {
		s.cacheCharge(ctx, *requestID, created)
	}
	s.publisher.PublishChargeEvent(ctx, events.TypeChargeCreated, created)

	fields := []zap.Field{
		zap.String("charge_id", created.ID),
		zap.String("client_id", created.ClientID),
		zap.String("status", string(created.Status)),
		zap.Float64("amount", created.Amount),
	}
	if created.ReasonCode != nil {
		fields = append(fields, zap.String("reason_code", *created.ReasonCode))
	}
	s.logger.Info("charge created", fields...)

	return &ChargeResult{Charge: created, Replayed: false}, nil
}

// ListCharges returns a client's charges, newest first. An unknown
// client yields an empty list, not an error: listing is a read filter,
// not an existence assertion.
func (s *ChargeService) ListCharges(ctx context.Context, clientID string, filter models.ChargeFilter) ([]*models.Charge, error) {
	if !models.IsValidID(clientID) {
		return nil, models.NewValidationError("Invalid client_id")
	}

	charges, err := s.charges.Query(ctx, clientID, filter)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return charges, nil
}

// RefundCharge performs the one-way refund transition on an approved,
// unrefunded charge.
func (s *ChargeService) RefundCharge(ctx context.Context, chargeID string) (*models.Charge, error) {
	if !models.IsValidID(chargeID) {
		return nil, models.NewValidationError("Invalid charge_id")
	}

	charge, err := s.charges.FindByID(ctx, chargeID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	if charge == nil {
		return nil, models.NewNotFoundError(models.ErrorCodeChargeNotFound, "Charge not found")
	}

	if err := charge.Refund(); err != nil {
		return nil, err
	}
	if err := s.charges.Update(ctx, charge); err != nil {
		return nil, models.NewStorageError(err)
	}

	if charge.RequestID != nil {
		s.refreshCachedCharge(ctx, *charge.RequestID, charge)
	}

	metrics.RefundsTotal.Inc()
	s.publisher.PublishChargeEvent(ctx, events.TypeChargeRefunded, charge)
	s.logger.Info("charge refunded", zap.String("charge_id", charge.ID))

	return charge, nil
}

func idempotencyKey(requestID string) string {
	return fmt.Sprintf("idempotency:%s", requestID)
}

func (s *ChargeService) cachedCharge(ctx context.Context, requestID string) *models.Charge {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, idempotencyKey(requestID))
	if err != nil {
		return nil
	}

	var charge models.Charge
	if err := json.Unmarshal([]byte(data), &charge); err != nil {
		return nil
	}
	return &charge
}

func (s *ChargeService) cacheCharge(ctx context.Context, requestID string, charge *models.Charge) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(charge)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, idempotencyKey(requestID), data, idempotencyCacheTTL); err != nil {
		s.logger.Warn("failed to cache idempotent charge", zap.Error(err))
	}
}

// refreshCachedCharge overwrites a cached replay entry after a refund
// so replays reflect the refunded state.
func (s *ChargeService) refreshCachedCharge(ctx context.Context, requestID string, charge *models.Charge) {
	s.cacheCharge(ctx, requestID, charge)
}
