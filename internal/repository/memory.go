package repository

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/serchbauti/technical-t1/internal/models"
)

// In-memory implementations of the store ports, for tests and local
// runs without Mongo. They enforce the same semantics as the Mongo
// repositories, including the sparse unique request_id constraint and
// the listing order.

type MemoryClientStore struct {
	mu      sync.RWMutex
	clients map[string]models.Client
}

func NewMemoryClientStore() *MemoryClientStore {
	return &MemoryClientStore{clients: make(map[string]models.Client)}
}

func (s *MemoryClientStore) Insert(_ context.Context, client *models.Client) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *client
	stored.ID = primitive.NewObjectID().Hex()
	s.clients[stored.ID] = stored
	out := stored
	return &out, nil
}

func (s *MemoryClientStore) FindByID(_ context.Context, id string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.clients[id]
	if !ok {
		return nil, nil
	}
	out := stored
	return &out, nil
}

func (s *MemoryClientStore) Update(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.ID] = *client
	return nil
}

func (s *MemoryClientStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
	return nil
}

type MemoryCardStore struct {
	mu    sync.RWMutex
	cards map[string]models.Card
}

func NewMemoryCardStore() *MemoryCardStore {
	return &MemoryCardStore{cards: make(map[string]models.Card)}
}

func (s *MemoryCardStore) Insert(_ context.Context, card *models.Card) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *card
	stored.ID = primitive.NewObjectID().Hex()
	s.cards[stored.ID] = stored
	out := stored
	return &out, nil
}

func (s *MemoryCardStore) FindByID(_ context.Context, id string) (*models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.cards[id]
	if !ok {
		return nil, nil
	}
	out := stored
	return &out, nil
}

func (s *MemoryCardStore) Update(_ context.Context, card *models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.ID] = *card
	return nil
}

func (s *MemoryCardStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cards, id)
	return nil
}

type MemoryChargeStore struct {
	mu         sync.RWMutex
	order      []string
	charges    map[string]models.Charge
	requestIDs map[string]string
}

func NewMemoryChargeStore() *MemoryChargeStore {
	return &MemoryChargeStore{
		charges:    make(map[string]models.Charge),
		requestIDs: make(map[string]string),
	}
}

// Insert adds the charge, rejecting a duplicate request_id atomically
// under the store lock, like the unique index does in Mongo.
func (s *MemoryChargeStore) Insert(_ context.Context, charge *models.Charge) (*models.Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if charge.RequestID != nil {
		if _, exists := s.requestIDs[*charge.RequestID]; exists {
			return nil, models.ErrDuplicateRequestID
		}
	}

	stored := *charge
	stored.ID = primitive.NewObjectID().Hex()
	s.charges[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	if stored.RequestID != nil {
		s.requestIDs[*stored.RequestID] = stored.ID
	}
	out := stored
	return &out, nil
}

func (s *MemoryChargeStore) FindByID(_ context.Context, id string) (*models.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.charges[id]
	if !ok {
		return nil, nil
	}
	out := stored
	return &out, nil
}

func (s *MemoryChargeStore) FindByRequestID(_ context.Context, requestID string) (*models.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.requestIDs[requestID]
	if !ok {
		return nil, nil
	}
	stored := s.charges[id]
	out := stored
	return &out, nil
}

func (s *MemoryChargeStore) Query(_ context.Context, clientID string, filter models.ChargeFilter) ([]*models.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []*models.Charge{}
	for _, id := range s.order {
		stored := s.charges[id]
		if stored.ClientID != clientID {
			continue
		}
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		if filter.Since != nil && stored.AttemptedAt.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && !stored.AttemptedAt.Before(*filter.Until) {
			continue
		}
		out := stored
		matches = append(matches, &out)
	}

	// Newest first; stable keeps insertion order on equal timestamps.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].AttemptedAt.After(matches[j].AttemptedAt)
	})
	return matches, nil
}

func (s *MemoryChargeStore) Update(_ context.Context, charge *models.Charge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.charges[charge.ID]
	if !ok {
		return nil
	}
	stored.Refunded = charge.Refunded
	stored.RefundedAt = charge.RefundedAt
	s.charges[charge.ID] = stored
	return nil
}
