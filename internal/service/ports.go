package service

import (
	"context"

	"github.com/serchbauti/technical-t1/internal/models"
)

// Store ports the services depend on. Production implementations live
// in internal/repository (Mongo); tests use the in-memory variants.
// Find methods return (nil, nil) when no record exists.

// ClientFinder is the read-only view of client records the charge core
// needs for reference validation.
type ClientFinder interface {
	FindByID(ctx context.Context, id string) (*models.Client, error)
}

// CardFinder is the read-only view of card records; the charge core
// reads only masked attributes from it.
type CardFinder interface {
	FindByID(ctx context.Context, id string) (*models.Card, error)
}

type ClientStore interface {
	ClientFinder
	Insert(ctx context.Context, client *models.Client) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
}

type CardStore interface {
	CardFinder
	Insert(ctx context.Context, card *models.Card) (*models.Card, error)
	Update(ctx context.Context, card *models.Card) error
	Delete(ctx context.Context, id string) error
}

// ChargeStore persists charges. Insert must enforce uniqueness of
// non-nil request_id values and return models.ErrDuplicateRequestID on
// a violation; charges without a request_id are unrestricted.
type ChargeStore interface {
	Insert(ctx context.Context, charge *models.Charge) (*models.Charge, error)
	FindByID(ctx context.Context, id string) (*models.Charge, error)
	FindByRequestID(ctx context.Context, requestID string) (*models.Charge, error)
	Query(ctx context.Context, clientID string, filter models.ChargeFilter) ([]*models.Charge, error)
	Update(ctx context.Context, charge *models.Charge) error
}
