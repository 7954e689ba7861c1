package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/serchbauti/technical-t1/internal/models"
)

type CardService struct {
	cards   CardStore
	clients ClientFinder
	logger  *zap.Logger
}

func NewCardService(cards CardStore, clients ClientFinder, logger *zap.Logger) *CardService {
	return &CardService{
		cards:   cards,
		clients: clients,
		logger:  logger,
	}
}

// CreateCard tokenizes a raw PAN for an existing client. The PAN is
// validated, reduced to pan_masked/bin/last4, and discarded; it is
// never stored or logged.
func (s *CardService) CreateCard(ctx context.Context, req *models.CardCreateRequest) (*models.Card, error) {
	if !models.IsValidID(req.ClientID) {
		return nil, models.NewValidationError("Invalid client_id")
	}

	client, err := s.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	if client == nil {
		return nil, models.NewNotFoundError(models.ErrorCodeClientNotFound, "Client not found")
	}

	card, err := models.NewCard(client.ID, req.PAN)
	if err != nil {
		return nil, err
	}

	created, err := s.cards.Insert(ctx, card)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	s.logger.Info("card created",
		zap.String("card_id", created.ID),
		zap.String("client_id", created.ClientID),
		zap.String("bin", created.BIN),
		zap.String("last4", created.Last4))
	return created, nil
}

func (s *CardService) GetCard(ctx context.Context, id string) (*models.Card, error) {
	if !models.IsValidID(id) {
		return nil, models.NewValidationError("Invalid card_id")
	}

	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	if card == nil {
		return nil, models.NewNotFoundError(models.ErrorCodeCardNotFound, "Card not found")
	}
	return card, nil
}

// UpdateCard replaces the derived bin/last4 metadata. A raw PAN is
// never accepted after creation; pan_masked is kept consistent with the
// new last4.
func (s *CardService) UpdateCard(ctx context.Context, id string, req *models.CardUpdateRequest) (*models.Card, error) {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := card.ApplyMetadataUpdate(req); err != nil {
		return nil, err
	}
	if err := s.cards.Update(ctx, card); err != nil {
		return nil, models.NewStorageError(err)
	}
	return card, nil
}

func (s *CardService) DeleteCard(ctx context.Context, id string) error {
	if _, err := s.GetCard(ctx, id); err != nil {
		return err
	}

	if err := s.cards.Delete(ctx, id); err != nil {
		return models.NewStorageError(err)
	}

	s.logger.Info("card deleted", zap.String("card_id", id))
	return nil
}
