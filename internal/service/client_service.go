package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/serchbauti/technical-t1/internal/models"
)

type ClientService struct {
	store  ClientStore
	logger *zap.Logger
}

func NewClientService(store ClientStore, logger *zap.Logger) *ClientService {
	return &ClientService{
		store:  store,
		logger: logger,
	}
}

func (s *ClientService) CreateClient(ctx context.Context, req *models.ClientCreateRequest) (*models.Client, error) {
	client, err := models.NewClient(req.Name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Insert(ctx, client)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	s.logger.Info("client created", zap.String("client_id", created.ID))
	return created, nil
}

func (s *ClientService) GetClient(ctx context.Context, id string) (*models.Client, error) {
	if !models.IsValidID(id) {
		return nil, models.NewValidationError("Invalid client_id")
	}

	client, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	if client == nil {
		return nil, models.NewNotFoundError(models.ErrorCodeClientNotFound, "Client not found")
	}
	return client, nil
}

// UpdateClient applies a partial update to name/phone. The record is
// rewritten only when something actually changed.
func (s *ClientService) UpdateClient(ctx context.Context, id string, req *models.ClientUpdateRequest) (*models.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := client.ApplyUpdate(req)
	if err != nil {
		return nil, err
	}
	if updated {
		if err := s.store.Update(ctx, client); err != nil {
			return nil, models.NewStorageError(err)
		}
	}
	return client, nil
}

func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	if _, err := s.GetClient(ctx, id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return models.NewStorageError(err)
	}

	s.logger.Info("client deleted", zap.String("client_id", id))
	return nil
}
