package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/repository"
	"github.com/Dhoini/customer-service/internal/storage"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/google/uuid"
)

// MediaService хранит одно мультимедиа-вложение на клиента
type MediaService interface {
	// Upload заменяет вложение клиента. Неизвестный клиент -> ErrNotFound.
	Upload(ctx context.Context, customerID uuid.UUID, contentType string, body io.Reader, size int64) error
	// Download возвращает nil, если нет клиента или вложения
	Download(ctx context.Context, customerID uuid.UUID) (*storage.Object, error)
}

type mediaService struct {
	repo  repository.CustomerRepository
	blobs storage.BlobStore
	log   *logger.Logger
}

func NewMediaService(repo repository.CustomerRepository, blobs storage.BlobStore, log *logger.Logger) MediaService {
	return &mediaService{repo: repo, blobs: blobs, log: log}
}

func (s *mediaService) Upload(ctx context.Context, customerID uuid.UUID, contentType string, body io.Reader, size int64) error {
	if contentType == "" {
		return fmt.Errorf("%w: content type is required", domain.ErrInvalidInput)
	}

	exists, err := s.repo.ExistsByID(ctx, customerID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("customer", customerID.String())
	}

	if err := s.blobs.Put(ctx, customerID.String(), contentType, body, size); err != nil {
		return err
	}
	s.log.Infow("Media uploaded", "customerID", customerID, "contentType", contentType)
	return nil
}

func (s *mediaService) Download(ctx context.Context, customerID uuid.UUID) (*storage.Object, error) {
	exists, err := s.repo.ExistsByID(ctx, customerID)
	if err != nil || !exists {
		return nil, err
	}

	obj, err := s.blobs.Get(ctx, customerID.String())
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil
	}
	return obj, err
}
