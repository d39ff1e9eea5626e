package service

import (
	"context"

	"github.com/Dhoini/customer-service/internal/repository"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/google/uuid"
)

// ValuesService отдает отдельные значения для автодополнения и проверки версий
type ValuesService interface {
	FindLastNamesByPrefix(ctx context.Context, prefix string) ([]string, error)
	FindEmailsByPrefix(ctx context.Context, prefix string) ([]string, error)
	// FindVersionByID возвращает nil, если клиента нет
	FindVersionByID(ctx context.Context, id uuid.UUID) (*int, error)
}

type valuesService struct {
	repo     repository.CustomerRepository
	timeouts Timeouts
	log      *logger.Logger
}

func NewValuesService(repo repository.CustomerRepository, timeouts Timeouts, log *logger.Logger) ValuesService {
	if timeouts.Short <= 0 || timeouts.Long <= 0 {
		timeouts = DefaultTimeouts
	}
	return &valuesService{repo: repo, timeouts: timeouts, log: log}
}

func (s *valuesService) FindLastNamesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Long)
	defer cancel()

	names, err := s.repo.FindLastNamesByPrefix(ctx, prefix)
	return names, wrapTimeout(err)
}

func (s *valuesService) FindEmailsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Long)
	defer cancel()

	emails, err := s.repo.FindEmailsByPrefix(ctx, prefix)
	return emails, wrapTimeout(err)
}

func (s *valuesService) FindVersionByID(ctx context.Context, id uuid.UUID) (*int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Short)
	defer cancel()

	customer, err := s.repo.FindByID(ctx, id)
	if err != nil || customer == nil {
		return nil, wrapTimeout(err)
	}
	version := customer.Version
	return &version, nil
}
