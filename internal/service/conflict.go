package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/repository"
	"github.com/Dhoini/customer-service/pkg/logger"
)

// parseVersion разбирает токен версии из If-Match
func parseVersion(token string) (int, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return 0, &domain.VersionError{Supplied: token, Stored: -1, Reason: "missing"}
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil || v < 0 {
		return 0, &domain.VersionError{Supplied: token, Stored: -1, Reason: "not a version number"}
	}
	return v, nil
}

// conflictResolver проверяет версию и уникальность email перед записью
type conflictResolver struct {
	repo repository.CustomerRepository
	log  *logger.Logger
}

// checkVersion отклоняет устаревшую версию. Версия больше сохраненной допускается.
func (r conflictResolver) checkVersion(token string, supplied, stored int) error {
	if supplied < stored {
		r.log.Debugw("Outdated version", "supplied", supplied, "stored", stored)
		return &domain.VersionError{Supplied: token, Stored: stored, Reason: "outdated"}
	}
	return nil
}

// checkEmail проверяет новый email, если он изменился.
// Запись с тем же email, но другим регистром, принадлежащая самому клиенту, не конфликт.
func (r conflictResolver) checkEmail(ctx context.Context, stored domain.Customer, email string) error {
	if email == stored.Email {
		return nil
	}
	other, err := r.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if other != nil && other.ID != stored.ID {
		return domain.NewDuplicateError("customer", "email", email)
	}
	return nil
}
