package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/repository"
	"github.com/Dhoini/customer-service/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// AccountService управляет учетными записями
type AccountService interface {
	CreateAccount(ctx context.Context, username, password string, roles ...domain.Role) (domain.Account, error)
	// Authenticate проверяет пароль. Неизвестный пользователь и неверный пароль дают ErrUnauthenticated.
	Authenticate(ctx context.Context, username, password string) (domain.Account, error)
	// EnsureAdmin создает администратора, если его еще нет
	EnsureAdmin(ctx context.Context, username, password string) error
}

type accountService struct {
	repo repository.AccountRepository
	cost int
	log  *logger.Logger
}

func NewAccountService(repo repository.AccountRepository, log *logger.Logger) AccountService {
	return &accountService{repo: repo, cost: bcrypt.DefaultCost, log: log}
}

func (s *accountService) CreateAccount(ctx context.Context, username, password string, roles ...domain.Role) (domain.Account, error) {
	if violations := domain.ValidateAccount(domain.AccountRequest{Username: username, Password: password}); violations.HasErrors() {
		return domain.Account{}, violations
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.repo.Create(ctx, domain.Account{
		Username:     username,
		PasswordHash: string(hash),
		Roles:        roles,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUsernameExists) {
			s.log.Warnw("Username already taken", "username", username)
		}
		return domain.Account{}, err
	}

	s.log.Infow("Account created", "username", username, "roles", roles)
	return account, nil
}

func (s *accountService) Authenticate(ctx context.Context, username, password string) (domain.Account, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return domain.Account{}, err
	}
	if account == nil {
		s.log.Debugw("Login for unknown user", "username", username)
		return domain.Account{}, domain.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.log.Debugw("Wrong password", "username", username)
		return domain.Account{}, domain.ErrUnauthenticated
	}
	return *account, nil
}

func (s *accountService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		s.log.Warn("Admin credentials not configured, skipping admin account")
		return nil
	}

	existing, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = s.CreateAccount(ctx, username, password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrUsernameExists) {
		return nil
	}
	return err
}
