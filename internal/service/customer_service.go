package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dhoini/customer-service/internal/auth"
	"github.com/Dhoini/customer-service/internal/criteria"
	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/metrics"
	"github.com/Dhoini/customer-service/internal/patch"
	"github.com/Dhoini/customer-service/internal/repository"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/google/uuid"
)

const notifyTimeout = 5 * time.Second

// Timeouts ограничения времени для операций сервиса
type Timeouts struct {
	// Short для точечных чтений и записей
	Short time.Duration
	// Long для выборок
	Long time.Duration
}

// DefaultTimeouts значения по умолчанию
var DefaultTimeouts = Timeouts{Short: 500 * time.Millisecond, Long: 2000 * time.Millisecond}

// Notifier уведомляет о новых клиентах
type Notifier interface {
	NotifyNewCustomer(ctx context.Context, customer domain.Customer) error
}

// CustomerService интерфейс сервиса для работы с клиентами.
// Отсутствующая запись возвращается как nil без ошибки.
type CustomerService interface {
	Find(ctx context.Context, params map[string][]string) ([]domain.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	Create(ctx context.Context, customer domain.Customer, account *domain.AccountRequest) (*domain.Customer, error)
	Update(ctx context.Context, id uuid.UUID, customer domain.Customer, versionToken string) (*domain.Customer, error)
	Patch(ctx context.Context, id uuid.UUID, ops []domain.PatchOperation, versionToken string) (*domain.Customer, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByEmail(ctx context.Context, email string) (bool, error)
}

type customerService struct {
	repo     repository.CustomerRepository
	accounts AccountService
	notifier Notifier
	metrics  metrics.CustomerMetrics
	timeouts Timeouts
	log      *logger.Logger
}

// NewCustomerService создает новый сервис для работы с клиентами
func NewCustomerService(
	repo repository.CustomerRepository,
	accounts AccountService,
	notifier Notifier,
	m metrics.CustomerMetrics,
	timeouts Timeouts,
	log *logger.Logger,
) CustomerService {
	if timeouts.Short <= 0 {
		timeouts.Short = DefaultTimeouts.Short
	}
	if timeouts.Long <= 0 {
		timeouts.Long = DefaultTimeouts.Long
	}
	return &customerService{
		repo:     repo,
		accounts: accounts,
		notifier: notifier,
		metrics:  m,
		timeouts: timeouts,
		log:      log,
	}
}

// Find ищет клиентов по параметрам запроса. Неверные параметры дают пустой результат.
func (s *customerService) Find(ctx context.Context, params map[string][]string) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Long)
	defer cancel()

	if len(params) == 0 {
		s.log.Debug("Finding all customers")
		customers, err := s.repo.FindAll(ctx)
		return customers, wrapTimeout(err)
	}

	if criteria.IsEmailOnly(params) {
		emails := params[criteria.ParamEmail]
		if len(emails) != 1 {
			return []domain.Customer{}, nil
		}
		customer, err := s.repo.FindByEmail(ctx, emails[0])
		if err != nil {
			return nil, wrapTimeout(err)
		}
		if customer == nil {
			return []domain.Customer{}, nil
		}
		return []domain.Customer{*customer}, nil
	}

	crit, ok := criteria.Build(params)
	if !ok {
		s.log.Debugw("Criteria cannot match any customer", "params", params)
		return []domain.Customer{}, nil
	}

	customers, err := s.repo.Find(ctx, crit)
	return customers, wrapTimeout(err)
}

func (s *customerService) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Short)
	defer cancel()

	s.log.Debug("Getting customer by ID: %s", id)
	customer, err := s.repo.FindByID(ctx, id)
	return customer, wrapTimeout(err)
}

// Create создает аккаунт и клиента, затем асинхронно уведомляет отдел продаж
func (s *customerService) Create(ctx context.Context, customer domain.Customer, account *domain.AccountRequest) (*domain.Customer, error) {
	if account == nil {
		s.metrics.IncWrite(metrics.OperationCreate, metrics.OutcomeValidation)
		return nil, domain.ErrInvalidAccount
	}

	violations := domain.ValidateCustomer(customer)
	violations = append(violations, domain.ValidateAccount(*account)...)
	if violations.HasErrors() {
		s.metrics.IncWrite(metrics.OperationCreate, metrics.OutcomeValidation)
		return nil, violations
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Short)
	defer cancel()

	existing, err := s.repo.FindByEmail(ctx, customer.Email)
	if err != nil {
		return nil, s.writeFailed(metrics.OperationCreate, err)
	}
	if existing != nil {
		s.metrics.IncWrite(metrics.OperationCreate, metrics.OutcomeEmailExists)
		return nil, domain.NewDuplicateError("customer", "email", customer.Email)
	}

	if _, err := s.accounts.CreateAccount(ctx, account.Username, account.Password, domain.RoleCustomer); err != nil {
		return nil, s.writeFailed(metrics.OperationCreate, err)
	}

	customer.ID = uuid.New()
	customer.Email = strings.ToLower(customer.Email)
	customer.Username = account.Username
	customer.Version = 0

	created, err := s.repo.Insert(ctx, customer)
	if err != nil {
		return nil, s.writeFailed(metrics.OperationCreate, err)
	}

	s.metrics.IncWrite(metrics.OperationCreate, metrics.OutcomeSuccess)
	s.log.Infow("Customer created", "id", created.ID, "username", created.Username)

	s.notifyAsync(ctx, created)
	return &created, nil
}

// notifyAsync отправляет уведомление в отдельной горутине.
// Контекст отвязан от запроса, ошибки не влияют на результат создания.
func (s *customerService) notifyAsync(ctx context.Context, customer domain.Customer) {
	if s.notifier == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		nctx, cancel := context.WithTimeout(detached, notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyNewCustomer(nctx, customer); err != nil {
			s.log.Debugw("New customer notification failed", "id", customer.ID, "error", err)
		}
	}()
}

// Update перезаписывает изменяемые поля клиента при совпадении версии
func (s *customerService) Update(ctx context.Context, id uuid.UUID, customer domain.Customer, versionToken string) (*domain.Customer, error) {
	return s.update(ctx, id, customer, versionToken, metrics.OperationUpdate)
}

// Patch применяет операции к сохраненному клиенту и записывает результат как Update
func (s *customerService) Patch(ctx context.Context, id uuid.UUID, ops []domain.PatchOperation, versionToken string) (*domain.Customer, error) {
	if _, err := parseVersion(versionToken); err != nil {
		s.metrics.IncWrite(metrics.OperationPatch, metrics.OutcomeInvalidVersion)
		return nil, err
	}

	stored, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, s.writeFailed(metrics.OperationPatch, err)
	}
	if stored == nil {
		s.metrics.IncWrite(metrics.OperationPatch, metrics.OutcomeNotFound)
		return nil, nil
	}

	patched, violations := patch.Apply(*stored, ops)
	if violations.HasErrors() {
		s.metrics.ObservePatchViolations(len(violations))
		s.metrics.IncWrite(metrics.OperationPatch, metrics.OutcomeValidation)
		return nil, violations
	}

	return s.update(ctx, id, patched, versionToken, metrics.OperationPatch)
}

func (s *customerService) update(ctx context.Context, id uuid.UUID, customer domain.Customer, versionToken, operation string) (*domain.Customer, error) {
	supplied, err := parseVersion(versionToken)
	if err != nil {
		s.metrics.IncWrite(operation, metrics.OutcomeInvalidVersion)
		return nil, err
	}

	if violations := domain.ValidateCustomer(customer); violations.HasErrors() {
		s.metrics.IncWrite(operation, metrics.OutcomeValidation)
		return nil, violations
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Short)
	defer cancel()

	stored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.writeFailed(operation, err)
	}
	if stored == nil {
		s.metrics.IncWrite(operation, metrics.OutcomeNotFound)
		return nil, nil
	}

	resolver := conflictResolver{repo: s.repo, log: s.log}
	if err := resolver.checkVersion(versionToken, supplied, stored.Version); err != nil {
		return nil, s.writeFailed(operation, err)
	}
	if err := resolver.checkEmail(ctx, *stored, customer.Email); err != nil {
		return nil, s.writeFailed(operation, err)
	}

	merged := *stored
	merged.Merge(customer)
	merged.Email = strings.ToLower(merged.Email)

	updated, err := s.repo.Update(ctx, merged, stored.Version)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.metrics.IncWrite(operation, metrics.OutcomeNotFound)
		return nil, nil
	case errors.Is(err, repository.ErrVersionConflict):
		return nil, s.writeFailed(operation, &domain.VersionError{
			Supplied: versionToken,
			Stored:   -1,
			Reason:   "record was modified concurrently",
		})
	case err != nil:
		return nil, s.writeFailed(operation, err)
	}

	s.metrics.IncWrite(operation, metrics.OutcomeSuccess)
	s.log.Infow("Customer updated", "id", updated.ID, "version", updated.Version, "operation", operation)
	return &updated, nil
}

// DeleteByID удаляет клиента. Требуется роль admin.
func (s *customerService) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := requireAdmin(ctx); err != nil {
		return false, s.writeFailed(metrics.OperationDelete, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Short)
	defer cancel()

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return false, s.writeFailed(metrics.OperationDelete, err)
	}
	s.recordDelete(deleted)
	s.log.Infow("Customer delete by ID", "id", id, "deleted", deleted)
	return deleted, nil
}

// DeleteByEmail удаляет клиента по email. Требуется роль admin.
func (s *customerService) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	if err := requireAdmin(ctx); err != nil {
		return false, s.writeFailed(metrics.OperationDelete, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Short)
	defer cancel()

	deleted, err := s.repo.DeleteByEmail(ctx, email)
	if err != nil {
		return false, s.writeFailed(metrics.OperationDelete, err)
	}
	s.recordDelete(deleted)
	s.log.Infow("Customer delete by email", "deleted", deleted)
	return deleted, nil
}

func (s *customerService) recordDelete(deleted bool) {
	if deleted {
		s.metrics.IncWrite(metrics.OperationDelete, metrics.OutcomeSuccess)
		return
	}
	s.metrics.IncWrite(metrics.OperationDelete, metrics.OutcomeNotFound)
}

func requireAdmin(ctx context.Context) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}
	if !principal.HasRole(domain.RoleAdmin) {
		return domain.ErrUnauthorized
	}
	return nil
}

// writeFailed учитывает неуспешную запись в метриках и оборачивает таймаут
func (s *customerService) writeFailed(operation string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidVersion):
		s.metrics.IncWrite(operation, metrics.OutcomeInvalidVersion)
	case errors.Is(err, domain.ErrEmailExists):
		s.metrics.IncWrite(operation, metrics.OutcomeEmailExists)
	default:
		s.metrics.IncWrite(operation, metrics.OutcomeError)
	}
	return wrapTimeout(err)
}

func wrapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeoutExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrTimeoutExceeded, err)
	}
	return err
}
