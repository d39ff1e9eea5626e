package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Dhoini/customer-service/internal/criteria"
	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/google/uuid"
)

// CustomerRepository интерфейс хранилища клиентов.
// Поиск по одному ключу возвращает nil, nil если запись не найдена.
type CustomerRepository interface {
	FindAll(ctx context.Context) ([]domain.Customer, error)
	Find(ctx context.Context, crit criteria.Criteria) ([]domain.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	FindLastNamesByPrefix(ctx context.Context, prefix string) ([]string, error)
	FindEmailsByPrefix(ctx context.Context, prefix string) ([]string, error)

	// Insert сохраняет новую запись. Дубликат email или username -> *domain.DuplicateError.
	Insert(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	// Update записывает customer только если сохраненная версия равна expectedVersion,
	// и устанавливает версию expectedVersion+1. Иначе ErrVersionConflict или ErrNotFound.
	Update(ctx context.Context, customer domain.Customer, expectedVersion int) (domain.Customer, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByEmail(ctx context.Context, email string) (bool, error)
}

// InMemoryCustomerRepository реализация репозитория в памяти
type InMemoryCustomerRepository struct {
	customers map[uuid.UUID]domain.Customer
	mutex     sync.RWMutex
	log       *logger.Logger
}

// NewInMemoryCustomerRepository создает новый репозиторий клиентов в памяти
func NewInMemoryCustomerRepository(log *logger.Logger) *InMemoryCustomerRepository {
	return &InMemoryCustomerRepository{
		customers: make(map[uuid.UUID]domain.Customer),
		log:       log,
	}
}

// FindAll возвращает всех клиентов, отсортированных по фамилии
func (r *InMemoryCustomerRepository) FindAll(ctx context.Context) ([]domain.Customer, error) {
	return r.Find(ctx, nil)
}

// Find возвращает клиентов, удовлетворяющих критериям
func (r *InMemoryCustomerRepository) Find(ctx context.Context, crit criteria.Criteria) ([]domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	customers := make([]domain.Customer, 0, len(r.customers))
	for _, customer := range r.customers {
		if crit.Matches(customer) {
			customers = append(customers, customer.Clone())
		}
	}
	sortCustomers(customers)

	return customers, nil
}

// FindByID возвращает клиента по ID
func (r *InMemoryCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	customer, exists := r.customers[id]
	if !exists {
		return nil, nil
	}
	c := customer.Clone()
	return &c, nil
}

// FindByEmail ищет клиента по email без учета регистра
func (r *InMemoryCustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if c, ok := r.byEmailLocked(email); ok {
		cp := c.Clone()
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryCustomerRepository) byEmailLocked(email string) (domain.Customer, bool) {
	for _, c := range r.customers {
		if strings.EqualFold(c.Email, email) {
			return c, true
		}
	}
	return domain.Customer{}, false
}

// ExistsByID проверяет существование клиента
func (r *InMemoryCustomerRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	c, err := r.FindByID(ctx, id)
	return c != nil, err
}

// FindLastNamesByPrefix возвращает уникальные фамилии с заданным префиксом
func (r *InMemoryCustomerRepository) FindLastNamesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	return r.distinctByPrefix(ctx, prefix, func(c domain.Customer) string { return c.LastName })
}

// FindEmailsByPrefix возвращает email адреса с заданным префиксом
func (r *InMemoryCustomerRepository) FindEmailsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	return r.distinctByPrefix(ctx, prefix, func(c domain.Customer) string { return c.Email })
}

func (r *InMemoryCustomerRepository) distinctByPrefix(ctx context.Context, prefix string, field func(domain.Customer) string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	lower := strings.ToLower(prefix)
	var out []string
	for _, c := range r.customers {
		v := field(c)
		if strings.HasPrefix(strings.ToLower(v), lower) && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Insert создает нового клиента
func (r *InMemoryCustomerRepository) Insert(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.byEmailLocked(customer.Email); ok {
		return domain.Customer{}, domain.NewDuplicateError("customer", "email", customer.Email)
	}
	if customer.Username != "" {
		for _, c := range r.customers {
			if c.Username == customer.Username {
				return domain.Customer{}, domain.NewDuplicateError("customer", "username", customer.Username)
			}
		}
	}

	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	r.customers[customer.ID] = customer.Clone()
	r.log.Debugw("Customer inserted", "id", customer.ID)

	return customer, nil
}

// Update обновляет клиента, если версия не изменилась
func (r *InMemoryCustomerRepository) Update(ctx context.Context, customer domain.Customer, expectedVersion int) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.customers[customer.ID]
	if !exists {
		return domain.Customer{}, ErrNotFound
	}
	if existing.Version != expectedVersion {
		r.log.Warnw("Version conflict on update", "id", customer.ID, "expected", expectedVersion, "actual", existing.Version)
		return domain.Customer{}, ErrVersionConflict
	}

	for id, c := range r.customers {
		if id != customer.ID && strings.EqualFold(c.Email, customer.Email) {
			return domain.Customer{}, domain.NewDuplicateError("customer", "email", customer.Email)
		}
	}

	customer.Version = expectedVersion + 1
	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = time.Now().UTC()

	r.customers[customer.ID] = customer.Clone()

	return customer, nil
}

// DeleteByID удаляет клиента и сообщает, существовал ли он
func (r *InMemoryCustomerRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.customers[id]; !exists {
		return false, nil
	}
	delete(r.customers, id)

	return true, nil
}

// DeleteByEmail удаляет клиента по email
func (r *InMemoryCustomerRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	c, ok := r.byEmailLocked(email)
	if !ok {
		return false, nil
	}
	delete(r.customers, c.ID)

	return true, nil
}

func sortCustomers(customers []domain.Customer) {
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		if n := strings.Compare(a.LastName, b.LastName); n != 0 {
			return n
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}
