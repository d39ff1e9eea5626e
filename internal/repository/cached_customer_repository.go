package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// время общей загрузки из хранилища, не зависит от контекста первого вызывающего
const defaultLoadTimeout = 2 * time.Second

// CachedCustomerRepository реализует CustomerRepository с кешированием чтения по ID
type CachedCustomerRepository struct {
	CustomerRepository
	cache       CustomerCache
	group       singleflight.Group
	loadTimeout time.Duration
	log         *logger.Logger

	// evictions растет при каждой инвалидации. Загрузка, во время которой
	// была инвалидация, не пишет результат в кеш.
	fillMu    sync.Mutex
	evictions uint64
}

// NewCachedCustomerRepository создает новый репозиторий с кешированием
func NewCachedCustomerRepository(repo CustomerRepository, cache CustomerCache, log *logger.Logger) *CachedCustomerRepository {
	return &CachedCustomerRepository{
		CustomerRepository: repo,
		cache:              cache,
		loadTimeout:        defaultLoadTimeout,
		log:                log,
	}
}

// FindByID получает клиента по ID (сначала из кеша, потом из хранилища)
func (r *CachedCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	cached, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warnw("Error getting customer from cache", "error", err, "customerID", id)
	}
	if cached != nil {
		return cached, nil
	}

	// параллельные промахи по одному id идут в хранилище один раз,
	// каждый вызывающий ждет результат в рамках своего ctx
	ch := r.group.DoChan(id.String(), func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()
		return r.load(loadCtx, id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		customer, _ := res.Val.(*domain.Customer)
		if customer == nil {
			return nil, nil
		}
		cp := customer.Clone()
		return &cp, nil
	}
}

func (r *CachedCustomerRepository) load(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.fillMu.Lock()
	seen := r.evictions
	r.fillMu.Unlock()

	customer, err := r.CustomerRepository.FindByID(ctx, id)
	if err != nil || customer == nil {
		return customer, err
	}

	r.fillMu.Lock()
	defer r.fillMu.Unlock()
	if r.evictions != seen {
		r.log.Debugw("Skipping cache fill, customer changed during load", "customerID", id)
		return customer, nil
	}
	if err := r.cache.Set(ctx, *customer); err != nil {
		r.log.Warnw("Failed to cache customer after fetching", "error", err, "customerID", id)
	}
	return customer, nil
}

// ExistsByID использует кеш через FindByID
func (r *CachedCustomerRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	c, err := r.FindByID(ctx, id)
	return c != nil, err
}

// Update обновляет клиента и синхронно удаляет его из кеша
func (r *CachedCustomerRepository) Update(ctx context.Context, customer domain.Customer, expectedVersion int) (domain.Customer, error) {
	updated, err := r.CustomerRepository.Update(ctx, customer, expectedVersion)
	if err != nil {
		// конфликт версии или отсутствие записи значит, что в кеше могла остаться устаревшая копия
		if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrNotFound) {
			r.evict(ctx, customer.ID)
		}
		return domain.Customer{}, err
	}
	r.evict(ctx, customer.ID)
	return updated, nil
}

// DeleteByID удаляет клиента и его запись в кеше
func (r *CachedCustomerRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	existed, err := r.CustomerRepository.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	r.evict(ctx, id)
	return existed, nil
}

// DeleteByEmail находит ID для инвалидации кеша и удаляет клиента
func (r *CachedCustomerRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	customer, err := r.CustomerRepository.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if customer == nil {
		return false, nil
	}

	existed, err := r.CustomerRepository.DeleteByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	r.evict(ctx, customer.ID)
	return existed, nil
}

func (r *CachedCustomerRepository) evict(ctx context.Context, id uuid.UUID) {
	r.fillMu.Lock()
	r.evictions++
	r.fillMu.Unlock()

	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Errorw("Failed to evict customer from cache", "error", err, "customerID", id)
	}
}
