package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dhoini/customer-service/internal/criteria"
	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/repository"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

const customerColumns = `id, version, last_name, email, category, newsletter, birth_date,
	revenue_amount, revenue_currency, homepage, gender, marital_status, interests,
	postal_code, city, username, created_at, updated_at`

type customerRow struct {
	ID              uuid.UUID           `db:"id"`
	Version         int                 `db:"version"`
	LastName        string              `db:"last_name"`
	Email           string              `db:"email"`
	Category        int                 `db:"category"`
	Newsletter      bool                `db:"newsletter"`
	BirthDate       sql.NullTime        `db:"birth_date"`
	RevenueAmount   decimal.NullDecimal `db:"revenue_amount"`
	RevenueCurrency sql.NullString      `db:"revenue_currency"`
	Homepage        sql.NullString      `db:"homepage"`
	Gender          sql.NullString      `db:"gender"`
	MaritalStatus   sql.NullString      `db:"marital_status"`
	Interests       pq.StringArray      `db:"interests"`
	PostalCode      string              `db:"postal_code"`
	City            string              `db:"city"`
	Username        sql.NullString      `db:"username"`
	CreatedAt       time.Time           `db:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at"`
}

func (r customerRow) toDomain() domain.Customer {
	c := domain.Customer{
		ID:            r.ID,
		Version:       r.Version,
		LastName:      r.LastName,
		Email:         r.Email,
		Category:      r.Category,
		Newsletter:    r.Newsletter,
		Homepage:      r.Homepage.String,
		Gender:        domain.Gender(r.Gender.String),
		MaritalStatus: domain.MaritalStatus(r.MaritalStatus.String),
		Address:       domain.Address{PostalCode: r.PostalCode, City: r.City},
		Username:      r.Username.String,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.BirthDate.Valid {
		d := domain.Date{Time: r.BirthDate.Time}
		c.BirthDate = &d
	}
	if r.RevenueAmount.Valid {
		c.Revenue = &domain.Revenue{Amount: r.RevenueAmount.Decimal, Currency: strings.TrimSpace(r.RevenueCurrency.String)}
	}
	for _, i := range r.Interests {
		c.Interests = append(c.Interests, domain.Interest(i))
	}
	return c
}

// customerArgs возвращает значения колонок в порядке customerColumns
func customerArgs(c domain.Customer) []any {
	var birth sql.NullTime
	if c.BirthDate != nil {
		birth = sql.NullTime{Time: c.BirthDate.Time, Valid: true}
	}
	var amount decimal.NullDecimal
	var currency sql.NullString
	if c.Revenue != nil {
		amount = decimal.NullDecimal{Decimal: c.Revenue.Amount, Valid: true}
		currency = sql.NullString{String: c.Revenue.Currency, Valid: true}
	}
	return []any{
		c.ID, c.Version, c.LastName, c.Email, c.Category, c.Newsletter, birth,
		amount, currency, nullString(c.Homepage), nullString(string(c.Gender)), nullString(string(c.MaritalStatus)),
		interestArray(c.Interests), c.Address.PostalCode, c.Address.City, nullString(c.Username),
		c.CreatedAt, c.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CustomerRepository хранилище клиентов в PostgreSQL
type CustomerRepository struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewCustomerRepository создает новый репозиторий клиентов через PostgreSQL
func NewCustomerRepository(db *sqlx.DB, log *logger.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, log: log}
}

var _ repository.CustomerRepository = (*CustomerRepository)(nil)

// FindAll возвращает всех клиентов
func (r *CustomerRepository) FindAll(ctx context.Context) ([]domain.Customer, error) {
	return r.Find(ctx, nil)
}

// Find возвращает клиентов по критериям
func (r *CustomerRepository) Find(ctx context.Context, crit criteria.Criteria) ([]domain.Customer, error) {
	where, args, err := whereClause(crit)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + customerColumns + ` FROM customers` + where + ` ORDER BY last_name, id`

	var rows []customerRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}

	customers := make([]domain.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, row.toDomain())
	}
	return customers, nil
}

// FindByID возвращает клиента по ID
func (r *CustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

// FindByEmail ищет клиента по email без учета регистра
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE lower(email) = lower($1)`, email)
}

func (r *CustomerRepository) getOne(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var row customerRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	c := row.toDomain()
	return &c, nil
}

// ExistsByID проверяет существование клиента
func (r *CustomerRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check customer: %w", err)
	}
	return exists, nil
}

// FindLastNamesByPrefix возвращает уникальные фамилии с заданным префиксом
func (r *CustomerRepository) FindLastNamesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	query := `SELECT DISTINCT last_name FROM customers WHERE last_name ILIKE $1 ORDER BY last_name`
	if err := r.db.SelectContext(ctx, &names, query, likeEscaper.Replace(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("failed to query last names: %w", err)
	}
	return names, nil
}

// FindEmailsByPrefix возвращает email адреса с заданным префиксом
func (r *CustomerRepository) FindEmailsByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var emails []string
	query := `SELECT email FROM customers WHERE email ILIKE $1 ORDER BY email`
	if err := r.db.SelectContext(ctx, &emails, query, likeEscaper.Replace(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("failed to query emails: %w", err)
	}
	return emails, nil
}

// Insert создает нового клиента
func (r *CustomerRepository) Insert(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	query := `INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	if _, err := r.db.ExecContext(ctx, query, customerArgs(customer)...); err != nil {
		if dup := duplicateError(err, customer); dup != nil {
			return domain.Customer{}, dup
		}
		return domain.Customer{}, fmt.Errorf("failed to insert customer: %w", err)
	}

	r.log.Debugw("Customer inserted", "id", customer.ID)
	return customer, nil
}

// Update записывает клиента, только если версия в базе равна expectedVersion
func (r *CustomerRepository) Update(ctx context.Context, customer domain.Customer, expectedVersion int) (domain.Customer, error) {
	customer.Version = expectedVersion + 1
	customer.UpdatedAt = time.Now().UTC()

	query := `UPDATE customers SET
			version = $2, last_name = $3, email = $4, category = $5, newsletter = $6, birth_date = $7,
			revenue_amount = $8, revenue_currency = $9, homepage = $10, gender = $11, marital_status = $12,
			interests = $13, postal_code = $14, city = $15, updated_at = $16
		WHERE id = $1 AND version = $17`
	// username и created_at не меняются
	args := append(customerArgs(customer)[:15:15], customer.UpdatedAt, expectedVersion)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dup := duplicateError(err, customer); dup != nil {
			return domain.Customer{}, dup
		}
		return domain.Customer{}, fmt.Errorf("failed to update customer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Customer{}, fmt.Errorf("failed to get affected rows count: %w", err)
	}
	if affected == 0 {
		exists, err := r.ExistsByID(ctx, customer.ID)
		if err != nil {
			return domain.Customer{}, err
		}
		if !exists {
			return domain.Customer{}, repository.ErrNotFound
		}
		r.log.Warnw("Version conflict on update", "id", customer.ID, "expected", expectedVersion)
		return domain.Customer{}, repository.ErrVersionConflict
	}

	return customer, nil
}

// DeleteByID удаляет клиента и сообщает, существовал ли он
func (r *CustomerRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.delete(ctx, `DELETE FROM customers WHERE id = $1`, id)
}

// DeleteByEmail удаляет клиента по email
func (r *CustomerRepository) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	return r.delete(ctx, `DELETE FROM customers WHERE lower(email) = lower($1)`, email)
}

func (r *CustomerRepository) delete(ctx context.Context, query string, arg any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, arg)
	if err != nil {
		return false, fmt.Errorf("failed to delete customer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows count: %w", err)
	}
	return affected > 0, nil
}

func duplicateError(err error, c domain.Customer) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return domain.NewDuplicateError("customer", "username", c.Username)
	}
	return domain.NewDuplicateError("customer", "email", c.Email)
}
