package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dhoini/customer-service/internal/criteria"
	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/repository"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"id", "version", "last_name", "email", "category", "newsletter", "birth_date",
	"revenue_amount", "revenue_currency", "homepage", "gender", "marital_status", "interests",
	"postal_code", "city", "username", "created_at", "updated_at",
}

func setupMock(t *testing.T) (*CustomerRepository, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "pgx")
	return NewCustomerRepository(db, logger.NewNop()), mock
}

func sampleRow(id uuid.UUID, version int) []driver.Value {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return []driver.Value{
		id.String(), version, "Miller", "miller@example.com", 3, true,
		time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC),
		"120.50", "EUR", nil, "F", nil, "{S,T}",
		"76133", "Karlsruhe", "miller", now, now,
	}
}

func TestCustomerRepository_FindByID(t *testing.T) {
	repo, mock := setupMock(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(sampleRow(id, 2)...))

	c, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, id, c.ID)
	assert.Equal(t, 2, c.Version)
	assert.Equal(t, "Miller", c.LastName)
	require.NotNil(t, c.BirthDate)
	assert.Equal(t, "1990-03-14", c.BirthDate.String())
	require.NotNil(t, c.Revenue)
	assert.True(t, decimal.RequireFromString("120.50").Equal(c.Revenue.Amount))
	assert.Equal(t, "EUR", c.Revenue.Currency)
	assert.Empty(t, c.Homepage)
	assert.Equal(t, domain.GenderFemale, c.Gender)
	assert.Equal(t, []domain.Interest{domain.InterestSports, domain.InterestTravel}, c.Interests)
	assert.Equal(t, domain.Address{PostalCode: "76133", City: "Karlsruhe"}, c.Address)
	assert.Equal(t, "miller", c.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := setupMock(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(columns))

	c, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_FindByEmail_CaseInsensitive(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(email) = lower($1)")).
		WithArgs("MILLER@example.com").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(sampleRow(uuid.New(), 0)...))

	c, err := repo.FindByEmail(context.Background(), "MILLER@example.com")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_FindWithCriteria(t *testing.T) {
	repo, mock := setupMock(t)

	crit, ok := criteria.Build(map[string][]string{"lastName": {"mil"}, "category": {"3"}})
	require.True(t, ok)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE category = $1 AND last_name ILIKE $2 ORDER BY last_name, id")).
		WithArgs(3, "%mil%").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(sampleRow(uuid.New(), 1)...))

	found, err := repo.Find(context.Background(), crit)
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_Insert_DuplicateEmail(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO customers")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_email_key"})

	_, err := repo.Insert(context.Background(), domain.Customer{ID: uuid.New(), Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_Insert_DuplicateUsername(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO customers")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_username_key"})

	_, err := repo.Insert(context.Background(), domain.Customer{ID: uuid.New(), Email: "a@b.com", Username: "bob"})
	assert.ErrorIs(t, err, domain.ErrUsernameExists)
}

func TestCustomerRepository_Update(t *testing.T) {
	id := uuid.New()
	customer := domain.Customer{ID: id, LastName: "Smith", Email: "smith@example.com"}
	updateSQL := regexp.QuoteMeta("WHERE id = $1 AND version = $17")

	t.Run("success bumps version", func(t *testing.T) {
		repo, mock := setupMock(t)
		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 1))

		updated, err := repo.Update(context.Background(), customer, 4)
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version", func(t *testing.T) {
		repo, mock := setupMock(t)
		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.Update(context.Background(), customer, 4)
		assert.ErrorIs(t, err, repository.ErrVersionConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing record", func(t *testing.T) {
		repo, mock := setupMock(t)
		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.Update(context.Background(), customer, 4)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCustomerRepository_Delete(t *testing.T) {
	repo, mock := setupMock(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM customers WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	existed, err := repo.DeleteByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = repo.DeleteByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, existed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_Prefixes(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT last_name FROM customers WHERE last_name ILIKE $1")).
		WithArgs(`Mi\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"last_name"}).AddRow("Mi_ller"))

	names, err := repo.FindLastNamesByPrefix(context.Background(), "Mi_")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mi_ller"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWhereClause(t *testing.T) {
	crit, ok := criteria.Build(map[string][]string{
		"gender":     {"female"},
		"interests":  {"S,T"},
		"minRevenue": {"100"},
		"postalCode": {"76%"},
	})
	require.True(t, ok)

	where, args, err := whereClause(crit)
	require.NoError(t, err)
	assert.Equal(t, " WHERE gender = $1 AND interests @> $2 AND revenue_amount >= $3 AND postal_code LIKE $4", where)
	require.Len(t, args, 4)
	assert.Equal(t, "F", args[0])
	assert.Equal(t, `76\%%`, args[3])

	where, args, err = whereClause(nil)
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}
