package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type accountRow struct {
	ID           uuid.UUID      `db:"id"`
	Username     string         `db:"username"`
	PasswordHash string         `db:"password_hash"`
	Roles        pq.StringArray `db:"roles"`
	CreatedAt    time.Time      `db:"created_at"`
}

// AccountRepository учетные записи в PostgreSQL
type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ repository.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var row accountRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, username, password_hash, roles, created_at FROM accounts WHERE username = $1`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	a := domain.Account{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}
	for _, role := range row.Roles {
		a.Roles = append(a.Roles, domain.Role(role))
	}
	return &a, nil
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now().UTC()

	roles := make(pq.StringArray, len(account.Roles))
	for i, role := range account.Roles {
		roles[i] = string(role)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, password_hash, roles, created_at) VALUES ($1, $2, $3, $4, $5)`,
		account.ID, account.Username, account.PasswordHash, roles, account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Account{}, domain.NewDuplicateError("account", "username", account.Username)
		}
		return domain.Account{}, fmt.Errorf("failed to insert account: %w", err)
	}
	return account, nil
}
