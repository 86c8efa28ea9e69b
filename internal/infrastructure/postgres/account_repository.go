package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Leadius-api/internal/domain"
	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

const accountColumns = `id, email, password_hash, credits, total_spent, role, created_at`

// AccountRepo implementación de AccountRepository sobre PostgreSQL (usable con pool o tx).
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador de cuentas.
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

// Create persiste una cuenta nueva y rellena ID.
func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) error {
	query := `
		INSERT INTO accounts (email, password_hash, credits, total_spent, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		a.Email, a.PasswordHash, a.Credits, a.TotalSpent, a.Role, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta por ID.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByEmail obtiene una cuenta por email (sin distinguir mayúsculas).
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1) LIMIT 1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// GetForUpdate obtiene la cuenta y bloquea la fila (SELECT FOR UPDATE).
func (r *AccountRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	return a, nil
}

// Debit resta amount si el saldo alcanza. Sin fila afectada distingue cuenta inexistente de saldo corto.
func (r *AccountRepo) Debit(ctx context.Context, id int64, amount int) (int, error) {
	var balance int
	err := r.q.QueryRow(ctx, `
		UPDATE accounts SET credits = credits - $2
		WHERE id = $1 AND credits >= $2
		RETURNING credits`, id, amount,
	).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("debit credits: %w", err)
	}
	acc, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if acc == nil {
		return 0, domain.ErrAccountNotFound
	}
	return 0, &domain.InsufficientCreditsError{Requested: amount, Balance: acc.Credits}
}

// Credit suma amount al saldo y spent a total_spent.
func (r *AccountRepo) Credit(ctx context.Context, id int64, amount int, spent decimal.Decimal) (int, error) {
	var balance int
	err := r.q.QueryRow(ctx, `
		UPDATE accounts SET credits = credits + $2, total_spent = total_spent + $3
		WHERE id = $1
		RETURNING credits`, id, amount, spent,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAccountNotFound
		}
		return 0, fmt.Errorf("credit account: %w", err)
	}
	return balance, nil
}

// CountAdmins cuenta las cuentas con rol Admin.
func (r *AccountRepo) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE role = $1`, entity.RoleAdmin).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	var a entity.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Credits, &a.TotalSpent, &a.Role, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
