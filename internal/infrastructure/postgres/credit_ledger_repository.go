package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
)

var _ repository.CreditLedgerRepository = (*CreditLedgerRepo)(nil)

// CreditLedgerRepo libro de créditos append-only sobre PostgreSQL.
type CreditLedgerRepo struct {
	q Querier
}

// NewCreditLedgerRepository construye el adaptador del libro de créditos.
func NewCreditLedgerRepository(q Querier) *CreditLedgerRepo {
	return &CreditLedgerRepo{q: q}
}

// Append registra un asiento.
func (r *CreditLedgerRepo) Append(ctx context.Context, e *entity.CreditEntry) error {
	query := `
		INSERT INTO credit_entries (account_id, entry_type, amount, balance_after, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, e.AccountID, e.EntryType, e.Amount, e.BalanceAfter, e.Reference, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("append credit entry: %w", err)
	}
	return nil
}

// ListByAccount últimos asientos de una cuenta.
func (r *CreditLedgerRepo) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entity.CreditEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, account_id, entry_type, amount, balance_after, reference, created_at
		FROM credit_entries WHERE account_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list credit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditEntry
	for rows.Next() {
		var e entity.CreditEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.EntryType, &e.Amount, &e.BalanceAfter, &e.Reference, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credit entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
