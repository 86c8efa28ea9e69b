package repository

import (
	"context"

	"github.com/jhoicas/Leadius-api/internal/domain/entity"
)

// CreditLedgerRepository libro append-only de movimientos de créditos.
type CreditLedgerRepository interface {
	Append(ctx context.Context, e *entity.CreditEntry) error
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entity.CreditEntry, error)
}
