package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Leadius-api/internal/domain/entity"
)

// AccountRepository puerto de persistencia de cuentas y su saldo de créditos.
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	// GetByID y GetByEmail devuelven (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	// GetForUpdate bloquea la fila de la cuenta hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id int64) (*entity.Account, error)
	// Debit resta amount solo si el saldo alcanza; devuelve el saldo nuevo.
	Debit(ctx context.Context, id int64, amount int) (int, error)
	// Credit suma amount y acumula spent en total_spent; devuelve el saldo nuevo.
	Credit(ctx context.Context, id int64, amount int, spent decimal.Decimal) (int, error)
	CountAdmins(ctx context.Context) (int, error)
}
