package allocation

import (
	"context"

	"github.com/jhoicas/Leadius-api/internal/application/ingestion"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Selección, asignación, débito y asiento del libro confirman juntos o no confirman.
type TxRunner interface {
	RunAllocation(ctx context.Context, fn func(
		leadRepo repository.LeadRepository,
		accountRepo repository.AccountRepository,
		ledgerRepo repository.CreditLedgerRepository,
	) error) error
}

// Refiller repone leads desde las hojas de cálculo cuando no alcanzan.
type Refiller interface {
	Refill(ctx context.Context) (*ingestion.Result, error)
}
