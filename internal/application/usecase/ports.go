package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
)

// LedgerTxRunner ejecuta una recarga dentro de una transacción: saldo, pago y asiento confirman juntos.
type LedgerTxRunner interface {
	RunLedger(ctx context.Context, fn func(
		accountRepo repository.AccountRepository,
		paymentRepo repository.PaymentRepository,
		ledgerRepo repository.CreditLedgerRepository,
	) error) error
}

// LeadsPDFGenerator genera el listado imprimible de los leads de una cuenta.
type LeadsPDFGenerator interface {
	GenerateLeadsPDF(ctx context.Context, account *entity.Account, leads []*entity.Lead, generatedAt time.Time) ([]byte, error)
}
