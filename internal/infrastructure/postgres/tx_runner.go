package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Leadius-api/internal/application/allocation"
	"github.com/jhoicas/Leadius-api/internal/application/usecase"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
)

// Ensure TxRunner implements allocation.TxRunner and usecase.LedgerTxRunner.
var _ allocation.TxRunner = (*TxRunner)(nil)
var _ usecase.LedgerTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Fallos de begin/commit y conflictos de serialización o deadlock salen como domain.ErrTransient.
type TxRunner struct {
	db TxBeginner
}

// NewTxRunner construye el runner con el pool (o cualquier TxBeginner).
func NewTxRunner(db TxBeginner) *TxRunner {
	return &TxRunner{db: db}
}

// RunAllocation abre una tx con repos de leads, cuentas y libro de créditos.
func (r *TxRunner) RunAllocation(ctx context.Context, fn func(
	leadRepo repository.LeadRepository,
	accountRepo repository.AccountRepository,
	ledgerRepo repository.CreditLedgerRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewLeadRepository(tx), NewAccountRepository(tx), NewCreditLedgerRepository(tx))
	})
}

// RunLedger abre una tx con repos de cuentas, pagos y libro de créditos (recargas).
func (r *TxRunner) RunLedger(ctx context.Context, fn func(
	accountRepo repository.AccountRepository,
	paymentRepo repository.PaymentRepository,
	ledgerRepo repository.CreditLedgerRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewAccountRepository(tx), NewPaymentRepository(tx), NewCreditLedgerRepository(tx))
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return transient("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		if isRetryable(err) {
			return transient("transaction", err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return transient("commit transaction", err)
	}
	return nil
}
