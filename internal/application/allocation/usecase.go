// Package allocation entrega lotes de leads a una cuenta a cambio de créditos.
package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Leadius-api/internal/domain"
	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
	"github.com/jhoicas/Leadius-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Leadius-api/pkg/logger"
)

// DefaultLockDuration exclusividad de un lead asignado.
const DefaultLockDuration = 180 * 24 * time.Hour

// Result lote asignado. Todos los leads comparten LockedUntil.
type Result struct {
	LeadIDs          []int64
	CreditsRemaining int
	LockedUntil      time.Time
}

// UseCase motor de asignación. No guarda estado propio entre llamadas.
type UseCase struct {
	tx           TxRunner
	accountRepo  repository.AccountRepository
	leadRepo     repository.LeadRepository
	refiller     Refiller
	lockDuration time.Duration
	log          *logger.Logger
	now          func() time.Time
}

// NewUseCase construye el motor. refiller puede ser nil (sin reposición perezosa).
func NewUseCase(tx TxRunner, accountRepo repository.AccountRepository, leadRepo repository.LeadRepository,
	refiller Refiller, lockDuration time.Duration, log *logger.Logger) *UseCase {
	if lockDuration <= 0 {
		lockDuration = DefaultLockDuration
	}
	return &UseCase{
		tx:           tx,
		accountRepo:  accountRepo,
		leadRepo:     leadRepo,
		refiller:     refiller,
		lockDuration: lockDuration,
		log:          log.Component("allocation"),
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Allocate asigna count leads a accountID, todo o nada.
//
// Errores: domain.ErrInvalidInput si count < 1; *domain.InsufficientCreditsError si la cuenta
// no existe o no alcanza; *domain.InsufficientSupplyError si tras reponer siguen faltando leads;
// domain.ErrTransient si la transacción no pudo confirmarse.
func (uc *UseCase) Allocate(ctx context.Context, accountID int64, count int) (*Result, error) {
	res, err := uc.allocate(ctx, accountID, count)
	metrics.RecordAllocation(outcome(err), count)
	return res, err
}

func (uc *UseCase) allocate(ctx context.Context, accountID int64, count int) (*Result, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count debe ser >= 1", domain.ErrInvalidInput)
	}
	log := uc.log.With("account_id", fmt.Sprint(accountID))

	acc, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, &domain.InsufficientCreditsError{Requested: count}
	}
	if acc.Credits < count {
		return nil, &domain.InsufficientCreditsError{Requested: count, Balance: acc.Credits}
	}

	available, err := uc.leadRepo.CountAvailable(ctx, uc.now())
	if err != nil {
		return nil, err
	}
	if available < count && uc.refiller != nil {
		if res, err := uc.refiller.Refill(ctx); err != nil {
			log.Warn().Err(err).Msg("reposición fallida, se sigue con el stock actual")
		} else {
			log.Info().Int("inserted", res.Inserted).Int("requested", count).Int("available", available).
				Msg("reposición perezosa ejecutada")
		}
		if available, err = uc.leadRepo.CountAvailable(ctx, uc.now()); err != nil {
			return nil, err
		}
	}
	if available < count {
		return nil, &domain.InsufficientSupplyError{Requested: count, Available: available}
	}

	var out *Result
	err = uc.tx.RunAllocation(ctx, func(
		leadRepo repository.LeadRepository,
		accountRepo repository.AccountRepository,
		ledgerRepo repository.CreditLedgerRepository,
	) error {
		now := uc.now()

		// Releer bajo lock: otra asignación de la misma cuenta pudo gastar el saldo.
		locked, err := accountRepo.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if locked == nil {
			return &domain.InsufficientCreditsError{Requested: count}
		}
		if locked.Credits < count {
			return &domain.InsufficientCreditsError{Requested: count, Balance: locked.Credits}
		}

		ids, err := leadRepo.SelectAvailableForUpdate(ctx, now, count)
		if err != nil {
			return err
		}
		if len(ids) < count {
			return &domain.InsufficientSupplyError{Requested: count, Available: len(ids)}
		}

		lockUntil := now.Add(uc.lockDuration)
		if err := leadRepo.Assign(ctx, ids, accountID, lockUntil, now); err != nil {
			return err
		}
		balance, err := accountRepo.Debit(ctx, accountID, count)
		if err != nil {
			return err
		}
		if err := ledgerRepo.Append(ctx, &entity.CreditEntry{
			AccountID:    accountID,
			EntryType:    entity.CreditEntryAllocation,
			Amount:       -count,
			BalanceAfter: balance,
			Reference:    fmt.Sprintf("%d leads hasta %s", count, lockUntil.Format(time.DateOnly)),
			CreatedAt:    now,
		}); err != nil {
			return err
		}
		out = &Result{LeadIDs: ids, CreditsRemaining: balance, LockedUntil: lockUntil}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int("count", count).Int("credits_remaining", out.CreditsRemaining).
		Time("locked_until", out.LockedUntil).Msg("leads asignados")
	return out, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrInsufficientCredits):
		return metrics.OutcomeInsufficientCredits
	case errors.Is(err, domain.ErrInsufficientSupply):
		return metrics.OutcomeInsufficientSupply
	default:
		return metrics.OutcomeError
	}
}
