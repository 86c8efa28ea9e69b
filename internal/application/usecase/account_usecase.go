package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Leadius-api/internal/application/dto"
	"github.com/jhoicas/Leadius-api/internal/domain"
	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
	"github.com/jhoicas/Leadius-api/pkg/config"
	"github.com/jhoicas/Leadius-api/pkg/logger"
)

const historyLimit = 20

// AccountUseCase saldo de créditos, recargas y su historial.
type AccountUseCase struct {
	accountRepo repository.AccountRepository
	paymentRepo repository.PaymentRepository
	ledgerRepo  repository.CreditLedgerRepository
	tx          LedgerTxRunner
	pricing     config.PricingConfig
	log         *logger.Logger
	now         func() time.Time
}

// NewAccountUseCase construye el caso de uso.
func NewAccountUseCase(
	accountRepo repository.AccountRepository,
	paymentRepo repository.PaymentRepository,
	ledgerRepo repository.CreditLedgerRepository,
	tx LedgerTxRunner,
	pricing config.PricingConfig,
	log *logger.Logger,
) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		paymentRepo: paymentRepo,
		ledgerRepo:  ledgerRepo,
		tx:          tx,
		pricing:     pricing,
		log:         log.Component("account"),
		now:         time.Now,
	}
}

// GetAccount devuelve la cuenta o domain.ErrNotFound.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id int64) (*dto.AccountResponse, error) {
	acc, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrNotFound
	}
	return toAccountResponse(acc), nil
}

// GetBalance saldo actual de créditos.
func (uc *AccountUseCase) GetBalance(ctx context.Context, id int64) (int, error) {
	acc, err := uc.GetAccount(ctx, id)
	if err != nil {
		return 0, err
	}
	return acc.Credits, nil
}

// GetDetail cuenta con sus últimos movimientos y pagos (vista admin).
func (uc *AccountUseCase) GetDetail(ctx context.Context, id int64) (*dto.AccountDetailResponse, error) {
	acc, err := uc.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := uc.ledgerRepo.ListByAccount(ctx, id, historyLimit)
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListByAccount(ctx, id, historyLimit)
	if err != nil {
		return nil, err
	}

	out := &dto.AccountDetailResponse{
		AccountResponse: *acc,
		Entries:         make([]dto.CreditEntryResponse, 0, len(entries)),
		Payments:        make([]dto.PaymentResponse, 0, len(payments)),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, dto.CreditEntryResponse{
			EntryType:    e.EntryType,
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			Reference:    e.Reference,
			CreatedAt:    e.CreatedAt,
		})
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, dto.PaymentResponse{
			PaymentID: p.PaymentID,
			Amount:    p.Amount,
			Leads:     p.Leads,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
		})
	}
	return out, nil
}

// TopUp suma créditos a una cuenta (solo admin). Si trae PaymentID o Amount se registra además
// un pago completado y Amount se acumula en total_spent. Devuelve el saldo nuevo.
func (uc *AccountUseCase) TopUp(ctx context.Context, in dto.TopUpRequest) (*dto.TopUpResponse, error) {
	if in.AccountID <= 0 {
		return nil, fmt.Errorf("%w: account_id requerido", domain.ErrInvalidInput)
	}
	if in.Credits <= 0 {
		return nil, fmt.Errorf("%w: credits debe ser > 0", domain.ErrInvalidInput)
	}
	spent := decimal.Zero
	if in.Amount != nil {
		if in.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount no puede ser negativo", domain.ErrInvalidInput)
		}
		spent = *in.Amount
	}
	withPayment := in.PaymentID != "" || in.Amount != nil
	paymentID := in.PaymentID
	if withPayment && paymentID == "" {
		paymentID = "manual-" + uuid.NewString()
	}

	var balance int
	err := uc.tx.RunLedger(ctx, func(
		accountRepo repository.AccountRepository,
		paymentRepo repository.PaymentRepository,
		ledgerRepo repository.CreditLedgerRepository,
	) error {
		now := uc.now()
		acc, err := accountRepo.GetForUpdate(ctx, in.AccountID)
		if err != nil {
			return err
		}
		if acc == nil {
			return domain.ErrAccountNotFound
		}

		if withPayment {
			if err := paymentRepo.Create(ctx, &entity.Payment{
				PaymentID: paymentID,
				AccountID: in.AccountID,
				Amount:    spent,
				Leads:     in.Credits,
				Status:    entity.PaymentStatusCompleted,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}

		balance, err = accountRepo.Credit(ctx, in.AccountID, in.Credits, spent)
		if err != nil {
			return err
		}

		reference := paymentID
		if reference == "" {
			reference = "admin"
		}
		return ledgerRepo.Append(ctx, &entity.CreditEntry{
			AccountID:    in.AccountID,
			EntryType:    entity.CreditEntryTopUp,
			Amount:       in.Credits,
			BalanceAfter: balance,
			Reference:    reference,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("account_id", in.AccountID).Int("credits", in.Credits).
		Int("balance", balance).Str("payment_id", paymentID).Msg("créditos recargados")
	return &dto.TopUpResponse{AccountID: in.AccountID, Credits: balance, PaymentID: paymentID}, nil
}

// Pricing constantes de precio; la cantidad mínima de leads se deriva de la compra mínima.
func (uc *AccountUseCase) Pricing() dto.PricingResponse {
	minLeads := int64(0)
	if uc.pricing.LeadPrice.IsPositive() {
		minLeads = uc.pricing.MinPurchase.Div(uc.pricing.LeadPrice).Ceil().IntPart()
	}
	return dto.PricingResponse{
		LeadPrice:   uc.pricing.LeadPrice,
		MinPurchase: uc.pricing.MinPurchase,
		MinLeads:    minLeads,
		Currency:    uc.pricing.Currency,
	}
}

func toAccountResponse(a *entity.Account) *dto.AccountResponse {
	return &dto.AccountResponse{
		ID:         a.ID,
		Email:      a.Email,
		Credits:    a.Credits,
		TotalSpent: a.TotalSpent,
		Role:       a.Role,
		CreatedAt:  a.CreatedAt,
	}
}
