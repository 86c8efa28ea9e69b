package usecase_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Mocks de repositorios (testify/mock)
// ──────────────────────────────────────────────────────────────────────────────

type mockLeadRepo struct{ mock.Mock }

func (m *mockLeadRepo) CountAvailable(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *mockLeadRepo) SelectAvailableForUpdate(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	args := m.Called(ctx, now, limit)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *mockLeadRepo) Assign(ctx context.Context, ids []int64, ownerID int64, lockUntil, now time.Time) error {
	return m.Called(ctx, ids, ownerID, lockUntil, now).Error(0)
}

func (m *mockLeadRepo) Exists(ctx context.Context, company, phone string) (bool, error) {
	args := m.Called(ctx, company, phone)
	return args.Bool(0), args.Error(1)
}

func (m *mockLeadRepo) Insert(ctx context.Context, l *entity.Lead) (bool, error) {
	args := m.Called(ctx, l)
	return args.Bool(0), args.Error(1)
}

func (m *mockLeadRepo) UpdateStatus(ctx context.Context, id, ownerID int64, status entity.LeadStatus, now time.Time) (bool, error) {
	args := m.Called(ctx, id, ownerID, status, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockLeadRepo) GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*entity.Lead, error) {
	args := m.Called(ctx, id, ownerID)
	l, _ := args.Get(0).(*entity.Lead)
	return l, args.Error(1)
}

func (m *mockLeadRepo) ListByOwner(ctx context.Context, ownerID int64, filter repository.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, ownerID, filter)
	leads, _ := args.Get(0).([]*entity.Lead)
	return leads, args.Error(1)
}

func (m *mockLeadRepo) StatsByOwner(ctx context.Context, ownerID int64, dayStart time.Time, recent int) (*entity.LeadStats, error) {
	args := m.Called(ctx, ownerID, dayStart, recent)
	s, _ := args.Get(0).(*entity.LeadStats)
	return s, args.Error(1)
}

func (m *mockLeadRepo) SupplyOverview(ctx context.Context, now time.Time) (*entity.SupplyOverview, error) {
	args := m.Called(ctx, now)
	o, _ := args.Get(0).(*entity.SupplyOverview)
	return o, args.Error(1)
}

type mockAccountRepo struct{ mock.Mock }

func (m *mockAccountRepo) Create(ctx context.Context, a *entity.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*entity.Account)
	return a, args.Error(1)
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	args := m.Called(ctx, email)
	a, _ := args.Get(0).(*entity.Account)
	return a, args.Error(1)
}

func (m *mockAccountRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Account, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*entity.Account)
	return a, args.Error(1)
}

func (m *mockAccountRepo) Debit(ctx context.Context, id int64, amount int) (int, error) {
	args := m.Called(ctx, id, amount)
	return args.Int(0), args.Error(1)
}

func (m *mockAccountRepo) Credit(ctx context.Context, id int64, amount int, spent decimal.Decimal) (int, error) {
	args := m.Called(ctx, id, amount, spent)
	return args.Int(0), args.Error(1)
}

func (m *mockAccountRepo) CountAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockPaymentRepo struct{ mock.Mock }

func (m *mockPaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPaymentRepo) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entity.Payment, error) {
	args := m.Called(ctx, accountID, limit)
	p, _ := args.Get(0).([]*entity.Payment)
	return p, args.Error(1)
}

type mockLedgerRepo struct{ mock.Mock }

func (m *mockLedgerRepo) Append(ctx context.Context, e *entity.CreditEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockLedgerRepo) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entity.CreditEntry, error) {
	args := m.Called(ctx, accountID, limit)
	e, _ := args.Get(0).([]*entity.CreditEntry)
	return e, args.Error(1)
}

// passTx ejecuta el callback con los mismos mocks (sin transacción real).
type passTx struct {
	accounts *mockAccountRepo
	payments *mockPaymentRepo
	ledger   *mockLedgerRepo
}

func (p passTx) RunLedger(_ context.Context, fn func(
	accountRepo repository.AccountRepository,
	paymentRepo repository.PaymentRepository,
	ledgerRepo repository.CreditLedgerRepository,
) error) error {
	return fn(p.accounts, p.payments, p.ledger)
}

type mockPDF struct{ mock.Mock }

func (m *mockPDF) GenerateLeadsPDF(ctx context.Context, acc *entity.Account, leads []*entity.Lead, at time.Time) ([]byte, error) {
	args := m.Called(ctx, acc, leads, at)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}
