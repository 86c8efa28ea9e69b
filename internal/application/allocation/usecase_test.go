package allocation_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Leadius-api/internal/application/allocation"
	"github.com/jhoicas/Leadius-api/internal/application/ingestion"
	"github.com/jhoicas/Leadius-api/internal/domain"
	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
	"github.com/jhoicas/Leadius-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes: una "BD" en memoria con transacciones serializadas y rollback por snapshot
// ──────────────────────────────────────────────────────────────────────────────

type memDB struct {
	txMu     sync.Mutex // serializa transacciones (equivale a los row locks)
	mu       sync.Mutex // protege los datos
	leads    map[int64]*entity.Lead
	accounts map[int64]*entity.Account
	ledger   []*entity.CreditEntry
	failOn   string // nombre de operación que falla dentro de la tx
}

func newMemDB() *memDB {
	return &memDB{leads: map[int64]*entity.Lead{}, accounts: map[int64]*entity.Account{}}
}

func (db *memDB) addAccount(id int64, credits int) {
	db.accounts[id] = &entity.Account{ID: id, Email: "c@example.se", Credits: credits, Role: entity.RoleCustomer}
}

// addLeads crea n leads disponibles; created_at crece con el id.
func (db *memDB) addLeads(n int, base time.Time) {
	start := int64(len(db.leads))
	for i := int64(1); i <= int64(n); i++ {
		id := start + i
		db.leads[id] = &entity.Lead{
			ID: id, CompanyName: "Företag", Phone: "070000000" + string(rune('0'+id%10)),
			Status: entity.LeadStatusNew, CreatedAt: base.Add(time.Duration(id) * time.Minute),
		}
	}
}

func (db *memDB) snapshot() (map[int64]entity.Lead, map[int64]entity.Account, int) {
	leads := make(map[int64]entity.Lead, len(db.leads))
	for id, l := range db.leads {
		leads[id] = *l
	}
	accs := make(map[int64]entity.Account, len(db.accounts))
	for id, a := range db.accounts {
		accs[id] = *a
	}
	return leads, accs, len(db.ledger)
}

func (db *memDB) restore(leads map[int64]entity.Lead, accs map[int64]entity.Account, ledgerLen int) {
	for id, l := range leads {
		l := l
		db.leads[id] = &l
	}
	for id, a := range accs {
		a := a
		db.accounts[id] = &a
	}
	db.ledger = db.ledger[:ledgerLen]
}

func (db *memDB) fail(op string) error {
	if db.failOn == op {
		return errors.New("fallo en " + op)
	}
	return nil
}

type memTx struct{ db *memDB }

func (t memTx) RunAllocation(ctx context.Context, fn func(
	leadRepo repository.LeadRepository,
	accountRepo repository.AccountRepository,
	ledgerRepo repository.CreditLedgerRepository,
) error) error {
	t.db.txMu.Lock()
	defer t.db.txMu.Unlock()

	t.db.mu.Lock()
	leads, accs, n := t.db.snapshot()
	t.db.mu.Unlock()

	if err := fn(memLeads{t.db}, memAccounts{t.db}, memLedger{t.db}); err != nil {
		t.db.mu.Lock()
		t.db.restore(leads, accs, n)
		t.db.mu.Unlock()
		return err
	}
	return nil
}

type memLeads struct{ db *memDB }

func (r memLeads) available(now time.Time) []*entity.Lead {
	var out []*entity.Lead
	for _, l := range r.db.leads {
		if l.Available(now) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memLeads) CountAvailable(_ context.Context, now time.Time) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.available(now)), nil
}

func (r memLeads) SelectAvailableForUpdate(_ context.Context, now time.Time, limit int) ([]int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var ids []int64
	for _, l := range r.available(now) {
		if len(ids) == limit {
			break
		}
		ids = append(ids, l.ID)
	}
	return ids, nil
}

func (r memLeads) Assign(_ context.Context, ids []int64, ownerID int64, lockUntil, now time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		l := r.db.leads[id]
		owner, until := ownerID, lockUntil
		l.OwnerID, l.LockedUntil, l.LastUpdated = &owner, &until, now
	}
	return r.db.fail("assign")
}

func (r memLeads) Exists(context.Context, string, string) (bool, error) { return false, nil }
func (r memLeads) Insert(context.Context, *entity.Lead) (bool, error) { return false, nil }
func (r memLeads) GetByIDAndOwner(context.Context, int64, int64) (*entity.Lead, error) {
	return nil, nil
}
func (r memLeads) UpdateStatus(context.Context, int64, int64, entity.LeadStatus, time.Time) (bool, error) {
	return false, nil
}
func (r memLeads) ListByOwner(context.Context, int64, repository.LeadFilter) ([]*entity.Lead, error) {
	return nil, nil
}
func (r memLeads) StatsByOwner(context.Context, int64, time.Time, int) (*entity.LeadStats, error) {
	return nil, nil
}
func (r memLeads) SupplyOverview(context.Context, time.Time) (*entity.SupplyOverview, error) {
	return nil, nil
}

type memAccounts struct{ db *memDB }

func (r memAccounts) get(id int64) *entity.Account {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.accounts[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func (r memAccounts) GetByID(_ context.Context, id int64) (*entity.Account, error) { return r.get(id), nil }
func (r memAccounts) GetForUpdate(_ context.Context, id int64) (*entity.Account, error) {
	return r.get(id), nil
}

func (r memAccounts) Debit(_ context.Context, id int64, amount int) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.accounts[id]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	if a.Credits < amount {
		return 0, &domain.InsufficientCreditsError{Requested: amount, Balance: a.Credits}
	}
	a.Credits -= amount
	return a.Credits, nil
}

func (r memAccounts) Create(context.Context, *entity.Account) error { return nil }
func (r memAccounts) GetByEmail(context.Context, string) (*entity.Account, error) {
	return nil, nil
}
func (r memAccounts) Credit(context.Context, int64, int, decimal.Decimal) (int, error) {
	return 0, nil
}
func (r memAccounts) CountAdmins(context.Context) (int, error) { return 0, nil }

type memLedger struct{ db *memDB }

func (r memLedger) Append(_ context.Context, e *entity.CreditEntry) error {
	if err := r.db.fail("ledger"); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.ledger = append(r.db.ledger, e)
	return nil
}

func (r memLedger) ListByAccount(context.Context, int64, int) ([]*entity.CreditEntry, error) {
	return nil, nil
}

type mockRefiller struct{ mock.Mock }

func (m *mockRefiller) Refill(ctx context.Context) (*ingestion.Result, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*ingestion.Result)
	return res, args.Error(1)
}

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newEngine(db *memDB, refiller allocation.Refiller) *allocation.UseCase {
	uc := allocation.NewUseCase(memTx{db}, memAccounts{db}, memLeads{db}, refiller,
		allocation.DefaultLockDuration, logger.Nop())
	return uc.WithClock(func() time.Time { return now })
}

func ownedBy(db *memDB, owner int64) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, l := range db.leads {
		if l.OwnerID != nil && *l.OwnerID == owner {
			n++
		}
	}
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Allocate
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_Exito(t *testing.T) {
	db := newMemDB()
	db.addAccount(1, 20)
	db.addLeads(15, now.Add(-48*time.Hour))

	res, err := newEngine(db, nil).Allocate(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Len(t, res.LeadIDs, 10)
	assert.Equal(t, 10, res.CreditsRemaining)
	assert.Equal(t, now.Add(180*24*time.Hour), res.LockedUntil)
	assert.Equal(t, 10, ownedBy(db, 1))

	// Los más nuevos primero: ids 15..6.
	assert.Equal(t, int64(15), res.LeadIDs[0])
	assert.Equal(t, int64(6), res.LeadIDs[9])

	for _, id := range res.LeadIDs {
		l := db.leads[id]
		require.NotNil(t, l.LockedUntil)
		assert.Equal(t, res.LockedUntil, *l.LockedUntil)
	}

	require.Len(t, db.ledger, 1)
	assert.Equal(t, entity.CreditEntryAllocation, db.ledger[0].EntryType)
	assert.Equal(t, -10, db.ledger[0].Amount)
	assert.Equal(t, 10, db.ledger[0].BalanceAfter)
}

func TestAllocate_CreditosInsuficientes_SinMutacion(t *testing.T) {
	db := newMemDB()
	db.addAccount(1, 5)
	db.addLeads(20, now.Add(-time.Hour))
	refiller := new(mockRefiller)

	_, err := newEngine(db, refiller).Allocate(context.Background(), 1, 10)

	var credErr *domain.InsufficientCreditsError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, 10, credErr.Requested)
	assert.Equal(t, 5, credErr.Balance)
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)

	assert.Equal(t, 5, db.accounts[1].Credits)
	assert.Equal(t, 0, ownedBy(db, 1))
	assert.Empty(t, db.ledger)
	refiller.AssertNotCalled(t, "Refill", mock.Anything)
}

func TestAllocate_CuentaInexistente(t *testing.T) {
	db := newMemDB()
	db.addLeads(5, now.Add(-time.Hour))

	_, err := newEngine(db, nil).Allocate(context.Background(), 99, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)
}

func TestAllocate_CantidadInvalida(t *testing.T) {
	db := newMemDB()
	db.addAccount(1, 10)

	for _, count := range []int{0, -3} {
		_, err := newEngine(db, nil).Allocate(context.Background(), 1, count)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "count=%d", count)
	}
}

func TestAllocate_ReponeCuandoFaltan(t *testing.T) {
	db := newMemDB()
	db.addAccount(1, 50)
	db.addLeads(3, now.Add(-time.Hour))

	refiller := new(mockRefiller)
	refiller.On("Refill", mock.Anything).Run(func(mock.Arguments) {
		db.mu.Lock()
		db.addLeads(40, now.Add(-30*time.Minute))
		db.mu.Unlock()
	}).Return(&ingestion.Result{Inserted: 40}, nil).Once()

	res, err := newEngine(db, refiller).Allocate(context.Background(), 1, 30)
	require.NoError(t, err)
	assert.Len(t, res.LeadIDs, 30)
	assert.Equal(t, 20, res.CreditsRemaining)
	refiller.AssertExpectations(t)
}

func TestAllocate_StockInsuficienteTrasReponer(t *testing.T) {
	db := newMemDB()
	db.addAccount(1, 50)
	db.addLeads(8, now.Add(-time.Hour))

	refiller := new(mockRefiller)
	refiller.On("Refill", mock.Anything).Return(&ingestion.Result{}, nil).Once()

	_, err := newEngine(db, refiller).Allocate(context.Background(), 1, 10)

	var supErr *domain.InsufficientSupplyError
	require.ErrorAs(t, err, &supErr)
	assert.Equal(t, 10, supErr.Requested)
	assert.Equal(t, 8, supErr.Available)
	assert.Equal(t, 50, db.accounts[1].Credits)
	assert.Equal(t, 0, ownedBy(db, 1))
	refiller.AssertExpectations(t)
}

func TestAllocate_FalloDeReposicionNoEsFatal(t *testing.T) {
	db := newMemDB()
	db.addAccount(1, 50)
	db.addLeads(2, now.Add(-time.Hour))

	refiller := new(mockRefiller)
	refiller.On("Refill", mock.Anything).Return(nil, domain.ErrSourceUnavailable).Once()

	_, err := newEngine(db, refiller).Allocate(context.Background(), 1, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientSupply)
	assert.NotErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestAllocate_NoReasignaLeadsBloqueados(t *testing.T) {
	db := newMemDB()
	db.addAccount(1, 10)
	db.addAccount(2, 10)
	db.addLeads(4, now.Add(-time.Hour))

	engine := newEngine(db, nil)
	_, err := engine.Allocate(context.Background(), 1, 4)
	require.NoError(t, err)

	_, err = engine.Allocate(context.Background(), 2, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientSupply)
}

func TestAllocate_LockVencidoVuelveAlPool(t *testing.T) {
	db := newMemDB()
	db.addAccount(2, 10)
	db.addLeads(1, now.Add(-400*24*time.Hour))
	// Bloqueado y sin dueño, pero vencido.
	past := now.Add(-time.Hour)
	db.leads[1].LockedUntil = &past

	res, err := newEngine(db, nil).Allocate(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, res.LeadIDs)
}

func TestAllocate_FalloEnTxHaceRollback(t *testing.T) {
	db := newMemDB()
	db.addAccount(1, 20)
	db.addLeads(10, now.Add(-time.Hour))
	db.failOn = "ledger"

	_, err := newEngine(db, nil).Allocate(context.Background(), 1, 5)
	require.Error(t, err)

	assert.Equal(t, 20, db.accounts[1].Credits)
	assert.Equal(t, 0, ownedBy(db, 1))
	assert.Empty(t, db.ledger)
}

// Dos clientes piden N con exactamente N disponibles: uno gana, el otro recibe InsufficientSupply.
func TestAllocate_Concurrencia_UnSoloGanador(t *testing.T) {
	db := newMemDB()
	db.addAccount(1, 100)
	db.addAccount(2, 100)
	db.addLeads(25, now.Add(-time.Hour))
	engine := newEngine(db, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Allocate(context.Background(), int64(i+1), 25)
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientSupply):
			short++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 25, ownedBy(db, 1)+ownedBy(db, 2))
	assert.Equal(t, 175, db.accounts[1].Credits+db.accounts[2].Credits)
	assert.Len(t, db.ledger, 1)
}
