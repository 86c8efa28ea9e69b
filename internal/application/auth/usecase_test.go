package auth_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Leadius-api/internal/application/auth"
	"github.com/jhoicas/Leadius-api/internal/application/dto"
	"github.com/jhoicas/Leadius-api/internal/domain"
	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/pkg/jwt"
	"github.com/jhoicas/Leadius-api/pkg/logger"
)

const secret = "test-secret"

// memAccounts repositorio de cuentas en memoria.
type memAccounts struct {
	mu     sync.Mutex
	byID   map[int64]*entity.Account
	nextID int64
}

func newMemAccounts() *memAccounts { return &memAccounts{byID: map[int64]*entity.Account{}} }

func (m *memAccounts) Create(_ context.Context, a *entity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Email == a.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	m.nextID++
	a.ID = m.nextID
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id], nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (m *memAccounts) GetForUpdate(ctx context.Context, id int64) (*entity.Account, error) {
	return m.GetByID(ctx, id)
}
func (m *memAccounts) Debit(context.Context, int64, int) (int, error) { return 0, nil }
func (m *memAccounts) Credit(context.Context, int64, int, decimal.Decimal) (int, error) {
	return 0, nil
}

func (m *memAccounts) CountAdmins(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.byID {
		if a.Role == entity.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func newAuth(repo *memAccounts) *auth.AuthUseCase {
	return auth.NewAuthUseCase(repo, auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "test"}, logger.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Register / Login
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_CuentaCustomerSinCreditos(t *testing.T) {
	repo := newMemAccounts()
	acc, err := newAuth(repo).Register(context.Background(), dto.RegisterRequest{Email: " Kund@Example.se ", Password: "hemligt123"})
	require.NoError(t, err)

	assert.Equal(t, "kund@example.se", acc.Email)
	assert.Equal(t, entity.RoleCustomer, acc.Role)
	assert.Equal(t, 0, acc.Credits)
	assert.NotEqual(t, "hemligt123", repo.byID[acc.ID].PasswordHash)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	repo := newMemAccounts()
	uc := newAuth(repo)
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "kund@example.se", Password: "hemligt123"})
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), dto.RegisterRequest{Email: "KUND@example.se", Password: "annat1234"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_EntradaInvalida(t *testing.T) {
	uc := newAuth(newMemAccounts())
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "no-es-email", Password: "hemligt123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Register(context.Background(), dto.RegisterRequest{Email: "kund@example.se", Password: "kort"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	repo := newMemAccounts()
	uc := newAuth(repo)
	reg, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "kund@example.se", Password: "hemligt123"})
	require.NoError(t, err)

	// Caso 1: credenciales correctas → token con la cuenta y su rol
	res, err := uc.Login(context.Background(), dto.LoginRequest{Email: "kund@example.se", Password: "hemligt123"})
	require.NoError(t, err)
	id, role, err := jwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, id)
	assert.Equal(t, entity.RoleCustomer, role)

	// Caso 2: password incorrecto
	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "kund@example.se", Password: "fel"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Caso 3: email desconocido responde igual
	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "okand@example.se", Password: "hemligt123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// EnsureAdmin
// ──────────────────────────────────────────────────────────────────────────────

func TestEnsureAdmin(t *testing.T) {
	repo := newMemAccounts()
	uc := newAuth(repo)

	// Caso 1: sin password no se siembra
	created, err := uc.EnsureAdmin(context.Background(), "admin@example.se", "")
	require.NoError(t, err)
	assert.False(t, created)

	// Caso 2: primer arranque con password
	created, err = uc.EnsureAdmin(context.Background(), "admin@example.se", "superhemligt")
	require.NoError(t, err)
	assert.True(t, created)

	// Caso 3: idempotente
	created, err = uc.EnsureAdmin(context.Background(), "admin@example.se", "superhemligt")
	require.NoError(t, err)
	assert.False(t, created)

	n, _ := repo.CountAdmins(context.Background())
	assert.Equal(t, 1, n)
}
