package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Leadius-api/internal/application/dto"
	"github.com/jhoicas/Leadius-api/internal/domain"
	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
	"github.com/jhoicas/Leadius-api/pkg/jwt"
	"github.com/jhoicas/Leadius-api/pkg/logger"
)

const minPasswordLength = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login y cuenta admin inicial.
type AuthUseCase struct {
	accountRepo repository.AccountRepository
	jwtCfg      JWTConfig
	log         *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(accountRepo repository.AccountRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{accountRepo: accountRepo, jwtCfg: jwtCfg, log: log.Component("auth")}
}

// Register crea una cuenta Customer con 0 créditos. Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AccountResponse, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: el password debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLength)
	}
	existing, err := uc.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	acc, err := uc.create(ctx, email, in.Password, entity.RoleCustomer)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("account_id", acc.ID).Msg("cuenta registrada")
	return toAccountResponse(acc), nil
}

// Login verifica email/password, genera JWT y retorna token + cuenta.
// Email desconocido y password incorrecto responden igual (ErrUnauthorized).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	acc, err := uc.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, acc.ID, acc.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:   token,
		Account: *toAccountResponse(acc),
	}, nil
}

// EnsureAdmin siembra la cuenta admin en el primer arranque. No hace nada si ya existe algún admin
// o si no hay password configurado. Devuelve true si la creó.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	n, err := uc.accountRepo.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if password == "" {
		uc.log.Warn().Msg("sin cuentas admin y ADMIN_PASSWORD vacío: no se siembra admin")
		return false, nil
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return false, err
	}
	acc, err := uc.create(ctx, email, password, entity.RoleAdmin)
	if err != nil {
		return false, err
	}
	uc.log.Info().Int64("account_id", acc.ID).Str("email", acc.Email).Msg("cuenta admin creada")
	return true, nil
}

func (uc *AuthUseCase) create(ctx context.Context, email, password, role string) (*entity.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	acc := &entity.Account{
		Email:        email,
		PasswordHash: string(hash),
		Credits:      0,
		TotalSpent:   decimal.Zero,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := uc.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	return email, nil
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
