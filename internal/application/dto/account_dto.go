package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest entrada para registro: las cuentas nuevas son Customer con 0 créditos.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT y datos de la cuenta.
type LoginResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

// AccountResponse salida de una cuenta (sin password).
type AccountResponse struct {
	ID         int64           `json:"id"`
	Email      string          `json:"email"`
	Credits    int             `json:"credits"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	Role       string          `json:"role"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TopUpRequest recarga de créditos hecha por un admin. PaymentID y Amount registran un pago manual.
type TopUpRequest struct {
	AccountID int64            `json:"account_id" validate:"required"`
	Credits   int              `json:"credits" validate:"required,min=1"`
	PaymentID string           `json:"payment_id,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

// TopUpResponse saldo tras la recarga.
type TopUpResponse struct {
	AccountID int64  `json:"account_id"`
	Credits   int    `json:"credits"`
	PaymentID string `json:"payment_id,omitempty"`
}

// CreditEntryResponse movimiento del libro de créditos.
type CreditEntryResponse struct {
	EntryType    string    `json:"entry_type"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balance_after"`
	Reference    string    `json:"reference"`
	CreatedAt    time.Time `json:"created_at"`
}

// PaymentResponse pago registrado.
type PaymentResponse struct {
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Leads     int             `json:"leads"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// AccountDetailResponse cuenta con su historial reciente.
type AccountDetailResponse struct {
	AccountResponse
	Entries  []CreditEntryResponse `json:"entries"`
	Payments []PaymentResponse     `json:"payments"`
}

// PricingResponse constantes informativas de precio.
type PricingResponse struct {
	LeadPrice   decimal.Decimal `json:"lead_price"`
	MinPurchase decimal.Decimal `json:"min_purchase"`
	MinLeads    int64           `json:"min_leads"`
	Currency    string          `json:"currency"`
}
