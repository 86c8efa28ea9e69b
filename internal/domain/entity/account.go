package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles válidos para Account.
const (
	RoleCustomer = "Customer"
	RoleAdmin    = "Admin"
)

// Account cuenta registrada; su saldo de créditos se gasta en asignaciones de leads.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string // bcrypt
	Credits      int
	TotalSpent   decimal.Decimal
	Role         string // Customer, Admin
	CreatedAt    time.Time
}

// IsAdmin indica si la cuenta tiene rol administrador.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
