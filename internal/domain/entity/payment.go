package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago.
const (
	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
)

// Payment registro de un pago externo. El núcleo de asignación no lo escribe;
// solo la recarga manual de un admin puede dejar constancia de uno.
type Payment struct {
	ID        int64
	PaymentID string // referencia externa, única
	AccountID int64
	Amount    decimal.Decimal
	Leads     int
	Status    string
	CreatedAt time.Time
}
