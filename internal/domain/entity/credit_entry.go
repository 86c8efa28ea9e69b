package entity

import "time"

// Tipos de asiento del libro de créditos.
const (
	CreditEntryTopUp      = "TOP_UP"
	CreditEntryAllocation = "ALLOCATION"
)

// CreditEntry asiento inmutable del libro de créditos. Amount es positivo en recargas
// y negativo en asignaciones; BalanceAfter es el saldo resultante.
type CreditEntry struct {
	ID           int64
	AccountID    int64
	EntryType    string
	Amount       int
	BalanceAfter int
	Reference    string
	CreatedAt    time.Time
}
