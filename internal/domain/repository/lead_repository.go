package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Leadius-api/internal/domain/entity"
)

// LeadFilter filtros para el listado de leads de una cuenta.
type LeadFilter struct {
	Status *entity.LeadStatus
	Limit  int // 0 = 100; la implementación puede imponer un tope
}

// LeadRepository puerto de persistencia de leads. Disponible = sin dueño, con teléfono
// y con locked_until nulo o ya vencido.
type LeadRepository interface {
	CountAvailable(ctx context.Context, now time.Time) (int, error)
	// SelectAvailableForUpdate bloquea hasta limit leads disponibles, más nuevos primero.
	// Filas bloqueadas por otra transacción se saltan. Solo tiene sentido dentro de una tx.
	SelectAvailableForUpdate(ctx context.Context, now time.Time, limit int) ([]int64, error)
	Assign(ctx context.Context, ids []int64, ownerID int64, lockUntil, now time.Time) error
	Exists(ctx context.Context, companyName, phone string) (bool, error)
	// Insert devuelve false si (company_name, phone) ya existía.
	Insert(ctx context.Context, lead *entity.Lead) (bool, error)

	// UpdateStatus devuelve false si el lead no existe o no es de ownerID.
	UpdateStatus(ctx context.Context, id, ownerID int64, status entity.LeadStatus, now time.Time) (bool, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*entity.Lead, error)
	ListByOwner(ctx context.Context, ownerID int64, filter LeadFilter) ([]*entity.Lead, error)
	StatsByOwner(ctx context.Context, ownerID int64, dayStart time.Time, recent int) (*entity.LeadStats, error)
	SupplyOverview(ctx context.Context, now time.Time) (*entity.SupplyOverview, error)
}
