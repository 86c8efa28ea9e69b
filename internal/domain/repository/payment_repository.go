package repository

import (
	"context"

	"github.com/jhoicas/Leadius-api/internal/domain/entity"
)

// PaymentRepository puerto de persistencia de pagos.
type PaymentRepository interface {
	// Create devuelve domain.ErrDuplicate si payment_id ya existe.
	Create(ctx context.Context, p *entity.Payment) error
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*entity.Payment, error)
}
