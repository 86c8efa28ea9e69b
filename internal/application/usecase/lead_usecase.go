package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Leadius-api/internal/application/dto"
	"github.com/jhoicas/Leadius-api/internal/domain"
	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
	"github.com/jhoicas/Leadius-api/pkg/logger"
)

const (
	listLimit   = 100
	exportLimit = 5000
	recentLeads = 5
)

// LeadUseCase espacio de trabajo de una cuenta sobre sus leads asignados.
type LeadUseCase struct {
	leadRepo    repository.LeadRepository
	accountRepo repository.AccountRepository
	pdf         LeadsPDFGenerator
	log         *logger.Logger
	now         func() time.Time
}

// NewLeadUseCase construye el caso de uso.
func NewLeadUseCase(leadRepo repository.LeadRepository, accountRepo repository.AccountRepository,
	pdf LeadsPDFGenerator, log *logger.Logger) *LeadUseCase {
	return &LeadUseCase{
		leadRepo:    leadRepo,
		accountRepo: accountRepo,
		pdf:         pdf,
		log:         log.Component("leads"),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *LeadUseCase) WithClock(now func() time.Time) *LeadUseCase {
	uc.now = now
	return uc
}

// UpdateStatus cambia el estado de un lead de la cuenta. Cualquier transición entre estados válidos
// está permitida. domain.ErrNotFound si el lead no existe o es de otra cuenta.
func (uc *LeadUseCase) UpdateStatus(ctx context.Context, accountID, leadID int64, raw string) (entity.LeadStatus, error) {
	status, ok := entity.ParseLeadStatus(raw)
	if !ok {
		return "", fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, raw)
	}
	found, err := uc.leadRepo.UpdateStatus(ctx, leadID, accountID, status, uc.now())
	if err != nil {
		return "", err
	}
	if !found {
		return "", domain.ErrNotFound
	}
	uc.log.Debug().Int64("account_id", accountID).Int64("lead_id", leadID).Str("status", string(status)).
		Msg("estado de lead actualizado")
	return status, nil
}

// Stats total, creados hoy (día local), conteo por estado, los más recientes y el saldo.
func (uc *LeadUseCase) Stats(ctx context.Context, accountID int64) (*dto.LeadStatsResponse, error) {
	acc, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrNotFound
	}

	stats, err := uc.leadRepo.StatsByOwner(ctx, accountID, startOfDay(uc.now()), recentLeads)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int, len(entity.LeadStatuses))
	for _, s := range entity.LeadStatuses {
		byStatus[string(s)] = stats.ByStatus[s]
	}
	return &dto.LeadStatsResponse{
		Total:    stats.Total,
		Today:    stats.Today,
		ByStatus: byStatus,
		Recent:   toLeadResponses(stats.Recent),
		Credits:  acc.Credits,
	}, nil
}

// List leads de la cuenta, más nuevos primero, opcionalmente filtrados por estado.
func (uc *LeadUseCase) List(ctx context.Context, accountID int64, rawStatus string) ([]dto.LeadResponse, error) {
	filter := repository.LeadFilter{Limit: listLimit}
	if rawStatus != "" {
		status, ok := entity.ParseLeadStatus(rawStatus)
		if !ok {
			return nil, fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, rawStatus)
		}
		filter.Status = &status
	}
	leads, err := uc.leadRepo.ListByOwner(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}
	return toLeadResponses(leads), nil
}

// Get detalle de un lead de la cuenta.
func (uc *LeadUseCase) Get(ctx context.Context, accountID, leadID int64) (*dto.LeadResponse, error) {
	l, err := uc.leadRepo.GetByIDAndOwner(ctx, leadID, accountID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrNotFound
	}
	out := toLeadResponse(l)
	return &out, nil
}

// ExportPDF listado imprimible de los leads de la cuenta. Devuelve los bytes y el nombre de archivo.
func (uc *LeadUseCase) ExportPDF(ctx context.Context, accountID int64) ([]byte, string, error) {
	acc, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, "", err
	}
	if acc == nil {
		return nil, "", domain.ErrNotFound
	}
	leads, err := uc.leadRepo.ListByOwner(ctx, accountID, repository.LeadFilter{Limit: exportLimit})
	if err != nil {
		return nil, "", err
	}
	now := uc.now()
	doc, err := uc.pdf.GenerateLeadsPDF(ctx, acc, leads, now)
	if err != nil {
		return nil, "", fmt.Errorf("exportar leads: %w", err)
	}
	return doc, fmt.Sprintf("leads-%d-%s.pdf", accountID, now.Format("20060102")), nil
}

// Supply vista admin del stock global.
func (uc *LeadUseCase) Supply(ctx context.Context) (*dto.SupplyResponse, error) {
	o, err := uc.leadRepo.SupplyOverview(ctx, uc.now())
	if err != nil {
		return nil, err
	}
	return &dto.SupplyResponse{
		Total:     o.Total,
		WithPhone: o.WithPhone,
		Available: o.Available,
		Locked:    o.Locked,
		Assigned:  o.Assigned,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func toLeadResponses(leads []*entity.Lead) []dto.LeadResponse {
	out := make([]dto.LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, toLeadResponse(l))
	}
	return out
}

func toLeadResponse(l *entity.Lead) dto.LeadResponse {
	return dto.LeadResponse{
		ID:          l.ID,
		CompanyName: l.CompanyName,
		Industry:    l.Industry,
		Location:    l.Location,
		Website:     l.Website,
		Email:       l.Email,
		Phone:       l.Phone,
		Description: l.Description,
		Source:      l.Source,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		LastUpdated: l.LastUpdated,
		LockedUntil: l.LockedUntil,
	}
}
