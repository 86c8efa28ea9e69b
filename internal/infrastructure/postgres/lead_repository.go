package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/repository"
)

var _ repository.LeadRepository = (*LeadRepo)(nil)

const leadColumns = `id, company_name, industry, location, website, email, phone, description, source,
	status, owner_id, created_at, last_updated, locked_until`

// availableWhere condición de lead asignable; $1 es "ahora".
// Límites del listado por dueño: la API usa el defecto, la exportación a PDF pide el máximo.
const (
	defaultListLimit = 100
	maxListLimit     = 5000
)

const availableWhere = `owner_id IS NULL AND phone <> '' AND (locked_until IS NULL OR locked_until < $1)`

// LeadRepo implementación de LeadRepository sobre PostgreSQL (usable con pool o tx).
type LeadRepo struct {
	q Querier
}

// NewLeadRepository construye el adaptador de leads. Pasar pool o tx (Querier).
func NewLeadRepository(q Querier) *LeadRepo {
	return &LeadRepo{q: q}
}

// CountAvailable cuenta los leads asignables en now.
func (r *LeadRepo) CountAvailable(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM leads WHERE `+availableWhere, now).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count available leads: %w", err)
	}
	return n, nil
}

// SelectAvailableForUpdate bloquea hasta limit leads asignables (SKIP LOCKED).
func (r *LeadRepo) SelectAvailableForUpdate(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	query := `
		SELECT id FROM leads
		WHERE ` + availableWhere + `
		ORDER BY created_at DESC, id DESC
		LIMIT $2
		FOR UPDATE SKIP LOCKED`
	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("select available leads: %w", err)
	}
	defer rows.Close()
	ids := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lead id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Assign entrega el lote a ownerID con un único locked_until y estado New.
func (r *LeadRepo) Assign(ctx context.Context, ids []int64, ownerID int64, lockUntil, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE leads
		SET owner_id = $2, status = 'New', last_updated = $3, locked_until = $4
		WHERE id = ANY($1)`
	tag, err := r.q.Exec(ctx, query, ids, ownerID, now, lockUntil)
	if err != nil {
		return fmt.Errorf("assign leads: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("assign leads: %d de %d filas actualizadas", tag.RowsAffected(), len(ids))
	}
	return nil
}

// Exists indica si ya hay un lead con ese par (company_name, phone).
func (r *LeadRepo) Exists(ctx context.Context, companyName, phone string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM leads WHERE company_name = $1 AND phone = $2)`,
		companyName, phone,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("lead exists: %w", err)
	}
	return ok, nil
}

// Insert persiste un lead nuevo sin dueño. Si el par ya existía no hace nada y devuelve false.
func (r *LeadRepo) Insert(ctx context.Context, l *entity.Lead) (bool, error) {
	query := `
		INSERT INTO leads (company_name, industry, location, website, email, phone, description,
			source, status, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (company_name, phone) DO NOTHING
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		l.CompanyName, l.Industry, l.Location, l.Website, l.Email, l.Phone, l.Description,
		l.Source, string(l.Status), l.CreatedAt, l.LastUpdated,
	).Scan(&l.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert lead: %w", err)
	}
	return true, nil
}

// UpdateStatus cambia el estado solo si el lead pertenece a ownerID.
func (r *LeadRepo) UpdateStatus(ctx context.Context, id, ownerID int64, status entity.LeadStatus, now time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE leads SET status = $3, last_updated = $4 WHERE id = $1 AND owner_id = $2`,
		id, ownerID, string(status), now,
	)
	if err != nil {
		return false, fmt.Errorf("update lead status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByIDAndOwner devuelve (nil, nil) si no existe o es de otra cuenta.
func (r *LeadRepo) GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND owner_id = $2`
	l, err := scanLead(r.q.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lead by id: %w", err)
	}
	return l, nil
}

// ListByOwner lista los leads de una cuenta, más nuevos primero.
func (r *LeadRepo) ListByOwner(ctx context.Context, ownerID int64, filter repository.LeadFilter) ([]*entity.Lead, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}
	query := `
		SELECT ` + leadColumns + ` FROM leads
		WHERE owner_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, ownerID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()
	return collectLeads(rows)
}

// StatsByOwner total, creados desde dayStart, conteo por estado y los recent más nuevos.
func (r *LeadRepo) StatsByOwner(ctx context.Context, ownerID int64, dayStart time.Time, recent int) (*entity.LeadStats, error) {
	stats := &entity.LeadStats{ByStatus: make(map[entity.LeadStatus]int, len(entity.LeadStatuses))}
	for _, s := range entity.LeadStatuses {
		stats.ByStatus[s] = 0
	}

	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= $2)
		FROM leads WHERE owner_id = $1`, ownerID, dayStart,
	).Scan(&stats.Total, &stats.Today)
	if err != nil {
		return nil, fmt.Errorf("lead totals: %w", err)
	}

	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM leads WHERE owner_id = $1 GROUP BY status`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("lead status counts: %w", err)
	}
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[entity.LeadStatus(s)] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lead status counts: %w", err)
	}

	if recent > 0 {
		stats.Recent, err = r.ListByOwner(ctx, ownerID, repository.LeadFilter{Limit: recent})
		if err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// SupplyOverview foto del inventario global de leads.
func (r *LeadRepo) SupplyOverview(ctx context.Context, now time.Time) (*entity.SupplyOverview, error) {
	var o entity.SupplyOverview
	err := r.q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE phone <> ''),
			COUNT(*) FILTER (WHERE `+availableWhere+`),
			COUNT(*) FILTER (WHERE locked_until >= $1),
			COUNT(*) FILTER (WHERE owner_id IS NOT NULL)
		FROM leads`, now,
	).Scan(&o.Total, &o.WithPhone, &o.Available, &o.Locked, &o.Assigned)
	if err != nil {
		return nil, fmt.Errorf("supply overview: %w", err)
	}
	return &o, nil
}

func scanLead(row pgx.Row) (*entity.Lead, error) {
	var l entity.Lead
	var status string
	err := row.Scan(
		&l.ID, &l.CompanyName, &l.Industry, &l.Location, &l.Website, &l.Email, &l.Phone,
		&l.Description, &l.Source, &status, &l.OwnerID, &l.CreatedAt, &l.LastUpdated, &l.LockedUntil,
	)
	if err != nil {
		return nil, err
	}
	l.Status = entity.LeadStatus(status)
	return &l, nil
}

func collectLeads(rows pgx.Rows) ([]*entity.Lead, error) {
	var list []*entity.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
