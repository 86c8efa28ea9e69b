package dto

import "time"

// AllocateRequest cantidad de leads a reclamar.
type AllocateRequest struct {
	Count int `json:"count" validate:"required,min=1"`
}

// AllocateResponse lote asignado.
type AllocateResponse struct {
	LeadIDs          []int64   `json:"lead_ids"`
	Count            int       `json:"count"`
	CreditsRemaining int       `json:"credits_remaining"`
	LockedUntil      time.Time `json:"locked_until"`
}

// UpdateStatusRequest nuevo estado (acepta también Ny/Kontaktad/Konverterad/Borttagen).
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// LeadResponse salida de un lead asignado.
type LeadResponse struct {
	ID          int64      `json:"id"`
	CompanyName string     `json:"company_name"`
	Industry    string     `json:"industry"`
	Location    string     `json:"location"`
	Website     *string    `json:"website,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       string     `json:"phone"`
	Description string     `json:"description"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUpdated time.Time  `json:"last_updated"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

// LeadStatsResponse estadísticas del espacio de trabajo de la cuenta.
type LeadStatsResponse struct {
	Total    int            `json:"total"`
	Today    int            `json:"today"`
	ByStatus map[string]int `json:"by_status"`
	Recent   []LeadResponse `json:"recent"`
	Credits  int            `json:"credits"`
}

// SupplyResponse vista admin del stock de leads.
type SupplyResponse struct {
	Total     int `json:"total"`
	WithPhone int `json:"with_phone"`
	Available int `json:"available"`
	Locked    int `json:"locked"`
	Assigned  int `json:"assigned"`
}
