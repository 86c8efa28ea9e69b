package entity

import (
	"strings"
	"time"
)

// LeadStatus estado de un lead dentro del espacio de trabajo de su dueño.
type LeadStatus string

// Estados válidos. Las transiciones son libres entre ellos.
const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusContacted LeadStatus = "Contacted"
	LeadStatusConverted LeadStatus = "Converted"
	LeadStatusRemoved   LeadStatus = "Removed"
)

// LeadStatuses en orden de presentación.
var LeadStatuses = []LeadStatus{LeadStatusNew, LeadStatusContacted, LeadStatusConverted, LeadStatusRemoved}

var leadStatusAliases = map[string]LeadStatus{
	"new":         LeadStatusNew,
	"ny":          LeadStatusNew,
	"contacted":   LeadStatusContacted,
	"kontaktad":   LeadStatusContacted,
	"converted":   LeadStatusConverted,
	"konverterad": LeadStatusConverted,
	"removed":     LeadStatusRemoved,
	"borttagen":   LeadStatusRemoved,
}

// ParseLeadStatus acepta el nombre canónico o su equivalente sueco, sin distinguir mayúsculas.
func ParseLeadStatus(s string) (LeadStatus, bool) {
	st, ok := leadStatusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// Valores por defecto del normalizador.
const (
	DefaultIndustry = "General Business"
	DefaultLocation = "Sweden"
	MaxDescription  = 300
)

// Lead contacto empresarial sueco que se asigna a una cuenta a cambio de créditos.
type Lead struct {
	ID          int64
	CompanyName string
	Industry    string
	Location    string
	Website     *string
	Email       *string
	Phone       string // solo dígitos y "+" inicial
	Description string
	Source      string // p.ej. "Excel: leads_stockholm.xlsx"
	Status      LeadStatus
	OwnerID     *int64
	CreatedAt   time.Time
	LastUpdated time.Time
	LockedUntil *time.Time
}

// Available indica si el lead puede asignarse en el instante now.
func (l *Lead) Available(now time.Time) bool {
	if l.OwnerID != nil || l.Phone == "" {
		return false
	}
	return l.LockedUntil == nil || l.LockedUntil.Before(now)
}

// LeadStats resumen del espacio de trabajo de una cuenta.
type LeadStats struct {
	Total    int
	Today    int
	ByStatus map[LeadStatus]int
	Recent   []*Lead
}

// SupplyOverview estado del inventario global de leads (vista admin).
type SupplyOverview struct {
	Total     int
	WithPhone int
	Available int
	Locked    int
	Assigned  int
}
