// Package lead convierte filas heterogéneas de hojas de cálculo suecas en leads canónicos.
// Todo el paquete es puro: no toca disco, red ni base de datos.
package lead

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jhoicas/Leadius-api/internal/domain/entity"
)

// RejectReason motivo por el que una fila no produce un lead.
type RejectReason int

const (
	Accepted RejectReason = iota
	RejectMissingPhone
	RejectMissingCompany
)

func (r RejectReason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectMissingPhone:
		return "missing_phone"
	case RejectMissingCompany:
		return "missing_company"
	default:
		return fmt.Sprintf("reject(%d)", int(r))
	}
}

// DefaultMinPhoneLength longitud mínima del teléfono ya limpio.
const DefaultMinPhoneLength = 9

// Cell par cabecera/valor de una fila.
type Cell struct {
	Header string
	Value  string
}

// Row fila de una hoja de cálculo en el orden de sus columnas.
type Row []Cell

var (
	digitRun    = regexp.MustCompile(`\d{8,}`)
	notPhoneChr = regexp.MustCompile(`[^0-9+]`)
)

// NormalizeHeader recorta y pasa a minúsculas un nombre de columna.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// IsBlank indica si el valor cuenta como ausente ("", "nan", "none").
func IsBlank(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "nan", "none":
		return true
	}
	return false
}

// CleanPhone deja solo dígitos y, si abre el número, un "+" inicial.
func CleanPhone(raw string) string {
	p := notPhoneChr.ReplaceAllString(raw, "")
	if strings.HasPrefix(p, "+") {
		return "+" + strings.ReplaceAll(p[1:], "+", "")
	}
	return strings.ReplaceAll(p, "+", "")
}

// SourceFor etiqueta de procedencia para filas leídas de un archivo.
func SourceFor(fileName string) string {
	return "Excel: " + fileName
}

// Normalize resuelve una fila a un Lead sin persistir. Las cabeceras se normalizan aquí,
// así que el llamador puede pasar los nombres tal cual aparecen en el archivo.
// minPhoneLen <= 0 usa DefaultMinPhoneLength.
func Normalize(row Row, source string, now time.Time, minPhoneLen int) (*entity.Lead, RejectReason) {
	if minPhoneLen <= 0 {
		minPhoneLen = DefaultMinPhoneLength
	}
	cells := make(Row, 0, len(row))
	for _, c := range row {
		cells = append(cells, Cell{Header: NormalizeHeader(c.Header), Value: strings.TrimSpace(c.Value)})
	}

	phone, ok := resolvePhone(cells, minPhoneLen)
	if !ok {
		return nil, RejectMissingPhone
	}
	company, ok := resolveCompany(cells)
	if !ok {
		return nil, RejectMissingCompany
	}

	location := mapped(cells, FieldLocation)
	if location == "" {
		location = entity.DefaultLocation
	}
	industry := mapped(cells, FieldIndustry)
	if industry == "" {
		industry = entity.DefaultIndustry
	}
	description := mapped(cells, FieldDescription)
	if description == "" {
		description = company + " - " + location
	}

	return &entity.Lead{
		CompanyName: company,
		Industry:    industry,
		Location:    location,
		Website:     optional(mapped(cells, FieldWebsite)),
		Email:       optional(mapped(cells, FieldEmail)),
		Phone:       phone,
		Description: truncate(description, entity.MaxDescription),
		Source:      source,
		Status:      entity.LeadStatusNew,
		CreatedAt:   now,
		LastUpdated: now,
	}, Accepted
}

// resolvePhone usa la columna de teléfono si trae valor; si no, busca en todas las columnas
// una racha de 8+ dígitos cuyo valor limpio alcance minLen. Un valor en la columna mapeada
// que quede corto tras limpiar rechaza la fila sin escanear el resto.
func resolvePhone(cells Row, minLen int) (string, bool) {
	if raw := mapped(cells, FieldPhone); raw != "" {
		p := CleanPhone(raw)
		return p, len(p) >= minLen
	}
	for _, c := range cells {
		if IsBlank(c.Value) || !digitRun.MatchString(c.Value) {
			continue
		}
		if p := CleanPhone(c.Value); len(p) >= minLen {
			return p, true
		}
	}
	return "", false
}

// resolveCompany: columna mapeada, luego cabeceras que contienen una pista de empresa,
// y por último el primer valor de más de 2 caracteres fuera de las columnas de teléfono.
func resolveCompany(cells Row) (string, bool) {
	if v := mapped(cells, FieldCompany); v != "" {
		return v, true
	}
	for _, c := range cells {
		if IsBlank(c.Value) {
			continue
		}
		for _, hint := range companyHints {
			if strings.Contains(c.Header, hint) {
				return c.Value, true
			}
		}
	}
	for _, c := range cells {
		if CanonicalField(c.Header) == FieldPhone {
			continue
		}
		if !IsBlank(c.Value) && utf8.RuneCountInString(c.Value) > 2 {
			return c.Value, true
		}
	}
	return "", false
}

// mapped devuelve el primer valor no vacío de una columna cuyo sinónimo es field.
func mapped(cells Row, field string) string {
	for _, c := range cells {
		if CanonicalField(c.Header) == field && !IsBlank(c.Value) {
			return c.Value
		}
	}
	return ""
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
