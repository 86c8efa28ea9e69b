package lead

// Campos canónicos a los que se mapean las columnas de una hoja de cálculo.
const (
	FieldCompany     = "company_name"
	FieldPhone       = "phone"
	FieldEmail       = "email"
	FieldWebsite     = "website"
	FieldLocation    = "location"
	FieldIndustry    = "industry"
	FieldDescription = "description"
)

// synonyms nombre de columna (ya normalizado) -> campo canónico. Coincidencia exacta.
var synonyms = map[string]string{
	"company":      FieldCompany,
	"company name": FieldCompany,
	"företag":      FieldCompany,
	"företagsnamn": FieldCompany,
	"name":         FieldCompany,
	"namn":         FieldCompany,

	"phone":         FieldPhone,
	"telefon":       FieldPhone,
	"phone number":  FieldPhone,
	"telefonnummer": FieldPhone,
	"tel":           FieldPhone,

	"email":  FieldEmail,
	"e-post": FieldEmail,
	"e-mail": FieldEmail,
	"mail":   FieldEmail,

	"website": FieldWebsite,
	"web":     FieldWebsite,
	"url":     FieldWebsite,
	"hemsida": FieldWebsite,

	"location": FieldLocation,
	"city":     FieldLocation,
	"stad":     FieldLocation,
	"ort":      FieldLocation,
	"address":  FieldLocation,
	"adress":   FieldLocation,

	"industry": FieldIndustry,
	"bransch":  FieldIndustry,
	"category": FieldIndustry,
	"kategori": FieldIndustry,

	"description":  FieldDescription,
	"beskrivning":  FieldDescription,
	"notes":        FieldDescription,
	"anteckningar": FieldDescription,
}

// companyHints subcadenas que delatan una columna con el nombre de la empresa.
var companyHints = []string{"company", "företag", "name", "namn", "firma"}

// CanonicalField devuelve el campo canónico de una cabecera ya normalizada, o "" si no hay sinónimo.
func CanonicalField(header string) string {
	return synonyms[header]
}
