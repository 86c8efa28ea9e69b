package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorWithCounts error de asignación con las cantidades involucradas.
type ErrorWithCounts struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Requested int    `json:"requested"`
	Available *int   `json:"available,omitempty"`
	Balance   *int   `json:"balance,omitempty"`
}
