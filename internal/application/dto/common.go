package dto

// ErrorResponse cuerpo de error HTTP.
// Details lleva información adicional: campo → regla en validaciones, stored/derived en corrupción.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// PageResponse metadatos de página por cursor en respuestas del libro.
type PageResponse struct {
	Limit     int   `json:"limit"`
	NextAfter int64 `json:"next_after,omitempty"`
	HasMore   bool  `json:"has_more"`
}
