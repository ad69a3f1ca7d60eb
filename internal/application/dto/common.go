package dto

// DefaultPageSize tamaño de página cuando el llamador no indica uno.
const DefaultPageSize = 20

// PageRequest paginación por página (clientes, productos, ventas).
type PageRequest struct {
	Page     int `query:"page" json:"page" validate:"gte=0"`
	PageSize int `query:"pageSize" json:"pageSize" validate:"gte=0,lte=200"`
}

// DefaultPage aplica valores por defecto si Page/PageSize son cero.
func (p *PageRequest) DefaultPage(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = size
	}
}

// Page respuesta paginada genérica. El total es el del servidor, no len(Items).
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page,omitempty"`
	PageSize int `json:"pageSize,omitempty"`
}

// Pages cantidad de páginas según el total informado por el servidor.
func (p Page[T]) Pages() int {
	return PageCount(p.Total, p.PageSize)
}

// PageCount = ceil(total/size); 0 si no hay resultados o size inválido.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ImportRowError error de una fila del archivo importado.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult resultado de una importación masiva (CSV).
type ImportResult struct {
	SuccessCount int              `json:"successCount"`
	ErrorCount   int              `json:"errorCount"`
	Errors       []ImportRowError `json:"errors"`
}

// BatchFailure ítem fallido de una operación por lotes.
type BatchFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult resultado por ítem de una operación por lotes, sin rollback.
type BatchResult struct {
	Succeeded []int64        `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// OK indica que no hubo fallas.
func (r BatchResult) OK() bool {
	return len(r.Failed) == 0
}

// Blob archivo descargado (plantillas CSV).
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}
