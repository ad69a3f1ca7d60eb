package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrSameBranch           = errors.New("origen y destino no pueden ser la misma sucursal")
	ErrAlreadyReceived      = errors.New("la transferencia ya fue recibida")
	ErrSessionCompleted     = errors.New("la sesión de inventario ya fue confirmada")
	ErrConfirmationRequired = errors.New("la operación requiere confirmación explícita")
	ErrInvalidTransition    = errors.New("transición de estado no permitida")
	ErrNetwork              = errors.New("falla de red")
	ErrServer               = errors.New("error del servidor")
)

// Kind clasifica un error para que el llamador decida sin comparar textos.
type Kind string

const (
	KindNetwork      Kind = "network"      // transporte: DNS, timeout, conexión rechazada
	KindServer       Kind = "server"       // respuesta no-2xx genérica
	KindValidation   Kind = "validation"   // validación de campos (cliente o servidor)
	KindBusiness     Kind = "business"     // regla de negocio rechazada (stock insuficiente, misma sucursal...)
	KindUnauthorized Kind = "unauthorized" // 401/403
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict" // 409 (p.ej. transferencia ya recibida)
)

// Error es el error estructurado que devuelve la capa de clientes y los workflows.
// Err apunta al sentinel correspondiente para que errors.Is siga funcionando.
type Error struct {
	Kind    Kind
	Code    string            // código del backend (INSUFFICIENT_STOCK, ALREADY_RECEIVED...) si lo hay
	Message string            // mensaje apto para mostrar al operador
	Status  int               // status HTTP; 0 si no hubo respuesta
	Fields  map[string]string // errores por campo (validación)
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(&b, "%s: %s", k, e.Fields[k])
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf devuelve el Kind del primer *Error de la cadena; KindServer si no hay ninguno.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindServer
}

// Validation construye un error de validación con mensajes por campo.
func Validation(fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "datos inválidos",
		Fields:  fields,
		Err:     ErrInvalidInput,
	}
}

// Business construye un rechazo de regla de negocio detectado en el cliente.
func Business(sentinel error, field string) *Error {
	e := &Error{Kind: KindBusiness, Message: sentinel.Error(), Err: sentinel}
	if field != "" {
		e.Fields = map[string]string{field: sentinel.Error()}
	}
	return e
}
