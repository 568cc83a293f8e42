package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// ErrTransientConflict: otro escritor modificó la misma clave entre la lectura y la escritura.
	// Se reintenta automáticamente; nunca debe llegar al productor salvo agotados los reintentos.
	ErrTransientConflict = errors.New("conflicto transitorio en la fila de stock")

	// ErrRetryExhausted envuelve un ErrTransientConflict que sobrevivió todos los reintentos.
	// Es reintentable por el operador o por el bus de eventos.
	ErrRetryExhausted = errors.New("reintentos agotados, operación reintentable")

	// ErrDuplicateSourceRef: el almacén ya tiene un evento con la misma referencia de origen.
	ErrDuplicateSourceRef = errors.New("referencia de origen ya registrada")

	// ErrDuplicateEvent: el id del evento ya existe en el log.
	ErrDuplicateEvent = errors.New("evento ya registrado")
)

// ValidationError es el rechazo estructurado (campo + motivo) de un evento mal formado.
// Es permanente: reintentarlo nunca tendrá éxito.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye el error de validación para un campo.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// IsRetryable informa si el error puede resolverse reintentando la misma operación.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientConflict) || errors.Is(err, ErrRetryExhausted)
}
