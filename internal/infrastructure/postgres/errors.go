package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Índice único (tenant_id, source_ref_key) del log.
const sourceRefConstraint = "ux_movement_events_source_ref"

func pgCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == codeUniqueViolation
}

// isSourceRefViolation: dos posteos de la misma línea de documento.
func isSourceRefViolation(err error) bool {
	code, constraint := pgCode(err)
	return code == codeUniqueViolation && constraint == sourceRefConstraint
}

// isRetryableTxError: conflictos que se resuelven repitiendo la transacción.
func isRetryableTxError(err error) bool {
	code, _ := pgCode(err)
	return code == codeSerializationFailure || code == codeDeadlockDetected
}
