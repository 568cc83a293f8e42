package entity

import (
	"strconv"
	"strings"
)

// SourceKind identifica el tipo de documento que origina un movimiento.
type SourceKind string

const (
	SourceKindPurchaseOrder  SourceKind = "purchase_order"
	SourceKindProductionTask SourceKind = "production_task"
	SourceKindExternal       SourceKind = "external"
)

// Valid informa si el tipo de origen es conocido.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceKindPurchaseOrder, SourceKindProductionTask, SourceKindExternal:
		return true
	}
	return false
}

// SourceRef referencia la línea de documento que produjo un movimiento
// (ej. {purchaseOrderId, lineIndex} o {taskId}).
type SourceRef struct {
	Kind       SourceKind
	DocumentID string
	Line       int
}

// Key devuelve la forma canónica usada por el índice de referencias de origen.
// Dos referencias con la misma Key representan la misma línea de negocio.
func (r SourceRef) Key() string {
	return string(r.Kind) + ":" + escapeSegment(r.DocumentID) + ":" + strconv.Itoa(r.Line)
}

var segmentEscaper = strings.NewReplacer("%", "%25", ":", "%3A", "|", "%7C")

// escapeSegment evita colisiones cuando un id contiene los separadores.
func escapeSegment(s string) string {
	return segmentEscaper.Replace(s)
}
