package inventory

import (
	"strings"

	"github.com/devalicin1/Inventory-sub005/internal/domain/entity"
	"golang.org/x/text/unicode/norm"
)

// NormalizeID limpia espacios y normaliza a NFC para que el mismo id escrito por
// distintos productores produzca siempre la misma clave.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}

// NormalizeSourceRef normaliza el documento de la referencia; la misma línea escrita con
// espacios o en otra forma Unicode tiene que caer en la misma Key.
func NormalizeSourceRef(ref entity.SourceRef) entity.SourceRef {
	ref.DocumentID = NormalizeID(ref.DocumentID)
	return ref
}

// NormalizeEvent devuelve ev con todos sus ids normalizados. Es la forma que se guarda en el log.
func NormalizeEvent(ev entity.MovementEvent) entity.MovementEvent {
	ev.TenantID = NormalizeID(ev.TenantID)
	ev.ProductID = NormalizeID(ev.ProductID)
	ev.FromLocation = NormalizeID(ev.FromLocation)
	ev.ToLocation = NormalizeID(ev.ToLocation)
	ev.BatchID = NormalizeID(ev.BatchID)
	ev.SerialID = NormalizeID(ev.SerialID)
	if ev.SourceRef != nil {
		ref := NormalizeSourceRef(*ev.SourceRef)
		ev.SourceRef = &ref
	}
	return ev
}

// ResolveKey mapea un evento a su clave de stock. Función pura y total:
// producto + toLocation si existe, si no fromLocation, si no la ubicación por defecto;
// lote y serial se agregan si vienen informados.
// viaDestination es true cuando la ubicación se tomó de toLocation.
func ResolveKey(ev entity.MovementEvent) (key entity.StockKey, viaDestination bool) {
	location := NormalizeID(ev.ToLocation)
	viaDestination = location != ""
	if !viaDestination {
		location = NormalizeID(ev.FromLocation)
	}
	if location == "" {
		location = entity.DefaultLocation
	}
	return keyAt(ev, location), viaDestination
}

// ResolveApplications devuelve las actualizaciones por clave que produce el evento.
// Un TRANSFER con origen y destino se reparte en dos claves independientes
// (-q en el origen, +q en el destino); cualquier otro evento afecta una sola clave.
func ResolveApplications(ev entity.MovementEvent) []Application {
	sem, ok := SemanticsOf(ev.Type)
	if !ok {
		return nil
	}
	from := NormalizeID(ev.FromLocation)
	to := NormalizeID(ev.ToLocation)
	if ev.Type == entity.MovementTypeTransfer && from != "" && to != "" {
		return []Application{
			{Key: keyAt(ev, from), Delta: sem.Delta(ev.Quantity, false)},
			{Key: keyAt(ev, to), Delta: sem.Delta(ev.Quantity, true)},
		}
	}
	key, viaDestination := ResolveKey(ev)
	return []Application{{
		Key:         key,
		Delta:       sem.Delta(ev.Quantity, viaDestination),
		UpdatesCost: sem.UpdatesCost,
	}}
}

func keyAt(ev entity.MovementEvent, location string) entity.StockKey {
	return entity.StockKey{
		ProductID:  NormalizeID(ev.ProductID),
		LocationID: location,
		BatchID:    NormalizeID(ev.BatchID),
		SerialID:   NormalizeID(ev.SerialID),
	}
}
