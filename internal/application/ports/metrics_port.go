package ports

import "time"

// Metrics define el puerto de salida para la instrumentación del motor de saldos.
// El adaptador Prometheus vive en infrastructure/metrics; NopMetrics sirve para tests.
type Metrics interface {
	EventApplied(movementType string, duration time.Duration)
	EventDuplicate(movementType string)
	ValidationRejected(field string)
	ConflictRetried()
	RetryExhausted()
	EventAppended(movementType string)
	EventPosted(kind string)
	PostingRace(kind string)
	DispatchFailed(mode string)
	LowStockAlerts(tenantID string, count int)
}

// NopMetrics descarta todas las mediciones.
type NopMetrics struct{}

var _ Metrics = NopMetrics{}

func (NopMetrics) EventApplied(string, time.Duration) {}
func (NopMetrics) EventDuplicate(string)              {}
func (NopMetrics) ValidationRejected(string)          {}
func (NopMetrics) ConflictRetried()                   {}
func (NopMetrics) RetryExhausted()                    {}
func (NopMetrics) EventAppended(string)               {}
func (NopMetrics) EventPosted(string)                 {}
func (NopMetrics) PostingRace(string)                 {}
func (NopMetrics) DispatchFailed(string)              {}
func (NopMetrics) LowStockAlerts(string, int)         {}
