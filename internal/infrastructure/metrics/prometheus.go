package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devalicin1/Inventory-sub005/internal/application/ports"
)

const namespace = "stock_ledger"

// Prometheus implementa ports.Metrics con un registro propio (no el global),
// así cada instancia (y cada test) registra sus colectores sin colisiones.
type Prometheus struct {
	registry *prometheus.Registry

	eventsApplied     *prometheus.CounterVec
	eventsDuplicate   *prometheus.CounterVec
	applyDuration     *prometheus.HistogramVec
	validationRejects *prometheus.CounterVec
	conflictRetries   prometheus.Counter
	retryExhausted    prometheus.Counter
	eventsAppended    *prometheus.CounterVec
	eventsPosted      *prometheus.CounterVec
	postingRaces      *prometheus.CounterVec
	dispatchFailures  *prometheus.CounterVec
	lowStockAlerts    *prometheus.GaugeVec
}

var _ ports.Metrics = (*Prometheus)(nil)

// NewPrometheus crea y registra todas las métricas del motor.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		eventsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregator", Name: "events_applied_total",
			Help: "Aplicaciones de eventos sobre una clave de stock, por tipo de movimiento.",
		}, []string{"movement_type"}),
		eventsDuplicate: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregator", Name: "events_duplicate_total",
			Help: "Entregas repetidas reconocidas como ya aplicadas.",
		}, []string{"movement_type"}),
		applyDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "aggregator", Name: "apply_duration_seconds",
			Help:    "Duración de la transacción por clave, incluidos reintentos.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"movement_type"}),
		validationRejects: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregator", Name: "validation_rejected_total",
			Help: "Eventos rechazados por validación, por campo.",
		}, []string{"field"}),
		conflictRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregator", Name: "conflict_retries_total",
			Help: "Reintentos por conflicto transitorio en una fila de stock.",
		}),
		retryExhausted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "aggregator", Name: "retry_exhausted_total",
			Help: "Aplicaciones que agotaron los reintentos.",
		}),
		eventsAppended: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "log", Name: "events_appended_total",
			Help: "Eventos registrados en el log.",
		}, []string{"movement_type"}),
		eventsPosted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "posting", Name: "lines_posted_total",
			Help: "Líneas de documento posteadas, por tipo de origen.",
		}, []string{"source_kind"}),
		postingRaces: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "posting", Name: "races_total",
			Help: "Posteos concurrentes de la misma línea resueltos por el almacén.",
		}, []string{"source_kind"}),
		dispatchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "dispatch", Name: "failures_total",
			Help: "Eventos registrados cuyo despacho falló (pendientes de replay).",
		}, []string{"mode"}),
		lowStockAlerts: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "scanner", Name: "low_stock_alerts",
			Help: "Alertas de stock bajo vigentes por tenant.",
		}, []string{"tenant_id"}),
	}
}

// Handler expone el registro en formato Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry devuelve el registro (tests).
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) EventApplied(movementType string, d time.Duration) {
	p.eventsApplied.WithLabelValues(movementType).Inc()
	p.applyDuration.WithLabelValues(movementType).Observe(d.Seconds())
}

func (p *Prometheus) EventDuplicate(movementType string) {
	p.eventsDuplicate.WithLabelValues(movementType).Inc()
}

func (p *Prometheus) ValidationRejected(field string) {
	p.validationRejects.WithLabelValues(field).Inc()
}

func (p *Prometheus) ConflictRetried() { p.conflictRetries.Inc() }
func (p *Prometheus) RetryExhausted()  { p.retryExhausted.Inc() }

func (p *Prometheus) EventAppended(movementType string) {
	p.eventsAppended.WithLabelValues(movementType).Inc()
}

func (p *Prometheus) EventPosted(kind string) { p.eventsPosted.WithLabelValues(kind).Inc() }
func (p *Prometheus) PostingRace(kind string) { p.postingRaces.WithLabelValues(kind).Inc() }
func (p *Prometheus) DispatchFailed(mode string) {
	p.dispatchFailures.WithLabelValues(mode).Inc()
}

func (p *Prometheus) LowStockAlerts(tenantID string, count int) {
	p.lowStockAlerts.WithLabelValues(tenantID).Set(float64(count))
}
