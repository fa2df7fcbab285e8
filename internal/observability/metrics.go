// Package observability expone métricas Prometheus del motor de agenda.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry registro propio de la aplicación (no el global)
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// ContactosAgendados total de contactos asignados a bloques en la semana vigente
var ContactosAgendados = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "callplan",
	Name:      "contactos_agendados",
	Help:      "Contactos asignados a bloques en la agenda semanal vigente",
})

// ReservaCallbacks tamaño de la reserva retenida fuera de los bloques
var ReservaCallbacks = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "callplan",
	Name:      "reserva_callbacks",
	Help:      "Contactos retenidos como reserva de callbacks",
})

// PlanesGenerados total de agendas semanales generadas desde el arranque
var PlanesGenerados = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "callplan",
	Name:      "planes_generados_total",
	Help:      "Agendas semanales generadas",
})

// DiasRegenerados total de regeneraciones de un día individual
var DiasRegenerados = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "callplan",
	Name:      "dias_regenerados_total",
	Help:      "Planes diarios regenerados sin tocar el resto de la semana",
})

// CondicionesFalla condiciones de degradación activas por tipo y severidad
var CondicionesFalla = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "callplan",
	Name:      "condiciones_falla",
	Help:      "Condiciones de falla activas en el último ciclo de chequeo",
}, []string{"type", "severity"})

// CallbacksParseados frases de callback resueltas por nivel de confianza
var CallbacksParseados = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "callplan",
	Name:      "callbacks_parseados_total",
	Help:      "Frases de callback resueltas, por nivel de confianza",
}, []string{"confidence"})

// ResultadosRegistrados resultados de llamada ingresados al almacén horario
var ResultadosRegistrados = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "callplan",
	Name:      "resultados_registrados_total",
	Help:      "Resultados de llamada registrados en las métricas horarias",
})

// DuracionGeneracion tiempo de generación de la agenda semanal
var DuracionGeneracion = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "callplan",
	Name:      "generacion_segundos",
	Help:      "Tiempo de generación de la agenda semanal",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
})

// ResetCondicionesFalla limpia el gauge de condiciones antes de publicar
// el resultado de un nuevo ciclo de chequeo
func ResetCondicionesFalla() {
	CondicionesFalla.Reset()
}
