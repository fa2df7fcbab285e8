package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callplan/internal/config"
	"callplan/internal/metrics"
)

// Las 11:30 del día de los cupos de prueba
var mediaManana = time.Date(2026, 3, 4, 11, 30, 0, 0, time.UTC)

func cupo(hora, calls, connected, interested int) metrics.HourlyMetric {
	return metrics.HourlyMetric{
		Fecha:      "2026-03-04",
		Hora:       hora,
		Calls:      calls,
		Connected:  connected,
		Interested: interested,
	}
}

func buscarCondicion(condiciones []metrics.FailureCondition, tipo string) *metrics.FailureCondition {
	for i := range condiciones {
		if condiciones[i].Type == tipo {
			return &condiciones[i]
		}
	}
	return nil
}

func TestCheckFailureConditionsVentanaInsuficiente(t *testing.T) {
	cfg := config.DefaultScheduler()

	// Un solo cupo en la ventana: señal insuficiente, aunque los números
	// sean pésimos
	historial := []metrics.HourlyMetric{cupo(11, 20, 0, 0)}
	condiciones := metrics.CheckFailureConditions(historial, cfg, mediaManana)

	assert.NotNil(t, condiciones)
	assert.Empty(t, condiciones)
}

func TestCheckFailureConditionsIgnoraOtrasFechas(t *testing.T) {
	cfg := config.DefaultScheduler()

	historial := []metrics.HourlyMetric{
		{Fecha: "2026-03-03", Hora: 10, Calls: 20, Connected: 0},
		{Fecha: "2026-03-03", Hora: 11, Calls: 20, Connected: 0},
	}
	condiciones := metrics.CheckFailureConditions(historial, cfg, mediaManana)

	assert.Empty(t, condiciones)
}

func TestCheckFailureConditionsConexionCritica(t *testing.T) {
	cfg := config.DefaultScheduler()

	// 10% de conexión con umbral 20%: condición crítica
	historial := []metrics.HourlyMetric{
		cupo(10, 5, 1, 0),
		cupo(11, 5, 0, 0),
	}
	condiciones := metrics.CheckFailureConditions(historial, cfg, mediaManana)

	cond := buscarCondicion(condiciones, metrics.FailureLowConnectRate)
	require.NotNil(t, cond)
	assert.Equal(t, metrics.SeverityCritical, cond.Severity)
	assert.NotEmpty(t, cond.Message)
	assert.NotEmpty(t, cond.Suggestion)
}

func TestCheckFailureConditionsConexionAdvertencia(t *testing.T) {
	cfg := config.DefaultScheduler()

	// 15% de conexión: bajo el umbral pero sobre el piso crítico
	historial := []metrics.HourlyMetric{
		cupo(10, 10, 2, 0),
		cupo(11, 10, 1, 0),
	}
	condiciones := metrics.CheckFailureConditions(historial, cfg, mediaManana)

	cond := buscarCondicion(condiciones, metrics.FailureLowConnectRate)
	require.NotNil(t, cond)
	assert.Equal(t, metrics.SeverityWarning, cond.Severity)
}

func TestCheckFailureConditionsInteresBajo(t *testing.T) {
	cfg := config.DefaultScheduler()

	// Conexión sana (50%) pero solo 1 interesado entre 10 conectados
	historial := []metrics.HourlyMetric{
		cupo(10, 10, 5, 1),
		cupo(11, 10, 5, 0),
	}
	condiciones := metrics.CheckFailureConditions(historial, cfg, mediaManana)

	cond := buscarCondicion(condiciones, metrics.FailureLowInterestRate)
	require.NotNil(t, cond)
	assert.Equal(t, metrics.SeverityWarning, cond.Severity)

	assert.Nil(t, buscarCondicion(condiciones, metrics.FailureLowConnectRate))
}

func TestCheckFailureConditionsVelocidadBaja(t *testing.T) {
	cfg := config.DefaultScheduler()

	tests := map[string]struct {
		historial []metrics.HourlyMetric
		severity  string
	}{
		"Advertencia": {
			// 3 llamadas/hora contra umbral de 4
			historial: []metrics.HourlyMetric{cupo(10, 3, 1, 1), cupo(11, 3, 1, 1)},
			severity:  metrics.SeverityWarning,
		},
		"Critica": {
			// 1.5 llamadas/hora: bajo la mitad del umbral
			historial: []metrics.HourlyMetric{cupo(10, 2, 1, 1), cupo(11, 1, 1, 1)},
			severity:  metrics.SeverityCritical,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			condiciones := metrics.CheckFailureConditions(tc.historial, cfg, mediaManana)

			cond := buscarCondicion(condiciones, metrics.FailureLowVelocity)
			require.NotNil(t, cond)
			assert.Equal(t, tc.severity, cond.Severity)
		})
	}
}

func TestCheckFailureConditionsVentanaMovil(t *testing.T) {
	cfg := config.DefaultScheduler()

	// El cupo de las 8 queda fuera de la ventana de 3 horas que termina a
	// las 11; sin él solo queda un cupo y no se reporta nada
	historial := []metrics.HourlyMetric{
		cupo(8, 20, 0, 0),
		cupo(11, 20, 0, 0),
	}
	condiciones := metrics.CheckFailureConditions(historial, cfg, mediaManana)

	assert.Empty(t, condiciones)
}

func TestCheckFailureConditionsEsIdempotente(t *testing.T) {
	cfg := config.DefaultScheduler()
	historial := []metrics.HourlyMetric{
		cupo(10, 5, 1, 0),
		cupo(11, 5, 0, 0),
	}

	primera := metrics.CheckFailureConditions(historial, cfg, mediaManana)
	for i := 0; i < 5; i++ {
		assert.Equal(t, primera, metrics.CheckFailureConditions(historial, cfg, mediaManana))
	}
}
