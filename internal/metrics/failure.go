package metrics

import (
	"fmt"
	"time"

	"callplan/internal/config"
)

// Tipos de condición de falla
const (
	FailureLowConnectRate  = "low_connect_rate"
	FailureLowInterestRate = "low_interest_rate"
	FailureLowVelocity     = "low_velocity"
)

// Severidades
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Tamaños mínimos de muestra por chequeo: evitan falsos positivos sobre
// ventanas con pocos datos
const (
	minCallsForConnectCheck     = 8
	minConnectsForInterestCheck = 5

	// Bajo este porcentaje de conexión la condición pasa a crítica
	criticalConnectRateFloor = 10.0
)

// FailureCondition señal transitoria de degradación; se recalcula en cada
// ciclo de chequeo y nunca se acumula
type FailureCondition struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// CheckFailureConditions inspecciona la ventana móvil de métricas
// horarias del día en curso contra los umbrales configurados. Chequeo
// sin estado e idempotente: el resultado es el estado actual, no una
// bitácora. Con menos de dos cupos en la ventana devuelve vacío
// (señal insuficiente).
func CheckFailureConditions(historial []HourlyMetric, cfg config.SchedulerConfig, now time.Time) []FailureCondition {
	ventana := ventanaActual(historial, cfg.FailureWindowHours, now)

	condiciones := []FailureCondition{}
	if len(ventana) < 2 {
		return condiciones
	}

	var calls, connected, interested int
	for i := range ventana {
		calls += ventana[i].Calls
		connected += ventana[i].Connected
		interested += ventana[i].Interested
	}

	// Tasa de conexión
	if calls >= minCallsForConnectCheck {
		rate := float64(connected) / float64(calls) * 100
		if rate < cfg.ConnectRateThreshold {
			severity := SeverityWarning
			if rate <= criticalConnectRateFloor {
				severity = SeverityCritical
			}
			condiciones = append(condiciones, FailureCondition{
				Type:     FailureLowConnectRate,
				Severity: severity,
				Message: fmt.Sprintf("Tasa de conexión %.1f%% por debajo del umbral %.1f%% en las últimas %d horas",
					rate, cfg.ConnectRateThreshold, cfg.FailureWindowHours),
				Suggestion: "Revisar franja horaria y calidad de la lista; considerar regenerar el plan del día",
			})
		}
	}

	// Tasa de interés sobre conectados
	if connected >= minConnectsForInterestCheck {
		rate := float64(interested) / float64(connected) * 100
		if rate < cfg.InterestRateThreshold {
			condiciones = append(condiciones, FailureCondition{
				Type:     FailureLowInterestRate,
				Severity: SeverityWarning,
				Message: fmt.Sprintf("Tasa de interés %.1f%% por debajo del umbral %.1f%%",
					rate, cfg.InterestRateThreshold),
				Suggestion: "Ajustar el guion de apertura o priorizar contactos con contrato vencido",
			})
		}
	}

	// Velocidad de marcado
	horasTrabajadas := len(ventana)
	if horasTrabajadas >= 1 {
		velocidad := float64(calls) / float64(horasTrabajadas)
		if velocidad < cfg.LowVelocityThreshold {
			severity := SeverityWarning
			if velocidad < cfg.LowVelocityThreshold/2 {
				severity = SeverityCritical
			}
			condiciones = append(condiciones, FailureCondition{
				Type:     FailureLowVelocity,
				Severity: severity,
				Message: fmt.Sprintf("Velocidad de %.1f llamadas/hora por debajo del umbral %.1f",
					velocidad, cfg.LowVelocityThreshold),
				Suggestion: "Verificar disponibilidad del agente y reducir tiempo entre llamadas",
			})
		}
	}

	return condiciones
}

// ventanaActual filtra los cupos del día calendario de now cuya hora cae
// dentro de la ventana que termina en la hora actual
func ventanaActual(historial []HourlyMetric, windowHours int, now time.Time) []HourlyMetric {
	fecha := now.Format("2006-01-02")
	desde := now.Hour() - windowHours

	var ventana []HourlyMetric
	for i := range historial {
		m := historial[i]
		if m.Fecha != fecha {
			continue
		}
		if m.Hora > desde && m.Hora <= now.Hour() {
			ventana = append(ventana, m)
		}
	}
	return ventana
}
