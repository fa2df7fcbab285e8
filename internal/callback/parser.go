// Package callback resuelve frases libres de agendamiento ("next week",
// "after payday") en horarios concretos usando la tasa histórica de
// conexión por hora.
package callback

import (
	"math/rand"
	"strings"
	"time"

	"callplan/internal/metrics"
)

// Niveles de confianza de la resolución
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

const (
	// Hora por defecto cuando no hay historial suficiente
	defaultBestHour = 10

	// Mínimo de llamadas en un cupo horario para considerarlo al elegir
	// la mejor hora histórica
	minCallsForBestHour = 3

	// Tope de "más tarde hoy"
	latestSameDayHour = 16
)

// Request intención de agendamiento ya resuelta
type Request struct {
	RawInput     string    `json:"raw_input"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Label        string    `json:"label"`
	Confidence   string    `json:"confidence"`
}

// Resolver parsea frases de callback. La fuente de aleatoriedad se
// inyecta para que las pruebas puedan fijar la semilla.
type Resolver struct {
	rng *rand.Rand
}

// NewResolver crea un resolver con la semilla dada
func NewResolver(seed int64) *Resolver {
	return &Resolver{rng: rand.New(rand.NewSource(seed))}
}

// Parse resuelve la frase contra el conjunto ordenado de reglas; gana la
// primera que aplica. Sin coincidencia cae al siguiente día hábil a la
// mejor hora histórica, con confianza baja.
func (r *Resolver) Parse(rawInput string, historial []metrics.HourlyMetric, now time.Time) Request {
	input := strings.ToLower(strings.TrimSpace(rawInput))
	mejor := BestConnectHour(historial)

	req := Request{RawInput: rawInput}

	switch {
	case contieneAlguna(input, "next week", "próxima semana", "proxima semana"):
		// Mismo día de la semana, siete días después
		fecha := now.AddDate(0, 0, 7)
		req.ScheduledFor = enHora(fecha, mejor, r.rng.Intn(30))
		req.Label = "Next week"
		req.Confidence = ConfidenceHigh

	// "más tarde" es "later today", no la franja de la tarde
	case contieneAlguna(input, "afternoon", "tarde") && !contieneAlguna(input, "más tarde", "mas tarde"):
		fecha := now
		if now.Hour() >= 13 {
			fecha = now.AddDate(0, 0, 1)
		}
		req.ScheduledFor = enHora(fecha, 13, r.rng.Intn(60))
		req.Label = "Afternoon"
		req.Confidence = ConfidenceHigh

	// "mañana" es ambiguo (franja matinal vs día siguiente); se resuelve
	// como franja de la mañana
	case contieneAlguna(input, "morning", "mañana", "manana"):
		fecha := now
		if now.Hour() >= 10 {
			fecha = now.AddDate(0, 0, 1)
		}
		req.ScheduledFor = enHora(fecha, 9, r.rng.Intn(60))
		req.Label = "Morning"
		req.Confidence = ConfidenceHigh

	case contieneAlguna(input, "payday", "quincena", "día de pago", "dia de pago"):
		req.ScheduledFor = enHora(proximaQuincena(now), mejor, 0)
		req.Label = "Payday"
		req.Confidence = ConfidenceMedium

	case diaSemana(input) >= 0:
		objetivo := diaSemana(input)
		delta := (objetivo - int(now.Weekday()) + 7) % 7
		if delta == 0 {
			// El mismo día de la semana siempre resuelve a la próxima
			// ocurrencia, nunca a hoy
			delta = 7
		}
		req.ScheduledFor = enHora(now.AddDate(0, 0, delta), mejor, 0)
		req.Label = "Next " + time.Weekday(objetivo).String()
		req.Confidence = ConfidenceHigh

	case strings.Contains(input, "tomorrow"):
		req.ScheduledFor = enHora(now.AddDate(0, 0, 1), mejor, 0)
		req.Label = "Tomorrow"
		req.Confidence = ConfidenceHigh

	case contieneAlguna(input, "today", "later", "hoy", "más tarde", "mas tarde"):
		objetivo := now.Add(2 * time.Hour)
		tope := enHora(now, latestSameDayHour, 0)
		if objetivo.After(tope) {
			objetivo = tope
		}
		req.ScheduledFor = objetivo
		req.Label = "Later today"
		req.Confidence = ConfidenceMedium

	default:
		req.ScheduledFor = enHora(proximoDiaHabil(now), mejor, 0)
		req.Label = "Next business day"
		req.Confidence = ConfidenceLow
	}

	return req
}

// BestConnectHour agrega todo el historial por hora del día y devuelve
// la hora con mejor tasa de conexión entre los cupos con al menos
// minCallsForBestHour llamadas. Sin datos suficientes devuelve la hora
// por defecto.
func BestConnectHour(historial []metrics.HourlyMetric) int {
	calls := make(map[int]int)
	connected := make(map[int]int)
	for i := range historial {
		calls[historial[i].Hora] += historial[i].Calls
		connected[historial[i].Hora] += historial[i].Connected
	}

	mejor := defaultBestHour
	mejorRate := -1.0
	for hora := 0; hora < 24; hora++ {
		if calls[hora] < minCallsForBestHour {
			continue
		}
		rate := float64(connected[hora]) / float64(calls[hora])
		if rate > mejorRate {
			mejorRate = rate
			mejor = hora
		}
	}
	return mejor
}

func contieneAlguna(input string, frases ...string) bool {
	for _, f := range frases {
		if strings.Contains(input, f) {
			return true
		}
	}
	return false
}

// Nombres de día en orden fijo: si la frase menciona varios días gana
// siempre el mismo
var nombresDia = []struct {
	nombre string
	dia    int
}{
	{"sunday", 0}, {"domingo", 0},
	{"monday", 1}, {"lunes", 1},
	{"tuesday", 2}, {"martes", 2},
	{"wednesday", 3}, {"miércoles", 3}, {"miercoles", 3},
	{"thursday", 4}, {"jueves", 4},
	{"friday", 5}, {"viernes", 5},
	{"saturday", 6}, {"sábado", 6}, {"sabado", 6},
}

// diaSemana devuelve el primer weekday nombrado en la frase, o -1
func diaSemana(input string) int {
	for _, n := range nombresDia {
		if strings.Contains(input, n.nombre) {
			return n.dia
		}
	}
	return -1
}

// proximaQuincena devuelve el 1 o el 15 del mes, el que llegue primero
func proximaQuincena(now time.Time) time.Time {
	if now.Day() < 15 {
		return time.Date(now.Year(), now.Month(), 15, 0, 0, 0, 0, now.Location())
	}
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
}

// proximoDiaHabil devuelve el siguiente día lunes-viernes
func proximoDiaHabil(now time.Time) time.Time {
	fecha := now.AddDate(0, 0, 1)
	for fecha.Weekday() == time.Saturday || fecha.Weekday() == time.Sunday {
		fecha = fecha.AddDate(0, 0, 1)
	}
	return fecha
}

func enHora(fecha time.Time, hora, minuto int) time.Time {
	return time.Date(fecha.Year(), fecha.Month(), fecha.Day(), hora, minuto, 0, 0, fecha.Location())
}
