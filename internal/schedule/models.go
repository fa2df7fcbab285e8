// Package schedule arma el plan semanal de llamadas: agrupa contactos
// puntuados por zona, los empaqueta en bloques horarios con capacidad
// acotada y genera los cinco planes diarios de lunes a viernes.
// Todas las funciones devuelven estructuras nuevas; nunca mutan sus
// entradas.
package schedule

import (
	"time"

	"callplan/internal/campaign"
	"callplan/internal/scoring"
)

// ScoredContact contacto acompañado de su score mejorado del ciclo actual
type ScoredContact struct {
	Contact campaign.Contact      `json:"contact"`
	Score   scoring.EnhancedScore `json:"score"`
}

// TimeBlock intervalo horario de un día con capacidad fija.
// Horas como valores fraccionales (9.5 = 9:30).
// Invariante: CompletedIDs ⊆ ContactIDs y len(ContactIDs) ≤ Capacity.
type TimeBlock struct {
	Etiqueta     string  `json:"etiqueta"`
	StartHour    float64 `json:"start_hour"`
	EndHour      float64 `json:"end_hour"`
	Capacity     int     `json:"capacity"`
	ContactIDs   []int64 `json:"contact_ids"`
	CompletedIDs []int64 `json:"completed_ids"`
}

// DailyPlan plan de un día calendario
type DailyPlan struct {
	Fecha      time.Time    `json:"fecha"`
	DiaSemana  time.Weekday `json:"dia_semana"`
	Blocks     []TimeBlock  `json:"blocks"`
	Asignados  int          `json:"asignados"`
	Completed  int          `json:"completed"`
	Skipped    int          `json:"skipped"`
}

// WeeklySchedule agenda de una semana ISO: cinco planes de lunes a viernes
// más la reserva de callbacks retenida fuera de los bloques
type WeeklySchedule struct {
	ID              string      `json:"id"`
	WeekStart       time.Time   `json:"week_start"`
	GeneratedAt     time.Time   `json:"generated_at"`
	CallbackReserve int         `json:"callback_reserve"`
	ReserveIDs      []int64     `json:"reserve_ids"`
	Days            []DailyPlan `json:"days"`
}

// MondayOf devuelve el lunes de la semana ISO a la que pertenece t,
// truncado a medianoche en la zona horaria de t
func MondayOf(t time.Time) time.Time {
	dia := int(t.Weekday())
	var shift int
	if dia == 0 {
		shift = -6
	} else {
		shift = 1 - dia
	}
	return time.Date(t.Year(), t.Month(), t.Day()+shift, 0, 0, 0, 0, t.Location())
}

// MismaFecha compara solo la parte de fecha de dos instantes
func MismaFecha(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Clone devuelve una copia profunda de la agenda. Toda escritura del
// planner opera sobre un clon y publica el resultado completo: los
// lectores que retuvieron el puntero anterior leen una estructura
// congelada.
func (w *WeeklySchedule) Clone() *WeeklySchedule {
	nuevo := *w
	nuevo.ReserveIDs = append([]int64{}, w.ReserveIDs...)
	nuevo.Days = make([]DailyPlan, len(w.Days))
	for i := range w.Days {
		dia := w.Days[i]
		dia.Blocks = make([]TimeBlock, len(w.Days[i].Blocks))
		for b := range w.Days[i].Blocks {
			bloque := w.Days[i].Blocks[b]
			bloque.ContactIDs = append([]int64{}, bloque.ContactIDs...)
			bloque.CompletedIDs = append([]int64{}, bloque.CompletedIDs...)
			dia.Blocks[b] = bloque
		}
		nuevo.Days[i] = dia
	}
	return &nuevo
}

// DiaPlan busca el plan del día con la fecha dada; -1 si no pertenece
// a la semana
func (w *WeeklySchedule) DiaPlan(fecha time.Time) int {
	for i := range w.Days {
		if MismaFecha(w.Days[i].Fecha, fecha) {
			return i
		}
	}
	return -1
}
