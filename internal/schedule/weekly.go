package schedule

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"callplan/internal/campaign"
	"callplan/internal/config"
	"callplan/internal/scoring"
)

// DiasHabiles cantidad de planes diarios por semana (lunes a viernes)
const DiasHabiles = 5

// GenerateWeeklyPlan genera la agenda de la semana ISO a la que pertenece
// now: puntúa todos los contactos llamables, retiene la reserva de
// callbacks del tope del ranking y reparte el resto en cinco días.
// Devuelve nil si no hay contactos llamables (el llamador suprime la
// semana en blanco).
func GenerateWeeklyPlan(llamables []campaign.Contact, cfg config.SchedulerConfig, ctx scoring.Context, now time.Time) *WeeklySchedule {
	if len(llamables) == 0 {
		return nil
	}

	puntuados := puntuarYOrdenar(llamables, ctx, now)

	reserva := int(math.Ceil(float64(len(puntuados)) * cfg.CallbackReservePercent / 100))
	if reserva > len(puntuados) {
		reserva = len(puntuados)
	}

	reserveIDs := make([]int64, 0, reserva)
	for _, sc := range puntuados[:reserva] {
		reserveIDs = append(reserveIDs, sc.Contact.ID)
	}
	pool := puntuados[reserva:]

	weekStart := MondayOf(now)
	days := make([]DailyPlan, 0, DiasHabiles)
	for d := 0; d < DiasHabiles; d++ {
		fecha := weekStart.AddDate(0, 0, d)

		take := cfg.MaxCallsPerDay
		if take > len(pool) {
			take = len(pool)
		}
		delDia := pool[:take]
		pool = pool[take:]

		days = append(days, armarDia(fecha, delDia, cfg))
	}

	return &WeeklySchedule{
		ID:              uuid.NewString(),
		WeekStart:       weekStart,
		GeneratedAt:     now,
		CallbackReserve: reserva,
		ReserveIDs:      reserveIDs,
		Days:            days,
	}
}

// RegenerateDayPlan rehace el plan de una sola fecha con el pool dado,
// sin tocar los días hermanos. Devuelve una agenda nueva con el día
// reemplazado.
func RegenerateDayPlan(sched *WeeklySchedule, fecha time.Time, pool []campaign.Contact, cfg config.SchedulerConfig, ctx scoring.Context, now time.Time) (*WeeklySchedule, error) {
	idx := sched.DiaPlan(fecha)
	if idx < 0 {
		return nil, fmt.Errorf("la fecha %s no pertenece a la semana que inicia %s",
			fecha.Format("2006-01-02"), sched.WeekStart.Format("2006-01-02"))
	}

	puntuados := puntuarYOrdenar(pool, ctx, now)
	take := cfg.MaxCallsPerDay
	if take > len(puntuados) {
		take = len(puntuados)
	}

	nuevo := *sched
	nuevo.Days = make([]DailyPlan, len(sched.Days))
	copy(nuevo.Days, sched.Days)
	nuevo.Days[idx] = armarDia(sched.Days[idx].Fecha, puntuados[:take], cfg)

	return &nuevo, nil
}

// armarDia ejecuta la cadena loteo por zona → asignación a bloques para
// los contactos de un día
func armarDia(fecha time.Time, delDia []ScoredContact, cfg config.SchedulerConfig) DailyPlan {
	loteados := BatchByZone(delDia)
	bloques := AssignToBlocks(BloquesDelDia(cfg), loteados, cfg)

	asignados := 0
	for i := range bloques {
		asignados += len(bloques[i].ContactIDs)
	}

	return DailyPlan{
		Fecha:     fecha,
		DiaSemana: fecha.Weekday(),
		Blocks:    bloques,
		Asignados: asignados,
	}
}

// puntuarYOrdenar aplica el scoring mejorado y ordena descendente por
// score normalizado, con desempate por ID para resultados deterministas
func puntuarYOrdenar(contactos []campaign.Contact, ctx scoring.Context, now time.Time) []ScoredContact {
	puntuados := make([]ScoredContact, 0, len(contactos))
	for i := range contactos {
		puntuados = append(puntuados, ScoredContact{
			Contact: contactos[i],
			Score:   scoring.CalcularEnhanced(&contactos[i], ctx, now),
		})
	}

	sort.SliceStable(puntuados, func(i, j int) bool {
		if puntuados[i].Score.NormalizedTotal != puntuados[j].Score.NormalizedTotal {
			return puntuados[i].Score.NormalizedTotal > puntuados[j].Score.NormalizedTotal
		}
		return puntuados[i].Contact.ID < puntuados[j].Contact.ID
	})

	return puntuados
}
