package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callplan/internal/campaign"
	"callplan/internal/config"
	"callplan/internal/schedule"
	"callplan/internal/scoring"
)

// Miércoles 4 de marzo de 2026
var unMiercoles = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func contactos(n int) []campaign.Contact {
	zonas := campaign.Zonas()
	out := make([]campaign.Contact, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, campaign.Contact{
			ID:     int64(i),
			Zona:   zonas[i%len(zonas)],
			Estado: campaign.EstadoPending,
		})
	}
	return out
}

func TestMondayOf(t *testing.T) {
	tests := map[string]struct {
		dia      time.Time
		expected string
	}{
		"Lunes":     {time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC), "2026-03-02"},
		"Miercoles": {unMiercoles, "2026-03-02"},
		"Sabado":    {time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC), "2026-03-02"},
		"Domingo":   {time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC), "2026-03-02"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			lunes := schedule.MondayOf(tc.dia)
			assert.Equal(t, tc.expected, lunes.Format("2006-01-02"))
			assert.Equal(t, time.Monday, lunes.Weekday())
		})
	}
}

func TestGenerateWeeklyPlan(t *testing.T) {
	cfg := config.DefaultScheduler()
	sched := schedule.GenerateWeeklyPlan(contactos(200), cfg, scoring.Context{}, unMiercoles)

	require.NotNil(t, sched)
	assert.NotEmpty(t, sched.ID)
	assert.Equal(t, "2026-03-02", sched.WeekStart.Format("2006-01-02"))

	// Cinco días hábiles, de lunes a viernes, en orden
	require.Len(t, sched.Days, 5)
	for d, dia := range sched.Days {
		assert.Equal(t, sched.WeekStart.AddDate(0, 0, d).Format("2006-01-02"), dia.Fecha.Format("2006-01-02"))
		assert.Equal(t, time.Weekday(d+1), dia.DiaSemana)
	}

	// Reserva del 10% redondeada hacia arriba
	assert.Equal(t, 20, sched.CallbackReserve)
	assert.Len(t, sched.ReserveIDs, 20)

	// Cada día se llena hasta el tope diario
	for _, dia := range sched.Days {
		assert.Equal(t, cfg.MaxCallsPerDay, dia.Asignados)
	}
}

func TestGenerateWeeklyPlanReservaNoSeAgenda(t *testing.T) {
	sched := schedule.GenerateWeeklyPlan(contactos(100), config.DefaultScheduler(), scoring.Context{}, unMiercoles)
	require.NotNil(t, sched)

	reservados := make(map[int64]bool)
	for _, id := range sched.ReserveIDs {
		reservados[id] = true
	}

	for _, dia := range sched.Days {
		for _, b := range dia.Blocks {
			for _, id := range b.ContactIDs {
				assert.False(t, reservados[id], "contacto reservado %d apareció agendado", id)
			}
		}
	}
}

func TestGenerateWeeklyPlanPoolChico(t *testing.T) {
	// 10 contactos: reserva 1, los 9 restantes caben todos el lunes
	sched := schedule.GenerateWeeklyPlan(contactos(10), config.DefaultScheduler(), scoring.Context{}, unMiercoles)
	require.NotNil(t, sched)

	assert.Equal(t, 1, sched.CallbackReserve)
	assert.Equal(t, 9, sched.Days[0].Asignados)
	for _, dia := range sched.Days[1:] {
		assert.Equal(t, 0, dia.Asignados)
	}
}

func TestGenerateWeeklyPlanSinContactos(t *testing.T) {
	assert.Nil(t, schedule.GenerateWeeklyPlan(nil, config.DefaultScheduler(), scoring.Context{}, unMiercoles))
}

func TestRegenerateDayPlan(t *testing.T) {
	cfg := config.DefaultScheduler()
	original := schedule.GenerateWeeklyPlan(contactos(200), cfg, scoring.Context{}, unMiercoles)
	require.NotNil(t, original)

	// Pool nuevo y acotado para el miércoles
	pool := []campaign.Contact{
		{ID: 901, Zona: campaign.ZonaNorte, Estado: campaign.EstadoPending},
		{ID: 902, Zona: campaign.ZonaNorte, Estado: campaign.EstadoPending},
		{ID: 903, Estado: campaign.EstadoPending},
	}

	miercoles := original.WeekStart.AddDate(0, 0, 2)
	nuevo, err := schedule.RegenerateDayPlan(original, miercoles, pool, cfg, scoring.Context{}, unMiercoles)
	require.NoError(t, err)

	// El día regenerado solo contiene el pool nuevo
	assert.Equal(t, 3, nuevo.Days[2].Asignados)

	// Los días hermanos no se tocan
	for _, d := range []int{0, 1, 3, 4} {
		assert.Equal(t, original.Days[d].Blocks, nuevo.Days[d].Blocks)
	}

	// La agenda original queda intacta
	assert.Equal(t, cfg.MaxCallsPerDay, original.Days[2].Asignados)
}

func TestRegenerateDayPlanFechaFueraDeSemana(t *testing.T) {
	sched := schedule.GenerateWeeklyPlan(contactos(50), config.DefaultScheduler(), scoring.Context{}, unMiercoles)
	require.NotNil(t, sched)

	otraSemana := sched.WeekStart.AddDate(0, 0, 14)
	_, err := schedule.RegenerateDayPlan(sched, otraSemana, nil, config.DefaultScheduler(), scoring.Context{}, unMiercoles)
	assert.Error(t, err)
}
