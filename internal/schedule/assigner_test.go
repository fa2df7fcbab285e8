package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"callplan/internal/campaign"
	"callplan/internal/config"
	"callplan/internal/schedule"
	"callplan/internal/scoring"
)

func flujo(n int) []schedule.ScoredContact {
	var contactos []schedule.ScoredContact
	for i := 1; i <= n; i++ {
		contactos = append(contactos, schedule.ScoredContact{
			Contact: campaign.Contact{ID: int64(i)},
			Score:   scoring.EnhancedScore{NormalizedTotal: 50},
		})
	}
	return contactos
}

func TestBloquesDelDiaPlantilla(t *testing.T) {
	bloques := schedule.BloquesDelDia(config.DefaultScheduler())

	assert.Len(t, bloques, 5)

	capacidades := make([]int, 0, len(bloques))
	for _, b := range bloques {
		capacidades = append(capacidades, b.Capacity)
	}
	assert.Equal(t, []int{5, 15, 10, 0, 10}, capacidades)

	// El almuerzo es un bloque marcador sin capacidad
	assert.Equal(t, "Almuerzo", bloques[3].Etiqueta)
	assert.Equal(t, 0, bloques[3].Capacity)
}

func TestBloquesDelDiaCapacidadAcotadaPorRitmo(t *testing.T) {
	cfg := config.DefaultScheduler()
	// Ciclo de 10 minutos: (60-10)/10 = 5 llamadas/hora
	cfg.AvgCallCycleMinutes = 10

	bloques := schedule.BloquesDelDia(cfg)

	// El bloque de repaso dura una hora: su capacidad nominal de 10 se
	// acota a 5
	assert.Equal(t, 5, bloques[2].Capacity)
}

func TestAssignToBlocksRespetaTopes(t *testing.T) {
	tests := map[string]struct {
		contactos int
		expected  []int
	}{
		"FlujoExcedente": {50, []int{5, 15, 10, 0, 5}},
		"FlujoExacto":    {35, []int{5, 15, 10, 0, 5}},
		"FlujoCorto":     {12, []int{5, 7, 0, 0, 0}},
		"FlujoMinimo":    {3, []int{3, 0, 0, 0, 0}},
		"SinContactos":   {0, []int{0, 0, 0, 0, 0}},
	}

	cfg := config.DefaultScheduler()

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			bloques := schedule.AssignToBlocks(schedule.BloquesDelDia(cfg), flujo(tc.contactos), cfg)

			asignados := make([]int, 0, len(bloques))
			total := 0
			for _, b := range bloques {
				asignados = append(asignados, len(b.ContactIDs))
				total += len(b.ContactIDs)
			}

			assert.Equal(t, tc.expected, asignados)
			assert.LessOrEqual(t, total, cfg.MaxCallsPerDay)
		})
	}
}

func TestAssignToBlocksPreservaElOrdenDelFlujo(t *testing.T) {
	cfg := config.DefaultScheduler()
	bloques := schedule.AssignToBlocks(schedule.BloquesDelDia(cfg), flujo(10), cfg)

	var ids []int64
	for _, b := range bloques {
		ids = append(ids, b.ContactIDs...)
	}

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids)
}

func TestAssignToBlocksBloqueSinCapacidadQuedaVacio(t *testing.T) {
	cfg := config.DefaultScheduler()
	bloques := schedule.AssignToBlocks(schedule.BloquesDelDia(cfg), flujo(50), cfg)

	for _, b := range bloques {
		if b.Capacity == 0 {
			assert.Empty(t, b.ContactIDs)
		}
	}
}
