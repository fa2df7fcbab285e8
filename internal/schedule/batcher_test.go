package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"callplan/internal/campaign"
	"callplan/internal/schedule"
	"callplan/internal/scoring"
)

func puntuado(id int64, zona string, score int) schedule.ScoredContact {
	return schedule.ScoredContact{
		Contact: campaign.Contact{ID: id, Zona: zona},
		Score:   scoring.EnhancedScore{NormalizedTotal: score},
	}
}

func idsDe(contactos []schedule.ScoredContact) []int64 {
	ids := make([]int64, 0, len(contactos))
	for _, sc := range contactos {
		ids = append(ids, sc.Contact.ID)
	}
	return ids
}

func TestBatchByZonePreservaElConjunto(t *testing.T) {
	var entrada []schedule.ScoredContact
	for i := int64(1); i <= 60; i++ {
		entrada = append(entrada, puntuado(i, campaign.ZonaHomeBase, 50))
	}
	for i := int64(61); i <= 100; i++ {
		entrada = append(entrada, puntuado(i, "", 90))
	}

	resultado := schedule.BatchByZone(entrada)

	assert.Len(t, resultado, 100)

	vistos := make(map[int64]bool)
	for _, sc := range resultado {
		assert.False(t, vistos[sc.Contact.ID], "contacto %d duplicado", sc.Contact.ID)
		vistos[sc.Contact.ID] = true
	}
	assert.Len(t, vistos, 100)
}

func TestBatchByZoneSinZonaVanAlFinal(t *testing.T) {
	entrada := []schedule.ScoredContact{
		puntuado(1, "", 99),
		puntuado(2, campaign.ZonaNorte, 10),
		puntuado(3, "zona desconocida", 95),
		puntuado(4, campaign.ZonaNorte, 10),
	}

	resultado := schedule.BatchByZone(entrada)

	// Los sin zona pierden prioridad de agrupamiento aunque su score sea
	// alto, pero nunca se descartan
	assert.Equal(t, []int64{2, 4, 1, 3}, idsDe(resultado))
}

func TestBatchByZoneOrdenaLotesPorPromedio(t *testing.T) {
	entrada := []schedule.ScoredContact{
		puntuado(1, campaign.ZonaSur, 50),
		puntuado(2, campaign.ZonaSur, 50),
		puntuado(3, campaign.ZonaNorte, 90),
		puntuado(4, campaign.ZonaNorte, 90),
	}

	resultado := schedule.BatchByZone(entrada)

	// El lote del norte tiene mejor promedio y sale primero aunque el sur
	// apareció antes en la entrada
	assert.Equal(t, []int64{3, 4, 1, 2}, idsDe(resultado))
}

func TestBatchByZoneFusionaLoteFinalChico(t *testing.T) {
	// 12 contactos de una zona: lotes de 8 y 4; el de 4 es menor al mínimo
	// y se fusiona con el anterior
	var entrada []schedule.ScoredContact
	for i := int64(1); i <= 12; i++ {
		entrada = append(entrada, puntuado(i, campaign.ZonaEste, 60))
	}

	resultado := schedule.BatchByZone(entrada)

	assert.Len(t, resultado, 12)
	// El orden interno se preserva al fusionar
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, idsDe(resultado))
}

func TestBatchByZoneLoteUnicoChicoSeConserva(t *testing.T) {
	entrada := []schedule.ScoredContact{
		puntuado(1, campaign.ZonaOeste, 40),
		puntuado(2, campaign.ZonaOeste, 40),
		puntuado(3, campaign.ZonaOeste, 40),
	}

	resultado := schedule.BatchByZone(entrada)

	// Un lote único por debajo del mínimo queda tal cual, nunca se descarta
	assert.Equal(t, []int64{1, 2, 3}, idsDe(resultado))
}

func TestBatchByZoneEntradaVacia(t *testing.T) {
	resultado := schedule.BatchByZone(nil)
	assert.NotNil(t, resultado)
	assert.Empty(t, resultado)
}
