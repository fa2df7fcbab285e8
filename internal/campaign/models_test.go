package campaign_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"callplan/internal/campaign"
)

func TestLlamable(t *testing.T) {
	tests := map[string]struct {
		contact  campaign.Contact
		expected bool
	}{
		"Pendiente":         {campaign.Contact{Estado: campaign.EstadoPending}, true},
		"EnCola":            {campaign.Contact{Estado: campaign.EstadoQueued}, true},
		"SinRespuesta":      {campaign.Contact{Estado: campaign.EstadoNoAnswer}, true},
		"Ocupado":           {campaign.Contact{Estado: campaign.EstadoBusy}, true},
		"CallbackAgendado":  {campaign.Contact{Estado: campaign.EstadoCallbackScheduled}, true},
		"Completado":        {campaign.Contact{Estado: campaign.EstadoCompleted}, false},
		"Fallido":           {campaign.Contact{Estado: campaign.EstadoFailed}, false},
		"Saltado":           {campaign.Contact{Estado: campaign.EstadoSkipped}, false},
		"EstadoDesconocido": {campaign.Contact{Estado: "otro"}, false},
		"NoLlamarGanaSiempre": {
			campaign.Contact{Estado: campaign.EstadoPending, NoLlamar: true},
			false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.contact.Llamable())
		})
	}
}

func TestFiltrarLlamables(t *testing.T) {
	contactos := []campaign.Contact{
		{ID: 1, Estado: campaign.EstadoPending},
		{ID: 2, Estado: campaign.EstadoCompleted},
		{ID: 3, Estado: campaign.EstadoNoAnswer},
		{ID: 4, Estado: campaign.EstadoPending, NoLlamar: true},
	}

	llamables := campaign.FiltrarLlamables(contactos)

	ids := make([]int64, 0, len(llamables))
	for _, c := range llamables {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{1, 3}, ids)
}

func TestZonaConocida(t *testing.T) {
	for _, zona := range campaign.Zonas() {
		assert.True(t, campaign.ZonaConocida(zona))
	}
	assert.False(t, campaign.ZonaConocida(""))
	assert.False(t, campaign.ZonaConocida("Zone 9 - Luna"))
}
