package scoring_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"callplan/internal/campaign"
	"callplan/internal/scoring"
)

func poolDeZona(zona string, n int) []campaign.Contact {
	pool := make([]campaign.Contact, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, campaign.Contact{
			ID:       int64(i + 1),
			Zona:     zona,
			Telefono: "555-0000",
		})
	}
	return pool
}

func TestCalcularEnhancedSinContexto(t *testing.T) {
	c := campaign.Contact{TipoCliente: campaign.ClienteCommercial}

	score := scoring.CalcularEnhanced(&c, scoring.Context{}, miercoles10)

	// Sin contexto no hay bonos: el raw es el score base puro
	assert.Equal(t, scoring.BonusBreakdown{}, score.Bonus)
	assert.Equal(t, score.Base.Total, score.Raw)

	esperado := int(math.Round(float64(score.Raw) / 130.0 * 100))
	assert.Equal(t, esperado, score.NormalizedTotal)
}

func TestHourConnectRateTiers(t *testing.T) {
	tests := map[string]struct {
		rate     float64
		expected int
	}{
		"TasaAlta":    {45, 8},
		"TasaBuena":   {35, 6},
		"TasaMedia":   {25, 4},
		"TasaBaja":    {15, 2},
		"TasaMinima":  {5, 1},
		"SinConexion": {0, 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := scoring.Context{ConnectRateByHour: map[int]float64{10: tc.rate}}
			c := campaign.Contact{}
			score := scoring.CalcularEnhanced(&c, ctx, miercoles10)
			assert.Equal(t, tc.expected, score.Bonus.HourConnectRate)
		})
	}
}

func TestZoneDensityTiers(t *testing.T) {
	tests := map[string]struct {
		enZona   int
		expected int
	}{
		"ZonaMuyDensa": {20, 7},
		"ZonaDensa":    {12, 5},
		"ZonaMedia":    {6, 3},
		"ZonaDispersa": {2, 1},
		"ZonaSolo":     {1, 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			pool := poolDeZona(campaign.ZonaNorte, tc.enZona)
			c := campaign.Contact{Zona: campaign.ZonaNorte}
			score := scoring.CalcularEnhanced(&c, scoring.Context{Pool: pool}, miercoles10)
			assert.Equal(t, tc.expected, score.Bonus.ZoneDensity)
		})
	}
}

func TestZoneDensityIgnoraZonaDesconocida(t *testing.T) {
	pool := poolDeZona("Zona inventada", 25)
	c := campaign.Contact{Zona: "Zona inventada"}
	score := scoring.CalcularEnhanced(&c, scoring.Context{Pool: pool}, miercoles10)
	assert.Equal(t, 0, score.Bonus.ZoneDensity)
}

func TestExpiringSoon(t *testing.T) {
	tests := map[string]struct {
		estado   string
		enDias   int
		expected int
	}{
		"VenceEnUnaSemana":     {campaign.ContratoActive, 7, 5},
		"VenceEnTresSemanas":   {campaign.ContratoActive, 21, 3},
		"VenceEnDosMeses":      {campaign.ContratoActive, 60, 0},
		"VencidoNoEsPorVencer": {campaign.ContratoExpired, 7, 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			vence := miercoles10.AddDate(0, 0, tc.enDias)
			c := campaign.Contact{ContratoEstado: tc.estado, ContratoVence: &vence}
			score := scoring.CalcularEnhanced(&c, scoring.Context{}, miercoles10)
			assert.Equal(t, tc.expected, score.Bonus.ExpiringSoon)
		})
	}
}

func TestMultiContract(t *testing.T) {
	pool := []campaign.Contact{
		{ID: 1, Telefono: "555-1111"},
		{ID: 2, Telefono: "555-1111"},
		{ID: 3, Telefono: "555-1111"},
		{ID: 4, Telefono: "555-2222"},
		{ID: 5, Telefono: "555-2222"},
		{ID: 6, Telefono: "555-3333"},
	}

	tests := map[string]struct {
		telefono string
		expected int
	}{
		"TresContratos": {"555-1111", 5},
		"DosContratos":  {"555-2222", 3},
		"UnContrato":    {"555-3333", 0},
		"SinTelefono":   {"", 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := campaign.Contact{Telefono: tc.telefono}
			score := scoring.CalcularEnhanced(&c, scoring.Context{Pool: pool}, miercoles10)
			assert.Equal(t, tc.expected, score.Bonus.MultiContract)
		})
	}
}

func TestExplanationOrdenYContenido(t *testing.T) {
	pool := poolDeZona(campaign.ZonaHomeBase, 12)
	c := campaign.Contact{
		Zona:           campaign.ZonaHomeBase,
		ContratoEstado: campaign.ContratoExpired,
		ContratoVence:  fechaHace(400),
		Prioridad:      campaign.PrioridadHigh,
		TipoCliente:    campaign.ClienteCommercial,
	}

	score := scoring.CalcularEnhanced(&c, scoring.Context{Pool: pool}, miercoles10)

	assert.Equal(t,
		"Expired contract + High priority flag + Good calling window + Zone cluster + Commercial customer + Zone 1 - Home Base",
		score.Explanation)
}

func TestExplanationContactoNeutro(t *testing.T) {
	c := campaign.Contact{}
	noche := time.Date(2026, 3, 4, 20, 0, 0, 0, time.UTC)

	score := scoring.CalcularEnhanced(&c, scoring.Context{}, noche)

	assert.Equal(t, "Standard priority", score.Explanation)
}

func TestCalcularEnhancedCotas(t *testing.T) {
	// Maximizar base y bonos a la vez
	vence := miercoles10.AddDate(0, 0, -400)
	pool := poolDeZona(campaign.ZonaNorte, 25)
	c := campaign.Contact{
		Zona:           campaign.ZonaNorte,
		Telefono:       "555-0000",
		ContratoEstado: campaign.ContratoExpired,
		ContratoVence:  &vence,
		Prioridad:      campaign.PrioridadHigh,
		TipoCliente:    campaign.ClienteCommercial,
		Estado:         campaign.EstadoCallbackScheduled,
		Callback:       &vence,
		Intentos:       1,
	}
	ctx := scoring.Context{
		Pool:              pool,
		ConnectRateByHour: map[int]float64{10: 50},
	}

	score := scoring.CalcularEnhanced(&c, ctx, miercoles10)

	assert.LessOrEqual(t, score.NormalizedTotal, 100)
	assert.GreaterOrEqual(t, score.NormalizedTotal, 0)
	assert.LessOrEqual(t, score.Raw, scoring.BaseScoreMax+scoring.BonusScoreMax)
}

func TestCalcularEnhancedEsDeterminista(t *testing.T) {
	pool := poolDeZona(campaign.ZonaSur, 8)
	c := campaign.Contact{Zona: campaign.ZonaSur, Intentos: 2}
	ctx := scoring.Context{Pool: pool, ConnectRateByHour: map[int]float64{10: 22}}

	primero := scoring.CalcularEnhanced(&c, ctx, miercoles10)
	for i := 0; i < 10; i++ {
		otra := scoring.CalcularEnhanced(&c, ctx, miercoles10)
		assert.Equal(t, primero, otra)
		assert.Equal(t, primero.Explanation, otra.Explanation)
	}
}
