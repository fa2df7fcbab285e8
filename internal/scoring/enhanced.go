package scoring

import (
	"math"
	"strings"
	"time"

	"callplan/internal/campaign"
)

// Límites de los factores bono del scoring mejorado
const (
	MaxHourConnectRate = 8
	MaxZoneDensity     = 7
	MaxFamiliarity     = 5
	MaxExpiringSoon    = 5
	MaxMultiContract   = 5

	BonusScoreMax = MaxHourConnectRate + MaxZoneDensity + MaxFamiliarity +
		MaxExpiringSoon + MaxMultiContract

	// Divisor de normalización. Si se agregan factores bono el divisor
	// se ajusta solo; nunca dejarlo como literal suelto.
	enhancedScoreDivisor = BaseScoreMax + BonusScoreMax
)

// Context datos contextuales del ciclo actual usados por el scoring mejorado
type Context struct {
	// Pool de candidatos del ciclo (para densidad de zona y multi-contrato)
	Pool []campaign.Contact

	// Tasa histórica de conexión (porcentaje) por hora del día
	ConnectRateByHour map[int]float64
}

// BonusBreakdown desglose de los factores bono
type BonusBreakdown struct {
	HourConnectRate int `json:"hour_connect_rate"`
	ZoneDensity     int `json:"zone_density"`
	Familiarity     int `json:"familiarity"`
	ExpiringSoon    int `json:"expiring_soon"`
	MultiContract   int `json:"multi_contract"`
}

// EnhancedScore resultado del scoring mejorado: base + bonos,
// reescalado linealmente a 0-100
type EnhancedScore struct {
	NormalizedTotal int            `json:"normalized_total"`
	Raw             int            `json:"raw"`
	Base            Score          `json:"base"`
	Bonus           BonusBreakdown `json:"bonus"`
	Explanation     string         `json:"explanation"`
}

// CalcularEnhanced computa el score mejorado de un contacto con contexto
func CalcularEnhanced(c *campaign.Contact, ctx Context, now time.Time) EnhancedScore {
	base := Calcular(c, now)

	bonus := BonusBreakdown{
		HourConnectRate: hourConnectRate(ctx.ConnectRateByHour, now.Hour()),
		ZoneDensity:     zoneDensity(c, ctx.Pool),
		Familiarity:     familiarity(c.Intentos),
		ExpiringSoon:    expiringSoon(c, now),
		MultiContract:   multiContract(c, ctx.Pool),
	}

	raw := base.Total + bonus.HourConnectRate + bonus.ZoneDensity +
		bonus.Familiarity + bonus.ExpiringSoon + bonus.MultiContract

	normalized := int(math.Round(float64(raw) / float64(enhancedScoreDivisor) * 100))

	return EnhancedScore{
		NormalizedTotal: normalized,
		Raw:             raw,
		Base:            base,
		Bonus:           bonus,
		Explanation:     buildExplanation(c, base.Breakdown, bonus),
	}
}

// hourConnectRate 0-8 según la tasa histórica de conexión a la hora actual
func hourConnectRate(rates map[int]float64, hora int) int {
	rate, ok := rates[hora]
	if !ok {
		return 0
	}
	switch {
	case rate >= 40:
		return 8
	case rate >= 30:
		return 6
	case rate >= 20:
		return 4
	case rate >= 10:
		return 2
	case rate > 0:
		return 1
	default:
		return 0
	}
}

// zoneDensity 0-7: premia contactos cuya zona está densamente representada
// en el pool del ciclo (favorece bloques geográficamente coherentes)
func zoneDensity(c *campaign.Contact, pool []campaign.Contact) int {
	if !campaign.ZonaConocida(c.Zona) {
		return 0
	}
	n := 0
	for i := range pool {
		if pool[i].Zona == c.Zona {
			n++
		}
	}
	switch {
	case n >= 20:
		return 7
	case n >= 12:
		return 5
	case n >= 6:
		return 3
	case n >= 2:
		return 1
	default:
		return 0
	}
}

// familiarity 0-5: bono por contacto ya trabajado (complementa, no
// reemplaza, la eficiencia de intentos del score base)
func familiarity(intentos int) int {
	switch {
	case intentos <= 0:
		return 0
	case intentos <= 2:
		return 5
	case intentos <= 4:
		return 3
	default:
		return 1
	}
}

// expiringSoon 0-5: contrato activo por vencer dentro de 30 días
// (distinto de la urgencia por contrato ya vencido)
func expiringSoon(c *campaign.Contact, now time.Time) int {
	if c.ContratoEstado != campaign.ContratoActive || c.ContratoVence == nil {
		return 0
	}
	dias := int(c.ContratoVence.Sub(now).Hours() / 24)
	switch {
	case dias < 0:
		return 0
	case dias <= 15:
		return 5
	case dias <= 30:
		return 3
	default:
		return 0
	}
}

// multiContract 0-5: detecta hogar/negocio con varios contratos ligados
// al mismo teléfono dentro del pool
func multiContract(c *campaign.Contact, pool []campaign.Contact) int {
	if c.Telefono == "" {
		return 0
	}
	n := 0
	for i := range pool {
		if pool[i].Telefono == c.Telefono {
			n++
		}
	}
	switch {
	case n >= 3:
		return 5
	case n == 2:
		return 3
	default:
		return 0
	}
}

// buildExplanation arma la explicación nombrando los subpuntajes que
// cruzaron su umbral de materialidad, en orden fijo de prioridad
func buildExplanation(c *campaign.Contact, b Breakdown, bonus BonusBreakdown) string {
	var parts []string

	if b.ContractUrgency >= 20 {
		parts = append(parts, "Expired contract")
	}
	if b.PriorityLabel >= 20 {
		parts = append(parts, "High priority flag")
	}
	if b.TimeOfDayFit >= 12 {
		parts = append(parts, "Good calling window")
	}
	if bonus.ZoneDensity >= 5 {
		parts = append(parts, "Zone cluster")
	}
	if b.CallbackDue >= 10 {
		parts = append(parts, "Callback due")
	}
	if bonus.Familiarity >= 5 {
		parts = append(parts, "Known contact")
	}
	if b.CustomerType >= 8 {
		parts = append(parts, "Commercial customer")
	}
	if bonus.MultiContract >= 3 {
		parts = append(parts, "Multiple contracts")
	}
	if campaign.ZonaConocida(c.Zona) {
		parts = append(parts, c.Zona)
	}

	if len(parts) == 0 {
		return "Standard priority"
	}
	return strings.Join(parts, " + ")
}
