// Package scoring calcula la prioridad de llamada (0-100) de cada contacto.
// Todas las funciones son puras y totales: campos ausentes degradan a
// contribuciones neutras, nunca a errores.
package scoring

import (
	"time"

	"callplan/internal/campaign"
)

// Límites de cada subpuntaje del score base. La suma de máximos es
// exactamente 100, así que el tope es una cota de seguridad.
const (
	MaxContractUrgency   = 30
	MaxPriorityLabel     = 20
	MaxCustomerType      = 10
	MaxCallbackDue       = 15
	MaxAttemptEfficiency = 10
	MaxTimeOfDayFit      = 15

	BaseScoreMax = 100
)

// Breakdown desglose de subpuntajes del score base
type Breakdown struct {
	ContractUrgency   int `json:"contract_urgency"`
	PriorityLabel     int `json:"priority_label"`
	CustomerType      int `json:"customer_type"`
	CallbackDue       int `json:"callback_due"`
	AttemptEfficiency int `json:"attempt_efficiency"`
	TimeOfDayFit      int `json:"time_of_day_fit"`
}

// Score resultado del scoring base
type Score struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

// Calcular computa el score base de un contacto en el instante dado
func Calcular(c *campaign.Contact, now time.Time) Score {
	b := Breakdown{
		ContractUrgency:   contractUrgency(c, now),
		PriorityLabel:     priorityLabel(c.Prioridad),
		CustomerType:      customerType(c.TipoCliente),
		CallbackDue:       callbackDue(c, now),
		AttemptEfficiency: attemptEfficiency(c.Intentos),
		TimeOfDayFit:      timeOfDayFit(c.TipoCliente, now.Hour()),
	}

	total := b.ContractUrgency + b.PriorityLabel + b.CustomerType +
		b.CallbackDue + b.AttemptEfficiency + b.TimeOfDayFit
	if total > BaseScoreMax {
		total = BaseScoreMax
	}

	return Score{Total: total, Breakdown: b}
}

// contractUrgency 0-30: contratos vencidos puntúan más según los días
// transcurridos; activos 0; estado desconocido 5
func contractUrgency(c *campaign.Contact, now time.Time) int {
	switch c.ContratoEstado {
	case campaign.ContratoActive:
		return 0
	case campaign.ContratoExpired:
		if c.ContratoVence == nil {
			// Vencido sin fecha conocida: nivel mínimo de urgencia
			return 10
		}
		dias := int(now.Sub(*c.ContratoVence).Hours() / 24)
		switch {
		case dias > 365:
			return 30
		case dias > 180:
			return 25
		case dias > 90:
			return 20
		case dias > 30:
			return 15
		default:
			return 10
		}
	default:
		return 5
	}
}

// priorityLabel 0-20 según la etiqueta textual asignada por el agente
func priorityLabel(prioridad string) int {
	switch prioridad {
	case campaign.PrioridadHigh:
		return 20
	case campaign.PrioridadMedium:
		return 12
	case campaign.PrioridadLow:
		return 6
	default:
		return 0
	}
}

// customerType 0-10: comercial por encima de residencial
func customerType(tipo string) int {
	switch tipo {
	case campaign.ClienteCommercial:
		return 8
	case campaign.ClienteResidential:
		return 5
	default:
		return 3
	}
}

// callbackDue 0-15: solo aplica a contactos con callback agendado
func callbackDue(c *campaign.Contact, now time.Time) int {
	if c.Estado != campaign.EstadoCallbackScheduled {
		return 0
	}
	if c.Callback == nil {
		// Agendado sin hora concreta: contribución futura genérica
		return 5
	}
	switch {
	case c.Callback.Before(now):
		return 15
	case c.Callback.Sub(now) <= 24*time.Hour:
		return 10
	default:
		return 5
	}
}

// attemptEfficiency 0-10: inverso al número de intentos previos,
// favorece contactos poco trabajados
func attemptEfficiency(intentos int) int {
	switch {
	case intentos <= 0:
		return 10
	case intentos == 1:
		return 7
	case intentos == 2:
		return 4
	default:
		return 1
	}
}

// timeOfDayFit 0-15: ajuste de la hora actual contra las ventanas de
// contacto conocidas. Curvas separadas para comercial (9-12) y
// residencial (9-11 y 15-17).
func timeOfDayFit(tipoCliente string, hora int) int {
	switch tipoCliente {
	case campaign.ClienteCommercial:
		switch {
		case hora >= 9 && hora < 12:
			return 15
		case hora >= 14 && hora < 16:
			return 8
		case hora >= 8 && hora < 9, hora >= 12 && hora < 13:
			return 6
		case hora >= 16 && hora < 18:
			return 4
		default:
			return 0
		}
	case campaign.ClienteResidential:
		switch {
		case hora >= 9 && hora < 11, hora >= 15 && hora < 17:
			return 15
		case hora >= 11 && hora < 12:
			return 8
		case hora >= 17 && hora < 19:
			return 6
		case hora >= 12 && hora < 15:
			return 4
		default:
			return 0
		}
	default:
		// Tipo desconocido: curva intermedia
		switch {
		case hora >= 9 && hora < 12:
			return 10
		case hora >= 15 && hora < 17:
			return 8
		case hora >= 8 && hora < 9, hora >= 12 && hora < 15:
			return 5
		default:
			return 0
		}
	}
}
