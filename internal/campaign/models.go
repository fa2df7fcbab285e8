package campaign

import "time"

// Estados de llamada de un contacto
const (
	EstadoPending           = "pending"
	EstadoQueued            = "queued"
	EstadoNoAnswer          = "no_answer"
	EstadoBusy              = "busy"
	EstadoCallbackScheduled = "callback_scheduled"
	EstadoCompleted         = "completed"
	EstadoFailed            = "failed"
	EstadoSkipped           = "skipped"
)

// Estados de contrato
const (
	ContratoActive  = "active"
	ContratoExpired = "expired"
)

// Tipos de cliente
const (
	ClienteCommercial  = "commercial"
	ClienteResidential = "residential"
)

// Etiquetas de prioridad asignadas por el agente
const (
	PrioridadHigh   = "high"
	PrioridadMedium = "medium"
	PrioridadLow    = "low"
)

// Zonas geográficas reconocidas para agrupar llamadas del mismo día
const (
	ZonaHomeBase = "Zone 1 - Home Base"
	ZonaNorte    = "Zone 2 - North"
	ZonaSur      = "Zone 3 - South"
	ZonaEste     = "Zone 4 - East"
	ZonaOeste    = "Zone 5 - West"
)

// Zonas devuelve la enumeración completa de zonas reconocidas
func Zonas() []string {
	return []string{ZonaHomeBase, ZonaNorte, ZonaSur, ZonaEste, ZonaOeste}
}

// ZonaConocida indica si la zona pertenece a la enumeración fija
func ZonaConocida(zona string) bool {
	switch zona {
	case ZonaHomeBase, ZonaNorte, ZonaSur, ZonaEste, ZonaOeste:
		return true
	}
	return false
}

// Contact representa un contacto llamable de la campaña.
// El núcleo de agenda solo lo lee; nunca lo muta directamente.
type Contact struct {
	ID       int64  `db:"id" json:"id"`
	Nombre   string `db:"nombre" json:"nombre"`
	Telefono string `db:"telefono" json:"telefono"`

	// Zona geográfica; cadena vacía = desconocida
	Zona string `db:"zona" json:"zona"`

	// Metadatos de contrato; ContratoVence nil = sin fecha conocida
	ContratoEstado string     `db:"contrato_estado" json:"contrato_estado"`
	ContratoVence  *time.Time `db:"contrato_vence" json:"contrato_vence,omitempty"`
	ContratoTipo   string     `db:"contrato_tipo" json:"contrato_tipo"`

	// Clasificación del cliente; cadena vacía = desconocida
	TipoCliente string `db:"tipo_cliente" json:"tipo_cliente"`

	// Etiqueta textual de prioridad (high/medium/low); vacía si no asignada
	Prioridad string `db:"prioridad" json:"prioridad"`

	// Historial de llamadas
	Estado          string     `db:"estado" json:"estado"`
	Intentos        int        `db:"intentos" json:"intentos"`
	UltimoResultado string     `db:"ultimo_resultado" json:"ultimo_resultado"`
	UltimaLlamada   *time.Time `db:"ultima_llamada" json:"ultima_llamada,omitempty"`

	// Callback agendado, si existe
	Callback *time.Time `db:"callback" json:"callback,omitempty"`

	// Marcado como no-llamar: excluido de cualquier plan
	NoLlamar bool `db:"no_llamar" json:"no_llamar"`
}

// Llamable indica si el estado del contacto permite marcarlo
func (c *Contact) Llamable() bool {
	if c.NoLlamar {
		return false
	}
	switch c.Estado {
	case EstadoPending, EstadoQueued, EstadoNoAnswer, EstadoBusy, EstadoCallbackScheduled:
		return true
	}
	return false
}

// FiltrarLlamables devuelve solo los contactos cuyo estado permite marcar
func FiltrarLlamables(contactos []Contact) []Contact {
	llamables := make([]Contact, 0, len(contactos))
	for i := range contactos {
		if contactos[i].Llamable() {
			llamables = append(llamables, contactos[i])
		}
	}
	return llamables
}
