package schedule

import (
	"sort"

	"callplan/internal/campaign"
)

const (
	// ZoneBatchMax tamaño máximo de un lote por zona
	ZoneBatchMax = 8
	// ZoneBatchMin un lote final más chico que esto se fusiona con el
	// lote anterior de su zona en vez de quedar suelto
	ZoneBatchMin = 5
)

// loteZona lote de contactos de una misma zona con su score promedio
type loteZona struct {
	zona      string
	contactos []ScoredContact
	promedio  float64
}

// BatchByZone agrupa los contactos puntuados en lotes geográficamente
// homogéneos de tamaño acotado, ordena los lotes por score promedio
// descendente y los aplana. Los contactos sin zona reconocida quedan como
// bloque contiguo al final: pierden prioridad de agrupamiento pero nunca
// se descartan.
func BatchByZone(contactos []ScoredContact) []ScoredContact {
	if len(contactos) == 0 {
		return []ScoredContact{}
	}

	porZona := make(map[string][]ScoredContact)
	var ordenZonas []string
	var sinZona []ScoredContact

	for _, sc := range contactos {
		if !campaign.ZonaConocida(sc.Contact.Zona) {
			sinZona = append(sinZona, sc)
			continue
		}
		if _, ok := porZona[sc.Contact.Zona]; !ok {
			ordenZonas = append(ordenZonas, sc.Contact.Zona)
		}
		porZona[sc.Contact.Zona] = append(porZona[sc.Contact.Zona], sc)
	}

	var lotes []loteZona
	for _, zona := range ordenZonas {
		lotes = append(lotes, partirEnLotes(zona, porZona[zona])...)
	}

	// Orden global por score promedio descendente; desempate por zona
	// para mantener el resultado determinista
	sort.SliceStable(lotes, func(i, j int) bool {
		if lotes[i].promedio != lotes[j].promedio {
			return lotes[i].promedio > lotes[j].promedio
		}
		return lotes[i].zona < lotes[j].zona
	})

	resultado := make([]ScoredContact, 0, len(contactos))
	for _, lote := range lotes {
		resultado = append(resultado, lote.contactos...)
	}
	resultado = append(resultado, sinZona...)

	return resultado
}

// partirEnLotes divide el grupo de una zona en lotes de a lo sumo
// ZoneBatchMax. Un lote final menor que ZoneBatchMin se fusiona con el
// lote anterior; si es el único lote de la zona queda tal cual.
func partirEnLotes(zona string, grupo []ScoredContact) []loteZona {
	var lotes []loteZona
	for i := 0; i < len(grupo); i += ZoneBatchMax {
		fin := i + ZoneBatchMax
		if fin > len(grupo) {
			fin = len(grupo)
		}
		lotes = append(lotes, loteZona{zona: zona, contactos: grupo[i:fin]})
	}

	if len(lotes) > 1 {
		ultimo := lotes[len(lotes)-1]
		if len(ultimo.contactos) < ZoneBatchMin {
			previo := &lotes[len(lotes)-2]
			previo.contactos = append(append([]ScoredContact{}, previo.contactos...), ultimo.contactos...)
			lotes = lotes[:len(lotes)-1]
		}
	}

	for i := range lotes {
		lotes[i].promedio = promedioScore(lotes[i].contactos)
	}

	return lotes
}

func promedioScore(contactos []ScoredContact) float64 {
	if len(contactos) == 0 {
		return 0
	}
	suma := 0
	for _, sc := range contactos {
		suma += sc.Score.NormalizedTotal
	}
	return float64(suma) / float64(len(contactos))
}
