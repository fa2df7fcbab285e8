// Package metrics mantiene los agregados horarios de resultados de
// llamada y detecta degradación de desempeño en caliente.
package metrics

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// HourlyMetric agregado de resultados por cupo (fecha, hora).
// Solo se agrega incrementalmente; nunca se reescribe un cupo.
type HourlyMetric struct {
	Fecha       string  `db:"fecha" json:"fecha"` // formato 2006-01-02
	Hora        int     `db:"hora" json:"hora"`
	Calls       int     `db:"calls" json:"calls"`
	Connected   int     `db:"connected" json:"connected"`
	Interested  int     `db:"interested" json:"interested"`
	Voicemail   int     `db:"voicemail" json:"voicemail"`
	NoAnswer    int     `db:"no_answer" json:"no_answer"`
	AvgDuration float64 `db:"avg_duration" json:"avg_duration"` // segundos
}

// Outcome resultado de una llamada individual a registrar
type Outcome struct {
	Connected       bool `json:"connected"`
	Interested      bool `json:"interested"`
	Voicemail       bool `json:"voicemail"`
	NoAnswer        bool `json:"no_answer"`
	DurationSeconds int  `json:"duration_seconds"`
}

// Store almacén horario en memoria. Un solo escritor por campaña; el
// mutex protege contra lecturas concurrentes del API y el monitor.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]*HourlyMetric
}

// NewStore crea un almacén horario vacío
func NewStore() *Store {
	return &Store{buckets: make(map[string]*HourlyMetric)}
}

func bucketKey(fecha string, hora int) string {
	return fmt.Sprintf("%s#%02d", fecha, hora)
}

// RecordOutcome acumula el resultado de una llamada en el cupo de la
// hora actual, manteniendo el promedio móvil de duración
func (s *Store) RecordOutcome(o Outcome, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fecha := now.Format("2006-01-02")
	key := bucketKey(fecha, now.Hour())

	m, ok := s.buckets[key]
	if !ok {
		m = &HourlyMetric{Fecha: fecha, Hora: now.Hour()}
		s.buckets[key] = m
	}

	m.AvgDuration = (m.AvgDuration*float64(m.Calls) + float64(o.DurationSeconds)) / float64(m.Calls+1)
	m.Calls++
	if o.Connected {
		m.Connected++
	}
	if o.Interested {
		m.Interested++
	}
	if o.Voicemail {
		m.Voicemail++
	}
	if o.NoAnswer {
		m.NoAnswer++
	}
}

// Load siembra el almacén con historial persistido (arranque del servicio)
func (s *Store) Load(historial []HourlyMetric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range historial {
		m := historial[i]
		s.buckets[bucketKey(m.Fecha, m.Hora)] = &m
	}
}

// Snapshot devuelve una copia ordenada por (fecha, hora) de todos los cupos
func (s *Store) Snapshot() []HourlyMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]HourlyMetric, 0, len(s.buckets))
	for _, m := range s.buckets {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fecha != out[j].Fecha {
			return out[i].Fecha < out[j].Fecha
		}
		return out[i].Hora < out[j].Hora
	})
	return out
}

// ConnectRateByHour agrega todos los cupos por hora del día y devuelve la
// tasa de conexión porcentual de cada hora con actividad. Alimenta el
// contexto del scoring mejorado.
func ConnectRateByHour(historial []HourlyMetric) map[int]float64 {
	calls := make(map[int]int)
	connected := make(map[int]int)
	for i := range historial {
		calls[historial[i].Hora] += historial[i].Calls
		connected[historial[i].Hora] += historial[i].Connected
	}

	rates := make(map[int]float64)
	for hora, c := range calls {
		if c > 0 {
			rates[hora] = float64(connected[hora]) / float64(c) * 100
		}
	}
	return rates
}
