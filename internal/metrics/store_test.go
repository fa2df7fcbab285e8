package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callplan/internal/metrics"
)

var lasDiez = time.Date(2026, 3, 4, 10, 15, 0, 0, time.UTC)

func TestRecordOutcomeAgregaEnElCupo(t *testing.T) {
	store := metrics.NewStore()

	store.RecordOutcome(metrics.Outcome{Connected: true, Interested: true, DurationSeconds: 60}, lasDiez)
	store.RecordOutcome(metrics.Outcome{Connected: true, DurationSeconds: 120}, lasDiez)
	store.RecordOutcome(metrics.Outcome{NoAnswer: true}, lasDiez)

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)

	m := snapshot[0]
	assert.Equal(t, "2026-03-04", m.Fecha)
	assert.Equal(t, 10, m.Hora)
	assert.Equal(t, 3, m.Calls)
	assert.Equal(t, 2, m.Connected)
	assert.Equal(t, 1, m.Interested)
	assert.Equal(t, 1, m.NoAnswer)
	assert.InDelta(t, 60.0, m.AvgDuration, 0.001)
}

func TestRecordOutcomeSeparaCuposPorHora(t *testing.T) {
	store := metrics.NewStore()

	store.RecordOutcome(metrics.Outcome{Connected: true}, lasDiez)
	store.RecordOutcome(metrics.Outcome{Voicemail: true}, lasDiez.Add(time.Hour))

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, 10, snapshot[0].Hora)
	assert.Equal(t, 11, snapshot[1].Hora)
}

func TestLoadSiembraElAlmacen(t *testing.T) {
	store := metrics.NewStore()
	store.Load([]metrics.HourlyMetric{
		{Fecha: "2026-03-03", Hora: 9, Calls: 10, Connected: 4},
		{Fecha: "2026-03-04", Hora: 9, Calls: 5, Connected: 1},
	})

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 2)

	// El snapshot sale ordenado por fecha y hora
	assert.Equal(t, "2026-03-03", snapshot[0].Fecha)
	assert.Equal(t, "2026-03-04", snapshot[1].Fecha)

	// Registrar sobre un cupo sembrado acumula, no reemplaza
	store.RecordOutcome(metrics.Outcome{Connected: true}, time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC))
	snapshot = store.Snapshot()
	assert.Equal(t, 6, snapshot[1].Calls)
	assert.Equal(t, 2, snapshot[1].Connected)
}

func TestConnectRateByHour(t *testing.T) {
	historial := []metrics.HourlyMetric{
		{Fecha: "2026-03-03", Hora: 9, Calls: 10, Connected: 4},
		{Fecha: "2026-03-04", Hora: 9, Calls: 10, Connected: 2},
		{Fecha: "2026-03-04", Hora: 15, Calls: 4, Connected: 3},
	}

	rates := metrics.ConnectRateByHour(historial)

	// Las dos fechas de las 9 se agregan: 6 de 20
	assert.InDelta(t, 30.0, rates[9], 0.001)
	assert.InDelta(t, 75.0, rates[15], 0.001)
	_, ok := rates[12]
	assert.False(t, ok)
}
