package planner_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callplan/internal/config"
	"callplan/internal/metrics"
	"callplan/internal/planner"
)

func TestMonitorCheckPublicaCondiciones(t *testing.T) {
	store := metrics.NewStore()
	store.Load([]metrics.HourlyMetric{
		{Fecha: "2026-03-04", Hora: 10, Calls: 10, Connected: 0},
		{Fecha: "2026-03-04", Hora: 11, Calls: 10, Connected: 1},
	})

	notifier := &fakeNotifier{}
	monitor := planner.NewMonitor(store, config.DefaultScheduler(), notifier)

	ahora := time.Date(2026, 3, 4, 11, 30, 0, 0, time.UTC)
	condiciones := monitor.Check(ahora)

	require.NotEmpty(t, condiciones)
	assert.Contains(t, notifier.eventos, planner.EventFailureAlert)
}

func TestMonitorCheckSinCondicionesNoNotifica(t *testing.T) {
	store := metrics.NewStore()
	store.Load([]metrics.HourlyMetric{
		{Fecha: "2026-03-04", Hora: 10, Calls: 10, Connected: 6, Interested: 3},
		{Fecha: "2026-03-04", Hora: 11, Calls: 10, Connected: 5, Interested: 2},
	})

	notifier := &fakeNotifier{}
	monitor := planner.NewMonitor(store, config.DefaultScheduler(), notifier)

	ahora := time.Date(2026, 3, 4, 11, 30, 0, 0, time.UTC)
	condiciones := monitor.Check(ahora)

	assert.Empty(t, condiciones)
	assert.Empty(t, notifier.eventos)
}

func TestMonitorStartStop(t *testing.T) {
	monitor := planner.NewMonitor(metrics.NewStore(), config.DefaultScheduler(), nil)

	monitor.Start()
	monitor.Start() // segundo Start es inocuo
	monitor.Stop()
	monitor.Stop() // segundo Stop también
}
