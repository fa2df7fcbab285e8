package planner

import (
	"log"
	"sync"
	"time"

	"callplan/internal/config"
	"callplan/internal/metrics"
	"callplan/internal/observability"
)

// MonitorInterval frecuencia del chequeo de condiciones de falla
const MonitorInterval = 1 * time.Hour

// EventFailureAlert evento publicado cuando hay condiciones activas
const EventFailureAlert = "failure_alert"

// Monitor corre el detector de fallas periódicamente y publica las
// condiciones activas hacia los clientes y las métricas
type Monitor struct {
	store    *metrics.Store
	cfg      config.SchedulerConfig
	notifier Notifier
	interval time.Duration
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewMonitor crea el monitor de desempeño. notifier puede ser nil.
func NewMonitor(store *metrics.Store, cfg config.SchedulerConfig, notifier Notifier) *Monitor {
	return &Monitor{
		store:    store,
		cfg:      cfg,
		notifier: notifier,
		interval: MonitorInterval,
		stopChan: make(chan struct{}),
	}
}

// Start arranca el worker de chequeo
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run()
	log.Println("[Monitor] Monitor de desempeño iniciado")
}

// Stop detiene el worker y espera a que termine
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	close(m.stopChan)
	m.wg.Wait()
	log.Println("[Monitor] Monitor de desempeño detenido")
}

func (m *Monitor) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.Check(time.Now())
		}
	}
}

// Check ejecuta un ciclo de chequeo y devuelve las condiciones activas.
// El conjunto devuelto reemplaza al anterior: es estado, no bitácora.
func (m *Monitor) Check(now time.Time) []metrics.FailureCondition {
	condiciones := metrics.CheckFailureConditions(m.store.Snapshot(), m.cfg, now)

	observability.ResetCondicionesFalla()
	for _, c := range condiciones {
		observability.CondicionesFalla.WithLabelValues(c.Type, c.Severity).Set(1)
		log.Printf("[Monitor] %s (%s): %s", c.Type, c.Severity, c.Message)
	}

	if len(condiciones) > 0 && m.notifier != nil {
		m.notifier.BroadcastEvent(EventFailureAlert, condiciones)
	}

	return condiciones
}
