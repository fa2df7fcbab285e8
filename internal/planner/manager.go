// Package planner orquesta el ciclo de vida de la agenda semanal: la
// genera por semana ISO, regenera días individuales y registra avances,
// serializando toda escritura detrás de un mutex (un solo escritor por
// campaña).
package planner

import (
	"fmt"
	"log"
	"sync"
	"time"

	"callplan/internal/campaign"
	"callplan/internal/config"
	"callplan/internal/metrics"
	"callplan/internal/observability"
	"callplan/internal/schedule"
	"callplan/internal/scoring"
)

// Repository acceso a persistencia que necesita el planner. El núcleo de
// agenda es puro; este paquete es quien carga snapshots y guarda
// resultados.
type Repository interface {
	CallableContacts() ([]campaign.Contact, error)
	SaveSchedule(s *schedule.WeeklySchedule) error
	LoadSchedule(weekStart time.Time) (*schedule.WeeklySchedule, error)
}

// Notifier publica eventos de agenda hacia los clientes conectados
type Notifier interface {
	BroadcastEvent(tipo string, data interface{})
}

// Eventos publicados por el planner
const (
	EventPlanUpdated    = "plan_updated"
	EventDayRegenerated = "day_regenerated"
)

// Manager dueño del estado de agenda de la campaña
type Manager struct {
	mu       sync.Mutex
	repo     Repository
	store    *metrics.Store
	cfg      config.SchedulerConfig
	notifier Notifier
	current  *schedule.WeeklySchedule
}

// NewManager crea el administrador de agenda. notifier puede ser nil.
func NewManager(repo Repository, store *metrics.Store, cfg config.SchedulerConfig, notifier Notifier) *Manager {
	return &Manager{
		repo:     repo,
		store:    store,
		cfg:      cfg,
		notifier: notifier,
	}
}

// Current devuelve la agenda vigente (puede ser nil si aún no se generó).
// Los llamadores la tratan como solo lectura.
func (m *Manager) Current() *schedule.WeeklySchedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// EnsureWeek garantiza que exista agenda para la semana ISO de now.
// Si la agenda almacenada pertenece a otra semana se regenera completa.
// Devuelve nil sin error cuando no hay contactos llamables.
func (m *Manager) EnsureWeek(now time.Time) (*schedule.WeeklySchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	weekStart := schedule.MondayOf(now)

	if m.current != nil && m.current.WeekStart.Equal(weekStart) {
		return m.current, nil
	}

	// Intentar recuperar la agenda persistida de esta semana
	if almacenada, err := m.repo.LoadSchedule(weekStart); err == nil && almacenada != nil {
		m.current = almacenada
		m.publicarGauges(almacenada)
		return almacenada, nil
	}

	return m.regenerarSemana(now, weekStart)
}

// Regenerate fuerza la regeneración completa de la semana de now
func (m *Manager) Regenerate(now time.Time) (*schedule.WeeklySchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regenerarSemana(now, schedule.MondayOf(now))
}

func (m *Manager) regenerarSemana(now, weekStart time.Time) (*schedule.WeeklySchedule, error) {
	llamables, err := m.cargarLlamables()
	if err != nil {
		return nil, err
	}
	if len(llamables) == 0 {
		log.Println("[Planner] Sin contactos llamables; no se genera agenda")
		return nil, nil
	}

	inicio := time.Now()
	sched := schedule.GenerateWeeklyPlan(llamables, m.cfg, m.contexto(llamables), now)
	observability.DuracionGeneracion.Observe(time.Since(inicio).Seconds())

	if sched == nil {
		return nil, nil
	}

	if err := m.repo.SaveSchedule(sched); err != nil {
		return nil, fmt.Errorf("error guardando agenda: %w", err)
	}

	m.current = sched
	observability.PlanesGenerados.Inc()
	m.publicarGauges(sched)
	m.notificar(EventPlanUpdated, sched)

	log.Printf("[Planner] Agenda %s generada para la semana del %s (%d contactos, reserva %d)",
		sched.ID, weekStart.Format("2006-01-02"), totalAsignados(sched), sched.CallbackReserve)

	return sched, nil
}

// RegenerateDay rehace el plan de una fecha sin tocar los días hermanos.
// Las regeneraciones concurrentes de la misma fecha quedan serializadas
// por el mutex; gana la última.
func (m *Manager) RegenerateDay(fecha, now time.Time) (*schedule.WeeklySchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, fmt.Errorf("no hay agenda vigente para regenerar")
	}

	llamables, err := m.cargarLlamables()
	if err != nil {
		return nil, err
	}

	// El pool del día excluye lo ya asignado en los otros días y la
	// reserva de callbacks
	pool := m.poolParaDia(llamables, fecha)

	nuevo, err := schedule.RegenerateDayPlan(m.current, fecha, pool, m.cfg, m.contexto(pool), now)
	if err != nil {
		return nil, err
	}

	if err := m.repo.SaveSchedule(nuevo); err != nil {
		return nil, fmt.Errorf("error guardando agenda: %w", err)
	}

	m.current = nuevo
	observability.DiasRegenerados.Inc()
	m.publicarGauges(nuevo)
	m.notificar(EventDayRegenerated, nuevo)

	log.Printf("[Planner] Día %s regenerado en agenda %s", fecha.Format("2006-01-02"), nuevo.ID)

	return nuevo, nil
}

// MarkCompleted registra un contacto como completado dentro de su bloque,
// preservando el invariante completados ⊆ asignados. La escritura se
// aplica sobre un clon y se publica completa: los punteros entregados
// antes por Current o EnsureWeek nunca se mutan.
func (m *Manager) MarkCompleted(fecha time.Time, contactID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return fmt.Errorf("no hay agenda vigente")
	}
	idx := m.current.DiaPlan(fecha)
	if idx < 0 {
		return fmt.Errorf("la fecha %s no pertenece a la semana vigente", fecha.Format("2006-01-02"))
	}

	nuevo := m.current.Clone()
	dia := &nuevo.Days[idx]
	for b := range dia.Blocks {
		bloque := &dia.Blocks[b]
		if !contiene(bloque.ContactIDs, contactID) {
			continue
		}
		if contiene(bloque.CompletedIDs, contactID) {
			return nil // ya registrado
		}
		bloque.CompletedIDs = append(bloque.CompletedIDs, contactID)
		dia.Completed++
		if err := m.repo.SaveSchedule(nuevo); err != nil {
			return err
		}
		m.current = nuevo
		return nil
	}

	return fmt.Errorf("contacto %d no asignado el %s", contactID, fecha.Format("2006-01-02"))
}

// MarkSkipped incrementa el contador de saltados del día. Igual que
// MarkCompleted, escribe sobre un clon y lo publica completo.
func (m *Manager) MarkSkipped(fecha time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return fmt.Errorf("no hay agenda vigente")
	}
	idx := m.current.DiaPlan(fecha)
	if idx < 0 {
		return fmt.Errorf("la fecha %s no pertenece a la semana vigente", fecha.Format("2006-01-02"))
	}

	nuevo := m.current.Clone()
	nuevo.Days[idx].Skipped++
	if err := m.repo.SaveSchedule(nuevo); err != nil {
		return err
	}
	m.current = nuevo
	return nil
}

func (m *Manager) cargarLlamables() ([]campaign.Contact, error) {
	contactos, err := m.repo.CallableContacts()
	if err != nil {
		return nil, fmt.Errorf("error cargando contactos: %w", err)
	}
	return campaign.FiltrarLlamables(contactos), nil
}

// contexto arma el contexto de scoring del ciclo con el pool candidato y
// la tasa histórica de conexión por hora
func (m *Manager) contexto(pool []campaign.Contact) scoring.Context {
	return scoring.Context{
		Pool:              pool,
		ConnectRateByHour: metrics.ConnectRateByHour(m.store.Snapshot()),
	}
}

// poolParaDia filtra los llamables quitando lo asignado en otros días y
// la reserva de callbacks
func (m *Manager) poolParaDia(llamables []campaign.Contact, fecha time.Time) []campaign.Contact {
	ocupados := make(map[int64]bool)
	for _, id := range m.current.ReserveIDs {
		ocupados[id] = true
	}
	for i := range m.current.Days {
		if schedule.MismaFecha(m.current.Days[i].Fecha, fecha) {
			continue
		}
		for b := range m.current.Days[i].Blocks {
			for _, id := range m.current.Days[i].Blocks[b].ContactIDs {
				ocupados[id] = true
			}
		}
	}

	pool := make([]campaign.Contact, 0, len(llamables))
	for i := range llamables {
		if !ocupados[llamables[i].ID] {
			pool = append(pool, llamables[i])
		}
	}
	return pool
}

func (m *Manager) publicarGauges(sched *schedule.WeeklySchedule) {
	observability.ContactosAgendados.Set(float64(totalAsignados(sched)))
	observability.ReservaCallbacks.Set(float64(sched.CallbackReserve))
}

func (m *Manager) notificar(tipo string, data interface{}) {
	if m.notifier != nil {
		m.notifier.BroadcastEvent(tipo, data)
	}
}

func totalAsignados(sched *schedule.WeeklySchedule) int {
	total := 0
	for i := range sched.Days {
		total += sched.Days[i].Asignados
	}
	return total
}

func contiene(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
