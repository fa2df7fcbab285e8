package database

import (
	"database/sql"
	"log"
	"strings"
	"sync"
	"time"
)

const (
	BatchSize     = 500
	FlushInterval = 500 * time.Millisecond
	BufferSize    = 2000
)

// OutcomeBatcher acumula resultados de llamada y los escribe en lotes
// para no castigar la base con un INSERT por disposición
type OutcomeBatcher struct {
	db        *sql.DB
	outcomes  chan CallLog
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewOutcomeBatcher crea un batcher de resultados
func NewOutcomeBatcher(db *sql.DB) *OutcomeBatcher {
	return &OutcomeBatcher{
		db:       db,
		outcomes: make(chan CallLog, BufferSize),
	}
}

// Start inicia el worker de fondo
func (b *OutcomeBatcher) Start() {
	b.mu.Lock()
	if b.isRunning {
		b.mu.Unlock()
		return
	}
	b.isRunning = true
	b.wg.Add(1)
	b.mu.Unlock()

	go b.worker()
	log.Println("[OutcomeBatcher] Worker iniciado")
}

// Stop vacía lo pendiente y detiene el worker
func (b *OutcomeBatcher) Stop() {
	b.mu.Lock()
	if !b.isRunning {
		b.mu.Unlock()
		return
	}
	b.isRunning = false
	b.mu.Unlock()

	close(b.outcomes)
	b.wg.Wait()
	log.Println("[OutcomeBatcher] Worker detenido")
}

// Queue agrega un resultado al buffer
func (b *OutcomeBatcher) Queue(outcome CallLog) {
	select {
	case b.outcomes <- outcome:
	default:
		// Descartar antes que bloquear la ingesta
		log.Printf("[OutcomeBatcher] WARNING: Buffer lleno, descartando resultado del contacto %d", outcome.ContactID)
	}
}

func (b *OutcomeBatcher) worker() {
	defer b.wg.Done()

	buffer := make([]CallLog, 0, BatchSize)
	ticker := time.NewTicker(FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case outcome, ok := <-b.outcomes:
			if !ok {
				if len(buffer) > 0 {
					b.flush(buffer)
				}
				return
			}
			buffer = append(buffer, outcome)
			if len(buffer) >= BatchSize {
				b.flush(buffer)
				buffer = buffer[:0]
			}
		case <-ticker.C:
			if len(buffer) > 0 {
				b.flush(buffer)
				buffer = buffer[:0]
			}
		}
	}
}

func (b *OutcomeBatcher) flush(outcomes []CallLog) {
	if len(outcomes) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO callplan_call_log (contact_id, telefono, disposition, interesado, duracion) VALUES `)

	args := make([]interface{}, 0, len(outcomes)*5)
	for i, o := range outcomes {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, o.ContactID, o.Telefono, o.Disposition, o.Interesado, o.Duracion)
	}

	if _, err := b.db.Exec(sb.String(), args...); err != nil {
		log.Printf("[OutcomeBatcher] Error escribiendo lote de %d resultados: %v", len(outcomes), err)
		return
	}
}
