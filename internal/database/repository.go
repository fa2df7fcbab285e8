package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"callplan/internal/campaign"
	"callplan/internal/metrics"
	"callplan/internal/schedule"
)

// Repository maneja las operaciones de base de datos
type Repository struct {
	conn    *Connection
	batcher *OutcomeBatcher
}

// NewRepository crea un nuevo repositorio con su batcher de resultados
func NewRepository(conn *Connection) *Repository {
	repo := &Repository{
		conn:    conn,
		batcher: NewOutcomeBatcher(conn.DB),
	}
	repo.batcher.Start()
	return repo
}

// Close cierra recursos del repositorio
func (r *Repository) Close() {
	if r.batcher != nil {
		r.batcher.Stop()
	}
}

// GetDB devuelve el *sql.DB subyacente
func (r *Repository) GetDB() *sql.DB {
	return r.conn.DB
}

// --- CONTACTOS ---

const contactColumns = `
	id, COALESCE(nombre, ''), telefono, COALESCE(zona, ''),
	COALESCE(contrato_estado, ''), contrato_vence, COALESCE(contrato_tipo, ''),
	COALESCE(tipo_cliente, ''), COALESCE(prioridad, ''), COALESCE(estado, 'pending'),
	intentos, COALESCE(ultimo_resultado, ''), ultima_llamada, callback, no_llamar`

// CallableContacts carga los contactos cuyo estado permite marcarlos
func (r *Repository) CallableContacts() ([]campaign.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM callplan_contactos
		WHERE no_llamar = FALSE
		  AND estado IN ('pending', 'queued', 'no_answer', 'busy', 'callback_scheduled')
		ORDER BY id
	`

	rows, err := r.conn.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error consultando contactos: %w", err)
	}
	defer rows.Close()

	contactos := make([]campaign.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contactos = append(contactos, c)
	}
	return contactos, nil
}

// GetContact obtiene un contacto por ID
func (r *Repository) GetContact(id int64) (*campaign.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM callplan_contactos WHERE id = ?`

	rows, err := r.conn.DB.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("error consultando contacto: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("contacto %d no encontrado", id)
	}
	c, err := scanContact(rows)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanContact(rows *sql.Rows) (campaign.Contact, error) {
	var c campaign.Contact
	var contratoVence, ultimaLlamada, callback sql.NullTime
	err := rows.Scan(
		&c.ID, &c.Nombre, &c.Telefono, &c.Zona,
		&c.ContratoEstado, &contratoVence, &c.ContratoTipo,
		&c.TipoCliente, &c.Prioridad, &c.Estado,
		&c.Intentos, &c.UltimoResultado, &ultimaLlamada, &callback, &c.NoLlamar,
	)
	if err != nil {
		return c, fmt.Errorf("error escaneando contacto: %w", err)
	}
	if contratoVence.Valid {
		c.ContratoVence = &contratoVence.Time
	}
	if ultimaLlamada.Valid {
		c.UltimaLlamada = &ultimaLlamada.Time
	}
	if callback.Valid {
		c.Callback = &callback.Time
	}
	return c, nil
}

// UpdateContactCallback agenda el callback resuelto sobre el contacto
func (r *Repository) UpdateContactCallback(id int64, scheduledFor time.Time) error {
	query := `
		UPDATE callplan_contactos
		SET callback = ?, estado = 'callback_scheduled'
		WHERE id = ?
	`
	result, err := r.conn.DB.Exec(query, scheduledFor, id)
	if err != nil {
		return fmt.Errorf("error agendando callback: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("contacto %d no encontrado", id)
	}
	return nil
}

// --- AGENDA SEMANAL ---

// SaveSchedule persiste la agenda como documento JSON clavado por lunes
// de semana. Reemplaza la versión anterior de la misma semana.
func (r *Repository) SaveSchedule(s *schedule.WeeklySchedule) error {
	datos, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("error serializando agenda: %w", err)
	}

	query := `
		INSERT INTO callplan_schedules (week_start, schedule_id, datos)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE schedule_id = VALUES(schedule_id), datos = VALUES(datos)
	`
	_, err = r.conn.DB.Exec(query, s.WeekStart.Format("2006-01-02"), s.ID, datos)
	if err != nil {
		return fmt.Errorf("error guardando agenda: %w", err)
	}
	return nil
}

// LoadSchedule recupera la agenda de la semana dada; (nil, nil) si no existe
func (r *Repository) LoadSchedule(weekStart time.Time) (*schedule.WeeklySchedule, error) {
	query := `SELECT datos FROM callplan_schedules WHERE week_start = ?`

	var datos []byte
	err := r.conn.DB.QueryRow(query, weekStart.Format("2006-01-02")).Scan(&datos)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando agenda: %w", err)
	}

	var s schedule.WeeklySchedule
	if err := json.Unmarshal(datos, &s); err != nil {
		return nil, fmt.Errorf("error deserializando agenda: %w", err)
	}
	return &s, nil
}

// --- RESULTADOS DE LLAMADA ---

// QueueCallLog encola el resultado de una llamada para escritura en lote
func (r *Repository) QueueCallLog(log CallLog) {
	r.batcher.Queue(log)
}

// GetRecentCallLogs obtiene los resultados más recientes
func (r *Repository) GetRecentCallLogs(limit int) ([]CallLog, error) {
	query := `
		SELECT id, contact_id, telefono, COALESCE(disposition, ''), interesado, duracion, created_at
		FROM callplan_call_log
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.conn.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("error consultando logs: %w", err)
	}
	defer rows.Close()

	logs := make([]CallLog, 0)
	for rows.Next() {
		var l CallLog
		if err := rows.Scan(&l.ID, &l.ContactID, &l.Telefono, &l.Disposition, &l.Interesado, &l.Duracion, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("error escaneando log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// --- MÉTRICAS HORARIAS ---

// UpsertHourlyMetric persiste un cupo horario completo
func (r *Repository) UpsertHourlyMetric(m metrics.HourlyMetric) error {
	query := `
		INSERT INTO callplan_hourly_metrics (fecha, hora, calls, connected, interested, voicemail, no_answer, avg_duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			calls = VALUES(calls), connected = VALUES(connected),
			interested = VALUES(interested), voicemail = VALUES(voicemail),
			no_answer = VALUES(no_answer), avg_duration = VALUES(avg_duration)
	`
	_, err := r.conn.DB.Exec(query, m.Fecha, m.Hora, m.Calls, m.Connected,
		m.Interested, m.Voicemail, m.NoAnswer, m.AvgDuration)
	if err != nil {
		return fmt.Errorf("error guardando métrica horaria: %w", err)
	}
	return nil
}

// LoadHourlyMetrics carga el historial horario de los últimos días
func (r *Repository) LoadHourlyMetrics(days int) ([]metrics.HourlyMetric, error) {
	query := `
		SELECT fecha, hora, calls, connected, interested, voicemail, no_answer, avg_duration
		FROM callplan_hourly_metrics
		WHERE fecha >= DATE_SUB(CURDATE(), INTERVAL ? DAY)
		ORDER BY fecha, hora
	`
	rows, err := r.conn.DB.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("error consultando métricas: %w", err)
	}
	defer rows.Close()

	historial := make([]metrics.HourlyMetric, 0)
	for rows.Next() {
		var m metrics.HourlyMetric
		if err := rows.Scan(&m.Fecha, &m.Hora, &m.Calls, &m.Connected,
			&m.Interested, &m.Voicemail, &m.NoAnswer, &m.AvgDuration); err != nil {
			return nil, fmt.Errorf("error escaneando métrica: %w", err)
		}
		historial = append(historial, m)
	}
	return historial, nil
}

// --- CONFIGURACIÓN ---

// GetConfig obtiene un valor de configuración por clave
func (r *Repository) GetConfig(key string) (string, error) {
	query := `SELECT config_value FROM callplan_config WHERE config_key = ?`
	var value string
	err := r.conn.DB.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetConfig establece o actualiza un valor de configuración
func (r *Repository) SetConfig(key, value, description string) error {
	query := `
		INSERT INTO callplan_config (config_key, config_value, description)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			config_value = VALUES(config_value),
			description = COALESCE(VALUES(description), description)
	`
	_, err := r.conn.DB.Exec(query, key, value, description)
	return err
}

// --- USUARIOS ---

func (r *Repository) GetUserByUsername(username string) (*User, error) {
	query := `SELECT id, username, password_hash, role, full_name, active FROM callplan_users WHERE username = ?`
	row := r.conn.DB.QueryRow(query, username)

	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.FullName, &u.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) CreateUser(u *User) error {
	query := `INSERT INTO callplan_users (username, password_hash, role, full_name) VALUES (?, ?, ?, ?)`
	_, err := r.conn.DB.Exec(query, u.Username, u.PasswordHash, u.Role, u.FullName)
	return err
}

func (r *Repository) ListUsers() ([]User, error) {
	query := `SELECT id, username, role, full_name, active FROM callplan_users`
	rows, err := r.conn.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.FullName, &u.Active); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *Repository) DeleteUser(id int) error {
	_, err := r.conn.DB.Exec("DELETE FROM callplan_users WHERE id = ?", id)
	return err
}
