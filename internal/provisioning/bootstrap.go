package provisioning

import (
	"database/sql"
	"fmt"
	"log"
	"os"
)

// schemaDDL esquema base del servicio; se ejecuta en cada arranque y es
// idempotente (CREATE TABLE IF NOT EXISTS)
const schemaDDL = `
CREATE TABLE IF NOT EXISTS callplan_contactos (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	nombre VARCHAR(200),
	telefono VARCHAR(32) NOT NULL,
	zona VARCHAR(64),
	contrato_estado VARCHAR(16),
	contrato_vence DATE,
	contrato_tipo VARCHAR(32),
	tipo_cliente VARCHAR(16),
	prioridad VARCHAR(8),
	estado VARCHAR(32) DEFAULT 'pending',
	intentos INT DEFAULT 0,
	ultimo_resultado VARCHAR(32),
	ultima_llamada DATETIME,
	callback DATETIME,
	no_llamar BOOLEAN DEFAULT FALSE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	INDEX idx_estado (estado),
	INDEX idx_zona (zona)
);

CREATE TABLE IF NOT EXISTS callplan_call_log (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	contact_id BIGINT,
	telefono VARCHAR(32),
	disposition VARCHAR(32),
	interesado BOOLEAN DEFAULT FALSE,
	duracion INT DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	INDEX idx_created (created_at)
);

CREATE TABLE IF NOT EXISTS callplan_hourly_metrics (
	fecha DATE NOT NULL,
	hora TINYINT NOT NULL,
	calls INT DEFAULT 0,
	connected INT DEFAULT 0,
	interested INT DEFAULT 0,
	voicemail INT DEFAULT 0,
	no_answer INT DEFAULT 0,
	avg_duration DOUBLE DEFAULT 0,
	PRIMARY KEY (fecha, hora)
);

CREATE TABLE IF NOT EXISTS callplan_schedules (
	week_start DATE PRIMARY KEY,
	schedule_id VARCHAR(36) NOT NULL,
	datos JSON NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS callplan_config (
	id INT AUTO_INCREMENT PRIMARY KEY,
	config_key VARCHAR(64) UNIQUE NOT NULL,
	config_value TEXT,
	description VARCHAR(255)
);

CREATE TABLE IF NOT EXISTS callplan_users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(64) UNIQUE NOT NULL,
	password_hash VARCHAR(100) NOT NULL,
	role VARCHAR(16) DEFAULT 'agent',
	full_name VARCHAR(120),
	active BOOLEAN DEFAULT TRUE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)
`

// EnsureSchema garantiza que el esquema del servicio exista y aplica
// las migraciones adicionales si el directorio está presente
func EnsureSchema(db *sql.DB, migrationsPath string) error {
	log.Println("[Provisioner] Verificando esquema...")

	if err := execStatements(db, schemaDDL); err != nil {
		return fmt.Errorf("error creando esquema base: %w", err)
	}

	if migrationsPath != "" {
		if _, err := os.Stat(migrationsPath); err == nil {
			if err := RunMigrations(db, migrationsPath); err != nil {
				log.Printf("[Provisioner] Warning: error corriendo migraciones: %v", err)
			}
		}
	}

	return nil
}
