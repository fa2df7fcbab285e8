package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config estructura principal de configuración
type Config struct {
	API       APIConfig       `yaml:"api"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

type APIConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	EnableCORS bool   `yaml:"enable_cors"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`

	// Directorio opcional con migraciones .sql adicionales
	MigrationsPath string `yaml:"migrations_path"`
}

// SchedulerConfig parámetros del motor de priorización y de la agenda semanal
type SchedulerConfig struct {
	MaxCallsPerDay         int     `yaml:"max_calls_per_day"`
	CallbackReservePercent float64 `yaml:"callback_reserve_percent"`
	WorkStartHour          float64 `yaml:"work_start_hour"`
	WorkEndHour            float64 `yaml:"work_end_hour"`
	LunchStartHour         float64 `yaml:"lunch_start_hour"`
	LunchEndHour           float64 `yaml:"lunch_end_hour"`
	AvgCallCycleMinutes    int     `yaml:"avg_call_cycle_minutes"`
	BufferMinutesPerHour   int     `yaml:"buffer_minutes_per_hour"`
	ConnectRateThreshold   float64 `yaml:"connect_rate_threshold"`
	InterestRateThreshold  float64 `yaml:"interest_rate_threshold"`
	LowVelocityThreshold   float64 `yaml:"low_velocity_threshold"`
	FailureWindowHours     int     `yaml:"failure_window_hours"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultScheduler devuelve los valores operativos usados cuando el YAML
// no especifica la sección scheduler
func DefaultScheduler() SchedulerConfig {
	return SchedulerConfig{
		MaxCallsPerDay:         35,
		CallbackReservePercent: 10,
		WorkStartHour:          8,
		WorkEndHour:            17,
		LunchStartHour:         13,
		LunchEndHour:           14,
		AvgCallCycleMinutes:    5,
		BufferMinutesPerHour:   10,
		ConnectRateThreshold:   20,
		InterestRateThreshold:  15,
		LowVelocityThreshold:   4,
		FailureWindowHours:     3,
	}
}

// Load carga la configuración desde archivo YAML
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error leyendo archivo de configuración: %w", err)
	}

	cfg := Config{Scheduler: DefaultScheduler()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parseando YAML: %w", err)
	}

	// Permitir sobrescribir con variables de entorno
	overrideWithEnv(&cfg)

	applySchedulerDefaults(&cfg.Scheduler)

	return &cfg, nil
}

// overrideWithEnv permite sobrescribir configuración con variables de entorno
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("CALLPLAN_DB_USERNAME"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("CALLPLAN_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("CALLPLAN_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("CALLPLAN_DB_DATABASE"); v != "" {
		cfg.Database.Database = v
	}
	if v := os.Getenv("CALLPLAN_MAX_CALLS_PER_DAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scheduler.MaxCallsPerDay = n
		}
	}
}

// applySchedulerDefaults rellena campos numéricos que quedaron en cero tras
// parsear el YAML (cero nunca es un valor operativo válido en esta sección)
func applySchedulerDefaults(s *SchedulerConfig) {
	def := DefaultScheduler()
	if s.MaxCallsPerDay <= 0 {
		s.MaxCallsPerDay = def.MaxCallsPerDay
	}
	if s.CallbackReservePercent <= 0 {
		s.CallbackReservePercent = def.CallbackReservePercent
	}
	if s.WorkStartHour <= 0 {
		s.WorkStartHour = def.WorkStartHour
	}
	if s.WorkEndHour <= 0 {
		s.WorkEndHour = def.WorkEndHour
	}
	if s.LunchStartHour <= 0 {
		s.LunchStartHour = def.LunchStartHour
	}
	if s.LunchEndHour <= 0 {
		s.LunchEndHour = def.LunchEndHour
	}
	if s.AvgCallCycleMinutes <= 0 {
		s.AvgCallCycleMinutes = def.AvgCallCycleMinutes
	}
	if s.BufferMinutesPerHour <= 0 {
		s.BufferMinutesPerHour = def.BufferMinutesPerHour
	}
	if s.ConnectRateThreshold <= 0 {
		s.ConnectRateThreshold = def.ConnectRateThreshold
	}
	if s.InterestRateThreshold <= 0 {
		s.InterestRateThreshold = def.InterestRateThreshold
	}
	if s.LowVelocityThreshold <= 0 {
		s.LowVelocityThreshold = def.LowVelocityThreshold
	}
	if s.FailureWindowHours <= 0 {
		s.FailureWindowHours = def.FailureWindowHours
	}
}

// Address devuelve la dirección completa del servidor API
func (a APIConfig) Address() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// DSN devuelve el Data Source Name para MySQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}
