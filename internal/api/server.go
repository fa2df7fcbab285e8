package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"callplan/internal/auth"
	"callplan/internal/callback"
	"callplan/internal/config"
	"callplan/internal/database"
	"callplan/internal/metrics"
	"callplan/internal/observability"
	"callplan/internal/planner"
	"callplan/internal/websocket"
)

// Server representa el servidor API REST
type Server struct {
	config   *config.Config
	repo     *database.Repository
	store    *metrics.Store
	manager  *planner.Manager
	monitor  *planner.Monitor
	resolver *callback.Resolver
	hub      *websocket.Hub
}

// NewServer crea un nuevo servidor API
func NewServer(cfg *config.Config, repo *database.Repository, store *metrics.Store,
	manager *planner.Manager, monitor *planner.Monitor, resolver *callback.Resolver,
	hub *websocket.Hub) *Server {
	return &Server{
		config:   cfg,
		repo:     repo,
		store:    store,
		manager:  manager,
		monitor:  monitor,
		resolver: resolver,
		hub:      hub,
	}
}

// Start inicia el servidor HTTP
func (s *Server) Start() error {
	addr := s.config.API.Address()
	log.Printf("[API] Iniciando servidor en %s", addr)

	mux := http.NewServeMux()

	// Endpoints públicos
	mux.HandleFunc("/api/v1/login", s.handleLogin)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(observability.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/ws", s.hub.HandleWebSocket)

	// Rutas protegidas detrás del middleware JWT
	protectedMux := http.NewServeMux()

	protectedMux.HandleFunc("/api/v1/plan", s.handlePlan)
	protectedMux.HandleFunc("/api/v1/plan/generate", s.handlePlanGenerate)
	protectedMux.HandleFunc("/api/v1/plan/day/regenerate", s.handleDayRegenerate)
	protectedMux.HandleFunc("/api/v1/plan/complete", s.handlePlanComplete)
	protectedMux.HandleFunc("/api/v1/plan/skip", s.handlePlanSkip)

	protectedMux.HandleFunc("/api/v1/failures", s.handleFailures)
	protectedMux.HandleFunc("/api/v1/callback/parse", s.handleCallbackParse)
	protectedMux.HandleFunc("/api/v1/outcomes", s.handleOutcomes)
	protectedMux.HandleFunc("/api/v1/metrics/hourly", s.handleHourlyMetrics)
	protectedMux.HandleFunc("/api/v1/logs", s.handleLogs)

	protectedMux.HandleFunc("/api/v1/users", s.handleUsers)
	protectedMux.HandleFunc("/api/v1/users/delete", s.handleUserDelete)

	// Enrutador entre público y protegido
	mainHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/login" || !strings.HasPrefix(r.URL.Path, "/api/v1/") {
			mux.ServeHTTP(w, r)
			return
		}
		auth.Middleware(protectedMux).ServeHTTP(w, r)
	})

	log.Printf("[API] Servidor iniciado correctamente")

	return http.ListenAndServe(addr, s.corsMiddleware(mainHandler))
}

// corsMiddleware agrega headers CORS si está habilitado
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.API.EnableCORS {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[API] PANIC RECOVERED: %v", rec)
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprintf(w, `{"error": "Internal Server Error"}`)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// handlePlan devuelve la agenda de la semana en curso, generándola si
// la almacenada pertenece a otra semana
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	sched, err := s.manager.EnsureWeek(time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sched == nil {
		http.Error(w, "Sin contactos llamables para agendar", http.StatusNotFound)
		return
	}

	respondJSON(w, sched)
}

// handlePlanGenerate fuerza la regeneración completa de la semana
func (s *Server) handlePlanGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	sched, err := s.manager.Regenerate(time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sched == nil {
		http.Error(w, "Sin contactos llamables para agendar", http.StatusNotFound)
		return
	}

	log.Printf("[API] Agenda regenerada: %s", sched.ID)
	respondJSON(w, sched)
}

// handleDayRegenerate rehace el plan de una fecha sin tocar el resto de
// la semana
func (s *Server) handleDayRegenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Fecha string `json:"fecha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	fecha, err := time.ParseInLocation("2006-01-02", req.Fecha, time.Local)
	if err != nil {
		http.Error(w, "fecha inválida, formato esperado 2006-01-02", http.StatusBadRequest)
		return
	}

	sched, err := s.manager.RegenerateDay(fecha, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, sched)
}

// handlePlanComplete marca un contacto como completado en su bloque
func (s *Server) handlePlanComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Fecha     string `json:"fecha"`
		ContactID int64  `json:"contact_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	fecha, err := time.ParseInLocation("2006-01-02", req.Fecha, time.Local)
	if err != nil {
		http.Error(w, "fecha inválida, formato esperado 2006-01-02", http.StatusBadRequest)
		return
	}

	if err := s.manager.MarkCompleted(fecha, req.ContactID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, map[string]interface{}{"success": true})
}

// handlePlanSkip incrementa el contador de saltados del día
func (s *Server) handlePlanSkip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Fecha string `json:"fecha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	fecha, err := time.ParseInLocation("2006-01-02", req.Fecha, time.Local)
	if err != nil {
		http.Error(w, "fecha inválida, formato esperado 2006-01-02", http.StatusBadRequest)
		return
	}

	if err := s.manager.MarkSkipped(fecha); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, map[string]interface{}{"success": true})
}

// handleFailures ejecuta el chequeo de condiciones y devuelve el estado
// actual (no una bitácora acumulada)
func (s *Server) handleFailures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	condiciones := s.monitor.Check(time.Now())
	respondJSON(w, condiciones)
}

// handleCallbackParse resuelve una frase libre de agendamiento y, si se
// indica contacto, persiste el callback resultante
func (s *Server) handleCallbackParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Input     string `json:"input"`
		ContactID int64  `json:"contact_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Input == "" {
		http.Error(w, "input es requerido", http.StatusBadRequest)
		return
	}

	resultado := s.resolver.Parse(req.Input, s.store.Snapshot(), time.Now())
	observability.CallbacksParseados.WithLabelValues(resultado.Confidence).Inc()

	if req.ContactID != 0 {
		if err := s.repo.UpdateContactCallback(req.ContactID, resultado.ScheduledFor); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	log.Printf("[API] Callback resuelto: %q -> %s (%s)", req.Input,
		resultado.ScheduledFor.Format("2006-01-02 15:04"), resultado.Confidence)

	respondJSON(w, resultado)
}

// handleOutcomes ingesta el resultado de una llamada: actualiza el cupo
// horario en memoria, lo persiste y encola el log individual
func (s *Server) handleOutcomes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ContactID       int64  `json:"contact_id"`
		Telefono        string `json:"telefono"`
		Disposition     string `json:"disposition"`
		Interested      bool   `json:"interested"`
		DurationSeconds int    `json:"duration_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if req.Disposition == "" {
		http.Error(w, "disposition es requerido", http.StatusBadRequest)
		return
	}

	now := time.Now()
	outcome := metrics.Outcome{
		Connected:       req.Disposition == database.DispositionConnected,
		Interested:      req.Interested,
		Voicemail:       req.Disposition == database.DispositionVoicemail,
		NoAnswer:        req.Disposition == database.DispositionNoAnswer,
		DurationSeconds: req.DurationSeconds,
	}
	s.store.RecordOutcome(outcome, now)
	observability.ResultadosRegistrados.Inc()

	s.repo.QueueCallLog(database.CallLog{
		ContactID:   req.ContactID,
		Telefono:    req.Telefono,
		Disposition: req.Disposition,
		Interesado:  req.Interested,
		Duracion:    req.DurationSeconds,
	})

	// Persistir el cupo horario tocado
	fecha := now.Format("2006-01-02")
	for _, m := range s.store.Snapshot() {
		if m.Fecha == fecha && m.Hora == now.Hour() {
			if err := s.repo.UpsertHourlyMetric(m); err != nil {
				log.Printf("[API] Error persistiendo métrica horaria: %v", err)
			}
			s.hub.BroadcastEvent(websocket.EventMetricsUpdate, m)
			break
		}
	}

	respondJSON(w, map[string]interface{}{"success": true})
}

// handleHourlyMetrics devuelve el snapshot del almacén horario
func (s *Server) handleHourlyMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}
	respondJSON(w, s.store.Snapshot())
}

// handleLogs devuelve los resultados de llamada más recientes
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	logs, err := s.repo.GetRecentCallLogs(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, logs)
}

// handleLogin autentica y emite el token JWT
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	user, err := s.repo.GetUserByUsername(creds.Username)
	if err != nil || user == nil {
		log.Printf("[Auth] Fallo login para usuario: %s", creds.Username)
		http.Error(w, "Credenciales inválidas", http.StatusUnauthorized)
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, creds.Password); err != nil {
		log.Printf("[Auth] Contraseña incorrecta para usuario: %s", creds.Username)
		http.Error(w, "Credenciales inválidas", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		http.Error(w, "Error generando token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"token": token,
		"user": map[string]string{
			"username": user.Username,
			"role":     user.Role,
			"fullName": user.FullName,
		},
	})
}

// handleUsers administra usuarios
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.repo.ListUsers()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, users)

	case http.MethodPost:
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
			FullName string `json:"full_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "JSON inválido", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Password == "" {
			http.Error(w, "username y password son requeridos", http.StatusBadRequest)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			http.Error(w, "Error generando hash", http.StatusInternalServerError)
			return
		}
		if req.Role == "" {
			req.Role = "agent"
		}

		if err := s.repo.CreateUser(&database.User{
			Username:     req.Username,
			PasswordHash: hash,
			Role:         req.Role,
			FullName:     req.FullName,
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]interface{}{"success": true})

	default:
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
	}
}

// handleUserDelete elimina un usuario por ID
func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	if err := s.repo.DeleteUser(req.ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]interface{}{"success": true})
}

// handleHealth responde el estado del servicio
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
