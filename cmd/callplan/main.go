package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"callplan/internal/api"
	"callplan/internal/callback"
	"callplan/internal/config"
	"callplan/internal/database"
	"callplan/internal/metrics"
	"callplan/internal/planner"
	"callplan/internal/provisioning"
	"callplan/internal/schedule"
	"callplan/internal/websocket"
)

const defaultConfigPath = "/etc/callplan/callplan.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "start":
		cmdStart()
	case "plan":
		cmdPlan()
	case "status":
		cmdStatus()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Comando desconocido: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Microservicio Callplan - Priorización y Agenda de Llamadas")
	fmt.Println()
	fmt.Println("Uso:")
	fmt.Println("  callplan start                   Inicia el servicio completo")
	fmt.Println("  callplan plan show               Muestra la agenda semanal vigente")
	fmt.Println("  callplan plan generate           Genera la agenda de la semana en curso")
	fmt.Println("  callplan plan regenerate <fecha> Rehace el plan de una fecha (2006-01-02)")
	fmt.Println("  callplan status                  Muestra estado del servicio")
	fmt.Println()
}

// cmdStart inicia todos los servicios
func cmdStart() {
	log.Println("[Main] Callplan Service v1.0")
	log.Println("[Main] Iniciando servicios...")

	cfg := cargarConfig()

	// Conectar a base de datos
	dbConn, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("[Main] Error conectando a base de datos: %v", err)
	}
	defer dbConn.Close()

	// Auto-provisioning del esquema
	if err := provisioning.EnsureSchema(dbConn.DB, cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("[Main] Error provisionando esquema: %v", err)
	}

	repo := database.NewRepository(dbConn)
	log.Println("[Main] ✓ Base de datos conectada")

	// Almacén horario en memoria, sembrado con el historial persistido
	store := metrics.NewStore()
	if historial, err := repo.LoadHourlyMetrics(30); err != nil {
		log.Printf("[Main] Advertencia: no se pudo cargar historial de métricas: %v", err)
	} else {
		store.Load(historial)
		log.Printf("[Main] ✓ Historial de métricas cargado (%d cubetas)", len(historial))
	}

	// Hub WebSocket para notificaciones en tiempo real
	hub := websocket.NewHub()
	go hub.Run()
	log.Println("[Main] ✓ Hub WebSocket iniciado")

	// Gestor de agenda semanal
	manager := planner.NewManager(repo, store, cfg.Scheduler, hub)
	if _, err := manager.EnsureWeek(time.Now()); err != nil {
		log.Printf("[Main] Advertencia: no se pudo preparar la agenda inicial: %v", err)
	} else {
		log.Println("[Main] ✓ Agenda semanal preparada")
	}

	// Monitor de condiciones de falla
	monitor := planner.NewMonitor(store, cfg.Scheduler, hub)
	monitor.Start()
	defer monitor.Stop()
	log.Println("[Main] ✓ Monitor de condiciones iniciado")

	// Resolutor de frases de callback
	resolver := callback.NewResolver(time.Now().UnixNano())

	// Iniciar API REST
	apiServer := api.NewServer(cfg, repo, store, manager, monitor, resolver, hub)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Fatalf("[Main] Error iniciando API: %v", err)
		}
	}()

	log.Println("[Main] ========================================")
	log.Printf("[Main] API REST escuchando en %s", cfg.API.Address())
	log.Println("[Main] Servicio iniciado correctamente")
	log.Println("[Main] Presiona Ctrl+C para detener")
	log.Println("[Main] ========================================")

	// Esperar señal de terminación
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("[Main] Deteniendo servicio...")
	repo.Close()
}

// cmdPlan gestiona la agenda semanal desde la terminal
func cmdPlan() {
	if len(os.Args) < 3 {
		fmt.Println("Uso:")
		fmt.Println("  callplan plan show")
		fmt.Println("  callplan plan generate")
		fmt.Println("  callplan plan regenerate <fecha>")
		os.Exit(1)
	}

	subcommand := os.Args[2]

	cfg := cargarConfig()

	dbConn, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Error conectando a base de datos: %v", err)
	}
	defer dbConn.Close()

	repo := database.NewRepository(dbConn)

	store := metrics.NewStore()
	if historial, err := repo.LoadHourlyMetrics(30); err == nil {
		store.Load(historial)
	}

	manager := planner.NewManager(repo, store, cfg.Scheduler, nil)

	switch subcommand {
	case "show":
		sched, err := manager.EnsureWeek(time.Now())
		if err != nil {
			fmt.Printf("Error obteniendo agenda: %v\n", err)
			os.Exit(1)
		}
		imprimirAgenda(sched)
	case "generate":
		sched, err := manager.Regenerate(time.Now())
		if err != nil {
			fmt.Printf("Error generando agenda: %v\n", err)
			os.Exit(1)
		}
		if sched == nil {
			fmt.Println("Sin contactos llamables para agendar")
			return
		}
		fmt.Printf("✓ Agenda %s generada (%d contactos, %d en reserva)\n",
			sched.ID, totalAsignados(sched), sched.CallbackReserve)
	case "regenerate":
		if len(os.Args) < 4 {
			fmt.Println("Uso: callplan plan regenerate <fecha>")
			os.Exit(1)
		}
		fecha, err := time.ParseInLocation("2006-01-02", os.Args[3], time.Local)
		if err != nil {
			fmt.Printf("Fecha inválida: %v\n", err)
			os.Exit(1)
		}
		if _, err := manager.EnsureWeek(time.Now()); err != nil {
			fmt.Printf("Error obteniendo agenda: %v\n", err)
			os.Exit(1)
		}
		sched, err := manager.RegenerateDay(fecha, time.Now())
		if err != nil {
			fmt.Printf("Error regenerando día: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Día %s regenerado en agenda %s\n", os.Args[3], sched.ID)
	default:
		fmt.Printf("Subcomando desconocido: %s\n", subcommand)
		os.Exit(1)
	}
}

// imprimirAgenda muestra la semana en formato tabular
func imprimirAgenda(sched *schedule.WeeklySchedule) {
	if sched == nil {
		fmt.Println("No hay agenda vigente")
		return
	}

	fmt.Printf("Agenda %s (semana del %s)\n", sched.ID, sched.WeekStart.Format("2006-01-02"))
	fmt.Printf("Reserva de callbacks: %d contactos\n\n", sched.CallbackReserve)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FECHA\tDÍA\tBLOQUE\tHORARIO\tCUPO\tASIGNADOS")
	fmt.Fprintln(w, "-----\t---\t------\t-------\t----\t---------")

	for _, dia := range sched.Days {
		for _, b := range dia.Blocks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%04.1f-%04.1f\t%d\t%d\n",
				dia.Fecha.Format("2006-01-02"), dia.DiaSemana, b.Etiqueta,
				b.StartHour, b.EndHour, b.Capacity, len(b.ContactIDs))
		}
	}

	w.Flush()
}

// totalAsignados suma los contactos asignados en todos los días
func totalAsignados(sched *schedule.WeeklySchedule) int {
	total := 0
	for _, dia := range sched.Days {
		total += dia.Asignados
	}
	return total
}

// cmdStatus muestra el estado del servicio
func cmdStatus() {
	fmt.Println("Callplan Service Status")
	fmt.Println("=======================")
	fmt.Println()
	fmt.Println("Para verificar el estado del servicio:")
	fmt.Println("  systemctl status callplan")
	fmt.Println()
	fmt.Println("Para ver logs en tiempo real:")
	fmt.Println("  journalctl -u callplan -f")
	fmt.Println()
	fmt.Println("Para verificar API REST:")
	fmt.Println("  curl http://localhost:8080/health")
}

// cargarConfig resuelve la ruta de configuración y la carga
func cargarConfig() *config.Config {
	configPath := os.Getenv("CALLPLAN_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("[Main] Error cargando configuración: %v", err)
	}
	return cfg
}
