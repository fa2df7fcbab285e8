package schedule

import "callplan/internal/config"

// BloquesDelDia construye la plantilla de bloques de un día a partir de
// los límites horarios configurados. La capacidad de cada bloque se acota
// por el ritmo real de marcado: (60 - buffer) / ciclo llamadas por hora.
func BloquesDelDia(cfg config.SchedulerConfig) []TimeBlock {
	porHora := callsPerHour(cfg)

	plantilla := []TimeBlock{
		{Etiqueta: "Preparación / primeros intentos", StartHour: cfg.WorkStartHour, EndHour: cfg.WorkStartHour + 1, Capacity: 5},
		{Etiqueta: "Bloque de alta conexión", StartHour: cfg.WorkStartHour + 1, EndHour: 12, Capacity: 15},
		{Etiqueta: "Repaso de media jornada", StartHour: 12, EndHour: cfg.LunchStartHour, Capacity: 10},
		{Etiqueta: "Almuerzo", StartHour: cfg.LunchStartHour, EndHour: cfg.LunchEndHour, Capacity: 0},
		{Etiqueta: "Desborde de tarde", StartHour: cfg.LunchEndHour, EndHour: cfg.WorkEndHour, Capacity: 10},
	}

	for i := range plantilla {
		horas := plantilla[i].EndHour - plantilla[i].StartHour
		if horas < 0 {
			horas = 0
		}
		tope := int(horas * float64(porHora))
		if plantilla[i].Capacity > tope {
			plantilla[i].Capacity = tope
		}
		plantilla[i].ContactIDs = []int64{}
		plantilla[i].CompletedIDs = []int64{}
	}

	return plantilla
}

func callsPerHour(cfg config.SchedulerConfig) int {
	minutosUtiles := 60 - cfg.BufferMinutesPerHour
	if minutosUtiles <= 0 || cfg.AvgCallCycleMinutes <= 0 {
		return 0
	}
	return minutosUtiles / cfg.AvgCallCycleMinutes
}

// AssignToBlocks reparte el flujo de contactos ya loteados sobre los
// bloques del día, en orden, respetando la capacidad de cada bloque y el
// tope diario global. Es un llenado voraz de izquierda a derecha: el
// loteo previo ya codifica prioridad y geografía, así que aquí solo se
// empaqueta bajo las dos restricciones de capacidad.
func AssignToBlocks(bloques []TimeBlock, contactos []ScoredContact, cfg config.SchedulerConfig) []TimeBlock {
	resultado := make([]TimeBlock, len(bloques))
	copy(resultado, bloques)

	asignados := 0
	idx := 0
	for i := range resultado {
		resultado[i].ContactIDs = []int64{}
		resultado[i].CompletedIDs = []int64{}

		// Capacidad cero = bloque marcador (almuerzo), se salta
		if resultado[i].Capacity == 0 {
			continue
		}
		if asignados >= cfg.MaxCallsPerDay || idx >= len(contactos) {
			continue
		}

		cupo := resultado[i].Capacity
		if restante := cfg.MaxCallsPerDay - asignados; cupo > restante {
			cupo = restante
		}
		if disponibles := len(contactos) - idx; cupo > disponibles {
			cupo = disponibles
		}

		for j := 0; j < cupo; j++ {
			resultado[i].ContactIDs = append(resultado[i].ContactIDs, contactos[idx].Contact.ID)
			idx++
		}
		asignados += cupo
	}

	return resultado
}
