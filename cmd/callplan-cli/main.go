package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	apiHost  string
	apiToken string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "callplan-cli",
		Short: "CLI para administrar Callplan",
		Long:  `Una herramienta de línea de comandos para gestionar el microservicio Callplan de forma remota.`,
	}

	rootCmd.PersistentFlags().StringVar(&apiHost, "host", "http://localhost:8080", "URL base de la API (ej: http://10.0.0.5:8080)")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("CALLPLAN_TOKEN"), "Token JWT (o variable CALLPLAN_TOKEN)")

	// === LOGIN ===
	var loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Autenticarse y obtener un token",
		Run:   runLogin,
	}
	loginCmd.Flags().String("user", "", "Usuario")
	loginCmd.Flags().String("pass", "", "Contraseña")

	// === AGENDA ===
	var planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Gestionar la agenda semanal",
	}

	var planShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Mostrar la agenda de la semana en curso",
		Run:   runPlanShow,
	}

	var planGenerateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Regenerar la agenda completa",
		Run:   runPlanGenerate,
	}

	var planRegenDayCmd = &cobra.Command{
		Use:   "regenerate-day [fecha]",
		Short: "Rehacer el plan de una fecha (2006-01-02)",
		Args:  cobra.ExactArgs(1),
		Run:   runPlanRegenerateDay,
	}

	planCmd.AddCommand(planShowCmd, planGenerateCmd, planRegenDayCmd)

	// === CALLBACKS ===
	var callbackCmd = &cobra.Command{
		Use:   "callback",
		Short: "Resolver frases de agendamiento",
	}

	var callbackParseCmd = &cobra.Command{
		Use:   "parse [frase]",
		Short: "Resolver una frase libre a fecha y hora",
		Args:  cobra.MinimumNArgs(1),
		Run:   runCallbackParse,
	}
	callbackParseCmd.Flags().Int64("contact", 0, "ID de contacto para persistir el callback")

	callbackCmd.AddCommand(callbackParseCmd)

	// === MONITOREO ===
	var failuresCmd = &cobra.Command{
		Use:   "failures",
		Short: "Mostrar condiciones de falla activas",
		Run:   runFailures,
	}

	var metricsCmd = &cobra.Command{
		Use:   "metrics",
		Short: "Mostrar métricas horarias",
		Run:   runMetrics,
	}

	// === ROOT ===
	rootCmd.AddCommand(loginCmd, planCmd, callbackCmd, failuresCmd, metricsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// --- HANDLERS ---

func runLogin(cmd *cobra.Command, args []string) {
	user, _ := cmd.Flags().GetString("user")
	pass, _ := cmd.Flags().GetString("pass")
	if user == "" || pass == "" {
		fmt.Println("Error: --user y --pass son requeridos")
		return
	}

	payload, _ := json.Marshal(map[string]string{"username": user, "password": pass})
	resp, err := http.Post(apiHost+"/api/v1/login", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		fmt.Printf("Error conectando a API: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("Error API: %s - %s\n", resp.Status, string(body))
		return
	}

	var result struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	fmt.Println("✓ Login exitoso")
	fmt.Println()
	fmt.Println("Exporta el token para los siguientes comandos:")
	fmt.Printf("  export CALLPLAN_TOKEN=%s\n", result.Token)
}

func runPlanShow(cmd *cobra.Command, args []string) {
	body, ok := apiGet("/api/v1/plan")
	if !ok {
		return
	}

	var sched struct {
		ID              string `json:"id"`
		WeekStart       string `json:"week_start"`
		CallbackReserve int    `json:"callback_reserve"`
		Days            []struct {
			Fecha     string `json:"fecha"`
			DiaSemana int    `json:"dia_semana"`
			Asignados int    `json:"asignados"`
			Completed int    `json:"completed"`
			Skipped   int    `json:"skipped"`
			Blocks    []struct {
				Etiqueta   string  `json:"etiqueta"`
				StartHour  float64 `json:"start_hour"`
				EndHour    float64 `json:"end_hour"`
				Capacity   int     `json:"capacity"`
				ContactIDs []int64 `json:"contact_ids"`
			} `json:"blocks"`
		} `json:"days"`
	}
	if err := json.Unmarshal(body, &sched); err != nil {
		fmt.Printf("Error parseando respuesta: %v\n", err)
		return
	}

	fmt.Printf("Agenda %s (semana del %s)\n", sched.ID, sched.WeekStart[:10])
	fmt.Printf("Reserva de callbacks: %d contactos\n\n", sched.CallbackReserve)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "FECHA\tDÍA\tBLOQUE\tHORARIO\tCUPO\tASIGNADOS")
	fmt.Fprintln(w, "-----\t---\t------\t-------\t----\t---------")
	for _, d := range sched.Days {
		for _, b := range d.Blocks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f-%.1f\t%d\t%d\n",
				d.Fecha[:10], time.Weekday(d.DiaSemana), b.Etiqueta, b.StartHour, b.EndHour,
				b.Capacity, len(b.ContactIDs))
		}
	}
	w.Flush()
}

func runPlanGenerate(cmd *cobra.Command, args []string) {
	body, ok := apiPost("/api/v1/plan/generate", nil)
	if !ok {
		return
	}

	var sched struct {
		ID              string `json:"id"`
		CallbackReserve int    `json:"callback_reserve"`
	}
	json.Unmarshal(body, &sched)
	fmt.Printf("✓ Agenda %s generada (reserva: %d)\n", sched.ID, sched.CallbackReserve)
}

func runPlanRegenerateDay(cmd *cobra.Command, args []string) {
	if _, err := time.Parse("2006-01-02", args[0]); err != nil {
		fmt.Printf("Fecha inválida: %v\n", err)
		return
	}

	_, ok := apiPost("/api/v1/plan/day/regenerate", map[string]interface{}{"fecha": args[0]})
	if !ok {
		return
	}
	fmt.Printf("✓ Día %s regenerado\n", args[0])
}

func runCallbackParse(cmd *cobra.Command, args []string) {
	contactID, _ := cmd.Flags().GetInt64("contact")

	frase := ""
	for i, a := range args {
		if i > 0 {
			frase += " "
		}
		frase += a
	}

	payload := map[string]interface{}{"input": frase}
	if contactID != 0 {
		payload["contact_id"] = contactID
	}

	body, ok := apiPost("/api/v1/callback/parse", payload)
	if !ok {
		return
	}

	var result struct {
		ScheduledFor string `json:"scheduled_for"`
		Label        string `json:"label"`
		Confidence   string `json:"confidence"`
	}
	json.Unmarshal(body, &result)

	fmt.Printf("Frase:      %q\n", frase)
	fmt.Printf("Agendado:   %s\n", result.ScheduledFor)
	fmt.Printf("Etiqueta:   %s\n", result.Label)
	fmt.Printf("Confianza:  %s\n", result.Confidence)
	if contactID != 0 {
		fmt.Printf("✓ Callback guardado para contacto #%d\n", contactID)
	}
}

func runFailures(cmd *cobra.Command, args []string) {
	body, ok := apiGet("/api/v1/failures")
	if !ok {
		return
	}

	var condiciones []struct {
		Type       string `json:"type"`
		Severity   string `json:"severity"`
		Message    string `json:"message"`
		Suggestion string `json:"suggestion"`
	}
	json.Unmarshal(body, &condiciones)

	if len(condiciones) == 0 {
		fmt.Println("Sin condiciones de falla activas")
		return
	}

	for _, c := range condiciones {
		fmt.Printf("[%s] %s\n", c.Severity, c.Type)
		fmt.Printf("  %s\n", c.Message)
		fmt.Printf("  Sugerencia: %s\n\n", c.Suggestion)
	}
}

func runMetrics(cmd *cobra.Command, args []string) {
	body, ok := apiGet("/api/v1/metrics/hourly")
	if !ok {
		return
	}

	var historial []struct {
		Fecha       string  `json:"fecha"`
		Hora        int     `json:"hora"`
		Calls       int     `json:"calls"`
		Connected   int     `json:"connected"`
		Interested  int     `json:"interested"`
		AvgDuration float64 `json:"avg_duration"`
	}
	json.Unmarshal(body, &historial)

	if len(historial) == 0 {
		fmt.Println("Sin métricas registradas")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "FECHA\tHORA\tLLAMADAS\tCONECTADAS\tINTERESADOS\tDURACIÓN")
	fmt.Fprintln(w, "-----\t----\t--------\t----------\t-----------\t--------")
	for _, m := range historial {
		fmt.Fprintf(w, "%s\t%02d:00\t%d\t%d\t%d\t%.0fs\n",
			m.Fecha, m.Hora, m.Calls, m.Connected, m.Interested, m.AvgDuration)
	}
	w.Flush()
}

// --- HTTP HELPERS ---

func apiGet(path string) ([]byte, bool) {
	req, _ := http.NewRequest("GET", apiHost+path, nil)
	return doRequest(req)
}

func apiPost(path string, payload interface{}) ([]byte, bool) {
	var buf io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		buf = bytes.NewBuffer(data)
	}
	req, _ := http.NewRequest("POST", apiHost+path, buf)
	req.Header.Set("Content-Type", "application/json")
	return doRequest(req)
}

func doRequest(req *http.Request) ([]byte, bool) {
	if apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+apiToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error conectando a API: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Printf("Error API: %s - %s\n", resp.Status, string(body))
		return nil, false
	}
	return body, true
}
