package provisioning

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RunMigrations ejecuta los archivos SQL de migración en orden
func RunMigrations(db *sql.DB, migrationsPath string) error {
	log.Printf("[Provisioner] Buscando migraciones en %s", migrationsPath)

	files, err := os.ReadDir(migrationsPath)
	if err != nil {
		return fmt.Errorf("error leyendo directorio de migraciones: %w", err)
	}

	var sqlFiles []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".sql") {
			sqlFiles = append(sqlFiles, f.Name())
		}
	}

	sort.Strings(sqlFiles)

	for _, filename := range sqlFiles {
		log.Printf("[Provisioner] Ejecutando migración: %s", filename)
		content, err := os.ReadFile(filepath.Join(migrationsPath, filename))
		if err != nil {
			return fmt.Errorf("error leyendo archivo %s: %w", filename, err)
		}

		if err := execStatements(db, string(content)); err != nil {
			return fmt.Errorf("error ejecutando %s: %w", filename, err)
		}
	}
	return nil
}

// execStatements ejecuta las sentencias de un script, tolerando errores
// de "ya existe" para mantener la idempotencia
func execStatements(db *sql.DB, script string) error {
	queries := strings.Split(script, ";")
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, err := db.Exec(q); err != nil {
			if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "Duplicate column") {
				continue
			}
			return err
		}
	}
	return nil
}
