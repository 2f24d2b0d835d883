package db

import (
	"fmt"
	"log"
	"strings"

	"github.com/WolfWilson/informes-jub/internal/config"

	_ "modernc.org/sqlite"
)

// CandidatosDesdeConfig arma la lista de fallback en el orden de database.drivers.
// Un controlador sin configuración suficiente se omite con un aviso; un
// identificador desconocido se conserva y fallará al abrirse.
func CandidatosDesdeConfig(cfg config.DatabaseConfig) []Candidato {
	candidatos := make([]Candidato, 0, len(cfg.Drivers))

	for _, driver := range cfg.Drivers {
		driver = strings.TrimSpace(driver)
		switch strings.ToLower(driver) {
		case "":
			continue
		case "sqlserver", "mssql":
			candidatos = append(candidatos, candidatoSQLServer(strings.ToLower(driver), cfg.SQLServer))
		case "pgx", "postgres":
			c, err := candidatoPostgres(cfg.Postgres)
			if err != nil {
				log.Printf("⚠️  Controlador pgx omitido: %v", err)
				continue
			}
			candidatos = append(candidatos, c)
		case "sqlite":
			if cfg.SQLite.Path == "" {
				log.Printf("⚠️  Controlador sqlite omitido: database.sqlite.path vacío")
				continue
			}
			candidatos = append(candidatos, Candidato{
				Driver:      "sqlite",
				DSN:         cfg.SQLite.Path,
				Dialecto:    DialectoPara("sqlite"),
				Descripcion: cfg.SQLite.Path,
			})
		default:
			log.Printf("⚠️  Controlador desconocido %q, se intentará igualmente", driver)
			candidatos = append(candidatos, Candidato{
				Driver:      driver,
				DSN:         sqlServerURL(cfg.SQLServer),
				Dialecto:    DialectoPara(driver),
				Timeout:     cfg.SQLServer.GetConnectTimeoutDuration(),
				Descripcion: fmt.Sprintf("%s:%d", cfg.SQLServer.Host, cfg.SQLServer.Port),
			})
		}
	}

	return candidatos
}
