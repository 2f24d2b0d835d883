package db

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/WolfWilson/informes-jub/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// candidatoPostgres valida la URL con pgx antes de agregarla a la lista de fallback
func candidatoPostgres(cfg config.PostgresConfig) (Candidato, error) {
	dsn := strings.Trim(cfg.URL, "'\"")
	if dsn == "" {
		return Candidato{}, fmt.Errorf("db: database.postgres.url vacío")
	}

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return Candidato{}, fmt.Errorf("db: configuración PostgreSQL inválida: %w", err)
	}

	log.Printf("db: configuración pgx -> host=%s port=%d user=%s db=%s",
		connConfig.Host, connConfig.Port, connConfig.User, visibleDatabase(connConfig.Database))

	return Candidato{
		Driver:      "pgx",
		DSN:         dsn,
		Dialecto:    DialectoPara("pgx"),
		Timeout:     cfg.GetConnectTimeoutDuration(),
		Descripcion: fmt.Sprintf("%s:%d/%s", connConfig.Host, connConfig.Port, visibleDatabase(connConfig.Database)),
	}, nil
}

// describirError agrega el detalle SQLSTATE cuando el error viene de PostgreSQL
func describirError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		detalle := fmt.Sprintf("%v (SQLSTATE %s", err, pgErr.Code)
		if pgErr.Detail != "" {
			detalle += ", detalle: " + pgErr.Detail
		}
		if pgErr.Hint != "" {
			detalle += ", hint: " + pgErr.Hint
		}
		return detalle + ")"
	}
	return err.Error()
}
