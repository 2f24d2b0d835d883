package db

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrProcedimientoInvalido se retorna antes de abrir una conexión
	ErrProcedimientoInvalido = errors.New("db: nombre de procedimiento inválido")
	// ErrProcedimientosNoSoportados lo retorna el dialecto SQLite
	ErrProcedimientosNoSoportados = errors.New("db: el controlador no soporta procedimientos almacenados")
)

// El nombre del procedimiento se interpola en el texto del EXEC
var nombreProcedimiento = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Parametro es un argumento posicional con el nombre que declara el procedimiento
type Parametro struct {
	Nombre string
	Valor  any
}

// Dialecto traduce una invocación de procedimiento al SQL de cada controlador
type Dialecto interface {
	Nombre() string
	LlamadaProcedimiento(procedimiento string, params []Parametro) (string, []any, error)
}

// DialectoPara retorna el dialecto asociado a un identificador de controlador.
// Controladores desconocidos usan marcadores "?".
func DialectoPara(driver string) Dialecto {
	switch strings.ToLower(driver) {
	case "sqlserver":
		return dialectoSQLServer{}
	case "pgx", "postgres":
		return dialectoPostgres{}
	case "sqlite":
		return dialectoSQLite{}
	default:
		return dialectoPosicional{nombre: driver}
	}
}

func validarProcedimiento(procedimiento string) error {
	if !nombreProcedimiento.MatchString(procedimiento) {
		return fmt.Errorf("%w: %q", ErrProcedimientoInvalido, procedimiento)
	}
	return nil
}

// dialectoSQLServer: EXEC proc @FechaInicio = @FechaInicio, ... con sql.Named
type dialectoSQLServer struct{}

func (dialectoSQLServer) Nombre() string { return "sqlserver" }

func (dialectoSQLServer) LlamadaProcedimiento(procedimiento string, params []Parametro) (string, []any, error) {
	if err := validarProcedimiento(procedimiento); err != nil {
		return "", nil, err
	}

	asignaciones := make([]string, 0, len(params))
	args := make([]any, 0, len(params))
	for i, p := range params {
		nombre := p.Nombre
		if nombre == "" {
			nombre = fmt.Sprintf("p%d", i+1)
		}
		asignaciones = append(asignaciones, fmt.Sprintf("@%s = @%s", nombre, nombre))
		args = append(args, sql.Named(nombre, p.Valor))
	}

	query := "EXEC " + procedimiento
	if len(asignaciones) > 0 {
		query += " " + strings.Join(asignaciones, ", ")
	}
	return query, args, nil
}

// dialectoPosicional: EXEC proc @FechaInicio = ?, ... (controlador mssql y ODBC)
type dialectoPosicional struct {
	nombre string
}

func (d dialectoPosicional) Nombre() string { return d.nombre }

func (dialectoPosicional) LlamadaProcedimiento(procedimiento string, params []Parametro) (string, []any, error) {
	if err := validarProcedimiento(procedimiento); err != nil {
		return "", nil, err
	}

	asignaciones := make([]string, 0, len(params))
	args := make([]any, 0, len(params))
	for _, p := range params {
		if p.Nombre != "" {
			asignaciones = append(asignaciones, fmt.Sprintf("@%s = ?", p.Nombre))
		} else {
			asignaciones = append(asignaciones, "?")
		}
		args = append(args, p.Valor)
	}

	query := "EXEC " + procedimiento
	if len(asignaciones) > 0 {
		query += " " + strings.Join(asignaciones, ", ")
	}
	return query, args, nil
}

// dialectoPostgres invoca la función equivalente que retorna un conjunto de filas
type dialectoPostgres struct{}

func (dialectoPostgres) Nombre() string { return "pgx" }

func (dialectoPostgres) LlamadaProcedimiento(procedimiento string, params []Parametro) (string, []any, error) {
	if err := validarProcedimiento(procedimiento); err != nil {
		return "", nil, err
	}

	marcadores := make([]string, len(params))
	args := make([]any, len(params))
	for i, p := range params {
		marcadores[i] = fmt.Sprintf("$%d", i+1)
		args[i] = p.Valor
	}

	funcion := pgx.Identifier(strings.Split(procedimiento, ".")).Sanitize()
	return fmt.Sprintf("SELECT * FROM %s(%s)", funcion, strings.Join(marcadores, ", ")), args, nil
}

// dialectoSQLite solo sirve para consultas directas (lookup de operadores)
type dialectoSQLite struct{}

func (dialectoSQLite) Nombre() string { return "sqlite" }

func (dialectoSQLite) LlamadaProcedimiento(procedimiento string, _ []Parametro) (string, []any, error) {
	if err := validarProcedimiento(procedimiento); err != nil {
		return "", nil, err
	}
	return "", nil, fmt.Errorf("%w: %s", ErrProcedimientosNoSoportados, procedimiento)
}
