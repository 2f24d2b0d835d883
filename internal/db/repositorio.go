package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/WolfWilson/informes-jub/internal/config"
	"github.com/WolfWilson/informes-jub/internal/models"

	"github.com/shopspring/decimal"
)

// QueryExecutor expone el subconjunto mínimo para leer una tabla;
// lo satisface *sql.DB y facilita el mockeo en pruebas.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repositorio ejecuta procedimientos almacenados recorriendo la lista de
// controladores. Abre y cierra una conexión por llamada.
type Repositorio struct {
	candidatos []Candidato
	abrir      Abridor
}

// NuevoRepositorio crea un repositorio; abrir puede ser nil (AbrirYVerificar)
func NuevoRepositorio(candidatos []Candidato, abrir Abridor) *Repositorio {
	if abrir == nil {
		abrir = AbrirYVerificar
	}
	copia := make([]Candidato, len(candidatos))
	copy(copia, candidatos)
	return &Repositorio{candidatos: copia, abrir: abrir}
}

// NuevoRepositorioDesdeConfig usa database.drivers como lista de fallback
func NuevoRepositorioDesdeConfig(cfg config.DatabaseConfig) *Repositorio {
	return NuevoRepositorio(CandidatosDesdeConfig(cfg), nil)
}

// Candidatos retorna una copia de la lista de fallback
func (r *Repositorio) Candidatos() []Candidato {
	out := make([]Candidato, len(r.candidatos))
	copy(out, r.candidatos)
	return out
}

// Consultar ejecuta el procedimiento con los parámetros en orden posicional.
// Cada fallo de conexión o ejecución se registra y se pasa al siguiente
// controlador; si todos fallan retorna *SinConexionError.
func (r *Repositorio) Consultar(ctx context.Context, procedimiento string, params ...Parametro) (models.Tabla, error) {
	if err := validarProcedimiento(procedimiento); err != nil {
		return models.Tabla{}, err
	}

	return r.recorrer(ctx, procedimiento, func(ctx context.Context, conn *Conexion) (models.Tabla, error) {
		query, args, err := conn.Candidato.Dialecto.LlamadaProcedimiento(procedimiento, params)
		if err != nil {
			return models.Tabla{}, err
		}
		return LeerTabla(ctx, conn.DB, query, args...)
	})
}

// ConsultarSQL ejecuta una consulta directa (igual en todos los dialectos)
func (r *Repositorio) ConsultarSQL(ctx context.Context, query string, args ...any) (models.Tabla, error) {
	return r.recorrer(ctx, "consulta", func(ctx context.Context, conn *Conexion) (models.Tabla, error) {
		return LeerTabla(ctx, conn.DB, query, args...)
	})
}

// FetchReport ejecuta el procedimiento con (inicio, fin[, extra...]).
// Ante el fallo de todos los controladores retorna una tabla vacía.
func (r *Repositorio) FetchReport(ctx context.Context, inicio, fin, procedimiento string, extra ...Parametro) models.Tabla {
	params := make([]Parametro, 0, 2+len(extra))
	params = append(params,
		Parametro{Nombre: PARAM_FECHA_INICIO, Valor: inicio},
		Parametro{Nombre: PARAM_FECHA_FIN, Valor: fin},
	)
	params = append(params, extra...)

	tabla, err := r.Consultar(ctx, procedimiento, params...)
	if err != nil {
		log.Printf("❌ No se pudo obtener el informe %s: %v", procedimiento, err)
		return models.Tabla{}
	}
	return tabla
}

// FetchOperatorsList obtiene el lookup (Codigo, descripcion) ordenado por descripción.
// Mismo fallback y misma tabla vacía ante el fallo total.
func (r *Repositorio) FetchOperatorsList(ctx context.Context) models.Tabla {
	tabla, err := r.ConsultarSQL(ctx, SELECT_OPERADORES_V_PERSONAL_JUB)
	if err != nil {
		log.Printf("❌ No se pudo obtener la lista de operadores: %v", err)
		return models.Tabla{}
	}
	return tabla
}

// recorrer aplica fn sobre cada conexión exitosa hasta que una ejecución funcione
func (r *Repositorio) recorrer(ctx context.Context, operacion string, fn func(context.Context, *Conexion) (models.Tabla, error)) (models.Tabla, error) {
	var intentos []Intento
	pendientes := r.candidatos

	for len(pendientes) > 0 {
		conn, err := Conectar(ctx, pendientes, r.abrir)
		if err != nil {
			var sinConexion *SinConexionError
			if errors.As(err, &sinConexion) {
				intentos = append(intentos, sinConexion.Intentos...)
			}
			break
		}
		intentos = append(intentos, conn.Fallidos...)

		tabla, err := fn(ctx, conn)
		if cerrarErr := conn.Close(); cerrarErr != nil {
			log.Printf("⚠️  Error cerrando conexión %s: %v", conn.Candidato.Driver, cerrarErr)
		}
		if err == nil {
			log.Printf("✅ %s: %d filas obtenidas con %s", operacion, tabla.CantidadFilas(), conn.Candidato.Driver)
			return tabla, nil
		}

		log.Printf("⚠️  Error al ejecutar %s con %s: %s", operacion, conn.Candidato.Driver, describirError(err))
		intentos = append(intentos, Intento{Driver: conn.Candidato.Driver, Err: err})
		pendientes = pendientes[conn.Indice+1:]
	}

	return models.Tabla{}, &SinConexionError{Operacion: operacion, Intentos: intentos}
}

// LeerTabla ejecuta la consulta y lee todas las filas con sus nombres de columna
func LeerTabla(ctx context.Context, executor QueryExecutor, query string, args ...any) (models.Tabla, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return models.Tabla{}, fmt.Errorf("db: error ejecutando query: %w", err)
	}
	defer rows.Close()

	columnas, err := rows.Columns()
	if err != nil {
		return models.Tabla{}, fmt.Errorf("db: error obteniendo columnas: %w", err)
	}
	tipos, err := rows.ColumnTypes()
	if err != nil {
		return models.Tabla{}, fmt.Errorf("db: error obteniendo tipos de columna: %w", err)
	}

	tabla := models.Tabla{Columnas: columnas, Filas: [][]any{}}
	for rows.Next() {
		valores := make([]any, len(columnas))
		punteros := make([]any, len(columnas))
		for i := range valores {
			punteros[i] = &valores[i]
		}
		if err := rows.Scan(punteros...); err != nil {
			return models.Tabla{}, fmt.Errorf("db: error leyendo fila: %w", err)
		}

		fila := make([]any, len(columnas))
		for i, v := range valores {
			tipo := ""
			if i < len(tipos) && tipos[i] != nil {
				tipo = tipos[i].DatabaseTypeName()
			}
			fila[i] = convertirValor(v, tipo)
		}
		tabla.Filas = append(tabla.Filas, fila)
	}

	if err := rows.Err(); err != nil {
		return models.Tabla{}, fmt.Errorf("db: error iterando filas: %w", err)
	}

	return tabla, nil
}

// convertirValor normaliza los valores que entregan los distintos controladores
func convertirValor(v any, tipoBase string) any {
	switch x := v.(type) {
	case []byte:
		if esDecimal(tipoBase) {
			if d, err := decimal.NewFromString(string(x)); err == nil {
				return d
			}
		}
		return string(x)
	case string:
		if esDecimal(tipoBase) {
			if d, err := decimal.NewFromString(x); err == nil {
				return d
			}
		}
		return x
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case int:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

func esDecimal(tipoBase string) bool {
	tipo := strings.ToUpper(tipoBase)
	for _, prefijo := range []string{"DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY"} {
		if strings.HasPrefix(tipo, prefijo) {
			return true
		}
	}
	return false
}
