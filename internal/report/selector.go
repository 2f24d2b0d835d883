package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/WolfWilson/informes-jub/internal/db"
	"github.com/WolfWilson/informes-jub/internal/models"
)

// ErrOperadorRequerido se retorna cuando el informe de operadores no recibe un código
var ErrOperadorRequerido = errors.New("report: el informe de operadores requiere un código de operador")

var procedimientos = map[models.TipoInforme]string{
	models.InformeAltas:               db.PROC_INFORME_ALTAS,
	models.InformeCategoria:           db.PROC_INFORME_CATEGORIA,
	models.InformeNovedadesBeneficios: db.PROC_NOVEDADES_BENEFICIOS,
	models.InformeOperadores:          db.PROC_MOVIMIENTOS_OPERADOR,
}

// ResolverProcedimiento retorna el procedimiento almacenado de cada tipo de informe
func ResolverProcedimiento(t models.TipoInforme) (string, error) {
	proc, ok := procedimientos[t]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrInformeDesconocido, string(t))
	}
	return proc, nil
}

// Solicitud es la selección del usuario ya resuelta a procedimiento y parámetros
type Solicitud struct {
	Informe       models.TipoInforme
	Procedimiento string
	Rango         models.RangoFechas
	Filtro        *models.FiltroOperador
	// Parametros en orden posicional: FechaInicio, FechaFin[, CodigoOperador, Letra]
	Parametros []db.Parametro
}

// Extra retorna los parámetros posteriores al rango de fechas
func (s Solicitud) Extra() []db.Parametro {
	if len(s.Parametros) <= 2 {
		return nil
	}
	return s.Parametros[2:]
}

// ArmarSolicitud resuelve procedimiento y parámetros. El filtro solo se usa
// (y es obligatorio) para el informe de operadores.
func ArmarSolicitud(t models.TipoInforme, rango models.RangoFechas, filtro *models.FiltroOperador) (Solicitud, error) {
	proc, err := ResolverProcedimiento(t)
	if err != nil {
		return Solicitud{}, err
	}

	inicio, fin := rango.Formato()
	sol := Solicitud{
		Informe:       t,
		Procedimiento: proc,
		Rango:         rango,
		Parametros: []db.Parametro{
			{Nombre: db.PARAM_FECHA_INICIO, Valor: inicio},
			{Nombre: db.PARAM_FECHA_FIN, Valor: fin},
		},
	}

	if t != models.InformeOperadores {
		return sol, nil
	}

	if filtro == nil || strings.TrimSpace(filtro.Codigo) == "" {
		return Solicitud{}, ErrOperadorRequerido
	}
	letra, err := models.NormalizarLetra(filtro.Letra)
	if err != nil {
		return Solicitud{}, err
	}

	normalizado := models.FiltroOperador{Codigo: strings.TrimSpace(filtro.Codigo), Letra: letra}
	sol.Filtro = &normalizado
	sol.Parametros = append(sol.Parametros,
		db.Parametro{Nombre: db.PARAM_CODIGO_OPERADOR, Valor: normalizado.Codigo},
		db.Parametro{Nombre: db.PARAM_LETRA, Valor: normalizado.Letra},
	)
	return sol, nil
}

// Fuente es lo que el generador necesita de la capa de datos
type Fuente interface {
	FetchReport(ctx context.Context, inicio, fin, procedimiento string, extra ...db.Parametro) models.Tabla
	FetchOperatorsList(ctx context.Context) models.Tabla
}

// Generador es el único camino desde una selección hasta una tabla
type Generador struct {
	fuente Fuente
}

func NuevoGenerador(fuente Fuente) *Generador {
	return &Generador{fuente: fuente}
}

// Generar ejecuta la solicitud; una falla total de la capa de datos llega como tabla vacía
func (g *Generador) Generar(ctx context.Context, sol Solicitud) models.Tabla {
	inicio, fin := sol.Rango.Formato()
	log.Printf("🔄 Generando %s (%s) del %s al %s", sol.Informe.Etiqueta(), sol.Procedimiento, inicio, fin)
	return g.fuente.FetchReport(ctx, inicio, fin, sol.Procedimiento, sol.Extra()...)
}

// Operadores retorna el lookup para el filtro de operadores
func (g *Generador) Operadores(ctx context.Context) []models.Operador {
	return models.OperadoresDesdeTabla(g.fuente.FetchOperatorsList(ctx))
}
