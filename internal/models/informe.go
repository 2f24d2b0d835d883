package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInformeDesconocido = errors.New("tipo de informe desconocido")
	ErrGraficoDesconocido = errors.New("tipo de gráfico desconocido")
	ErrLetraInvalida      = errors.New("letra de expediente inválida")
)

// TipoInforme determina el procedimiento almacenado a invocar y el menú de gráficos
type TipoInforme string

const (
	InformeAltas               TipoInforme = "altas"
	InformeCategoria           TipoInforme = "categoria"
	InformeNovedadesBeneficios TipoInforme = "novedades_beneficios"
	InformeOperadores          TipoInforme = "operadores"
)

// TiposInforme en el orden en que se ofrecen al usuario
var TiposInforme = []TipoInforme{
	InformeAltas,
	InformeCategoria,
	InformeNovedadesBeneficios,
	InformeOperadores,
}

var etiquetasInforme = map[TipoInforme]string{
	InformeAltas:               "Informe de Altas",
	InformeCategoria:           "Informe por Categoria",
	InformeNovedadesBeneficios: "Novedades de Beneficios",
	InformeOperadores:          "Informe de Operadores",
}

// Etiqueta retorna el texto que ve el usuario en el selector
func (t TipoInforme) Etiqueta() string {
	if e, ok := etiquetasInforme[t]; ok {
		return e
	}
	return string(t)
}

// Valido indica si el tipo pertenece a la enumeración
func (t TipoInforme) Valido() bool {
	_, ok := etiquetasInforme[t]
	return ok
}

// ParseTipoInforme acepta el identificador ("altas") o la etiqueta ("Informe de Altas")
func ParseTipoInforme(s string) (TipoInforme, error) {
	s = strings.TrimSpace(s)
	for _, t := range TiposInforme {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Etiqueta()) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInformeDesconocido, s)
}

// TipoGrafico es la receta concreta dentro del menú de un informe
type TipoGrafico string

const (
	GraficoExpedientes     TipoGrafico = "expedientes"
	GraficoOperadores      TipoGrafico = "operadores"
	GraficoActividad       TipoGrafico = "actividad"
	GraficoActividadArea   TipoGrafico = "actividad_area"
	GraficoTodos           TipoGrafico = "todos"
	GraficoBarrasCategoria TipoGrafico = "barras_categoria"
	GraficoCircularTipo    TipoGrafico = "circular_tipo"
	GraficoAltasPorMes     TipoGrafico = "altas_por_mes"
)

var etiquetasGrafico = map[TipoGrafico]string{
	GraficoExpedientes:     "Gráfico de Expedientes",
	GraficoOperadores:      "Gráfico de Operadores",
	GraficoActividad:       "Gráfico de Actividad",
	GraficoActividadArea:   "Gráfico Actividad por Área",
	GraficoTodos:           "Mostrar Todos",
	GraficoBarrasCategoria: "Gráfico de Barras por Categoría",
	GraficoCircularTipo:    "Gráfico Circular por Tipo",
	GraficoAltasPorMes:     "Gráfico de Altas por Mes",
}

// Etiqueta retorna el texto del combo de gráficos
func (g TipoGrafico) Etiqueta() string {
	if e, ok := etiquetasGrafico[g]; ok {
		return e
	}
	return string(g)
}

// ParseTipoGrafico acepta el identificador o la etiqueta del gráfico
func ParseTipoGrafico(s string) (TipoGrafico, error) {
	s = strings.TrimSpace(s)
	for g, etiqueta := range etiquetasGrafico {
		if strings.EqualFold(s, string(g)) || strings.EqualFold(s, etiqueta) {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrGraficoDesconocido, s)
}

var menuGraficos = map[TipoInforme][]TipoGrafico{
	InformeAltas: {
		GraficoExpedientes,
		GraficoOperadores,
		GraficoActividad,
		GraficoActividadArea,
		GraficoTodos,
	},
	InformeCategoria: {
		GraficoBarrasCategoria,
		GraficoCircularTipo,
		GraficoTodos,
	},
	InformeNovedadesBeneficios: {
		GraficoAltasPorMes,
	},
	// El informe de operadores no ofrece gráficos
	InformeOperadores: {},
}

// MenuGraficos retorna los gráficos que se ofrecen para un informe.
// Las combinaciones que no aparecen aquí simplemente no se ofrecen.
func MenuGraficos(t TipoInforme) []TipoGrafico {
	menu := menuGraficos[t]
	out := make([]TipoGrafico, len(menu))
	copy(out, menu)
	return out
}

// GraficoDisponible indica si el gráfico forma parte del menú del informe
func GraficoDisponible(t TipoInforme, g TipoGrafico) bool {
	for _, candidato := range menuGraficos[t] {
		if candidato == g {
			return true
		}
	}
	return false
}

// RangoFechas es un par de fechas de calendario. No se valida el orden:
// el procedimiento almacenado decide qué hacer con inicio > fin.
type RangoFechas struct {
	Inicio time.Time
	Fin    time.Time
}

// ParseRangoFechas construye un rango a partir de dos fechas yyyy-mm-dd
func ParseRangoFechas(inicio, fin string) (RangoFechas, error) {
	i, err := time.ParseInLocation(FORMATO_FECHA_PROCEDIMIENTO, strings.TrimSpace(inicio), time.Local)
	if err != nil {
		return RangoFechas{}, fmt.Errorf("fecha de inicio inválida %q: %w", inicio, err)
	}
	f, err := time.ParseInLocation(FORMATO_FECHA_PROCEDIMIENTO, strings.TrimSpace(fin), time.Local)
	if err != nil {
		return RangoFechas{}, fmt.Errorf("fecha de fin inválida %q: %w", fin, err)
	}
	return RangoFechas{Inicio: i, Fin: f}, nil
}

// Formato retorna inicio y fin en el formato que esperan los procedimientos
func (r RangoFechas) Formato() (string, string) {
	return r.Inicio.Format(FORMATO_FECHA_PROCEDIMIENTO), r.Fin.Format(FORMATO_FECHA_PROCEDIMIENTO)
}

// FiltroOperador solo aplica al informe de operadores
type FiltroOperador struct {
	Codigo string `json:"codigo"`
	Letra  string `json:"letra"`
}

// Letras disponibles para el filtro, "T" significa todas
var Letras = []string{LETRA_TODAS, LETRA_E, LETRA_K, LETRA_V}

// NormalizarLetra aplica el valor por defecto "T" y valida el conjunto
func NormalizarLetra(letra string) (string, error) {
	letra = strings.ToUpper(strings.TrimSpace(letra))
	if letra == "" || strings.EqualFold(letra, "Todas") {
		return LETRA_TODAS, nil
	}
	for _, l := range Letras {
		if l == letra {
			return letra, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrLetraInvalida, letra)
}
