package charts

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/WolfWilson/informes-jub/internal/models"
)

// Receta arma la figura de un gráfico a partir de la tabla; no dibuja
type Receta func(models.Tabla) (Figura, error)

// Clave identifica una receta por informe y gráfico
type Clave struct {
	Informe models.TipoInforme
	Grafico models.TipoGrafico
}

// Recetas es la tabla de despacho (informe, gráfico) -> receta
var Recetas = map[Clave]Receta{
	{models.InformeAltas, models.GraficoExpedientes}:               recetaExpedientes,
	{models.InformeAltas, models.GraficoOperadores}:                recetaOperadores,
	{models.InformeAltas, models.GraficoActividad}:                 recetaActividad,
	{models.InformeAltas, models.GraficoActividadArea}:             recetaActividadArea,
	{models.InformeAltas, models.GraficoTodos}:                     recetaAltasTodos,
	{models.InformeCategoria, models.GraficoBarrasCategoria}:       recetaBarrasCategoria,
	{models.InformeCategoria, models.GraficoCircularTipo}:          recetaCircularTipo,
	{models.InformeCategoria, models.GraficoTodos}:                 recetaCategoriaTodos,
	{models.InformeNovedadesBeneficios, models.GraficoAltasPorMes}: recetaAltasPorMes,
}

// RecetaPara busca la receta de una combinación; ok=false si no existe
func RecetaPara(informe models.TipoInforme, grafico models.TipoGrafico) (Receta, bool) {
	r, ok := Recetas[Clave{Informe: informe, Grafico: grafico}]
	return r, ok
}

// etiquetaTorta reproduce "{abs}\n({pct:.1f}%)" con abs = round(pct/100·total)
func etiquetaTorta(valor, total float64) string {
	if total == 0 {
		return "0\n(0.0%)"
	}
	pct := valor / total * 100
	abs := int(math.Round(pct / 100 * total))
	return fmt.Sprintf("%d\n(%.1f%%)", abs, pct)
}

func etiquetaPorcentaje(valor, total float64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", valor/total*100)
}

func entero(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10)
}

// puntosBarras arma las barras con su altura anotada
func puntosBarras(conteos []Conteo, colores []color.RGBA) []Punto {
	puntos := make([]Punto, len(conteos))
	for i, c := range conteos {
		col := colorBarraSimple
		if i < len(colores) {
			col = colores[i]
		}
		puntos[i] = Punto{Etiqueta: c.Clave, Valor: c.Valor, Anotacion: entero(c.Valor), Color: col}
	}
	return puntos
}

func panelLetras(t models.Tabla, tipo TipoPanel, titulo string) (Panel, error) {
	conteos, err := Frecuencias(t, models.COLUMNA_LETRA, false)
	if err != nil {
		return Panel{}, err
	}

	if tipo == PanelBarras {
		return Panel{Tipo: PanelBarras, Titulo: titulo, Puntos: puntosBarras(conteos, nil)}, nil
	}

	var total float64
	for _, c := range conteos {
		total += c.Valor
	}
	puntos := make([]Punto, len(conteos))
	for i, c := range conteos {
		puntos[i] = Punto{
			Etiqueta:  c.Clave,
			Valor:     c.Valor,
			Anotacion: etiquetaTorta(c.Valor, total),
			Color:     paletaExpedientes[i%len(paletaExpedientes)],
		}
	}
	return Panel{Tipo: tipo, Titulo: titulo, Puntos: puntos}, nil
}

func panelOperadores(t models.Tabla, cmap *Colormap) (Panel, error) {
	conteos, err := Frecuencias(t, models.COLUMNA_OPERADOR, true)
	if err != nil {
		return Panel{}, err
	}
	var colores []color.RGBA
	if cmap != nil {
		colores = intensidades(*cmap, valoresDe(conteos), true)
	}
	return Panel{
		Tipo:              PanelBarras,
		Titulo:            "Actuaciones por Operador",
		EjeX:              "Operador",
		EjeY:              "Cantidad de Actuaciones",
		Puntos:            puntosBarras(conteos, colores),
		RotacionEtiquetas: 45,
	}, nil
}

func panelActividad(t models.Tabla) (Panel, error) {
	horas, err := ConteoPorHora(t, models.COLUMNA_FECHA_ALTA)
	if err != nil {
		return Panel{}, err
	}
	puntos := make([]Punto, len(horas))
	for i, h := range horas {
		puntos[i] = Punto{
			Etiqueta:  strconv.Itoa(h.Hora),
			X:         float64(h.Hora),
			Valor:     float64(h.Cantidad),
			Anotacion: strconv.Itoa(h.Cantidad),
		}
	}
	return Panel{
		Tipo:   PanelLinea,
		Titulo: "Actividad por Hora",
		EjeX:   "Hora del Día",
		EjeY:   "Cantidad de Actuaciones",
		Puntos: puntos,
	}, nil
}

func panelDescripcion(t models.Tabla, cmap *Colormap) (Panel, error) {
	conteos, err := Frecuencias(t, models.COLUMNA_DESCRIPCION, false)
	if err != nil {
		return Panel{}, err
	}
	var colores []color.RGBA
	if cmap != nil {
		colores = intensidades(*cmap, valoresDe(conteos), true)
	}
	return Panel{
		Tipo:              PanelBarras,
		Titulo:            "Distribución de Actividad por Descripción",
		EjeX:              "Descripción",
		EjeY:              "Cantidad",
		Puntos:            puntosBarras(conteos, colores),
		RotacionEtiquetas: 45,
	}, nil
}

func panelCategorias(t models.Tabla, cmap *Colormap, rotacion float64) (Panel, error) {
	conteos, err := SumaPorGrupo(t, models.COLUMNA_CATEGORIA, models.COLUMNA_CONTEO)
	if err != nil {
		return Panel{}, err
	}
	var colores []color.RGBA
	if cmap != nil {
		colores = intensidades(*cmap, valoresDe(conteos), true)
	}
	return Panel{
		Tipo:              PanelBarras,
		Titulo:            "Totales por Categoría",
		EjeX:              "Categoría",
		EjeY:              "Cantidad total en el periodo",
		Puntos:            puntosBarras(conteos, colores),
		RotacionEtiquetas: rotacion,
	}, nil
}

func panelTipos(t models.Tabla) (Panel, error) {
	conteos, err := Frecuencias(t, models.COLUMNA_TIPO, false)
	if err != nil {
		return Panel{}, err
	}
	var total float64
	for _, c := range conteos {
		total += c.Valor
	}
	puntos := make([]Punto, len(conteos))
	for i, c := range conteos {
		puntos[i] = Punto{
			Etiqueta:  c.Clave,
			Valor:     c.Valor,
			Anotacion: etiquetaPorcentaje(c.Valor, total),
			Color:     paletaCategorica[i%len(paletaCategorica)],
		}
	}
	return Panel{Tipo: PanelTorta, Titulo: "Distribución por Tipo", Puntos: puntos}, nil
}

func recetaExpedientes(t models.Tabla) (Figura, error) {
	p, err := panelLetras(t, PanelDona, "Distribución por Letra de Expediente")
	if err != nil {
		return Figura{}, err
	}
	return figuraSimple(p), nil
}

func recetaOperadores(t models.Tabla) (Figura, error) {
	p, err := panelOperadores(t, &Pastel2)
	if err != nil {
		return Figura{}, err
	}
	return figuraSimple(p), nil
}

func recetaActividad(t models.Tabla) (Figura, error) {
	p, err := panelActividad(t)
	if err != nil {
		return Figura{}, err
	}
	return figuraSimple(p), nil
}

func recetaActividadArea(t models.Tabla) (Figura, error) {
	p, err := panelDescripcion(t, &Viridis)
	if err != nil {
		return Figura{}, err
	}
	return figuraSimple(p), nil
}

// recetaAltasTodos: grilla 2x2 con letras, operadores, actividad y descripción
func recetaAltasTodos(t models.Tabla) (Figura, error) {
	letras, err := panelLetras(t, PanelBarras, "Distribución por Tipo de Letra")
	if err != nil {
		return Figura{}, err
	}
	operadores, err := panelOperadores(t, nil)
	if err != nil {
		return Figura{}, err
	}
	actividad, err := panelActividad(t)
	if err != nil {
		return Figura{}, err
	}
	descripcion, err := panelDescripcion(t, nil)
	if err != nil {
		return Figura{}, err
	}
	return Figura{Filas: 2, Columnas: 2, Paneles: []Panel{letras, operadores, actividad, descripcion}}, nil
}

func recetaBarrasCategoria(t models.Tabla) (Figura, error) {
	p, err := panelCategorias(t, &Viridis, 60)
	if err != nil {
		return Figura{}, err
	}
	return figuraSimple(p), nil
}

func recetaCircularTipo(t models.Tabla) (Figura, error) {
	p, err := panelTipos(t)
	if err != nil {
		return Figura{}, err
	}
	return figuraSimple(p), nil
}

// recetaCategoriaTodos: grilla 1x2 con totales por categoría y tipos
func recetaCategoriaTodos(t models.Tabla) (Figura, error) {
	categorias, err := panelCategorias(t, nil, 45)
	if err != nil {
		return Figura{}, err
	}
	tipos, err := panelTipos(t)
	if err != nil {
		return Figura{}, err
	}
	return Figura{Filas: 1, Columnas: 2, Paneles: []Panel{categorias, tipos}}, nil
}

// recetaAltasPorMes colorea con plasma sobre norm(v), sin desplazamiento
func recetaAltasPorMes(t models.Tabla) (Figura, error) {
	conteos, err := ConteoPorPeriodo(t, models.COLUMNA_ANIO, models.COLUMNA_MES)
	if err != nil {
		return Figura{}, err
	}
	colores := intensidades(Plasma, valoresDe(conteos), false)
	return figuraSimple(Panel{
		Tipo:   PanelBarras,
		Titulo: "Cantidad de Altas por Mes",
		EjeX:   "Mes",
		EjeY:   "Cantidad de Altas",
		Puntos: puntosBarras(conteos, colores),
	}), nil
}
