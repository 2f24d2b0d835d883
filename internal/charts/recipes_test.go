package charts

import (
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/WolfWilson/informes-jub/internal/models"
)

func tablaLetras(letras ...any) models.Tabla {
	t := models.Tabla{Columnas: []string{"letra"}}
	for _, l := range letras {
		t.Filas = append(t.Filas, []any{l})
	}
	return t
}

func luminancia(c color.RGBA) float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

func TestExpedientesPieLabels(t *testing.T) {
	fig, err := recetaExpedientes(tablaLetras("E", "E", "K", "V", "V", "V"))
	if err != nil {
		t.Fatalf("receta: %v", err)
	}
	if len(fig.Paneles) != 1 || fig.Paneles[0].Tipo != PanelDona {
		t.Fatalf("expected a single donut panel, got %+v", fig)
	}

	want := map[string]struct {
		valor     float64
		anotacion string
	}{
		"E": {2, "2\n(33.3%)"},
		"K": {1, "1\n(16.7%)"},
		"V": {3, "3\n(50.0%)"},
	}

	puntos := fig.Paneles[0].Puntos
	if len(puntos) != len(want) {
		t.Fatalf("expected %d slices, got %d", len(want), len(puntos))
	}
	var suma float64
	for _, p := range puntos {
		w, ok := want[p.Etiqueta]
		if !ok {
			t.Fatalf("unexpected slice %q", p.Etiqueta)
		}
		if p.Valor != w.valor || p.Anotacion != w.anotacion {
			t.Fatalf("slice %s: expected %v %q, got %v %q", p.Etiqueta, w.valor, w.anotacion, p.Valor, p.Anotacion)
		}
		suma += p.Valor
	}
	if suma != 6 {
		t.Fatalf("displayed counts must add up to the row count, got %v", suma)
	}
	// Mayor frecuencia primero
	if puntos[0].Etiqueta != "V" {
		t.Fatalf("expected V first, got %s", puntos[0].Etiqueta)
	}
}

func TestFrecuenciasDropsNulls(t *testing.T) {
	conteos, err := Frecuencias(tablaLetras("E", nil, "E", nil), "letra", false)
	if err != nil {
		t.Fatalf("frecuencias: %v", err)
	}
	if len(conteos) != 1 || conteos[0].Clave != "E" || conteos[0].Valor != 2 {
		t.Fatalf("unexpected counts: %+v", conteos)
	}
}

func TestConteoPorHoraDropsInvalidDates(t *testing.T) {
	tabla := models.Tabla{
		Columnas: []string{"fech_alta"},
		Filas:    [][]any{{"01-01-2024 08:15"}, {"01-01-2024 08:45"}, {"bad-date"}, {nil}},
	}

	horas, err := ConteoPorHora(tabla, "fech_alta")
	if err != nil {
		t.Fatalf("conteo por hora: %v", err)
	}
	if len(horas) != 1 || horas[0].Hora != 8 || horas[0].Cantidad != 2 {
		t.Fatalf("expected only hour 8 with 2, got %+v", horas)
	}
}

func TestConteoPorHoraAcceptsUnpaddedDates(t *testing.T) {
	tabla := models.Tabla{
		Columnas: []string{"fech_alta"},
		Filas:    [][]any{{"1-1-2024 8:15"}, {"01-01-2024 08:40"}, {"5-12-2024 17:05"}},
	}

	horas, err := ConteoPorHora(tabla, "fech_alta")
	if err != nil {
		t.Fatalf("conteo por hora: %v", err)
	}
	if len(horas) != 2 || horas[0].Hora != 8 || horas[0].Cantidad != 2 || horas[1].Hora != 17 {
		t.Fatalf("expected hours 8 (2) and 17, got %+v", horas)
	}
}

func TestConteoPorHoraAcceptsTimeValuesInOrder(t *testing.T) {
	tabla := models.Tabla{
		Columnas: []string{"fech_alta"},
		Filas: [][]any{
			{time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)},
			{"02-01-2024 09:30"},
			{time.Date(2024, 1, 2, 15, 59, 0, 0, time.UTC)},
		},
	}

	fig, err := recetaActividad(tabla)
	if err != nil {
		t.Fatalf("receta: %v", err)
	}
	puntos := fig.Paneles[0].Puntos
	if len(puntos) != 2 || puntos[0].X != 9 || puntos[1].X != 15 || puntos[1].Valor != 2 {
		t.Fatalf("unexpected points: %+v", puntos)
	}
	if puntos[1].Anotacion != "2" {
		t.Fatalf("expected annotation 2, got %q", puntos[1].Anotacion)
	}
}

func TestBarrasCategoriaSumsAndKeepsFirstAppearanceOnTies(t *testing.T) {
	tabla := models.Tabla{
		Columnas: []string{"Categoria", "Conteo"},
		Filas:    [][]any{{"A ", int64(3)}, {"B", int64(5)}, {" A", int64(2)}},
	}

	fig, err := recetaBarrasCategoria(tabla)
	if err != nil {
		t.Fatalf("receta: %v", err)
	}
	puntos := fig.Paneles[0].Puntos
	if len(puntos) != 2 {
		t.Fatalf("expected 2 bars, got %+v", puntos)
	}
	if puntos[0].Etiqueta != "A" || puntos[0].Valor != 5 || puntos[1].Etiqueta != "B" || puntos[1].Valor != 5 {
		t.Fatalf("unexpected bars: %+v", puntos)
	}
	if puntos[0].Anotacion != "5" {
		t.Fatalf("bars must be annotated with their integer height, got %q", puntos[0].Anotacion)
	}
}

func TestSumaPorGrupoTreatsNullAsZeroAndRejectsText(t *testing.T) {
	tabla := models.Tabla{
		Columnas: []string{"Categoria", "Conteo"},
		Filas:    [][]any{{"A", nil}, {"A", 4.0}},
	}
	conteos, err := SumaPorGrupo(tabla, "Categoria", "Conteo")
	if err != nil || len(conteos) != 1 || conteos[0].Valor != 4 {
		t.Fatalf("unexpected sum: %+v %v", conteos, err)
	}

	tabla.Filas = append(tabla.Filas, []any{"B", "muchos"})
	if _, err := SumaPorGrupo(tabla, "Categoria", "Conteo"); err == nil {
		t.Fatal("expected error for non numeric Conteo")
	}
}

func TestColorIntensityIsMonotonic(t *testing.T) {
	tabla := models.Tabla{
		Columnas: []string{"Categoria", "Conteo"},
		Filas:    [][]any{{"A", 1}, {"B", 10}, {"C", 4}, {"D", 7}},
	}
	fig, err := recetaBarrasCategoria(tabla)
	if err != nil {
		t.Fatalf("receta: %v", err)
	}

	puntos := fig.Paneles[0].Puntos
	for i := 1; i < len(puntos); i++ {
		// Ordenadas de mayor a menor: la luminancia de viridis no debe crecer
		if puntos[i].Valor > puntos[i-1].Valor {
			t.Fatalf("bars not sorted descending: %+v", puntos)
		}
		if luminancia(puntos[i].Color) > luminancia(puntos[i-1].Color) {
			t.Fatalf("color intensity is not monotonic at %d: %+v", i, puntos)
		}
	}
	// El mínimo usa 0.2 del mapa, el máximo 1.0
	if puntos[0].Color != Viridis.En(1) || puntos[len(puntos)-1].Color != Viridis.En(0.2) {
		t.Fatalf("unexpected extremes: %v %v", puntos[0].Color, puntos[len(puntos)-1].Color)
	}
}

func TestIntensidadesEqualValuesUseNormZero(t *testing.T) {
	colores := intensidades(Plasma, []float64{3, 3}, false)
	if colores[0] != Plasma.En(0) || colores[1] != Plasma.En(0) {
		t.Fatalf("expected norm 0 for equal values, got %v", colores)
	}
}

func TestAltasPorMesOrdersNumerically(t *testing.T) {
	tabla := models.Tabla{
		Columnas: []string{"Anio", "Mes"},
		Filas: [][]any{
			{int64(2024), int64(10)},
			{int64(2024), int64(2)},
			{int64(2023), int64(12)},
			{int64(2024), int64(2)},
		},
	}
	fig, err := recetaAltasPorMes(tabla)
	if err != nil {
		t.Fatalf("receta: %v", err)
	}
	puntos := fig.Paneles[0].Puntos
	want := []string{"2023-12", "2024-2", "2024-10"}
	for i, w := range want {
		if puntos[i].Etiqueta != w {
			t.Fatalf("bar %d: expected %s, got %s", i, w, puntos[i].Etiqueta)
		}
	}
	if puntos[1].Valor != 2 || puntos[1].Color != Plasma.En(1) || puntos[0].Color != Plasma.En(0) {
		t.Fatalf("unexpected bar: %+v", puntos[1])
	}
}

func TestCircularTipoLabels(t *testing.T) {
	tabla := models.Tabla{Columnas: []string{"Tipo"}, Filas: [][]any{{"X"}, {"Y"}, {"Y"}}}
	fig, err := recetaCircularTipo(tabla)
	if err != nil {
		t.Fatalf("receta: %v", err)
	}
	puntos := fig.Paneles[0].Puntos
	if puntos[0].Etiqueta != "Y" || puntos[0].Anotacion != "66.7%" || puntos[1].Anotacion != "33.3%" {
		t.Fatalf("unexpected labels: %+v", puntos)
	}
}

func TestTodosGrids(t *testing.T) {
	altas := models.Tabla{
		Columnas: []string{"letra", "Operador", "fech_alta", "Descripcion"},
		Filas: [][]any{
			{"E", "OP1 ", "01-01-2024 08:15", "Mesa de entradas"},
			{"K", "OP1", "01-01-2024 09:15", "Archivo"},
		},
	}
	fig, err := recetaAltasTodos(altas)
	if err != nil {
		t.Fatalf("altas todos: %v", err)
	}
	if fig.Filas != 2 || fig.Columnas != 2 || len(fig.Paneles) != 4 {
		t.Fatalf("expected 2x2 grid, got %dx%d with %d panels", fig.Filas, fig.Columnas, len(fig.Paneles))
	}
	if fig.Paneles[1].Puntos[0].Etiqueta != "OP1" || fig.Paneles[1].Puntos[0].Valor != 2 {
		t.Fatalf("operators should be trimmed before counting: %+v", fig.Paneles[1].Puntos)
	}

	categoria := models.Tabla{
		Columnas: []string{"Categoria", "Conteo", "Tipo"},
		Filas:    [][]any{{"A", 1, "X"}},
	}
	fig, err = recetaCategoriaTodos(categoria)
	if err != nil {
		t.Fatalf("categoria todos: %v", err)
	}
	if fig.Filas != 1 || fig.Columnas != 2 || fig.Paneles[1].Tipo != PanelTorta {
		t.Fatalf("expected 1x2 grid with a pie, got %+v", fig)
	}
}

func TestMissingColumnIsReported(t *testing.T) {
	casos := []struct {
		informe models.TipoInforme
		grafico models.TipoGrafico
		columna string
	}{
		{models.InformeAltas, models.GraficoExpedientes, "letra"},
		{models.InformeAltas, models.GraficoOperadores, "Operador"},
		{models.InformeAltas, models.GraficoActividad, "fech_alta"},
		{models.InformeAltas, models.GraficoActividadArea, "Descripcion"},
		{models.InformeAltas, models.GraficoTodos, "letra"},
		{models.InformeCategoria, models.GraficoBarrasCategoria, "Categoria"},
		{models.InformeCategoria, models.GraficoCircularTipo, "Tipo"},
		{models.InformeNovedadesBeneficios, models.GraficoAltasPorMes, "Anio"},
	}

	tabla := models.Tabla{Columnas: []string{"otra"}, Filas: [][]any{{"x"}}}
	for _, c := range casos {
		_, ok, err := Armar(tabla, c.informe, c.grafico)
		if !ok {
			t.Fatalf("%s/%s: expected a recipe", c.informe, c.grafico)
		}
		if !errors.Is(err, ErrColumnaFaltante) {
			t.Fatalf("%s/%s: expected ErrColumnaFaltante, got %v", c.informe, c.grafico, err)
		}
		if errors.Is(err, ErrRenderizado) {
			t.Fatalf("%s/%s: missing column must be distinct from render errors", c.informe, c.grafico)
		}
		var faltante *ColumnaFaltanteError
		if !errors.As(err, &faltante) || faltante.Columna != c.columna {
			t.Fatalf("%s/%s: expected column %s, got %v", c.informe, c.grafico, c.columna, err)
		}
	}
}

func TestEveryMenuEntryHasARecipe(t *testing.T) {
	for _, informe := range models.TiposInforme {
		for _, grafico := range models.MenuGraficos(informe) {
			if _, ok := RecetaPara(informe, grafico); !ok {
				t.Fatalf("no recipe for %s/%s", informe, grafico)
			}
		}
	}
}
