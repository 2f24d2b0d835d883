package charts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/WolfWilson/informes-jub/internal/models"
)

// Conteo es la magnitud agregada de una categoría
type Conteo struct {
	Clave string
	Valor float64
}

// ConteoHora es la cantidad de registros en una hora del día
type ConteoHora struct {
	Hora     int
	Cantidad int
}

func columna(t models.Tabla, nombre string) (int, error) {
	idx, ok := t.IndiceColumna(nombre)
	if !ok {
		return -1, &ColumnaFaltanteError{Columna: nombre}
	}
	return idx, nil
}

// ordenarDescendente ordena por valor; los empates conservan el orden de aparición
func ordenarDescendente(conteos []Conteo) {
	sort.SliceStable(conteos, func(i, j int) bool {
		return conteos[i].Valor > conteos[j].Valor
	})
}

// Frecuencias cuenta las apariciones de cada valor de la columna, de mayor a menor.
// Las celdas nulas se descartan. Con recortar=true se quitan espacios al valor.
func Frecuencias(t models.Tabla, nombre string, recortar bool) ([]Conteo, error) {
	idx, err := columna(t, nombre)
	if err != nil {
		return nil, err
	}

	posiciones := make(map[string]int)
	var conteos []Conteo
	for i := range t.Filas {
		v := t.Valor(i, idx)
		if v == nil {
			continue
		}
		clave := models.Texto(v)
		if recortar {
			clave = strings.TrimSpace(clave)
		}
		if p, ok := posiciones[clave]; ok {
			conteos[p].Valor++
			continue
		}
		posiciones[clave] = len(conteos)
		conteos = append(conteos, Conteo{Clave: clave, Valor: 1})
	}

	ordenarDescendente(conteos)
	return conteos, nil
}

// SumaPorGrupo suma la columna valor agrupando por la columna grupo (recortada),
// de mayor a menor. Un valor nulo suma 0; un grupo nulo se descarta.
func SumaPorGrupo(t models.Tabla, grupo, valor string) ([]Conteo, error) {
	ig, err := columna(t, grupo)
	if err != nil {
		return nil, err
	}
	iv, err := columna(t, valor)
	if err != nil {
		return nil, err
	}

	posiciones := make(map[string]int)
	var conteos []Conteo
	for i := range t.Filas {
		g := t.Valor(i, ig)
		if g == nil {
			continue
		}
		n, ok := models.Numero(t.Valor(i, iv))
		if !ok {
			return nil, fmt.Errorf("valor no numérico en %s (fila %d): %q", valor, i+1, t.Texto(i, iv))
		}
		clave := strings.TrimSpace(models.Texto(g))
		f, _ := n.Float64()
		if p, ok := posiciones[clave]; ok {
			conteos[p].Valor += f
			continue
		}
		posiciones[clave] = len(conteos)
		conteos = append(conteos, Conteo{Clave: clave, Valor: f})
	}

	ordenarDescendente(conteos)
	return conteos, nil
}

// horaDe extrae la hora del día de una celda de fecha de alta
func horaDe(v any) (int, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.Hour(), true
	case string:
		ts, err := time.Parse(models.FORMATO_FECHA_ALTA, strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return ts.Hour(), true
	case []byte:
		return horaDe(string(x))
	default:
		return 0, false
	}
}

// ConteoPorHora agrupa la columna de fechas por hora del día (dd-mm-yyyy HH:MM, con o sin ceros).
// Las fechas nulas o inválidas se descartan; solo aparecen las horas presentes, en orden.
func ConteoPorHora(t models.Tabla, nombre string) ([]ConteoHora, error) {
	idx, err := columna(t, nombre)
	if err != nil {
		return nil, err
	}

	var porHora [24]int
	for i := range t.Filas {
		if h, ok := horaDe(t.Valor(i, idx)); ok {
			porHora[h]++
		}
	}

	var out []ConteoHora
	for h, n := range porHora {
		if n > 0 {
			out = append(out, ConteoHora{Hora: h, Cantidad: n})
		}
	}
	return out, nil
}

type periodo struct {
	anio int64
	mes  int64
}

// ConteoPorPeriodo cuenta filas por (Anio, Mes), ordenado por año y luego mes.
// La clave es "Anio-Mes" sin relleno de ceros.
func ConteoPorPeriodo(t models.Tabla, colAnio, colMes string) ([]Conteo, error) {
	ia, err := columna(t, colAnio)
	if err != nil {
		return nil, err
	}
	im, err := columna(t, colMes)
	if err != nil {
		return nil, err
	}

	cuenta := make(map[periodo]int)
	for i := range t.Filas {
		va, vm := t.Valor(i, ia), t.Valor(i, im)
		if va == nil || vm == nil {
			continue
		}
		a, okA := models.Numero(va)
		m, okM := models.Numero(vm)
		if !okA || !okM {
			return nil, fmt.Errorf("periodo no numérico (fila %d): %s-%s", i+1, t.Texto(i, ia), t.Texto(i, im))
		}
		cuenta[periodo{anio: a.IntPart(), mes: m.IntPart()}]++
	}

	periodos := make([]periodo, 0, len(cuenta))
	for p := range cuenta {
		periodos = append(periodos, p)
	}
	sort.Slice(periodos, func(i, j int) bool {
		if periodos[i].anio != periodos[j].anio {
			return periodos[i].anio < periodos[j].anio
		}
		return periodos[i].mes < periodos[j].mes
	})

	out := make([]Conteo, len(periodos))
	for i, p := range periodos {
		out[i] = Conteo{Clave: fmt.Sprintf("%d-%d", p.anio, p.mes), Valor: float64(cuenta[p])}
	}
	return out, nil
}

func valoresDe(conteos []Conteo) []float64 {
	out := make([]float64, len(conteos))
	for i, c := range conteos {
		out[i] = c.Valor
	}
	return out
}
