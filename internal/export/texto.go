package export

import (
	"strings"

	"github.com/WolfWilson/informes-jub/internal/models"

	"github.com/mattn/go-runewidth"
)

const SEPARADOR_COLUMNAS = "  "

// FormatearTabla arma una tabla de texto alineada por ancho de pantalla.
// Con anchoMax > 0 cada línea se recorta a ese ancho.
func FormatearTabla(tabla models.Tabla, anchoMax int) string {
	if len(tabla.Columnas) == 0 {
		return ""
	}

	filas := tabla.FilasTexto()
	anchos := make([]int, len(tabla.Columnas))
	for j, c := range tabla.Columnas {
		anchos[j] = runewidth.StringWidth(c)
	}
	for _, fila := range filas {
		for j, celda := range fila {
			if w := runewidth.StringWidth(celda); w > anchos[j] {
				anchos[j] = w
			}
		}
	}

	var b strings.Builder
	escribir := func(celdas []string) {
		partes := make([]string, len(celdas))
		for j, celda := range celdas {
			partes[j] = runewidth.FillRight(celda, anchos[j])
		}
		linea := strings.TrimRight(strings.Join(partes, SEPARADOR_COLUMNAS), " ")
		if anchoMax > 0 {
			linea = runewidth.Truncate(linea, anchoMax, "…")
		}
		b.WriteString(linea)
		b.WriteByte('\n')
	}

	escribir(tabla.Columnas)
	guiones := make([]string, len(anchos))
	for j, w := range anchos {
		guiones[j] = strings.Repeat("-", w)
	}
	escribir(guiones)
	for _, fila := range filas {
		escribir(fila)
	}
	return b.String()
}
