package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Tabla es el resultado de un informe: columnas con nombre y filas posicionales.
// El conjunto de columnas depende del procedimiento invocado.
type Tabla struct {
	Columnas []string `json:"columnas"`
	Filas    [][]any  `json:"filas"`
}

// Vacia indica si la tabla no tiene filas
func (t Tabla) Vacia() bool {
	return len(t.Filas) == 0
}

// CantidadFilas retorna el número de filas
func (t Tabla) CantidadFilas() int {
	return len(t.Filas)
}

// IndiceColumna busca una columna por nombre exacto
func (t Tabla) IndiceColumna(nombre string) (int, bool) {
	for i, c := range t.Columnas {
		if c == nombre {
			return i, true
		}
	}
	return -1, false
}

// Valor retorna la celda (i, j) o nil si está fuera de rango
func (t Tabla) Valor(i, j int) any {
	if i < 0 || i >= len(t.Filas) {
		return nil
	}
	fila := t.Filas[i]
	if j < 0 || j >= len(fila) {
		return nil
	}
	return fila[j]
}

// Texto retorna la representación canónica de la celda (i, j)
func (t Tabla) Texto(i, j int) string {
	return Texto(t.Valor(i, j))
}

// FilasTexto convierte todas las celdas a texto (para tablas en pantalla)
func (t Tabla) FilasTexto() [][]string {
	out := make([][]string, len(t.Filas))
	for i := range t.Filas {
		fila := make([]string, len(t.Columnas))
		for j := range t.Columnas {
			fila[j] = t.Texto(i, j)
		}
		out[i] = fila
	}
	return out
}

// Texto convierte un valor escalar a su forma de texto canónica.
// Es la misma representación que se obtiene al releer una exportación a Excel.
func Texto(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return x.Format(FORMATO_FECHA_HORA)
	case decimal.Decimal:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Numero interpreta una celda como número. nil cuenta como 0 (igual que una suma
// que ignora nulos); el segundo valor es false si la celda no es numérica.
func Numero(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, true
	case int64:
		return decimal.NewFromInt(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case decimal.Decimal:
		return x, true
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case []byte:
		d, err := decimal.NewFromString(string(x))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}
