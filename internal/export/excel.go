package export

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/WolfWilson/informes-jub/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	HOJA_INFORME        = "Sheet1"
	FORMATO_FECHA_EXCEL = "yyyy-mm-dd hh:mm:ss"
	// MAX_CIFRAS_EXCEL es la precisión con que Excel muestra un número
	MAX_CIFRAS_EXCEL = 15
)

// ErrTablaVacia se retorna al intentar exportar una tabla sin columnas
var ErrTablaVacia = errors.New("export: la tabla no tiene columnas")

// ExportarExcel escribe la tabla en una sola hoja: fila de cabecera y filas de datos.
// Números quedan como números y fechas como fechas.
func ExportarExcel(tabla models.Tabla, ruta string) error {
	if len(tabla.Columnas) == 0 {
		return ErrTablaVacia
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("⚠️  Error cerrando libro Excel: %v", err)
		}
	}()

	formato := FORMATO_FECHA_EXCEL
	estiloFecha, err := f.NewStyle(&excelize.Style{CustomNumFmt: &formato})
	if err != nil {
		return fmt.Errorf("export: error creando estilo de fecha: %w", err)
	}
	estiloCabecera, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: error creando estilo de cabecera: %w", err)
	}

	for j, nombre := range tabla.Columnas {
		celda, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(HOJA_INFORME, celda, nombre); err != nil {
			return fmt.Errorf("export: error escribiendo cabecera %s: %w", nombre, err)
		}
		if err := f.SetCellStyle(HOJA_INFORME, celda, celda, estiloCabecera); err != nil {
			return err
		}
	}

	for i, fila := range tabla.Filas {
		for j := range tabla.Columnas {
			if j >= len(fila) || fila[j] == nil {
				continue
			}
			celda, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := escribirCelda(f, celda, fila[j], estiloFecha); err != nil {
				return fmt.Errorf("export: error escribiendo %s: %w", celda, err)
			}
		}
	}

	if err := f.SaveAs(ruta); err != nil {
		return fmt.Errorf("export: error guardando %s: %w", ruta, err)
	}

	log.Printf("✅ Informe exportado a Excel: %s (%d filas)", ruta, tabla.CantidadFilas())
	return nil
}

func escribirCelda(f *excelize.File, celda string, v any, estiloFecha int) error {
	switch x := v.(type) {
	case string:
		return f.SetCellStr(HOJA_INFORME, celda, x)
	case []byte:
		return f.SetCellStr(HOJA_INFORME, celda, string(x))
	case decimal.Decimal:
		return escribirNumero(f, celda, x.String(), x.InexactFloat64())
	case time.Time:
		if err := f.SetCellValue(HOJA_INFORME, celda, x); err != nil {
			return err
		}
		return f.SetCellStyle(HOJA_INFORME, celda, celda, estiloFecha)
	case int64:
		return escribirNumero(f, celda, models.Texto(x), float64(x))
	case int:
		return escribirNumero(f, celda, models.Texto(x), float64(x))
	case int32:
		return escribirNumero(f, celda, models.Texto(x), float64(x))
	case float64:
		return escribirNumero(f, celda, models.Texto(x), x)
	case float32:
		return escribirNumero(f, celda, models.Texto(x), float64(x))
	case bool:
		return f.SetCellValue(HOJA_INFORME, celda, x)
	default:
		return f.SetCellStr(HOJA_INFORME, celda, models.Texto(x))
	}
}

// escribirNumero guarda el valor como número solo si Excel lo vuelve a mostrar
// con el mismo texto; si no, se guarda el texto para no perder dígitos.
func escribirNumero(f *excelize.File, celda, texto string, valor float64) error {
	if !numeroExacto(texto, valor) {
		return f.SetCellStr(HOJA_INFORME, celda, texto)
	}
	return f.SetCellFloat(HOJA_INFORME, celda, valor, -1, 64)
}

// numeroExacto: la conversión a float64 no pierde dígitos, hay a lo sumo
// 15 cifras significativas y el formato General no pasa a notación exponencial.
func numeroExacto(texto string, valor float64) bool {
	if math.IsNaN(valor) || math.IsInf(valor, 0) {
		return false
	}
	if strconv.FormatFloat(valor, 'f', -1, 64) != texto {
		return false
	}
	if abs := math.Abs(valor); abs != 0 && (abs < 1e-4 || abs >= 1e15) {
		return false
	}
	return cifrasSignificativas(texto) <= MAX_CIFRAS_EXCEL
}

func cifrasSignificativas(texto string) int {
	digitos := strings.TrimLeft(strings.NewReplacer("-", "", ".", "").Replace(texto), "0")
	if strings.Contains(texto, ".") {
		return len(digitos)
	}
	return len(strings.TrimRight(digitos, "0"))
}

// LeerExcel relee la primera hoja: cabecera y filas como texto, con las filas
// completadas hasta el ancho de la cabecera.
func LeerExcel(ruta string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(ruta)
	if err != nil {
		return nil, nil, fmt.Errorf("export: error abriendo %s: %w", ruta, err)
	}
	defer f.Close()

	hojas := f.GetSheetList()
	if len(hojas) == 0 {
		return nil, nil, fmt.Errorf("export: %s no tiene hojas", ruta)
	}

	filas, err := f.GetRows(hojas[0])
	if err != nil {
		return nil, nil, fmt.Errorf("export: error leyendo filas: %w", err)
	}
	if len(filas) == 0 {
		return nil, nil, nil
	}

	cabecera := filas[0]
	datos := make([][]string, 0, len(filas)-1)
	for _, fila := range filas[1:] {
		completa := make([]string, len(cabecera))
		copy(completa, fila)
		datos = append(datos, completa)
	}
	return cabecera, datos, nil
}
