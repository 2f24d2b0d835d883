package export

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"strings"

	"github.com/WolfWilson/informes-jub/internal/models"
)

// NombreSugerido arma el nombre propuesto al exportar, p.ej.
// Informe_de_Altas_20240101_al_20240131.xlsx
func NombreSugerido(informe models.TipoInforme, rango models.RangoFechas, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s_%s_al_%s%s",
		strings.ReplaceAll(informe.Etiqueta(), " ", "_"),
		rango.Inicio.Format(models.FORMATO_FECHA_ARCHIVO),
		rango.Fin.Format(models.FORMATO_FECHA_ARCHIVO),
		ext,
	)
}

// EscribirPNG codifica la imagen del gráfico
func EscribirPNG(img image.Image, ruta string) (err error) {
	archivo, err := os.Create(ruta)
	if err != nil {
		return fmt.Errorf("export: error creando %s: %w", ruta, err)
	}
	defer func() {
		if cerrarErr := archivo.Close(); cerrarErr != nil && err == nil {
			err = fmt.Errorf("export: error cerrando %s: %w", ruta, cerrarErr)
		}
	}()

	if err := png.Encode(archivo, img); err != nil {
		return fmt.Errorf("export: error codificando PNG: %w", err)
	}

	log.Printf("✅ Gráfico exportado: %s", ruta)
	return nil
}
