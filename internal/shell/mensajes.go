package shell

import (
	"errors"
	"fmt"

	"github.com/WolfWilson/informes-jub/internal/charts"
)

// MensajeUsuario traduce un error al texto que se muestra en pantalla.
// Ningún error termina el proceso: todos terminan en un mensaje.
func MensajeUsuario(err error) string {
	if err == nil {
		return ""
	}

	var faltante *charts.ColumnaFaltanteError
	switch {
	case errors.Is(err, ErrSinDatos), errors.Is(err, ErrSinInforme):
		return err.Error()
	case errors.As(err, &faltante):
		return fmt.Sprintf("Error al generar el gráfico: %s", faltante.Error())
	case errors.Is(err, charts.ErrRenderizado), errors.Is(err, ErrGraficoNoDisponible):
		return fmt.Sprintf("Error al generar el gráfico: %v", err)
	default:
		return fmt.Sprintf("Error al generar el informe: %v", err)
	}
}
