package charts

import (
	"errors"
	"fmt"

	"github.com/WolfWilson/informes-jub/internal/models"
)

var (
	// ErrColumnaFaltante: la tabla no trae una columna que la receta necesita
	ErrColumnaFaltante = errors.New("charts: columna no encontrada")
	// ErrRenderizado agrupa cualquier otra falla al armar o dibujar un gráfico
	ErrRenderizado = errors.New("charts: error de renderizado")
)

// ColumnaFaltanteError nombra la columna ausente
type ColumnaFaltanteError struct {
	Columna string
}

func (e *ColumnaFaltanteError) Error() string {
	return fmt.Sprintf("Columna no encontrada - %s", e.Columna)
}

func (e *ColumnaFaltanteError) Is(target error) bool {
	return target == ErrColumnaFaltante
}

// RenderError envuelve las demás fallas con el contexto del gráfico pedido
type RenderError struct {
	Informe models.TipoInforme
	Grafico models.TipoGrafico
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s / %s: %v", e.Informe.Etiqueta(), e.Grafico.Etiqueta(), e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func (e *RenderError) Is(target error) bool {
	return target == ErrRenderizado
}

// envolver conserva ColumnaFaltanteError tal cual y envuelve todo lo demás
func envolver(informe models.TipoInforme, grafico models.TipoGrafico, err error) error {
	var faltante *ColumnaFaltanteError
	if errors.As(err, &faltante) {
		return faltante
	}
	var render *RenderError
	if errors.As(err, &render) {
		return render
	}
	return &RenderError{Informe: informe, Grafico: grafico, Err: err}
}
