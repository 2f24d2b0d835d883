package shell

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/WolfWilson/informes-jub/internal/charts"
	"github.com/WolfWilson/informes-jub/internal/export"
	"github.com/WolfWilson/informes-jub/internal/models"
	"github.com/WolfWilson/informes-jub/internal/report"
)

var (
	ErrSinDatos            = errors.New(models.MSG_SIN_DATOS)
	ErrSinInforme          = errors.New(models.MSG_SIN_INFORME)
	ErrGraficoNoDisponible = errors.New("el gráfico no está disponible para este informe")
)

// Informe es el resultado vigente: la solicitud que lo produjo y su tabla
type Informe struct {
	Solicitud  report.Solicitud `json:"-"`
	Tabla      models.Tabla     `json:"tabla"`
	GeneradoEn time.Time        `json:"generado_en"`
}

// Sesion es dueña del único informe vigente y de la superficie del gráfico.
// Cada Generar reemplaza el informe anterior.
type Sesion struct {
	mu        sync.RWMutex
	generador *report.Generador
	lienzo    *charts.Lienzo

	actual *Informe
	// ultima se conserva aunque el último resultado haya sido vacío, para el refresco
	ultima  *report.Solicitud
	grafico models.TipoGrafico

	// graficoMu serializa el uso del lienzo compartido
	graficoMu sync.Mutex
}

func NuevaSesion(generador *report.Generador, lienzo *charts.Lienzo) *Sesion {
	return &Sesion{generador: generador, lienzo: lienzo}
}

// Generar ejecuta la solicitud y reemplaza el informe vigente. Un resultado
// vacío deja la sesión sin informe y retorna ErrSinDatos.
func (s *Sesion) Generar(ctx context.Context, sol report.Solicitud) (Informe, error) {
	tabla := s.generador.Generar(ctx, sol)

	s.mu.Lock()
	defer s.mu.Unlock()

	copia := sol
	s.ultima = &copia

	if tabla.Vacia() {
		s.actual = nil
		s.grafico = ""
		s.lienzo.Limpiar()
		log.Printf("⚠️  %s: sin datos para %s", sol.Informe.Etiqueta(), rangoTexto(sol.Rango))
		return Informe{}, ErrSinDatos
	}

	inf := Informe{Solicitud: sol, Tabla: tabla, GeneradoEn: time.Now()}
	s.actual = &inf
	log.Printf("✅ %s generado: %d filas", sol.Informe.Etiqueta(), tabla.CantidadFilas())
	return inf, nil
}

// Regenerar repite la última solicitud (la usa el refresco automático)
func (s *Sesion) Regenerar(ctx context.Context) (Informe, error) {
	s.mu.RLock()
	ultima := s.ultima
	s.mu.RUnlock()

	if ultima == nil {
		return Informe{}, ErrSinInforme
	}
	return s.Generar(ctx, *ultima)
}

// Actual retorna el informe vigente
func (s *Sesion) Actual() (Informe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.actual == nil {
		return Informe{}, ErrSinInforme
	}
	return *s.actual, nil
}

// GraficoActual retorna el último gráfico dibujado ("" si no hay)
func (s *Sesion) GraficoActual() models.TipoGrafico {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grafico
}

// Graficar dibuja el gráfico del informe recibido y retorna una copia de la imagen
func (s *Sesion) Graficar(inf Informe, grafico models.TipoGrafico) (image.Image, error) {
	if !models.GraficoDisponible(inf.Solicitud.Informe, grafico) {
		return nil, fmt.Errorf("%w: %s / %s", ErrGraficoNoDisponible, inf.Solicitud.Informe.Etiqueta(), grafico.Etiqueta())
	}

	s.graficoMu.Lock()
	defer s.graficoMu.Unlock()

	if err := charts.Render(inf.Tabla, inf.Solicitud.Informe, grafico, s.lienzo); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.grafico = grafico
	s.mu.Unlock()

	return s.lienzo.Imagen(), nil
}

// GraficarActual dibuja sobre el informe vigente
func (s *Sesion) GraficarActual(grafico models.TipoGrafico) (image.Image, error) {
	inf, err := s.Actual()
	if err != nil {
		return nil, err
	}
	return s.Graficar(inf, grafico)
}

// ExportarExcel guarda el informe vigente en la ruta elegida
func (s *Sesion) ExportarExcel(ruta string) error {
	inf, err := s.Actual()
	if err != nil {
		return err
	}
	return export.ExportarExcel(inf.Tabla, ruta)
}

// ExportarGrafico guarda la superficie actual como PNG
func (s *Sesion) ExportarGrafico(ruta string) error {
	if _, err := s.Actual(); err != nil {
		return err
	}
	s.graficoMu.Lock()
	img := s.lienzo.Imagen()
	s.graficoMu.Unlock()
	return export.EscribirPNG(img, ruta)
}

// NombreSugerido propone el nombre de archivo para el informe vigente
func (s *Sesion) NombreSugerido(ext string) (string, error) {
	inf, err := s.Actual()
	if err != nil {
		return "", err
	}
	return export.NombreSugerido(inf.Solicitud.Informe, inf.Solicitud.Rango, ext), nil
}

// Operadores carga el lookup para el filtro de operadores
func (s *Sesion) Operadores(ctx context.Context) []models.Operador {
	return s.generador.Operadores(ctx)
}

func rangoTexto(r models.RangoFechas) string {
	inicio, fin := r.Formato()
	return inicio + " al " + fin
}
