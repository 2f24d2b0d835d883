package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	TEXTO_SIN_DATOS         = "Sin datos"
	ANCHO_MAXIMO_ETIQUETA   = 28
	TAMANO_FUENTE_TITULO    = 12
	TAMANO_FUENTE_EJE       = 10
	TAMANO_FUENTE_ETIQUETAS = 8
)

var colorFondoPanel = drawing.Color{R: 0xf0, G: 0xf0, B: 0xf0, A: 255}

// Dibujar compone los paneles de la figura en la grilla del lienzo
func Dibujar(fig Figura, l *Lienzo) error {
	filas, columnas := fig.Filas, fig.Columnas
	if filas < 1 {
		filas = 1
	}
	if columnas < 1 {
		columnas = 1
	}

	anchoCelda := l.Ancho() / columnas
	altoCelda := l.Alto() / filas

	for i, p := range fig.Paneles {
		if i >= filas*columnas {
			break
		}
		img, err := dibujarPanel(p, anchoCelda, altoCelda)
		if err != nil {
			return fmt.Errorf("panel %q: %w", p.Titulo, err)
		}
		x0 := (i % columnas) * anchoCelda
		y0 := (i / columnas) * altoCelda
		l.pegar(image.Rect(x0, y0, x0+anchoCelda, y0+altoCelda), img)
	}
	return nil
}

func dibujarPanel(p Panel, ancho, alto int) (image.Image, error) {
	if p.Vacio() {
		return panelSinDatos(p.Titulo, ancho, alto), nil
	}

	switch p.Tipo {
	case PanelTorta, PanelDona:
		return dibujarTorta(p, ancho, alto)
	case PanelLinea:
		return dibujarLinea(p, ancho, alto)
	case PanelBarras:
		return dibujarBarras(p, ancho, alto)
	default:
		return nil, fmt.Errorf("tipo de panel desconocido: %s", p.Tipo)
	}
}

func aDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func radianes(grados float64) float64 {
	return grados * math.Pi / 180
}

// dibujarTorta usa PieChart o DonutChart de go-chart
func dibujarTorta(p Panel, ancho, alto int) (image.Image, error) {
	valores := make([]chart.Value, 0, len(p.Puntos))
	for _, pt := range p.Puntos {
		if pt.Valor <= 0 {
			continue
		}
		valores = append(valores, chart.Value{
			Value: pt.Valor,
			Label: pt.Etiqueta + " " + strings.ReplaceAll(pt.Anotacion, "\n", " "),
			Style: chart.Style{
				FillColor:   aDrawing(pt.Color),
				StrokeColor: chart.ColorWhite,
				StrokeWidth: 1,
				FontColor:   chart.ColorBlack,
				FontSize:    TAMANO_FUENTE_EJE,
			},
		})
	}

	fondo := chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}}

	var buf bytes.Buffer
	var err error
	if p.Tipo == PanelDona {
		dc := chart.DonutChart{Title: p.Titulo, Width: ancho, Height: alto, Values: valores, Background: fondo}
		err = dc.Render(chart.PNG, &buf)
	} else {
		pc := chart.PieChart{Title: p.Titulo, Width: ancho, Height: alto, Values: valores, Background: fondo}
		err = pc.Render(chart.PNG, &buf)
	}
	if err != nil {
		return nil, fmt.Errorf("error dibujando %s: %w", p.Tipo, err)
	}
	return png.Decode(&buf)
}

// dibujarLinea une las horas presentes con una línea punteada y anota cada punto
func dibujarLinea(p Panel, ancho, alto int) (image.Image, error) {
	xs := make([]float64, len(p.Puntos))
	ys := make([]float64, len(p.Puntos))
	anotaciones := make([]chart.Value2, len(p.Puntos))
	minX, maxX, maxY := p.Puntos[0].X, p.Puntos[0].X, 0.0
	for i, pt := range p.Puntos {
		xs[i], ys[i] = pt.X, pt.Valor
		anotaciones[i] = chart.Value2{XValue: pt.X, YValue: pt.Valor, Label: pt.Anotacion}
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Valor)
	}

	var ticks []chart.Tick
	for h := minX - 1; h <= maxX+1; h++ {
		ticks = append(ticks, chart.Tick{Value: h, Label: strconv.Itoa(int(h))})
	}

	ch := chart.Chart{
		Title:      p.Titulo,
		Width:      ancho,
		Height:     alto,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  p.EjeX,
			Range: &chart.ContinuousRange{Min: minX - 1, Max: maxX + 1},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  p.EjeY,
			Range: &chart.ContinuousRange{Min: 0, Max: maxY + 5},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    p.Titulo,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor:     chart.ColorBlue,
					StrokeWidth:     2,
					StrokeDashArray: []float64{6, 4},
					DotWidth:        5,
					DotColor:        chart.ColorRed,
				},
			},
			chart.AnnotationSeries{Annotations: anotaciones},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("error dibujando línea: %w", err)
	}
	return png.Decode(&buf)
}

// dibujarBarras dibuja con las primitivas del Renderer de go-chart: cada barra
// con su color, su altura anotada encima y etiquetas rotadas en el eje X.
func dibujarBarras(p Panel, ancho, alto int) (image.Image, error) {
	r, err := chart.PNG(ancho, alto)
	if err != nil {
		return nil, err
	}
	fuente, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}
	r.SetFont(fuente)

	etiquetas := make([]string, len(p.Puntos))
	for i, pt := range p.Puntos {
		etiquetas[i] = runewidth.Truncate(pt.Etiqueta, ANCHO_MAXIMO_ETIQUETA, "…")
	}

	izq, der, sup, inf := 70, 20, 45, 50
	if p.RotacionEtiquetas > 0 {
		r.SetFontSize(TAMANO_FUENTE_ETIQUETAS)
		masLarga := 0
		for _, e := range etiquetas {
			if w := r.MeasureText(e).Width(); w > masLarga {
				masLarga = w
			}
		}
		inf = 40 + int(float64(masLarga)*math.Sin(radianes(p.RotacionEtiquetas)))
		if inf > alto/3 {
			inf = alto / 3
		}
	}

	x0, y0, x1, y1 := izq, sup, ancho-der, alto-inf
	if x1-x0 < 20 || y1-y0 < 20 {
		return nil, fmt.Errorf("área de dibujo insuficiente (%dx%d)", ancho, alto)
	}

	rectangulo(r, 0, 0, ancho, alto, chart.ColorWhite, chart.ColorWhite, 0)
	rectangulo(r, x0, y0, x1, y1, colorFondoPanel, colorFondoPanel, 0)

	maxValor := 0.0
	for _, pt := range p.Puntos {
		maxValor = math.Max(maxValor, pt.Valor)
	}
	techo := maxValor + 2
	escala := float64(y1-y0) / techo

	// Grilla y marcas del eje Y
	r.SetFontSize(TAMANO_FUENTE_ETIQUETAS)
	r.SetFontColor(chart.ColorBlack)
	for _, v := range marcasEnteras(techo, 5) {
		y := y1 - int(math.Round(v*escala))
		linea(r, x0, y, x1, y, chart.ColorWhite, 1)
		texto := entero(v)
		caja := r.MeasureText(texto)
		r.Text(texto, x0-6-caja.Width(), y+caja.Height()/2)
	}

	ranura := float64(x1-x0) / float64(len(p.Puntos))
	mitad := int(ranura * 0.4)
	for i, pt := range p.Puntos {
		cx := x0 + int(ranura*(float64(i)+0.5))
		tope := y1 - int(math.Round(pt.Valor*escala))
		rectangulo(r, cx-mitad, tope, cx+mitad, y1, aDrawing(pt.Color), chart.ColorWhite, 1.5)

		r.SetFontSize(9)
		caja := r.MeasureText(pt.Anotacion)
		r.Text(pt.Anotacion, cx-caja.Width()/2, tope-4)

		r.SetFontSize(TAMANO_FUENTE_ETIQUETAS)
		etiquetaEje(r, etiquetas[i], cx, y1+6, p.RotacionEtiquetas)
	}

	linea(r, x0, y1, x1, y1, chart.ColorBlack, 1)
	linea(r, x0, y0, x0, y1, chart.ColorBlack, 1)

	r.SetFontSize(TAMANO_FUENTE_TITULO)
	caja := r.MeasureText(p.Titulo)
	r.Text(p.Titulo, (ancho-caja.Width())/2, sup-15)

	r.SetFontSize(TAMANO_FUENTE_EJE)
	if p.EjeX != "" {
		caja = r.MeasureText(p.EjeX)
		r.Text(p.EjeX, (x0+x1-caja.Width())/2, alto-8)
	}
	if p.EjeY != "" {
		caja = r.MeasureText(p.EjeY)
		r.SetTextRotation(radianes(-90))
		r.Text(p.EjeY, 18, (y0+y1+caja.Width())/2)
		r.ClearTextRotation()
	}

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, fmt.Errorf("error guardando barras: %w", err)
	}
	return png.Decode(&buf)
}

func rectangulo(r chart.Renderer, x0, y0, x1, y1 int, relleno, borde drawing.Color, grosor float64) {
	r.SetFillColor(relleno)
	r.SetStrokeColor(borde)
	r.SetStrokeWidth(grosor)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.LineTo(x0, y0)
	r.Close()
	if grosor > 0 {
		r.FillStroke()
	} else {
		r.Fill()
	}
}

func linea(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color, grosor float64) {
	r.SetStrokeColor(c)
	r.SetStrokeWidth(grosor)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y1)
	r.Stroke()
}

// etiquetaEje escribe la etiqueta de una barra; rotada termina bajo la barra
func etiquetaEje(r chart.Renderer, texto string, cx, y int, grados float64) {
	caja := r.MeasureText(texto)
	if grados == 0 {
		r.Text(texto, cx-caja.Width()/2, y+caja.Height())
		return
	}
	rad := radianes(grados)
	w := float64(caja.Width())
	r.SetTextRotation(-rad)
	r.Text(texto, cx-int(w*math.Cos(rad)), y+caja.Height()+int(w*math.Sin(rad)))
	r.ClearTextRotation()
}

// marcasEnteras reparte hasta n marcas enteras entre 0 y techo
func marcasEnteras(techo float64, n int) []float64 {
	paso := math.Ceil(techo / float64(n))
	if paso < 1 {
		paso = 1
	}
	var marcas []float64
	for v := 0.0; v <= techo; v += paso {
		marcas = append(marcas, v)
	}
	return marcas
}

// panelSinDatos deja el título y un aviso centrado cuando no hay valores
func panelSinDatos(titulo string, ancho, alto int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, ancho, alto))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	escribir := func(texto string, y int, c color.Color) {
		dr := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
		w := dr.MeasureString(texto).Ceil()
		dr.Dot = fixed.Point26_6{X: fixed.I((ancho - w) / 2), Y: fixed.I(y)}
		dr.DrawString(texto)
	}

	if titulo != "" {
		escribir(titulo, 24, color.Black)
	}
	escribir(TEXTO_SIN_DATOS, alto/2, color.Gray{Y: 120})
	return img
}
