package charts

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
)

// Lienzo es la superficie de dibujo de un gráfico. Se limpia antes de cada render.
type Lienzo struct {
	mu       sync.Mutex
	img      *image.RGBA
	dibujado bool
}

// NuevoLienzo crea una superficie en blanco; tamaños no positivos usan 1200x700
func NuevoLienzo(ancho, alto int) *Lienzo {
	if ancho <= 0 {
		ancho = 1200
	}
	if alto <= 0 {
		alto = 700
	}
	l := &Lienzo{img: image.NewRGBA(image.Rect(0, 0, ancho, alto))}
	l.Limpiar()
	return l
}

// Limpiar borra cualquier dibujo previo
func (l *Lienzo) Limpiar() {
	l.mu.Lock()
	defer l.mu.Unlock()
	draw.Draw(l.img, l.img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	l.dibujado = false
}

// Ancho y Alto de la superficie
func (l *Lienzo) Ancho() int { return l.img.Bounds().Dx() }
func (l *Lienzo) Alto() int  { return l.img.Bounds().Dy() }

// Dibujado indica si la superficie tiene un gráfico desde la última limpieza
func (l *Lienzo) Dibujado() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dibujado
}

// Imagen retorna una copia del contenido actual
func (l *Lienzo) Imagen() *image.RGBA {
	l.mu.Lock()
	defer l.mu.Unlock()
	copia := image.NewRGBA(l.img.Bounds())
	draw.Draw(copia, copia.Bounds(), l.img, l.img.Bounds().Min, draw.Src)
	return copia
}

// pegar compone una imagen dentro del rectángulo destino
func (l *Lienzo) pegar(dst image.Rectangle, src image.Image) {
	l.mu.Lock()
	defer l.mu.Unlock()
	draw.Draw(l.img, dst, src, src.Bounds().Min, draw.Over)
	l.dibujado = true
}
