package charts

import (
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Colormap asigna un color a un valor en [0, 1]. Los mapas continuos
// interpolan linealmente entre anclas equiespaciadas; los cualitativos
// eligen el color por tramo.
type Colormap struct {
	Nombre      string
	anclas      []color.RGBA
	cualitativo bool
}

var (
	Viridis = nuevoColormap("viridis", false,
		"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
		"#1f9e89", "#35b779", "#6ece58", "#fde725")
	Plasma = nuevoColormap("plasma", false,
		"#0d0887", "#4c02a1", "#7e03a8", "#a92395", "#cc4778",
		"#e56b5d", "#f89441", "#fdc328", "#f0f921")
	Pastel2 = nuevoColormap("Pastel2", true,
		"#b3e2cd", "#fdcdac", "#cbd5e8", "#f4cae4",
		"#e6f5c9", "#fff2ae", "#f1e2cc", "#cccccc")
)

// Paletas fijas
var (
	paletaExpedientes = []color.RGBA{
		colorHex("#ff9999"), colorHex("#66b3ff"), colorHex("#99ff99"),
		colorHex("#ffcc99"), colorHex("#c2c2f0"),
	}
	paletaCategorica = []color.RGBA{
		colorHex("#1f77b4"), colorHex("#ff7f0e"), colorHex("#2ca02c"), colorHex("#d62728"),
		colorHex("#9467bd"), colorHex("#8c564b"), colorHex("#e377c2"), colorHex("#7f7f7f"),
		colorHex("#bcbd22"), colorHex("#17becf"),
	}
	colorBarraSimple = colorHex("#1f77b4")
)

func nuevoColormap(nombre string, cualitativo bool, hex ...string) Colormap {
	anclas := make([]color.RGBA, len(hex))
	for i, h := range hex {
		anclas[i] = colorHex(h)
	}
	return Colormap{Nombre: nombre, anclas: anclas, cualitativo: cualitativo}
}

// En retorna el color para t; valores fuera de [0, 1] se recortan
func (c Colormap) En(t float64) color.RGBA {
	if len(c.anclas) == 0 {
		return color.RGBA{A: 255}
	}
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	n := len(c.anclas)
	if c.cualitativo {
		i := int(t * float64(n))
		if i >= n {
			i = n - 1
		}
		return c.anclas[i]
	}

	pos := t * float64(n-1)
	i := int(math.Floor(pos))
	if i >= n-1 {
		return c.anclas[n-1]
	}
	f := pos - float64(i)
	a, b := c.anclas[i], c.anclas[i+1]
	return color.RGBA{
		R: mezclar(a.R, b.R, f),
		G: mezclar(a.G, b.G, f),
		B: mezclar(a.B, b.B, f),
		A: 255,
	}
}

func mezclar(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

// normalizar lleva v al rango [min, max] del grupo; 0 si todos son iguales
func normalizar(v, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (v - min) / (max - min)
}

// intensidades colorea cada valor según su posición en el rango del grupo.
// Con desplazado=true usa 0.2 + 0.8·norm(v).
func intensidades(cmap Colormap, valores []float64, desplazado bool) []color.RGBA {
	if len(valores) == 0 {
		return nil
	}
	min, max := valores[0], valores[0]
	for _, v := range valores[1:] {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}

	colores := make([]color.RGBA, len(valores))
	for i, v := range valores {
		t := normalizar(v, min, max)
		if desplazado {
			t = 0.2 + 0.8*t
		}
		colores[i] = cmap.En(t)
	}
	return colores
}

func colorHex(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
