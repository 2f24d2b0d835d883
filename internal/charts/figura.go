package charts

import "image/color"

// TipoPanel es la forma que dibuja un panel
type TipoPanel int

const (
	PanelBarras TipoPanel = iota
	PanelTorta
	PanelDona
	PanelLinea
)

func (t TipoPanel) String() string {
	switch t {
	case PanelBarras:
		return "barras"
	case PanelTorta:
		return "torta"
	case PanelDona:
		return "dona"
	case PanelLinea:
		return "linea"
	default:
		return "desconocido"
	}
}

// Punto es una categoría (barra, porción) o un punto de la línea
type Punto struct {
	Etiqueta string
	// X solo se usa en paneles de línea (hora del día)
	X         float64
	Valor     float64
	Anotacion string
	Color     color.RGBA
}

// Panel describe un gráfico individual sin depender del motor de dibujo
type Panel struct {
	Tipo   TipoPanel
	Titulo string
	EjeX   string
	EjeY   string
	Puntos []Punto
	// RotacionEtiquetas en grados para las etiquetas del eje X
	RotacionEtiquetas float64
}

// Vacio indica que no hay nada para dibujar en el panel
func (p Panel) Vacio() bool {
	for _, pt := range p.Puntos {
		if pt.Valor != 0 {
			return false
		}
	}
	return true
}

// Total suma los valores del panel
func (p Panel) Total() float64 {
	var total float64
	for _, pt := range p.Puntos {
		total += pt.Valor
	}
	return total
}

// Figura es la grilla Filas x Columnas de paneles que produce una receta
type Figura struct {
	Filas    int
	Columnas int
	Paneles  []Panel
}

func figuraSimple(p Panel) Figura {
	return Figura{Filas: 1, Columnas: 1, Paneles: []Panel{p}}
}
