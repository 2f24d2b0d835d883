package charts

import (
	"fmt"
	"log"

	"github.com/WolfWilson/informes-jub/internal/models"
)

// Armar resuelve la receta y arma la figura sin dibujar.
// ok=false indica una combinación sin receta.
func Armar(tabla models.Tabla, informe models.TipoInforme, grafico models.TipoGrafico) (fig Figura, ok bool, err error) {
	receta, ok := RecetaPara(informe, grafico)
	if !ok {
		return Figura{}, false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = envolver(informe, grafico, fmt.Errorf("panic armando figura: %v", r))
		}
	}()

	fig, err = receta(tabla)
	if err != nil {
		return Figura{}, true, envolver(informe, grafico, err)
	}
	return fig, true, nil
}

// Render limpia el lienzo y dibuja el gráfico pedido. Una combinación sin
// receta deja el lienzo limpio y no es un error. Cada llamada es independiente.
func Render(tabla models.Tabla, informe models.TipoInforme, grafico models.TipoGrafico, lienzo *Lienzo) (err error) {
	lienzo.Limpiar()

	fig, ok, err := Armar(tabla, informe, grafico)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("⚠️  Sin receta para %s / %s, el lienzo queda vacío", informe.Etiqueta(), grafico.Etiqueta())
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			lienzo.Limpiar()
			err = envolver(informe, grafico, fmt.Errorf("panic dibujando: %v", r))
		}
	}()

	if err := Dibujar(fig, lienzo); err != nil {
		lienzo.Limpiar()
		return envolver(informe, grafico, err)
	}
	return nil
}
