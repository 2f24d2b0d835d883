// Package tui provides the Bubble Tea terminal shell for the reports.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/WolfWilson/informes-jub/internal/models"
	"github.com/WolfWilson/informes-jub/internal/report"
	"github.com/WolfWilson/informes-jub/internal/shell"
)

const (
	anchoMaxColumna = 32
	altoTabla       = 12
	anchoInicial    = 120
)

var (
	tituloStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#2A5298")).
			Bold(true).
			Padding(0, 1)
	etiquetaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#388E3C"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	ayudaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	tablaStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

type generadoMsg struct {
	inf shell.Informe
	err error
	// automatico marca los resultados del refresco periódico
	automatico bool
}

type operadoresMsg []models.Operador

type exportadoMsg struct {
	ruta string
	err  error
}

// tickMsg lleva la serie a la que pertenece; al desactivar y volver a
// activar el refresco los ticks de la serie anterior se ignoran
type tickMsg struct {
	serie int
}

// Model implements the Bubble Tea report shell.
type Model struct {
	ctx       context.Context
	sesion    *shell.Sesion
	intervalo time.Duration
	dirExport string

	informe    int
	desde      textinput.Model
	hasta      textinput.Model
	foco       int
	operadores []models.Operador
	operador   int
	letra      int
	grafico    int

	tabla table.Model

	auto      bool
	serie     int
	generando bool
	omitidos  int

	mensaje string
	esError bool
	width   int
}

// NewModel constructs the shell; dirExport is where x and p write files.
func NewModel(ctx context.Context, sesion *shell.Sesion, intervalo time.Duration, dirExport string) *Model {
	if intervalo <= 0 {
		intervalo = 60 * time.Second
	}
	hoy := time.Now().Format(models.FORMATO_FECHA_PROCEDIMIENTO)
	m := &Model{
		ctx:       ctx,
		sesion:    sesion,
		intervalo: intervalo,
		dirExport: dirExport,
		desde:     newFechaInput("Desde: ", hoy),
		hasta:     newFechaInput("Hasta: ", hoy),
		tabla: table.New(
			table.WithHeight(altoTabla),
			table.WithWidth(anchoInicial),
			table.WithFocused(true),
		),
	}
	m.desde.Focus()
	return m
}

func newFechaInput(prompt, valor string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = "AAAA-MM-DD"
	input.CharLimit = len(models.FORMATO_FECHA_PROCEDIMIENTO)
	input.SetValue(valor)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.cargarOperadores()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 2 {
			m.tabla.SetWidth(msg.Width - 2)
		}
		return m, nil

	case operadoresMsg:
		m.operadores = msg
		m.operador = 0
		return m, nil

	case generadoMsg:
		m.generando = false
		if msg.automatico && errors.Is(msg.err, shell.ErrSinInforme) {
			// todavía no hay consulta que repetir
			return m, nil
		}
		m.aplicarResultado(msg)
		return m, nil

	case exportadoMsg:
		if msg.err != nil {
			m.mostrarError(msg.err)
		} else {
			m.mostrar("Archivo guardado: " + msg.ruta)
		}
		return m, nil

	case tickMsg:
		return m, m.alTick(msg)

	case tea.KeyMsg:
		return m, m.teclas(msg)
	}
	return m, nil
}

func (m *Model) teclas(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "enter":
		return m.generar()
	case "tab":
		m.informe = (m.informe + 1) % len(models.TiposInforme)
		m.grafico = 0
		return nil
	case "shift+tab":
		m.cambiarFoco()
		return nil
	case "o":
		if len(m.operadores) > 0 {
			m.operador = (m.operador + 1) % len(m.operadores)
		}
		return nil
	case "l":
		m.letra = (m.letra + 1) % len(models.Letras)
		return nil
	case "g":
		if menu := models.MenuGraficos(m.tipoInforme()); len(menu) > 0 {
			m.grafico = (m.grafico + 1) % len(menu)
		}
		return nil
	case "a":
		return m.alternarAuto()
	case "x":
		return m.exportarExcel()
	case "p":
		return m.exportarGrafico()
	case "up", "down", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.tabla, cmd = m.tabla.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	if m.foco == 0 {
		m.desde, cmd = m.desde.Update(msg)
	} else {
		m.hasta, cmd = m.hasta.Update(msg)
	}
	return cmd
}

func (m *Model) cambiarFoco() {
	if m.foco == 0 {
		m.foco = 1
		m.desde.Blur()
		m.hasta.Focus()
		return
	}
	m.foco = 0
	m.hasta.Blur()
	m.desde.Focus()
}

func (m *Model) tipoInforme() models.TipoInforme {
	return models.TiposInforme[m.informe]
}

func (m *Model) graficoSeleccionado() (models.TipoGrafico, bool) {
	menu := models.MenuGraficos(m.tipoInforme())
	if len(menu) == 0 {
		return "", false
	}
	return menu[m.grafico%len(menu)], true
}

func (m *Model) solicitud() (report.Solicitud, error) {
	rango, err := models.ParseRangoFechas(m.desde.Value(), m.hasta.Value())
	if err != nil {
		return report.Solicitud{}, err
	}
	var filtro *models.FiltroOperador
	if m.tipoInforme() == models.InformeOperadores {
		filtro = &models.FiltroOperador{Letra: models.Letras[m.letra]}
		if len(m.operadores) > 0 {
			filtro.Codigo = m.operadores[m.operador].Codigo
		}
	}
	return report.ArmarSolicitud(m.tipoInforme(), rango, filtro)
}

func (m *Model) generar() tea.Cmd {
	if m.generando {
		return nil
	}
	sol, err := m.solicitud()
	if err != nil {
		m.mostrarError(err)
		return nil
	}
	m.generando = true
	m.mostrar("Generando " + sol.Informe.Etiqueta() + "...")
	sesion, ctx := m.sesion, m.ctx
	return func() tea.Msg {
		inf, err := sesion.Generar(ctx, sol)
		return generadoMsg{inf: inf, err: err}
	}
}

func (m *Model) regenerar() tea.Cmd {
	m.generando = true
	sesion, ctx := m.sesion, m.ctx
	return func() tea.Msg {
		inf, err := sesion.Regenerar(ctx)
		return generadoMsg{inf: inf, err: err, automatico: true}
	}
}

func (m *Model) aplicarResultado(msg generadoMsg) {
	if msg.err != nil {
		m.tabla.SetRows(nil)
		m.tabla.SetColumns(nil)
		m.mostrarError(msg.err)
		return
	}
	columnas, filas := construirTabla(msg.inf.Tabla)
	// las filas se vacían antes de cambiar columnas para no dejar filas más anchas que el encabezado
	m.tabla.SetRows(nil)
	m.tabla.SetColumns(columnas)
	m.tabla.SetRows(filas)
	m.tabla.GotoTop()
	m.mostrar(fmt.Sprintf("%s: %d filas (%s)", msg.inf.Solicitud.Informe.Etiqueta(),
		msg.inf.Tabla.CantidadFilas(), msg.inf.GeneradoEn.Format("15:04:05")))
}

func (m *Model) alternarAuto() tea.Cmd {
	m.auto = !m.auto
	m.serie++
	if !m.auto {
		m.mostrar("Actualización automática desactivada")
		return nil
	}
	m.mostrar(fmt.Sprintf("Actualización automática cada %v", m.intervalo))
	return m.programarTick()
}

func (m *Model) programarTick() tea.Cmd {
	serie := m.serie
	return tea.Tick(m.intervalo, func(time.Time) tea.Msg {
		return tickMsg{serie: serie}
	})
}

// alTick repite la última consulta aunque haya vuelto vacía; si la anterior
// sigue en curso el tick se omite
func (m *Model) alTick(msg tickMsg) tea.Cmd {
	if !m.auto || msg.serie != m.serie {
		return nil
	}
	siguiente := m.programarTick()
	if m.generando {
		m.omitidos++
		log.Println("⏭️  Tick de actualización omitido: la actualización anterior sigue en curso")
		return siguiente
	}
	return tea.Batch(m.regenerar(), siguiente)
}

func (m *Model) exportarExcel() tea.Cmd {
	nombre, err := m.sesion.NombreSugerido("xlsx")
	if err != nil {
		m.mostrarError(err)
		return nil
	}
	ruta := filepath.Join(m.dirExport, nombre)
	sesion := m.sesion
	return func() tea.Msg {
		return exportadoMsg{ruta: ruta, err: sesion.ExportarExcel(ruta)}
	}
}

func (m *Model) exportarGrafico() tea.Cmd {
	nombre, err := m.sesion.NombreSugerido("png")
	if err != nil {
		m.mostrarError(err)
		return nil
	}
	grafico, ok := m.graficoSeleccionado()
	if !ok {
		m.mostrarError(fmt.Errorf("%w: %s", shell.ErrGraficoNoDisponible, m.tipoInforme().Etiqueta()))
		return nil
	}
	ruta := filepath.Join(m.dirExport, nombre)
	sesion := m.sesion
	return func() tea.Msg {
		if _, err := sesion.GraficarActual(grafico); err != nil {
			return exportadoMsg{err: err}
		}
		return exportadoMsg{ruta: ruta, err: sesion.ExportarGrafico(ruta)}
	}
}

func (m *Model) cargarOperadores() tea.Cmd {
	sesion, ctx := m.sesion, m.ctx
	return func() tea.Msg {
		return operadoresMsg(sesion.Operadores(ctx))
	}
}

func (m *Model) mostrar(texto string) {
	m.mensaje = texto
	m.esError = false
}

func (m *Model) mostrarError(err error) {
	m.mensaje = shell.MensajeUsuario(err)
	m.esError = true
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(tituloStyle.Render("Informes JUB"))
	b.WriteString("\n\n")

	b.WriteString(campo("Informe", m.tipoInforme().Etiqueta()))
	b.WriteString("\n")
	b.WriteString(m.desde.View())
	b.WriteString("   ")
	b.WriteString(m.hasta.View())
	b.WriteString("\n")

	if m.tipoInforme() == models.InformeOperadores {
		operador := "(sin operadores)"
		if len(m.operadores) > 0 {
			op := m.operadores[m.operador]
			operador = op.Codigo + " - " + op.Descripcion
		}
		b.WriteString(campo("Operador", operador))
		b.WriteString("   ")
		b.WriteString(campo("Letra", models.Letras[m.letra]))
		b.WriteString("\n")
	}

	grafico := "(sin gráficos)"
	if g, ok := m.graficoSeleccionado(); ok {
		grafico = g.Etiqueta()
	}
	b.WriteString(campo("Gráfico", grafico))
	b.WriteString("   ")
	auto := "desactivada"
	if m.auto {
		auto = fmt.Sprintf("cada %v", m.intervalo)
	}
	b.WriteString(campo("Actualización automática", auto))
	b.WriteString("\n\n")

	b.WriteString(tablaStyle.Render(m.tabla.View()))
	b.WriteString("\n")

	if m.mensaje != "" {
		if m.esError {
			b.WriteString(errorStyle.Render(m.mensaje))
		} else {
			b.WriteString(okStyle.Render(m.mensaje))
		}
	}
	b.WriteString("\n")
	b.WriteString(ayudaStyle.Render("enter generar • tab informe • shift+tab fecha • o operador • l letra • g gráfico • a auto • x excel • p png • q salir"))
	return b.String()
}

func campo(etiqueta, valor string) string {
	return etiquetaStyle.Render(etiqueta+": ") + valorStyle.Render(valor)
}

// construirTabla arma columnas con el ancho de pantalla del contenido, acotado a anchoMaxColumna
func construirTabla(t models.Tabla) ([]table.Column, []table.Row) {
	textos := t.FilasTexto()
	columnas := make([]table.Column, len(t.Columnas))
	for j, nombre := range t.Columnas {
		ancho := runewidth.StringWidth(nombre)
		for _, fila := range textos {
			if w := runewidth.StringWidth(fila[j]); w > ancho {
				ancho = w
			}
		}
		if ancho > anchoMaxColumna {
			ancho = anchoMaxColumna
		}
		columnas[j] = table.Column{Title: nombre, Width: ancho}
	}

	filas := make([]table.Row, len(textos))
	for i, fila := range textos {
		filas[i] = table.Row(fila)
	}
	return columnas, filas
}
