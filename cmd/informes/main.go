package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/WolfWilson/informes-jub/internal/charts"
	"github.com/WolfWilson/informes-jub/internal/config"
	"github.com/WolfWilson/informes-jub/internal/db"
	"github.com/WolfWilson/informes-jub/internal/export"
	"github.com/WolfWilson/informes-jub/internal/listeners"
	"github.com/WolfWilson/informes-jub/internal/models"
	"github.com/WolfWilson/informes-jub/internal/monitoring"
	"github.com/WolfWilson/informes-jub/internal/report"
	"github.com/WolfWilson/informes-jub/internal/shell"
	"github.com/WolfWilson/informes-jub/internal/tui"
)

const anchoTerminalRespaldo = 120

var (
	configPath string

	generarInforme  string
	generarDesde    string
	generarHasta    string
	generarOperador string
	generarLetra    string
	generarExcel    string
	generarGrafico  string
	generarPNG      string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "informes",
		Short:        "Informes de gestión de expedientes (altas, categorías, novedades, operadores)",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "archivo de configuración (YAML o TOML); por defecto CONFIG_FILE o "+config.DEFAULT_CONFIG_PATH)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newTUICmd())
	rootCmd.AddCommand(newGenerarCmd())
	rootCmd.AddCommand(newOperadoresCmd())
	return rootCmd
}

// app reúne las piezas compartidas por todos los subcomandos
type app struct {
	cfg    *config.Config
	repo   *db.Repositorio
	sesion *shell.Sesion
}

func cargarApp() (*app, error) {
	cfg, ruta, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error al cargar configuración: %w", err)
	}
	log.Printf("✅ Configuración cargada desde: %s", ruta)

	repo := db.NuevoRepositorioDesdeConfig(cfg.Database)
	candidatos := repo.Candidatos()
	if len(candidatos) == 0 {
		log.Println("⚠️  Ningún controlador de base de datos configurado: los informes saldrán vacíos")
	}
	for i, c := range candidatos {
		log.Printf("   %d. %s", i+1, c.Descripcion)
	}

	lienzo := charts.NuevoLienzo(cfg.Charts.Width, cfg.Charts.Height)
	sesion := shell.NuevaSesion(report.NuevoGenerador(repo), lienzo)
	return &app{cfg: cfg, repo: repo, sesion: sesion}, nil
}

func imprimirBanner() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)

	log.Println("")
	log.Println("    ██╗███╗░░██╗███████╗░█████╗░██████╗░███╗░░░███╗███████╗░██████╗░░░░░░░░░░░░░██╗██╗░░░██╗██████╗░")
	log.Println("    ██║████╗░██║██╔════╝██╔══██╗██╔══██╗████╗░████║██╔════╝██╔════╝░░░░░░░░░░░░░██║██║░░░██║██╔══██╗")
	log.Println("    ██║██╔██╗██║█████╗░░██║░░██║██████╔╝██╔████╔██║█████╗░░╚█████╗░█████╗░░░░░░░██║██║░░░██║██████╦╝")
	log.Println("    ██║██║╚████║██╔══╝░░██║░░██║██╔══██╗██║╚██╔╝██║██╔══╝░░░╚═══██╗╚════╝░██╗░░░██║██║░░░██║██╔══██╗")
	log.Println("    ██║██║░╚███║██║░░░░░╚█████╔╝██║░░██║██║░╚═╝░██║███████╗██████╔╝░░░░░░░╚█████╔╝╚██████╔╝██████╦╝")
	log.Println("    ╚═╝╚═╝░░╚══╝╚═╝░░░░░░╚════╝░╚═╝░░╚═╝╚═╝░░░░░╚═╝╚══════╝╚═════╝░░░░░░░░░╚════╝░░╚═════╝░╚═════╝░")
	log.Println("")
	log.Println("Iniciando Informes-JUB...")
	log.Println("")

	log.SetFlags(log.Ldate | log.Ltime)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia el servidor HTTP con la página de informes",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			imprimirBanner()

			a, err := cargarApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := a.cfg.HTTP.Addr()
			frontend := listeners.NewHTTPFrontend(addr, a.sesion, a.cfg.Refresh.GetInterval())

			if intervalo := a.cfg.Database.GetMonitorInterval(); intervalo > 0 {
				monitor := monitoring.NuevoMonitorConexiones(a.repo.Candidatos(), nil, intervalo)
				go monitor.Start()
				defer monitor.Stop()
				frontend.SetMonitorConexiones(monitor)
			} else {
				log.Println("⚠️  Monitoreo de conexiones desactivado")
			}

			log.Printf("🌐 Servidor HTTP iniciando en %s...", addr)
			log.Println("📊 Endpoints disponibles:")
			for _, e := range listeners.Endpoints() {
				log.Printf("   %s", e)
			}

			if err := frontend.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("error al iniciar servidor HTTP: %w", err)
			}
			log.Println("🛑 Servidor detenido")
			return nil
		},
	}
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Abre la interfaz de terminal",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// los logs romperían la pantalla: van a archivo o se descartan
			if ruta := os.Getenv("INFORMES_TUI_LOG"); ruta != "" {
				f, err := tea.LogToFile(ruta, "informes")
				if err != nil {
					return fmt.Errorf("no se pudo abrir el log %s: %w", ruta, err)
				}
				defer f.Close()
			} else {
				log.SetOutput(io.Discard)
			}

			a, err := cargarApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			model := tui.NewModel(ctx, a.sesion, a.cfg.Refresh.GetInterval(), dirExportacion(a.cfg))
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("error en la interfaz de terminal: %w", err)
			}
			return nil
		},
	}
}

func newGenerarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generar",
		Short: "Genera un informe, lo imprime y opcionalmente lo exporta",
		Args:  cobra.NoArgs,
		RunE:  runGenerarCmd,
	}
	cmd.Flags().StringVar(&generarInforme, "informe", string(models.InformeAltas), "altas | categoria | novedades_beneficios | operadores")
	cmd.Flags().StringVar(&generarDesde, "desde", "", "fecha de inicio (AAAA-MM-DD)")
	cmd.Flags().StringVar(&generarHasta, "hasta", "", "fecha de fin (AAAA-MM-DD)")
	cmd.Flags().StringVar(&generarOperador, "operador", "", "código de operador (solo informe de operadores)")
	cmd.Flags().StringVar(&generarLetra, "letra", models.LETRA_TODAS, "letra de expediente: T, E, K o V")
	cmd.Flags().StringVar(&generarExcel, "excel", "", "ruta del archivo .xlsx a exportar")
	cmd.Flags().StringVar(&generarGrafico, "grafico", "", "gráfico a exportar (ver --png)")
	cmd.Flags().StringVar(&generarPNG, "png", "", "ruta del .png del gráfico")
	_ = cmd.MarkFlagRequired("desde")
	_ = cmd.MarkFlagRequired("hasta")
	cmd.MarkFlagsRequiredTogether("grafico", "png")
	return cmd
}

func runGenerarCmd(cmd *cobra.Command, _ []string) error {
	a, err := cargarApp()
	if err != nil {
		return err
	}

	tipo, err := models.ParseTipoInforme(generarInforme)
	if err != nil {
		return err
	}
	rango, err := models.ParseRangoFechas(generarDesde, generarHasta)
	if err != nil {
		return err
	}
	var filtro *models.FiltroOperador
	if tipo == models.InformeOperadores {
		filtro = &models.FiltroOperador{Codigo: generarOperador, Letra: generarLetra}
	}
	sol, err := report.ArmarSolicitud(tipo, rango, filtro)
	if err != nil {
		return err
	}

	inf, err := a.sesion.Generar(cmd.Context(), sol)
	if err != nil {
		return errors.New(shell.MensajeUsuario(err))
	}
	fmt.Fprint(cmd.OutOrStdout(), export.FormatearTabla(inf.Tabla, anchoTerminal()))
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d filas\n", inf.Tabla.CantidadFilas())

	if generarExcel != "" {
		if err := a.sesion.ExportarExcel(generarExcel); err != nil {
			return errors.New(shell.MensajeUsuario(err))
		}
		log.Printf("✅ Excel guardado en %s", generarExcel)
	}

	if generarGrafico != "" {
		grafico, err := models.ParseTipoGrafico(generarGrafico)
		if err != nil {
			return err
		}
		if _, err := a.sesion.Graficar(inf, grafico); err != nil {
			return errors.New(shell.MensajeUsuario(err))
		}
		if err := a.sesion.ExportarGrafico(generarPNG); err != nil {
			return errors.New(shell.MensajeUsuario(err))
		}
		log.Printf("✅ Gráfico guardado en %s", generarPNG)
	}
	return nil
}

func newOperadoresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operadores",
		Short: "Lista los operadores disponibles para el filtro",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := cargarApp()
			if err != nil {
				return err
			}
			tabla := a.repo.FetchOperatorsList(cmd.Context())
			if tabla.Vacia() {
				return errors.New("no se pudo cargar la lista de operadores")
			}
			fmt.Fprint(cmd.OutOrStdout(), export.FormatearTabla(tabla, anchoTerminal()))
			return nil
		},
	}
}

func anchoTerminal() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return anchoTerminalRespaldo
	}
	return width
}

func dirExportacion(cfg *config.Config) string {
	if cfg.Export.Dir != "" {
		return cfg.Export.Dir
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Clean(dir)
}
