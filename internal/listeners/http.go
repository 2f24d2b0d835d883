package listeners

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/WolfWilson/informes-jub/internal/models"
	"github.com/WolfWilson/informes-jub/internal/monitoring"
	"github.com/WolfWilson/informes-jub/internal/report"
	"github.com/WolfWilson/informes-jub/internal/shell"
	"github.com/WolfWilson/informes-jub/internal/web"
)

const TITULO_PAGINA = "Informes JUB"

// GenerarRequest es el cuerpo de POST /api/informes/generar
type GenerarRequest struct {
	Informe     string `json:"informe" binding:"required"`
	FechaInicio string `json:"fecha_inicio" binding:"required"`
	FechaFin    string `json:"fecha_fin" binding:"required"`
	Operador    string `json:"operador"`
	Letra       string `json:"letra"`
}

// RefrescoRequest es el cuerpo de POST /api/refresco
type RefrescoRequest struct {
	Activo  bool   `json:"activo"`
	Grafico string `json:"grafico"`
}

// InformeInfo describe un informe y su menú de gráficos para el frontend
type InformeInfo struct {
	ID       string        `json:"id"`
	Etiqueta string        `json:"etiqueta"`
	Graficos []GraficoInfo `json:"graficos"`
}

type GraficoInfo struct {
	ID       string `json:"id"`
	Etiqueta string `json:"etiqueta"`
}

type HTTPFrontend struct {
	router   *gin.Engine
	addr     string
	sesion   *shell.Sesion
	refresco *shell.Refresco
	wsHub    *WebSocketHub
	monitor  *MonitoringHandler

	// grafico que redibuja el refresco automático ("" = solo tabla)
	mu              sync.Mutex
	graficoRefresco models.TipoGrafico
}

func NewHTTPFrontend(addr string, sesion *shell.Sesion, intervalo time.Duration) *HTTPFrontend {
	router := gin.Default()

	// Configurar CORS para permitir todas las peticiones
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.NoRoute(func(c *gin.Context) {
		RespondWithError(c, http.StatusNotFound, ErrCodeNotFound,
			"🤔 La ruta que buscas no existe en este servidor",
			gin.H{"available_endpoints": Endpoints()},
			"Revisa la lista de endpoints disponibles")
	})

	h := &HTTPFrontend{
		router: router,
		addr:   addr,
		sesion: sesion,
		wsHub:  NewWebSocketHub(),
	}
	h.refresco = shell.NuevoRefresco(intervalo, h.refrescar)
	h.setupRoutes()
	return h
}

// Endpoints lista las rutas públicas (banner de inicio y respuesta 404)
func Endpoints() []string {
	return []string{
		"GET  /",
		"GET  /api/informes",
		"GET  /api/operadores",
		"POST /api/informes/generar",
		"GET  /api/informes/actual",
		"GET  /api/informes/actual/excel",
		"GET  /api/graficos/:grafico",
		"GET  /api/graficos/:grafico/descargar",
		"POST /api/refresco",
		"GET  /api/estado/conexiones",
		"GET  /ws/informes",
		"GET  /ws/stats",
	}
}

// GetWebSocketHub retorna el hub de WebSocket
func (h *HTTPFrontend) GetWebSocketHub() *WebSocketHub {
	return h.wsHub
}

func (h *HTTPFrontend) GetRouter() *gin.Engine {
	return h.router
}

// SetMonitorConexiones vincula el monitor de controladores al frontend HTTP
func (h *HTTPFrontend) SetMonitorConexiones(monitor *monitoring.MonitorConexiones) {
	h.monitor = NewMonitoringHandler(monitor)
}

// Refresco expone el temporizador de actualización automática
func (h *HTTPFrontend) Refresco() *shell.Refresco {
	return h.refresco
}

func (h *HTTPFrontend) setupRoutes() {
	h.router.GET("/", gin.WrapF(web.PaginaHandler(TITULO_PAGINA, h.refresco.Intervalo())))

	api := h.router.Group("/api")
	api.GET("/informes", h.listarInformes)
	api.GET("/operadores", h.listarOperadores)
	api.POST("/informes/generar", h.generarInforme)
	api.GET("/informes/actual", h.informeActual)
	api.GET("/informes/actual/excel", h.descargarExcel)
	api.GET("/graficos/:grafico", h.verGrafico(false))
	api.GET("/graficos/:grafico/descargar", h.verGrafico(true))
	api.POST("/refresco", h.cambiarRefresco)
	api.GET("/estado/conexiones", func(c *gin.Context) {
		h.monitor.GetConexiones(c)
	})

	SetupWebSocketRoutes(h.router, h.wsHub)
}

func (h *HTTPFrontend) listarInformes(c *gin.Context) {
	informes := make([]InformeInfo, 0, len(models.TiposInforme))
	for _, t := range models.TiposInforme {
		info := InformeInfo{ID: string(t), Etiqueta: t.Etiqueta(), Graficos: []GraficoInfo{}}
		for _, g := range models.MenuGraficos(t) {
			info.Graficos = append(info.Graficos, GraficoInfo{ID: string(g), Etiqueta: g.Etiqueta()})
		}
		informes = append(informes, info)
	}
	RespondWithSuccess(c, http.StatusOK, gin.H{
		"informes": informes,
		"letras":   models.Letras,
	}, "")
}

func (h *HTTPFrontend) listarOperadores(c *gin.Context) {
	ops := h.sesion.Operadores(c.Request.Context())
	if ops == nil {
		ops = []models.Operador{}
	}
	RespondWithSuccess(c, http.StatusOK, ops, fmt.Sprintf("%d operadores", len(ops)))
}

func (h *HTTPFrontend) generarInforme(c *gin.Context) {
	var req GenerarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		CuerpoInvalido(c, err)
		return
	}

	tipo, err := models.ParseTipoInforme(req.Informe)
	if err != nil {
		ValidationError(c, "informe", err.Error())
		return
	}
	rango, err := models.ParseRangoFechas(req.FechaInicio, req.FechaFin)
	if err != nil {
		ValidationError(c, "fecha", err.Error())
		return
	}

	var filtro *models.FiltroOperador
	if tipo == models.InformeOperadores {
		filtro = &models.FiltroOperador{Codigo: req.Operador, Letra: req.Letra}
	}
	sol, err := report.ArmarSolicitud(tipo, rango, filtro)
	if err != nil {
		RespondWithAppError(c, err)
		return
	}

	inf, err := h.sesion.Generar(c.Request.Context(), sol)
	if err != nil {
		RespondWithAppError(c, err)
		return
	}
	RespondWithSuccess(c, http.StatusOK, inf.Tabla, fmt.Sprintf("%s: %d filas", tipo.Etiqueta(), inf.Tabla.CantidadFilas()))
}

func (h *HTTPFrontend) informeActual(c *gin.Context) {
	inf, err := h.sesion.Actual()
	if err != nil {
		RespondWithAppError(c, err)
		return
	}
	RespondWithSuccess(c, http.StatusOK, inf.Tabla, "")
}

func (h *HTTPFrontend) descargarExcel(c *gin.Context) {
	nombre, err := h.sesion.NombreSugerido("xlsx")
	if err != nil {
		RespondWithAppError(c, err)
		return
	}

	dir, err := os.MkdirTemp("", "informes-*")
	if err != nil {
		RespondWithAppError(c, err)
		return
	}
	defer os.RemoveAll(dir)

	ruta := filepath.Join(dir, nombre)
	if err := h.sesion.ExportarExcel(ruta); err != nil {
		RespondWithAppError(c, err)
		return
	}
	c.FileAttachment(ruta, nombre)
}

func (h *HTTPFrontend) verGrafico(adjunto bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		grafico, err := models.ParseTipoGrafico(c.Param("grafico"))
		if err != nil {
			ValidationError(c, "grafico", err.Error())
			return
		}

		img, err := h.sesion.GraficarActual(grafico)
		if err != nil {
			RespondWithAppError(c, err)
			return
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			RespondWithAppError(c, err)
			return
		}

		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		if adjunto {
			nombre, err := h.sesion.NombreSugerido("png")
			if err != nil {
				RespondWithAppError(c, err)
				return
			}
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nombre))
		}
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

func (h *HTTPFrontend) cambiarRefresco(c *gin.Context) {
	var req RefrescoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		CuerpoInvalido(c, err)
		return
	}

	var grafico models.TipoGrafico
	if req.Grafico != "" {
		g, err := models.ParseTipoGrafico(req.Grafico)
		if err != nil {
			ValidationError(c, "grafico", err.Error())
			return
		}
		grafico = g
	}

	h.mu.Lock()
	h.graficoRefresco = grafico
	h.mu.Unlock()

	if req.Activo {
		// el temporizador vive lo mismo que el servidor, no lo que dura la petición
		h.refresco.Iniciar(context.Background())
	} else {
		h.refresco.Detener()
	}
	h.wsHub.NotifyRefrescoEstado(h.refresco.Activo(), string(grafico))

	RespondWithSuccess(c, http.StatusOK, gin.H{
		"activo":    h.refresco.Activo(),
		"grafico":   string(grafico),
		"intervalo": h.refresco.Intervalo().String(),
	}, "")
}

// refrescar es la tarea del temporizador: repite la última consulta,
// redibuja el gráfico elegido y avisa por WebSocket
func (h *HTTPFrontend) refrescar(ctx context.Context) error {
	h.mu.Lock()
	grafico := h.graficoRefresco
	h.mu.Unlock()

	inf, err := h.sesion.Regenerar(ctx)
	if err != nil {
		if errors.Is(err, shell.ErrSinDatos) {
			h.wsHub.NotifyInformeActualizado(InformeActualizadoData{Mensaje: shell.MensajeUsuario(err)})
		}
		return err
	}

	data := InformeActualizadoData{
		Informe:    string(inf.Solicitud.Informe),
		Filas:      inf.Tabla.CantidadFilas(),
		GeneradoEn: inf.GeneradoEn.Format(time.RFC3339),
	}
	if grafico != "" && models.GraficoDisponible(inf.Solicitud.Informe, grafico) {
		if _, err := h.sesion.Graficar(inf, grafico); err != nil {
			data.Mensaje = shell.MensajeUsuario(err)
		} else {
			data.Grafico = string(grafico)
		}
	}
	h.wsHub.NotifyInformeActualizado(data)
	return nil
}

// Start levanta el hub y el servidor; al cancelar ctx se detiene el
// refresco y se cierra el servidor
func (h *HTTPFrontend) Start(ctx context.Context) error {
	go h.wsHub.Run()

	log.Println("🔍 Rutas registradas en Gin:")
	for _, route := range h.router.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	srv := &http.Server{Addr: h.addr, Handler: h.router}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		h.refresco.Detener()
		return err
	case <-ctx.Done():
		log.Println("🛑 Deteniendo servidor HTTP...")
		h.refresco.Detener()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
