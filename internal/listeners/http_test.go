package listeners

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/WolfWilson/informes-jub/internal/charts"
	"github.com/WolfWilson/informes-jub/internal/db"
	"github.com/WolfWilson/informes-jub/internal/models"
	"github.com/WolfWilson/informes-jub/internal/monitoring"
	"github.com/WolfWilson/informes-jub/internal/report"
	"github.com/WolfWilson/informes-jub/internal/shell"
)

type fuenteFalsa struct {
	mu     sync.Mutex
	tablas map[string]models.Tabla
	extra  []db.Parametro
}

func (f *fuenteFalsa) FetchReport(ctx context.Context, inicio, fin, proc string, extra ...db.Parametro) models.Tabla {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extra = extra
	return f.tablas[proc]
}

func (f *fuenteFalsa) FetchOperatorsList(ctx context.Context) models.Tabla {
	return models.Tabla{
		Columnas: []string{"Codigo", "descripcion"},
		Filas:    [][]any{{"OP1", "Pérez"}, {"OP2", "Gómez"}},
	}
}

func nuevoFrontend(t *testing.T) (*HTTPFrontend, *fuenteFalsa) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fuente := &fuenteFalsa{tablas: map[string]models.Tabla{
		db.PROC_INFORME_ALTAS: {
			Columnas: []string{"letra", "Operador", "fech_alta", "Descripcion"},
			Filas: [][]any{
				{"E", "OP1", "01-01-2024 08:15", "Mesa de entradas"},
				{"K", "OP2", "01-01-2024 10:05", "Archivo"},
			},
		},
		// sin Conteo: el gráfico de barras debe fallar por columna faltante
		db.PROC_INFORME_CATEGORIA: {
			Columnas: []string{"Categoria", "Tipo"},
			Filas:    [][]any{{"A", "X"}},
		},
		db.PROC_MOVIMIENTOS_OPERADOR: {
			Columnas: []string{"Operador", "letra"},
			Filas:    [][]any{{"OP1", "E"}},
		},
	}}
	sesion := shell.NuevaSesion(report.NuevoGenerador(fuente), charts.NuevoLienzo(400, 300))
	return NewHTTPFrontend(":0", sesion, time.Hour), fuente
}

func hacer(h *HTTPFrontend, metodo, ruta string, cuerpo any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if cuerpo != nil {
		data, _ := json.Marshal(cuerpo)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(metodo, ruta, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.GetRouter().ServeHTTP(w, req)
	return w
}

func codigoError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error envelope %q: %v", w.Body.String(), err)
	}
	if resp.Success {
		t.Fatalf("expected success=false, got %s", w.Body.String())
	}
	return resp.Error.Code
}

func generarAltas(t *testing.T, h *HTTPFrontend) {
	t.Helper()
	w := hacer(h, http.MethodPost, "/api/informes/generar", GenerarRequest{
		Informe: "altas", FechaInicio: "2024-01-01", FechaFin: "2024-01-31",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("generar: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListarInformes(t *testing.T) {
	h, _ := nuevoFrontend(t)
	w := hacer(h, http.MethodGet, "/api/informes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Informes []InformeInfo `json:"informes"`
			Letras   []string      `json:"letras"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.Informes) != 4 || len(resp.Data.Letras) != 4 {
		t.Fatalf("unexpected catalog: %s", w.Body.String())
	}
	for _, info := range resp.Data.Informes {
		if info.ID == "operadores" && len(info.Graficos) != 0 {
			t.Fatal("operators report must not offer charts")
		}
		if info.ID == "altas" && len(info.Graficos) != 5 {
			t.Fatalf("altas should offer 5 charts, got %d", len(info.Graficos))
		}
	}
}

func TestListarOperadores(t *testing.T) {
	h, _ := nuevoFrontend(t)
	w := hacer(h, http.MethodGet, "/api/operadores", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"codigo":"OP2"`) {
		t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
	}
}

func TestGenerarValidation(t *testing.T) {
	h, _ := nuevoFrontend(t)

	casos := []GenerarRequest{
		{Informe: "altas"},
		{Informe: "inexistente", FechaInicio: "2024-01-01", FechaFin: "2024-01-31"},
		{Informe: "altas", FechaInicio: "01/01/2024", FechaFin: "2024-01-31"},
		{Informe: "operadores", FechaInicio: "2024-01-01", FechaFin: "2024-01-31"},
		{Informe: "operadores", FechaInicio: "2024-01-01", FechaFin: "2024-01-31", Operador: "OP1", Letra: "Z"},
	}
	for _, c := range casos {
		w := hacer(h, http.MethodPost, "/api/informes/generar", c)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%+v: expected 400, got %d", c, w.Code)
		}
		if code := codigoError(t, w); code != ErrCodeValidationError {
			t.Fatalf("%+v: expected VALIDATION_ERROR, got %s", c, code)
		}
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	h, _ := nuevoFrontend(t)

	casos := []struct{ ruta, cuerpo string }{
		{"/api/informes/generar", "{"},
		{"/api/informes/generar", "nope"},
		{"/api/informes/generar", ""},
		{"/api/informes/generar", `{"informe": 3}`},
		{"/api/refresco", `{"activo": "si"}`},
		{"/api/refresco", "{"},
	}
	for _, c := range casos {
		req := httptest.NewRequest(http.MethodPost, c.ruta, strings.NewReader(c.cuerpo))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.GetRouter().ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s %q: expected 400, got %d", c.ruta, c.cuerpo, w.Code)
		}
		if code := codigoError(t, w); code != ErrCodeBadRequest {
			t.Fatalf("%s %q: expected BAD_REQUEST, got %s", c.ruta, c.cuerpo, code)
		}
	}
}

func TestGenerarOperadoresPassesFilter(t *testing.T) {
	h, fuente := nuevoFrontend(t)
	w := hacer(h, http.MethodPost, "/api/informes/generar", GenerarRequest{
		Informe: "operadores", FechaInicio: "2024-01-01", FechaFin: "2024-01-31", Operador: "OP1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(fuente.extra) != 2 || fuente.extra[0].Valor != "OP1" || fuente.extra[1].Valor != "T" {
		t.Fatalf("unexpected extra params: %+v", fuente.extra)
	}
}

func TestGenerarWithoutData(t *testing.T) {
	h, _ := nuevoFrontend(t)
	w := hacer(h, http.MethodPost, "/api/informes/generar", GenerarRequest{
		Informe: "novedades_beneficios", FechaInicio: "2024-01-01", FechaFin: "2024-01-31",
	})
	if w.Code != http.StatusNotFound || codigoError(t, w) != ErrCodeNoData {
		t.Fatalf("expected NO_DATA, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), models.MSG_SIN_DATOS) {
		t.Fatalf("expected the user message, got %s", w.Body.String())
	}
}

func TestEndpointsRequireReport(t *testing.T) {
	h, _ := nuevoFrontend(t)
	for _, ruta := range []string{"/api/informes/actual", "/api/informes/actual/excel", "/api/graficos/expedientes"} {
		w := hacer(h, http.MethodGet, ruta, nil)
		if w.Code != http.StatusConflict || codigoError(t, w) != ErrCodeNoReport {
			t.Fatalf("%s: expected NO_REPORT, got %d: %s", ruta, w.Code, w.Body.String())
		}
	}
}

func TestGraficoAndExcel(t *testing.T) {
	h, _ := nuevoFrontend(t)
	generarAltas(t, h)

	w := hacer(h, http.MethodGet, "/api/informes/actual", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Mesa de entradas") {
		t.Fatalf("unexpected current report: %s", w.Body.String())
	}

	w = hacer(h, http.MethodGet, "/api/graficos/expedientes", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected a png, got %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("body is not a png")
	}

	w = hacer(h, http.MethodGet, "/api/graficos/expedientes/descargar", nil)
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Informe_de_Altas_20240101_al_20240131.png") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}

	w = hacer(h, http.MethodGet, "/api/informes/actual/excel", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("excel: expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Informe_de_Altas_20240101_al_20240131.xlsx") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Fatal("xlsx body should be a zip archive")
	}
}

func TestGraficoErrors(t *testing.T) {
	h, _ := nuevoFrontend(t)
	generarAltas(t, h)

	w := hacer(h, http.MethodGet, "/api/graficos/altas_por_mes", nil)
	if w.Code != http.StatusBadRequest || codigoError(t, w) != ErrCodeValidationError {
		t.Fatalf("chart outside menu: got %d %s", w.Code, w.Body.String())
	}
	w = hacer(h, http.MethodGet, "/api/graficos/inexistente", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown chart: got %d", w.Code)
	}

	w = hacer(h, http.MethodPost, "/api/informes/generar", GenerarRequest{
		Informe: "categoria", FechaInicio: "2024-01-01", FechaFin: "2024-01-31",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("generar categoria: %d", w.Code)
	}
	w = hacer(h, http.MethodGet, "/api/graficos/barras_categoria", nil)
	if w.Code != http.StatusUnprocessableEntity || codigoError(t, w) != ErrCodeMissingColumn {
		t.Fatalf("expected MISSING_COLUMN, got %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Columna no encontrada - Conteo") {
		t.Fatalf("expected column name in message: %s", w.Body.String())
	}
}

func TestRefrescoToggle(t *testing.T) {
	h, _ := nuevoFrontend(t)

	w := hacer(h, http.MethodPost, "/api/refresco", RefrescoRequest{Activo: true, Grafico: "expedientes"})
	if w.Code != http.StatusOK || !h.Refresco().Activo() {
		t.Fatalf("expected refresh to be active, got %d %s", w.Code, w.Body.String())
	}
	w = hacer(h, http.MethodPost, "/api/refresco", RefrescoRequest{Activo: false})
	if w.Code != http.StatusOK || h.Refresco().Activo() {
		t.Fatal("expected refresh to be stopped")
	}
	w = hacer(h, http.MethodPost, "/api/refresco", RefrescoRequest{Activo: true, Grafico: "nada"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown chart, got %d", w.Code)
	}
}

func TestRefrescarBroadcastsUpdate(t *testing.T) {
	h, _ := nuevoFrontend(t)
	generarAltas(t, h)
	h.graficoRefresco = models.GraficoActividad

	if err := h.refrescar(context.Background()); err != nil {
		t.Fatalf("refrescar: %v", err)
	}

	select {
	case msg := <-h.GetWebSocketHub().Broadcast:
		var ws WebSocketMessage
		if err := json.Unmarshal(msg.Message, &ws); err != nil {
			t.Fatal(err)
		}
		if msg.RoomName != ROOM_INFORMES || ws.Type != MSG_INFORME_ACTUALIZADO {
			t.Fatalf("unexpected message %s → %s", ws.Type, msg.RoomName)
		}
		if !strings.Contains(string(msg.Message), `"grafico":"actividad"`) {
			t.Fatalf("expected the refreshed chart in the message: %s", msg.Message)
		}
	default:
		t.Fatal("expected a broadcast")
	}
}

func TestNoRouteAndStats(t *testing.T) {
	h, _ := nuevoFrontend(t)

	w := hacer(h, http.MethodGet, "/no-existe", nil)
	if w.Code != http.StatusNotFound || codigoError(t, w) != ErrCodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %d", w.Code)
	}

	w = hacer(h, http.MethodGet, "/ws/stats", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), ROOM_INFORMES) {
		t.Fatalf("unexpected stats: %s", w.Body.String())
	}

	w = hacer(h, http.MethodGet, "/ws/otra", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown room, got %d", w.Code)
	}

	w = hacer(h, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), TITULO_PAGINA) {
		t.Fatalf("page not served: %d", w.Code)
	}
}

func TestEstadoConexiones(t *testing.T) {
	h, _ := nuevoFrontend(t)

	w := hacer(h, http.MethodGet, "/api/estado/conexiones", nil)
	if w.Code != http.StatusServiceUnavailable || codigoError(t, w) != ErrCodeMonitorDisabled {
		t.Fatalf("expected MONITOR_DISABLED without a monitor, got %d", w.Code)
	}

	abrir := func(ctx context.Context, c db.Candidato) (*sql.DB, error) {
		return nil, errors.New("sin red")
	}
	monitor := monitoring.NuevoMonitorConexiones([]db.Candidato{{Driver: "sqlserver", Descripcion: "sql01:1433"}}, abrir, time.Hour)
	monitor.Verificar(context.Background())
	h.SetMonitorConexiones(monitor)

	w = hacer(h, http.MethodGet, "/api/estado/conexiones", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Resumen       models.ResumenConexiones   `json:"resumen"`
			Controladores []models.EstadoControlador `json:"controladores"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Resumen.Controladores != 1 || resp.Data.Resumen.Disponibles != 0 {
		t.Fatalf("unexpected summary %+v", resp.Data.Resumen)
	}
	if len(resp.Data.Controladores) != 1 || resp.Data.Controladores[0].UltimoError != "sin red" {
		t.Fatalf("unexpected states %+v", resp.Data.Controladores)
	}
}
