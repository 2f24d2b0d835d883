package listeners

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/WolfWilson/informes-jub/internal/charts"
	"github.com/WolfWilson/informes-jub/internal/models"
	"github.com/WolfWilson/informes-jub/internal/report"
	"github.com/WolfWilson/informes-jub/internal/shell"
)

// ErrorResponse representa la estructura estándar de errores
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     ErrorDetail `json:"error"`
	Timestamp string      `json:"timestamp"`
	Path      string      `json:"path"`
	Method    string      `json:"method"`
	Message   string      `json:"message,omitempty"`
}

// ErrorDetail contiene los detalles del error
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Hint    string      `json:"hint,omitempty"`
}

// SuccessResponse representa la estructura estándar de respuestas exitosas
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Message   string      `json:"message,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Códigos de error estandarizados
const (
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"

	// Errores del dominio de informes
	ErrCodeMissingColumn   = "MISSING_COLUMN"
	ErrCodeNoReport        = "NO_REPORT"
	ErrCodeNoData          = "NO_DATA"
	ErrCodeRenderError     = "RENDER_ERROR"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeMonitorDisabled = "MONITOR_DISABLED"
)

// RespondWithError envía una respuesta de error estandarizada
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}, hint string) {
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Message: message,
			Code:    errorCode,
			Details: details,
			Hint:    hint,
		},
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	})
}

// RespondWithSuccess envía una respuesta exitosa estandarizada
func RespondWithSuccess(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, SuccessResponse{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ValidationError - Error de validación de un campo de la solicitud
func ValidationError(c *gin.Context, field string, message string) {
	RespondWithError(c, http.StatusBadRequest, ErrCodeValidationError,
		"Error de validación",
		gin.H{
			"field":  field,
			"reason": message,
		},
		"Verifica que todos los campos requeridos estén presentes y sean del tipo correcto")
}

// CuerpoInvalido responde al fallo de ShouldBindJSON: un cuerpo que no es
// JSON es BAD_REQUEST, un JSON con campos faltantes o inválidos es VALIDATION_ERROR
func CuerpoInvalido(c *gin.Context, err error) {
	var sintaxis *json.SyntaxError
	var tipo *json.UnmarshalTypeError
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &sintaxis) || errors.As(err, &tipo) {
		RespondWithError(c, http.StatusBadRequest, ErrCodeBadRequest,
			"Cuerpo de la solicitud inválido",
			gin.H{"error": err.Error()},
			"El cuerpo debe ser un objeto JSON")
		return
	}
	ValidationError(c, "body", err.Error())
}

// RespondWithAppError traduce los errores del dominio al sobre estándar.
// El mensaje es el mismo texto que ve el usuario en la terminal.
func RespondWithAppError(c *gin.Context, err error) {
	mensaje := shell.MensajeUsuario(err)

	var faltante *charts.ColumnaFaltanteError
	switch {
	case errors.Is(err, shell.ErrSinDatos):
		RespondWithError(c, http.StatusNotFound, ErrCodeNoData, mensaje, nil,
			"Prueba con otro rango de fechas")
	case errors.Is(err, shell.ErrSinInforme):
		RespondWithError(c, http.StatusConflict, ErrCodeNoReport, mensaje, nil,
			"Usa POST /api/informes/generar antes de graficar o exportar")
	case errors.As(err, &faltante):
		RespondWithError(c, http.StatusUnprocessableEntity, ErrCodeMissingColumn, mensaje,
			gin.H{"columna": faltante.Columna},
			"El procedimiento almacenado no devolvió la columna que el gráfico necesita")
	case errors.Is(err, shell.ErrGraficoNoDisponible),
		errors.Is(err, models.ErrGraficoDesconocido),
		errors.Is(err, models.ErrInformeDesconocido),
		errors.Is(err, models.ErrLetraInvalida),
		errors.Is(err, report.ErrOperadorRequerido):
		RespondWithError(c, http.StatusBadRequest, ErrCodeValidationError, mensaje, nil,
			"Usa GET /api/informes para ver los informes y gráficos disponibles")
	case errors.Is(err, charts.ErrRenderizado):
		RespondWithError(c, http.StatusInternalServerError, ErrCodeRenderError, mensaje,
			gin.H{"error": err.Error()}, "")
	default:
		RespondWithError(c, http.StatusInternalServerError, ErrCodeInternalServer, mensaje,
			gin.H{"error": err.Error()},
			"Contacta al equipo de desarrollo si el error persiste")
	}
}
