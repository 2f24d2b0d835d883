package listeners

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WolfWilson/informes-jub/internal/monitoring"
)

// MonitoringHandler expone el estado de los controladores de base de datos
type MonitoringHandler struct {
	monitor *monitoring.MonitorConexiones
}

// NewMonitoringHandler crea un nuevo handler de monitoreo
func NewMonitoringHandler(monitor *monitoring.MonitorConexiones) *MonitoringHandler {
	return &MonitoringHandler{
		monitor: monitor,
	}
}

// GetConexiones maneja GET /api/estado/conexiones
func (h *MonitoringHandler) GetConexiones(c *gin.Context) {
	if h == nil || h.monitor == nil {
		RespondWithError(c, http.StatusServiceUnavailable, ErrCodeMonitorDisabled,
			"El monitoreo de conexiones no está habilitado", nil,
			"Configure database.monitor_interval")
		return
	}

	RespondWithSuccess(c, http.StatusOK, gin.H{
		"resumen":       h.monitor.Resumen(),
		"controladores": h.monitor.Estados(),
	}, "")
}
