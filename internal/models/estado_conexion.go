package models

import "time"

// EstadoControlador es el último resultado del chequeo de un candidato de conexión
type EstadoControlador struct {
	Indice            int        `json:"indice"`
	Driver            string     `json:"driver"`
	Descripcion       string     `json:"descripcion"`
	Disponible        bool       `json:"disponible"`
	UltimaCaida       *time.Time `json:"ultima_caida"`
	UltimoChequeo     time.Time  `json:"ultimo_chequeo"`
	TiempoRespuestaMs int64      `json:"tiempo_respuesta_ms"`
	UltimoError       string     `json:"ultimo_error,omitempty"`
}

// ResumenConexiones agrupa el estado de toda la lista de fallback
type ResumenConexiones struct {
	Controladores int `json:"controladores"`
	Disponibles   int `json:"disponibles"`
	// Vigente es el driver que usaría la próxima consulta ("" si ninguno responde)
	Vigente string `json:"vigente"`
}
